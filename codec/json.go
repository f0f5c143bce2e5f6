package codec

import "encoding/json"

// JSON is a codec backed by the standard library encoder.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes JSON into the value.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the stable codec name.
func (JSON) Name() string { return "json" }
