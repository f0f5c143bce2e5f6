package fskit

import (
	"context"
	"fmt"

	"github.com/hupe1980/fskit/codec"
)

// ReadJSON reads the file at name and decodes it into v using c.
// A nil codec uses codec.Default.
func ReadJSON(ctx context.Context, fsys FileSystem, name string, v any, c codec.Codec) error {
	if c == nil {
		c = codec.Default
	}
	data, err := fsys.Read(ctx, name)
	if err != nil {
		return err
	}
	if err := c.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// WriteJSON encodes v with c and writes it to name.
// A nil codec uses codec.Default.
func WriteJSON(ctx context.Context, fsys FileSystem, name string, v any, c codec.Codec) error {
	if c == nil {
		c = codec.Default
	}
	data, err := c.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return fsys.Write(ctx, name, data)
}
