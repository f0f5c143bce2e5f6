package fskit

import (
	"context"
	"testing"

	"github.com/hupe1980/fskit/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manifest struct {
	Version int      `json:"version"`
	Files   []string `json:"files"`
}

func TestReadWriteJSON(t *testing.T) {
	ctx := context.Background()
	fsys := NewMemory()

	in := manifest{Version: 3, Files: []string{"a.txt", "b.txt"}}
	require.NoError(t, WriteJSON(ctx, fsys, "manifest.json", in, nil))

	var out manifest
	require.NoError(t, ReadJSON(ctx, fsys, "manifest.json", &out, nil))
	assert.Equal(t, in, out)
}

func TestReadJSONMissingFile(t *testing.T) {
	var out manifest
	err := ReadJSON(context.Background(), NewMemory(), "missing.json", &out, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadJSONInvalidContent(t *testing.T) {
	ctx := context.Background()
	fsys := NewMemory()

	require.NoError(t, fsys.Write(ctx, "broken.json", []byte("{not json")))

	var out manifest
	err := ReadJSON(ctx, fsys, "broken.json", &out, nil)
	assert.Error(t, err)
}

func TestReadWriteJSONExplicitCodec(t *testing.T) {
	ctx := context.Background()
	fsys := NewMemory()

	c, ok := codec.ByName("json")
	require.True(t, ok)

	in := manifest{Version: 1}
	require.NoError(t, WriteJSON(ctx, fsys, "m.json", in, c))

	var out manifest
	require.NoError(t, ReadJSON(ctx, fsys, "m.json", &out, c))
	assert.Equal(t, in, out)
}
