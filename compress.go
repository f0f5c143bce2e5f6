package fskit

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the algorithm used by CompressFS.
type Compression uint8

const (
	// CompressionZSTD favors ratio (good for cold data). Default.
	CompressionZSTD Compression = 1
	// CompressionLZ4 favors speed (good for hot data).
	CompressionLZ4 Compression = 2
)

// Frame layout: magic (4) | algorithm (1) | uncompressed size (4, LE) | payload.
var compressMagic = [4]byte{'f', 's', 'k', 'c'}

const compressHeaderLen = 9

// ZSTD encoder/decoder pools for efficiency.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// CompressFS wraps a FileSystem and transparently compresses file content.
// Files written before the decorator was introduced are detected by the
// missing frame header and returned verbatim.
//
// Stat reports the stored (compressed) size, not the logical one.
type CompressFS struct {
	FileSystem
	algo Compression
}

// NewCompressFS creates a compressing decorator around inner.
// An unknown algorithm falls back to zstd.
func NewCompressFS(inner FileSystem, algo Compression) *CompressFS {
	if algo != CompressionLZ4 {
		algo = CompressionZSTD
	}
	return &CompressFS{FileSystem: inner, algo: algo}
}

// Read returns the decompressed content of name.
func (c *CompressFS) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := c.FileSystem.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	return decompressFrame(data)
}

// Write compresses data and stores the framed result at name.
func (c *CompressFS) Write(ctx context.Context, name string, data []byte) error {
	framed, err := compressFrame(c.algo, data)
	if err != nil {
		return err
	}
	return c.FileSystem.Write(ctx, name, framed)
}

func compressFrame(algo Compression, data []byte) ([]byte, error) {
	out := make([]byte, compressHeaderLen, compressHeaderLen+len(data)/2)
	copy(out, compressMagic[:])
	out[4] = byte(algo)
	binary.LittleEndian.PutUint32(out[5:], uint32(len(data)))

	switch algo {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		var compressor lz4.Compressor
		n, err := compressor.CompressBlock(data, buf)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if n == 0 {
			// Incompressible; store raw payload, signaled by n == size.
			return append(out, data...), nil
		}
		return append(out, buf[:n]...), nil
	default:
		enc := getZstdEncoder()
		out = enc.EncodeAll(data, out)
		zstdEncoderPool.Put(enc)
		return out, nil
	}
}

func decompressFrame(framed []byte) ([]byte, error) {
	if len(framed) < compressHeaderLen || [4]byte(framed[:4]) != compressMagic {
		// Not a compressed frame: legacy or foreign content.
		return framed, nil
	}

	algo := Compression(framed[4])
	size := binary.LittleEndian.Uint32(framed[5:compressHeaderLen])
	payload := framed[compressHeaderLen:]

	switch algo {
	case CompressionLZ4:
		if uint32(len(payload)) == size {
			// Stored raw (incompressible block).
			return payload, nil
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		return out[:n], nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		out, err := dec.DecodeAll(payload, make([]byte, 0, size))
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown compression algorithm %d", algo)
	}
}
