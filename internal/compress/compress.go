// Package compress wraps zstd compression at level 1, with a bounded
// decompressor to guard against decompression bombs on crafted input.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// ErrDecompressionBomb is returned when decompressing a chunk would exceed
// the configured output cap.
var ErrDecompressionBomb = errors.New("compress: decompressed size exceeds cap")

// DefaultCapMultiplier bounds decompressed output to this multiple of the
// plaintext chunk size.
const DefaultCapMultiplier = 16

// Compress compresses data with zstd at level 1 (fastest).
func Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("compress: new encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data))), nil
}

// Decompress decompresses a zstd stream, refusing to produce more than cap
// bytes of output. Pass cap <= 0 to use no limit (not recommended on
// untrusted input).
func Decompress(data []byte, cap int) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("compress: new decoder: %w", err)
	}
	defer dec.Close()

	var limited io.Reader = dec
	if cap > 0 {
		limited = io.LimitReader(dec, int64(cap)+1)
	}

	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("compress: decompress: %w", err)
	}
	if cap > 0 && len(out) > cap {
		return nil, ErrDecompressionBomb
	}
	return out, nil
}
