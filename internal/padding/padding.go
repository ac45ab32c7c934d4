// Package padding implements PKCS#7 padding over 128-byte blocks, applied
// between compression and the first AEAD layer in the chunk pipeline.
package padding

import (
	"bytes"
	"crypto/subtle"
	"errors"
)

// BlockSize is the padding block size fixed by the container format.
const BlockSize = 128

// ErrInvalidPadding is returned by Unpad when the trailing padding bytes do
// not form a valid PKCS#7 block. This is always treated as fatal.
var ErrInvalidPadding = errors.New("padding: invalid PKCS#7 padding")

// Pad appends k copies of byte k, where k = BlockSize - len(data)%BlockSize,
// so the result is always a multiple of BlockSize. If data is already a
// multiple of BlockSize, a full block of padding is appended.
func Pad(data []byte) []byte {
	padLen := BlockSize - len(data)%BlockSize
	out := make([]byte, len(data)+padLen)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padLen)
	}
	return out
}

// Unpad removes PKCS#7 padding, verifying the trailing k bytes all equal k
// using a constant-time comparison. Malformed padding is always an error;
// callers must treat it as fatal per the container's decrypt contract.
func Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%BlockSize != 0 {
		return nil, ErrInvalidPadding
	}

	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > BlockSize {
		return nil, ErrInvalidPadding
	}

	want := bytes.Repeat([]byte{byte(padLen)}, padLen)
	got := data[len(data)-padLen:]
	if subtle.ConstantTimeCompare(want, got) != 1 {
		return nil, ErrInvalidPadding
	}

	return data[:len(data)-padLen], nil
}
