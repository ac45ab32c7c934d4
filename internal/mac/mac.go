// Package mac provides the HMAC-SHA-256 message authentication used to
// bind the container header to its key.
package mac

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
)

// Size is the HMAC-SHA-256 output length in bytes.
const Size = 32

// Sum computes HMAC-SHA-256(key, data).
func Sum(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

// Verify reports whether tag is the correct HMAC-SHA-256 of data under key,
// using a constant-time comparison so the elapsed time of a mismatch does
// not leak which byte of the tag differs.
func Verify(key, data, tag []byte) bool {
	computed := Sum(key, data)
	return subtle.ConstantTimeCompare(computed, tag) == 1
}
