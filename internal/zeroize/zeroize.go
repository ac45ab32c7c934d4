// Package zeroize provides best-effort memory zeroing and a wrapper type
// for secret material that must not outlive its owning scope.
package zeroize

import "crypto/subtle"

// Bytes overwrites b with zeros in a way the compiler will not optimize
// away, using subtle.ConstantTimeCopy from a zero source.
//
// Due to the garbage collector and possible prior copies, this cannot
// guarantee every copy of the secret is gone from memory. It narrows the
// window during which key material is recoverable, no more.
func Bytes(b []byte) {
	if len(b) == 0 {
		return
	}
	zeros := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zeros)
}

// Multiple zeros each slice in turn.
func Multiple(slices ...[]byte) {
	for _, s := range slices {
		Bytes(s)
	}
}

// Secret wraps a byte slice that must be zeroed when the owning operation
// completes. It owns a private copy of the data it is constructed with.
type Secret struct {
	data   []byte
	closed bool
}

// NewSecret copies data into a new Secret.
func NewSecret(data []byte) *Secret {
	if data == nil {
		return &Secret{}
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return &Secret{data: copied}
}

// Bytes returns the underlying data, or nil if the Secret has been closed.
func (s *Secret) Bytes() []byte {
	if s == nil || s.closed {
		return nil
	}
	return s.data
}

// Close zeros the data and marks the Secret closed. Idempotent.
func (s *Secret) Close() {
	if s == nil || s.closed {
		return
	}
	Bytes(s.data)
	s.data = nil
	s.closed = true
}
