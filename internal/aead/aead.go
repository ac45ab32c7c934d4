// Package aead implements the two authenticated ciphers stacked by the
// chunk pipeline: AES-256-GCM and XChaCha20-Poly1305. Both take independent
// fresh random nonces per call; associated data is always empty.
//
// The two ciphers are kept as concrete, named types rather than behind a
// shared interface: dispatch in the per-chunk hot path should be static,
// not virtual.
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrAuthFailed is returned by Open when the authentication tag does not
// verify. It intentionally carries no detail about which layer failed.
var ErrAuthFailed = errors.New("aead: authentication failed")

// AESGCM seals/opens with AES-256-GCM using a 12-byte nonce prepended to
// the ciphertext.
type AESGCM struct {
	gcm cipher.AEAD
	rng io.Reader // nonce source; crypto/rand.Reader unless overridden for tests
}

// NewAESGCM builds an AES-256-GCM sealer from a 32-byte key.
func NewAESGCM(key []byte) (*AESGCM, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aead: aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("aead: cipher.NewGCM: %w", err)
	}
	return &AESGCM{gcm: gcm, rng: rand.Reader}, nil
}

// Seal returns nonce(12) ‖ ciphertext ‖ tag.
func (a *AESGCM) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, a.gcm.NonceSize())
	if _, err := io.ReadFull(a.rng, nonce); err != nil {
		return nil, fmt.Errorf("aead: rng failure: %w", err)
	}
	return a.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal. Any authentication failure surfaces as ErrAuthFailed.
func (a *AESGCM) Open(blob []byte) ([]byte, error) {
	ns := a.gcm.NonceSize()
	if len(blob) < ns {
		return nil, ErrAuthFailed
	}
	nonce, ct := blob[:ns], blob[ns:]
	pt, err := a.gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return pt, nil
}

// XChaCha seals/opens with XChaCha20-Poly1305 using a 24-byte nonce
// prepended to the ciphertext.
type XChaCha struct {
	aead cipher.AEAD
	rng  io.Reader // nonce source; crypto/rand.Reader unless overridden for tests
}

// NewXChaCha builds an XChaCha20-Poly1305 sealer from a 32-byte key.
func NewXChaCha(key []byte) (*XChaCha, error) {
	a, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("aead: chacha20poly1305.NewX: %w", err)
	}
	return &XChaCha{aead: a, rng: rand.Reader}, nil
}

// Seal returns nonce(24) ‖ ciphertext ‖ tag.
func (x *XChaCha) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, x.aead.NonceSize())
	if _, err := io.ReadFull(x.rng, nonce); err != nil {
		return nil, fmt.Errorf("aead: rng failure: %w", err)
	}
	return x.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal. Any authentication failure surfaces as ErrAuthFailed.
func (x *XChaCha) Open(blob []byte) ([]byte, error) {
	ns := x.aead.NonceSize()
	if len(blob) < ns {
		return nil, ErrAuthFailed
	}
	nonce, ct := blob[:ns], blob[ns:]
	pt, err := x.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return pt, nil
}

// Pair bundles one AESGCM and one XChaCha instance sharing the same
// 32-byte key, constructed once per operation and reused across chunks.
type Pair struct {
	AES     *AESGCM
	XChaCha *XChaCha
}

// NewPair builds both ciphers from the same 32-byte cipher subkey.
func NewPair(key []byte) (*Pair, error) {
	a, err := NewAESGCM(key)
	if err != nil {
		return nil, err
	}
	x, err := NewXChaCha(key)
	if err != nil {
		return nil, err
	}
	return &Pair{AES: a, XChaCha: x}, nil
}
