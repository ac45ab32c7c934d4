// Package kdf derives the container's keying material from a password and
// salt using Argon2id, then splits the output into the AEAD and MAC
// subkeys per the key-split rule fixed for this container version.
package kdf

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/hambosto/sweetbyte/internal/zeroize"
)

// Default Argon2id parameters, also the values stored in the container
// header's kdf_memory_kib / kdf_time / kdf_parallelism fields.
const (
	DefaultMemoryKiB    = 65536 // 64 MiB
	DefaultTime         = 3
	DefaultParallelism  = 4
	OutputSize          = 64 // bytes
	SaltSize            = 32
	cipherSubkeySize    = 32
	macSubkeySize       = 32
	PasswordMinimumSize = 8
)

// Params are the Argon2id parameters recorded in the container header.
type Params struct {
	MemoryKiB   uint32
	Time        uint8
	Parallelism uint8
}

// DefaultParams returns the fixed parameter set this container version uses.
func DefaultParams() Params {
	return Params{
		MemoryKiB:   DefaultMemoryKiB,
		Time:        DefaultTime,
		Parallelism: DefaultParallelism,
	}
}

// RandomSalt draws a fresh 32-byte salt from the process CSPRNG.
//
// A salt must never be reused across files; every encryption draws a new
// one from crypto/rand.
func RandomSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("kdf: crypto/rand failure: %w", err)
	}
	return salt, nil
}

// Keys holds the two subkeys split out of the 64-byte Argon2id output, each
// owned by a zeroize.Secret so Close guarantees both are wiped together.
//
// Key split: bytes[0:32] of the Argon2id output seed both AEAD layers
// (AES-256-GCM and XChaCha20-Poly1305 each take this same 32-byte key but
// apply independent random nonces per chunk), and bytes[32:64] are the
// HMAC-SHA-256 subkey. This split is pinned by the container version byte.
type Keys struct {
	cipher *zeroize.Secret
	mac    *zeroize.Secret
}

// Cipher returns the 32-byte subkey feeding both AEAD layers, or nil once
// Close has been called.
func (k *Keys) Cipher() []byte {
	if k == nil {
		return nil
	}
	return k.cipher.Bytes()
}

// MAC returns the 32-byte HMAC-SHA-256 subkey, or nil once Close has been
// called.
func (k *Keys) MAC() []byte {
	if k == nil {
		return nil
	}
	return k.mac.Bytes()
}

// Close zeros both subkeys. Safe to call on a zero-value or nil Keys.
func (k *Keys) Close() {
	if k == nil {
		return
	}
	k.cipher.Close()
	k.mac.Close()
}

// ErrZeroOutput indicates Argon2id produced an all-zero key, which would
// never happen by chance and signals a faulty environment.
var ErrZeroOutput = errors.New("kdf: argon2id produced an all-zero key")

// Derive runs Argon2id over (password, salt) with params and splits the
// 64-byte output into Keys per the fixed split rule above.
func Derive(password, salt []byte, params Params) (*Keys, error) {
	out := argon2.IDKey(password, salt, uint32(params.Time), params.MemoryKiB, params.Parallelism, OutputSize)

	allZero := true
	for _, b := range out {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return nil, ErrZeroOutput
	}

	keys := &Keys{
		cipher: zeroize.NewSecret(out[:cipherSubkeySize]),
		mac:    zeroize.NewSecret(out[cipherSubkeySize : cipherSubkeySize+macSubkeySize]),
	}
	zeroize.Bytes(out)
	return keys, nil
}
