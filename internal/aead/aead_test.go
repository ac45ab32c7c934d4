package aead

import (
	"bytes"
	"testing"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestAESGCMRoundTrip(t *testing.T) {
	a, err := NewAESGCM(testKey())
	if err != nil {
		t.Fatalf("NewAESGCM failed: %v", err)
	}

	for _, pt := range [][]byte{{}, []byte("hello"), bytes.Repeat([]byte{0x9}, 4096)} {
		blob, err := a.Seal(pt)
		if err != nil {
			t.Fatalf("Seal failed: %v", err)
		}
		if len(blob) < 12 {
			t.Fatalf("sealed blob too short: %d", len(blob))
		}
		got, err := a.Open(blob)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if !bytes.Equal(got, pt) {
			t.Errorf("round trip mismatch for %d-byte plaintext", len(pt))
		}
	}
}

func TestAESGCMRejectsTamperedCiphertext(t *testing.T) {
	a, err := NewAESGCM(testKey())
	if err != nil {
		t.Fatalf("NewAESGCM failed: %v", err)
	}
	blob, err := a.Seal([]byte("secret message"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	blob[len(blob)-1] ^= 0xFF
	if _, err := a.Open(blob); err != ErrAuthFailed {
		t.Errorf("Open(tampered) error = %v, want ErrAuthFailed", err)
	}
}

func TestXChaChaRoundTrip(t *testing.T) {
	x, err := NewXChaCha(testKey())
	if err != nil {
		t.Fatalf("NewXChaCha failed: %v", err)
	}

	for _, pt := range [][]byte{{}, []byte("hello"), bytes.Repeat([]byte{0x7}, 4096)} {
		blob, err := x.Seal(pt)
		if err != nil {
			t.Fatalf("Seal failed: %v", err)
		}
		if len(blob) < 24 {
			t.Fatalf("sealed blob too short: %d", len(blob))
		}
		got, err := x.Open(blob)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if !bytes.Equal(got, pt) {
			t.Errorf("round trip mismatch for %d-byte plaintext", len(pt))
		}
	}
}

func TestXChaChaRejectsTamperedCiphertext(t *testing.T) {
	x, err := NewXChaCha(testKey())
	if err != nil {
		t.Fatalf("NewXChaCha failed: %v", err)
	}
	blob, err := x.Seal([]byte("secret message"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	blob[len(blob)-1] ^= 0xFF
	if _, err := x.Open(blob); err != ErrAuthFailed {
		t.Errorf("Open(tampered) error = %v, want ErrAuthFailed", err)
	}
}

func TestSealProducesFreshNoncePerCall(t *testing.T) {
	a, err := NewAESGCM(testKey())
	if err != nil {
		t.Fatalf("NewAESGCM failed: %v", err)
	}
	b1, _ := a.Seal([]byte("same plaintext"))
	b2, _ := a.Seal([]byte("same plaintext"))
	if bytes.Equal(b1, b2) {
		t.Error("two seals of the same plaintext produced identical ciphertext")
	}
}

// fixedReader always serves the same bytes, regardless of how many times
// Read is called; it exists to pin a nonce for determinism tests.
type fixedReader struct {
	b []byte
}

func (f fixedReader) Read(p []byte) (int, error) {
	return copy(p, f.b), nil
}

func TestAESGCMSealIsDeterministicGivenFixedRNG(t *testing.T) {
	a, err := NewAESGCM(testKey())
	if err != nil {
		t.Fatalf("NewAESGCM failed: %v", err)
	}
	a.rng = fixedReader{b: bytes.Repeat([]byte{0x42}, a.gcm.NonceSize())}

	b1, err := a.Seal([]byte("same plaintext"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	b2, err := a.Seal([]byte("same plaintext"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if !bytes.Equal(b1, b2) {
		t.Error("Seal with a fixed RNG and identical plaintext produced different ciphertext")
	}
}

func TestXChaChaSealIsDeterministicGivenFixedRNG(t *testing.T) {
	x, err := NewXChaCha(testKey())
	if err != nil {
		t.Fatalf("NewXChaCha failed: %v", err)
	}
	x.rng = fixedReader{b: bytes.Repeat([]byte{0x99}, x.aead.NonceSize())}

	b1, err := x.Seal([]byte("same plaintext"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	b2, err := x.Seal([]byte("same plaintext"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if !bytes.Equal(b1, b2) {
		t.Error("Seal with a fixed RNG and identical plaintext produced different ciphertext")
	}
}
