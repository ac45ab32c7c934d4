package kdf

import (
	"bytes"
	"testing"
)

func smallParams() Params {
	// Small enough to run quickly in tests; production uses DefaultParams().
	return Params{MemoryKiB: 8 * 1024, Time: 1, Parallelism: 1}
}

func TestDeriveDeterministic(t *testing.T) {
	password := []byte("correct horse battery staple")
	salt := bytes.Repeat([]byte{0x11}, SaltSize)

	k1, err := Derive(password, salt, smallParams())
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	k2, err := Derive(password, salt, smallParams())
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if !bytes.Equal(k1.Cipher(), k2.Cipher()) || !bytes.Equal(k1.MAC(), k2.MAC()) {
		t.Error("Derive with identical inputs produced different subkeys")
	}
	if len(k1.Cipher()) != 32 || len(k1.MAC()) != 32 {
		t.Fatalf("subkey sizes = %d/%d, want 32/32", len(k1.Cipher()), len(k1.MAC()))
	}
	if bytes.Equal(k1.Cipher(), k1.MAC()) {
		t.Error("cipher and MAC subkeys must differ")
	}
}

func TestDeriveDifferentSaltsDiverge(t *testing.T) {
	password := []byte("correct horse battery staple")
	salt1 := bytes.Repeat([]byte{0x11}, SaltSize)
	salt2 := bytes.Repeat([]byte{0x22}, SaltSize)

	k1, err := Derive(password, salt1, smallParams())
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	k2, err := Derive(password, salt2, smallParams())
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if bytes.Equal(k1.Cipher(), k2.Cipher()) {
		t.Error("different salts produced the same cipher subkey")
	}
}

func TestKeysCloseZeroes(t *testing.T) {
	k, err := Derive([]byte("pw"), bytes.Repeat([]byte{1}, SaltSize), smallParams())
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	// Capture the backing slices before Close so we can observe Close's
	// in-place zeroing; Cipher()/MAC() themselves return nil afterward.
	cipher := k.Cipher()
	macKey := k.MAC()

	k.Close()

	for _, b := range cipher {
		if b != 0 {
			t.Fatal("cipher subkey not zeroed after Close")
		}
	}
	for _, b := range macKey {
		if b != 0 {
			t.Fatal("mac subkey not zeroed after Close")
		}
	}
	if k.Cipher() != nil || k.MAC() != nil {
		t.Error("Cipher()/MAC() must return nil after Close")
	}
}

func TestRandomSaltIsUniqueAndSized(t *testing.T) {
	s1, err := RandomSalt()
	if err != nil {
		t.Fatalf("RandomSalt failed: %v", err)
	}
	s2, err := RandomSalt()
	if err != nil {
		t.Fatalf("RandomSalt failed: %v", err)
	}
	if len(s1) != SaltSize {
		t.Fatalf("salt size = %d, want %d", len(s1), SaltSize)
	}
	if bytes.Equal(s1, s2) {
		t.Error("two RandomSalt calls produced identical output")
	}
}
