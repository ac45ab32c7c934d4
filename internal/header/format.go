// Package header implements the SweetByte container header: its on-disk
// byte layout, serialization, and the RS/MAC-backed recovery state machine
// used to read it back. This is format-critical code — changes here affect
// compatibility with every .swx file already written.
package header

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hambosto/sweetbyte/internal/ioutil"
)

// Magic and version identify the container format and gate all further
// processing; both must be validated before any KDF work is performed.
const (
	Magic          uint32 = 0xDEADBEEF
	Version        uint16 = 0x0002
	magicSectionSize      = 4 + 2 // u32 magic, u16 version
)

// Algorithm, compression, encoding and KDF tags recorded in the parameter
// block. SweetByte v2 only ever writes one of each, but the tags let a
// future version extend the format without breaking S1's magic/version gate.
const (
	AlgorithmAESThenXChaCha uint8 = 1
	CompressionZstd         uint8 = 1
	EncodingRS4Plus10       uint8 = 1
	KDFArgon2id             uint8 = 1
)

// paramBlockSize is the packed size of the S3 parameter block: algorithm(1)
// + compression(1) + encoding(1) + kdf(1) + kdf_memory_kib(4) + kdf_time(1)
// + kdf_parallelism(1) + reserved(2) = 12 bytes.
const paramBlockSize = 12

// SaltSize is the size of the Argon2id salt stored as S2.
const SaltSize = 32

// MACSize is the size of the S5 HMAC-SHA-256 tag.
const MACSize = 32

// ContentHashSize is the size of the BLAKE3 content hash in the metadata.
const ContentHashSize = 32

// ErrBadMagicOrVersion is returned when S1 does not decode to the expected
// magic and version. Per spec, this must be checked before any KDF work.
var ErrBadMagicOrVersion = errors.New("header: bad magic or unsupported version")

// ErrMACMismatch is returned when the recomputed header MAC does not match
// the stored tag.
var ErrMACMismatch = errors.New("header: mac mismatch")

// ErrMetadataTruncated is returned when the S4 metadata section is too
// short to contain its declared fields, or when the S3 parameter block is
// not exactly paramBlockSize bytes.
var ErrMetadataTruncated = errors.New("header: metadata section truncated")

// Params is the packed S3 parameter block.
type Params struct {
	Algorithm      uint8
	Compression    uint8
	Encoding       uint8
	KDF            uint8
	KDFMemoryKiB   uint32
	KDFTime        uint8
	KDFParallelism uint8
}

// DefaultParams returns the parameter block SweetByte v2 always writes.
func DefaultParams() Params {
	return Params{
		Algorithm:      AlgorithmAESThenXChaCha,
		Compression:    CompressionZstd,
		Encoding:       EncodingRS4Plus10,
		KDF:            KDFArgon2id,
		KDFMemoryKiB:   65536,
		KDFTime:        3,
		KDFParallelism: 4,
	}
}

func (p Params) marshal() []byte {
	b := make([]byte, paramBlockSize)
	b[0] = p.Algorithm
	b[1] = p.Compression
	b[2] = p.Encoding
	b[3] = p.KDF
	binary.BigEndian.PutUint32(b[4:8], p.KDFMemoryKiB)
	b[8] = p.KDFTime
	b[9] = p.KDFParallelism
	// b[10:12] reserved, left zero.
	return b
}

func unmarshalParams(b []byte) (Params, error) {
	if len(b) != paramBlockSize {
		return Params{}, ErrMetadataTruncated
	}
	return Params{
		Algorithm:      b[0],
		Compression:    b[1],
		Encoding:       b[2],
		KDF:            b[3],
		KDFMemoryKiB:   binary.BigEndian.Uint32(b[4:8]),
		KDFTime:        b[8],
		KDFParallelism: b[9],
	}, nil
}

// Metadata is the packed S4 section: original filename, original plaintext
// size, and a BLAKE3 hash of the full plaintext content.
type Metadata struct {
	Filename     string
	OriginalSize uint64
	ContentHash  [ContentHashSize]byte
}

func (m Metadata) marshal() ([]byte, error) {
	name := []byte(m.Filename)
	nameLen, err := ioutil.ToUint16(len(name))
	if err != nil {
		return nil, fmt.Errorf("header: filename too long: %w", err)
	}

	b := make([]byte, 2+len(name)+8+ContentHashSize)
	off := 0
	binary.BigEndian.PutUint16(b[off:off+2], nameLen)
	off += 2
	copy(b[off:off+len(name)], name)
	off += len(name)
	binary.BigEndian.PutUint64(b[off:off+8], m.OriginalSize)
	off += 8
	copy(b[off:off+ContentHashSize], m.ContentHash[:])
	return b, nil
}

func unmarshalMetadata(b []byte) (Metadata, error) {
	if len(b) < 2 {
		return Metadata{}, ErrMetadataTruncated
	}
	nameLen := int(binary.BigEndian.Uint16(b[0:2]))
	off := 2
	if len(b) < off+nameLen+8+ContentHashSize {
		return Metadata{}, ErrMetadataTruncated
	}
	name := string(b[off : off+nameLen])
	off += nameLen
	size := binary.BigEndian.Uint64(b[off : off+8])
	off += 8
	var hash [ContentHashSize]byte
	copy(hash[:], b[off:off+ContentHashSize])
	return Metadata{Filename: name, OriginalSize: size, ContentHash: hash}, nil
}

func marshalMagic() []byte {
	b := make([]byte, magicSectionSize)
	binary.BigEndian.PutUint32(b[0:4], Magic)
	binary.BigEndian.PutUint16(b[4:6], Version)
	return b
}

func validateMagic(b []byte) error {
	if len(b) != magicSectionSize {
		return ErrBadMagicOrVersion
	}
	if binary.BigEndian.Uint32(b[0:4]) != Magic {
		return ErrBadMagicOrVersion
	}
	if binary.BigEndian.Uint16(b[4:6]) != Version {
		return ErrBadMagicOrVersion
	}
	return nil
}
