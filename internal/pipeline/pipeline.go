// Package pipeline composes the per-chunk transform stack: compress, pad,
// seal with AES-256-GCM, seal with XChaCha20-Poly1305, then RS-encode.
// Decrypt-one runs the exact inverse, failing closed at the first stage
// that rejects its input.
package pipeline

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hambosto/sweetbyte/internal/aead"
	"github.com/hambosto/sweetbyte/internal/compress"
	"github.com/hambosto/sweetbyte/internal/ioutil"
	"github.com/hambosto/sweetbyte/internal/padding"
	"github.com/hambosto/sweetbyte/internal/rscodec"
	"github.com/hambosto/sweetbyte/internal/xerrors"
)

// lengthPrefixSize is the size of the big-endian u32 that precedes every
// encoded chunk on the wire.
const lengthPrefixSize = 4

// EncryptOne runs plaintext through compress -> pad -> seal_aes ->
// seal_xchacha -> rs_encode and returns the wire chunk: a u32 BE length
// prefix followed by the RS-encoded bytes.
func EncryptOne(plaintext []byte, ciphers *aead.Pair, codec *rscodec.Codec) ([]byte, error) {
	compressed, err := compress.Compress(plaintext)
	if err != nil {
		return nil, fmt.Errorf("pipeline: compress: %w", err)
	}
	padded := padding.Pad(compressed)

	aesSealed, err := ciphers.AES.Seal(padded)
	if err != nil {
		return nil, fmt.Errorf("pipeline: seal aes: %w", err)
	}
	xchachaSealed, err := ciphers.XChaCha.Seal(aesSealed)
	if err != nil {
		return nil, fmt.Errorf("pipeline: seal xchacha: %w", err)
	}

	encoded, err := codec.Encode(xchachaSealed)
	if err != nil {
		return nil, fmt.Errorf("pipeline: rs encode: %w", err)
	}

	encodedLen, err := ioutil.ToUint32(len(encoded))
	if err != nil {
		return nil, fmt.Errorf("pipeline: chunk too large: %w", err)
	}

	out := make([]byte, lengthPrefixSize+len(encoded))
	binary.BigEndian.PutUint32(out[:lengthPrefixSize], encodedLen)
	copy(out[lengthPrefixSize:], encoded)
	return out, nil
}

// DecompressCap bounds zstd output to this multiple of the plaintext chunk
// size, guarding against decompression bombs in a tampered chunk.
const DecompressCap = compress.DefaultCapMultiplier

// DecryptOne reverses EncryptOne given the RS-encoded chunk bytes (without
// its length prefix — callers read that separately via ReadChunk).
// maxPlainSize bounds zstd decompression and must be at least as large as
// the largest plaintext chunk the engine can ever produce.
func DecryptOne(encoded []byte, ciphers *aead.Pair, codec *rscodec.Codec, maxPlainSize int) ([]byte, error) {
	decoded, err := codec.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("pipeline: rs decode: %w: %w", xerrors.ErrSectionUnrecoverable, err)
	}

	aesSealed, err := ciphers.XChaCha.Open(decoded)
	if err != nil {
		return nil, err
	}
	padded, err := ciphers.AES.Open(aesSealed)
	if err != nil {
		return nil, err
	}

	compressed, err := padding.Unpad(padded)
	if err != nil {
		return nil, fmt.Errorf("pipeline: unpad: %w: %w", xerrors.ErrPaddingInvalid, err)
	}

	plaintext, err := compress.Decompress(compressed, maxPlainSize*DecompressCap)
	if err != nil {
		return nil, fmt.Errorf("pipeline: decompress: %w: %w", xerrors.ErrDecompressionInvalid, err)
	}
	return plaintext, nil
}

// ReadChunk reads one length-prefixed encoded chunk from r: a u32 BE length
// followed by that many bytes. io.EOF on the length read means a clean
// end of stream; any other error, including a short chunk body, is fatal.
func ReadChunk(r io.Reader) ([]byte, error) {
	var lenBuf [lengthPrefixSize]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n, err := ioutil.ToInt(binary.BigEndian.Uint32(lenBuf[:]))
	if err != nil {
		return nil, fmt.Errorf("pipeline: chunk length: %w", err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("pipeline: read chunk body: %w", err)
	}
	return buf, nil
}
