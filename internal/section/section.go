// Package section implements the length-prefixed, RS-encoded byte runs the
// container header is built from. Each logical header field (magic, salt,
// parameter block, metadata, MAC) is stored as one section.
package section

import (
	"encoding/binary"
	"fmt"

	"github.com/hambosto/sweetbyte/internal/ioutil"
	"github.com/hambosto/sweetbyte/internal/rscodec"
)

// LengthFieldSize is the size of the plain length field that accompanies
// every section; its RS-encoded copy is EncodedLengthSize() bytes.
const LengthFieldSize = 4

// Section is the result of encoding one raw header field: its RS-encoded
// bytes, the plain length of those bytes, and an independently RS-encoded
// copy of that length (a second line of defense against corruption of the
// lengths block itself).
type Section struct {
	Encoded       []byte
	Length        uint32
	LengthEncoded []byte
}

// Encode RS-encodes raw and also RS-encodes the resulting length, so a
// corrupted lengths header can still be recovered independently of the
// section payload.
func Encode(codec *rscodec.Codec, raw []byte) (*Section, error) {
	encoded, err := codec.Encode(raw)
	if err != nil {
		return nil, fmt.Errorf("section: encode payload: %w", err)
	}

	encodedLen, err := ioutil.ToUint32(len(encoded))
	if err != nil {
		return nil, fmt.Errorf("section: encoded payload too large: %w", err)
	}

	lengthBytes := make([]byte, LengthFieldSize)
	binary.BigEndian.PutUint32(lengthBytes, encodedLen)

	lengthEncoded, err := codec.Encode(lengthBytes)
	if err != nil {
		return nil, fmt.Errorf("section: encode length: %w", err)
	}

	return &Section{
		Encoded:       encoded,
		Length:        encodedLen,
		LengthEncoded: lengthEncoded,
	}, nil
}

// DecodeLength RS-decodes a length field previously produced by Encode. It
// returns an error if the length section is unrecoverable; callers should
// fall back to a tentative, non-RS-protected length in that case.
func DecodeLength(codec *rscodec.Codec, lengthEncoded []byte) (uint32, error) {
	raw, err := codec.Decode(lengthEncoded)
	if err != nil {
		return 0, err
	}
	if len(raw) != LengthFieldSize {
		return 0, rscodec.ErrSectionTruncated
	}
	return binary.BigEndian.Uint32(raw), nil
}

// Decode RS-decodes a section payload back to its raw bytes.
func Decode(codec *rscodec.Codec, encoded []byte) ([]byte, error) {
	return codec.Decode(encoded)
}

// EncodedLengthSize returns the encoded byte size of an RS-encoded 4-byte
// length field (constant, since rscodec.EncodedLen(4) never changes).
func EncodedLengthSize() int {
	return rscodec.EncodedLen(LengthFieldSize)
}
