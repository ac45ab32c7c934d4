package header

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hambosto/sweetbyte/internal/mac"
	"github.com/hambosto/sweetbyte/internal/rscodec"
	"github.com/hambosto/sweetbyte/internal/section"
)

// Write serializes and writes the full container header: the plain lengths
// block, the RS-encoded copies of those lengths (a second line of defense
// against corruption of the lengths themselves), and the five RS-encoded
// sections, in the order fixed by the container format.
func Write(w io.Writer, codec *rscodec.Codec, salt []byte, params Params, meta Metadata, macKey []byte) error {
	if len(salt) != SaltSize {
		return fmt.Errorf("header: salt must be %d bytes, got %d", SaltSize, len(salt))
	}

	s1 := marshalMagic()
	s2 := salt
	s3 := params.marshal()
	s4, err := meta.marshal()
	if err != nil {
		return err
	}
	s5 := mac.Sum(macKey, concatSections(s2, s3, s4))

	raw := [5][]byte{s1, s2, s3, s4, s5}
	sections := make([]*section.Section, 5)
	for i, r := range raw {
		sec, err := section.Encode(codec, r)
		if err != nil {
			return fmt.Errorf("header: encode section %d: %w", i+1, err)
		}
		sections[i] = sec
	}

	lengths := make([]byte, 20)
	for i, sec := range sections {
		binary.BigEndian.PutUint32(lengths[i*4:i*4+4], sec.Length)
	}
	if _, err := w.Write(lengths); err != nil {
		return fmt.Errorf("header: write lengths: %w", err)
	}

	for i, sec := range sections {
		if _, err := w.Write(sec.LengthEncoded); err != nil {
			return fmt.Errorf("header: write encoded length %d: %w", i+1, err)
		}
	}

	for i, sec := range sections {
		if _, err := w.Write(sec.Encoded); err != nil {
			return fmt.Errorf("header: write section %d: %w", i+1, err)
		}
	}

	return nil
}

func concatSections(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
