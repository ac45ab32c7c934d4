package header

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hambosto/sweetbyte/internal/mac"
	"github.com/hambosto/sweetbyte/internal/rscodec"
	"github.com/hambosto/sweetbyte/internal/section"
	"github.com/hambosto/sweetbyte/internal/xerrors"
)

// Parsed holds everything recovered from a header by Read, before the MAC
// (which requires a key derived from the password) has been checked.
type Parsed struct {
	Salt     []byte
	Params   Params
	Metadata Metadata

	tagged []byte // S2 || S3 || S4, recomputed for MAC verification
	tag    []byte // S5, the stored MAC
}

// Read implements the deserialize state machine from the container format:
// READ_LENGTHS -> RECOVER_LENGTHS -> READ_ENCODED_SECTIONS -> DECODE_SECTIONS
// -> VALIDATE_MAGIC_VERSION. Magic/version gating happens here, before any
// caller can reach key derivation. MAC verification is a separate step
// (VerifyMAC) because it needs a key derived from the password.
func Read(r io.Reader, codec *rscodec.Codec) (*Parsed, error) {
	// READ_LENGTHS: five tentative plain lengths.
	lengthsBlock := make([]byte, 20)
	if _, err := io.ReadFull(r, lengthsBlock); err != nil {
		return nil, fmt.Errorf("header: read lengths: %w", err)
	}
	lengths := make([]uint32, 5)
	for i := range lengths {
		lengths[i] = binary.BigEndian.Uint32(lengthsBlock[i*4 : i*4+4])
	}

	// RECOVER_LENGTHS: each length has an independently RS-encoded copy;
	// prefer the recovered value whenever RS-decode succeeds.
	encLenSize := section.EncodedLengthSize()
	for i := range lengths {
		encLen := make([]byte, encLenSize)
		if _, err := io.ReadFull(r, encLen); err != nil {
			return nil, fmt.Errorf("header: read encoded length %d: %w", i+1, err)
		}
		if recovered, err := section.DecodeLength(codec, encLen); err == nil {
			lengths[i] = recovered
		}
	}

	// READ_ENCODED_SECTIONS
	encoded := make([][]byte, 5)
	for i, l := range lengths {
		buf := make([]byte, l)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("header: read section %d: %w", i+1, err)
		}
		encoded[i] = buf
	}

	// DECODE_SECTIONS
	raw := make([][]byte, 5)
	for i, e := range encoded {
		dec, err := section.Decode(codec, e)
		if err != nil {
			return nil, fmt.Errorf("header: decode section %d: %w: %w", i+1, xerrors.ErrSectionUnrecoverable, err)
		}
		raw[i] = dec
	}

	// VALIDATE_MAGIC_VERSION: must fail before any KDF work.
	if err := validateMagic(raw[0]); err != nil {
		return nil, fmt.Errorf("%w: %w", xerrors.ErrBadMagicOrVersion, err)
	}

	if len(raw[1]) != SaltSize {
		return nil, fmt.Errorf("header: salt section wrong size: %d", len(raw[1]))
	}
	params, err := unmarshalParams(raw[2])
	if err != nil {
		return nil, err
	}
	meta, err := unmarshalMetadata(raw[3])
	if err != nil {
		return nil, err
	}
	if len(raw[4]) != MACSize {
		return nil, fmt.Errorf("header: mac section wrong size: %d", len(raw[4]))
	}

	return &Parsed{
		Salt:     raw[1],
		Params:   params,
		Metadata: meta,
		tagged:   concatSections(raw[1], raw[2], raw[3]),
		tag:      raw[4],
	}, nil
}

// VerifyMAC is the DERIVE_KEY -> VERIFY_MAC step: the caller derives macKey
// from the password and this header's Salt, then calls VerifyMAC to finish
// the state machine and reach READY. Comparison is constant-time.
func (p *Parsed) VerifyMAC(macKey []byte) error {
	if !mac.Verify(macKey, p.tagged, p.tag) {
		return ErrMACMismatch
	}
	return nil
}
