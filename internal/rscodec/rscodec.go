// Package rscodec implements the Reed-Solomon shard envelope used for both
// header sections and payload chunks.
//
// Every encoded section has the same shape: a big-endian length prefix
// followed by 14 equal-size shards (4 data + 10 parity), each shard
// prefixed with a 4-byte big-endian CRC-32 of its payload. A shard whose
// CRC does not match its payload is treated as erased; up to 10 erased
// shards can still be repaired because any 4 of the 14 shards determine
// the original data.
package rscodec

import (
	"encoding/binary"
	"errors"
	"hash/crc32"

	"github.com/klauspost/reedsolomon"

	"github.com/hambosto/sweetbyte/internal/ioutil"
)

// Shard geometry fixed by the container format.
const (
	DataShards   = 4
	ParityShards = 10
	TotalShards  = DataShards + ParityShards

	crcSize      = 4
	lengthPrefix = 4
)

// ErrSectionTruncated is returned when an encoded section is too short to
// contain its declared shard layout.
var ErrSectionTruncated = errors.New("rscodec: section truncated")

// ErrShardUnrecoverable is returned when fewer than DataShards shards pass
// their CRC check, so the original data cannot be reconstructed.
var ErrShardUnrecoverable = errors.New("rscodec: too many corrupted shards to recover")

// Codec wraps a Reed-Solomon encoder configured for DataShards/ParityShards.
// It is immutable once constructed and safe to share across goroutines.
type Codec struct {
	enc reedsolomon.Encoder
}

// New builds a Codec. Construct once per operation and reuse across chunks.
func New() (*Codec, error) {
	enc, err := reedsolomon.New(DataShards, ParityShards)
	if err != nil {
		return nil, err
	}
	return &Codec{enc: enc}, nil
}

// Encode produces an encoded section: [u32 BE original_length][shard0..shard13],
// each shard itself [4-byte CRC32][payload].
func (c *Codec) Encode(input []byte) ([]byte, error) {
	originalLen := len(input)

	padded := input
	if originalLen == 0 {
		padded = make([]byte, DataShards)
	}

	shards, err := c.enc.Split(padded)
	if err != nil {
		return nil, err
	}
	if err := c.enc.Encode(shards); err != nil {
		return nil, err
	}

	shardSize := len(shards[0])
	out := make([]byte, lengthPrefix+TotalShards*(crcSize+shardSize))
	binary.BigEndian.PutUint32(out[0:lengthPrefix], uint32(originalLen))

	off := lengthPrefix
	for _, s := range shards {
		crc := crc32.ChecksumIEEE(s)
		binary.BigEndian.PutUint32(out[off:off+crcSize], crc)
		off += crcSize
		copy(out[off:off+shardSize], s)
		off += shardSize
	}
	return out, nil
}

// EncodedLen returns the byte length Encode would produce for an input of
// length n, without doing the encoding work.
func EncodedLen(n int) int {
	dataLen := n
	if dataLen == 0 {
		dataLen = DataShards
	}
	shardSize := (dataLen + DataShards - 1) / DataShards
	return lengthPrefix + TotalShards*(crcSize+shardSize)
}

// Decode reverses Encode, tolerating up to ParityShards corrupted or
// missing shards (identified by CRC mismatch).
func (c *Codec) Decode(section []byte) ([]byte, error) {
	if len(section) < lengthPrefix {
		return nil, ErrSectionTruncated
	}
	originalLen, err := ioutil.ToInt(binary.BigEndian.Uint32(section[0:lengthPrefix]))
	if err != nil {
		return nil, ErrSectionTruncated
	}
	rest := section[lengthPrefix:]

	if len(rest) == 0 || len(rest)%TotalShards != 0 {
		return nil, ErrSectionTruncated
	}
	shardTotalSize := len(rest) / TotalShards
	if shardTotalSize <= crcSize {
		return nil, ErrSectionTruncated
	}
	shardSize := shardTotalSize - crcSize

	shards := make([][]byte, TotalShards)
	survived := 0
	off := 0
	for i := 0; i < TotalShards; i++ {
		chunk := rest[off : off+shardTotalSize]
		off += shardTotalSize

		crc := binary.BigEndian.Uint32(chunk[0:crcSize])
		payload := chunk[crcSize:]
		if crc32.ChecksumIEEE(payload) == crc {
			buf := make([]byte, shardSize)
			copy(buf, payload)
			shards[i] = buf
			survived++
		}
	}

	if survived < DataShards {
		return nil, ErrShardUnrecoverable
	}

	if err := c.enc.ReconstructData(shards); err != nil {
		return nil, ErrShardUnrecoverable
	}

	dataLen := originalLen
	if dataLen == 0 {
		dataLen = DataShards
	}
	out := make([]byte, 0, dataLen)
	for i := 0; i < DataShards && len(out) < dataLen; i++ {
		take := dataLen - len(out)
		if take > len(shards[i]) {
			take = len(shards[i])
		}
		out = append(out, shards[i][:take]...)
	}

	if originalLen == 0 {
		return out[:0], nil
	}
	return out[:originalLen], nil
}
