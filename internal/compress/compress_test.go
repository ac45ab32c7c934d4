package compress

import (
	"bytes"
	"testing"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		[]byte("hello, world"),
		bytes.Repeat([]byte("the quick brown fox "), 5000),
	}
	for _, in := range cases {
		c, err := Compress(in)
		if err != nil {
			t.Fatalf("Compress failed: %v", err)
		}
		out, err := Decompress(c, len(in)*DefaultCapMultiplier+1024)
		if err != nil {
			t.Fatalf("Decompress failed: %v", err)
		}
		if !bytes.Equal(out, in) {
			t.Errorf("round trip mismatch for %d-byte input", len(in))
		}
	}
}

func TestDecompressEnforcesCap(t *testing.T) {
	in := bytes.Repeat([]byte{0}, 1<<20) // highly compressible
	c, err := Compress(in)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if _, err := Decompress(c, 1024); err != ErrDecompressionBomb {
		t.Errorf("Decompress error = %v, want ErrDecompressionBomb", err)
	}
}
