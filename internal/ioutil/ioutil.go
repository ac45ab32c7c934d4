// Package ioutil collects small file- and numeric-safety helpers shared by
// the orchestrator and the container codecs (header, section, rscodec,
// pipeline): exclusive-create output handling and
// overflow-checked casts between file sizes/chunk lengths and the fixed-
// width integers the container format stores.
package ioutil

import (
	"fmt"
	"os"

	"github.com/ccoveille/go-safecast/v2"
)

// IncompleteSuffix is appended to the output path while a write is in
// flight; the file is renamed to its final name only after a successful
// Sync, so a reader never observes a half-written container under its
// real name.
const IncompleteSuffix = ".incomplete"

// CreateExclusive opens path for writing, failing if it already exists.
// The orchestrator uses this for the ".incomplete" staging file so two
// concurrent runs (or a stale leftover) can never silently overwrite data.
func CreateExclusive(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("ioutil: create %s: %w", path, err)
	}
	return f, nil
}

// Exists reports whether path already exists, treating any stat error
// other than "not exist" as inconclusive (propagated to the caller).
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("ioutil: stat %s: %w", path, err)
}

// FinalizeOutput fsyncs f, closes it, and atomically renames it from its
// ".incomplete" staging path to final. Callers must not use f afterward.
func FinalizeOutput(f *os.File, final string) error {
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("ioutil: sync %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("ioutil: close %s: %w", f.Name(), err)
	}
	if err := os.Rename(f.Name(), final); err != nil {
		return fmt.Errorf("ioutil: rename %s to %s: %w", f.Name(), final, err)
	}
	return nil
}

// DiscardOutput closes f and removes its staging file. Errors are not
// propagated: this runs on an already-failing path and must not mask the
// original error, but a leftover ".incomplete" file must never be mistaken
// for valid output.
func DiscardOutput(f *os.File) {
	if f == nil {
		return
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
}

// ToUint32 safely narrows n (a file size, chunk length, or similar count)
// to uint32, returning an error instead of silently truncating on overflow.
func ToUint32(n int) (uint32, error) {
	v, err := safecast.ToUint32(n)
	if err != nil {
		return 0, fmt.Errorf("ioutil: value %d does not fit uint32: %w", n, err)
	}
	return v, nil
}

// ToUint16 safely narrows n to uint16, used for the metadata filename
// length prefix.
func ToUint16(n int) (uint16, error) {
	v, err := safecast.ToUint16(n)
	if err != nil {
		return 0, fmt.Errorf("ioutil: value %d does not fit uint16: %w", n, err)
	}
	return v, nil
}

// ToInt safely widens/narrows n (typically a uint32 chunk length read off
// the wire) to int, the type Go's io and slice APIs expect.
func ToInt(n uint32) (int, error) {
	v, err := safecast.ToInt(n)
	if err != nil {
		return 0, fmt.Errorf("ioutil: value %d does not fit int: %w", n, err)
	}
	return v, nil
}
