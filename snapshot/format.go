package snapshot

import (
	"errors"
	"fmt"
)

const (
	// MagicNumber identifies snapshot files (ASCII: "BDX1").
	MagicNumber = 0x31584442
	// Version is the current snapshot format version.
	Version = 1

	headerSize = 4 + 2 + 1 + 1 + 8 + 4
	crcSize    = 4
)

var (
	ErrInvalidMagic   = errors.New("snapshot: invalid magic number")
	ErrInvalidVersion = errors.New("snapshot: unsupported version")
	ErrCorrupted      = errors.New("snapshot: data is corrupted")
	// ErrChecksumMismatch matches any *ChecksumMismatchError via errors.Is.
	ErrChecksumMismatch = errors.New("snapshot: checksum mismatch")
)

// ChecksumMismatchError is returned when checksum verification fails.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("snapshot: checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// Is reports whether target is ErrChecksumMismatch.
func (e *ChecksumMismatchError) Is(target error) bool {
	return target == ErrChecksumMismatch
}
