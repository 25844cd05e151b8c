package common

import "github.com/cockroachdb/errors"

const (
	// ProgramVersion is written into every stream record. Records with a
	// different version are not decoded.
	ProgramVersion uint8 = 2

	// Magic tags stream records.
	Magic uint64 = 0

	// EscrowSeedPrefix is the fixed prefix of escrow address derivation.
	EscrowSeedPrefix = "strm"

	// MaxNameSize is the size of the stream name field in bytes.
	MaxNameSize = 64
)

// ErrVersionMismatch is returned by CheckVersion in case of error.
var ErrVersionMismatch = errors.Wrap(ErrPrecondition, "record version mismatch")

// CheckVersion checks that a stored record was written by the current
// program version.
func CheckVersion(magic uint64, version uint8) error {
	if magic != Magic {
		return errors.Wrapf(ErrVersionMismatch, "magic %d, expected %d", magic, Magic)
	}
	if version != ProgramVersion {
		return errors.Wrapf(ErrVersionMismatch, "version %d, expected %d", version, ProgramVersion)
	}
	return nil
}
