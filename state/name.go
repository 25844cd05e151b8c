package state

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/streamflow-finance/timelock/common"
)

// StreamName is a fixed-size zero-padded stream label.
type StreamName [common.MaxNameSize]byte

// NewStreamName returns s as a StreamName. Names longer than
// common.MaxNameSize bytes are rejected.
func NewStreamName(s string) (StreamName, error) {
	var n StreamName
	if len(s) > len(n) {
		return n, errors.Wrapf(common.ErrPrecondition, "stream name is %d bytes, max %d", len(s), len(n))
	}
	copy(n[:], s)
	return n, nil
}

// String returns the name without zero padding.
func (n StreamName) String() string {
	return string(bytes.TrimRight(n[:], "\x00"))
}

// MarshalText implements encoding.TextMarshaler.
func (n StreamName) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *StreamName) UnmarshalText(text []byte) error {
	v, err := NewStreamName(string(text))
	if err != nil {
		return err
	}
	*n = v
	return nil
}
