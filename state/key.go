package state

import (
	"github.com/cockroachdb/errors"
	"github.com/mr-tron/base58"
	"github.com/streamflow-finance/timelock/common"
)

// PublicKeySize is the size of a PublicKey in bytes.
const PublicKeySize = 32

// PublicKey identifies a party or a token account. Its text form is base58.
type PublicKey [PublicKeySize]byte

// DecodePublicKey parses base58 text form of a PublicKey.
func DecodePublicKey(s string) (PublicKey, error) {
	var k PublicKey

	b, err := base58.Decode(s)
	if err != nil {
		return k, errors.Wrapf(common.ErrPrecondition, "decode public key %q: %v", s, err)
	}
	if len(b) != PublicKeySize {
		return k, errors.Wrapf(common.ErrPrecondition, "public key %q has %d bytes, expected %d", s, len(b), PublicKeySize)
	}

	copy(k[:], b)
	return k, nil
}

// String returns base58 form of the key.
func (k PublicKey) String() string {
	return base58.Encode(k[:])
}

// IsZero checks whether all key bytes are zero.
func (k PublicKey) IsZero() bool {
	return k == PublicKey{}
}

// MarshalText implements encoding.TextMarshaler.
func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *PublicKey) UnmarshalText(text []byte) error {
	v, err := DecodePublicKey(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
