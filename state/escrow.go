package state

import (
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/streamflow-finance/timelock/common"
)

// FindEscrowAccount derives the escrow token account of a stream from its seed
// (usually the key of the stream record) for the given program version.
func FindEscrowAccount(version uint8, seed []byte, programID PublicKey) PublicKey {
	b := make([]byte, 0, len(common.EscrowSeedPrefix)+len(seed)+1+PublicKeySize)
	b = append(b, common.EscrowSeedPrefix...)
	b = append(b, seed...)
	b = append(b, version)
	b = append(b, programID[:]...)

	return PublicKey(hash.Sha256(b))
}
