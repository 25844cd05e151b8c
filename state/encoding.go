package state

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/streamflow-finance/timelock/common"
)

const (
	// ContractSize is the size of the binary form of a Contract.
	ContractSize = 8 + 1 + 5*8 + // magic, version, timestamps and withdrawn amount
		6*PublicKeySize + // parties and escrow
		feeKinds*(2*PublicKeySize+2*8+4) +
		paramsSize

	paramsSize = 6*8 + 6 + common.MaxNameSize

	// MetadataLen is the size of the storage buffer holding a Contract.
	MetadataLen = 1104
)

// EncodeBinary implements io.Serializable. All integers are little-endian,
// fixed-size arrays are written as is.
func (c *Contract) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(c.Magic)
	w.WriteB(c.Version)
	w.WriteU64LE(c.CreatedAt)
	w.WriteU64LE(c.AmountWithdrawn)
	w.WriteU64LE(c.CanceledAt)
	w.WriteU64LE(c.EndTime)
	w.WriteU64LE(c.LastWithdrawnAt)
	w.WriteBytes(c.Sender[:])
	w.WriteBytes(c.SenderTokens[:])
	w.WriteBytes(c.Recipient[:])
	w.WriteBytes(c.RecipientTokens[:])
	w.WriteBytes(c.Mint[:])
	w.WriteBytes(c.EscrowTokens[:])
	for i := range c.Fees {
		c.Fees[i].EncodeBinary(w)
	}
	c.Ix.EncodeBinary(w)
}

// DecodeBinary implements io.Serializable.
func (c *Contract) DecodeBinary(r *io.BinReader) {
	c.Magic = r.ReadU64LE()
	c.Version = r.ReadB()
	c.CreatedAt = r.ReadU64LE()
	c.AmountWithdrawn = r.ReadU64LE()
	c.CanceledAt = r.ReadU64LE()
	c.EndTime = r.ReadU64LE()
	c.LastWithdrawnAt = r.ReadU64LE()
	r.ReadBytes(c.Sender[:])
	r.ReadBytes(c.SenderTokens[:])
	r.ReadBytes(c.Recipient[:])
	r.ReadBytes(c.RecipientTokens[:])
	r.ReadBytes(c.Mint[:])
	r.ReadBytes(c.EscrowTokens[:])
	for i := range c.Fees {
		c.Fees[i].DecodeBinary(r)
	}
	c.Ix.DecodeBinary(r)
}

// EncodeBinary implements io.Serializable.
func (f *Fee) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(f.Beneficiary[:])
	w.WriteBytes(f.Tokens[:])
	w.WriteU64LE(f.Total)
	w.WriteU64LE(f.Withdrawn)
	w.WriteU32LE(math.Float32bits(f.Percent))
}

// DecodeBinary implements io.Serializable.
func (f *Fee) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(f.Beneficiary[:])
	r.ReadBytes(f.Tokens[:])
	f.Total = r.ReadU64LE()
	f.Withdrawn = r.ReadU64LE()
	f.Percent = math.Float32frombits(r.ReadU32LE())
}

// EncodeBinary implements io.Serializable.
func (p *CreateParams) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(p.StartTime)
	w.WriteU64LE(p.NetAmountDeposited)
	w.WriteU64LE(p.Period)
	w.WriteU64LE(p.AmountPerPeriod)
	w.WriteU64LE(p.Cliff)
	w.WriteU64LE(p.CliffAmount)
	w.WriteBool(p.CancelableBySender)
	w.WriteBool(p.CancelableByRecipient)
	w.WriteBool(p.AutomaticWithdrawal)
	w.WriteBool(p.TransferableBySender)
	w.WriteBool(p.TransferableByRecipient)
	w.WriteBool(p.CanTopup)
	w.WriteBytes(p.StreamName[:])
}

// DecodeBinary implements io.Serializable.
func (p *CreateParams) DecodeBinary(r *io.BinReader) {
	p.StartTime = r.ReadU64LE()
	p.NetAmountDeposited = r.ReadU64LE()
	p.Period = r.ReadU64LE()
	p.AmountPerPeriod = r.ReadU64LE()
	p.Cliff = r.ReadU64LE()
	p.CliffAmount = r.ReadU64LE()
	p.CancelableBySender = r.ReadBool()
	p.CancelableByRecipient = r.ReadBool()
	p.AutomaticWithdrawal = r.ReadBool()
	p.TransferableBySender = r.ReadBool()
	p.TransferableByRecipient = r.ReadBool()
	p.CanTopup = r.ReadBool()
	r.ReadBytes(p.StreamName[:])
}

// Bytes returns binary form of the Contract.
func (c *Contract) Bytes() ([]byte, error) {
	w := io.NewBufBinWriter()
	c.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, errors.Wrap(w.Err, "encode stream record")
	}
	return w.Bytes(), nil
}

// Save writes the Contract to the beginning of buf and zeroes the rest of it.
func (c *Contract) Save(buf []byte) error {
	b, err := c.Bytes()
	if err != nil {
		return err
	}
	if len(buf) < len(b) {
		return errors.Wrapf(common.ErrPrecondition, "buffer of %d bytes, record needs %d", len(buf), len(b))
	}

	n := copy(buf, b)
	clear(buf[n:])
	return nil
}

// Load decodes a Contract from the beginning of buf. Bytes beyond
// ContractSize are ignored.
func Load(buf []byte) (*Contract, error) {
	if len(buf) < ContractSize {
		return nil, errors.Wrapf(common.ErrPrecondition, "buffer of %d bytes, record needs %d", len(buf), ContractSize)
	}

	c := new(Contract)
	r := io.NewBinReaderFromBuf(buf[:ContractSize])
	c.DecodeBinary(r)
	if r.Err != nil {
		return nil, errors.Wrap(r.Err, "decode stream record")
	}

	if err := common.CheckVersion(c.Magic, c.Version); err != nil {
		return nil, err
	}
	return c, nil
}
