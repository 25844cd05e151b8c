/*
Package create materializes new streams.

It validates creation parameters supplied by the sender, derives the escrow
account and fee totals, and returns a ready ledger. Nothing is returned for
rejected streams, so nothing can be persisted for them.
*/
package create

import (
	"github.com/cockroachdb/errors"
	"github.com/streamflow-finance/timelock/common"
	"github.com/streamflow-finance/timelock/fees"
	"github.com/streamflow-finance/timelock/state"
	"go.uber.org/zap"
)

// Prm groups parameters of stream creation.
type Prm struct {
	// Writes progress into the log. Optional.
	Logger *zap.Logger

	// Creation timestamp.
	Now uint64

	// Program owning stream escrows.
	ProgramID state.PublicKey

	// Key of the stream record, seeds the escrow address.
	Metadata state.PublicKey

	// Parties of the stream. Zero EscrowTokens is filled with the derived
	// escrow, any other value must match it.
	Accounts state.Accounts

	Params state.CreateParams

	// Source of fee percentages. Defaults to an empty FeeTable.
	Fees FeeAuthority
}

// Validate checks creation parameters of the stream.
func Validate(p state.CreateParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.AmountPerPeriod > p.NetAmountDeposited {
		return errors.Wrapf(common.ErrPrecondition, "deposited amount %d is less than amount per period %d",
			p.NetAmountDeposited, p.AmountPerPeriod)
	}
	return nil
}

// Create builds the ledger of a new stream. Fees of the initial deposit are
// charged on top of the net amount.
func Create(prm Prm) (*state.Contract, error) {
	log := prm.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.Stringer("stream", prm.Metadata))

	if err := Validate(prm.Params); err != nil {
		return nil, errors.Wrap(err, "invalid stream parameters")
	}

	acc := prm.Accounts
	escrow := state.FindEscrowAccount(common.ProgramVersion, prm.Metadata[:], prm.ProgramID)
	switch {
	case acc.EscrowTokens.IsZero():
		acc.EscrowTokens = escrow
	case acc.EscrowTokens != escrow:
		return nil, errors.Wrapf(common.ErrPrecondition, "escrow account %s, expected %s", acc.EscrowTokens, escrow)
	}

	authority := prm.Fees
	if authority == nil {
		t, err := NewFeeTable(fees.DefaultPlatformPercent)
		if err != nil {
			return nil, err
		}
		authority = t
	}

	partnerPercent, platformPercent := authority.FeePercents(acc.Partner)

	net := prm.Params.NetAmountDeposited
	partnerFee, err := fees.FromAmount(net, partnerPercent)
	if err != nil {
		return nil, errors.Wrap(err, "partner fee")
	}
	platformFee, err := fees.FromAmount(net, platformPercent)
	if err != nil {
		return nil, errors.Wrap(err, "platform fee")
	}

	c, err := state.NewContract(prm.Now, acc, prm.Params, partnerFee, partnerPercent, platformFee, platformPercent)
	if err != nil {
		return nil, errors.Wrap(err, "materialize stream")
	}

	log.Info("stream created",
		zap.Stringer("recipient", c.Recipient),
		zap.Uint64("net", net),
		zap.Uint64("partner_fee", partnerFee),
		zap.Uint64("platform_fee", platformFee),
		zap.Uint64("end_time", c.EndTime))

	return c, nil
}
