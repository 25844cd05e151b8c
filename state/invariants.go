package state

import (
	"github.com/cockroachdb/errors"
	"github.com/streamflow-finance/timelock/common"
)

// CheckInvariants verifies bookkeeping consistency of a single record.
func (c *Contract) CheckInvariants() error {
	if err := c.Ix.Validate(); err != nil {
		return errors.Wrap(err, "stream schedule")
	}
	if c.AmountWithdrawn > c.Ix.NetAmountDeposited {
		return errors.Wrapf(common.ErrReconciliation, "withdrawn %d exceeds deposited %d",
			c.AmountWithdrawn, c.Ix.NetAmountDeposited)
	}
	for i := range c.Fees {
		if c.Fees[i].Withdrawn > c.Fees[i].Total {
			return errors.Wrapf(common.ErrReconciliation, "%s fee withdrawn %d exceeds total %d",
				FeeKind(i), c.Fees[i].Withdrawn, c.Fees[i].Total)
		}
	}
	if _, err := c.GrossAmount(); err != nil {
		return err
	}

	end, err := c.Ix.CalculateEndTime()
	if err != nil {
		return err
	}
	if end != c.EndTime {
		return errors.Wrapf(common.ErrReconciliation, "end time %d, derived %d", c.EndTime, end)
	}
	return nil
}

// CheckTransition verifies that next is a valid successor of prev: fields set
// at creation are unchanged, running totals do not decrease and cancellation
// is final.
func CheckTransition(prev, next *Contract) error {
	if err := next.CheckInvariants(); err != nil {
		return err
	}

	fixed := func(c *Contract) Contract {
		return Contract{
			Magic:           c.Magic,
			Version:         c.Version,
			CreatedAt:       c.CreatedAt,
			Sender:          c.Sender,
			SenderTokens:    c.SenderTokens,
			Recipient:       c.Recipient,
			RecipientTokens: c.RecipientTokens,
			Mint:            c.Mint,
			EscrowTokens:    c.EscrowTokens,
		}
	}
	if fixed(prev) != fixed(next) {
		return errors.Wrap(common.ErrReconciliation, "immutable stream fields changed")
	}

	for i := range prev.Fees {
		p, n := prev.Fees[i], next.Fees[i]
		if p.Beneficiary != n.Beneficiary || p.Tokens != n.Tokens || p.Percent != n.Percent {
			return errors.Wrapf(common.ErrReconciliation, "%s fee terms changed", FeeKind(i))
		}
		if n.Total < p.Total || n.Withdrawn < p.Withdrawn {
			return errors.Wrapf(common.ErrReconciliation, "%s fee totals decreased", FeeKind(i))
		}
	}

	pIx, nIx := prev.Ix, next.Ix
	pIx.NetAmountDeposited, nIx.NetAmountDeposited = 0, 0
	if pIx != nIx {
		return errors.Wrap(common.ErrReconciliation, "stream parameters changed")
	}

	switch {
	case next.Ix.NetAmountDeposited < prev.Ix.NetAmountDeposited:
		return errors.Wrap(common.ErrReconciliation, "deposited amount decreased")
	case next.AmountWithdrawn < prev.AmountWithdrawn:
		return errors.Wrap(common.ErrReconciliation, "withdrawn amount decreased")
	case prev.IsCanceled() && next.CanceledAt != prev.CanceledAt:
		return errors.Wrap(common.ErrReconciliation, "cancellation time changed")
	}
	return nil
}
