package state

import (
	"github.com/cockroachdb/errors"
	"github.com/streamflow-finance/timelock/common"
	"github.com/streamflow-finance/timelock/internal/safemath"
)

// Role is a party acting on a stream.
type Role int

const (
	RoleThirdParty Role = iota
	RoleSender
	RoleRecipient
)

// String implements fmt.Stringer.
func (r Role) String() string {
	switch r {
	case RoleSender:
		return "sender"
	case RoleRecipient:
		return "recipient"
	default:
		return "third party"
	}
}

// IsCanceled checks whether the stream was canceled.
func (c *Contract) IsCanceled() bool {
	return c.CanceledAt != 0
}

// IsClosable checks whether the stream reached its end time, after which
// anyone may close it.
func (c *Contract) IsClosable(now uint64) bool {
	return now >= c.EndTime
}

// Vested returns the amount unlocked for the recipient at now: the cliff
// amount plus the linear release, capped at the principal. Vesting stops at
// the cancellation time.
func (c *Contract) Vested(now uint64) (uint64, error) {
	if c.IsCanceled() && now > c.CanceledAt {
		now = c.CanceledAt
	}

	if now < c.Ix.EffectiveStart() {
		return 0, nil
	}

	linear, err := c.Ix.StreamAvailable(now)
	if err != nil {
		if errors.Is(err, common.ErrOverflow) {
			// more than any principal can hold
			return c.Ix.NetAmountDeposited, nil
		}
		return 0, err
	}

	vested := linear
	if c.Ix.Cliff > 0 {
		vested, err = safemath.Add(vested, c.Ix.CliffAmount)
		if err != nil {
			return c.Ix.NetAmountDeposited, nil
		}
	}

	if vested > c.Ix.NetAmountDeposited {
		vested = c.Ix.NetAmountDeposited
	}
	return vested, nil
}

// Withdrawable returns the vested amount not yet paid to the recipient.
func (c *Contract) Withdrawable(now uint64) (uint64, error) {
	vested, err := c.Vested(now)
	if err != nil {
		return 0, err
	}
	if vested < c.AmountWithdrawn {
		// principal never decreases, so this is corrupted state
		return 0, errors.Wrapf(common.ErrReconciliation, "withdrawn %d exceeds vested %d", c.AmountWithdrawn, vested)
	}
	return safemath.Sub(vested, c.AmountWithdrawn)
}

// Withdraw records a payment of amount to the recipient and returns it. Zero
// amount withdraws everything withdrawable.
func (c *Contract) Withdraw(now, amount uint64) (uint64, error) {
	available, err := c.Withdrawable(now)
	if err != nil {
		return 0, err
	}

	if amount == 0 {
		amount = available
	}
	switch {
	case amount == 0:
		return 0, errors.Wrap(common.ErrPrecondition, "nothing to withdraw")
	case amount > available:
		return 0, errors.Wrapf(common.ErrPrecondition, "requested %d, available %d", amount, available)
	}

	withdrawn, err := safemath.Add(c.AmountWithdrawn, amount)
	if err != nil {
		return 0, err
	}

	c.AmountWithdrawn = withdrawn
	c.LastWithdrawnAt = now
	return amount, nil
}

// WithdrawFee pays out everything accrued and not yet paid to the fee
// beneficiary. It returns the paid amount.
func (c *Contract) WithdrawFee(kind FeeKind) (uint64, error) {
	if kind < 0 || int(kind) >= len(c.Fees) {
		return 0, errors.Wrapf(common.ErrPrecondition, "unknown fee kind %d", kind)
	}

	f := &c.Fees[kind]
	outstanding, err := safemath.Sub(f.Total, f.Withdrawn)
	if err != nil {
		return 0, errors.Wrapf(err, "%s fee", kind)
	}

	f.Withdrawn = f.Total
	return outstanding, nil
}

// Cancel stops vesting at now. Sender and recipient may cancel if the stream
// permits them to, anyone may cancel a closable stream.
func (c *Contract) Cancel(now uint64, by Role) error {
	if c.IsCanceled() {
		return errors.Wrapf(common.ErrPrecondition, "stream canceled at %d", c.CanceledAt)
	}
	if now == 0 {
		return errors.Wrap(common.ErrPrecondition, "zero cancellation time")
	}

	if !c.IsClosable(now) {
		var allowed bool
		switch by {
		case RoleSender:
			allowed = c.Ix.CancelableBySender
		case RoleRecipient:
			allowed = c.Ix.CancelableByRecipient
		}
		if !allowed {
			return errors.Wrapf(common.ErrPrecondition, "%s may not cancel before %d", by, c.EndTime)
		}
	}

	c.CanceledAt = now
	return nil
}
