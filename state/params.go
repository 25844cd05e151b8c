package state

import (
	"github.com/cockroachdb/errors"
	"github.com/streamflow-finance/timelock/common"
	"github.com/streamflow-finance/timelock/internal/safemath"
)

// CreateParams describes vesting curve and permissions of a single stream.
// They are fixed at creation; only NetAmountDeposited grows with deposits.
type CreateParams struct {
	// Timestamp when the tokens start vesting.
	StartTime uint64 `yaml:"start_time" json:"start_time"`
	// Principal subject to vesting, fees excluded.
	NetAmountDeposited uint64 `yaml:"net_amount_deposited" json:"net_amount_deposited"`
	// Seconds per release tick.
	Period uint64 `yaml:"period" json:"period"`
	// Amount released per tick.
	AmountPerPeriod uint64 `yaml:"amount_per_period" json:"amount_per_period"`
	// Cliff timestamp, zero if the stream has no cliff.
	Cliff uint64 `yaml:"cliff" json:"cliff"`
	// Amount unlocked at once at Cliff.
	CliffAmount uint64 `yaml:"cliff_amount" json:"cliff_amount"`

	CancelableBySender    bool `yaml:"cancelable_by_sender" json:"cancelable_by_sender"`
	CancelableByRecipient bool `yaml:"cancelable_by_recipient" json:"cancelable_by_recipient"`
	// Whether a third party may withdraw in the name of the recipient.
	AutomaticWithdrawal     bool `yaml:"automatic_withdrawal" json:"automatic_withdrawal"`
	TransferableBySender    bool `yaml:"transferable_by_sender" json:"transferable_by_sender"`
	TransferableByRecipient bool `yaml:"transferable_by_recipient" json:"transferable_by_recipient"`
	// Whether tokens sent to escrow directly count as deposits.
	CanTopup bool `yaml:"can_topup" json:"can_topup"`

	StreamName StreamName `yaml:"stream_name" json:"stream_name"`
}

// EffectiveStart returns the cliff timestamp if set, start time otherwise.
func (p CreateParams) EffectiveStart() uint64 {
	if p.Cliff > 0 {
		return p.Cliff
	}
	return p.StartTime
}

// Validate checks the shape of the schedule.
func (p CreateParams) Validate() error {
	switch {
	case p.Period == 0:
		return errors.Wrap(common.ErrPrecondition, "zero period")
	case p.AmountPerPeriod == 0:
		return errors.Wrap(common.ErrPrecondition, "zero amount per period")
	case p.CliffAmount > p.NetAmountDeposited:
		return errors.Wrapf(common.ErrPrecondition, "cliff amount %d exceeds deposited %d",
			p.CliffAmount, p.NetAmountDeposited)
	}
	return nil
}

// CalculateEndTime returns the timestamp after which the stream is either
// fully vested or cannot release another full period. A third party may close
// the stream from then on.
func (p CreateParams) CalculateEndTime() (uint64, error) {
	if p.AmountPerPeriod == 0 {
		return 0, errors.Wrap(common.ErrPrecondition, "calculate end time: zero amount per period")
	}

	periodsLeft, err := safemath.Div(p.NetAmountDeposited, p.AmountPerPeriod)
	if err != nil {
		return 0, err
	}

	secondsLeft, err := safemath.Mul(periodsLeft, p.Period)
	if err != nil {
		return 0, errors.Wrap(err, "calculate end time")
	}

	end, err := safemath.Add(p.EffectiveStart(), secondsLeft)
	if err != nil {
		return 0, errors.Wrap(err, "calculate end time")
	}
	return end, nil
}

// StreamAvailable returns the linearly released amount at now, cliff amount
// excluded. It fails with common.ErrNotStarted before the effective start.
func (p CreateParams) StreamAvailable(now uint64) (uint64, error) {
	if p.Period == 0 {
		return 0, errors.Wrap(common.ErrPrecondition, "stream available: zero period")
	}

	start := p.EffectiveStart()
	if now < start {
		return 0, errors.Wrapf(common.ErrNotStarted, "now %d, start %d", now, start)
	}

	elapsed, err := safemath.Sub(now, start)
	if err != nil {
		return 0, err
	}

	periodsPassed, err := safemath.Div(elapsed, p.Period)
	if err != nil {
		return 0, err
	}

	available, err := safemath.Mul(periodsPassed, p.AmountPerPeriod)
	if err != nil {
		return 0, errors.Wrap(err, "stream available")
	}
	return available, nil
}
