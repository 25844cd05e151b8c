/*
Package fees computes service fees taken from stream deposits and the amount of
value that reached a stream escrow outside of recorded deposits.
*/
package fees

import (
	"math"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/streamflow-finance/timelock/common"
	"github.com/streamflow-finance/timelock/internal/safemath"
)

// DefaultPlatformPercent is the platform fee applied when the fee authority
// has no specific entry for a partner.
const DefaultPlatformPercent float32 = 0.25

// MaxPercent is the upper bound of a fee percentage.
const MaxPercent float32 = 100

// CheckPercent returns an error if p is not a usable fee percentage.
func CheckPercent(p float32) error {
	f := float64(p)
	if math.IsNaN(f) || math.IsInf(f, 0) || p < 0 || p > MaxPercent {
		return errors.Wrapf(common.ErrPrecondition, "invalid fee percent %v", p)
	}
	return nil
}

// FromAmount returns floor(amount * percent / 100). The percentage is taken at
// its shortest decimal form, so 0.25 means exactly a quarter of a percent.
//
// The result is monotonic in amount and never exceeds it.
func FromAmount(amount uint64, percent float32) (uint64, error) {
	if err := CheckPercent(percent); err != nil {
		return 0, err
	}
	if amount == 0 || percent == 0 {
		return 0, nil
	}

	fee := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), 0).
		Mul(decimal.NewFromFloat32(percent)).
		Shift(-2).
		Floor().
		BigInt()
	if !fee.IsUint64() {
		return 0, errors.Wrapf(common.ErrOverflow, "fee of %d at %v%%", amount, percent)
	}
	return fee.Uint64(), nil
}

// ExternalDeposit returns how much of balance arrived in escrow beyond the
// recorded bookkeeping, which expects gross - withdrawn tokens to be held.
// It is zero when the balance does not exceed the expectation.
func ExternalDeposit(balance, gross, withdrawn uint64) (uint64, error) {
	if withdrawn > gross {
		return 0, errors.Wrapf(common.ErrReconciliation, "withdrawn %d exceeds deposited %d", withdrawn, gross)
	}
	expected, err := safemath.Sub(gross, withdrawn)
	if err != nil {
		return 0, err
	}
	if balance <= expected {
		return 0, nil
	}
	return safemath.Sub(balance, expected)
}
