/*
Package safemath provides checked arithmetic on unsigned 64-bit quantities.

Every operation either returns the exact result or an error matching
common.ErrArithmetic. Values never wrap or truncate silently.
*/
package safemath

import (
	"math/bits"

	"github.com/cockroachdb/errors"
	"github.com/streamflow-finance/timelock/common"
)

// Add returns a + b.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, errors.Wrapf(common.ErrOverflow, "%d + %d", a, b)
	}
	return sum, nil
}

// Sub returns a - b.
func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, errors.Wrapf(common.ErrUnderflow, "%d - %d", a, b)
	}
	return diff, nil
}

// Mul returns a * b.
func Mul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, errors.Wrapf(common.ErrOverflow, "%d * %d", a, b)
	}
	return lo, nil
}

// Div returns a / b rounded toward zero.
func Div(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, errors.Wrapf(common.ErrDivisionByZero, "%d / 0", a)
	}
	return a / b, nil
}

// AddAssign adds v to *dst. *dst is left untouched on failure.
func AddAssign(dst *uint64, v uint64) error {
	sum, err := Add(*dst, v)
	if err != nil {
		return err
	}
	*dst = sum
	return nil
}

// Sum adds all values in order, failing on the first overflow.
func Sum(vs ...uint64) (uint64, error) {
	var total uint64
	for _, v := range vs {
		if err := AddAssign(&total, v); err != nil {
			return 0, err
		}
	}
	return total, nil
}
