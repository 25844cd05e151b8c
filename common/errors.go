package common

import "github.com/cockroachdb/errors"

// Failure classes. Every error returned by the ledger matches exactly one of
// them with errors.Is.
var (
	// ErrArithmetic is an overflow, underflow or division by zero in checked
	// integer math.
	ErrArithmetic = errors.New("arithmetic failure")
	// ErrPrecondition is an invalid stream shape or a request the stream state
	// does not allow.
	ErrPrecondition = errors.New("precondition failure")
	// ErrReconciliation means the observed escrow balance contradicts the
	// recorded bookkeeping.
	ErrReconciliation = errors.New("reconciliation failure")
)

var (
	ErrOverflow       = errors.Wrap(ErrArithmetic, "overflow")
	ErrUnderflow      = errors.Wrap(ErrArithmetic, "underflow")
	ErrDivisionByZero = errors.Wrap(ErrArithmetic, "division by zero")

	// ErrNotStarted is returned when vesting is queried before its effective
	// start.
	ErrNotStarted = errors.Wrap(ErrPrecondition, "stream has not started")
)
