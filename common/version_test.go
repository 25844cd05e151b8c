package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckVersion(t *testing.T) {
	require.NoError(t, CheckVersion(Magic, ProgramVersion))

	err := CheckVersion(Magic+1, ProgramVersion)
	require.ErrorIs(t, err, ErrVersionMismatch)
	require.ErrorIs(t, err, ErrPrecondition)

	err = CheckVersion(Magic, ProgramVersion+1)
	require.ErrorIs(t, err, ErrVersionMismatch)
	require.False(t, errors.Is(err, ErrArithmetic))
}

func TestErrorClasses(t *testing.T) {
	for _, err := range []error{ErrOverflow, ErrUnderflow, ErrDivisionByZero} {
		require.ErrorIs(t, err, ErrArithmetic)
		require.NotErrorIs(t, err, ErrPrecondition)
		require.NotErrorIs(t, err, ErrReconciliation)
	}
	require.ErrorIs(t, ErrNotStarted, ErrPrecondition)
	require.NotErrorIs(t, ErrNotStarted, ErrArithmetic)
}
