package state

import (
	"testing"

	"github.com/streamflow-finance/timelock/common"
	"github.com/stretchr/testify/require"
)

func cliffParams() CreateParams {
	return CreateParams{
		StartTime:             testStart,
		NetAmountDeposited:    1000,
		Period:                10,
		AmountPerPeriod:       100,
		Cliff:                 testStart + 100,
		CliffAmount:           500,
		CancelableByRecipient: true,
	}
}

func TestVested(t *testing.T) {
	c := newTestContract(t, cliffParams(), 0, 0)
	require.EqualValues(t, testStart+200, c.EndTime)

	for _, tc := range []struct {
		now      uint64
		expected uint64
	}{
		{now: 0, expected: 0},
		{now: testStart, expected: 0},
		{now: testStart + 99, expected: 0},
		{now: testStart + 100, expected: 500},
		{now: testStart + 120, expected: 700},
		{now: testStart + 200, expected: 1000},
		{now: testStart + 1_000_000, expected: 1000},
		{now: 1<<64 - 1, expected: 1000},
	} {
		v, err := c.Vested(tc.now)
		require.NoError(t, err, tc)
		require.Equal(t, tc.expected, v, tc)
	}
}

func TestVestedMonotonic(t *testing.T) {
	c := newTestContract(t, cliffParams(), 0, 0)

	var prev uint64
	for now := uint64(testStart - 50); now < testStart+300; now++ {
		v, err := c.Vested(now)
		require.NoError(t, err)
		require.GreaterOrEqual(t, v, prev)
		require.LessOrEqual(t, v, c.Ix.NetAmountDeposited)
		prev = v
	}
}

func TestWithdraw(t *testing.T) {
	c := newTestContract(t, cliffParams(), 0, 0)

	_, err := c.Withdraw(testStart+50, 0)
	require.ErrorIs(t, err, common.ErrPrecondition)

	n, err := c.Withdraw(testStart+120, 0)
	require.NoError(t, err)
	require.EqualValues(t, 700, n)
	require.EqualValues(t, 700, c.AmountWithdrawn)
	require.EqualValues(t, testStart+120, c.LastWithdrawnAt)

	before := requireBytes(t, c)
	_, err = c.Withdraw(testStart+120, 1)
	require.ErrorIs(t, err, common.ErrPrecondition)
	require.Equal(t, before, requireBytes(t, c))

	n, err = c.Withdraw(testStart+135, 50)
	require.NoError(t, err)
	require.EqualValues(t, 50, n)

	n, err = c.Withdraw(testStart+5000, 0)
	require.NoError(t, err)
	require.EqualValues(t, 250, n)
	require.True(t, c.AllFundsWithdrawn())
	require.Equal(t, c.Ix.NetAmountDeposited, c.AmountWithdrawn)

	_, err = c.Withdraw(testStart+6000, 0)
	require.ErrorIs(t, err, common.ErrPrecondition)
}

func TestWithdrawFee(t *testing.T) {
	c := newTestContract(t, testParams(), 0.25, 0.5)

	n, err := c.WithdrawFee(FeePlatform)
	require.NoError(t, err)
	require.EqualValues(t, 10_000_000, n)
	require.Equal(t, c.Fees[FeePlatform].Total, c.Fees[FeePlatform].Withdrawn)

	n, err = c.WithdrawFee(FeePlatform)
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, c.DepositGross(1000))

	n, err = c.WithdrawFee(FeePlatform)
	require.NoError(t, err)
	require.EqualValues(t, 5, n)

	n, err = c.WithdrawFee(FeePartner)
	require.NoError(t, err)
	require.EqualValues(t, 5_000_002, n)

	_, err = c.WithdrawFee(FeeKind(7))
	require.ErrorIs(t, err, common.ErrPrecondition)

	for i := range c.Fees {
		require.LessOrEqual(t, c.Fees[i].Withdrawn, c.Fees[i].Total)
	}
}

func TestCancel(t *testing.T) {
	t.Run("permissions", func(t *testing.T) {
		c := newTestContract(t, cliffParams(), 0, 0)

		require.ErrorIs(t, c.Cancel(testStart+130, RoleSender), common.ErrPrecondition)
		require.ErrorIs(t, c.Cancel(testStart+130, RoleThirdParty), common.ErrPrecondition)
		require.False(t, c.IsCanceled())

		require.NoError(t, c.Cancel(testStart+130, RoleRecipient))
		require.True(t, c.IsCanceled())
		require.EqualValues(t, testStart+130, c.CanceledAt)

		require.ErrorIs(t, c.Cancel(testStart+140, RoleRecipient), common.ErrPrecondition)
		require.EqualValues(t, testStart+130, c.CanceledAt)
	})

	t.Run("vesting stops", func(t *testing.T) {
		c := newTestContract(t, cliffParams(), 0, 0)
		require.NoError(t, c.Cancel(testStart+130, RoleRecipient))

		v, err := c.Vested(testStart + 10_000)
		require.NoError(t, err)
		require.EqualValues(t, 800, v)

		n, err := c.Withdraw(testStart+10_000, 0)
		require.NoError(t, err)
		require.EqualValues(t, 800, n)
		require.False(t, c.AllFundsWithdrawn())
	})

	t.Run("closable by anyone", func(t *testing.T) {
		c := newTestContract(t, cliffParams(), 0, 0)

		require.False(t, c.IsClosable(testStart+199))
		require.True(t, c.IsClosable(testStart+200))
		require.NoError(t, c.Cancel(testStart+200, RoleThirdParty))
	})
}
