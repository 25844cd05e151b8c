package state

import (
	"math"
	"math/rand"
	"testing"

	"github.com/streamflow-finance/timelock/common"
	"github.com/streamflow-finance/timelock/fees"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) PublicKey {
	var k PublicKey
	for i := range k {
		k[i] = b
	}
	return k
}

func testAccounts() Accounts {
	return Accounts{
		Sender:                 testKey(1),
		SenderTokens:           testKey(2),
		Recipient:              testKey(3),
		RecipientTokens:        testKey(4),
		Mint:                   testKey(5),
		EscrowTokens:           testKey(6),
		PlatformTreasury:       testKey(7),
		PlatformTreasuryTokens: testKey(8),
		Partner:                testKey(9),
		PartnerTokens:          testKey(10),
	}
}

func newTestContract(t *testing.T, p CreateParams, partnerPercent, platformPercent float32) *Contract {
	partnerFee, err := fees.FromAmount(p.NetAmountDeposited, partnerPercent)
	require.NoError(t, err)
	platformFee, err := fees.FromAmount(p.NetAmountDeposited, platformPercent)
	require.NoError(t, err)

	c, err := NewContract(testStart-10, testAccounts(), p, partnerFee, partnerPercent, platformFee, platformPercent)
	require.NoError(t, err)
	return c
}

func requireBytes(t *testing.T, c *Contract) []byte {
	b, err := c.Bytes()
	require.NoError(t, err)
	return b
}

func TestNewContract(t *testing.T) {
	c := newTestContract(t, testParams(), 0.25, 0.25)

	require.Equal(t, common.Magic, c.Magic)
	require.Equal(t, common.ProgramVersion, c.Version)
	require.EqualValues(t, testStart-10, c.CreatedAt)
	require.EqualValues(t, testStart+20_000, c.EndTime)
	require.Zero(t, c.AmountWithdrawn)
	require.Zero(t, c.CanceledAt)
	require.Zero(t, c.LastWithdrawnAt)
	require.Equal(t, testKey(3), c.Recipient)
	require.Equal(t, testKey(6), c.EscrowTokens)

	require.EqualValues(t, 5_000_000, c.Fees[FeePartner].Total)
	require.EqualValues(t, 5_000_000, c.Fees[FeePlatform].Total)
	require.Equal(t, testKey(9), c.Fees[FeePartner].Beneficiary)
	require.Equal(t, testKey(7), c.Fees[FeePlatform].Beneficiary)
	require.Equal(t, float32(0.25), c.Fees[FeePartner].Percent)
	require.Zero(t, c.Fees[FeePartner].Withdrawn)

	gross, err := c.GrossAmount()
	require.NoError(t, err)
	require.EqualValues(t, 2_010_000_000, gross)

	withdrawn, err := c.TotalAmountWithdrawn()
	require.NoError(t, err)
	require.Zero(t, withdrawn)
	require.False(t, c.AllFundsWithdrawn())
}

func TestNewContractRejects(t *testing.T) {
	t.Run("zero period", func(t *testing.T) {
		p := testParams()
		p.Period = 0
		c, err := NewContract(testStart, testAccounts(), p, 0, 0, 0, 0)
		require.ErrorIs(t, err, common.ErrPrecondition)
		require.Nil(t, c)
	})

	t.Run("zero amount per period", func(t *testing.T) {
		p := testParams()
		p.AmountPerPeriod = 0
		_, err := NewContract(testStart, testAccounts(), p, 0, 0, 0, 0)
		require.ErrorIs(t, err, common.ErrPrecondition)
	})

	t.Run("cliff amount above principal", func(t *testing.T) {
		p := testParams()
		p.Cliff = testStart + 1
		p.CliffAmount = p.NetAmountDeposited + 1
		_, err := NewContract(testStart, testAccounts(), p, 0, 0, 0, 0)
		require.ErrorIs(t, err, common.ErrPrecondition)
	})

	t.Run("invalid fee percent", func(t *testing.T) {
		_, err := NewContract(testStart, testAccounts(), testParams(), 0, 101, 0, 0)
		require.ErrorIs(t, err, common.ErrPrecondition)
	})

	t.Run("gross overflow", func(t *testing.T) {
		p := testParams()
		p.NetAmountDeposited = math.MaxUint64 - 1
		_, err := NewContract(testStart, testAccounts(), p, 1, 0, 1, 0)
		require.ErrorIs(t, err, common.ErrOverflow)
	})
}

func TestDepositGross(t *testing.T) {
	c := newTestContract(t, testParams(), 0.25, 0.25)
	before := *c

	require.NoError(t, c.DepositGross(1000))

	require.Equal(t, before.Fees[FeePartner].Total+2, c.Fees[FeePartner].Total)
	require.Equal(t, before.Fees[FeePlatform].Total+2, c.Fees[FeePlatform].Total)
	require.Equal(t, before.Ix.NetAmountDeposited+996, c.Ix.NetAmountDeposited)

	grossBefore, err := before.GrossAmount()
	require.NoError(t, err)
	grossAfter, err := c.GrossAmount()
	require.NoError(t, err)
	require.Equal(t, grossBefore+1000, grossAfter)

	end, err := c.Ix.CalculateEndTime()
	require.NoError(t, err)
	require.Equal(t, end, c.EndTime)
}

func TestDepositNet(t *testing.T) {
	c := newTestContract(t, testParams(), 0.25, 0.25)
	before := *c

	require.NoError(t, c.DepositNet(1_000_000))

	require.Equal(t, before.Ix.NetAmountDeposited+1_000_000, c.Ix.NetAmountDeposited)
	require.Equal(t, before.Fees[FeePartner].Total+2_500, c.Fees[FeePartner].Total)
	require.Equal(t, before.Fees[FeePlatform].Total+2_500, c.Fees[FeePlatform].Total)
	require.EqualValues(t, testStart+20_010, c.EndTime)
}

func TestDepositFailureLeavesRecordIntact(t *testing.T) {
	t.Run("fees above gross", func(t *testing.T) {
		c := newTestContract(t, testParams(), 100, 100)
		before := requireBytes(t, c)

		require.ErrorIs(t, c.DepositGross(10), common.ErrUnderflow)
		require.Equal(t, before, requireBytes(t, c))
	})

	t.Run("principal overflow", func(t *testing.T) {
		p := testParams()
		p.NetAmountDeposited = math.MaxUint64 - 100
		c := newTestContract(t, p, 0, 0)
		before := requireBytes(t, c)

		require.ErrorIs(t, c.DepositNet(101), common.ErrOverflow)
		require.Equal(t, before, requireBytes(t, c))

		require.ErrorIs(t, c.DepositGross(101), common.ErrOverflow)
		require.Equal(t, before, requireBytes(t, c))
	})

	t.Run("fee total overflow", func(t *testing.T) {
		p := testParams()
		p.NetAmountDeposited = math.MaxUint64 / 2
		c := newTestContract(t, p, 50, 0)
		before := requireBytes(t, c)

		require.ErrorIs(t, c.DepositNet(math.MaxUint64/2), common.ErrOverflow)
		require.Equal(t, before, requireBytes(t, c))
	})
}

func TestConservation(t *testing.T) {
	c := newTestContract(t, testParams(), 0.3, 0.25)
	rnd := rand.New(rand.NewSource(42))

	expected, err := c.GrossAmount()
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		amount := uint64(rnd.Int63n(10_000_000))
		if rnd.Intn(2) == 0 {
			require.NoError(t, c.DepositGross(amount))
			expected += amount
		} else {
			partner, err := fees.FromAmount(amount, c.Fees[FeePartner].Percent)
			require.NoError(t, err)
			platform, err := fees.FromAmount(amount, c.Fees[FeePlatform].Percent)
			require.NoError(t, err)

			require.NoError(t, c.DepositNet(amount))
			expected += amount + partner + platform
		}

		gross, err := c.GrossAmount()
		require.NoError(t, err)
		require.Equal(t, expected, gross)
		require.Equal(t, c.Ix.NetAmountDeposited+c.Fees[FeePlatform].Total+c.Fees[FeePartner].Total, gross)
	}
}

func TestTrySyncBalance(t *testing.T) {
	t.Run("top-ups disabled", func(t *testing.T) {
		c := newTestContract(t, testParams(), 0.25, 0.25)
		before := requireBytes(t, c)

		for _, balance := range []uint64{0, 1, 2_010_000_000, 10_000_000_000, math.MaxUint64} {
			n, err := c.TrySyncBalance(balance)
			require.NoError(t, err)
			require.Zero(t, n)
			require.Equal(t, before, requireBytes(t, c))
		}
	})

	p := testParams()
	p.CanTopup = true

	t.Run("absorbs external deposit once", func(t *testing.T) {
		c := newTestContract(t, p, 0.25, 0.25)

		gross, err := c.GrossAmount()
		require.NoError(t, err)
		balance := gross + 1000

		n, err := c.TrySyncBalance(balance)
		require.NoError(t, err)
		require.EqualValues(t, 1000, n)
		require.Equal(t, p.NetAmountDeposited+996, c.Ix.NetAmountDeposited)

		synced := requireBytes(t, c)

		n, err = c.TrySyncBalance(balance)
		require.NoError(t, err)
		require.Zero(t, n)
		require.Equal(t, synced, requireBytes(t, c))
	})

	t.Run("accounts for withdrawals", func(t *testing.T) {
		c := newTestContract(t, p, 0.25, 0.25)

		_, err := c.Withdraw(testStart+100, 0)
		require.NoError(t, err)
		_, err = c.WithdrawFee(FeePartner)
		require.NoError(t, err)

		gross, err := c.GrossAmount()
		require.NoError(t, err)
		withdrawn, err := c.TotalAmountWithdrawn()
		require.NoError(t, err)
		require.EqualValues(t, 10_000_000+5_000_000, withdrawn)

		n, err := c.TrySyncBalance(gross - withdrawn)
		require.NoError(t, err)
		require.Zero(t, n)

		n, err = c.TrySyncBalance(gross - withdrawn + 400)
		require.NoError(t, err)
		require.EqualValues(t, 400, n)
		require.EqualValues(t, 1, c.Fees[FeePartner].Total-c.Fees[FeePartner].Withdrawn)
	})

	t.Run("balance below bookkeeping", func(t *testing.T) {
		c := newTestContract(t, p, 0.25, 0.25)
		before := requireBytes(t, c)

		n, err := c.TrySyncBalance(5)
		require.NoError(t, err)
		require.Zero(t, n)
		require.Equal(t, before, requireBytes(t, c))
	})
}
