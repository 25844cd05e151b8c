package state

import (
	"github.com/cockroachdb/errors"
	"github.com/streamflow-finance/timelock/common"
	"github.com/streamflow-finance/timelock/fees"
	"github.com/streamflow-finance/timelock/internal/safemath"
)

// FeeKind indexes fee beneficiaries of a stream.
type FeeKind int

const (
	// FeePlatform is the platform treasury fee.
	FeePlatform FeeKind = iota
	// FeePartner is the referring partner fee.
	FeePartner

	feeKinds = 2
)

// String implements fmt.Stringer.
func (k FeeKind) String() string {
	switch k {
	case FeePlatform:
		return "platform"
	case FeePartner:
		return "partner"
	default:
		return "unknown"
	}
}

// Fee is the share of deposits owed to a single fee beneficiary.
type Fee struct {
	// Authority of the beneficiary.
	Beneficiary PublicKey `json:"beneficiary"`
	// Token account receiving the fee.
	Tokens PublicKey `json:"tokens"`
	// Total fee amount accrued from all deposits.
	Total uint64 `json:"total"`
	// Fee amount already paid out.
	Withdrawn uint64 `json:"withdrawn"`
	// Fee percentage snapshotted at stream creation.
	Percent float32 `json:"percent"`
}

// Accounts groups identities of a stream fixed at creation.
type Accounts struct {
	Sender                 PublicKey `yaml:"sender"`
	SenderTokens           PublicKey `yaml:"sender_tokens"`
	Recipient              PublicKey `yaml:"recipient"`
	RecipientTokens        PublicKey `yaml:"recipient_tokens"`
	Mint                   PublicKey `yaml:"mint"`
	EscrowTokens           PublicKey `yaml:"escrow_tokens"`
	PlatformTreasury       PublicKey `yaml:"platform_treasury"`
	PlatformTreasuryTokens PublicKey `yaml:"platform_treasury_tokens"`
	Partner                PublicKey `yaml:"partner"`
	PartnerTokens          PublicKey `yaml:"partner_tokens"`
}

// Contract is the ledger of a single stream.
type Contract struct {
	Magic   uint64
	Version uint8
	// Timestamp when the stream was created.
	CreatedAt uint64
	// Amount paid to the recipient so far.
	AmountWithdrawn uint64
	// Timestamp of cancellation, zero if not canceled.
	CanceledAt uint64
	// Derived from Ix, see CreateParams.CalculateEndTime.
	EndTime         uint64
	LastWithdrawnAt uint64

	Sender          PublicKey
	SenderTokens    PublicKey
	Recipient       PublicKey
	RecipientTokens PublicKey
	Mint            PublicKey
	// Escrow account holding tokens of the stream.
	EscrowTokens PublicKey

	// Indexed by FeeKind.
	Fees [feeKinds]Fee

	Ix CreateParams
}

// NewContract builds a ledger for a freshly created stream. Fee totals are
// those agreed for the first deposit.
func NewContract(now uint64, acc Accounts, ix CreateParams,
	partnerFeeTotal uint64, partnerFeePercent float32,
	platformFeeTotal uint64, platformFeePercent float32) (*Contract, error) {
	if err := ix.Validate(); err != nil {
		return nil, err
	}
	if err := fees.CheckPercent(partnerFeePercent); err != nil {
		return nil, errors.Wrap(err, "partner fee")
	}
	if err := fees.CheckPercent(platformFeePercent); err != nil {
		return nil, errors.Wrap(err, "platform fee")
	}

	end, err := ix.CalculateEndTime()
	if err != nil {
		return nil, err
	}

	c := &Contract{
		Magic:           common.Magic,
		Version:         common.ProgramVersion,
		CreatedAt:       now,
		EndTime:         end,
		Sender:          acc.Sender,
		SenderTokens:    acc.SenderTokens,
		Recipient:       acc.Recipient,
		RecipientTokens: acc.RecipientTokens,
		Mint:            acc.Mint,
		EscrowTokens:    acc.EscrowTokens,
		Ix:              ix,
	}
	c.Fees[FeePlatform] = Fee{
		Beneficiary: acc.PlatformTreasury,
		Tokens:      acc.PlatformTreasuryTokens,
		Total:       platformFeeTotal,
		Percent:     platformFeePercent,
	}
	c.Fees[FeePartner] = Fee{
		Beneficiary: acc.Partner,
		Tokens:      acc.PartnerTokens,
		Total:       partnerFeeTotal,
		Percent:     partnerFeePercent,
	}

	if _, err = c.GrossAmount(); err != nil {
		return nil, err
	}

	return c, nil
}

// AllFundsWithdrawn checks whether the recipient got the whole principal.
func (c *Contract) AllFundsWithdrawn() bool {
	return c.AmountWithdrawn == c.Ix.NetAmountDeposited
}

// TotalAmountWithdrawn returns everything paid out of escrow: recipient
// withdrawals and both fees.
func (c *Contract) TotalAmountWithdrawn() (uint64, error) {
	return safemath.Sum(c.AmountWithdrawn, c.Fees[FeePartner].Withdrawn, c.Fees[FeePlatform].Withdrawn)
}

// GrossAmount returns everything ever deposited into escrow: principal and
// both fees.
func (c *Contract) GrossAmount() (uint64, error) {
	return safemath.Sum(c.Ix.NetAmountDeposited, c.Fees[FeePlatform].Total, c.Fees[FeePartner].Total)
}

// DepositNet adds net to the principal. Fees are charged on top of it, so the
// depositor pays net plus both fees.
func (c *Contract) DepositNet(net uint64) error {
	next := *c

	var add [feeKinds]uint64
	for i := range next.Fees {
		fee, err := fees.FromAmount(net, next.Fees[i].Percent)
		if err != nil {
			return errors.Wrapf(err, "%s fee", FeeKind(i))
		}
		add[i] = fee
	}

	if err := next.credit(net, add); err != nil {
		return errors.Wrapf(err, "deposit net %d", net)
	}

	*c = next
	return nil
}

// DepositGross adds gross with both fees taken out of it.
func (c *Contract) DepositGross(gross uint64) error {
	next := *c

	var add [feeKinds]uint64
	net := gross
	for i := range next.Fees {
		fee, err := fees.FromAmount(gross, next.Fees[i].Percent)
		if err != nil {
			return errors.Wrapf(err, "%s fee", FeeKind(i))
		}
		add[i] = fee

		net, err = safemath.Sub(net, fee)
		if err != nil {
			return errors.Wrapf(err, "deposit gross %d", gross)
		}
	}

	if err := next.credit(net, add); err != nil {
		return errors.Wrapf(err, "deposit gross %d", gross)
	}

	*c = next
	return nil
}

// TrySyncBalance absorbs tokens that reached escrow outside of deposits as a
// gross deposit and returns their amount. Streams without top-ups are left
// intact.
func (c *Contract) TrySyncBalance(balance uint64) (uint64, error) {
	if !c.Ix.CanTopup {
		return 0, nil
	}

	gross, err := c.GrossAmount()
	if err != nil {
		return 0, err
	}

	withdrawn, err := c.TotalAmountWithdrawn()
	if err != nil {
		return 0, err
	}

	external, err := fees.ExternalDeposit(balance, gross, withdrawn)
	if err != nil {
		return 0, errors.Wrap(err, "sync balance")
	}

	if external == 0 {
		return 0, nil
	}

	if err = c.DepositGross(external); err != nil {
		return 0, errors.Wrap(err, "sync balance")
	}
	return external, nil
}

// credit applies a deposit to c. c may be partially modified on error, so it
// must be a copy.
func (c *Contract) credit(net uint64, fee [feeKinds]uint64) error {
	if err := safemath.AddAssign(&c.Ix.NetAmountDeposited, net); err != nil {
		return err
	}
	for i := range c.Fees {
		if err := safemath.AddAssign(&c.Fees[i].Total, fee[i]); err != nil {
			return errors.Wrapf(err, "%s fee total", FeeKind(i))
		}
	}

	if _, err := c.GrossAmount(); err != nil {
		return err
	}

	end, err := c.Ix.CalculateEndTime()
	if err != nil {
		return err
	}
	c.EndTime = end
	return nil
}
