package create

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/streamflow-finance/timelock/fees"
	"github.com/streamflow-finance/timelock/state"
	"gopkg.in/yaml.v3"
)

// FeeAuthority provides fee percentages for new streams.
type FeeAuthority interface {
	// FeePercents returns partner and platform fee percentages applied to
	// streams referred by the given partner.
	FeePercents(partner state.PublicKey) (partnerPercent, platformPercent float32)
}

// PartnerFees are fee percentages negotiated with a partner.
type PartnerFees struct {
	Partner  float32 `yaml:"partner_percent"`
	Platform float32 `yaml:"platform_percent"`
}

// FeeTable is a static FeeAuthority. Unknown partners pay no partner fee and
// the default platform fee.
type FeeTable struct {
	defaultPlatform float32
	partners        map[state.PublicKey]PartnerFees
}

type feeTableConfig struct {
	DefaultPlatformPercent *float32               `yaml:"default_platform_percent"`
	Partners               map[string]PartnerFees `yaml:"partners"`
}

// NewFeeTable returns an empty FeeTable with the given default platform fee.
func NewFeeTable(defaultPlatform float32) (*FeeTable, error) {
	if err := fees.CheckPercent(defaultPlatform); err != nil {
		return nil, errors.Wrap(err, "default platform fee")
	}
	return &FeeTable{
		defaultPlatform: defaultPlatform,
		partners:        make(map[state.PublicKey]PartnerFees),
	}, nil
}

// LoadFeeTable reads FeeTable from YAML:
//
//	default_platform_percent: 0.25
//	partners:
//	  <base58 partner key>:
//	    partner_percent: 0.25
//	    platform_percent: 0.25
func LoadFeeTable(r io.Reader) (*FeeTable, error) {
	var cfg feeTableConfig
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode fee table")
	}

	def := fees.DefaultPlatformPercent
	if cfg.DefaultPlatformPercent != nil {
		def = *cfg.DefaultPlatformPercent
	}

	t, err := NewFeeTable(def)
	if err != nil {
		return nil, err
	}

	for s, pf := range cfg.Partners {
		k, err := state.DecodePublicKey(s)
		if err != nil {
			return nil, errors.Wrap(err, "fee table partner")
		}
		if err = t.Set(k, pf); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Set assigns fee percentages to the partner.
func (t *FeeTable) Set(partner state.PublicKey, pf PartnerFees) error {
	if err := fees.CheckPercent(pf.Partner); err != nil {
		return errors.Wrapf(err, "partner %s fee", partner)
	}
	if err := fees.CheckPercent(pf.Platform); err != nil {
		return errors.Wrapf(err, "partner %s platform fee", partner)
	}
	t.partners[partner] = pf
	return nil
}

// FeePercents implements FeeAuthority.
func (t *FeeTable) FeePercents(partner state.PublicKey) (float32, float32) {
	if pf, ok := t.partners[partner]; ok {
		return pf.Partner, pf.Platform
	}
	return 0, t.defaultPlatform
}
