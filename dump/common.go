package dump

import (
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/streamflow-finance/timelock/state"
)

// ID is a unique identifier of the dump prepared according to the model
// described in the current package.
type ID struct {
	// Label of the ledger (e.g. devnet, mainnet).
	Label string
	// Sequence number of the dump, grows with each state transition.
	Seq uint32
}

// String returns hyphen-separated ID fields.
func (x ID) String() string {
	return x.Label + sep + strconv.FormatUint(uint64(x.Seq), 10)
}

// decodes ID fields from the hyphen-separated string.
func (x *ID) decodeString(s string) error {
	i := strings.LastIndex(s, sep+streamsFileSuffix)
	if i < 0 {
		return errors.Newf("missing '%s' suffix", streamsFileSuffix)
	}
	s = s[:i]

	i = strings.LastIndex(s, sep)
	if i <= 0 {
		return errors.Newf("expected '%s'-separated label and sequence number", sep)
	}

	n, err := strconv.ParseUint(s[i+1:], 10, 32)
	if err != nil {
		return errors.Wrapf(err, "decode sequence number from '%s'", s[i+1:])
	}

	x.Label = s[:i]
	x.Seq = uint32(n)

	return nil
}

// global encoding of binary values.
var _encoding = base64.StdEncoding

// Summary is a JSON-encoded overview of the dumped stream.
type Summary struct {
	Stream             state.PublicKey `json:"stream"`
	Name               string          `json:"name"`
	Sender             state.PublicKey `json:"sender"`
	Recipient          state.PublicKey `json:"recipient"`
	Mint               state.PublicKey `json:"mint"`
	Escrow             state.PublicKey `json:"escrow"`
	NetAmountDeposited uint64          `json:"net_amount_deposited"`
	AmountWithdrawn    uint64          `json:"amount_withdrawn"`
	GrossAmount        uint64          `json:"gross_amount"`
	EndTime            uint64          `json:"end_time"`
	CanceledAt         uint64          `json:"canceled_at,omitempty"`
	PlatformFee        state.Fee       `json:"platform_fee"`
	PartnerFee         state.Fee       `json:"partner_fee"`
}

// NewSummary describes the stream stored under id.
func NewSummary(id state.PublicKey, c *state.Contract) (Summary, error) {
	gross, err := c.GrossAmount()
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Stream:             id,
		Name:               c.Ix.StreamName.String(),
		Sender:             c.Sender,
		Recipient:          c.Recipient,
		Mint:               c.Mint,
		Escrow:             c.EscrowTokens,
		NetAmountDeposited: c.Ix.NetAmountDeposited,
		AmountWithdrawn:    c.AmountWithdrawn,
		GrossAmount:        gross,
		EndTime:            c.EndTime,
		CanceledAt:         c.CanceledAt,
		PlatformFee:        c.Fees[state.FeePlatform],
		PartnerFee:         c.Fees[state.FeePartner],
	}, nil
}

// dumpStreams groups data streams for stream records and summaries.
type dumpStreams struct {
	summaries, records io.ReadWriteCloser
}

// close closes all streams.
func (x *dumpStreams) close() {
	if x.records != nil {
		_ = x.records.Close()
	}
	if x.summaries != nil {
		_ = x.summaries.Close()
	}
}

const (
	// word separator used in dump file naming
	sep = "-"
	// suffix of file with binary stream records
	streamsFileSuffix = "streams.csv"
	// suffix of file with stream summaries
	summaryFileSuffix = "summary.json"
)

// initDumpStreams opens data streams for the dump files located in the
// specified directory. If read flag is set, streams are read-only and the
// summary is not opened. Otherwise, files must not exist, and streams are
// write only.
func initDumpStreams(d *dumpStreams, dir string, id ID, read bool) error {
	var err error

	pathRecords := filepath.Join(dir, strings.Join([]string{id.String(), streamsFileSuffix}, sep))
	pathSummary := filepath.Join(dir, strings.Join([]string{id.String(), summaryFileSuffix}, sep))

	if read {
		d.records, err = os.Open(pathRecords)
		if err != nil {
			return errors.Wrap(err, "open file with stream records")
		}
		return nil
	}

	// existing dumps are never overwritten
	const flag, perm = os.O_CREATE | os.O_EXCL | os.O_WRONLY, 0600

	d.records, err = os.OpenFile(pathRecords, flag, perm)
	if err != nil {
		return errors.Wrap(err, "create file with stream records")
	}

	d.summaries, err = os.OpenFile(pathSummary, flag, perm)
	if err != nil {
		d.close()
		_ = os.Remove(pathRecords)
		return errors.Wrap(err, "create file with stream summaries")
	}

	return nil
}
