package dump

import (
	"encoding/csv"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/streamflow-finance/timelock/ledger"
	"github.com/streamflow-finance/timelock/state"
)

// Creator dumps stream ledgers. Output file format:
//
//	'<label>-<seq>-streams.csv': CSV of stream records
//	'<label>-<seq>-summary.json': JSON array of stream summaries
//
// Record CSV are 'key,value' where key is the base58 stream key and value is
// the base64-encoded fixed-size record.
//
// Use IterateDumps or Open to access existing dumps.
type Creator struct {
	dumpStreams

	summaries []Summary

	recordsCSV *csv.Writer
}

// NewCreator returns Creator which dumps streams into given directory. The
// dump is identified by specified ID. Resulting Creator should be closed when
// finished working with it.
//
// NewCreator fails if dump with provided ID already exists.
func NewCreator(dir string, id ID) (*Creator, error) {
	var res Creator

	err := initDumpStreams(&res.dumpStreams, dir, id, false)
	if err != nil {
		return nil, err
	}

	res.recordsCSV = csv.NewWriter(res.dumpStreams.records)

	return &res, nil
}

// AddStream adds raw record of the stream to the resulting dump. After all
// needed streams are added, they should be flushed via Flush method.
func (x *Creator) AddStream(id state.PublicKey, raw []byte) error {
	c, err := state.Load(raw)
	if err != nil {
		return errors.Wrapf(err, "decode stream %s", id)
	}

	s, err := NewSummary(id, c)
	if err != nil {
		return errors.Wrapf(err, "summarize stream %s", id)
	}

	err = x.recordsCSV.Write([]string{
		id.String(),
		_encoding.EncodeToString(raw),
	})
	if err != nil {
		return errors.Wrap(err, "write stream record as CSV data")
	}

	x.summaries = append(x.summaries, s)

	return nil
}

// Flush flushes accumulated dump to the file system.
func (x *Creator) Flush() error {
	x.recordsCSV.Flush()

	err := x.recordsCSV.Error()
	if err != nil {
		return errors.Wrap(err, "flush CSV data")
	}

	if x.summaries == nil {
		x.summaries = []Summary{}
	}

	jEnc := json.NewEncoder(x.dumpStreams.summaries)
	jEnc.SetIndent("", " ")

	err = jEnc.Encode(x.summaries)
	if err != nil {
		return errors.Wrap(err, "encode stream summaries to JSON")
	}

	return nil
}

// Close releases underlying resources of the Creator and makes it unusable.
func (x *Creator) Close() {
	x.close()
}

// Write dumps all streams of the Store under the given ID.
func Write(dir string, id ID, s *ledger.Store) error {
	d, err := NewCreator(dir, id)
	if err != nil {
		return errors.Wrapf(err, "init dump %s", id)
	}

	defer d.Close()

	err = s.Iterate(func(key state.PublicKey, raw []byte, _ *state.Contract) error {
		return d.AddStream(key, raw)
	})
	if err != nil {
		return err
	}

	return d.Flush()
}
