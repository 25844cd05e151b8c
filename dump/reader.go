package dump

import (
	"encoding/csv"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/streamflow-finance/timelock/ledger"
	"github.com/streamflow-finance/timelock/state"
)

// IterateDumps iterates over all dumps collected by the Creator model in the
// specified directory, and passes ID and Reader of each dump into f.
func IterateDumps(dir string, f func(ID, *Reader)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, e error) error {
		if errors.Is(e, fs.ErrNotExist) {
			return nil
		}
		if e != nil {
			return e
		}

		if d.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if !strings.HasSuffix(name, streamsFileSuffix) {
			return nil
		}

		var id ID

		err := id.decodeString(name)
		if err != nil {
			return errors.Wrapf(err, "decode dump ID from file name '%s'", name)
		}

		r, err := Open(dir, id)
		if err != nil {
			return err
		}

		f(id, r)

		return nil
	})
}

// Latest returns ID of the dump with the highest sequence number for the
// label. The flag is false if there are no such dumps.
func Latest(dir, label string) (ID, bool, error) {
	var res ID
	var found bool

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, e error) error {
		if e != nil {
			if errors.Is(e, fs.ErrNotExist) {
				return nil
			}
			return e
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), streamsFileSuffix) {
			return nil
		}

		var id ID
		if err := id.decodeString(d.Name()); err != nil {
			return nil
		}

		if id.Label == label && (!found || id.Seq > res.Seq) {
			res, found = id, true
		}
		return nil
	})

	return res, found, err
}

type record struct {
	id  state.PublicKey
	raw []byte
}

// Reader reads streams collected in the superior dump.
type Reader struct {
	records []record
}

// Open reads the dump with the given ID from the directory.
func Open(dir string, id ID) (*Reader, error) {
	var streams dumpStreams

	err := initDumpStreams(&streams, dir, id, true)
	if err != nil {
		return nil, errors.Wrapf(err, "init dump streams ('%s')", id)
	}

	defer streams.close()

	var r Reader

	err = r.fromRecords(streams.records)
	if err != nil {
		return nil, errors.Wrapf(err, "init dump reader ('%s')", id)
	}

	return &r, nil
}

func (x *Reader) fromRecords(rRecords io.Reader) error {
	_csv := csv.NewReader(rRecords)
	_csv.FieldsPerRecord = 2
	_csv.ReuseRecord = true

	x.records = x.records[:0]

	for {
		rec, err := _csv.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrap(err, "read next CSV record")
		}

		// out-of-range safety guaranteed by csv settings
		var r record

		r.id, err = state.DecodePublicKey(rec[0])
		if err != nil {
			return errors.Wrap(err, "decode stream key")
		}

		r.raw, err = _encoding.DecodeString(rec[1])
		if err != nil {
			return errors.Wrap(err, "decode stream record")
		}

		x.records = append(x.records, r)
	}
}

// IterateStreams passes all stream records from the superior dump into f.
func (x *Reader) IterateStreams(f func(id state.PublicKey, raw []byte) error) error {
	for i := range x.records {
		if err := f(x.records[i].id, x.records[i].raw); err != nil {
			return err
		}
	}
	return nil
}

// Restore puts all streams from the superior dump into the Store.
func (x *Reader) Restore(s *ledger.Store) error {
	return x.IterateStreams(s.Restore)
}
