package main

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/streamflow-finance/timelock/dump"
	"github.com/streamflow-finance/timelock/ledger"
	"go.uber.org/zap"
)

// env is a ledger restored from the latest dump.
type env struct {
	log   *zap.Logger
	flags *rootFlags
	store *ledger.Store
	id    dump.ID
}

func openEnv(flags *rootFlags) (*env, error) {
	log, err := newLogger(flags.debug)
	if err != nil {
		return nil, errors.Wrap(err, "init logger")
	}

	e := &env{
		log:   log,
		flags: flags,
		store: ledger.NewMemoryStore(log),
		id:    dump.ID{Label: flags.label},
	}

	id, ok, err := dump.Latest(flags.dir, flags.label)
	if err != nil {
		return nil, errors.Wrap(err, "find latest dump")
	}
	if !ok {
		return e, nil
	}

	r, err := dump.Open(flags.dir, id)
	if err != nil {
		return nil, err
	}
	if err = r.Restore(e.store); err != nil {
		return nil, errors.Wrapf(err, "restore dump %s", id)
	}

	e.id = id
	log.Debug("ledger restored", zap.Stringer("dump", id))
	return e, nil
}

func (e *env) now() uint64 {
	if e.flags.now != 0 {
		return e.flags.now
	}
	return uint64(time.Now().Unix())
}

// persist writes the ledger as the next dump.
func (e *env) persist() error {
	err := os.MkdirAll(e.flags.dir, 0700)
	if err != nil {
		return errors.Wrap(err, "create dump dir")
	}

	next := e.id
	next.Seq++

	if err = dump.Write(e.flags.dir, next, e.store); err != nil {
		return errors.Wrapf(err, "write dump %s", next)
	}

	e.id = next
	e.log.Info("ledger dumped", zap.String("dir", e.flags.dir), zap.Stringer("dump", next))
	return nil
}

func (e *env) close() {
	_ = e.log.Sync()
}
