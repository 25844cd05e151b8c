/*
Package ledger keeps stream records in a key-value storage.

Each record occupies a fixed state.MetadataLen buffer under the key of the
stream. Mutations are applied one at a time, each either fully persisted or
not at all.
*/
package ledger

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/streamflow-finance/timelock/state"
	"go.uber.org/zap"
)

const streamPrefix byte = 0x01

var (
	// ErrNotFound is returned for unknown streams.
	ErrNotFound = errors.New("stream not found")
	// ErrExists is returned on attempt to create an existing stream.
	ErrExists = errors.New("stream already exists")
)

// Store is a stream ledger storage. It's safe for concurrent use, mutations
// are serialized.
type Store struct {
	log *zap.Logger

	mtx sync.Mutex
	st  storage.Store
}

// NewStore returns Store working over st. Nil logger disables logging.
func NewStore(st storage.Store, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{log: log, st: st}
}

// NewMemoryStore returns Store backed by memory.
func NewMemoryStore(log *zap.Logger) *Store {
	return NewStore(storage.NewMemoryStore(), log)
}

func streamKey(id state.PublicKey) []byte {
	return append([]byte{streamPrefix}, id[:]...)
}

// Create persists a new stream record. It fails with ErrExists if id is
// already taken.
func (s *Store) Create(id state.PublicKey, c *state.Contract) error {
	if err := c.CheckInvariants(); err != nil {
		return errors.Wrapf(err, "create stream %s", id)
	}

	buf := make([]byte, state.MetadataLen)
	if err := c.Save(buf); err != nil {
		return errors.Wrapf(err, "create stream %s", id)
	}

	return s.commit(id, "create", func(tx *storage.MemCachedStore) error {
		_, err := tx.Get(streamKey(id))
		switch {
		case err == nil:
			return errors.Wrapf(ErrExists, "stream %s", id)
		case !errors.Is(err, storage.ErrKeyNotFound):
			return errors.Wrapf(err, "read stream %s", id)
		}

		tx.Put(streamKey(id), buf)
		return nil
	})
}

// Get returns the stream record.
func (s *Store) Get(id state.PublicKey) (*state.Contract, error) {
	c, _, err := get(s.st, id)
	return c, err
}

// Update applies f to the stream record. The record is persisted only if f
// succeeds and the result is a valid successor of the stored record; otherwise
// storage stays untouched. Update returns the persisted record.
func (s *Store) Update(id state.PublicKey, f func(*state.Contract) error) (*state.Contract, error) {
	var res *state.Contract

	err := s.commit(id, "update", func(tx *storage.MemCachedStore) error {
		prev, raw, err := get(tx, id)
		if err != nil {
			return err
		}

		next := *prev
		if err = f(&next); err != nil {
			return err
		}

		if err = state.CheckTransition(prev, &next); err != nil {
			return err
		}

		buf := make([]byte, len(raw))
		if err = next.Save(buf); err != nil {
			return err
		}

		tx.Put(streamKey(id), buf)
		res = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Restore puts raw stream record as is. The record must be decodable and
// consistent.
func (s *Store) Restore(id state.PublicKey, raw []byte) error {
	if len(raw) != state.MetadataLen {
		return errors.Newf("stream %s: record of %d bytes, expected %d", id, len(raw), state.MetadataLen)
	}
	c, err := state.Load(raw)
	if err != nil {
		return errors.Wrapf(err, "stream %s", id)
	}
	if err = c.CheckInvariants(); err != nil {
		return errors.Wrapf(err, "restore stream %s", id)
	}

	return s.commit(id, "restore", func(tx *storage.MemCachedStore) error {
		tx.Put(streamKey(id), raw)
		return nil
	})
}

// Iterate passes all stored streams into f in key order until f returns an
// error. f must not modify the Store.
func (s *Store) Iterate(f func(id state.PublicKey, raw []byte, c *state.Contract) error) error {
	var err error

	prefix := []byte{streamPrefix}
	s.st.Seek(storage.SeekRange{Prefix: prefix}, func(k, v []byte) bool {
		var id state.PublicKey

		// some storages strip the prefix
		if len(k) == len(prefix)+state.PublicKeySize {
			k = k[len(prefix):]
		}
		if len(k) != state.PublicKeySize {
			err = errors.Newf("invalid stream key of %d bytes", len(k))
			return false
		}
		copy(id[:], k)

		var c *state.Contract
		c, err = state.Load(v)
		if err != nil {
			err = errors.Wrapf(err, "stream %s", id)
			return false
		}

		err = f(id, v, c)
		return err == nil
	})

	return err
}

func (s *Store) commit(id state.PublicKey, op string, f func(tx *storage.MemCachedStore) error) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	opID := uuid.New()
	log := s.log.With(zap.String("op", op), zap.Stringer("id", opID), zap.Stringer("stream", id))

	tx := storage.NewMemCachedStore(s.st)
	if err := f(tx); err != nil {
		log.Info("stream transition rejected", zap.Error(err))
		return err
	}

	if _, err := tx.Persist(); err != nil {
		log.Error("failed to persist stream record", zap.Error(err))
		return errors.Wrap(err, "persist stream record")
	}

	log.Debug("stream transition committed")
	return nil
}

type getter interface {
	Get([]byte) ([]byte, error)
}

func get(st getter, id state.PublicKey) (*state.Contract, []byte, error) {
	raw, err := st.Get(streamKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, nil, errors.Wrapf(ErrNotFound, "stream %s", id)
		}
		return nil, nil, errors.Wrapf(err, "read stream %s", id)
	}

	c, err := state.Load(raw)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "stream %s", id)
	}
	return c, raw, nil
}
