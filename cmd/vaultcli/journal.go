package main

import (
	"encoding/binary"
	"time"

	"github.com/boltdb/bolt"
	"github.com/bytedance/sonic"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/vault"
)

var journalBucket = []byte("events")

// journal is an event sink that keeps the vault notifications in a bolt
// database. Events are held in memory until Flush is called, so that only
// the events of committed transactions are ever written.
type journal struct {
	db      *bolt.DB
	pending []vault.Event
}

var _ vault.EventSink = (*journal)(nil)

func openJournal(path string) (*journal, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open journal: %s", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(journalBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, errors.Wrapf(errors.ErrDatabase, "create journal bucket: %s", err)
	}
	return &journal{db: db}, nil
}

func (j *journal) Emit(ctx quorum.Context, e vault.Event) error {
	j.pending = append(j.pending, e)
	return nil
}

// Flush writes all pending events.
func (j *journal) Flush() error {
	if len(j.pending) == 0 {
		return nil
	}
	err := j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(journalBucket)
		for _, e := range j.pending {
			raw, err := sonic.Marshal(e)
			if err != nil {
				return err
			}
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, seq)
			if err := b.Put(key, raw); err != nil {
				return err
			}
		}
		return nil
	})
	j.pending = nil
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "flush journal: %s", err)
	}
	return nil
}

// Discard drops all pending events.
func (j *journal) Discard() {
	j.pending = nil
}

// Events returns all written events in the order they were emitted.
func (j *journal) Events() ([]vault.Event, error) {
	var events []vault.Event
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(journalBucket).ForEach(func(_, raw []byte) error {
			var e vault.Event
			if err := sonic.Unmarshal(raw, &e); err != nil {
				return err
			}
			events = append(events, e)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "read journal: %s", err)
	}
	return events, nil
}

func (j *journal) Close() error {
	return j.db.Close()
}
