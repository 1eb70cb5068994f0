package qlock

import (
	"context"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

const auditPrefix = "audit/"

/*
BadgerStore is an AuditSink that persists records to BadgerDB, msgpack
encoded, under keys that sort by timestamp.
*/
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (creating if needed) a store in the directory path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: audit store path is required", ErrInvalidArgument)
	}
	if err := os.MkdirAll(path, 0750); err != nil {
		return nil, fmt.Errorf("create audit store directory %s: %w", path, err)
	}
	return openBadger(badger.DefaultOptions(path))
}

// OpenInMemoryBadgerStore opens a store that lives only as long as the process.
func OpenInMemoryBadgerStore() (*BadgerStore, error) {
	return openBadger(badger.DefaultOptions("").WithInMemory(true))
}

func openBadger(opts badger.Options) (*BadgerStore, error) {
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func auditKey(rec AuditRecord) []byte {
	return fmt.Appendf(nil, "%s%020d/%s", auditPrefix, rec.Timestamp.UnixNano(), rec.ID)
}

func (s *BadgerStore) Write(rec AuditRecord) error {
	data, err := msgpack.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("encode audit record %s: %w", rec.ID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(auditKey(rec), data)
	})
}

// List returns every persisted record, oldest first.
func (s *BadgerStore) List(ctx context.Context) ([]AuditRecord, error) {
	var out []AuditRecord
	prefix := []byte(auditPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			var rec AuditRecord
			if err := it.Item().Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode audit record %s: %w", it.Item().Key(), err)
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
