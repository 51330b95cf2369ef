package parsers

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/coderisk/graphindex/internal/ir"
	bolt "go.etcd.io/bbolt"
)

var scratchBucket = []byte("parse_results")

// ScratchStore persists each file's pass-1 IR (ir.ParseResult) to disk keyed
// by file path, so the fan-out pool isn't required to hold every file's
// parsed nodes and edges resident in memory at once between parsing and the
// batched graph write. One store is opened per run and removed once the
// cross-file resolver has consumed it.
type ScratchStore struct {
	db   *bolt.DB
	path string
}

// OpenScratchStore creates a fresh bbolt file at path, replacing any stale
// file left over from a prior crashed run.
func OpenScratchStore(path string) (*ScratchStore, error) {
	_ = os.Remove(path)
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open scratch store: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(scratchBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init scratch store bucket: %w", err)
	}
	return &ScratchStore{db: db, path: path}, nil
}

// Put writes one file's parse result, replacing any prior entry for the
// same path (a resumed run may reparse a file that already has one).
func (s *ScratchStore) Put(result ir.ParseResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal scratch entry %s: %w", result.FilePath, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(scratchBucket).Put([]byte(result.FilePath), data)
	})
}

// ForEach visits every stored parse result. Iteration order is bbolt's
// byte-sorted key order (file path), not arrival order.
func (s *ScratchStore) ForEach(fn func(ir.ParseResult) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(scratchBucket).ForEach(func(k, v []byte) error {
			var result ir.ParseResult
			if err := json.Unmarshal(v, &result); err != nil {
				return fmt.Errorf("unmarshal scratch entry %s: %w", k, err)
			}
			return fn(result)
		})
	})
}

// Close releases the underlying bbolt file handle and removes the scratch
// file from disk — it is per-run temp state, not a durable cache.
func (s *ScratchStore) Close() error {
	err := s.db.Close()
	_ = os.Remove(s.path)
	return err
}
