// Package boltkv provides a Bolt-backed key/value store. Bolt keeps all data
// in a single file, which suits a single-process deployment where pulling in
// a relational database for one key would be overkill. It satisfies the
// savedset.KV interface and is selected with KV_BACKEND=bolt.
package boltkv

import (
	"context"
	"time"

	bolt "github.com/boltdb/bolt"
)

const bucketName = "kv"

// Store wraps a Bolt database and exposes opaque byte get/set operations.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) a Bolt database at path and ensures the kv bucket
// exists. The one-second timeout bounds how long Open waits for the file lock
// when another process holds the database.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetBytes returns the value stored under key. ok is false when the key has
// never been written.
func (s *Store) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get([]byte(key))
		if v == nil {
			return nil
		}
		// The slice is only valid for the life of the transaction.
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

// SetBytes stores value under key, replacing any previous value.
func (s *Store) SetBytes(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), value)
	})
}
