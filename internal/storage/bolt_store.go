package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/upgraded-notifs/notifs/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const seenBucket = "seen"

// boltStore implements a Store backed by BoltDB, one key per seen id.
type boltStore struct {
	db *bolt.DB
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(seenBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{db: db}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Load returns every stored id.
func (b *boltStore) Load() (domain.SeenSet, error) {
	seen := domain.NewSeenSet()
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(seenBucket))
		if bucket == nil {
			return fmt.Errorf("seen bucket missing")
		}
		return bucket.ForEach(func(k, _ []byte) error {
			seen.Add(string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load seen ids: %w", err)
	}
	return seen, nil
}

// Save adds every id in seen. Existing keys are never removed.
func (b *boltStore) Save(seen domain.SeenSet) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(seenBucket))
		if bucket == nil {
			return fmt.Errorf("seen bucket missing")
		}
		for _, id := range seen.Sorted() {
			if err := bucket.Put([]byte(id), []byte{}); err != nil {
				return fmt.Errorf("put %q: %w", id, err)
			}
		}
		return nil
	})
}
