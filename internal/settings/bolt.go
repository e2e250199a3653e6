// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const configurationBucket = "configurations"

// BoltStore is a BoltDB-backed Store.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBolt opens a BoltDB-backed store at path, creating the file if needed.
func OpenBolt(path string) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &StoreUnavailableError{Path: path, Cause: errors.New("storage path is required")}
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, &StoreUnavailableError{Path: cleanPath, Cause: err}
	}

	store := &BoltStore{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, &StoreUnavailableError{Path: cleanPath, Cause: err}
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get fetches the configuration stored for key.
func (s *BoltStore) Get(ctx context.Context, key CommandKey) (Configuration, bool, error) {
	if err := ctx.Err(); err != nil {
		return Configuration{}, false, err
	}

	var (
		cfg   Configuration
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(configurationBucket))
		if bucket == nil {
			return errors.New("configuration bucket is missing")
		}
		payload := bucket.Get([]byte(key))
		if payload == nil {
			return nil
		}
		decoded, err := decodeConfiguration(key, payload)
		if err != nil {
			return err
		}
		cfg, found = decoded, true
		return nil
	})
	if err != nil {
		return Configuration{}, false, fmt.Errorf("read settings for %q: %w", key, err)
	}

	return cfg, found, nil
}

// Put persists cfg, overwriting any previous record for its key.
func (s *BoltStore) Put(ctx context.Context, cfg Configuration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(string(cfg.CommandKey())) == "" {
		return errors.New("command key is required")
	}

	payload, err := encodeConfiguration(cfg)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(configurationBucket))
		if bucket == nil {
			return errors.New("configuration bucket is missing")
		}
		return bucket.Put([]byte(cfg.CommandKey()), payload)
	})
	if err != nil {
		return fmt.Errorf("write settings for %q: %w", cfg.CommandKey(), err)
	}
	return nil
}

// Keys lists every stored command key. BoltDB iterates keys in byte order.
func (s *BoltStore) Keys(ctx context.Context) ([]CommandKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var keys []CommandKey
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(configurationBucket))
		if bucket == nil {
			return errors.New("configuration bucket is missing")
		}
		return bucket.ForEach(func(k, _ []byte) error {
			keys = append(keys, CommandKey(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return keys, nil
}

func (s *BoltStore) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(configurationBucket)); err != nil {
			return fmt.Errorf("create configuration bucket: %w", err)
		}
		return nil
	})
}
