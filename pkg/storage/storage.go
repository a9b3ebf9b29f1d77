// Package storage keeps the session cookie set across invocations in a
// single bbolt file.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketCookies = []byte("cookies")

// Store is safe for concurrent use. With an empty path it keeps everything in
// memory only.
type Store struct {
	db *bolt.DB

	mu     sync.RWMutex
	memory map[string][]byte
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	s := &Store{memory: make(map[string][]byte)}
	if path == "" {
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCookies)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func memKey(bucket []byte, key string) string {
	return string(bucket) + ":" + key
}

func (s *Store) put(bucket []byte, key string, value []byte) error {
	if s.db == nil {
		s.mu.Lock()
		s.memory[memKey(bucket, key)] = append([]byte(nil), value...)
		s.mu.Unlock()
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), value)
	})
}

func (s *Store) clear(bucket []byte) error {
	if s.db == nil {
		s.mu.Lock()
		prefix := string(bucket) + ":"
		for k := range s.memory {
			if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
				delete(s.memory, k)
			}
		}
		s.mu.Unlock()
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucket); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(bucket)
		return err
	})
}

// === Cookies ===

// SaveCookies replaces the raw cookie record saved for host.
func (s *Store) SaveCookies(host string, data []byte) error {
	return s.put(bucketCookies, host, data)
}

// LoadCookies returns every saved cookie record keyed by host.
func (s *Store) LoadCookies() map[string][]byte {
	out := make(map[string][]byte)
	if s.db == nil {
		s.mu.RLock()
		prefix := string(bucketCookies) + ":"
		for k, v := range s.memory {
			if len(k) > len(prefix) && k[:len(prefix)] == prefix {
				out[k[len(prefix):]] = append([]byte(nil), v...)
			}
		}
		s.mu.RUnlock()
		return out
	}

	_ = s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCookies).ForEach(func(k, v []byte) error {
			out[string(k)] = append([]byte(nil), v...)
			return nil
		})
	})
	return out
}

func (s *Store) ClearCookies() error {
	return s.clear(bucketCookies)
}
