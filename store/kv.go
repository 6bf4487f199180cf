package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

// ErrKeyNotFound reports an absent key. Storage relies on it to tell "no
// documents yet" apart from real I/O failure.
var ErrKeyNotFound = errors.New("key not found")

// KVStorer is the byte-oriented backend Storage writes through.
type KVStorer interface {
	Write(key string, value []byte) error
	Read(key string) ([]byte, error)
	Close() error
}

var bucketName = []byte("knowledge")

type BoltKV struct {
	db *bbolt.DB
}

func NewBoltKV(dir string) (*BoltKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	db, err := bbolt.Open(filepath.Join(dir, "knowledge.db"), 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltKV{db: db}, nil
}

func (b *BoltKV) Write(key string, value []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
}

func (b *BoltKV) Read(key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return ErrKeyNotFound
		}
		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (b *BoltKV) Close() error {
	return b.db.Close()
}
