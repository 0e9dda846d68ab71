package kvdb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meghashyamc/searchcompare/logger"
	bolt "go.etcd.io/bbolt"
)

type BoltDB struct {
	store  *bolt.DB
	logger logger.Logger
}

var _ DB = (*BoltDB)(nil)

func New(logger logger.Logger, path string) (*BoltDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Error("failed to create key-value database directory", "err", err.Error(), "path", path)
		return nil, fmt.Errorf("failed to create key-value database directory: %w", err)
	}

	store, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		logger.Error("failed to open database", "err", err.Error(), "path", path)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	boltDB := &BoltDB{
		store:  store,
		logger: logger,
	}

	if err := boltDB.initBuckets(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return boltDB, nil
}

func (b *BoltDB) initBuckets() error {
	return b.store.Update(func(tx *bolt.Tx) error {
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				b.logger.Error("failed to create bucket", "bucket", bucket, "err", err.Error())
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
}

func (b *BoltDB) Set(bucket string, key string, value string) error {
	if key == "" {
		b.logger.Error("key cannot be empty", "bucket", bucket)
		return &InvalidKeyError{
			Key:    key,
			Reason: "key cannot be empty",
		}
	}

	return b.store.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			b.logger.Error("bucket not found", "bucket", bucket)
			return fmt.Errorf("bucket not found: %s", bucket)
		}

		if err := bkt.Put([]byte(key), []byte(value)); err != nil {
			b.logger.Error("failed to set key", "bucket", bucket, "key", key, "err", err.Error())
			return fmt.Errorf("failed to set key %s: %w", key, err)
		}

		return nil
	})
}

func (b *BoltDB) Get(bucket string, key string) (string, error) {
	if key == "" {
		b.logger.Error("key cannot be empty", "bucket", bucket)
		return "", &InvalidKeyError{
			Key:    key,
			Reason: "key cannot be empty",
		}
	}

	var value []byte
	err := b.store.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			b.logger.Error("bucket not found", "bucket", bucket)
			return fmt.Errorf("bucket not found: %s", bucket)
		}

		v := bkt.Get([]byte(key))
		if v == nil {
			return &NotFoundError{Key: key}
		}

		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})

	if err != nil {
		var notFoundErr *NotFoundError
		if errors.As(err, &notFoundErr) {
			b.logger.Debug("key not found", "bucket", bucket, "key", key)
			return "", notFoundErr
		}
		return "", err
	}

	return string(value), nil
}

func (b *BoltDB) Delete(bucket string, key string) error {
	if key == "" {
		b.logger.Error("key cannot be empty", "bucket", bucket)
		return &InvalidKeyError{
			Key:    key,
			Reason: "key cannot be empty",
		}
	}

	return b.store.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			b.logger.Error("bucket not found", "bucket", bucket)
			return fmt.Errorf("bucket not found: %s", bucket)
		}

		if err := bkt.Delete([]byte(key)); err != nil {
			b.logger.Error("failed to delete key", "bucket", bucket, "key", key, "err", err.Error())
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}

		return nil
	})
}

func (b *BoltDB) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}
