package kvdb

import (
	"errors"
	"fmt"
)

const (
	// ConfigBucket holds the last accepted process and thread counts.
	ConfigBucket = "config"
	// ComparisonsBucket holds rendered comparison reports keyed by comparison id.
	ComparisonsBucket = "comparisons"
)

var buckets = []string{ConfigBucket, ComparisonsBucket}

var (
	ErrNotFound   = errors.New("key not found")
	ErrInvalidKey = errors.New("invalid key")
)

type DB interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	Delete(bucket string, key string) error
	Close() error
}

type InvalidKeyError struct {
	Key    string
	Reason string
}
type NotFoundError struct {
	Key string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key %s: %s", e.Key, e.Reason)
}

func (e *InvalidKeyError) Is(target error) bool {
	return target == ErrInvalidKey
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("key not found: %s", e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
