package searchconfig

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/meghashyamc/searchcompare/db/kvdb"
)

const storeKey = "search_config"

// Store is the subset of the key-value database the state needs.
type Store interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	Delete(bucket string, key string) error
}

// Persist writes the current values. It is ordered with Update, so the
// stored entry never lags behind a mutation that finished before it.
func (s *State) Persist(store Store) error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to marshal search config: %w", err)
	}

	if err := store.Set(kvdb.ConfigBucket, storeKey, string(data)); err != nil {
		return fmt.Errorf("failed to save search config: %w", err)
	}

	return nil
}

// Restore loads previously persisted values. A missing entry is not an error;
// invalid stored values are ignored like any other invalid input. An entry
// that cannot be decoded is removed so it does not fail every startup.
func (s *State) Restore(store Store) error {
	value, err := store.Get(kvdb.ConfigBucket, storeKey)
	if err != nil {
		if errors.Is(err, kvdb.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to read search config: %w", err)
	}

	var saved map[string]any
	if err := json.Unmarshal([]byte(value), &saved); err != nil {
		if deleteErr := store.Delete(kvdb.ConfigBucket, storeKey); deleteErr != nil {
			return fmt.Errorf("failed to remove corrupt search config: %w", errors.Join(err, deleteErr))
		}
		return fmt.Errorf("removed corrupt search config: %w", err)
	}

	s.Update(saved["processes"], saved["threads"])

	return nil
}
