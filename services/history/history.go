package history

import (
	"encoding/json"
	"fmt"

	"github.com/meghashyamc/searchcompare/db/kvdb"
	"github.com/meghashyamc/searchcompare/logger"
	"github.com/meghashyamc/searchcompare/services/present"
)

type Store interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
}

// Service keeps rendered reports so they can be fetched again by id. Stored
// reports are never used to answer a new search.
type Service struct {
	logger logger.Logger
	store  Store
}

func New(logger logger.Logger, store Store) *Service {
	return &Service{
		logger: logger,
		store:  store,
	}
}

// Save stores the report. Errors are returned to the caller for logging.
func (s *Service) Save(report present.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report %s: %w", report.ID, err)
	}

	if err := s.store.Set(kvdb.ComparisonsBucket, report.ID, string(data)); err != nil {
		return fmt.Errorf("failed to save report %s: %w", report.ID, err)
	}

	s.logger.Debug("stored comparison report", "comparison_id", report.ID)
	return nil
}

// Get returns kvdb.ErrNotFound (wrapped) for unknown ids.
func (s *Service) Get(id string) (*present.Report, error) {
	value, err := s.store.Get(kvdb.ComparisonsBucket, id)
	if err != nil {
		return nil, fmt.Errorf("report not found: %w", err)
	}

	var report present.Report
	if err := json.Unmarshal([]byte(value), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report %s: %w", id, err)
	}

	return &report, nil
}
