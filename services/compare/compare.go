package compare

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meghashyamc/searchcompare/backend"
	"github.com/meghashyamc/searchcompare/logger"
	"github.com/meghashyamc/searchcompare/metrics"
	"github.com/meghashyamc/searchcompare/services/searchconfig"
	"github.com/meghashyamc/searchcompare/validation"
	"golang.org/x/sync/errgroup"
)

// Searcher runs one search against the backend. Implementations report every
// failure through the returned Outcome.
type Searcher interface {
	Execute(ctx context.Context, request backend.SearchRequest) backend.Outcome
}

// ConfigSource supplies the parallel-mode parameters at the time of a run.
type ConfigSource interface {
	Snapshot() searchconfig.Config
}

var ErrEmptyQuery = validation.ErrInvalidQuery

// UserInputError is returned when the query is empty. No backend call is made.
type UserInputError struct {
	Query string
}

func (e *UserInputError) Error() string {
	return ErrEmptyQuery.Error()
}

func (e *UserInputError) Is(target error) bool {
	return target == ErrEmptyQuery
}

// Comparison holds both branch outcomes of one run. Each outcome is whatever
// the searcher returned for that branch.
type Comparison struct {
	ID         string
	Query      string
	Config     searchconfig.Config
	Parallel   backend.Outcome
	Sequential backend.Outcome
	StartedAt  time.Time
}

type Orchestrator struct {
	logger    logger.Logger
	searcher  Searcher
	config    ConfigSource
	validator *validation.Validator
}

type queryInput struct {
	Query string `json:"query" validate:"valid_query"`
}

func New(logger logger.Logger, searcher Searcher, config ConfigSource, validator *validation.Validator) *Orchestrator {
	return &Orchestrator{
		logger:    logger,
		searcher:  searcher,
		config:    config,
		validator: validator,
	}
}

// Run sends the parallel and sequential searches concurrently and returns once
// both have settled. A failed branch never affects the other one.
func (o *Orchestrator) Run(ctx context.Context, query string) (*Comparison, error) {
	query = strings.TrimSpace(query)
	if err := o.validator.Validate(queryInput{Query: query}); err != nil {
		metrics.ComparisonsTotal.WithLabelValues("rejected").Inc()
		if errors.Is(err, validation.ErrInvalidQuery) {
			return nil, &UserInputError{Query: query}
		}
		return nil, fmt.Errorf("could not validate query: %w", err)
	}

	cfg := o.config.Snapshot()
	comparison := &Comparison{
		ID:        uuid.New().String(),
		Query:     query,
		Config:    cfg,
		StartedAt: time.Now().UTC(),
	}

	parallelRequest := backend.SearchRequest{
		Query:        query,
		Parallel:     true,
		ProcessCount: cfg.Processes,
		ThreadCount:  cfg.Threads,
		RequestID:    comparison.ID,
	}
	// The backend ignores process and thread counts in sequential mode.
	sequentialRequest := backend.SearchRequest{
		Query:        query,
		Parallel:     false,
		ProcessCount: searchconfig.DefaultProcesses,
		ThreadCount:  searchconfig.DefaultThreads,
		RequestID:    comparison.ID,
	}

	o.logger.Info("starting comparison", "comparison_id", comparison.ID, "query", query, "processes", cfg.Processes, "threads", cfg.Threads)

	// Dispatched searches run to completion even if the caller goes away.
	branchCtx := context.WithoutCancel(ctx)

	// Branches never return errors, so Wait is a plain join of both.
	var group errgroup.Group
	group.Go(func() error {
		comparison.Parallel = o.execute(branchCtx, parallelRequest)
		return nil
	})
	group.Go(func() error {
		comparison.Sequential = o.execute(branchCtx, sequentialRequest)
		return nil
	})
	group.Wait()

	metrics.ComparisonsTotal.WithLabelValues(comparisonResult(comparison)).Inc()
	o.logger.Info("finished comparison", "comparison_id", comparison.ID,
		"parallel_ok", comparison.Parallel.Succeeded(), "sequential_ok", comparison.Sequential.Succeeded())

	return comparison, nil
}

func (o *Orchestrator) execute(ctx context.Context, request backend.SearchRequest) backend.Outcome {
	mode := request.Mode()
	start := time.Now()
	outcome := o.searcher.Execute(ctx, request)
	metrics.BranchDurationSeconds.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	if !outcome.Succeeded() {
		metrics.BranchOutcomesTotal.WithLabelValues(mode, string(outcome.Failure.Kind)).Inc()
		o.logger.Warn("search branch failed", "comparison_id", request.RequestID, "mode", mode, "kind", outcome.Failure.Kind, "err", outcome.Failure.Message)
		return outcome
	}

	metrics.BranchOutcomesTotal.WithLabelValues(mode, "success").Inc()
	metrics.BackendElapsedMilliseconds.WithLabelValues(mode).Observe(outcome.ElapsedMs)

	return outcome
}

func comparisonResult(c *Comparison) string {
	switch {
	case c.Parallel.Succeeded() && c.Sequential.Succeeded():
		return "ok"
	case c.Parallel.Succeeded() || c.Sequential.Succeeded():
		return "partial"
	default:
		return "failed"
	}
}
