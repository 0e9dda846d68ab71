package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/searchcompare/backend"
	"github.com/meghashyamc/searchcompare/config"
	"github.com/meghashyamc/searchcompare/db/kvdb"
	"github.com/meghashyamc/searchcompare/logger"
	"github.com/meghashyamc/searchcompare/metrics"
	"github.com/meghashyamc/searchcompare/services/compare"
	"github.com/meghashyamc/searchcompare/services/history"
	"github.com/meghashyamc/searchcompare/services/searchconfig"
	"github.com/meghashyamc/searchcompare/validation"
)

const (
	shutdownTimeout = 10 * time.Second
	probeTimeout    = 5 * time.Second
)

type server struct {
	cfg          *config.Config
	router       *gin.Engine
	httpServer   *http.Server
	kvdb         *kvdb.BoltDB
	backend      *backend.Client
	searchConfig *searchconfig.State
	orchestrator *compare.Orchestrator
	history      *history.Service
	validator    *validation.Validator
	logger       logger.Logger
}

type backendSettings struct {
	URL string `json:"backend_url" validate:"required,url"`
}

func Run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)

	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger.New(cfg.GetLogLevel()),
	}
	if err := s.setupDependencies(); err != nil {
		return err
	}
	defer s.kvdb.Close()

	s.setupRouter()
	go s.probeBackend(ctx)

	serveErrC := s.setupHTTPServer()

	return s.setupGracefulShutdown(ctx, serveErrC)
}

func (s *server) setupDependencies() error {
	var err error
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		return err
	}

	backendURL := s.cfg.GetBackendURL()
	if err := s.validator.Validate(backendSettings{URL: backendURL}); err != nil {
		s.logger.Error("invalid backend url", "url", backendURL, "err", err.Error())
		return fmt.Errorf("invalid backend url: %w", err)
	}

	s.kvdb, err = kvdb.New(s.logger, s.cfg.GetStatePath())
	if err != nil {
		s.logger.Error("error creating kvDB", "err", err.Error())
		return err
	}

	s.searchConfig = searchconfig.New(s.cfg.GetDefaultProcesses(), s.cfg.GetDefaultThreads())
	if err := s.searchConfig.Restore(s.kvdb); err != nil {
		s.logger.Warn("could not restore saved search config, using defaults", "err", err.Error())
	}
	s.searchConfig.OnChange(func(totalWorkers int) {
		metrics.TotalWorkers.Set(float64(totalWorkers))
		s.logger.Info("search config changed", "total_workers", totalWorkers)
	})
	metrics.TotalWorkers.Set(float64(s.searchConfig.TotalWorkers()))

	s.backend = backend.New(s.logger, backendURL, nil)
	s.orchestrator = compare.New(s.logger, s.backend, s.searchConfig, s.validator)
	s.history = history.New(s.logger, s.kvdb)

	return nil

}

func (s *server) setupRouter() {
	router := newRouter()

	router.Use(loggingMiddleware(s.logger))

	s.setupRoutes(router)

	s.router = router
}

// probeBackend only warns; the comparison flow never depends on it.
func (s *server) probeBackend(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	stats, err := s.backend.Stats(probeCtx)
	if err != nil {
		s.logger.Warn("could not connect to search backend", "err", err.Error())
		return
	}
	if !stats.Indexed {
		s.logger.Warn("search backend index not built yet")
		return
	}
	s.logger.Info("search backend is ready", "document_count", stats.DocumentCount)
}

func (s *server) setupHTTPServer() <-chan error {

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", s.cfg.GetPort()),
		Handler: s.router.Handler(),
	}
	s.httpServer = httpServer

	serveErrC := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrC <- err
		}
		close(serveErrC)
	}()

	return serveErrC
}

func (s *server) setupGracefulShutdown(ctx context.Context, serveErrC <-chan error) error {

	select {
	case err, ok := <-serveErrC:
		if ok && err != nil {
			s.logger.Error("http server failed", "err", err.Error())
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("starting to shut down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down http server", "err", err)
		return err
	}
	s.logger.Info("shut down http server successfully")

	return nil
}
