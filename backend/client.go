package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/meghashyamc/searchcompare/logger"
)

const (
	searchPath = "/api/search"
	statsPath  = "/api/stats"

	HeaderRequestID = "X-Request-ID"
)

// Client talks to the search backend. It never retries and sets no timeout of
// its own; the transport owns that.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

func New(logger logger.Logger, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Execute sends one search request and folds every failure into the returned
// Outcome.
func (c *Client) Execute(ctx context.Context, request SearchRequest) Outcome {
	body, err := json.Marshal(searchPayload{
		Query:     request.Query,
		Parallel:  request.Parallel,
		Processes: request.ProcessCount,
		Threads:   request.ThreadCount,
	})
	if err != nil {
		c.logger.Error("could not encode search request", "mode", request.Mode(), "err", err.Error())
		return Failed(FailureMalformed, fmt.Sprintf("could not encode search request: %s", err))
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("could not build search request", "mode", request.Mode(), "err", err.Error())
		return Failed(FailureTransport, fmt.Sprintf("search failed: %s", err))
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	if request.RequestID != "" {
		httpRequest.Header.Set(HeaderRequestID, request.RequestID)
	}

	resp, err := c.httpClient.Do(httpRequest)
	if err != nil {
		c.logger.Warn("search request failed", "mode", request.Mode(), "request_id", request.RequestID, "err", err.Error())
		return Failed(FailureTransport, fmt.Sprintf("search failed: %s", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		io.Copy(io.Discard, resp.Body)
		c.logger.Warn("search backend returned an error status", "mode", request.Mode(), "request_id", request.RequestID, "status", resp.StatusCode)
		return Failed(FailureTransport, statusMessage(resp.StatusCode))
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("could not decode search response", "mode", request.Mode(), "request_id", request.RequestID, "err", err.Error())
		return Failed(FailureMalformed, "invalid response from search backend")
	}

	// A 2xx response can still carry an application-level error.
	if payload.Error != "" {
		c.logger.Warn("search backend reported an error", "mode", request.Mode(), "request_id", request.RequestID, "err", payload.Error)
		return Failed(FailureApplication, payload.Error)
	}

	var elapsedMs float64
	if payload.Time != nil && *payload.Time > 0 {
		elapsedMs = *payload.Time
	}

	c.logger.Debug("search completed", "mode", request.Mode(), "request_id", request.RequestID, "results", len(payload.Results), "elapsed_ms", elapsedMs)

	return Success(payload.Results, elapsedMs)
}

// Stats reports whether the backend has finished building its index.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+statsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("could not build stats request: %w", err)
	}

	resp, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("could not reach search backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("stats request failed with status %d", resp.StatusCode)
	}

	stats := &Stats{}
	if err := json.NewDecoder(resp.Body).Decode(stats); err != nil {
		return nil, fmt.Errorf("could not decode stats response: %w", err)
	}

	return stats, nil
}

func statusMessage(statusCode int) string {
	if text := http.StatusText(statusCode); text != "" {
		return fmt.Sprintf("search failed: %d %s", statusCode, text)
	}
	return fmt.Sprintf("search failed: status %d", statusCode)
}
