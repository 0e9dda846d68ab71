package backend

import (
	"encoding/json"
	"fmt"
)

// SearchRequest is one search against the backend. ProcessCount and
// ThreadCount only matter when Parallel is set.
type SearchRequest struct {
	Query        string
	Parallel     bool
	ProcessCount int
	ThreadCount  int
	// RequestID is forwarded as a header for correlating backend logs.
	RequestID string
}

// Mode names the backend execution mode a request asks for.
func (r SearchRequest) Mode() string {
	if r.Parallel {
		return ModeParallel
	}
	return ModeSequential
}

const (
	ModeParallel   = "parallel"
	ModeSequential = "sequential"
)

type FailureKind string

const (
	// FailureTransport covers unreachable backends and non-2xx responses.
	FailureTransport FailureKind = "transport"
	// FailureApplication is a 2xx response carrying an error field.
	FailureApplication FailureKind = "application"
	// FailureMalformed is a 2xx response whose body could not be decoded.
	FailureMalformed FailureKind = "malformed"
)

type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (f *Failure) Error() string {
	return f.Message
}

// Outcome is the result of exactly one backend call. Failure is nil on success.
type Outcome struct {
	Results   []ResultEntry `json:"results"`
	ElapsedMs float64       `json:"elapsed_ms"`
	Failure   *Failure      `json:"failure,omitempty"`
}

func Success(results []ResultEntry, elapsedMs float64) Outcome {
	if results == nil {
		results = []ResultEntry{}
	}
	return Outcome{Results: results, ElapsedMs: elapsedMs}
}

func Failed(kind FailureKind, message string) Outcome {
	return Outcome{Failure: &Failure{Kind: kind, Message: message}}
}

func (o Outcome) Succeeded() bool {
	return o.Failure == nil
}

// DocID accepts both numeric and string document ids from the backend.
type DocID string

func (d *DocID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = DocID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("doc_id must be a string or a number: %w", err)
	}
	*d = DocID(n.String())
	return nil
}

type MetricKind string

const (
	MetricMatchCount MetricKind = "match_count"
	MetricScore      MetricKind = "score"
)

// ResultEntry is one ranked hit. The backend fills in match_count, score, or
// both; their ranges are not comparable.
type ResultEntry struct {
	DocID      DocID    `json:"doc_id"`
	MatchCount *float64 `json:"match_count,omitempty"`
	Score      *float64 `json:"score,omitempty"`
}

// Metric returns match_count when present, otherwise score. ok is false when
// the entry carries neither.
func (e ResultEntry) Metric() (value float64, kind MetricKind, ok bool) {
	switch {
	case e.MatchCount != nil:
		return *e.MatchCount, MetricMatchCount, true
	case e.Score != nil:
		return *e.Score, MetricScore, true
	default:
		return 0, "", false
	}
}

type Stats struct {
	Indexed       bool `json:"indexed"`
	DocumentCount int  `json:"document_count"`
}

type searchPayload struct {
	Query     string `json:"query"`
	Parallel  bool   `json:"parallel"`
	Processes int    `json:"processes"`
	Threads   int    `json:"threads"`
}

type searchResponse struct {
	Results []ResultEntry `json:"results"`
	Time    *float64      `json:"time"`
	Error   string        `json:"error"`
}
