package present

import (
	"fmt"
	"strconv"
	"time"

	"github.com/meghashyamc/searchcompare/backend"
	"github.com/meghashyamc/searchcompare/services/compare"
)

const (
	placeholderNoResults = "No results found"
	errorPrefix          = "Error: "
)

type PanelState string

const (
	PanelResults PanelState = "results"
	PanelEmpty   PanelState = "empty"
	PanelError   PanelState = "error"
)

var metricLabels = map[backend.MetricKind]string{
	backend.MetricMatchCount: "Matches",
	backend.MetricScore:      "Score",
}

type Row struct {
	DocID      string             `json:"doc_id"`
	MetricKind backend.MetricKind `json:"metric_kind,omitempty"`
	Metric     *float64           `json:"metric,omitempty"`
	Text       string             `json:"text"`
}

// Panel is the rendered form of one branch.
type Panel struct {
	Mode        string     `json:"mode"`
	State       PanelState `json:"state"`
	Elapsed     string     `json:"elapsed,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`
	Rows        []Row      `json:"rows,omitempty"`
}

type Speedup struct {
	Ratio   float64 `json:"ratio"`
	Display string  `json:"display"`
}

type ConfigView struct {
	Processes    int `json:"processes"`
	Threads      int `json:"threads"`
	TotalWorkers int `json:"total_workers"`
}

type Report struct {
	ID         string     `json:"id"`
	Query      string     `json:"query"`
	Config     ConfigView `json:"config"`
	Parallel   Panel      `json:"parallel"`
	Sequential Panel      `json:"sequential"`
	Speedup    *Speedup   `json:"speedup,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Present renders one branch. Rows keep the backend's order.
func Present(mode string, outcome backend.Outcome) Panel {
	panel := Panel{Mode: mode}

	if !outcome.Succeeded() {
		panel.State = PanelError
		panel.Placeholder = errorPrefix + outcome.Failure.Message
		return panel
	}

	panel.Elapsed = fmt.Sprintf("%s ms", formatNumber(outcome.ElapsedMs))

	if len(outcome.Results) == 0 {
		panel.State = PanelEmpty
		panel.Placeholder = placeholderNoResults
		return panel
	}

	panel.State = PanelResults
	panel.Rows = make([]Row, 0, len(outcome.Results))
	for _, entry := range outcome.Results {
		panel.Rows = append(panel.Rows, presentEntry(entry))
	}

	return panel
}

func presentEntry(entry backend.ResultEntry) Row {
	row := Row{DocID: string(entry.DocID)}

	value, kind, ok := entry.Metric()
	if !ok {
		row.Text = fmt.Sprintf("Document ID: %s", entry.DocID)
		return row
	}

	row.MetricKind = kind
	row.Metric = &value
	row.Text = fmt.Sprintf("Document ID: %s, %s: %s", entry.DocID, metricLabels[kind], formatNumber(value))

	return row
}

// PresentSpeedup returns nil unless both branches succeeded with positive
// elapsed times.
func PresentSpeedup(parallel backend.Outcome, sequential backend.Outcome) *Speedup {
	if !parallel.Succeeded() || !sequential.Succeeded() {
		return nil
	}
	if parallel.ElapsedMs <= 0 || sequential.ElapsedMs <= 0 {
		return nil
	}

	ratio := sequential.ElapsedMs / parallel.ElapsedMs

	return &Speedup{
		Ratio:   ratio,
		Display: fmt.Sprintf("%.2fx", ratio),
	}
}

func BuildReport(comparison *compare.Comparison) Report {
	return Report{
		ID:    comparison.ID,
		Query: comparison.Query,
		Config: ConfigView{
			Processes:    comparison.Config.Processes,
			Threads:      comparison.Config.Threads,
			TotalWorkers: comparison.Config.TotalWorkers(),
		},
		Parallel:   Present(backend.ModeParallel, comparison.Parallel),
		Sequential: Present(backend.ModeSequential, comparison.Sequential),
		Speedup:    PresentSpeedup(comparison.Parallel, comparison.Sequential),
		CreatedAt:  comparison.StartedAt,
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
