package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ComparisonsTotal counts comparison runs by result: ok, partial, failed or rejected.
	ComparisonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchcompare_comparisons_total",
			Help: "Total number of comparison runs",
		},
		[]string{"result"},
	)

	// BranchOutcomesTotal counts backend calls by mode and outcome.
	BranchOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchcompare_branch_outcomes_total",
			Help: "Total number of backend search calls per mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	// BranchDurationSeconds is the wall time of one backend call as seen by the client.
	BranchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "searchcompare_branch_duration_seconds",
			Help:    "Client-side latency of backend search calls",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"mode"},
	)

	// BackendElapsedMilliseconds is the execution time the backend reports for a successful search.
	BackendElapsedMilliseconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "searchcompare_backend_elapsed_milliseconds",
			Help:    "Backend-reported search execution time",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		},
		[]string{"mode"},
	)

	// LastSpeedup is the most recent displayed speedup ratio.
	LastSpeedup = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchcompare_last_speedup_ratio",
			Help: "Sequential over parallel elapsed time of the last comparison with a speedup",
		},
	)

	// TotalWorkers mirrors processes * threads of the live search config.
	TotalWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchcompare_total_workers",
			Help: "Process count times thread count used for parallel searches",
		},
	)
)
