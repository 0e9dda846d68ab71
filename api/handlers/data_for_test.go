package handlers

import (
	"net/http"
)

var defaultTestRequestHeaders = map[string]string{"Content-Type": "application/json"}

const (
	queryParallelFails = "parallel-fails"
	queryAppError      = "app-error"
	queryNoResults     = "nothing-matches"
)

var expectedRows = []any{
	map[string]any{"doc_id": "1", "metric_kind": "match_count", "metric": float64(5), "text": "Document ID: 1, Matches: 5"},
	map[string]any{"doc_id": "2", "metric_kind": "score", "metric": 0.9, "text": "Document ID: 2, Score: 0.9"},
}

var compareHandlerTestCases = []testCase{
	{
		name:           "NoRequestBody",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    nil,
		expectedStatus: http.StatusUnprocessableEntity,
	},
	{
		name:           "EmptyQuery",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    map[string]any{"query": ""},
		expectedStatus: http.StatusNotAcceptable,
		expectedResponse: map[string]any{
			"data":   nil,
			"errors": []any{"please enter a search query"},
		},
	},
	{
		name:           "WhitespaceQuery",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    map[string]any{"query": "  \t "},
		expectedStatus: http.StatusNotAcceptable,
	},
	{
		name:           "BothBranchesSucceed",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    map[string]any{"query": " war "},
		expectedStatus: http.StatusOK,
		expectedResponse: map[string]any{
			"data": map[string]any{
				"query":  "war",
				"config": map[string]any{"processes": float64(3), "threads": float64(5), "total_workers": float64(15)},
				"parallel": map[string]any{
					"mode":    "parallel",
					"state":   "results",
					"elapsed": "100 ms",
					"rows":    expectedRows,
				},
				"sequential": map[string]any{
					"mode":    "sequential",
					"state":   "results",
					"elapsed": "342 ms",
					"rows":    expectedRows,
				},
				"speedup": map[string]any{"display": "3.42x"},
			},
		},
	},
	{
		name:           "ParallelBranchFails",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    map[string]any{"query": queryParallelFails},
		expectedStatus: http.StatusOK,
		expectedResponse: map[string]any{
			"data": map[string]any{
				"parallel": map[string]any{
					"state":       "error",
					"placeholder": "Error: search failed: 500 Internal Server Error",
				},
				"sequential": map[string]any{
					"state":   "results",
					"elapsed": "342 ms",
					"rows":    expectedRows,
				},
			},
		},
	},
	{
		name:           "ApplicationErrorOnBothBranches",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    map[string]any{"query": queryAppError},
		expectedStatus: http.StatusOK,
		expectedResponse: map[string]any{
			"data": map[string]any{
				"parallel":   map[string]any{"state": "error", "placeholder": "Error: Invalid response from search engine"},
				"sequential": map[string]any{"state": "error", "placeholder": "Error: Invalid response from search engine"},
			},
		},
	},
	{
		name:           "NoResults",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    map[string]any{"query": queryNoResults},
		expectedStatus: http.StatusOK,
		expectedResponse: map[string]any{
			"data": map[string]any{
				"parallel":   map[string]any{"state": "empty", "placeholder": "No results found", "elapsed": "12 ms"},
				"sequential": map[string]any{"state": "empty", "placeholder": "No results found", "elapsed": "12 ms"},
				"speedup":    map[string]any{"display": "1.00x"},
			},
		},
	},
}

var updateConfigHandlerTestCases = []testCase{
	{
		name:           "NoRequestBody",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    nil,
		expectedStatus: http.StatusUnprocessableEntity,
	},
	{
		name:           "SetProcesses",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    map[string]any{"processes": 6},
		expectedStatus: http.StatusOK,
		expectedResponse: map[string]any{
			"data": map[string]any{"processes": float64(6), "threads": float64(5), "total_workers": float64(30)},
		},
	},
	{
		name:           "InvalidValuesAreIgnored",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    map[string]any{"processes": "abc", "threads": -1},
		expectedStatus: http.StatusOK,
		expectedResponse: map[string]any{
			"data": map[string]any{"processes": float64(6), "threads": float64(5), "total_workers": float64(30)},
		},
	},
	{
		name:           "ZeroIsIgnored",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    map[string]any{"processes": 0},
		expectedStatus: http.StatusOK,
		expectedResponse: map[string]any{
			"data": map[string]any{"processes": float64(6), "threads": float64(5), "total_workers": float64(30)},
		},
	},
	{
		name:           "SetThreadsFromString",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    map[string]any{"threads": "7"},
		expectedStatus: http.StatusOK,
		expectedResponse: map[string]any{
			"data": map[string]any{"processes": float64(6), "threads": float64(7), "total_workers": float64(42)},
		},
	},
}
