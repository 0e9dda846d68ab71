// Common test helpers
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/searchcompare/backend"
	"github.com/meghashyamc/searchcompare/config"
	"github.com/meghashyamc/searchcompare/db/kvdb"
	"github.com/meghashyamc/searchcompare/logger"
	"github.com/meghashyamc/searchcompare/services/compare"
	"github.com/meghashyamc/searchcompare/services/history"
	"github.com/meghashyamc/searchcompare/services/searchconfig"
	"github.com/meghashyamc/searchcompare/validation"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name             string
	requestHeaders   map[string]string
	requestBody      map[string]any
	expectedStatus   int
	expectedResponse map[string]any
}

type testServer struct {
	router       *gin.Engine
	kvdb         *kvdb.BoltDB
	searchConfig *searchconfig.State
	backendCalls *atomic.Int32
}

// newFakeBackend answers like the search backend: the parallel branch reports
// 100ms and the sequential branch 342ms unless the query asks for a failure.
func newFakeBackend(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var request struct {
			Query    string `json:"query"`
			Parallel bool   `json:"parallel"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch {
		case request.Query == queryParallelFails && request.Parallel:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"Search failed"}`))
		case request.Query == queryAppError:
			w.Write([]byte(`{"error":"Invalid response from search engine"}`))
		case request.Query == queryNoResults:
			w.Write([]byte(`{"results":[],"time":12}`))
		case request.Parallel:
			w.Write([]byte(`{"results":[{"doc_id":1,"match_count":5},{"doc_id":2,"score":0.9}],"time":100}`))
		default:
			w.Write([]byte(`{"results":[{"doc_id":1,"match_count":5},{"doc_id":2,"score":0.9}],"time":342}`))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func setupTestServer(t *testing.T, assert *require.Assertions) *testServer {

	t.Setenv("ENV", "test")

	cfg, err := config.Load("")
	assert.NoError(err, "could not load config")

	testLogger := logger.Discard()

	calls := &atomic.Int32{}
	fakeBackend := newFakeBackend(t, calls)

	kvDB, err := kvdb.New(testLogger, filepath.Join(t.TempDir(), "state.db"))
	assert.NoError(err, "could not create kv database")
	t.Cleanup(func() {
		assert.NoError(kvDB.Close(), "could not close kv database")
	})

	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")

	state := searchconfig.New(cfg.GetDefaultProcesses(), cfg.GetDefaultThreads())
	orchestrator := compare.New(testLogger, backend.New(testLogger, fakeBackend.URL, fakeBackend.Client()), state, validator)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	SetupConfig(router, testLogger, state, kvDB)
	SetupCompare(router, testLogger, orchestrator, history.New(testLogger, kvDB))

	return &testServer{
		router:       router,
		kvdb:         kvDB,
		searchConfig: state,
		backendCalls: calls,
	}
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, headers map[string]string, requestBodyMap map[string]interface{}) *httptest.ResponseRecorder {

	var err error
	w := httptest.NewRecorder()

	var jsonBody []byte
	var req *http.Request
	if requestBodyMap != nil {
		jsonBody, err = json.Marshal(requestBodyMap)
		assert.NoError(err)
	}

	if len(jsonBody) > 0 {
		req, err = http.NewRequest(method, endpoint, bytes.NewBuffer(jsonBody))
	} else {
		req, err = http.NewRequest(method, endpoint, nil)
	}
	assert.NoError(err)

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	router.ServeHTTP(w, req)

	return w
}

func decodeResponse(assert *require.Assertions, w *httptest.ResponseRecorder) map[string]any {
	var responseMap map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &responseMap)
	assert.NoError(err, "could not unmarshal response %s", w.Body.String())
	return responseMap
}

// assertSubset checks that every key in expected is present in actual with
// an equal value, recursing into nested maps.
func assertSubset(assert *require.Assertions, expected map[string]any, actual map[string]any, path string) {
	for key, expectedValue := range expected {
		actualValue, exists := actual[key]
		assert.True(exists, "expected field %s%s not found", path, key)

		expectedMap, expectedIsMap := expectedValue.(map[string]any)
		if expectedIsMap {
			actualMap, actualIsMap := actualValue.(map[string]any)
			assert.True(actualIsMap, "field %s%s should be an object", path, key)
			assertSubset(assert, expectedMap, actualMap, path+key+".")
			continue
		}
		assert.Equal(expectedValue, actualValue, "field %s%s mismatch", path, key)
	}
}
