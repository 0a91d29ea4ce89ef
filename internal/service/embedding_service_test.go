package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"agrihire/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testDimension = 4

func testEmbeddingConfig(baseURL string) *config.EmbeddingConfig {
	return &config.EmbeddingConfig{
		AccountID:      "test-account",
		APIToken:       "test-token",
		BaseURL:        baseURL,
		Model:          "@cf/baai/bge-base-en-v1.5",
		Dimension:      testDimension,
		BatchSize:      100,
		MaxRetries:     2,
		BaseBackoff:    5 * time.Millisecond,
		RequestTimeout: 2 * time.Second,
		RequestsPerSec: 1000,
	}
}

// countingServer records every request and answers with one fixed-dimension
// vector per input text, unless a status override is queued.
type countingServer struct {
	mu       sync.Mutex
	calls    int
	callTime []time.Time
	statuses []int // consumed per call; empty means 200
	server   *httptest.Server
}

func newCountingServer(t *testing.T, statuses ...int) *countingServer {
	t.Helper()
	cs := &countingServer{statuses: statuses}
	cs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		cs.calls++
		cs.callTime = append(cs.callTime, time.Now())
		status := http.StatusOK
		if len(cs.statuses) > 0 {
			status = cs.statuses[0]
			cs.statuses = cs.statuses[1:]
		}
		cs.mu.Unlock()

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}

		var req struct {
			Text []string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		data := make([][]float32, len(req.Text))
		for i := range req.Text {
			vec := make([]float32, testDimension)
			vec[0] = float32(i + 1)
			data[i] = vec
		}
		resp := map[string]any{
			"success": true,
			"result":  map[string]any{"data": data},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(cs.server.Close)
	return cs
}

func (cs *countingServer) callCount() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.calls
}

func newTestEmbeddingService(cfg *config.EmbeddingConfig) *EmbeddingService {
	return NewEmbeddingService(cfg, &http.Client{}, zap.NewNop())
}

func TestEmbedOneEmptyText(t *testing.T) {
	srv := newCountingServer(t)
	svc := newTestEmbeddingService(testEmbeddingConfig(srv.server.URL))

	for _, text := range []string{"", "   ", "\n\t"} {
		res := svc.EmbedOne(context.Background(), text)
		assert.False(t, res.Success)
		assert.Equal(t, errEmptyText, res.Error)
	}
	assert.Equal(t, 0, srv.callCount(), "empty input must not reach the network")
}

func TestEmbedOneMissingCredentials(t *testing.T) {
	srv := newCountingServer(t)
	cfg := testEmbeddingConfig(srv.server.URL)
	cfg.APIToken = ""
	svc := newTestEmbeddingService(cfg)

	res := svc.EmbedOne(context.Background(), "hello")
	assert.False(t, res.Success)
	assert.Equal(t, errMissingCredentials, res.Error)
	assert.Equal(t, 0, srv.callCount(), "missing credentials must fail before any network call")
}

func TestEmbedManyMissingCredentialsFailsEveryPosition(t *testing.T) {
	srv := newCountingServer(t)
	cfg := testEmbeddingConfig(srv.server.URL)
	cfg.AccountID = ""
	svc := newTestEmbeddingService(cfg)

	results := svc.EmbedMany(context.Background(), []string{"a", "b", "c"})
	require.Len(t, results, 3)
	for _, res := range results {
		assert.False(t, res.Success)
		assert.Equal(t, errMissingCredentials, res.Error)
	}
	assert.Equal(t, 0, srv.callCount())
}

func TestEmbedOneSuccess(t *testing.T) {
	srv := newCountingServer(t)
	svc := newTestEmbeddingService(testEmbeddingConfig(srv.server.URL))

	res := svc.EmbedOne(context.Background(), "a red tractor")
	require.True(t, res.Success, res.Error)
	assert.Len(t, res.Embedding, testDimension)
	assert.Equal(t, 1, srv.callCount())
}

func TestEmbedManyPositionalIntegrity(t *testing.T) {
	srv := newCountingServer(t)
	svc := newTestEmbeddingService(testEmbeddingConfig(srv.server.URL))

	results := svc.EmbedMany(context.Background(), []string{"", "a", "b", ""})
	require.Len(t, results, 4)

	assert.False(t, results[0].Success)
	assert.Equal(t, errEmptyText, results[0].Error)
	assert.False(t, results[3].Success)
	assert.Equal(t, errEmptyText, results[3].Error)

	require.True(t, results[1].Success, results[1].Error)
	require.True(t, results[2].Success, results[2].Error)
	// The server answers position i with vec[0] = i+1 within the batch,
	// so alignment survives the blank filtering
	assert.Equal(t, float32(1), results[1].Embedding[0])
	assert.Equal(t, float32(2), results[2].Embedding[0])

	assert.Equal(t, 1, srv.callCount(), "two non-blank texts fit in one batch")
}

func TestEmbedManyAllBlank(t *testing.T) {
	srv := newCountingServer(t)
	svc := newTestEmbeddingService(testEmbeddingConfig(srv.server.URL))

	results := svc.EmbedMany(context.Background(), []string{" ", ""})
	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, 0, srv.callCount())
}

func TestEmbedManyBatchSplitting(t *testing.T) {
	srv := newCountingServer(t)
	cfg := testEmbeddingConfig(srv.server.URL)
	cfg.BatchSize = 2
	svc := newTestEmbeddingService(cfg)

	texts := []string{"a", "b", "c", "d", "e"}
	results := svc.EmbedMany(context.Background(), texts)
	require.Len(t, results, 5)
	for i, res := range results {
		require.True(t, res.Success, "position %d: %s", i, res.Error)
		// First element of each batch gets 1, second gets 2
		assert.Equal(t, float32(i%2+1), res.Embedding[0])
	}
	assert.Equal(t, 3, srv.callCount(), "five texts with batch size 2 take three calls")
}

func TestRetryBoundOnServerError(t *testing.T) {
	// Every response is a 500: the same batch is retried MaxRetries extra
	// times with strictly increasing backoff, then reported as failed
	srv := newCountingServer(t, 500, 500, 500, 500, 500)
	cfg := testEmbeddingConfig(srv.server.URL)
	cfg.BaseBackoff = 20 * time.Millisecond
	svc := newTestEmbeddingService(cfg)

	res := svc.EmbedOne(context.Background(), "hello")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "max retries exceeded")
	assert.Equal(t, 1+cfg.MaxRetries, srv.callCount())

	require.Len(t, srv.callTime, 3)
	firstGap := srv.callTime[1].Sub(srv.callTime[0])
	secondGap := srv.callTime[2].Sub(srv.callTime[1])
	assert.GreaterOrEqual(t, firstGap, cfg.BaseBackoff)
	assert.Greater(t, secondGap, firstGap, "backoff delays must increase")
}

func TestRateLimitedThenSucceeds(t *testing.T) {
	srv := newCountingServer(t, 429)
	svc := newTestEmbeddingService(testEmbeddingConfig(srv.server.URL))

	res := svc.EmbedOne(context.Background(), "hello")
	require.True(t, res.Success, res.Error)
	assert.Equal(t, 2, srv.callCount(), "429 is retried")
}

func TestClientErrorIsTerminal(t *testing.T) {
	srv := newCountingServer(t, 400)
	svc := newTestEmbeddingService(testEmbeddingConfig(srv.server.URL))

	res := svc.EmbedOne(context.Background(), "hello")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "status 400")
	assert.Equal(t, 1, srv.callCount(), "4xx other than 429 must not be retried")
}

func TestModelReportedFailureIsTerminal(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":false,"errors":[{"message":"model overloaded"}]}`)
	}))
	defer server.Close()

	svc := newTestEmbeddingService(testEmbeddingConfig(server.URL))
	res := svc.EmbedOne(context.Background(), "hello")
	assert.False(t, res.Success)
	assert.Equal(t, "model overloaded", res.Error)
	assert.Equal(t, 1, calls)
}

func TestDimensionMismatchRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":true,"result":{"data":[[0.1,0.2]]}}`)
	}))
	defer server.Close()

	svc := newTestEmbeddingService(testEmbeddingConfig(server.URL))
	res := svc.EmbedOne(context.Background(), "hello")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "dimension")
}

func TestEmbedBatchRespectsCancellation(t *testing.T) {
	srv := newCountingServer(t, 500, 500, 500)
	cfg := testEmbeddingConfig(srv.server.URL)
	cfg.BaseBackoff = time.Minute
	svc := newTestEmbeddingService(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	res := svc.EmbedOne(ctx, "hello")
	assert.False(t, res.Success)
	assert.Equal(t, 1, srv.callCount(), "cancellation during backoff must stop retrying")
}
