package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agrihire/internal/models"
	"agrihire/pkg/config"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	errMissingCredentials = "embedding credentials not configured: account ID and API token are required"
	errEmptyText          = "empty text provided"
)

// EmbeddingService converts text into fixed-dimension vectors via the
// remote model endpoint. It holds no mutable cross-call state; the HTTP
// client is injected so tests can substitute a double.
type EmbeddingService struct {
	config     *config.EmbeddingConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

func NewEmbeddingService(cfg *config.EmbeddingConfig, httpClient *http.Client, logger *zap.Logger) *EmbeddingService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 5
	}

	return &EmbeddingService{
		config:     cfg,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// EmbedOne embeds a single text. Empty or whitespace-only input fails fast
// without a network call.
func (s *EmbeddingService) EmbedOne(ctx context.Context, text string) models.EmbeddingResult {
	if err := s.checkCredentials(); err != nil {
		return models.EmbeddingResult{Success: false, Error: err.Error()}
	}

	if strings.TrimSpace(text) == "" {
		return models.EmbeddingResult{Success: false, Error: errEmptyText}
	}

	vectors, err := s.embedBatch(ctx, []string{text})
	if err != nil {
		return models.EmbeddingResult{Success: false, Error: err.Error()}
	}

	return models.EmbeddingResult{Embedding: vectors[0], Success: true}
}

// EmbedMany embeds an ordered list of texts and returns one result per
// original input position. Blank inputs are filtered out before the
// network call and backfilled by position afterwards; internally the
// non-blank texts are grouped into batches of config.BatchSize per call.
func (s *EmbeddingService) EmbedMany(ctx context.Context, texts []string) []models.EmbeddingResult {
	results := make([]models.EmbeddingResult, len(texts))

	if err := s.checkCredentials(); err != nil {
		for i := range results {
			results[i] = models.EmbeddingResult{Success: false, Error: err.Error()}
		}
		return results
	}

	// Positions of texts that actually go over the wire
	var positions []int
	var pending []string
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			results[i] = models.EmbeddingResult{Success: false, Error: errEmptyText}
			continue
		}
		positions = append(positions, i)
		pending = append(pending, text)
	}

	batchSize := s.config.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	for start := 0; start < len(pending); start += batchSize {
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}

		vectors, err := s.embedBatch(ctx, pending[start:end])
		if err != nil {
			// The whole batch failed; every position in it carries the error
			for _, pos := range positions[start:end] {
				results[pos] = models.EmbeddingResult{Success: false, Error: err.Error()}
			}
			continue
		}

		for j, pos := range positions[start:end] {
			results[pos] = models.EmbeddingResult{Embedding: vectors[j], Success: true}
		}
	}

	return results
}

func (s *EmbeddingService) checkCredentials() error {
	if s.config.AccountID == "" || s.config.APIToken == "" {
		return errors.New(errMissingCredentials)
	}
	return nil
}

// embedBatch sends one batch to the endpoint, retrying the same batch on
// transient failures with exponential backoff.
func (s *EmbeddingService) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := s.config.BaseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		vectors, err := s.doRequest(ctx, texts)
		if err == nil {
			return vectors, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			return nil, err
		}
		s.logger.Warn("Embedding request failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("batch_size", len(texts)),
			zap.Error(err),
		)
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

type embeddingRequest struct {
	Text []string `json:"text"`
}

type embeddingResponse struct {
	Success bool `json:"success"`
	Result  struct {
		Data [][]float32 `json:"data"`
	} `json:"result"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// httpStatusError marks failures that carry an HTTP status, so the retry
// policy can distinguish 5xx/429 from terminal 4xx.
type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("embedding request failed with status %d: %s", e.status, e.body)
}

// transientError marks transport-level failures (connection reset, client
// timeout) that never reached a parseable HTTP response.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isRetryableError(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.status == http.StatusTooManyRequests || statusErr.status >= 500
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var transient *transientError
	return errors.As(err, &transient)
}

func (s *EmbeddingService) doRequest(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(embeddingRequest{Text: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	reqCtx := ctx
	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()
	}

	url := fmt.Sprintf("%s/accounts/%s/ai/run/%s", s.config.BaseURL, s.config.AccountID, s.config.Model)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &transientError{err: fmt.Errorf("embedding request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &httpStatusError{status: resp.StatusCode, body: strings.TrimSpace(string(bodyBytes))}
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}

	if !parsed.Success {
		msg := "embedding model reported failure"
		if len(parsed.Errors) > 0 {
			msg = parsed.Errors[0].Message
		}
		return nil, errors.New(msg)
	}

	data := parsed.Result.Data
	if len(data) != len(texts) {
		return nil, fmt.Errorf("embedding response returned %d vectors for %d texts", len(data), len(texts))
	}
	for i, vec := range data {
		if len(vec) != s.config.Dimension {
			return nil, fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(vec), s.config.Dimension)
		}
	}

	return data, nil
}
