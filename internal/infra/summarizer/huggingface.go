package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"smart-summarizer/internal/domain/entity"
	"smart-summarizer/internal/resilience/circuitbreaker"
	"smart-summarizer/internal/resilience/retry"
	"smart-summarizer/internal/usecase/summarize"
	"smart-summarizer/internal/utils/text"
)

// BackendHuggingFace names the Hugging Face Inference API backend.
const BackendHuggingFace = "huggingface"

// DefaultHuggingFaceURL is the public Inference API root.
const DefaultHuggingFaceURL = "https://api-inference.huggingface.co"

// HuggingFaceConfig configures the Hugging Face backend.
type HuggingFaceConfig struct {
	// BaseURL is the API root; the model path is appended to it.
	BaseURL string

	// Token is the bearer token. Public models work without one at a lower rate limit.
	Token string

	// Model is the hub id of a summarization model.
	Model string

	// RequestTimeout bounds a single HTTP round trip.
	RequestTimeout time.Duration
}

// Validate validates the backend configuration.
func (c HuggingFaceConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("hugging face url cannot be empty")
	}
	if c.Model == "" {
		return errors.New("model cannot be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %v", c.RequestTimeout)
	}
	return nil
}

// HuggingFace implements summarize.Engine with the Inference API summarization task.
// Generation parameters travel with the request; the server truncates the input.
type HuggingFace struct {
	endpoint       string
	token          string
	model          string
	httpClient     *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	gen            GenerationConfig
	gate           *inferenceGate
	metrics        SummaryMetricsRecorder
}

// NewHuggingFace creates a Hugging Face engine.
func NewHuggingFace(cfg HuggingFaceConfig, genCfg GenerationConfig, engCfg EngineConfig) *HuggingFace {
	metrics := NewPrometheusSummaryMetrics()
	return &HuggingFace{
		endpoint:       strings.TrimRight(cfg.BaseURL, "/") + "/models/" + cfg.Model,
		token:          cfg.Token,
		model:          cfg.Model,
		httpClient:     &http.Client{Timeout: cfg.RequestTimeout},
		circuitBreaker: circuitbreaker.New(circuitbreaker.HuggingFaceConfig()),
		retryConfig:    retry.AIAPIConfig(),
		gen:            genCfg,
		gate:           newInferenceGate(engCfg, metrics),
		metrics:        metrics,
	}
}

type hfParameters struct {
	MinLength     int     `json:"min_length"`
	MaxLength     int     `json:"max_length"`
	NumBeams      int     `json:"num_beams"`
	LengthPenalty float64 `json:"length_penalty"`
	EarlyStopping bool    `json:"early_stopping"`
	Truncation    string  `json:"truncation"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfSummaryRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfSummaryResponse struct {
	SummaryText string `json:"summary_text"`
}

type hfErrorResponse struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// Summarize implements summarize.Engine.
func (h *HuggingFace) Summarize(ctx context.Context, prompt string, maxInputLength, maxOutputLength int) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", nil
	}

	// The hosted tokenizer truncates to the model limit; the character budget
	// keeps requests for very long documents from exceeding the payload limit.
	input, truncated := TruncateToTokens(prompt, maxInputLength)
	if truncated {
		h.metrics.RecordTruncated()
	}

	minLength := h.gen.MinLength
	if minLength > maxOutputLength {
		minLength = maxOutputLength
	}
	payload, err := json.Marshal(hfSummaryRequest{
		Inputs: input,
		Parameters: hfParameters{
			MinLength:     minLength,
			MaxLength:     maxOutputLength,
			NumBeams:      h.gen.NumBeams,
			LengthPenalty: h.gen.LengthPenalty,
			EarlyStopping: h.gen.EarlyStopping,
			Truncation:    "only_first",
		},
		Options: hfOptions{WaitForModel: true},
	})
	if err != nil {
		return "", entity.NewInferenceError(BackendHuggingFace, fmt.Errorf("marshal request: %w", err))
	}

	summary, err := h.gate.run(ctx, func(ctx context.Context) (string, error) {
		var result string
		retryErr := retry.WithBackoff(ctx, h.retryConfig, func() error {
			cbResult, err := h.circuitBreaker.Execute(func() (interface{}, error) {
				return h.doSummarize(ctx, payload)
			})
			if err != nil {
				if errors.Is(err, gobreaker.ErrOpenState) {
					slog.Warn("hugging face circuit breaker open, request rejected",
						slog.String("service", "huggingface-api"),
						slog.String("state", h.circuitBreaker.State().String()))
					return fmt.Errorf("hugging face api unavailable: %w", err)
				}
				return err
			}
			result = cbResult.(string)
			return nil
		})
		return result, retryErr
	})
	if err != nil {
		h.metrics.RecordFailure(BackendHuggingFace)
		return "", entity.NewInferenceError(BackendHuggingFace, err)
	}
	return summary, nil
}

func (h *HuggingFace) doSummarize(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	start := time.Now()
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxModelServerResponse))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	duration := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		retryAfter := retry.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		var er hfErrorResponse
		if json.Unmarshal(body, &er) == nil && er.Error != "" {
			msg = er.Error
			// A cold model answers 503 with its expected load time.
			if er.EstimatedTime > 0 {
				retryAfter = time.Duration(er.EstimatedTime * float64(time.Second))
			}
		}
		slog.ErrorContext(ctx, "Hugging Face request failed",
			slog.String("model", h.model),
			slog.Int("status", resp.StatusCode),
			slog.Duration("duration", duration))
		return "", &retry.HTTPError{StatusCode: resp.StatusCode, Message: msg, RetryAfter: retryAfter}
	}

	var out []hfSummaryResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out) == 0 {
		return "", errors.New("hugging face api returned empty response")
	}

	summary := strings.TrimSpace(out[0].SummaryText)
	h.metrics.RecordLength(text.CountRunes(summary))
	h.metrics.RecordDuration(duration)

	slog.InfoContext(ctx, "Summarization completed",
		slog.String("backend", BackendHuggingFace),
		slog.String("model", h.model),
		slog.Int("summary_length", text.CountRunes(summary)),
		slog.Duration("duration", duration))

	return summary, nil
}

// Health implements summarize.HealthChecker without spending an inference call.
func (h *HuggingFace) Health(_ context.Context) (*summarize.HealthStatus, error) {
	open := h.circuitBreaker.IsOpen()
	msg := "circuit closed"
	if open {
		msg = "circuit open"
	}
	return &summarize.HealthStatus{
		Healthy:     !open,
		Backend:     BackendHuggingFace,
		Message:     msg,
		CircuitOpen: open,
	}, nil
}
