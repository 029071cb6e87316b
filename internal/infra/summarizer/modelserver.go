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

	"smart-summarizer/internal/resilience/circuitbreaker"
	"smart-summarizer/internal/resilience/retry"
	"smart-summarizer/internal/usecase/summarize"
)

// BackendModelServer names the sidecar-hosted seq2seq backend.
const BackendModelServer = "modelserver"

// DefaultModelName is the long-input encoder-decoder model loaded by the sidecar.
const DefaultModelName = "google/long-t5-tglobal-base"

// maxModelServerResponse caps decoded response bodies.
const maxModelServerResponse = 8 << 20

// ModelServerConfig configures ModelServerClient.
type ModelServerConfig struct {
	// BaseURL is the sidecar root, e.g. http://localhost:8000.
	BaseURL string

	// Model selects the checkpoint when the sidecar hosts several.
	Model string

	// RequestTimeout bounds a single HTTP round trip.
	RequestTimeout time.Duration
}

// Validate validates the client configuration.
func (c ModelServerConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("model server url cannot be empty")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("model server url must be http or https, got %q", c.BaseURL)
	}
	if c.Model == "" {
		return errors.New("model cannot be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %v", c.RequestTimeout)
	}
	return nil
}

// ModelServerClient talks JSON over HTTP to a process that keeps the pretrained
// model and its tokenizer loaded. It implements Tokenizer, Generator and
// summarize.HealthChecker.
type ModelServerClient struct {
	baseURL        string
	model          string
	httpClient     *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewModelServerClient creates a client for the sidecar described by cfg.
func NewModelServerClient(cfg ModelServerConfig) *ModelServerClient {
	return &ModelServerClient{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		model:          cfg.Model,
		httpClient:     &http.Client{Timeout: cfg.RequestTimeout},
		circuitBreaker: circuitbreaker.New(circuitbreaker.ModelServerConfig()),
		retryConfig:    retry.ModelServerConfig(),
	}
}

type tokenizeRequest struct {
	Model      string `json:"model"`
	Text       string `json:"text"`
	MaxLength  int    `json:"max_length"`
	Truncation bool   `json:"truncation"`
}

type tokenizeResponse struct {
	InputIDs  []int `json:"input_ids"`
	Truncated bool  `json:"truncated"`
}

type generateRequest struct {
	Model    string `json:"model"`
	InputIDs []int  `json:"input_ids"`
	GenerateParams
}

type generateResponse struct {
	OutputIDs []int `json:"output_ids"`
}

type decodeRequest struct {
	Model             string `json:"model"`
	IDs               []int  `json:"ids"`
	SkipSpecialTokens bool   `json:"skip_special_tokens"`
}

type decodeResponse struct {
	Text string `json:"text"`
}

type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
	Device string `json:"device"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Encode implements Tokenizer.
func (c *ModelServerClient) Encode(ctx context.Context, text string, maxLength int) ([]int, error) {
	var resp tokenizeResponse
	err := c.call(ctx, "/v1/tokenize", tokenizeRequest{
		Model:      c.model,
		Text:       text,
		MaxLength:  maxLength,
		Truncation: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.InputIDs) > maxLength {
		resp.InputIDs = resp.InputIDs[:maxLength]
	}
	return resp.InputIDs, nil
}

// Decode implements Tokenizer.
func (c *ModelServerClient) Decode(ctx context.Context, ids []int, skipSpecialTokens bool) (string, error) {
	var resp decodeResponse
	err := c.call(ctx, "/v1/decode", decodeRequest{
		Model:             c.model,
		IDs:               ids,
		SkipSpecialTokens: skipSpecialTokens,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Generate implements Generator.
func (c *ModelServerClient) Generate(ctx context.Context, inputIDs []int, params GenerateParams) ([]int, error) {
	var resp generateResponse
	err := c.call(ctx, "/v1/generate", generateRequest{
		Model:          c.model,
		InputIDs:       inputIDs,
		GenerateParams: params,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.OutputIDs, nil
}

// Health implements summarize.HealthChecker.
func (c *ModelServerClient) Health(ctx context.Context) (*summarize.HealthStatus, error) {
	status := &summarize.HealthStatus{
		Backend:     BackendModelServer,
		CircuitOpen: c.circuitBreaker.IsOpen(),
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/health", nil)
	if err != nil {
		return nil, fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	status.Latency = time.Since(start)
	if err != nil {
		status.Message = err.Error()
		return status, nil
	}
	defer func() { _ = resp.Body.Close() }()

	var body healthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxModelServerResponse)).Decode(&body); err != nil {
		status.Message = fmt.Sprintf("HTTP %d: decode health response: %v", resp.StatusCode, err)
		return status, nil
	}

	status.Healthy = resp.StatusCode == http.StatusOK && !status.CircuitOpen
	status.Message = fmt.Sprintf("status=%s model=%s device=%s", body.Status, body.Model, body.Device)
	return status, nil
}

// call POSTs in as JSON to path and decodes the response into out,
// with circuit breaker and retry around the round trip.
func (c *ModelServerClient) call(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		_, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return nil, c.post(ctx, path, payload, out)
		})
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("model server circuit breaker open, request rejected",
				slog.String("service", "model-server"),
				slog.String("path", path),
				slog.String("state", c.circuitBreaker.State().String()))
			return fmt.Errorf("model server unavailable: %w", err)
		}
		return err
	})
	if retryErr != nil {
		return fmt.Errorf("model server %s: %w", path, retryErr)
	}
	return nil
}

func (c *ModelServerClient) post(ctx context.Context, path string, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxModelServerResponse))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && er.Error != "" {
			msg = er.Error
		}
		return &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    msg,
			RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
