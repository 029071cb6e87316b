package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"smart-summarizer/internal/domain/entity"
	"smart-summarizer/internal/resilience/circuitbreaker"
	"smart-summarizer/internal/resilience/retry"
	"smart-summarizer/internal/usecase/summarize"
	"smart-summarizer/internal/utils/text"
)

// BackendClaude names the Anthropic backend.
const BackendClaude = "claude"

// ClaudeConfig holds configuration parameters for the Claude engine.
type ClaudeConfig struct {
	// APIKey authenticates against the Anthropic API.
	APIKey string

	// Model is the Claude API model identifier to use for summarization.
	Model string

	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL string

	// Timeout is the maximum duration for a single summarization API call.
	Timeout time.Duration

	// MinLength is the lower output bound in tokens, expressed to the model as a word count.
	MinLength int
}

// DefaultClaudeModel is used when no model is configured.
var DefaultClaudeModel = string(anthropic.ModelClaudeSonnet4_5_20250929)

// Validate validates the configuration and returns an error if invalid.
func (c ClaudeConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("anthropic api key cannot be empty")
	}
	if c.Model == "" {
		return errors.New("model cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// Claude implements summarize.Engine using Anthropic's Claude API.
// It includes circuit breaker and retry logic for improved reliability.
type Claude struct {
	client          anthropic.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	config          ClaudeConfig
	metricsRecorder SummaryMetricsRecorder
}

// NewClaude creates a new Claude engine.
func NewClaude(config ClaudeConfig) *Claude {
	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	slog.Info("Initialized Claude summarizer with configuration",
		slog.String("model", config.Model),
		slog.Duration("timeout", config.Timeout))

	return &Claude{
		client:          anthropic.NewClient(opts...),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:     retry.AIAPIConfig(),
		config:          config,
		metricsRecorder: NewPrometheusSummaryMetrics(),
	}
}

// Summarize implements summarize.Engine.
// maxOutputLength becomes max_tokens; the prompt is cut to an approximate
// maxInputLength token budget.
func (c *Claude) Summarize(ctx context.Context, prompt string, maxInputLength, maxOutputLength int) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var result string

	// Wrap with retry logic
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		// Execute through circuit breaker
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doSummarize(ctx, prompt, maxInputLength, maxOutputLength)
		})

		// Handle circuit breaker open state
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: %w", err)
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		c.metricsRecorder.RecordFailure(BackendClaude)
		return "", entity.NewInferenceError(BackendClaude, retryErr)
	}

	return result, nil
}

// doSummarize performs the actual API call without retry or circuit breaker.
func (c *Claude) doSummarize(ctx context.Context, inputText string, maxInputLength, maxOutputLength int) (string, error) {
	truncatedText, truncated := TruncateToTokens(inputText, maxInputLength)
	if truncated {
		c.metricsRecorder.RecordTruncated()
		slog.WarnContext(ctx, "text truncated for claude api",
			slog.Int("original_length", text.CountRunes(inputText)),
			slog.Int("truncated_length", text.CountRunes(truncatedText)))
	}

	prompt := instructionPrompt(truncatedText, c.config.MinLength, maxOutputLength)

	slog.InfoContext(ctx, "Starting summarization",
		slog.String("backend", BackendClaude),
		slog.Int("input_length", text.CountRunes(truncatedText)),
		slog.Int("max_tokens", maxOutputLength))

	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(maxOutputLength),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "Summarization failed",
			slog.String("backend", BackendClaude),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &retry.HTTPError{StatusCode: apiErr.StatusCode, Message: apiErr.Error()}
		}
		return "", fmt.Errorf("claude api error: %w", err)
	}

	// Concatenate every text block; a stop for max_tokens still yields usable text.
	var sb strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	summary := strings.TrimSpace(sb.String())
	if summary == "" && len(message.Content) == 0 {
		return "", errors.New("claude api returned empty response")
	}

	summaryLength := text.CountRunes(summary)
	slog.InfoContext(ctx, "Summarization completed",
		slog.String("backend", BackendClaude),
		slog.Int("summary_length", summaryLength),
		slog.String("stop_reason", string(message.StopReason)),
		slog.Duration("duration", duration))

	c.metricsRecorder.RecordLength(summaryLength)
	c.metricsRecorder.RecordDuration(duration)

	return summary, nil
}

// Health implements summarize.HealthChecker from the circuit state.
func (c *Claude) Health(_ context.Context) (*summarize.HealthStatus, error) {
	open := c.circuitBreaker.IsOpen()
	return &summarize.HealthStatus{Healthy: !open, Backend: BackendClaude, CircuitOpen: open}, nil
}
