package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"smart-summarizer/internal/domain/entity"
	"smart-summarizer/internal/resilience/circuitbreaker"
	"smart-summarizer/internal/resilience/retry"
	"smart-summarizer/internal/usecase/summarize"
	"smart-summarizer/internal/utils/text"
)

// BackendOpenAI names the OpenAI backend.
const BackendOpenAI = "openai"

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAIConfig holds configuration parameters for the OpenAI engine.
type OpenAIConfig struct {
	// APIKey authenticates against the OpenAI API.
	APIKey string

	// Model is the OpenAI API model identifier to use for summarization.
	Model string

	// BaseURL overrides the API endpoint, e.g. for compatible gateways.
	BaseURL string

	// Timeout is the maximum duration for a single summarization API call.
	Timeout time.Duration

	// MinLength is the lower output bound in tokens, expressed to the model as a word count.
	MinLength int
}

// Validate validates the configuration and returns an error if invalid.
func (c OpenAIConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("openai api key cannot be empty")
	}
	if c.Model == "" {
		return errors.New("model cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// OpenAI implements summarize.Engine using OpenAI's chat completion API.
// It includes circuit breaker and retry logic for improved reliability.
type OpenAI struct {
	client          *openai.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	config          OpenAIConfig
	metricsRecorder SummaryMetricsRecorder
}

// NewOpenAI creates a new OpenAI engine.
func NewOpenAI(config OpenAIConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientCfg.BaseURL = config.BaseURL
	}

	slog.Info("Initialized OpenAI summarizer with configuration",
		slog.String("model", config.Model),
		slog.Duration("timeout", config.Timeout))

	return &OpenAI{
		client:          openai.NewClientWithConfig(clientCfg),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:     retry.AIAPIConfig(),
		config:          config,
		metricsRecorder: NewPrometheusSummaryMetrics(),
	}
}

// Summarize implements summarize.Engine.
func (o *OpenAI) Summarize(ctx context.Context, prompt string, maxInputLength, maxOutputLength int) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	var result string

	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doSummarize(ctx, prompt, maxInputLength, maxOutputLength)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: %w", err)
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		o.metricsRecorder.RecordFailure(BackendOpenAI)
		return "", entity.NewInferenceError(BackendOpenAI, retryErr)
	}

	return result, nil
}

// doSummarize performs the actual API call without retry or circuit breaker.
func (o *OpenAI) doSummarize(ctx context.Context, inputText string, maxInputLength, maxOutputLength int) (string, error) {
	truncatedText, truncated := TruncateToTokens(inputText, maxInputLength)
	if truncated {
		o.metricsRecorder.RecordTruncated()
		slog.WarnContext(ctx, "text truncated for openai api",
			slog.Int("original_length", text.CountRunes(inputText)),
			slog.Int("truncated_length", text.CountRunes(truncatedText)))
	}

	slog.InfoContext(ctx, "Starting summarization",
		slog.String("backend", BackendOpenAI),
		slog.Int("input_length", text.CountRunes(truncatedText)),
		slog.Int("max_tokens", maxOutputLength))

	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: maxOutputLength,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: instructionPrompt(truncatedText, o.config.MinLength, maxOutputLength),
		}},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "Summarization failed",
			slog.String("backend", BackendOpenAI),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &retry.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return "", fmt.Errorf("openai api error: %w", err)
	}

	// Validate response structure (safety check to prevent panic on array access)
	if len(resp.Choices) == 0 {
		slog.ErrorContext(ctx, "OpenAI API returned empty response",
			slog.Duration("duration", duration))
		return "", errors.New("openai api returned empty response")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	summaryLength := text.CountRunes(summary)

	slog.InfoContext(ctx, "Summarization completed",
		slog.String("backend", BackendOpenAI),
		slog.Int("summary_length", summaryLength),
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)),
		slog.Duration("duration", duration))

	o.metricsRecorder.RecordLength(summaryLength)
	o.metricsRecorder.RecordDuration(duration)

	return summary, nil
}

// Health implements summarize.HealthChecker from the circuit state.
func (o *OpenAI) Health(_ context.Context) (*summarize.HealthStatus, error) {
	open := o.circuitBreaker.IsOpen()
	return &summarize.HealthStatus{Healthy: !open, Backend: BackendOpenAI, CircuitOpen: open}, nil
}
