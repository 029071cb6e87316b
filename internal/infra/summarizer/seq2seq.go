// Package summarizer provides the summarization engines behind the pipeline.
// The primary engine drives a pretrained encoder-decoder model through pluggable
// tokenizer and generator interfaces; hosted backends (Hugging Face, Claude, OpenAI)
// and an extractive fallback implement the same contract.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"smart-summarizer/internal/domain/entity"
	"smart-summarizer/internal/usecase/summarize"
	"smart-summarizer/internal/utils/text"
)

// Tokenizer converts between text and model token ids.
type Tokenizer interface {
	// Encode tokenizes text, keeping at most maxLength tokens. Trailing tokens beyond
	// the limit are dropped rather than reported as an error.
	Encode(ctx context.Context, text string, maxLength int) ([]int, error)

	// Decode converts ids back into text, optionally stripping special tokens.
	Decode(ctx context.Context, ids []int, skipSpecialTokens bool) (string, error)
}

// GenerateParams controls beam search decoding.
type GenerateParams struct {
	MinLength     int     `json:"min_length"`
	MaxLength     int     `json:"max_length"`
	NumBeams      int     `json:"num_beams"`
	LengthPenalty float64 `json:"length_penalty"`
	EarlyStopping bool    `json:"early_stopping"`
}

// Generator runs the model on encoded input and returns the generated ids.
type Generator interface {
	Generate(ctx context.Context, inputIDs []int, params GenerateParams) ([]int, error)
}

// Seq2Seq implements summarize.Engine on top of an encoder-decoder model.
// The model handles are shared read-only; generation is serialised through the
// inference gate.
type Seq2Seq struct {
	backend   string
	tokenizer Tokenizer
	generator Generator
	gen       GenerationConfig
	gate      *inferenceGate
	metrics   SummaryMetricsRecorder
	logger    *slog.Logger
}

// Seq2SeqOption customises a Seq2Seq engine.
type Seq2SeqOption func(*Seq2Seq)

// WithMetricsRecorder replaces the Prometheus recorder.
func WithMetricsRecorder(m SummaryMetricsRecorder) Seq2SeqOption {
	return func(e *Seq2Seq) { e.metrics = m }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Seq2SeqOption {
	return func(e *Seq2Seq) { e.logger = l }
}

// NewSeq2Seq creates an engine named backend over tok and gen.
func NewSeq2Seq(backend string, tok Tokenizer, gen Generator, genCfg GenerationConfig, engCfg EngineConfig, opts ...Seq2SeqOption) *Seq2Seq {
	e := &Seq2Seq{
		backend:   backend,
		tokenizer: tok,
		generator: gen,
		gen:       genCfg,
		metrics:   NewPrometheusSummaryMetrics(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.gate = newInferenceGate(engCfg, e.metrics)
	return e
}

// Summarize implements summarize.Engine.
// An empty prompt returns "" without touching the model.
func (e *Seq2Seq) Summarize(ctx context.Context, prompt string, maxInputLength, maxOutputLength int) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", nil
	}
	if maxInputLength <= 0 {
		maxInputLength = entity.DefaultMaxInputTokens
	}
	if maxOutputLength <= 0 {
		return "", entity.NewInferenceError(e.backend, fmt.Errorf("max output length must be positive, got %d", maxOutputLength))
	}

	summary, err := e.gate.run(ctx, func(ctx context.Context) (string, error) {
		return e.generate(ctx, prompt, maxInputLength, maxOutputLength)
	})
	if err != nil {
		e.metrics.RecordFailure(e.backend)
		var infErr *entity.InferenceError
		if errors.As(err, &infErr) {
			return "", err
		}
		return "", entity.NewInferenceError(e.backend, err)
	}
	return summary, nil
}

func (e *Seq2Seq) generate(ctx context.Context, prompt string, maxInputLength, maxOutputLength int) (string, error) {
	start := time.Now()

	ids, err := e.tokenizer.Encode(ctx, prompt, maxInputLength)
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	if len(ids) == 0 {
		return "", nil
	}
	if len(ids) >= maxInputLength {
		e.metrics.RecordTruncated()
		e.logger.DebugContext(ctx, "Prompt reached input budget",
			slog.String("backend", e.backend),
			slog.Int("max_input_length", maxInputLength))
	}

	params := e.params(maxOutputLength)
	out, err := e.generator.Generate(ctx, ids, params)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	summary, err := e.tokenizer.Decode(ctx, out, e.gen.SkipSpecialTokens)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	summary = strings.TrimSpace(summary)

	duration := time.Since(start)
	e.metrics.RecordLength(text.CountRunes(summary))
	e.metrics.RecordDuration(duration)

	e.logger.InfoContext(ctx, "Generation completed",
		slog.String("backend", e.backend),
		slog.Int("input_tokens", len(ids)),
		slog.Int("output_tokens", len(out)),
		slog.Int("max_output_length", maxOutputLength),
		slog.Duration("duration", duration))

	return summary, nil
}

// params builds the decoding parameters for one call.
// MinLength never exceeds MaxLength so small budgets stay satisfiable.
func (e *Seq2Seq) params(maxOutputLength int) GenerateParams {
	minLength := e.gen.MinLength
	if minLength > maxOutputLength {
		minLength = maxOutputLength
	}
	return GenerateParams{
		MinLength:     minLength,
		MaxLength:     maxOutputLength,
		NumBeams:      e.gen.NumBeams,
		LengthPenalty: e.gen.LengthPenalty,
		EarlyStopping: e.gen.EarlyStopping,
	}
}

// Health reports the backend status when the generator can check it.
func (e *Seq2Seq) Health(ctx context.Context) (*summarize.HealthStatus, error) {
	if hc, ok := e.generator.(summarize.HealthChecker); ok {
		return hc.Health(ctx)
	}
	return &summarize.HealthStatus{Healthy: true, Backend: e.backend, Message: "no health probe"}, nil
}

// Backend returns the engine name used in logs and errors.
func (e *Seq2Seq) Backend() string {
	return e.backend
}
