package summarizer

import (
	"fmt"
	"log/slog"

	"smart-summarizer/internal/usecase/summarize"
)

// Config selects and configures one engine backend.
type Config struct {
	// Backend is one of modelserver, huggingface, claude, openai, noop.
	Backend string

	ModelServer ModelServerConfig
	HuggingFace HuggingFaceConfig
	Claude      ClaudeConfig
	OpenAI      OpenAIConfig

	Generation GenerationConfig
	Engine     EngineConfig
}

// Backends lists the accepted backend names.
var Backends = []string{BackendModelServer, BackendHuggingFace, BackendClaude, BackendOpenAI, BackendNoop}

// New builds the engine selected by cfg.Backend.
// The engine is constructed once at start-up and shared by all requests.
func New(cfg Config, logger *slog.Logger) (summarize.Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Generation.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generation config: %w", err)
	}
	if err := cfg.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	switch cfg.Backend {
	case BackendModelServer:
		if err := cfg.ModelServer.Validate(); err != nil {
			return nil, fmt.Errorf("invalid model server config: %w", err)
		}
		client := NewModelServerClient(cfg.ModelServer)
		logger.Info("Initialized seq2seq engine",
			slog.String("backend", BackendModelServer),
			slog.String("model", cfg.ModelServer.Model),
			slog.String("url", cfg.ModelServer.BaseURL),
			slog.Int("num_beams", cfg.Generation.NumBeams),
			slog.Float64("length_penalty", cfg.Generation.LengthPenalty),
			slog.Duration("timeout", cfg.Engine.Timeout))
		return NewSeq2Seq(BackendModelServer, client, client, cfg.Generation, cfg.Engine, WithLogger(logger)), nil

	case BackendHuggingFace:
		if err := cfg.HuggingFace.Validate(); err != nil {
			return nil, fmt.Errorf("invalid hugging face config: %w", err)
		}
		logger.Info("Initialized Hugging Face engine",
			slog.String("model", cfg.HuggingFace.Model),
			slog.Bool("authenticated", cfg.HuggingFace.Token != ""))
		return NewHuggingFace(cfg.HuggingFace, cfg.Generation, cfg.Engine), nil

	case BackendClaude:
		cfg.Claude.MinLength = cfg.Generation.MinLength
		if err := cfg.Claude.Validate(); err != nil {
			return nil, fmt.Errorf("invalid claude config: %w", err)
		}
		return NewClaude(cfg.Claude), nil

	case BackendOpenAI:
		cfg.OpenAI.MinLength = cfg.Generation.MinLength
		if err := cfg.OpenAI.Validate(); err != nil {
			return nil, fmt.Errorf("invalid openai config: %w", err)
		}
		return NewOpenAI(cfg.OpenAI), nil

	case BackendNoop:
		logger.Warn("Using extractive noop engine; summaries are leading sentences of the input")
		return NewNoOp(), nil

	default:
		return nil, fmt.Errorf("unknown summarizer backend %q (want one of %v)", cfg.Backend, Backends)
	}
}
