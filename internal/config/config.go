// Package config loads the runtime configuration of the summarizer binaries.
//
// Values come from environment variables, parsed with caarlos0/env. Generation
// settings can additionally be overlaid from a YAML profile named by
// SUMMARIZER_CONFIG_FILE. Load validates the result and fails closed.
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"

	"smart-summarizer/internal/domain/entity"
	"smart-summarizer/internal/infra/extractor"
	"smart-summarizer/internal/infra/summarizer"
)

// Config is the full runtime configuration.
type Config struct {
	// Backend selects the summarization engine.
	Backend string `env:"SUMMARIZER_BACKEND" envDefault:"modelserver"`

	// ConfigFile optionally names a YAML generation profile.
	ConfigFile string `env:"SUMMARIZER_CONFIG_FILE"`

	// Version is reported by the health endpoint.
	Version string `env:"VERSION" envDefault:"dev"`

	Model      ModelConfig
	Generation GenerationConfig
	Inference  InferenceConfig
	Extract    ExtractConfig
	HTTP       HTTPConfig
	Tracing    TracingConfig
}

// ModelConfig holds the endpoints and credentials of every backend.
// Only the fields of the selected backend are required.
type ModelConfig struct {
	ServerURL string `env:"MODEL_SERVER_URL" envDefault:"http://localhost:8000"`
	Name      string `env:"MODEL_NAME" envDefault:"google/long-t5-tglobal-base"`

	HuggingFaceURL   string `env:"HF_API_URL" envDefault:"https://api-inference.huggingface.co"`
	HuggingFaceToken string `env:"HF_API_TOKEN"`

	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	ClaudeModel     string `env:"CLAUDE_MODEL"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL"`
}

// GenerationConfig holds the decoding parameters.
type GenerationConfig struct {
	MinLength     int     `env:"GENERATION_MIN_LENGTH" envDefault:"30" yaml:"min_length"`
	NumBeams      int     `env:"GENERATION_NUM_BEAMS" envDefault:"4" yaml:"num_beams"`
	LengthPenalty float64 `env:"GENERATION_LENGTH_PENALTY" envDefault:"1.5" yaml:"length_penalty"`
	EarlyStopping bool    `env:"GENERATION_EARLY_STOPPING" envDefault:"true" yaml:"early_stopping"`
}

// InferenceConfig bounds how generation is scheduled.
type InferenceConfig struct {
	MaxInputTokens int           `env:"MAX_INPUT_TOKENS" envDefault:"8192" yaml:"max_input_tokens"`
	Timeout        time.Duration `env:"INFERENCE_TIMEOUT" envDefault:"120s" yaml:"timeout"`
	Concurrency    int64         `env:"INFERENCE_CONCURRENCY" envDefault:"1" yaml:"concurrency"`
}

// ExtractConfig configures article downloads.
type ExtractConfig struct {
	Timeout        time.Duration `env:"EXTRACT_TIMEOUT" envDefault:"15s"`
	MaxBodySize    int64         `env:"EXTRACT_MAX_BODY_SIZE" envDefault:"10485760"`
	MaxRedirects   int           `env:"EXTRACT_MAX_REDIRECTS" envDefault:"5"`
	DenyPrivateIPs bool          `env:"EXTRACT_DENY_PRIVATE_IPS" envDefault:"true"`
	UserAgent      string        `env:"EXTRACT_USER_AGENT" envDefault:"SmartSummarizerBot/1.0"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	MaxUploadBytes  int64         `env:"HTTP_MAX_UPLOAD_BYTES" envDefault:"20971520"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"180s"`
	RateLimitRPS    float64       `env:"HTTP_RATE_LIMIT_RPS" envDefault:"2"`
	RateLimitBurst  int           `env:"HTTP_RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// TracingConfig controls the OpenTelemetry SDK provider.
type TracingConfig struct {
	Enabled     bool    `env:"TRACING_ENABLED" envDefault:"false"`
	SampleRatio float64 `env:"TRACING_SAMPLE_RATIO" envDefault:"1"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom reads the configuration from environ instead of the process
// environment. It exists for tests and tools that assemble settings themselves.
func LoadFrom(environ map[string]string) (*Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.Model.ClaudeModel == "" {
		cfg.Model.ClaudeModel = summarizer.DefaultClaudeModel
	}
	if cfg.Model.OpenAIModel == "" {
		cfg.Model.OpenAIModel = summarizer.DefaultOpenAIModel
	}

	if cfg.ConfigFile != "" {
		if err := cfg.overlayFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration correctness.
func (c *Config) Validate() error {
	if !slices.Contains(summarizer.Backends, c.Backend) {
		return fmt.Errorf("SUMMARIZER_BACKEND must be one of %v, got %q", summarizer.Backends, c.Backend)
	}

	switch c.Backend {
	case summarizer.BackendModelServer:
		if c.Model.ServerURL == "" {
			return errors.New("MODEL_SERVER_URL is required for the modelserver backend")
		}
	case summarizer.BackendClaude:
		if c.Model.AnthropicAPIKey == "" {
			return errors.New("ANTHROPIC_API_KEY is required for the claude backend")
		}
	case summarizer.BackendOpenAI:
		if c.Model.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required for the openai backend")
		}
	}

	if err := c.ToSummarizer().Generation.Validate(); err != nil {
		return fmt.Errorf("generation: %w", err)
	}
	if c.Inference.MaxInputTokens < 1 {
		return fmt.Errorf("MAX_INPUT_TOKENS must be positive, got %d", c.Inference.MaxInputTokens)
	}
	if c.Inference.Timeout <= 0 {
		return errors.New("INFERENCE_TIMEOUT must be positive")
	}
	if c.Inference.Concurrency < 1 {
		return fmt.Errorf("INFERENCE_CONCURRENCY must be at least 1, got %d", c.Inference.Concurrency)
	}

	article := c.ArticleConfig()
	if err := article.Validate(); err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	if c.HTTP.Addr == "" {
		return errors.New("HTTP_ADDR cannot be empty")
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return errors.New("HTTP_MAX_UPLOAD_BYTES must be positive")
	}
	if c.HTTP.RequestTimeout <= 0 {
		return errors.New("HTTP_REQUEST_TIMEOUT must be positive")
	}
	if c.HTTP.RateLimitRPS < 0 {
		return errors.New("HTTP_RATE_LIMIT_RPS must not be negative")
	}
	if c.HTTP.RateLimitRPS > 0 && c.HTTP.RateLimitBurst < 1 {
		return errors.New("HTTP_RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled")
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATIO must be between 0.0 and 1.0, got %v", c.Tracing.SampleRatio)
	}
	return nil
}

// ToSummarizer returns the engine factory configuration.
func (c *Config) ToSummarizer() summarizer.Config {
	gen := summarizer.DefaultGenerationConfig()
	gen.MinLength = c.Generation.MinLength
	gen.NumBeams = c.Generation.NumBeams
	gen.LengthPenalty = c.Generation.LengthPenalty
	gen.EarlyStopping = c.Generation.EarlyStopping

	return summarizer.Config{
		Backend: c.Backend,
		ModelServer: summarizer.ModelServerConfig{
			BaseURL:        c.Model.ServerURL,
			Model:          c.Model.Name,
			RequestTimeout: c.Inference.Timeout,
		},
		HuggingFace: summarizer.HuggingFaceConfig{
			BaseURL:        c.Model.HuggingFaceURL,
			Token:          c.Model.HuggingFaceToken,
			Model:          c.Model.Name,
			RequestTimeout: c.Inference.Timeout,
		},
		Claude: summarizer.ClaudeConfig{
			APIKey:  c.Model.AnthropicAPIKey,
			Model:   c.Model.ClaudeModel,
			Timeout: c.Inference.Timeout,
		},
		OpenAI: summarizer.OpenAIConfig{
			APIKey:  c.Model.OpenAIAPIKey,
			Model:   c.Model.OpenAIModel,
			Timeout: c.Inference.Timeout,
		},
		Generation: gen,
		Engine: summarizer.EngineConfig{
			Timeout:     c.Inference.Timeout,
			Concurrency: c.Inference.Concurrency,
		},
	}
}

// ArticleConfig returns the URL extractor configuration.
func (c *Config) ArticleConfig() extractor.ArticleConfig {
	cfg := extractor.DefaultArticleConfig()
	cfg.Timeout = c.Extract.Timeout
	cfg.MaxBodySize = c.Extract.MaxBodySize
	cfg.MaxRedirects = c.Extract.MaxRedirects
	cfg.DenyPrivateIPs = c.Extract.DenyPrivateIPs
	cfg.UserAgent = c.Extract.UserAgent
	return cfg
}

// MaxInputLength returns the prompt truncation length, falling back to the pipeline default.
func (c *Config) MaxInputLength() int {
	if c.Inference.MaxInputTokens > 0 {
		return c.Inference.MaxInputTokens
	}
	return entity.DefaultMaxInputTokens
}
