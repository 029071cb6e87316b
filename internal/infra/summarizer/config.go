package summarizer

import (
	"fmt"
	"time"
)

// GenerationConfig holds the decoding parameters shared by every seq2seq backend.
type GenerationConfig struct {
	// MinLength is the fixed lower bound of generated summaries in tokens.
	MinLength int `yaml:"min_length"`

	// NumBeams is the beam search width.
	NumBeams int `yaml:"num_beams"`

	// LengthPenalty biases beam scoring; values above 1 favour longer outputs.
	LengthPenalty float64 `yaml:"length_penalty"`

	// EarlyStopping ends beam search once NumBeams finished candidates exist.
	EarlyStopping bool `yaml:"early_stopping"`

	// SkipSpecialTokens strips model control tokens while decoding.
	SkipSpecialTokens bool `yaml:"skip_special_tokens"`
}

// DefaultGenerationConfig returns the decoding parameters used in production.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		MinLength:         30,
		NumBeams:          4,
		LengthPenalty:     1.5,
		EarlyStopping:     true,
		SkipSpecialTokens: true,
	}
}

// Validate validates the generation parameters.
func (c GenerationConfig) Validate() error {
	if c.MinLength < 0 {
		return fmt.Errorf("min length must not be negative, got %d", c.MinLength)
	}
	if c.NumBeams < 1 {
		return fmt.Errorf("num beams must be at least 1, got %d", c.NumBeams)
	}
	if c.LengthPenalty <= 0 {
		return fmt.Errorf("length penalty must be positive, got %v", c.LengthPenalty)
	}
	return nil
}

// EngineConfig bounds how inference is scheduled.
type EngineConfig struct {
	// Timeout bounds a single generation call, including time spent queued.
	Timeout time.Duration

	// Concurrency is the number of generations allowed to run at once.
	// One serialises access to a single accelerator.
	Concurrency int64
}

// DefaultEngineConfig returns a serialised engine with a two minute timeout.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Timeout:     120 * time.Second,
		Concurrency: 1,
	}
}

// Validate validates the scheduling parameters.
func (c EngineConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}
