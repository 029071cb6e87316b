package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// fileOverlay is the subset of Config a YAML profile may set.
//
//	generation:
//	  min_length: 40
//	  num_beams: 6
//	inference:
//	  timeout: 5m
type fileOverlay struct {
	Generation *GenerationConfig `yaml:"generation"`
	Inference  *InferenceConfig  `yaml:"inference"`
}

// overlayFile applies the YAML profile at path on top of the environment values.
// Keys absent from the file keep their current value; unknown keys are an error.
// The path parameter is expected to come from a trusted source (operator environment).
func (c *Config) overlayFile(path string) error {
	// #nosec G304 -- path is provided by the operator, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	overlay := fileOverlay{Generation: &c.Generation, Inference: &c.Inference}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&overlay); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}
