package tuning

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/dice-tools-mcp/internal/detection"
)

// LoadFile reads a YAML config file. Keys missing from the file keep their
// default values; unknown keys are an error.
//
//	threshold: 0
//	aspect_ratio_min: 0.9
//	aspect_ratio_max: 1.2
func LoadFile(path string) (detection.RecognitionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return detection.RecognitionConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data on top of the defaults and validates it.
func Parse(data []byte) (detection.RecognitionConfig, error) {
	cfg := detection.DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return detection.RecognitionConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg = cfg.Quantized()
	if err := cfg.Validate(); err != nil {
		return detection.RecognitionConfig{}, err
	}
	return cfg, nil
}

// SaveFile writes cfg as YAML.
func SaveFile(path string, cfg detection.RecognitionConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
