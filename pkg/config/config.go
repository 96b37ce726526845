// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"

	"github.com/user/scanline/pkg/ports"
	"gopkg.in/yaml.v3"
)

// Source type values for InputStreamConfig.Type.
const (
	TypeLive  = "live"
	TypeImage = "image"
)

// Config is the full pipeline configuration. It is merged once per
// lifecycle (defaults, then file, then caller overrides) and read-only
// afterwards.
type Config struct {
	InputStream  InputStreamConfig `yaml:"input_stream"`
	Locate       bool              `yaml:"locate"`
	Locator      LocatorConfig     `yaml:"locator"`
	Decoder      DecoderConfig     `yaml:"decoder"`
	NumOfWorkers int               `yaml:"num_of_workers"`
	Frequency    float64           `yaml:"frequency"` // target ticks per second; 0 ticks every frame

	LogLevel string `yaml:"log_level"`
}

// InputStreamConfig selects and constrains the frame source.
type InputStreamConfig struct {
	Type        string            `yaml:"type"`   // live or image
	Target      string            `yaml:"target"` // URL (live) or file path (image)
	Size        int               `yaml:"size"`   // longest-edge cap for static images; 0 keeps native size
	Constraints ConstraintsConfig `yaml:"constraints"`
}

// ConstraintsConfig requests capture dimensions from a live source.
type ConstraintsConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// LocatorConfig tunes candidate location.
type LocatorConfig struct {
	HalfSample bool   `yaml:"half_sample"`
	PatchSize  string `yaml:"patch_size"`
}

// DecoderConfig selects enabled symbologies by registered format name.
type DecoderConfig struct {
	Readers []string `yaml:"readers"`
}

// Defaults returns the continuous-scan defaults.
func Defaults() Config {
	return Config{
		InputStream: InputStreamConfig{
			Type: TypeLive,
			Constraints: ConstraintsConfig{
				Width:  640,
				Height: 480,
			},
		},
		Locate: true,
		Locator: LocatorConfig{
			HalfSample: true,
			PatchSize:  string(ports.PatchMedium),
		},
		NumOfWorkers: 4,
		Frequency:    10,
		LogLevel:     "info",
	}
}

// SingleShotDefaults returns the one-shot decode defaults: a static image
// source, no worker pool, and locating tuned for a single pass.
func SingleShotDefaults() Config {
	cfg := Defaults()
	cfg.InputStream.Type = TypeImage
	cfg.NumOfWorkers = 0
	cfg.Locator.HalfSample = false
	cfg.Frequency = 0
	return cfg
}

// LoadFromFile loads configuration from a YAML file, merging over defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run.
func (c Config) Validate() error {
	switch c.InputStream.Type {
	case TypeLive, TypeImage:
	default:
		return fmt.Errorf("unknown input stream type %q", c.InputStream.Type)
	}
	if c.NumOfWorkers < 0 {
		return fmt.Errorf("num_of_workers must not be negative, got %d", c.NumOfWorkers)
	}
	if c.Frequency < 0 {
		return fmt.Errorf("frequency must not be negative, got %g", c.Frequency)
	}
	return nil
}

// LocatorOptions converts the locator group to the port options.
func (c Config) LocatorOptions() ports.LocatorOptions {
	return ports.LocatorOptions{
		Enabled:    c.Locate,
		HalfSample: c.Locator.HalfSample,
		PatchSize:  ports.PatchSize(c.Locator.PatchSize),
	}
}
