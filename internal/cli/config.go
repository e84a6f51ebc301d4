package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/simonhull/unildd"
)

// Config holds the settings a config file may provide. Command-line flags
// override it.
type Config struct {
	Format      string `yaml:"format"`
	Debug       bool   `yaml:"debug"`
	MaxDepth    int    `yaml:"max_depth"`
	HostCheck   bool   `yaml:"host_check"`
	Concurrency int    `yaml:"concurrency"`
}

// DefaultConfig returns the settings used without a config file.
func DefaultConfig() Config {
	return Config{
		Format:      string(FormatTable),
		MaxDepth:    unildd.DefaultMaxDepth,
		Concurrency: runtime.NumCPU(),
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig. Unknown
// keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := ValidateFormat(cfg.Format, supportedFormats); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.MaxDepth < 0 {
		return cfg, fmt.Errorf("config %s: max_depth must not be negative", path)
	}
	return cfg, nil
}

// options translates cfg into read options.
func (c Config) options() []unildd.Option {
	return []unildd.Option{
		unildd.WithDebug(c.Debug),
		unildd.WithMaxDepth(c.MaxDepth),
		unildd.WithConcurrency(c.Concurrency),
	}
}
