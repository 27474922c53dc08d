// Package config loads and validates the crawler's configuration: the seed
// URL, domain allowlist, output directory, crawl limits, and ambient
// logging options.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the full configuration required to run a crawl.
type Config struct {
	StartURL        string        `yaml:"start_url"`
	AllowedDomains  []string      `yaml:"allowed_domains"`
	RawOutput       string        `yaml:"raw_output"`
	MaxPages        int           `yaml:"max_pages"`
	RequestDelay    Duration      `yaml:"request_delay_seconds"`
	Timeout         Duration      `yaml:"timeout_seconds"`
	CrawlerThreads  int           `yaml:"crawler_threads"`
	AllowedExts     []string      `yaml:"allowed_extensions"`
	Logging         LoggingConfig `yaml:"logging"`
}

// LoggingConfig selects log verbosity and format.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Structured bool   `yaml:"structured"`
}

// Default returns a Config populated with the defaults enumerated by spec:
// a quarter-second global delay, a 20-second fetch timeout, unbounded
// max_pages, and crawler_threads falling back to the host's CPU count.
func Default() Config {
	return Config{
		MaxPages:       -1,
		RequestDelay:   DurationFrom(250 * time.Millisecond),
		Timeout:        DurationFrom(20 * time.Second),
		CrawlerThreads: runtime.NumCPU(),
		Logging: LoggingConfig{
			Level:      "info",
			Structured: true,
		},
	}
}

// Load reads and validates configuration from the YAML file at path. If the
// file does not exist, it logs nothing itself — callers proceed with
// Default() per spec's "configuration missing" policy — and returns the
// underlying os error so the caller can distinguish "missing" from
// "malformed".
func Load(path string) (*Config, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer fh.Close()

	cfg := Default()
	if err := decodeYAML(fh, &cfg); err != nil {
		return nil, err
	}
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromReader behaves like Load but reads from an already-open reader,
// useful for tests and embedded configuration.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decodeYAML(r, &cfg); err != nil {
		return nil, err
	}
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// normalise lowercases allowed_domains, ensures every allowed_extensions
// entry carries a leading dot, and resolves raw_output to an absolute path
// exactly once, relative to the process's working directory at load time.
func (c *Config) normalise() {
	for i, d := range c.AllowedDomains {
		c.AllowedDomains[i] = strings.ToLower(strings.TrimSpace(d))
	}
	for i, e := range c.AllowedExts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		c.AllowedExts[i] = e
	}
	if c.RawOutput != "" && !filepath.IsAbs(c.RawOutput) {
		if abs, err := filepath.Abs(c.RawOutput); err == nil {
			c.RawOutput = abs
		}
	}
}

// Validate enforces the required invariants for a runnable crawl.
func (c Config) Validate() error {
	if strings.TrimSpace(c.StartURL) == "" {
		return errors.New("start_url must be set")
	}
	if len(c.AllowedDomains) == 0 {
		return errors.New("allowed_domains must contain at least one host")
	}
	if strings.TrimSpace(c.RawOutput) == "" {
		return errors.New("raw_output must be set")
	}
	if c.CrawlerThreads <= 0 {
		return fmt.Errorf("crawler_threads must be > 0 (got %d)", c.CrawlerThreads)
	}
	if c.RequestDelay.Duration < 0 {
		return fmt.Errorf("request_delay_seconds must be >= 0 (got %s)", c.RequestDelay.Duration)
	}
	if c.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout_seconds must be > 0 (got %s)", c.Timeout.Duration)
	}
	if c.MaxPages < -1 {
		return fmt.Errorf("max_pages must be >= -1 (got %d)", c.MaxPages)
	}
	return nil
}
