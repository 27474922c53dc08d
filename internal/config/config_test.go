package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFromReaderAppliesDefaultsAndNormalises(t *testing.T) {
	yamlDoc := `
start_url: "https://Example.COM/"
allowed_domains: ["Example.COM", "CDN.example.com"]
raw_output: "out"
allowed_extensions: ["html", ".pdf"]
`
	cfg, err := LoadFromReader(strings.NewReader(yamlDoc))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxPages != -1 {
		t.Fatalf("expected default max_pages=-1, got %d", cfg.MaxPages)
	}
	if cfg.Timeout.Duration != 20*time.Second {
		t.Fatalf("expected default timeout=20s, got %s", cfg.Timeout.Duration)
	}
	if cfg.RequestDelay.Duration != 250*time.Millisecond {
		t.Fatalf("expected default delay=250ms, got %s", cfg.RequestDelay.Duration)
	}
	if cfg.AllowedDomains[0] != "example.com" || cfg.AllowedDomains[1] != "cdn.example.com" {
		t.Fatalf("expected lowercased domains, got %v", cfg.AllowedDomains)
	}
	if cfg.AllowedExts[0] != ".html" || cfg.AllowedExts[1] != ".pdf" {
		t.Fatalf("expected dotted extensions, got %v", cfg.AllowedExts)
	}
	if !looksAbsolute(cfg.RawOutput) {
		t.Fatalf("expected raw_output resolved to an absolute path, got %q", cfg.RawOutput)
	}
}

func looksAbsolute(p string) bool {
	return strings.HasPrefix(p, "/") || (len(p) > 1 && p[1] == ':')
}

func TestLoadFromReaderDurationAcceptsNumericSeconds(t *testing.T) {
	yamlDoc := `
start_url: "https://ex.test/"
allowed_domains: ["ex.test"]
raw_output: "out"
request_delay_seconds: 2
timeout_seconds: 30
`
	cfg, err := LoadFromReader(strings.NewReader(yamlDoc))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RequestDelay.Duration != 2*time.Second {
		t.Fatalf("expected 2s delay from numeric yaml, got %s", cfg.RequestDelay.Duration)
	}
	if cfg.Timeout.Duration != 30*time.Second {
		t.Fatalf("expected 30s timeout from numeric yaml, got %s", cfg.Timeout.Duration)
	}
}

func TestLoadFromReaderDurationAcceptsHumanReadable(t *testing.T) {
	yamlDoc := `
start_url: "https://ex.test/"
allowed_domains: ["ex.test"]
raw_output: "out"
request_delay_seconds: "500ms"
`
	cfg, err := LoadFromReader(strings.NewReader(yamlDoc))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RequestDelay.Duration != 500*time.Millisecond {
		t.Fatalf("expected 500ms, got %s", cfg.RequestDelay.Duration)
	}
}

func TestValidateRejectsMissingStartURL(t *testing.T) {
	cfg := Default()
	cfg.AllowedDomains = []string{"ex.test"}
	cfg.RawOutput = "out"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing start_url")
	}
}

func TestValidateRejectsEmptyAllowedDomains(t *testing.T) {
	cfg := Default()
	cfg.StartURL = "https://ex.test/"
	cfg.RawOutput = "out"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty allowed_domains")
	}
}

func TestValidateRejectsMaxPagesBelowNegativeOne(t *testing.T) {
	cfg := Default()
	cfg.StartURL = "https://ex.test/"
	cfg.AllowedDomains = []string{"ex.test"}
	cfg.RawOutput = "out"
	cfg.MaxPages = -2
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for max_pages < -1")
	}
}

func TestLoadFromReaderRejectsUnknownFields(t *testing.T) {
	yamlDoc := `
start_url: "https://ex.test/"
allowed_domains: ["ex.test"]
raw_output: "out"
not_a_real_field: true
`
	if _, err := LoadFromReader(strings.NewReader(yamlDoc)); err == nil {
		t.Fatal("expected decode error for unknown field under KnownFields(true)")
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load("/nonexistent/path/to/config.yaml"); err == nil {
		t.Fatal("expected error opening a missing config file")
	}
}
