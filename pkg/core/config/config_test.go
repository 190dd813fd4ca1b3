package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
defaults:
  tax_rate: 0.21
  projection_periods: 5
company_types:
  service:
    standard_hours_per_period: 1800
    tax_rate: 0.30
  retail:
    max_turnover: 40
`

func TestParse_MergesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	service := cfg.For("service")
	if got := service.Get("standard_hours_per_period", 2080); got != 1800 {
		t.Errorf("standard_hours_per_period = %v, want 1800", got)
	}
	if got := service.Get("tax_rate", 0); got != 0.30 {
		t.Errorf("service tax_rate override = %v, want 0.30", got)
	}

	retail := cfg.For("retail")
	if got := retail.Get("tax_rate", 0); got != 0.21 {
		t.Errorf("retail tax_rate = %v, want shared default 0.21", got)
	}
	if got := retail.Get("projection_periods", 3); got != 5 {
		t.Errorf("projection_periods = %v, want 5", got)
	}

	unknown := cfg.For("manufacturing")
	if got := unknown.Get("max_turnover", 50); got != 50 {
		t.Errorf("unconfigured knob = %v, want fallback 50", got)
	}
}

func TestFor_ReturnsCopy(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	tuning := cfg.For("service")
	tuning["tax_rate"] = 0.99

	if got := cfg.For("service").Get("tax_rate", 0); got != 0.30 {
		t.Errorf("mutating a returned tuning leaked into config: %v", got)
	}
}

func TestParse_RejectsNegative(t *testing.T) {
	_, err := Parse([]byte("company_types:\n  saas:\n    max_churn_rate: -1\n"))
	if err == nil {
		t.Fatal("expected error for negative tuning value")
	}
	if !strings.Contains(err.Error(), "company_types.saas.max_churn_rate") {
		t.Errorf("error should name the knob, got %v", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse([]byte("defaults: [1, 2")); err == nil {
		t.Fatal("expected YAML error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(cfg.CompanyTypes) != 0 || len(cfg.Defaults) != 0 {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "company_types.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.For("retail").Get("max_turnover", 0) != 40 {
		t.Errorf("unexpected retail tuning: %+v", cfg.For("retail"))
	}
}

func TestLoadEnv_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("HISTORICALS_CONFIG", "")
	t.Setenv("LOG_LEVEL", "debug")

	app := LoadEnv()
	if app.Port != "8080" {
		t.Errorf("Port = %q, want 8080", app.Port)
	}
	if app.TuningPath != DefaultTuningPath {
		t.Errorf("TuningPath = %q", app.TuningPath)
	}
	if app.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", app.LogLevel)
	}
}
