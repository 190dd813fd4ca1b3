// Package config loads runtime settings: environment variables (optionally from a .env file)
// and the company-type tuning file.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultTuningPath is used when HISTORICALS_CONFIG is not set.
const DefaultTuningPath = "config/company_types.yaml"

// Tuning is a flat set of numeric knobs for one company type
// (plausibility ranges, standard hours, default tax rate...).
type Tuning map[string]float64

// Get returns the knob value or def when it is not configured.
func (t Tuning) Get(key string, def float64) float64 {
	if v, ok := t[key]; ok {
		return v
	}
	return def
}

// Config is the company-type tuning file.
//
//	defaults:
//	  tax_rate: 0.25
//	company_types:
//	  service:
//	    standard_hours_per_period: 2080
type Config struct {
	Defaults     Tuning            `yaml:"defaults"`
	CompanyTypes map[string]Tuning `yaml:"company_types"`
}

// For returns the tuning for a company type with the shared defaults merged underneath.
// The returned map is a fresh copy.
func (c Config) For(companyType string) Tuning {
	out := make(Tuning, len(c.Defaults)+len(c.CompanyTypes[companyType]))
	for k, v := range c.Defaults {
		out[k] = v
	}
	for k, v := range c.CompanyTypes[companyType] {
		out[k] = v
	}
	return out
}

// Validate rejects negative knobs; every configured value is a count, rate or bound.
func (c Config) Validate() error {
	var bad []string
	check := func(scope string, t Tuning) {
		for k, v := range t {
			if v < 0 {
				bad = append(bad, fmt.Sprintf("%s.%s=%v", scope, k, v))
			}
		}
	}
	check("defaults", c.Defaults)
	for name, t := range c.CompanyTypes {
		check("company_types."+name, t)
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return fmt.Errorf("negative tuning values: %s", strings.Join(bad, ", "))
	}
	return nil
}

// Parse decodes a tuning document.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse company type config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the tuning file at path. A missing file is not an error: calculators
// fall back to their built-in defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read company type config %s: %w", path, err)
	}
	return Parse(data)
}

// AppConfig holds process settings shared by the API server and the CLI.
type AppConfig struct {
	Port        string
	LogLevel    string
	DatabaseURL string
	ResultsDir  string
	TuningPath  string
}

// LoadEnv loads .env (if present) and reads the process settings.
func LoadEnv() AppConfig {
	// Missing .env is normal outside local development.
	_ = godotenv.Load()

	return AppConfig{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ResultsDir:  getEnv("RESULTS_DIR", ".cache/historicals/runs"),
		TuningPath:  getEnv("HISTORICALS_CONFIG", DefaultTuningPath),
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
