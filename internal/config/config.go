package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/queuepeek/wait-engine/internal/domain"
)

// Config holds all service settings, populated from environment variables.
// Estimator tuning starts from the compiled-in defaults and may be overridden
// by the optional YAML file named in TUNING_FILE.
type Config struct {
	LogLevel     string
	LogFormat    string
	EvalInterval time.Duration
	TuningFile   string
	Params       domain.Params
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	interval, err := parseEvalInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
		LogFormat:    envOrDefault("LOG_FORMAT", "json"),
		EvalInterval: interval,
		TuningFile:   os.Getenv("TUNING_FILE"),
		Params:       domain.DefaultParams(),
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, errors.New("invalid LOG_LEVEL")
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, errors.New("invalid LOG_FORMAT")
	}

	if cfg.TuningFile != "" {
		params, err := loadTuning(cfg.TuningFile, cfg.Params)
		if err != nil {
			return nil, err
		}
		cfg.Params = params
	}

	return cfg, nil
}

func parseEvalInterval() (time.Duration, error) {
	s := envOrDefault("EVAL_INTERVAL", "30s")
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid EVAL_INTERVAL")
	}
	return d, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// tuning mirrors the optional YAML tuning file. Absent fields keep the
// compiled-in defaults.
type tuning struct {
	// MaxReportAge is a Go duration string, e.g. "2h" or "90m".
	MaxReportAge     string   `yaml:"max_report_age"`
	DecayFactor      *float64 `yaml:"decay_factor"`
	VoteWeightFactor *float64 `yaml:"vote_weight_factor"`
}

// loadTuning reads the YAML tuning file at path and merges it over base.
func loadTuning(path string, base domain.Params) (domain.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Params{}, fmt.Errorf("tuning: read file: %w", err)
	}

	var t tuning
	if err := yaml.Unmarshal(data, &t); err != nil {
		return domain.Params{}, fmt.Errorf("tuning: parse yaml: %w", err)
	}

	p := base
	if t.MaxReportAge != "" {
		d, err := time.ParseDuration(t.MaxReportAge)
		if err != nil {
			return domain.Params{}, fmt.Errorf("tuning: parse max_report_age: %w", err)
		}
		p.MaxReportAge = d
	}
	if t.DecayFactor != nil {
		p.DecayFactor = *t.DecayFactor
	}
	if t.VoteWeightFactor != nil {
		p.VoteWeightFactor = *t.VoteWeightFactor
	}

	if p.MaxReportAge <= 0 {
		return domain.Params{}, errors.New("tuning: max_report_age must be positive")
	}
	if p.DecayFactor <= 0 || p.DecayFactor > 1 {
		return domain.Params{}, errors.New("tuning: decay_factor must be in (0, 1]")
	}
	if p.VoteWeightFactor < 0 || p.VoteWeightFactor >= 1 {
		return domain.Params{}, errors.New("tuning: vote_weight_factor must be in [0, 1)")
	}

	return p, nil
}
