package qlock

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects how a perturbation is folded into a rotation angle.
type Mode string

const (
	// ModeAdditive shifts the angle: θ' = θ + δ.
	ModeAdditive Mode = "additive"
	// ModeMultiplicative scales the angle, θ' = θ·(1 + δ), with the shift θ·δ
	// clamped to the perturbation bound.
	ModeMultiplicative Mode = "multiplicative"
)

// Transform selects the spectral transform that turns a latent vector into a signature.
type Transform string

const (
	TransformGolden Transform = "golden"
	TransformLatent Transform = "latent"
)

/*
Config holds everything that shapes a watermark and the runs around it.
Only Dimension, Epsilon, Salt, Mode, Transform and FeatureMix affect the
locked circuit; the rest tunes sampling, the worker pool and auditing.
*/
type Config struct {
	Dimension         int           `yaml:"dimension"`
	Epsilon           float64       `yaml:"epsilon"`
	Salt              string        `yaml:"salt"`
	Mode              Mode          `yaml:"mode"`
	Transform         Transform     `yaml:"transform"`
	FeatureMix        float64       `yaml:"feature_mix"`
	Workers           int           `yaml:"workers"`
	SchedulingTimeout time.Duration `yaml:"scheduling_timeout"`
	ResultTTL         time.Duration `yaml:"result_ttl"`
	JobsPerSecond     int           `yaml:"jobs_per_second"`
	MaxQueue          int           `yaml:"max_queue"`
	Shots             int           `yaml:"shots"`
	Seed              uint64        `yaml:"seed"`
	MaxQubits         int           `yaml:"max_qubits"`
	AuditPath         string        `yaml:"audit_path"`
}

func NewConfig() *Config {
	return &Config{
		Dimension:         64,
		Epsilon:           DefaultEpsilon,
		Mode:              ModeAdditive,
		Transform:         TransformGolden,
		Workers:           4,
		SchedulingTimeout: 10 * time.Second,
		ResultTTL:         10 * time.Minute,
		Shots:             1024,
		MaxQubits:         20,
	}
}

// LoadConfig overlays the YAML file at path onto the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	var errs []error
	if cfg.Dimension <= 0 {
		errs = append(errs, fmt.Errorf("dimension must be positive, got %d", cfg.Dimension))
	}
	if cfg.Epsilon <= 0 {
		errs = append(errs, fmt.Errorf("epsilon must be positive, got %g", cfg.Epsilon))
	}
	switch cfg.Mode {
	case ModeAdditive, ModeMultiplicative:
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q", cfg.Mode))
	}
	switch cfg.Transform {
	case TransformGolden, TransformLatent:
	default:
		errs = append(errs, fmt.Errorf("unknown transform %q", cfg.Transform))
	}
	if cfg.FeatureMix < 0 || cfg.FeatureMix > 1 {
		errs = append(errs, fmt.Errorf("feature_mix must lie in [0,1], got %g", cfg.FeatureMix))
	}
	if cfg.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", cfg.Workers))
	}
	if cfg.ResultTTL < 0 {
		errs = append(errs, fmt.Errorf("result_ttl must not be negative, got %v", cfg.ResultTTL))
	}
	if cfg.JobsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("jobs_per_second must not be negative, got %d", cfg.JobsPerSecond))
	}
	if cfg.MaxQueue < 0 {
		errs = append(errs, fmt.Errorf("max_queue must not be negative, got %d", cfg.MaxQueue))
	}
	if cfg.Shots <= 0 {
		errs = append(errs, fmt.Errorf("shots must be positive, got %d", cfg.Shots))
	}
	if cfg.MaxQubits <= 0 {
		errs = append(errs, fmt.Errorf("max_qubits must be positive, got %d", cfg.MaxQubits))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, errors.Join(errs...))
	}
	return nil
}
