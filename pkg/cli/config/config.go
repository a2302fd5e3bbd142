package config

import (
	"errors"
	"io/fs"
	"math"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/argus/pkg/domain/model/config"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the application configuration file
type AppConfig struct {
	Probability []ScaleLevel     `toml:"probability"`
	Impact      []ScaleLevel     `toml:"impact"`
	Simulation  SimulationConfig `toml:"simulation"`
	Alert       AlertConfig      `toml:"alert"`
}

// ScaleLevel names one score of the probability or impact scale
type ScaleLevel struct {
	Score       int    `toml:"score"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// Validate checks the score range and the name
func (l *ScaleLevel) Validate() error {
	if err := types.Score(l.Score).Validate(); err != nil {
		return goerr.Wrap(ErrInvalidConfig, "scale score must be between 1 and 5", goerr.V(ScoreKey, l.Score))
	}
	if l.Name == "" {
		return goerr.Wrap(ErrMissingName, "scale level name is required", goerr.V(ScoreKey, l.Score))
	}
	return nil
}

// SimulationConfig holds Monte Carlo defaults. Zero iterations, zero
// max_iterations and empty percentiles mean the built-in defaults.
type SimulationConfig struct {
	Iterations    int       `toml:"iterations"`
	MaxIterations int       `toml:"max_iterations"`
	Percentiles   []float64 `toml:"percentiles"`
}

// Validate checks iteration count and percentile bands
func (s *SimulationConfig) Validate() error {
	if s.Iterations < 0 {
		return goerr.Wrap(ErrInvalidConfig, "simulation iterations must not be negative", goerr.V("iterations", s.Iterations))
	}
	if s.MaxIterations < 0 {
		return goerr.Wrap(ErrInvalidConfig, "simulation max_iterations must not be negative", goerr.V("max_iterations", s.MaxIterations))
	}
	limit := s.MaxIterations
	if limit == 0 {
		limit = domainConfig.DefaultMaxIterations
	}
	if s.Iterations > limit {
		return goerr.Wrap(ErrInvalidConfig, "simulation iterations exceed max_iterations",
			goerr.V("iterations", s.Iterations), goerr.V("max_iterations", limit))
	}
	for _, p := range s.Percentiles {
		if math.IsNaN(p) || p <= 0 || p > 100 {
			return goerr.Wrap(ErrInvalidConfig, "percentile must be in (0, 100]", goerr.V("percentile", p))
		}
	}
	return nil
}

// Thresholds classify a performance index
type Thresholds struct {
	Warning  float64 `toml:"warning"`
	Critical float64 `toml:"critical"`
}

// Validate requires 0 < critical <= warning. An empty table is accepted and
// takes the defaults.
func (t *Thresholds) Validate(name string) error {
	if t.Warning == 0 && t.Critical == 0 {
		return nil
	}
	if t.Critical <= 0 || t.Warning < t.Critical {
		return goerr.Wrap(ErrInvalidConfig, "thresholds must satisfy 0 < critical <= warning",
			goerr.V("index", name), goerr.V("warning", t.Warning), goerr.V("critical", t.Critical))
	}
	return nil
}

// AlertConfig holds notification thresholds
type AlertConfig struct {
	CPI         Thresholds `toml:"cpi"`
	SPI         Thresholds `toml:"spi"`
	ExposureP90 float64    `toml:"exposure_p90"`
}

func validateScale(name string, levels []ScaleLevel) error {
	seen := make(map[int]bool)
	for _, level := range levels {
		if err := level.Validate(); err != nil {
			return goerr.Wrap(err, "invalid scale level", goerr.V(ScaleKey, name))
		}
		if seen[level.Score] {
			return goerr.Wrap(ErrDuplicateScore, "duplicate scale score", goerr.V(ScaleKey, name), goerr.V(ScoreKey, level.Score))
		}
		seen[level.Score] = true
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if err := validateScale("probability", a.Probability); err != nil {
		return err
	}
	if err := validateScale("impact", a.Impact); err != nil {
		return err
	}
	if err := a.Simulation.Validate(); err != nil {
		return err
	}
	if err := a.Alert.CPI.Validate("cpi"); err != nil {
		return err
	}
	if err := a.Alert.SPI.Validate("spi"); err != nil {
		return err
	}
	if a.Alert.ExposureP90 < 0 {
		return goerr.Wrap(ErrInvalidConfig, "exposure_p90 must not be negative", goerr.V("exposure_p90", a.Alert.ExposureP90))
	}
	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

func toScaleLevels(levels []ScaleLevel) []domainConfig.ScaleLevel {
	out := make([]domainConfig.ScaleLevel, len(levels))
	for i, level := range levels {
		out[i] = domainConfig.ScaleLevel{
			Score:       level.Score,
			Name:        level.Name,
			Description: level.Description,
		}
	}
	return out
}

func orDefault(t Thresholds, def domainConfig.Thresholds) domainConfig.Thresholds {
	if t.Warning == 0 && t.Critical == 0 {
		return def
	}
	return domainConfig.Thresholds{Warning: t.Warning, Critical: t.Critical}
}

// ToDomainConfig converts AppConfig to the domain configuration, filling
// defaults for unset values
func (a *AppConfig) ToDomainConfig() *domainConfig.Config {
	cfg := domainConfig.Default()
	cfg.Risk = domainConfig.RiskConfig{
		Probability: toScaleLevels(a.Probability),
		Impact:      toScaleLevels(a.Impact),
	}
	if a.Simulation.Iterations > 0 {
		cfg.Simulation.Iterations = a.Simulation.Iterations
	}
	if a.Simulation.MaxIterations > 0 {
		cfg.Simulation.MaxIterations = a.Simulation.MaxIterations
	}
	if len(a.Simulation.Percentiles) > 0 {
		cfg.Simulation.Percentiles = a.Simulation.Percentiles
	}
	defaults := domainConfig.DefaultAlertConfig()
	cfg.Alert = domainConfig.AlertConfig{
		CPI:         orDefault(a.Alert.CPI, defaults.CPI),
		SPI:         orDefault(a.Alert.SPI, defaults.SPI),
		ExposureP90: a.Alert.ExposureP90,
	}
	return cfg
}

// App holds the flag for the application configuration file
type App struct {
	path string
}

// Flags returns CLI flags for the application configuration
func (x *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML configuration file (scale labels, simulation, alerts)",
			Category:    "Config",
			Sources:     cli.EnvVars("ARGUS_CONFIG"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured file path
func (x *App) Path() string {
	return x.path
}

// Configure loads the configuration file. Without a file the defaults apply.
func (x *App) Configure() (*domainConfig.Config, error) {
	if x.path == "" {
		return domainConfig.Default(), nil
	}
	appCfg, err := LoadAppConfiguration(x.path)
	if err != nil {
		return nil, err
	}
	return appCfg.ToDomainConfig(), nil
}
