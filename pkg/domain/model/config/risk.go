package config

// ScaleLevel names one step of the 1-5 probability or impact scale
type ScaleLevel struct {
	Score       int
	Name        string
	Description string
}

// RiskConfig holds the labels of the probability and impact scales
type RiskConfig struct {
	Probability []ScaleLevel
	Impact      []ScaleLevel
}

// ProbabilityName returns the configured label for a probability score
func (c *RiskConfig) ProbabilityName(score int) string {
	return levelName(c.Probability, score)
}

// ImpactName returns the configured label for an impact score
func (c *RiskConfig) ImpactName(score int) string {
	return levelName(c.Impact, score)
}

func levelName(levels []ScaleLevel, score int) string {
	for _, l := range levels {
		if l.Score == score {
			return l.Name
		}
	}
	return ""
}

const (
	DefaultIterations = 1000
	// DefaultMaxIterations bounds a single run so that a request cannot
	// allocate an arbitrarily large sample buffer
	DefaultMaxIterations = 1_000_000
)

// DefaultPercentiles are the bands reported when none are configured
func DefaultPercentiles() []float64 {
	return []float64{10, 50, 90}
}

// SimulationConfig holds Monte Carlo defaults
type SimulationConfig struct {
	Iterations    int
	MaxIterations int
	Percentiles   []float64
}

// Thresholds classify a performance index. Values below Critical are critical,
// values below Warning need watching.
type Thresholds struct {
	Warning  float64
	Critical float64
}

// AlertConfig holds the limits that trigger notifications
type AlertConfig struct {
	CPI Thresholds
	SPI Thresholds
	// ExposureP90 is the simulated P90 above which the exposure watch alerts.
	// Zero disables the alert.
	ExposureP90 float64
}

// DefaultAlertConfig returns the thresholds used when the config file has none
func DefaultAlertConfig() AlertConfig {
	return AlertConfig{
		CPI: Thresholds{Warning: 0.95, Critical: 0.85},
		SPI: Thresholds{Warning: 0.95, Critical: 0.85},
	}
}

// Config is the domain view of the application configuration
type Config struct {
	Risk       RiskConfig
	Simulation SimulationConfig
	Alert      AlertConfig
}

// Default returns a configuration with default simulation and alert settings
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Iterations:    DefaultIterations,
			MaxIterations: DefaultMaxIterations,
			Percentiles:   DefaultPercentiles(),
		},
		Alert: DefaultAlertConfig(),
	}
}
