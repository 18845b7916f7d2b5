package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultServer is the SoDa CAMS radiation service host used when the
	// setup tool writes a fresh config.
	DefaultServer = "api.soda-solardata.com"

	// DefaultTimeout is the per-request timeout in seconds written by the
	// setup tool.
	DefaultTimeout = 30

	// DefaultConfigFile is where both binaries look for the run configuration.
	DefaultConfigFile = "config.json"

	// DateLayout is the wire format for start_date / end_date.
	DateLayout = "2006-01-02"
)

var validate = validator.New()

// Config describes one processing run: the CAMS request parameters and the
// three folders the file pipeline moves work through. It is read from a flat
// JSON file produced by cams-setup and treated as immutable for the run.
type Config struct {
	SkyType       string `json:"sky_type" validate:"required,oneof=mcclear cams_radiation"`
	StartDate     string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string `json:"end_date" validate:"required,datetime=2006-01-02"`
	TimeStep      string `json:"time_step" validate:"required,oneof=1min 15min 1h 1d 1M"`
	TimeReference string `json:"time_reference" validate:"required,oneof=UT TST"`
	ServerName    string `json:"server_name" validate:"required"`
	Timeout       int    `json:"timeout" validate:"required,min=1"`
	Email         string `json:"email" validate:"required,email"`

	UnprocessedFolder string `json:"unprocessed_folder" validate:"required"`
	ProcessedFolder   string `json:"processed_folder" validate:"required"`
	ResultsFolder     string `json:"results_folder" validate:"required"`
}

// Load reads and validates a JSON config file. A malformed file or any
// missing/invalid key is an error; validation reports every bad field at
// once rather than failing on the first lookup.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field and returns a single error covering all
// violations, plus the cross-field rule end_date >= start_date.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.End().Before(c.Start()) {
		return fmt.Errorf("invalid config: end_date %s is before start_date %s", c.EndDate, c.StartDate)
	}
	return nil
}

// Write serializes the config as pretty JSON, overwriting any existing file.
func (c *Config) Write(path string) error {
	raw, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Start returns start_date as a UTC midnight timestamp. Only meaningful on a
// validated config.
func (c *Config) Start() time.Time {
	t, _ := time.Parse(DateLayout, c.StartDate)
	return t
}

// End returns end_date as a UTC midnight timestamp. Only meaningful on a
// validated config.
func (c *Config) End() time.Time {
	t, _ := time.Parse(DateLayout, c.EndDate)
	return t
}

// ClientTimeout converts the configured timeout seconds into a duration for
// the outbound HTTP client.
func (c *Config) ClientTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
