package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// SimulationConfig is the turn budget and output of a simulation run.
type SimulationConfig struct {
	MaxTurns        int           `yaml:"max_turns" json:"max_turns" validate:"gt=0"`
	ReminderTurnNum int           `yaml:"reminder_turn_num" json:"reminder_turn_num" validate:"gte=0"`
	OutputPath      string        `yaml:"output_path" json:"output_path" validate:"required"`
	Overwrite       bool          `yaml:"overwrite" json:"overwrite"`
	CallTimeout     time.Duration `yaml:"call_timeout" json:"call_timeout" validate:"gte=0"`
	ClientID        string        `yaml:"client" json:"client,omitempty"`
	TherapistID     string        `yaml:"therapist" json:"therapist,omitempty"`
	ClientDataPath  string        `yaml:"client_data" json:"client_data,omitempty"`
}

// DefaultSimulationConfig mirrors the defaults used by the simulation CLI.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		MaxTurns:        30,
		ReminderTurnNum: 5,
		OutputPath:      "data/sessions/default/session.json",
		CallTimeout:     2 * time.Minute,
	}
}

// Validate reports every failing field wrapped in ErrInvalidConfig.
func (c SimulationConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// LoadSimulationFile reads a YAML run file on top of the defaults, applies
// environment overrides and validates the result.
func LoadSimulationFile(path string) (SimulationConfig, error) {
	cfg := DefaultSimulationConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return SimulationConfig{}, fmt.Errorf("read simulation config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return SimulationConfig{}, fmt.Errorf("parse simulation config %s: %w", path, err)
	}

	cfg, err = cfg.WithEnv()
	if err != nil {
		return SimulationConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return SimulationConfig{}, err
	}
	return cfg, nil
}

// WithEnv applies SIM_* overrides.
func (c SimulationConfig) WithEnv() (SimulationConfig, error) {
	maxTurns, err := parseOptionalIntEnv("SIM_MAX_TURNS")
	if err != nil {
		return c, err
	}
	if maxTurns != nil {
		c.MaxTurns = *maxTurns
	}

	reminder, err := parseOptionalIntEnv("SIM_REMINDER_TURN_NUM")
	if err != nil {
		return c, err
	}
	if reminder != nil {
		c.ReminderTurnNum = *reminder
	}

	c.OutputPath = getEnvOrDefault("SIM_OUTPUT_PATH", c.OutputPath)

	overwrite, err := parseBoolEnv("SIM_OVERWRITE", c.Overwrite)
	if err != nil {
		return c, err
	}
	c.Overwrite = overwrite

	if raw := strings.TrimSpace(os.Getenv("SIM_CALL_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return c, fmt.Errorf("invalid SIM_CALL_TIMEOUT value %q: %w", raw, err)
		}
		c.CallTimeout = d
	}
	return c, nil
}
