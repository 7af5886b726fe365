package worm

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/wormrl/environment"
	"github.com/samuelfneumann/wormrl/environment/cooldown"
)

const (
	// ObservationDims is the number of observed host metrics
	ObservationDims int = 6

	// ActionDims is the number of action dimensions. Actions are
	// indices into the action set.
	ActionDims int = 1

	// DefaultStepDelay is the time waited after acting before observing
	DefaultStepDelay = 500 * time.Millisecond

	// DefaultMaxSteps caps the length of an episode
	DefaultMaxSteps = 200
)

var (
	// ObservationLow holds the lower bound of each observed metric
	ObservationLow = []float64{0, 0, 0, 0, -10000, 0}

	// ObservationHigh holds the upper bound of each observed metric
	ObservationHigh = []float64{100, 100, 10, 10, 10000, 1500000}
)

// Config describes a worm environment
type Config struct {
	// StepDelay is waited after each action and before each observation
	StepDelay time.Duration `mapstructure:"step_delay"`

	// MaxSteps ends an episode after this many steps. A value below 1
	// disables the limit.
	MaxSteps int `mapstructure:"max_steps"`

	// CooldownWindow is the window of the cooldown penalty
	CooldownWindow time.Duration `mapstructure:"cooldown_window"`

	// HungerThreshold enables a bonus for actions left unused for
	// longer than the threshold. Zero disables the bonus.
	HungerThreshold time.Duration `mapstructure:"hunger_threshold"`
}

// DefaultConfig returns the default worm environment configuration
func DefaultConfig() Config {
	return Config{
		StepDelay:      DefaultStepDelay,
		MaxSteps:       DefaultMaxSteps,
		CooldownWindow: cooldown.Window,
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.StepDelay < 0 {
		return fmt.Errorf("validate: step delay %v cannot be negative",
			c.StepDelay)
	}
	if c.CooldownWindow < time.Second {
		return fmt.Errorf("validate: cooldown window %v must be at least "+
			"one second", c.CooldownWindow)
	}
	if c.HungerThreshold < 0 {
		return fmt.Errorf("validate: hunger threshold %v cannot be "+
			"negative", c.HungerThreshold)
	}
	return nil
}

// ObservationSpec returns the observation space of the worm environment
func ObservationSpec() environment.Spec {
	low := mat.NewVecDense(ObservationDims, append([]float64(nil),
		ObservationLow...))
	high := mat.NewVecDense(ObservationDims, append([]float64(nil),
		ObservationHigh...))

	spec, err := environment.NewSpec(environment.Observation, low, high,
		environment.Continuous)
	if err != nil {
		panic(fmt.Sprintf("observationSpec: %v", err))
	}
	return spec
}
