package qlearning

import (
	"fmt"

	"github.com/samuelfneumann/wormrl/agent"
	"github.com/samuelfneumann/wormrl/environment"
)

// Algorithm determines which action value target the agent learns
type Algorithm string

const (
	// QLearningAlgorithm bootstraps from the best action in the next
	// state
	QLearningAlgorithm Algorithm = "q-learning"

	// SARSAAlgorithm bootstraps from the action selected in the next
	// state
	SARSAAlgorithm Algorithm = "sarsa"
)

// Config represents a configuration for the QLearning agent.
//
// Epsilon and LearningRate are the initial exploration probability and
// step size. Both are decayed at the start of each episode t as
//
//	max(Min, min(Initial, 1 - log10((t + 1) / Decay)))
//
// and decay is disabled when Decay is 0.
type Config struct {
	Buckets         []int     `mapstructure:"buckets"`
	LearningRate    float64   `mapstructure:"learning_rate"`
	MinLearningRate float64   `mapstructure:"min_learning_rate"`
	Discount        float64   `mapstructure:"discount"`
	Epsilon         float64   `mapstructure:"epsilon"` // ε for behaviour policy
	MinEpsilon      float64   `mapstructure:"min_epsilon"`
	Decay           float64   `mapstructure:"decay"`
	Algorithm       Algorithm `mapstructure:"algorithm"`
}

// DefaultConfig returns the default configuration: 10 buckets along
// each of 6 observation dimensions, a learning rate decaying from 1.0
// to 0.1, a discount of 0.99 and ε decaying from 1.0 to 0.1 at a decay
// rate of 25.
func DefaultConfig() Config {
	return Config{
		Buckets:         []int{10, 10, 10, 10, 10, 10},
		LearningRate:    1.0,
		MinLearningRate: 0.1,
		Discount:        0.99,
		Epsilon:         1.0,
		MinEpsilon:      0.1,
		Decay:           25.0,
		Algorithm:       QLearningAlgorithm,
	}
}

// CreateAgent creates the agent from the Config. Action values are
// always initialized to zero.
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	return New(env, c, seed)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*QLearning)
	return ok
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if len(c.Buckets) == 0 {
		return fmt.Errorf("validate: must have at least one bucket count")
	}
	for i, b := range c.Buckets {
		if b < 1 {
			return fmt.Errorf("validate: dimension %d must have at least "+
				"one bucket, have %d", i, b)
		}
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("validate: learning rate %v not in (0, 1]",
			c.LearningRate)
	}
	if c.MinLearningRate < 0 || c.MinLearningRate > c.LearningRate {
		return fmt.Errorf("validate: minimum learning rate %v not in "+
			"[0, %v]", c.MinLearningRate, c.LearningRate)
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: discount %v not in [0, 1]", c.Discount)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("validate: epsilon %v not in [0, 1]", c.Epsilon)
	}
	if c.MinEpsilon < 0 || c.MinEpsilon > c.Epsilon {
		return fmt.Errorf("validate: minimum epsilon %v not in [0, %v]",
			c.MinEpsilon, c.Epsilon)
	}
	if c.Decay < 0 {
		return fmt.Errorf("validate: decay rate %v cannot be negative",
			c.Decay)
	}
	switch c.Algorithm {
	case QLearningAlgorithm, SARSAAlgorithm:
	default:
		return fmt.Errorf("validate: unknown algorithm %q", c.Algorithm)
	}
	return nil
}
