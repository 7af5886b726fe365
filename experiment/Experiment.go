// Package experiment implements functionality for running an experiment
package experiment

import (
	"context"
	"fmt"

	"github.com/samuelfneumann/wormrl/experiment/tracker"
	"github.com/samuelfneumann/wormrl/timestep"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments send each environment TimeStep to their Trackers, which
// cache the data to be later saved to disk by Save(). Run() runs all
// episodes of the experiment and RunEpisode() runs a single episode.
type Experiment interface {
	Run(ctx context.Context) (Summary, error)
	RunEpisode(ctx context.Context) (Episode, error)

	// Save all tracked data to disk
	Save() error

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t tracker.Tracker)
}

// Config represents a configuration of an experiment.
type Config struct {
	// Episodes is the number of episodes to train for
	Episodes int `mapstructure:"episodes"`

	// EvalEpisodes is the number of greedy evaluation episodes run
	// after training
	EvalEpisodes int `mapstructure:"eval_episodes"`

	// MaxEpisodeSteps caps the number of steps in an episode. A value
	// below 1 leaves episode lengths to the environment.
	MaxEpisodeSteps int `mapstructure:"max_episode_steps"`

	// Agents is the number of independent environment and agent pairs
	// to train concurrently
	Agents int `mapstructure:"agents"`

	// Concurrency limits how many pairs train at once. A value below 1
	// trains all pairs at once.
	Concurrency int `mapstructure:"concurrency"`

	// ReturnsFile and LengthsFile are where the episodic returns and
	// lengths are saved. Empty names disable saving.
	ReturnsFile string `mapstructure:"returns_file"`
	LengthsFile string `mapstructure:"lengths_file"`

	// Progress enables the terminal progress bar
	Progress bool `mapstructure:"progress"`
}

// DefaultConfig returns the default experiment configuration: 1000
// episodes of a single agent
func DefaultConfig() Config {
	return Config{
		Episodes: 1000,
		Agents:   1,
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Episodes < 0 {
		return fmt.Errorf("validate: episodes %d cannot be negative",
			c.Episodes)
	}
	if c.EvalEpisodes < 0 {
		return fmt.Errorf("validate: evaluation episodes %d cannot be "+
			"negative", c.EvalEpisodes)
	}
	if c.Agents < 1 {
		return fmt.Errorf("validate: must train at least one agent, "+
			"have %d", c.Agents)
	}
	return nil
}

// Episode describes a finished episode
type Episode struct {
	Index  int
	Return float64
	Steps  int
	End    timestep.EndType

	// Eval is whether the agent acted greedily without learning
	Eval bool
}

// Failed returns whether the episode was ended early because the
// environment became unavailable
func (e Episode) Failed() bool {
	return e.End == timestep.Failure
}
