// Package agent defines an agent interface
package agent

import (
	"github.com/samuelfneumann/wormrl/environment"
	"github.com/samuelfneumann/wormrl/timestep"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns action values, and a
// Policy which chooses actions in each state. The Policy chooses which
// actions are taken, and the Learner uses these actions to update the
// values the Policy acts on.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm that defines how values are
// updated.
type Learner interface {
	// ObserveFirst records the first timestep in an episode
	ObserveFirst(timestep.TimeStep) error

	// Observe records that an action lead to some timestep
	Observe(action int, nextStep timestep.TimeStep) error

	// Step performs a single update to the learner using the last
	// observed transition
	Step() error

	// EndEpisode performs cleanup at the end of an episode
	EndEpisode()
}

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions. For a given agent, the
// Policy and Learner share the same values so that any changes the
// learner makes are reflected in the actions the Policy chooses.
type Policy interface {
	SelectAction(t timestep.TimeStep) (int, error)
	Eval()        // Set policy to evaluation mode
	Train()       // Set policy to training mode
	IsEval() bool // Indicates if in evaluation mode
}

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes
	CreateAgent(env environment.Environment, seed uint64) (Agent, error)

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error
}
