// Package environment outlines the interfaces and structs needed to implement
// concrete environments
package environment

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/wormrl/timestep"
)

// ErrEnvironmentUnavailable is returned when an environment cannot produce
// a state, for example because its sensor or action targets are
// unreachable. Such failures are recoverable at the episode level.
var ErrEnvironmentUnavailable = errors.New("environment unavailable")

// ErrIndexOutOfRange is returned when an action index outside of the
// action set is given to an environment
var ErrIndexOutOfRange = errors.New("action index out of range")

// Starter implements a distribution of starting states and samples starting
// states for environments
type Starter interface {
	Start() mat.Vector
}

// Ender determines when episodes end
type Ender interface {
	// End returns whether the episode should end at the argument
	// timestep. If so, End modifies the timestep so that its StepType
	// is timestep.Last.
	End(*timestep.TimeStep) bool
}

// Environment implements an environment in which an agent acts using
// discrete action indices
type Environment interface {
	// Reset starts a new episode and returns its first timestep
	Reset(ctx context.Context) (timestep.TimeStep, error)

	// Step takes the action with index action and returns the next
	// timestep along with whether the episode has ended
	Step(ctx context.Context, action int) (timestep.TimeStep, bool, error)

	// Sample returns a uniformly random action index
	Sample() int

	ObservationSpec() Spec
	ActionSpec() Spec
}
