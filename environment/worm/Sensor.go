package worm

import (
	"context"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/wormrl/environment"
)

// Sensor reads observations of the host the worm is running on
type Sensor interface {
	Observe(ctx context.Context) (mat.Vector, error)
}

// SensorFunc adapts a function to the Sensor interface
type SensorFunc func(ctx context.Context) (mat.Vector, error)

// Observe calls f(ctx)
func (f SensorFunc) Observe(ctx context.Context) (mat.Vector, error) {
	return f(ctx)
}

// SimulatedSensor produces observations drawn from a Starter. It is
// used to train when no host metrics are available. SimulatedSensor is
// safe for concurrent use.
type SimulatedSensor struct {
	mu      sync.Mutex
	starter environment.Starter
}

// NewSimulatedSensor returns a SimulatedSensor drawing observations
// uniformly at random within the bounds of spec
func NewSimulatedSensor(spec environment.Spec, seed uint64) *SimulatedSensor {
	return NewStarterSensor(environment.NewUniformStarter(spec.Bounds(),
		seed))
}

// NewStarterSensor returns a SimulatedSensor drawing observations from
// starter
func NewStarterSensor(starter environment.Starter) *SimulatedSensor {
	return &SimulatedSensor{starter: starter}
}

// Observe returns a new observation
func (s *SimulatedSensor) Observe(ctx context.Context) (mat.Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starter.Start(), nil
}
