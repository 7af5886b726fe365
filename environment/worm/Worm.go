// Package worm implements the environment of a network worm which
// learns which of its actions to take from the resource usage of the
// host it runs on
package worm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/wormrl/environment"
	"github.com/samuelfneumann/wormrl/environment/action"
	"github.com/samuelfneumann/wormrl/environment/cooldown"
	"github.com/samuelfneumann/wormrl/timestep"
	"github.com/samuelfneumann/wormrl/utils/matutils"
)

// Env implements the worm environment. At each step the worm takes one
// of the actions in the action package, waits for the host to react and
// then observes the host's resource usage through a Sensor.
//
// Observations are 6-dimensional and bounded by ObservationLow and
// ObservationHigh. Actions are indices into action.All().
//
// The reward for an action is its weight minus a cooldown penalty
// which is largest when the action was used very recently. If the
// Executor is busy the reward is halved and if the action fails the
// reward is 0. When HungerThreshold is set, actions left unused for
// longer than the threshold earn a bonus.
//
// Episodes end after MaxSteps steps. Env is not safe for concurrent
// use; independent Envs may be used concurrently.
//
// Env implements the environment.Environment interface
type Env struct {
	config   Config
	sensor   Sensor
	executor action.Executor
	cooldown *cooldown.Model
	ender    environment.Ender
	sampler  *action.Sampler
	logger   logrus.FieldLogger

	obsSpec  environment.Spec
	lastStep timestep.TimeStep
}

// New creates and returns a new worm environment. If clock is nil,
// time.Now is used to time cooldowns.
func New(c Config, sensor Sensor, executor action.Executor,
	clock func() time.Time, logger logrus.FieldLogger,
	seed uint64) (*Env, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	if sensor == nil || executor == nil {
		return nil, fmt.Errorf("new: sensor and executor must be non-nil")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	cd, err := cooldown.New(c.CooldownWindow, clock)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return &Env{
		config:   c,
		sensor:   sensor,
		executor: executor,
		cooldown: cd,
		ender:    environment.NewStepLimit(c.MaxSteps),
		sampler:  action.NewSampler(rand.NewSource(seed)),
		logger:   logger,
		obsSpec:  ObservationSpec(),
	}, nil
}

// Reset resets the environment and returns its first timestep. Every
// action is taken off cooldown.
func (e *Env) Reset(ctx context.Context) (timestep.TimeStep, error) {
	e.cooldown.Reset()

	if err := e.wait(ctx); err != nil {
		return timestep.TimeStep{}, fmt.Errorf("reset: %w", err)
	}

	obs, err := e.observe(ctx)
	if err != nil {
		return timestep.TimeStep{}, fmt.Errorf("reset: %w", err)
	}

	e.lastStep = timestep.New(timestep.First, 0, obs, 0)
	return e.lastStep, nil
}

// Step takes the action with index a in the environment and returns the
// next timestep and whether the episode has ended
func (e *Env) Step(ctx context.Context, a int) (timestep.TimeStep, bool,
	error) {
	if !action.Valid(a) {
		return timestep.TimeStep{}, false, fmt.Errorf("step: %w: %d not "+
			"in [0, %d)", environment.ErrIndexOutOfRange, a, action.Count)
	}
	act := action.FromIndex(a)

	execErr := e.executor.Execute(ctx, act)
	if err := ctx.Err(); err != nil {
		return timestep.TimeStep{}, false, fmt.Errorf("step: %w", err)
	}

	if err := e.wait(ctx); err != nil {
		return timestep.TimeStep{}, false, fmt.Errorf("step: %w", err)
	}

	reward := e.reward(act, execErr)

	obs, err := e.observe(ctx)
	if err != nil {
		return timestep.TimeStep{}, false, fmt.Errorf("step: %w", err)
	}

	nextStep := timestep.New(timestep.Mid, reward, obs, e.lastStep.Number+1)
	last := e.ender.End(&nextStep)
	e.lastStep = nextStep

	e.logger.WithFields(logrus.Fields{
		"step":        nextStep.Number,
		"action":      act,
		"reward":      reward,
		"observation": matutils.Format(obs.T()),
	}).Debug("environment step")

	return nextStep, last, nil
}

// reward returns the reward for taking action a, given the outcome of
// executing it
func (e *Env) reward(a action.Action, execErr error) float64 {
	now := e.cooldown.Now()

	// Hunger must be computed before the penalty records the use of a
	hunger := e.cooldown.Hunger(a, now, e.config.HungerThreshold)
	penalty := e.cooldown.PenaltyAt(a, now)
	reward := float64(a.Reward()-penalty) + hunger

	switch {
	case execErr == nil:
	case errors.Is(execErr, action.ErrBusy):
		reward *= 0.5
	default:
		e.logger.WithError(execErr).WithField("action", a).Warn(
			"action failed")
		reward = 0
	}
	return reward
}

// observe reads an observation from the sensor
func (e *Env) observe(ctx context.Context) (mat.Vector, error) {
	obs, err := e.sensor.Observe(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", environment.ErrEnvironmentUnavailable,
			err)
	}
	if obs == nil || obs.Len() != ObservationDims {
		return nil, fmt.Errorf("%w: sensor returned %v dimensions, want %d",
			environment.ErrEnvironmentUnavailable, dims(obs), ObservationDims)
	}
	return obs, nil
}

// wait waits for the step delay or until ctx is done
func (e *Env) wait(ctx context.Context) error {
	if e.config.StepDelay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(e.config.StepDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func dims(v mat.Vector) int {
	if v == nil {
		return 0
	}
	return v.Len()
}

// Sample returns the index of a uniformly random action
func (e *Env) Sample() int {
	return e.sampler.Sample().Index()
}

// ObservationSpec returns the observation specification of the
// environment
func (e *Env) ObservationSpec() environment.Spec {
	return e.obsSpec
}

// ActionSpec returns the action specification of the environment
func (e *Env) ActionSpec() environment.Spec {
	lowerBound := mat.NewVecDense(ActionDims, []float64{0})
	upperBound := mat.NewVecDense(ActionDims, []float64{float64(action.Count - 1)})

	spec, err := environment.NewSpec(environment.Action, lowerBound,
		upperBound, environment.Discrete)
	if err != nil {
		panic(fmt.Sprintf("actionSpec: %v", err))
	}
	return spec
}

// LastUsed returns the last time action a was taken in the current
// episode
func (e *Env) LastUsed(a action.Action) time.Time {
	return e.cooldown.LastUsed(a)
}

// String returns a string representation of the environment
func (e *Env) String() string {
	return fmt.Sprintf("Worm  |  step: %v  |  max steps: %v",
		e.lastStep.Number, e.config.MaxSteps)
}
