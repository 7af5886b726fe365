package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/wormrl/agent"
	"github.com/samuelfneumann/wormrl/environment"
	"github.com/samuelfneumann/wormrl/experiment/tracker"
	"github.com/samuelfneumann/wormrl/timestep"
	"github.com/samuelfneumann/wormrl/utils/progressbar"
)

// Episodic is an Experiment that trains an agent online for a fixed
// number of episodes.
//
// If the environment becomes unavailable during an episode, the
// failure is logged, the episode is ended early and training continues
// with the next episode. Any other error stops the experiment.
//
// After training, an Episodic can evaluate the agent for a number of
// episodes in which it acts greedily and does not learn. Evaluation
// episodes are not tracked.
type Episodic struct {
	environment.Environment
	agent.Agent

	episodes       int
	evalEpisodes   int
	currentEpisode int
	limit          environment.Ender
	trackers       []tracker.Tracker
	logger         logrus.FieldLogger
	bar            *progressbar.ManualProgressBar
}

// NewEpisodic creates and returns a new episodic experiment on a given
// environment with a given agent, running for episodes episodes. If
// maxSteps is positive, episodes are cut off after maxSteps steps. The
// trackers t determine which data is saved.
func NewEpisodic(e environment.Environment, a agent.Agent, episodes,
	maxSteps int, logger logrus.FieldLogger,
	t ...tracker.Tracker) *Episodic {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Episodic{
		Environment: e,
		Agent:       a,
		episodes:    episodes,
		limit:       environment.NewStepLimit(maxSteps),
		trackers:    t,
		logger:      logger,
	}
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Episodic) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// SetProgressBar sets the progress bar advanced after each episode
func (o *Episodic) SetProgressBar(bar *progressbar.ManualProgressBar) {
	o.bar = bar
}

// SetEvaluation sets the number of greedy evaluation episodes run
// after the training episodes
func (o *Episodic) SetEvaluation(episodes int) {
	o.evalEpisodes = episodes
}

// RunEpisode runs a single episode of the experiment. If the agent is
// in evaluation mode, it does not learn during the episode and the
// episode is not tracked.
func (o *Episodic) RunEpisode(ctx context.Context) (Episode, error) {
	ep := Episode{Index: o.currentEpisode, Eval: o.Agent.IsEval()}
	defer func() { o.currentEpisode++ }()

	step, err := o.Environment.Reset(ctx)
	if err != nil {
		if !recoverable(err) {
			return ep, fmt.Errorf("runEpisode: %w", err)
		}
		o.logger.WithError(err).WithField("episode", ep.Index).Warn(
			"could not start episode")

		// Track an empty episode so tracked data stays aligned with
		// episode indices
		if !ep.Eval {
			failed := timestep.New(timestep.Last, 0, nil, 0)
			failed.SetEnd(timestep.Failure)
			o.track(failed)
		}
		ep.End = timestep.Failure
		o.Agent.EndEpisode()
		return ep, nil
	}

	if err := o.Agent.ObserveFirst(step); err != nil {
		return ep, fmt.Errorf("runEpisode: %w", err)
	}
	if !ep.Eval {
		o.track(step)
	}

	for !step.Last() {
		if err := ctx.Err(); err != nil {
			return ep, fmt.Errorf("runEpisode: %w", err)
		}

		// Select action, step in environment
		action, err := o.Agent.SelectAction(step)
		if err != nil {
			return ep, fmt.Errorf("runEpisode: %w", err)
		}

		next, done, err := o.Environment.Step(ctx, action)
		if err != nil {
			if !recoverable(err) {
				return ep, fmt.Errorf("runEpisode: %w", err)
			}
			o.logger.WithError(err).WithFields(logrus.Fields{
				"episode": ep.Index,
				"step":    step.Number + 1,
			}).Warn("environment unavailable, ending episode")

			// Close the episode for the trackers without a reward
			failed := timestep.New(timestep.Last, 0, step.Observation,
				step.Number+1)
			failed.SetEnd(timestep.Failure)
			if !ep.Eval {
				o.track(failed)
			}
			ep.End = timestep.Failure
			break
		}

		if done && !next.Last() {
			next.StepType = timestep.Last
			next.SetEnd(timestep.TerminalStateReached)
		}
		if !next.Last() {
			o.limit.End(&next)
		}

		if !ep.Eval {
			o.track(next)

			// Observe the timestep and step the agent
			if err := o.Agent.Observe(action, next); err != nil {
				return ep, fmt.Errorf("runEpisode: %w", err)
			}
			if err := o.Agent.Step(); err != nil {
				return ep, fmt.Errorf("runEpisode: %w", err)
			}
		}

		ep.Return += next.Reward
		ep.Steps = next.Number
		ep.End = next.EndType()
		step = next
	}
	o.Agent.EndEpisode()

	o.logger.WithFields(logrus.Fields{
		"episode": ep.Index,
		"return":  ep.Return,
		"steps":   ep.Steps,
		"end":     ep.End,
		"eval":    ep.Eval,
	}).Info("episode finished")

	return ep, nil
}

// Run runs all training episodes of the experiment followed by the
// evaluation episodes. The agent is left in evaluation mode if any
// evaluation episodes were run. The episodes finished before an error
// occurred are summarized even when an error is returned.
func (o *Episodic) Run(ctx context.Context) (Summary, error) {
	if o.bar != nil {
		defer o.bar.Close()
	}

	total := o.episodes + o.evalEpisodes
	episodes := make([]Episode, 0, total)

	for o.currentEpisode < total {
		if o.currentEpisode >= o.episodes && !o.Agent.IsEval() {
			o.Agent.Eval()
		}

		ep, err := o.RunEpisode(ctx)
		if err != nil {
			return Summarize(episodes), err
		}
		episodes = append(episodes, ep)

		if o.bar != nil {
			status := "episode"
			if ep.Eval {
				status = "evaluation"
			}
			o.bar.Increment()
			o.bar.Display(fmt.Sprintf("%s: %d  return: %.2f", status,
				ep.Index, ep.Return))
		}
	}

	return Summarize(episodes), nil
}

// Save saves the data cached by the Trackers to disk
func (o *Episodic) Save() error {
	var result *multierror.Error
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// track tracks the current timestep by caching its data in each tracker
func (o *Episodic) track(t timestep.TimeStep) {
	for _, tr := range o.trackers {
		tr.Track(t)
	}
}

// recoverable returns whether err only ends the current episode
func recoverable(err error) bool {
	return errors.Is(err, environment.ErrEnvironmentUnavailable)
}

// Summary summarizes the episodes of an experiment. Episodes holds the
// training episodes and Evaluation the evaluation episodes. Failures
// counts failed episodes of both kinds.
type Summary struct {
	Episodes     []Episode
	MeanReturn   float64
	StdDevReturn float64
	Failures     int

	Evaluation     []Episode
	MeanEvalReturn float64
}

// Summarize summarizes episodes
func Summarize(episodes []Episode) Summary {
	var s Summary

	var returns, evalReturns []float64
	for _, ep := range episodes {
		if ep.Failed() {
			s.Failures++
		}
		if ep.Eval {
			s.Evaluation = append(s.Evaluation, ep)
			evalReturns = append(evalReturns, ep.Return)
			continue
		}
		s.Episodes = append(s.Episodes, ep)
		returns = append(returns, ep.Return)
	}

	switch len(returns) {
	case 0:
	case 1:
		s.MeanReturn = returns[0]
	default:
		s.MeanReturn, s.StdDevReturn = stat.MeanStdDev(returns, nil)
	}
	if len(evalReturns) > 0 {
		s.MeanEvalReturn = stat.Mean(evalReturns, nil)
	}
	return s
}
