// Package qlearning implements the tabular Q-Learning algorithm.
//
// Observations are discretized into a grid of buckets and an action
// value is learned for every pair of grid cell and action. The package
// also implements tabular SARSA, which differs from Q-Learning only in
// the action its update bootstraps from.
package qlearning

import (
	"fmt"

	"github.com/samuelfneumann/wormrl/agent/tabular/policy"
	"github.com/samuelfneumann/wormrl/agent/tabular/qtable"
	"github.com/samuelfneumann/wormrl/environment"
	"github.com/samuelfneumann/wormrl/timestep"
	"github.com/samuelfneumann/wormrl/utils/floatutils"
	"github.com/samuelfneumann/wormrl/utils/matutils/discretizer"
)

// QLearning implements the tabular Q-Learning algorithm
type QLearning struct {
	config      Config
	table       *qtable.QTable
	discretizer *discretizer.Discretizer
	behaviour   *policy.EGreedy

	episode      int
	learningRate float64

	// Last observed transition
	state      []int
	action     int
	reward     float64
	next       []int
	observed   bool
	nextAction int
	hasNext    bool // nextAction was selected by a SARSA update
	tdError    float64
}

// New creates a new QLearning agent acting in env. Exploratory actions
// are sampled from env.
func New(env environment.Environment, c Config, seed uint64) (*QLearning,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	// Ensure actions are discrete
	actionSpec := env.ActionSpec()
	if actionSpec.Cardinality != environment.Discrete {
		return nil, fmt.Errorf("new: QLearning can only be used with " +
			"discrete actions")
	}
	if actionSpec.Len() != 1 {
		return nil, fmt.Errorf("new: QLearning can only be used with " +
			"1-dimensional actions")
	}

	// Calculate the number of actions
	actions := int(actionSpec.UpperBound.AtVec(0)) + 1

	d, err := discretizer.New(env.ObservationSpec(), c.Buckets)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	table, err := qtable.New(c.Buckets, actions)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	behaviour := policy.NewEGreedy(c.Epsilon, table, env, seed)

	q := &QLearning{
		config:      c,
		table:       table,
		discretizer: d,
		behaviour:   behaviour,
	}
	q.schedule()

	return q, nil
}

// schedule sets ε and the learning rate for the current episode
func (q *QLearning) schedule() {
	c := q.config
	q.learningRate = floatutils.LogDecay(q.episode, c.Decay,
		c.MinLearningRate, c.LearningRate)
	q.behaviour.SetEpsilon(floatutils.LogDecay(q.episode, c.Decay,
		c.MinEpsilon, c.Epsilon))
}

// SelectAction selects an action in the state observed at timestep t
// from the ε-greedy behaviour policy
func (q *QLearning) SelectAction(t timestep.TimeStep) (int, error) {
	// A SARSA update already committed to the next action
	if q.hasNext {
		q.hasNext = false
		return q.nextAction, nil
	}

	state, err := q.discretizer.Discretize(t.Observation)
	if err != nil {
		return 0, fmt.Errorf("selectAction: %w", err)
	}
	return q.behaviour.SelectAction(state)
}

// ObserveFirst observes and records the first episodic timestep
func (q *QLearning) ObserveFirst(t timestep.TimeStep) error {
	if !t.First() {
		return fmt.Errorf("observeFirst: should only be called on the "+
			"first timestep (current timestep = %d)", t.Number)
	}

	state, err := q.discretizer.Discretize(t.Observation)
	if err != nil {
		return fmt.Errorf("observeFirst: %w", err)
	}
	q.state = state
	q.next = nil
	q.observed = false
	q.hasNext = false

	return nil
}

// Observe observes and records any timestep other than the first
// timestep
func (q *QLearning) Observe(action int, nextStep timestep.TimeStep) error {
	if q.state == nil {
		return fmt.Errorf("observe: no first timestep observed")
	}

	next, err := q.discretizer.Discretize(nextStep.Observation)
	if err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	if q.observed {
		// Advance past the previous, already learned from, transition
		q.state = q.next
	}
	q.action = action
	q.reward = nextStep.Reward
	q.next = next
	q.observed = true

	return nil
}

// Step updates the action value of the last observed transition. In
// evaluation mode Step does not change the table.
func (q *QLearning) Step() error {
	if !q.observed {
		return fmt.Errorf("step: no transition observed")
	}
	if q.IsEval() {
		return nil
	}

	var (
		tdError float64
		err     error
	)
	switch q.config.Algorithm {
	case SARSAAlgorithm:
		var nextAction int
		nextAction, err = q.behaviour.SelectAction(q.next)
		if err != nil {
			return fmt.Errorf("step: %w", err)
		}
		tdError, err = q.table.UpdateSARSA(q.state, q.action, q.reward,
			q.next, nextAction, q.learningRate, q.config.Discount)
		q.nextAction, q.hasNext = nextAction, err == nil

	default:
		tdError, err = q.table.Update(q.state, q.action, q.reward, q.next,
			q.learningRate, q.config.Discount)
	}
	if err != nil {
		return fmt.Errorf("step: %w", err)
	}
	q.tdError = tdError

	return nil
}

// EndEpisode ends the current episode and decays ε and the learning
// rate for the next one. Evaluation episodes do not count toward the
// decay.
func (q *QLearning) EndEpisode() {
	if !q.IsEval() {
		q.episode++
	}
	q.state, q.next = nil, nil
	q.observed, q.hasNext = false, false
	q.schedule()
}

// Eval sets the agent to evaluation mode, in which it acts greedily
func (q *QLearning) Eval() { q.behaviour.Eval() }

// Train sets the agent to training mode
func (q *QLearning) Train() { q.behaviour.Train() }

// IsEval returns whether the agent is in evaluation mode
func (q *QLearning) IsEval() bool { return q.behaviour.IsEval() }

// Epsilon returns the current probability of selecting a random action
func (q *QLearning) Epsilon() float64 { return q.behaviour.Epsilon() }

// LearningRate returns the current learning rate
func (q *QLearning) LearningRate() float64 { return q.learningRate }

// Episode returns the index of the current episode
func (q *QLearning) Episode() int { return q.episode }

// TdError returns the TD error of the last update
func (q *QLearning) TdError() float64 { return q.tdError }

// Table returns the action value table of the agent
func (q *QLearning) Table() *qtable.QTable { return q.table }

// Discretizer returns the discretizer the agent uses to map
// observations to table coordinates
func (q *QLearning) Discretizer() *discretizer.Discretizer {
	return q.discretizer
}
