// Package policy implements tabular policies
package policy

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/wormrl/agent/tabular/qtable"
	"github.com/samuelfneumann/wormrl/utils/matutils"
)

// Sampler samples random action indices. Environments are Samplers.
type Sampler interface {
	Sample() int
}

// EGreedy implements an ε-greedy policy over a QTable. With probability
// 1 - ε the greedy action, the action of highest value in the current
// state, is selected. Ties are broken in favour of the lowest action
// index. With probability ε a random action is drawn from the Sampler.
type EGreedy struct {
	table   *qtable.QTable
	sampler Sampler
	epsilon float64
	rng     *rand.Rand
	eval    bool
}

// NewEGreedy returns a new EGreedy policy selecting actions from table
// and exploring with sampler
func NewEGreedy(e float64, table *qtable.QTable, sampler Sampler,
	seed uint64) *EGreedy {
	return &EGreedy{
		table:   table,
		sampler: sampler,
		epsilon: e,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// SelectAction selects an action in the discretized state from an
// ε-greedy policy. A uniform random number u in [0, 1) is drawn and the
// greedy action is selected if u > ε. In evaluation mode the greedy
// action is always selected.
func (p *EGreedy) SelectAction(state []int) (int, error) {
	if !p.eval && p.rng.Float64() <= p.epsilon {
		return p.sampler.Sample(), nil
	}
	return p.Greedy(state)
}

// Greedy returns the greedy action in the discretized state
func (p *EGreedy) Greedy(state []int) (int, error) {
	values, err := p.table.Row(state)
	if err != nil {
		return 0, fmt.Errorf("greedy: %w", err)
	}
	return matutils.MaxVec(values), nil
}

// SetEpsilon sets the probability of selecting a random action
func (p *EGreedy) SetEpsilon(e float64) {
	p.epsilon = e
}

// Epsilon returns the probability of selecting a random action
func (p *EGreedy) Epsilon() float64 {
	return p.epsilon
}

// Eval sets the policy to evaluation mode, in which only greedy actions
// are selected
func (p *EGreedy) Eval() { p.eval = true }

// Train sets the policy to training mode
func (p *EGreedy) Train() { p.eval = false }

// IsEval returns whether the policy is in evaluation mode
func (p *EGreedy) IsEval() bool { return p.eval }
