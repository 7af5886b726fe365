package policy

import "github.com/samuelfneumann/wormrl/agent/tabular/qtable"

// NewGreedy creates a new greedy policy, an EGreedy policy which never
// explores
func NewGreedy(table *qtable.QTable, seed uint64) *EGreedy {
	p := NewEGreedy(0.0, table, nil, seed)
	p.Eval()
	return p
}
