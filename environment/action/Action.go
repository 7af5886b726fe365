// Package action implements the closed set of actions available to the
// worm and the boundary through which actions are carried out
package action

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Action is a single action of the worm. Actions are a closed
// enumeration; the integer value of an Action is its index into the
// action set.
type Action int

const (
	None Action = iota
	Ping
	Scan
	Infect
	FetchInfo
)

// Count is the number of actions
const Count = int(FetchInfo) + 1

// All returns every action in the canonical enumeration order. A new
// slice is returned on each call.
func All() []Action {
	return []Action{None, Ping, Scan, Infect, FetchInfo}
}

// Valid returns whether index is the index of some action
func Valid(index int) bool {
	return index >= 0 && index < Count
}

// FromIndex returns the action with the argument index. Indices outside
// of the action set map to None.
func FromIndex(index int) Action {
	if !Valid(index) {
		return None
	}
	return Action(index)
}

// Index returns the index of the action in [0, Count)
func (a Action) Index() int {
	return int(a)
}

// Reward returns the nominal reward of taking the action
func (a Action) Reward() int {
	switch a {
	case Ping:
		return 1
	case Scan:
		return 2
	case Infect:
		return 3
	case FetchInfo:
		return 4
	default:
		return 0
	}
}

func (a Action) String() string {
	switch a {
	case None:
		return "NONE"
	case Ping:
		return "PING"
	case Scan:
		return "SCAN"
	case Infect:
		return "INFECT"
	case FetchInfo:
		return "FETCH_INFO"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Sampler draws actions uniformly at random from the action set
type Sampler struct {
	dist distuv.Categorical
}

// NewSampler returns a new Sampler using the random source src
func NewSampler(src rand.Source) *Sampler {
	weights := make([]float64, Count)
	for i := range weights {
		weights[i] = 1.0
	}
	return &Sampler{distuv.NewCategorical(weights, src)}
}

// Sample returns a uniformly random action
func (s *Sampler) Sample() Action {
	return FromIndex(int(s.dist.Rand()))
}
