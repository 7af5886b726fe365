// Package cooldown implements per-action cooldown timers which penalise
// the repeated use of an action in quick succession
package cooldown

import (
	"fmt"
	"math"
	"time"

	"github.com/samuelfneumann/wormrl/environment/action"
)

// Window is the default cooldown window. Penalties are weighted in the
// same unit (seconds) as the window.
const Window = 100 * time.Second

// Model tracks the last time each action was used. A Model is owned by
// a single environment and is not safe for concurrent use.
type Model struct {
	window   int64 // seconds
	clock    func() time.Time
	lastUsed map[action.Action]time.Time
}

// New returns a new cooldown Model with the argument window. If clock
// is nil, time.Now is used. The window must be at least one second.
func New(window time.Duration, clock func() time.Time) (*Model, error) {
	seconds := int64(window / time.Second)
	if seconds < 1 {
		return nil, fmt.Errorf("new: cooldown window %v must be at least "+
			"one second", window)
	}
	if clock == nil {
		clock = time.Now
	}

	m := &Model{
		window:   seconds,
		clock:    clock,
		lastUsed: make(map[action.Action]time.Time, action.Count),
	}
	m.Reset()

	return m, nil
}

// Reset marks every action as last used at the Unix epoch, so that no
// action is on cooldown
func (m *Model) Reset() {
	for _, a := range action.All() {
		m.lastUsed[a] = time.Unix(0, 0)
	}
}

// Now returns the current time of the Model's clock
func (m *Model) Now() time.Time {
	return m.clock()
}

// LastUsed returns the last time action a was used
func (m *Model) LastUsed(a action.Action) time.Time {
	return m.lastUsed[a]
}

// Penalty returns the cooldown penalty for using action a now and
// records the use. See PenaltyAt.
func (m *Model) Penalty(a action.Action) int {
	return m.PenaltyAt(a, m.clock())
}

// PenaltyAt returns the cooldown penalty for using action a at time now
// and records now as the last use of a. The penalty is
//
//	reward(a) * max(window - (now - lastUsed(a)), 0) / window
//
// with elapsed time measured in whole seconds and integer truncating
// division.
func (m *Model) PenaltyAt(a action.Action, now time.Time) int {
	elapsed := now.Unix() - m.lastUsed[a].Unix()
	effective := m.window - elapsed
	if effective < 0 {
		effective = 0
	}
	m.lastUsed[a] = now

	return int(int64(a.Reward()) * effective / m.window)
}

// Hunger returns a bonus for using an action which has not been used
// for longer than threshold:
//
//	min(elapsed - threshold, 1) * reward(a)
//
// in seconds. Hunger does not record the use of a. A threshold of zero
// or less disables the bonus.
func (m *Model) Hunger(a action.Action, now time.Time,
	threshold time.Duration) float64 {
	if threshold <= 0 {
		return 0
	}

	elapsed := now.Sub(m.lastUsed[a]).Seconds()
	if elapsed <= threshold.Seconds() {
		return 0
	}
	return math.Min(elapsed-threshold.Seconds(), 1) * float64(a.Reward())
}
