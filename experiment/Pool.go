package experiment

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// Pool runs independent experiments concurrently. Experiments in a
// Pool must not share environments or agents.
type Pool struct {
	experiments []Experiment
	limit       int
}

// NewPool returns a new Pool running at most limit experiments at a
// time. A limit below 1 runs all experiments at once.
func NewPool(limit int, e ...Experiment) *Pool {
	return &Pool{experiments: e, limit: limit}
}

// Len returns the number of experiments in the Pool
func (p *Pool) Len() int {
	return len(p.experiments)
}

// Run runs all experiments and returns their summaries, in the order
// the experiments were given. A failing experiment does not stop the
// others; all failures are returned together.
func (p *Pool) Run(ctx context.Context) ([]Summary, error) {
	summaries := make([]Summary, len(p.experiments))

	var (
		g      errgroup.Group
		mu     sync.Mutex
		result *multierror.Error
	)
	if p.limit > 0 {
		g.SetLimit(p.limit)
	}

	for i, e := range p.experiments {
		i, e := i, e
		g.Go(func() error {
			summary, err := e.Run(ctx)
			summaries[i] = summary
			if err != nil {
				mu.Lock()
				result = multierror.Append(result,
					fmt.Errorf("experiment %d: %w", i, err))
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	return summaries, result.ErrorOrNil()
}

// Save saves the tracked data of all experiments
func (p *Pool) Save() error {
	var result *multierror.Error
	for i, e := range p.experiments {
		if err := e.Save(); err != nil {
			result = multierror.Append(result,
				fmt.Errorf("experiment %d: %w", i, err))
		}
	}
	return result.ErrorOrNil()
}
