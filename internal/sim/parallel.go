package sim

import (
	"context"
	"fmt"
	"sync"
)

// Ensemble runs independent simulators side by side. Each simulator owns its
// coil and is only touched by its own goroutine.
type Ensemble struct {
	sims []*Simulator
}

func NewEnsemble(sims ...*Simulator) *Ensemble {
	return &Ensemble{sims: sims}
}

func (e *Ensemble) Add(s *Simulator) { e.sims = append(e.sims, s) }
func (e *Ensemble) Len() int         { return len(e.sims) }

// Run executes every member with the same config. Results are in member
// order; the first error by member order is returned.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(e.sims))
	errs := make([]error, len(e.sims))

	var wg sync.WaitGroup
	for i, s := range e.sims {
		wg.Add(1)
		go func(idx int, s *Simulator) {
			defer wg.Done()
			results[idx], errs[idx] = s.Run(ctx, cfg)
		}(i, s)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
	}

	return results, nil
}
