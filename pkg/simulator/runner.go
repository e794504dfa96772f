package simulator

import (
	"context"

	"github.com/buildbarn/bb-pagesim/pkg/eviction"
	"github.com/buildbarn/bb-pagesim/pkg/frames"
	"github.com/buildbarn/bb-pagesim/pkg/reference"
	"github.com/buildbarn/bb-pagesim/pkg/util"
)

// Runner replays a reference sequence against a frame pool that is
// managed by a single replacement policy.
type Runner interface {
	Run(ctx context.Context, sequence reference.Sequence, capacity int, policy eviction.Policy) (*RunResult, error)
}

// Number of references between checks for cancelation.
const contextCheckInterval = 1 << 12

type localRunner struct {
	markovLookahead  int
	enableSetMetrics bool
}

// NewLocalRunner creates a Runner that performs simulations in the
// calling goroutine. Every run creates its own frame pool and eviction
// set, so that runs may be performed concurrently.
func NewLocalRunner(markovLookahead int, enableSetMetrics bool) Runner {
	return &localRunner{
		markovLookahead:  markovLookahead,
		enableSetMetrics: enableSetMetrics,
	}
}

func (r *localRunner) Run(ctx context.Context, sequence reference.Sequence, capacity int, policy eviction.Policy) (*RunResult, error) {
	pages := sequence.Pages()
	pool, err := frames.NewPool(capacity, len(pages))
	if err != nil {
		return nil, err
	}
	set, err := eviction.NewSetFromConfiguration(policy, eviction.SetOptions[reference.PageID]{
		Sequence:        pages,
		Compare:         reference.Compare,
		MarkovLookahead: r.markovLookahead,
	})
	if err != nil {
		return nil, err
	}
	if r.enableSetMetrics {
		set = eviction.NewMetricsSet(set, policy.String())
	}

	result := &RunResult{
		Policy:   policy,
		Capacity: capacity,
		Steps:    make([]Step, 0, len(pages)),
	}
	for i, page := range pages {
		if i%contextCheckInterval == 0 {
			if err := util.StatusFromContext(ctx); err != nil {
				return nil, err
			}
		}

		fault := !pool.Contains(page)
		if fault {
			if pool.IsFull() {
				victim := set.Peek()
				set.Remove()
				if err := pool.Evict(victim); err != nil {
					return nil, util.StatusWrapf(err, "Reference %d", i+1)
				}
			}
			if err := pool.Admit(page); err != nil {
				return nil, util.StatusWrapf(err, "Reference %d", i+1)
			}
			set.Insert(page)
			result.Faults++
		} else {
			set.Touch(page)
			if policy.ReordersOnTouch() {
				pool.MoveToBack(page)
			}
			result.Hits++
		}
		result.Steps = append(result.Steps, Step{
			Page:   page,
			Fault:  fault,
			Frames: pool.Snapshot(),
		})
	}
	return result, nil
}
