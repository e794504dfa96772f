package simulator

import (
	"context"

	"github.com/buildbarn/bb-pagesim/pkg/eviction"
	"github.com/buildbarn/bb-pagesim/pkg/frames"
	"github.com/buildbarn/bb-pagesim/pkg/reference"
	"github.com/buildbarn/bb-pagesim/pkg/util"

	"golang.org/x/sync/errgroup"
)

// ComparedPolicies are the policies that a Comparer runs, in the order
// in which they are reported.
var ComparedPolicies = []eviction.Policy{
	eviction.FirstInFirstOut,
	eviction.LeastRecentlyUsed,
	eviction.Predictive,
}

// Order in which policies are preferred when they yield the same
// number of faults.
var recommendationPreference = []eviction.Policy{
	eviction.Predictive,
	eviction.LeastRecentlyUsed,
	eviction.FirstInFirstOut,
}

// TieBreakRule describes how a Comparer picks its recommendation. It is
// included in responses, so that clients don't need to guess.
const TieBreakRule = "The policy with the strictly lowest number of faults is recommended. On an exact tie, predictive is preferred over lru, which is preferred over fifo."

// Comparer replays the same reference sequence against multiple
// replacement policies and recommends one of them.
type Comparer interface {
	Compare(ctx context.Context, sequence reference.Sequence, capacity int) (*ComparisonResult, error)
}

type runnerComparer struct {
	runner Runner
}

// NewComparer creates a Comparer that performs a run for each of the
// ComparedPolicies in parallel. All runs share the same read-only
// reference sequence, but have their own frame pool.
func NewComparer(runner Runner) Comparer {
	return &runnerComparer{
		runner: runner,
	}
}

func (c *runnerComparer) Compare(ctx context.Context, sequence reference.Sequence, capacity int) (*ComparisonResult, error) {
	// Validate the capacity up front, so that the error does not
	// depend on which of the runs fails first.
	if err := frames.ValidateCapacity(capacity); err != nil {
		return nil, err
	}

	runs := make([]*RunResult, len(ComparedPolicies))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, policy := range ComparedPolicies {
		group.Go(func() error {
			run, err := c.runner.Run(groupCtx, sequence, capacity, policy)
			if err != nil {
				return util.StatusWrapf(err, "Policy %#v", policy.String())
			}
			runs[i] = run
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return &ComparisonResult{
		Runs:           runs,
		Recommendation: recommend(runs),
	}, nil
}

// recommend applies TieBreakRule.
func recommend(runs []*RunResult) eviction.Policy {
	var best *RunResult
	for _, policy := range recommendationPreference {
		for _, run := range runs {
			if run.Policy == policy && (best == nil || run.Faults < best.Faults) {
				best = run
			}
		}
	}
	return best.Policy
}
