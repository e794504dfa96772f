package simulator

import (
	"github.com/buildbarn/bb-pagesim/pkg/eviction"
	"github.com/buildbarn/bb-pagesim/pkg/reference"
)

// Step records how a single reference was handled.
type Step struct {
	// The page that was referenced.
	Page reference.PageID
	// Whether the page was not resident at the time of the reference.
	Fault bool
	// Resident pages after handling the reference, in the display
	// order of the policy.
	Frames []reference.PageID
}

// RunResult is the outcome of replaying a reference sequence against a
// single policy. Results may be shared between callers, and must
// therefore not be modified.
type RunResult struct {
	Policy   eviction.Policy
	Capacity int
	Steps    []Step
	Faults   int
	Hits     int
}

// FaultRate returns the fraction of references that caused a fault, or
// zero if no references were made.
func (r *RunResult) FaultRate() float64 {
	if total := r.Faults + r.Hits; total > 0 {
		return float64(r.Faults) / float64(total)
	}
	return 0
}

// ComparisonResult is the outcome of replaying the same reference
// sequence against multiple policies.
type ComparisonResult struct {
	// Results of the individual runs, in the order of
	// ComparedPolicies.
	Runs []*RunResult
	// The policy that yielded the fewest faults, see TieBreakRule.
	Recommendation eviction.Policy
}

// Run returns the result for a given policy, or nil if the policy was
// not part of the comparison.
func (r *ComparisonResult) Run(policy eviction.Policy) *RunResult {
	for _, run := range r.Runs {
		if run.Policy == policy {
			return run
		}
	}
	return nil
}

// Faults returns the number of faults per policy name.
func (r *ComparisonResult) Faults() map[string]int {
	faults := make(map[string]int, len(r.Runs))
	for _, run := range r.Runs {
		faults[run.Policy.String()] = run.Faults
	}
	return faults
}
