package eviction

import (
	"strings"

	"github.com/buildbarn/bb-pagesim/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Policy is the closed set of page replacement policies that the
// simulator supports.
type Policy int

const (
	// FirstInFirstOut evicts the page that has been resident longest.
	FirstInFirstOut Policy = iota + 1
	// LeastRecentlyUsed evicts the page that was referenced least
	// recently.
	LeastRecentlyUsed
	// Predictive evicts the page whose next reference lies farthest
	// in the future (Bélády). It requires full lookahead.
	Predictive
	// Markov evicts pages based on a causal Markov chain prediction.
	Markov
)

var policyNames = map[Policy]string{
	FirstInFirstOut:   "fifo",
	LeastRecentlyUsed: "lru",
	Predictive:        "predictive",
	Markov:            "markov",
}

// AllPolicies returns every supported policy.
func AllPolicies() []Policy {
	return []Policy{FirstInFirstOut, LeastRecentlyUsed, Predictive, Markov}
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return "unknown"
}

// ReordersOnTouch returns whether a reference to a resident page
// changes the order in which the policy presents resident pages. This
// is purely cosmetic. FIFO and Bélády's algorithm present pages in
// arrival order, while the others present them in order of recency.
func (p Policy) ReordersOnTouch() bool {
	return p == LeastRecentlyUsed || p == Markov
}

// ParsePolicy converts the case insensitive name of a policy to a
// Policy.
func ParsePolicy(name string) (Policy, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, policy := range AllPolicies() {
		if policyNames[policy] == normalized {
			return policy, nil
		}
	}
	return 0, util.KindErrorf(codes.InvalidArgument, util.ErrorKindUnknownAlgorithm, "Unknown replacement policy %#v", name)
}

// SetOptions contains the parameters that some of the policies need to
// construct a Set.
type SetOptions[T comparable] struct {
	// The full reference sequence. Needed by Predictive.
	Sequence []T
	// Order used to break ties deterministically. Needed by
	// Predictive.
	Compare func(a, b T) int
	// Number of references to predict. Used by Markov.
	MarkovLookahead int
}

// NewSetFromConfiguration creates a new cache replacement set using an
// algorithm specified as a Policy.
func NewSetFromConfiguration[T comparable](policy Policy, options SetOptions[T]) (Set[T], error) {
	switch policy {
	case FirstInFirstOut:
		return NewFIFOSet[T](), nil
	case LeastRecentlyUsed:
		return NewLRUSet[T](), nil
	case Predictive:
		if options.Compare == nil {
			return nil, status.Errorf(codes.InvalidArgument, "Policy %#v requires a comparison function", policy.String())
		}
		return NewBeladySet(options.Sequence, options.Compare), nil
	case Markov:
		return NewMarkovSet[T](options.MarkovLookahead), nil
	default:
		return nil, util.KindErrorf(codes.InvalidArgument, util.ErrorKindUnknownAlgorithm, "Unknown replacement policy %d", int(policy))
	}
}
