package eviction

// DefaultMarkovLookahead is the number of references that
// NewMarkovSet() predicts if no explicit lookahead is configured.
const DefaultMarkovLookahead = 5

type markovSuccessors[T comparable] struct {
	counts map[T]int
	// Successors in the order in which they were first observed.
	order []T
}

type markovSet[T comparable] struct {
	lookahead int

	// First-order transition counts, learned from the references
	// observed so far.
	transitions map[T]*markovSuccessors[T]
	last        T
	hasLast     bool

	// Elements ordered by last use, oldest first.
	elements []T
	present  map[T]struct{}
}

// NewMarkovSet creates a new cache replacement set that predicts
// future references using a first-order Markov chain. Unlike
// NewBeladySet(), this policy is causal: transitions between values
// are only learned from calls to Insert() and Touch(), in the order in
// which they happen.
//
// When an element needs to be removed, the chain is walked starting at
// the most recently used value, each time following the most frequent
// transition, yielding up to lookahead predicted values. The element
// that is predicted last is removed. Elements that are not predicted at
// all are considered to be needed last. Ties are broken by removing the
// least recently used element.
func NewMarkovSet[T comparable](lookahead int) Set[T] {
	if lookahead <= 0 {
		lookahead = DefaultMarkovLookahead
	}
	return &markovSet[T]{
		lookahead:   lookahead,
		transitions: map[T]*markovSuccessors[T]{},
		present:     map[T]struct{}{},
	}
}

func (s *markovSet[T]) observe(value T) {
	if s.hasLast {
		successors, ok := s.transitions[s.last]
		if !ok {
			successors = &markovSuccessors[T]{counts: map[T]int{}}
			s.transitions[s.last] = successors
		}
		if successors.counts[value] == 0 {
			successors.order = append(successors.order, value)
		}
		successors.counts[value]++
	}
	s.last = value
	s.hasLast = true
}

func (s *markovSet[T]) mostLikelySuccessor(value T) (T, bool) {
	successors, ok := s.transitions[value]
	if !ok {
		var zero T
		return zero, false
	}
	best := successors.order[0]
	for _, candidate := range successors.order[1:] {
		if successors.counts[candidate] > successors.counts[best] {
			best = candidate
		}
	}
	return best, true
}

// predict returns the position at which each value is first expected
// to be referenced again.
func (s *markovSet[T]) predict() map[T]int {
	predicted := map[T]int{}
	if !s.hasLast {
		return predicted
	}
	current := s.last
	for i := 0; i < s.lookahead; i++ {
		next, ok := s.mostLikelySuccessor(current)
		if !ok {
			break
		}
		if _, ok := predicted[next]; !ok {
			predicted[next] = i
		}
		current = next
	}
	return predicted
}

func (s *markovSet[T]) moveToBack(value T) {
	for i, element := range s.elements {
		if element == value {
			copy(s.elements[i:], s.elements[i+1:])
			s.elements[len(s.elements)-1] = value
			return
		}
	}
}

func (s *markovSet[T]) Insert(value T) {
	if _, ok := s.present[value]; ok {
		panic("Attempted to insert value into cache replacement set twice")
	}
	s.observe(value)
	s.elements = append(s.elements, value)
	s.present[value] = struct{}{}
}

func (s *markovSet[T]) Touch(value T) {
	s.observe(value)
	s.moveToBack(value)
}

func (s *markovSet[T]) victim() int {
	predicted := s.predict()
	best, bestRank := 0, -1
	for i, element := range s.elements {
		rank, ok := predicted[element]
		if !ok {
			rank = s.lookahead
		}
		if rank > bestRank {
			best, bestRank = i, rank
		}
	}
	return best
}

func (s *markovSet[T]) Peek() T {
	return s.elements[s.victim()]
}

func (s *markovSet[T]) Remove() {
	i := s.victim()
	delete(s.present, s.elements[i])
	s.elements = append(s.elements[:i], s.elements[i+1:]...)
}
