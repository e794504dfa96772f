package eviction

import (
	"math"
)

// neverUsedAgain is the position assigned to values that don't occur
// anywhere in the remainder of the reference sequence.
const neverUsedAgain = math.MaxInt

type beladySet[T comparable] struct {
	sequence []T
	compare  func(a, b T) int

	// For every position in the sequence, the position at which the
	// same value is referenced next.
	nextUse  []int
	position int

	// Elements in insertion order, and the position at which each
	// of them is referenced next.
	elements      []T
	elementsIndex map[T]int
}

// NewBeladySet creates a new cache replacement set that implements
// Bélády's optimal algorithm, removing the element whose next use lies
// farthest in the future. Elements that are never used again are
// removed first. Ties between those are broken by removing the element
// that sorts first according to the provided comparison function.
//
// This policy is not causal. It must be provided with the full
// reference sequence up front, and Insert() and Touch() must be called
// exactly once for each reference, in sequence order.
//
// https://en.wikipedia.org/wiki/Cache_replacement_policies#Bélády's_algorithm
func NewBeladySet[T comparable](sequence []T, compare func(a, b T) int) Set[T] {
	nextUse := make([]int, len(sequence))
	lastSeen := make(map[T]int, len(sequence))
	for i := len(sequence) - 1; i >= 0; i-- {
		if j, ok := lastSeen[sequence[i]]; ok {
			nextUse[i] = j
		} else {
			nextUse[i] = neverUsedAgain
		}
		lastSeen[sequence[i]] = i
	}
	return &beladySet[T]{
		sequence:      sequence,
		compare:       compare,
		nextUse:       nextUse,
		elementsIndex: map[T]int{},
	}
}

// advance consumes the next reference in the sequence, returning the
// position at which the referenced value is used after that.
func (s *beladySet[T]) advance(value T) int {
	if s.position >= len(s.sequence) {
		panic("Attempted to reference more values than present in the sequence")
	}
	if s.sequence[s.position] != value {
		panic("Attempted to reference a value out of sequence order")
	}
	n := s.nextUse[s.position]
	s.position++
	return n
}

func (s *beladySet[T]) Insert(value T) {
	if _, ok := s.elementsIndex[value]; ok {
		panic("Attempted to insert value into cache replacement set twice")
	}
	s.elementsIndex[value] = s.advance(value)
	s.elements = append(s.elements, value)
}

func (s *beladySet[T]) Touch(value T) {
	if _, ok := s.elementsIndex[value]; !ok {
		panic("Attempted to touch value that is not in the cache replacement set")
	}
	s.elementsIndex[value] = s.advance(value)
}

func (s *beladySet[T]) victim() int {
	best := 0
	for i := 1; i < len(s.elements); i++ {
		candidate, current := s.elements[i], s.elements[best]
		candidateNextUse, currentNextUse := s.elementsIndex[candidate], s.elementsIndex[current]
		if candidateNextUse > currentNextUse ||
			(candidateNextUse == currentNextUse && s.compare(candidate, current) < 0) {
			best = i
		}
	}
	return best
}

func (s *beladySet[T]) Peek() T {
	return s.elements[s.victim()]
}

func (s *beladySet[T]) Remove() {
	i := s.victim()
	delete(s.elementsIndex, s.elements[i])
	s.elements = append(s.elements[:i], s.elements[i+1:]...)
}
