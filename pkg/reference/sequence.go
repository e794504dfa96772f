package reference

import (
	"strings"
)

// Sequence of page references, in the order in which a workload
// issues them. Sequences are immutable. Accessors that return slices
// return copies.
type Sequence struct {
	pages []PageID
}

// NewSequence creates a Sequence that contains a copy of the provided
// page identifiers.
func NewSequence(pages ...PageID) Sequence {
	return Sequence{pages: append([]PageID(nil), pages...)}
}

// Len returns the number of references in the sequence.
func (s Sequence) Len() int {
	return len(s.pages)
}

// At returns the page referenced at a given position.
func (s Sequence) At(i int) PageID {
	return s.pages[i]
}

// Pages returns a copy of the page identifiers in the sequence.
func (s Sequence) Pages() []PageID {
	return append([]PageID(nil), s.pages...)
}

// Join the canonical textual forms of all references in the sequence.
// Parsing the output with the same delimiter yields the same sequence.
func (s Sequence) Join(delimiter string) string {
	var sb strings.Builder
	for i, page := range s.pages {
		if i > 0 {
			sb.WriteString(delimiter)
		}
		sb.WriteString(string(page))
	}
	return sb.String()
}
