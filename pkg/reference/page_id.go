package reference

import (
	"encoding/json"
	"strconv"
	"strings"
)

// PageID identifies a page that is referenced by a workload. The
// simulator treats identifiers as opaque values that are only compared
// for equality. The textual form is canonical, meaning that two
// references to the same page always carry identical strings.
type PageID string

func (id PageID) integer() (int64, bool) {
	v, err := strconv.ParseInt(string(id), 10, 64)
	return v, err == nil && strconv.FormatInt(v, 10) == string(id)
}

// Compare imposes a total order on page identifiers. It is only used
// to make tie-breaking between eviction candidates deterministic.
// Identifiers in canonical integer form are ordered numerically and
// sort before all other identifiers, which are ordered
// lexicographically.
func Compare(a, b PageID) int {
	av, aIsInteger := a.integer()
	bv, bIsInteger := b.integer()
	switch {
	case aIsInteger && bIsInteger:
		if av < bv {
			return -1
		} else if av > bv {
			return 1
		}
		return 0
	case aIsInteger:
		return -1
	case bIsInteger:
		return 1
	default:
		return strings.Compare(string(a), string(b))
	}
}

// MarshalJSON emits identifiers in canonical integer form as JSON
// numbers, which is what the web frontend expects.
// Other identifiers are emitted as strings.
func (id PageID) MarshalJSON() ([]byte, error) {
	if _, ok := id.integer(); ok {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}
