package aliases

import (
	"github.com/buildbarn/bb-pagesim/pkg/eviction"
	"github.com/buildbarn/bb-pagesim/pkg/reference"
)

// This file contains aliases for instantiations of generic interfaces.
// The only reason this file exists is to allow mockgen to emit mocks
// for them, as it cannot emit mocks for an instantiation directly.

// PageSet is an alias of eviction.Set for page identifiers.
type PageSet = eviction.Set[reference.PageID]
