package reference

import (
	"strconv"

	"github.com/buildbarn/bb-pagesim/pkg/random"
	"github.com/buildbarn/bb-pagesim/pkg/util"

	"google.golang.org/grpc/codes"
)

// GeneratorOptions controls the shape of synthetic workloads.
type GeneratorOptions struct {
	// Number of references to generate.
	Length int
	// Number of distinct pages. Pages are numbered [0, Pages).
	Pages int
	// Probability in range [0.0, 1.0] that a reference is drawn from
	// the working set instead of from all pages.
	Locality float64
	// Number of most recently referenced pages that make up the
	// working set.
	WorkingSetSize int
}

// GenerateSequence creates a synthetic reference sequence with integer
// page identifiers. Workloads with a high locality repeatedly touch a
// small working set, which is where LRU tends to outperform FIFO.
func GenerateSequence(generator random.SingleThreadedGenerator, options GeneratorOptions) (Sequence, error) {
	if options.Length < 0 {
		return Sequence{}, util.KindErrorf(codes.InvalidArgument, util.ErrorKindMalformedInput, "Sequence length must be non-negative, while %d was provided", options.Length)
	}
	if options.Pages <= 0 {
		return Sequence{}, util.KindErrorf(codes.InvalidArgument, util.ErrorKindMalformedInput, "Number of pages must be positive, while %d was provided", options.Pages)
	}
	if options.Locality < 0 || options.Locality > 1 {
		return Sequence{}, util.KindErrorf(codes.InvalidArgument, util.ErrorKindMalformedInput, "Locality must be in range [0, 1], while %g was provided", options.Locality)
	}
	workingSetSize := options.WorkingSetSize
	if workingSetSize <= 0 {
		workingSetSize = 1
	}

	// Ring of the most recently referenced distinct pages.
	recent := make([]int, 0, workingSetSize)
	next := 0
	pages := make([]PageID, 0, options.Length)
	for len(pages) < options.Length {
		var page int
		if len(recent) > 0 && generator.Float64() < options.Locality {
			page = recent[generator.IntN(len(recent))]
		} else {
			page = generator.IntN(options.Pages)
			known := false
			for _, p := range recent {
				if p == page {
					known = true
					break
				}
			}
			if !known {
				if len(recent) < workingSetSize {
					recent = append(recent, page)
				} else {
					recent[next] = page
					next = (next + 1) % workingSetSize
				}
			}
		}
		pages = append(pages, PageID(strconv.Itoa(page)))
	}
	return Sequence{pages: pages}, nil
}
