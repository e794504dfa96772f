package simulator

import (
	"context"
	"strconv"
	"strings"

	"github.com/buildbarn/bb-pagesim/pkg/eviction"
	"github.com/buildbarn/bb-pagesim/pkg/reference"
	"github.com/buildbarn/bb-pagesim/pkg/util"
	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"
)

type cachedRun struct {
	key    string
	result *RunResult
}

type cachingRunner struct {
	base  Runner
	cache *ristretto.Cache[uint64, *cachedRun]
}

// NewCachingRunner creates a decorator for Runner that keeps the
// results of recent runs in memory, so that identical requests don't
// need to be simulated again. The size of the cache is expressed in
// the total number of steps of all cached results.
//
// Because RunResults are immutable, cached results are returned to
// callers without copying them. Failed runs are not cached.
func NewCachingRunner(base Runner, maximumSteps int64) (Runner, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, *cachedRun]{
		// Ten counters per expected entry, assuming results
		// consist of a hundred steps on average.
		NumCounters:        max(maximumSteps/10, 100),
		MaxCost:            maximumSteps,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, util.StatusWrap(err, "Failed to create result cache")
	}
	return &cachingRunner{
		base:  base,
		cache: cache,
	}, nil
}

// getCacheKey returns a key that uniquely identifies a run. Pages are
// length-prefixed, as opaque identifiers may contain any byte.
func getCacheKey(sequence reference.Sequence, capacity int, policy eviction.Policy) string {
	var sb strings.Builder
	sb.WriteString(policy.String())
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(capacity))
	for i := 0; i < sequence.Len(); i++ {
		page := sequence.At(i)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(len(page)))
		sb.WriteByte(':')
		sb.WriteString(string(page))
	}
	return sb.String()
}

func (r *cachingRunner) Run(ctx context.Context, sequence reference.Sequence, capacity int, policy eviction.Policy) (*RunResult, error) {
	key := getCacheKey(sequence, capacity, policy)
	hash := xxhash.Sum64String(key)
	// Hashes may collide, so compare the full key as well.
	if cached, ok := r.cache.Get(hash); ok && cached.key == key {
		return cached.result, nil
	}

	result, err := r.base.Run(ctx, sequence, capacity, policy)
	if err != nil {
		return nil, err
	}
	if r.cache.Set(hash, &cachedRun{key: key, result: result}, int64(len(result.Steps))+1) {
		// Sets are applied asynchronously. Wait for it to
		// complete, so that subsequent identical requests are
		// guaranteed to observe it.
		r.cache.Wait()
	}
	return result, nil
}
