package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/kurobane-go/gozen/pkg/game"
)

// entryCost approximates the bytes a cached NetworkResult consumes, used
// to let ristretto's cost-based eviction reason about a MiB budget rather
// than a raw entry count. It is intentionally rough: exact accounting
// would need reflection over every []float32 field for no real benefit.
const entryCost = 2048

// EvalCache is a bounded, concurrent-safe cache of network evaluations,
// fronted by a single-flight group so that concurrent selection paths
// landing on the same not-yet-evaluated position collapse into one
// evaluator call.
type EvalCache struct {
	store  *ristretto.Cache[uint64, game.NetworkResult]
	flight singleflight.Group

	hits    atomic.Int64
	misses  atomic.Int64
	inserts atomic.Int64

	logger zerolog.Logger
}

// NewEvalCache builds a cache bounded to roughly mib mebibytes, following
// ristretto's recommended NumCounters-to-capacity ratio of 10x the number
// of items the cost budget can hold.
func NewEvalCache(mib int, logger zerolog.Logger) (*EvalCache, error) {
	if mib <= 0 {
		mib = 1
	}
	maxCost := int64(mib) * 1024 * 1024
	approxItems := maxCost / entryCost
	if approxItems < 64 {
		approxItems = 64
	}

	store, err := ristretto.NewCache(&ristretto.Config[uint64, game.NetworkResult]{
		NumCounters: approxItems * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("mcts/cache: building eval cache: %w", err)
	}
	return &EvalCache{store: store, logger: logger}, nil
}

// Probe returns a cached result for fp, reporting whether it was present.
func (c *EvalCache) Probe(fp Fingerprint) (game.NetworkResult, bool) {
	v, ok := c.store.Get(uint64(fp))
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Insert stores a network result under fp, to be evicted under cost
// pressure per ristretto's TinyLFU admission policy. Insert waits for
// ristretto's buffered write to be applied, so a Probe that follows it sees
// the entry unless the admission policy dropped it.
func (c *EvalCache) Insert(fp Fingerprint, result game.NetworkResult) {
	if c.store.Set(uint64(fp), result, entryCost) {
		c.store.Wait()
		c.inserts.Add(1)
	} else {
		c.logger.Debug().Uint64("fingerprint", uint64(fp)).Msg("eval cache rejected insert")
	}
}

// Resolve is the single-flight-guarded evaluation path: a cache hit
// returns immediately; a miss triggers compute, but at most once per
// fingerprint even under concurrent callers racing on the same position.
func (c *EvalCache) Resolve(ctx context.Context, fp Fingerprint, compute func(ctx context.Context) (game.NetworkResult, error)) (game.NetworkResult, error) {
	if v, ok := c.Probe(fp); ok {
		return v, nil
	}

	key := fmt.Sprintf("%d", fp)
	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		if v, ok := c.store.Get(uint64(fp)); ok {
			return v, nil
		}
		result, err := compute(ctx)
		if err != nil {
			return game.NetworkResult{}, err
		}
		c.Insert(fp, result)
		return result, nil
	})
	if err != nil {
		return game.NetworkResult{}, err
	}
	return v.(game.NetworkResult), nil
}

// Clear drops every cached entry, used between unrelated searches that
// share a process (e.g. an arena harness cycling opponents).
func (c *EvalCache) Clear() {
	c.store.Clear()
}

// Resize adjusts the cache's cost budget to roughly mib mebibytes without
// dropping existing entries, for a caller reconfiguring memory limits
// between searches (e.g. a GTP "kgs-rules"-style memory command). Entries
// already over the new budget are evicted by ristretto's own policy as
// new inserts land, not synchronously by this call.
func (c *EvalCache) Resize(mib int) {
	if mib <= 0 {
		mib = 1
	}
	c.store.UpdateMaxCost(int64(mib) * 1024 * 1024)
}

// Close releases the cache's background goroutines.
func (c *EvalCache) Close() {
	c.store.Close()
}

// Stats reports the running hit/miss/insert counters for diagnostics.
func (c *EvalCache) Stats() (hits, misses, inserts int64) {
	return c.hits.Load(), c.misses.Load(), c.inserts.Load()
}
