package cache

import (
	"context"

	"github.com/kurobane-go/gozen/pkg/game"
)

// CachingEvaluator wraps a game.Evaluator with an EvalCache, so that
// repeated positions reached via transposition (or two selection paths
// racing toward the same not-yet-expanded node) only pay for one real
// network forward pass.
type CachingEvaluator struct {
	inner game.Evaluator
	cache *EvalCache
}

// NewCachingEvaluator returns an Evaluator that probes cache before
// delegating to inner, and single-flights concurrent misses on the same
// fingerprint.
func NewCachingEvaluator(inner game.Evaluator, cache *EvalCache) *CachingEvaluator {
	return &CachingEvaluator{inner: inner, cache: cache}
}

func (c *CachingEvaluator) Evaluate(ctx context.Context, state game.Board, ensemble game.Ensemble, temperature float32) (game.NetworkResult, error) {
	fp := NewFingerprint(state, identitySymmetry, ensemble)
	return c.cache.Resolve(ctx, fp, func(ctx context.Context) (game.NetworkResult, error) {
		return c.inner.Evaluate(ctx, state, ensemble, temperature)
	})
}

const identitySymmetry = 0
