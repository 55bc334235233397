package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kurobane-go/gozen/internal/testboard"
	"github.com/kurobane-go/gozen/pkg/game"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *EvalCache {
	t.Helper()
	c, err := NewEvalCache(1, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestResolveCachesAcrossIdenticalFingerprints(t *testing.T) {
	c := newTestCache(t)
	board := testboard.NewBoard(5, 7.5)
	fp := NewFingerprint(board, identitySymmetry, game.EnsembleNone)

	var calls atomic.Int64
	compute := func(ctx context.Context) (game.NetworkResult, error) {
		calls.Add(1)
		return game.NetworkResult{STMWinrate: 0.7}, nil
	}

	r1, err := c.Resolve(context.Background(), fp, compute)
	require.NoError(t, err)
	require.Equal(t, float32(0.7), r1.STMWinrate)

	r2, err := c.Resolve(context.Background(), fp, compute)
	require.NoError(t, err)
	require.Equal(t, float32(0.7), r2.STMWinrate)

	require.Equal(t, int64(1), calls.Load())
	hits, misses, inserts := c.Stats()
	require.Equal(t, int64(1), hits)
	require.Equal(t, int64(1), misses)
	require.Equal(t, int64(1), inserts)
}

func TestResolveSingleFlightsConcurrentMisses(t *testing.T) {
	c := newTestCache(t)
	board := testboard.NewBoard(5, 7.5)
	fp := NewFingerprint(board, identitySymmetry, game.EnsembleNone)

	var calls atomic.Int64
	release := make(chan struct{})
	compute := func(ctx context.Context) (game.NetworkResult, error) {
		calls.Add(1)
		<-release
		return game.NetworkResult{STMWinrate: 0.5}, nil
	}

	const racers = 16
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Resolve(context.Background(), fp, compute)
			require.NoError(t, err)
		}()
	}

	close(release)
	wg.Wait()

	require.Equal(t, int64(1), calls.Load())
}

func TestFingerprintDiffersOnSideToMove(t *testing.T) {
	board := testboard.NewBoard(5, 7.5)
	fpBlack := NewFingerprint(board, identitySymmetry, game.EnsembleNone)

	require.NoError(t, board.PlayMove(board.Vertex(2, 2)))
	fpAfterMove := NewFingerprint(board, identitySymmetry, game.EnsembleNone)

	require.NotEqual(t, fpBlack, fpAfterMove)
}

func TestFingerprintStableForIdenticalPosition(t *testing.T) {
	b1 := testboard.NewBoard(5, 7.5)
	b2 := testboard.NewBoard(5, 7.5)
	require.Equal(t,
		NewFingerprint(b1, identitySymmetry, game.EnsembleNone),
		NewFingerprint(b2, identitySymmetry, game.EnsembleNone),
	)
}

func TestCachingEvaluatorDelegatesOnMissAndCachesResult(t *testing.T) {
	c := newTestCache(t)
	board := testboard.NewBoard(5, 7.5)

	var calls atomic.Int64
	inner := evaluatorFunc(func(ctx context.Context, state game.Board, ensemble game.Ensemble, temperature float32) (game.NetworkResult, error) {
		calls.Add(1)
		return game.NetworkResult{STMWinrate: 0.42}, nil
	})

	wrapped := NewCachingEvaluator(inner, c)
	r1, err := wrapped.Evaluate(context.Background(), board, game.EnsembleNone, 1.0)
	require.NoError(t, err)
	r2, err := wrapped.Evaluate(context.Background(), board, game.EnsembleNone, 1.0)
	require.NoError(t, err)

	require.Equal(t, float32(0.42), r1.STMWinrate)
	require.Equal(t, float32(0.42), r2.STMWinrate)
	require.Equal(t, int64(1), calls.Load())
}

func TestResizeAcceptsInsertsAfterShrinking(t *testing.T) {
	c, err := NewEvalCache(4, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	c.Resize(1)

	board := testboard.NewBoard(5, 7.5)
	fp := NewFingerprint(board, identitySymmetry, game.EnsembleNone)
	c.Insert(fp, game.NetworkResult{STMWinrate: 0.3})

	_, _, inserts := c.Stats()
	require.Equal(t, int64(1), inserts)
}

type evaluatorFunc func(ctx context.Context, state game.Board, ensemble game.Ensemble, temperature float32) (game.NetworkResult, error)

func (f evaluatorFunc) Evaluate(ctx context.Context, state game.Board, ensemble game.Ensemble, temperature float32) (game.NetworkResult, error) {
	return f(ctx, state, ensemble, temperature)
}
