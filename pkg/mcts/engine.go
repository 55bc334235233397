package mcts

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/kurobane-go/gozen/pkg/cache"
	"github.com/kurobane-go/gozen/pkg/game"
)

// Engine owns one search: a root node, the parameters governing it, the
// board state the root represents, and the collaborators (evaluator,
// cache, stop-condition limiter) the playout loop consults on every
// descent. It is built fresh per search the way the teacher's MCTS type
// is reset between moves, rather than mutated in place across games.
type Engine struct {
	id        uuid.UUID // correlates this search's log lines across goroutines
	root      *Node
	params    *Parameters
	evaluator game.Evaluator
	cache     *cache.EvalCache
	avoid     game.AvoidFunc

	limiter  *Limiter
	listener StatsListener

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewEngine builds a search rooted at board's current position. When
// evalCache is non-nil, the evaluator is wrapped so repeated or raced
// positions share one network call.
func NewEngine(board game.Board, evaluator game.Evaluator, evalCache *cache.EvalCache, opts ...Option) *Engine {
	params := NewParameters(opts...)
	const approxNodeSize = 256

	wrapped := evaluator
	if evalCache != nil {
		wrapped = cache.NewCachingEvaluator(evaluator, evalCache)
	}

	root := NewRootNode()
	root.setParams(params)

	return &Engine{
		id:        uuid.New(),
		root:      root,
		params:    params,
		evaluator: wrapped,
		cache:     evalCache,
		limiter:   NewLimiter(approxNodeSize),
		rng:       defaultRand(),
	}
}

func (e *Engine) SetLimits(limits *Limits)      { e.limiter.SetLimits(limits) }
func (e *Engine) SetAvoidFunc(f game.AvoidFunc) { e.avoid = f }
func (e *Engine) Root() *Node                   { return e.root }
func (e *Engine) Parameters() *Parameters       { return e.params }

// ID identifies this search instance in log output, so concurrent
// searches sharing the package logger can be told apart.
func (e *Engine) ID() uuid.UUID { return e.id }

// AttachListener installs the progress-reporting callback set.
func (e *Engine) AttachListener(l StatsListener) { e.listener = l }

func (e *Engine) nextRand() *rand.Rand {
	// rand.Rand is not safe for concurrent use; the engine keeps exactly
	// one, draws from it only behind a mutex, and hands each caller a
	// fresh generator seeded from those draws, so no two playout
	// goroutines share a generator.
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return rand.New(rand.NewPCG(e.rng.Uint64(), e.rng.Uint64()))
}

// Search drives the playout loop to completion, honoring the configured
// Limits, including Limits.NThreads worth of concurrent workers, and returns
// the best move by LCB once stopped.
func (e *Engine) Search(ctx context.Context, board game.Board) (int, error) {
	e.limiter.SetContext(ctx)
	e.limiter.Reset()

	if err := e.root.PrepareRootNode(ctx, board, e.evaluator, e.avoid, e.nextRand()); err != nil {
		return game.NullVertex, err
	}

	threads := maxInt(1, e.limiter.Limits().NThreads)
	var wg sync.WaitGroup
	for t := 0; t < threads; t++ {
		wg.Add(1)
		go func(threadID int) {
			defer wg.Done()
			e.workerLoop(ctx, board, threadID)
		}(t)
	}
	wg.Wait()

	nodes, _ := e.root.ComputeNodeCount()
	e.limiter.EvaluateStopReason(uint32(nodes), uint32(e.maxDepthSeen()), uint32(e.root.Visits()))

	if e.listener.onStop != nil {
		e.listener.onStop(e.snapshot())
	}

	best := e.root.GetBestMove(board.ToMove(), e.nextRand())
	if best == nil {
		return game.Pass, nil
	}
	return best.Vertex(), nil
}

func (e *Engine) workerLoop(ctx context.Context, rootBoard game.Board, threadID int) {
	for {
		nodes, _ := e.root.ComputeNodeCount()
		if !e.limiter.Ok(uint32(nodes), uint32(e.maxDepthSeen()), uint32(e.root.Visits())) {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		board := rootBoard.Clone()
		if err := e.playout(ctx, board); err != nil {
			Logger.Warn().Err(err).Str("search_id", e.id.String()).Msg("playout failed")
			return
		}

		if threadID == mainThreadID && e.listener.onCycle != nil {
			e.listener.invokeCycle(e.root.Visits(), func() ListenerStats { return e.snapshot() })
		}
	}
}

// playoutFrame records one step of a playout's descent path, so Backup can
// walk it in reverse without parent back-pointers stored in the tree.
type playoutFrame struct {
	node  *Node
	color game.Color
}

// playout runs one Selection -> Expansion -> Backup cycle starting from
// the root and mutates board in lockstep with the path taken, so the
// evaluator always sees the position the leaf node represents.
func (e *Engine) playout(ctx context.Context, board game.Board) error {
	var path []playoutFrame

	cur := e.root
	color := board.ToMove()
	isRoot := true

	for {
		cur.IncrementThreads()
		path = append(path, playoutFrame{node: cur, color: color})

		if !cur.HaveChildren() {
			if cur.Expandable() {
				if cur.AcquireExpanding() {
					_, err := cur.ExpandChildren(ctx, board, e.evaluator, e.avoid, isRoot)
					if err != nil {
						e.unwindVirtualLoss(path)
						return err
					}
				} else {
					cur.WaitExpanded()
				}
			} else {
				cur.WaitExpanded()
			}
			break
		}

		var edge *Edge
		switch {
		case e.params.Gumbel && isRoot && cur.ShouldApplyGumbel():
			edge = cur.GumbelSelectChild(e.nextRand(), color, false)
		case e.params.UseRollout:
			edge = cur.UctSelectChild(color, board)
		default:
			edge = cur.PuctSelectChild(color, isRoot)
		}
		if edge == nil {
			break
		}
		child := edge.Inflate(e.params)
		if err := board.PlayMove(edge.Vertex()); err != nil {
			e.unwindVirtualLoss(path)
			return err
		}

		cur = child
		color = color.Opponent()
		isRoot = false
	}

	evals := e.evalsFromLeaf(cur)
	for _, f := range path {
		f.node.Update(e.evalsInPerspective(evals, f.color, color))
		f.node.DecrementThreads()
	}
	return nil
}

func (e *Engine) unwindVirtualLoss(path []playoutFrame) {
	for _, f := range path {
		f.node.DecrementThreads()
	}
}

// evalsFromLeaf reads the freshly expanded (or terminal) leaf's own
// network evaluation back out in Black's perspective, so Update along the
// path can be fed a single canonical record.
func (e *Engine) evalsFromLeaf(leaf *Node) *NodeEvals {
	return &NodeEvals{
		BlackWL:         leaf.GetNetWL(game.Black),
		Draw:            leaf.GetDraw(),
		BlackFinalScore: leaf.GetFinalScore(game.Black),
		BlackOwnership:  leaf.GetOwnership(game.Black),
	}
}

// evalsInPerspective is a no-op today since the accumulators are always
// kept in Black's perspective; it exists as the single seam a future
// rollout-mixing strategy would hook into without touching playout's
// control flow.
func (e *Engine) evalsInPerspective(evals *NodeEvals, nodeColor, leafColor game.Color) *NodeEvals {
	return evals
}

func (e *Engine) maxDepthSeen() int {
	// Search depth is not tracked: this always reports 0, so a Limits
	// depth bound of 1 or more never stops a search.
	return 0
}

// snapshot builds a ListenerStats record from current root state.
func (e *Engine) snapshot() ListenerStats {
	return ListenerStats{
		Visits:     e.root.Visits(),
		TimeMs:     int(e.limiter.Elapsed()),
		StopReason: e.limiter.StopReason(),
	}
}
