package mcts

import (
	"sync"
	"sync/atomic"

	"github.com/kurobane-go/gozen/pkg/game"
)

// Node represents a game position reachable by a sequence of moves from a
// root. The tree is a strict ownership hierarchy: an Edge exclusively owns
// its inflated Node, a Node exclusively owns its Children. There are no
// parent back-pointers — Backup walks the path a descending goroutine
// recorded on its own stack, not a link stored in the tree.
type Node struct {
	vertex int16
	policy float32
	color  game.Color

	visits atomic.Int64

	accBlackWL atomicFloat64
	accDraw    atomicFloat64
	accBlackFS atomicFloat64

	squaredEvalDiff atomicFloat64 // Welford running M2

	ownershipMu sync.Mutex
	avgBlackOwnership []float64 // per-intersection running mean, guarded by ownershipMu

	statusVal status
	expandVal expandState

	runningThreads atomic.Int32

	scoreBonus float32 // small bias added to final-score utility, set before the tree is shared

	// Raw network outputs recorded once at expand time, in Black's
	// perspective. These back GetDraw, GetFinalScore and GetOwnership
	// whenever visits is still zero — the brief window between ExpandDone
	// publishing and the expanding goroutine's own Backup call reaching this
	// node — so a racing reader never observes a false zero just because
	// nobody has backed up yet. GetNetWL always reads netBlackWL; GetWL does
	// not, and reports 0.5 before the first visit.
	netBlackWL        float64
	netDraw           float64
	netBlackFS        float64
	netBlackOwnership []float64

	children []Edge // sorted by policy descending once populated; immutable after expand

	params *Parameters
}

func newNode(vertex int16, policy float32) *Node {
	return &Node{
		vertex: vertex,
		policy: policy,
		color:  game.Invalid,
	}
}

// NewRootNode constructs a fresh, unexpanded root.
func NewRootNode() *Node {
	n := newNode(int16(game.NullVertex), 1.0)
	return n
}

func (n *Node) setParams(p *Parameters) { n.params = p }

func (n *Node) Vertex() int      { return int(n.vertex) }
func (n *Node) Policy() float32  { return n.policy }
func (n *Node) Color() game.Color { return n.color }

func (n *Node) SetPolicy(p float32) { n.policy = p }

func (n *Node) Visits() int64 { return n.visits.Load() }

func (n *Node) setVisits(v int64) { n.visits.Store(v) }

// Children returns the ordered, immutable-after-expand child slots.
func (n *Node) Children() []Edge { return n.children }

func (n *Node) HaveChildren() bool { return n.color != game.Invalid }

// --- expand state machine ---

// AcquireExpanding is a CAS from Initial to Expanding. Exactly one caller
// wins; everyone else observes Expanding and either skips (selectors) or
// spins (WaitExpanded).
func (n *Node) AcquireExpanding() bool {
	return atomic.CompareAndSwapInt32((*int32)(&n.expandVal), int32(stateInitial), int32(stateExpanding))
}

// ExpandDone publishes the populated children list with release ordering.
func (n *Node) ExpandDone() {
	atomic.StoreInt32((*int32)(&n.expandVal), int32(stateExpanded))
}

// ExpandCancel reverts a failed expansion attempt so another goroutine may
// retry. Used when the evaluator collaborator fails.
func (n *Node) ExpandCancel() {
	atomic.StoreInt32((*int32)(&n.expandVal), int32(stateInitial))
}

func (n *Node) Expandable() bool {
	return expandState(atomic.LoadInt32((*int32)(&n.expandVal))) == stateInitial
}

func (n *Node) IsExpanding() bool {
	return expandState(atomic.LoadInt32((*int32)(&n.expandVal))) == stateExpanding
}

func (n *Node) IsExpanded() bool {
	return expandState(atomic.LoadInt32((*int32)(&n.expandVal))) == stateExpanded
}

// WaitExpanded yields until expansion publishes a fully populated children
// list. This is the one genuinely blocking suspension point inside the
// core's selection path.
func (n *Node) WaitExpanded() {
	for !n.IsExpanded() {
		yieldToScheduler()
	}
}

// --- status ---

func (n *Node) SetActive(active bool) {
	if n.IsValid() {
		if active {
			atomic.StoreInt32((*int32)(&n.statusVal), int32(statusActive))
		} else {
			atomic.StoreInt32((*int32)(&n.statusVal), int32(statusPruned))
		}
	}
}

func (n *Node) Invalidate() {
	if n.IsValid() {
		atomic.StoreInt32((*int32)(&n.statusVal), int32(statusInvalid))
	}
}

func (n *Node) IsPruned() bool {
	return status(atomic.LoadInt32((*int32)(&n.statusVal))) == statusPruned
}

func (n *Node) IsActive() bool {
	return status(atomic.LoadInt32((*int32)(&n.statusVal))) == statusActive
}

func (n *Node) IsValid() bool {
	return status(atomic.LoadInt32((*int32)(&n.statusVal))) != statusInvalid
}

// --- virtual loss / threads ---

func (n *Node) IncrementThreads() { n.runningThreads.Add(1) }
func (n *Node) DecrementThreads() { n.runningThreads.Add(-1) }

func (n *Node) RunningThreads() int32 { return n.runningThreads.Load() }

func (n *Node) VirtualLoss() int64 {
	return int64(VirtualLossCount) * int64(n.runningThreads.Load())
}

// --- evaluation readers ---

// GetNetWL returns the raw network win-rate estimate for color, used as
// the First-Play-Urgency baseline for unvisited children.
func (n *Node) GetNetWL(color game.Color) float64 {
	if color == game.Black {
		return n.netBlackWL
	}
	return 1.0 - n.netBlackWL
}

// GetWL returns the accumulated win-rate for color. If useVirtualLoss is
// set, in-flight selection paths are folded in as a pessimistic bias.
func (n *Node) GetWL(color game.Color, useVirtualLoss bool) float64 {
	var vl int64
	if useVirtualLoss {
		vl = n.VirtualLoss()
	}
	visits := n.Visits() + vl
	if visits <= 0 {
		return 0.5
	}
	acc := n.accBlackWL.Load()
	if color == game.White && useVirtualLoss {
		acc += float64(vl)
	}
	eval := acc / float64(visits)
	if color == game.Black {
		return eval
	}
	return 1.0 - eval
}

func (n *Node) GetDraw() float64 {
	v := n.Visits()
	if v == 0 {
		return n.netDraw
	}
	return n.accDraw.Load() / float64(v)
}

func (n *Node) GetFinalScore(color game.Color) float64 {
	v := n.Visits()
	score := n.netBlackFS
	if v > 0 {
		score = n.accBlackFS.Load() / float64(v)
	}
	if color == game.Black {
		return score
	}
	return -score
}

func (n *Node) SetScoreBonus(v float32) { n.scoreBonus = v }
func (n *Node) ScoreBonus() float32     { return n.scoreBonus }

// GetScoreUtility maps a score lead into a bounded utility via tanh, the
// same shaping used for both PUCT and the LCB best-move criterion.
func (n *Node) GetScoreUtility(color game.Color, div float32, parentScore float64) float64 {
	score := n.GetFinalScore(color) + float64(n.scoreBonus)
	return tanhf(score-parentScore, float64(div))
}

// GetOwnership returns a copy of the running per-intersection ownership
// mean, flipped for White. Before the first Update lands it falls back to
// the raw network ownership recorded at expand time.
func (n *Node) GetOwnership(color game.Color) []float64 {
	n.ownershipMu.Lock()
	src := n.avgBlackOwnership
	if len(src) == 0 {
		src = n.netBlackOwnership
	}
	out := make([]float64, len(src))
	for i, v := range src {
		if color == game.White {
			v = -v
		}
		out[i] = v
	}
	n.ownershipMu.Unlock()
	return out
}

// GetChild looks up and inflates a child edge by vertex, or returns nil.
func (n *Node) GetChild(vertex int) *Node {
	for i := range n.children {
		if n.children[i].Vertex() == vertex {
			return n.children[i].Inflate(n.params)
		}
	}
	return nil
}

func (n *Node) inflateAllChildren() {
	for i := range n.children {
		n.children[i].Inflate(n.params)
	}
}
