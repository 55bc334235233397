package mcts

import "github.com/kurobane-go/gozen/pkg/game"

// Parameters is the read-only configuration block the core consults during
// selection, expansion, and reporting. It is installed on every node via
// edge inflation (Node.setParams) and never mutated mid-search; swap it out
// between searches instead.
type Parameters struct {
	// PUCT exploration curve.
	CpuctInit       float32
	CpuctBase       float32
	CpuctBaseFactor float32

	// Unvisited-child pessimism.
	FpuReduction     float32
	FpuRootReduction float32

	// Draw/score shaping.
	DrawFactor       float32
	ScoreUtilityFactor float32
	ScoreUtilityDiv    float32

	// Best-move selection mixing.
	LcbUtilityFactor float32
	LcbReduction     float32
	CIAlpha          float64 // t-quantile table confidence (two-sided complement probability)

	// Root exploration noise.
	DirichletNoise   bool
	DirichletEpsilon float32
	DirichletInit    float32
	DirichletFactor  float32
	// dirichletBuffer holds the per-vertex noise sample computed at root
	// expansion, indexed by vertex. Sized generously for any supported
	// board.
	dirichletBuffer [game.MaxBoardLen*game.MaxBoardLen + 1]float32

	// Softmax temperature on priors.
	RootPolicyTemp float32
	PolicyTemp     float32

	// Candidate pruning.
	SymmPruning    bool
	FirstPassBonus bool

	// Gumbel-top-k at root.
	Gumbel                    bool
	GumbelPlayouts            int
	GumbelConsideredMoves     int
	CompletedQUtilityFactor   float32

	// Q source.
	UseSTMWinrate bool

	// Evaluator mode.
	NoDCNN     bool
	RootDCNN   bool
	UseRollout bool

	// Evaluation cache size.
	CacheMemoryMiB int
}

// DefaultParameters returns the parameter block the teacher and the
// original engine both ship as sane defaults.
func DefaultParameters() *Parameters {
	return &Parameters{
		CpuctInit:       0.5,
		CpuctBase:       19652,
		CpuctBaseFactor: 1.0,

		FpuReduction:     0.25,
		FpuRootReduction: 0.0,

		DrawFactor:         0.0,
		ScoreUtilityFactor: 0.1,
		ScoreUtilityDiv:    20.0,

		LcbUtilityFactor: 1.0,
		LcbReduction:     0.0,
		CIAlpha:          1.0 - 0.95,

		DirichletNoise:   false,
		DirichletEpsilon: 0.25,
		DirichletInit:    0.03,
		DirichletFactor:  361.0,

		RootPolicyTemp: 1.0,
		PolicyTemp:     1.0,

		SymmPruning:    false,
		FirstPassBonus: false,

		Gumbel:                  false,
		GumbelPlayouts:          100,
		GumbelConsideredMoves:   16,
		CompletedQUtilityFactor: 0.2,

		UseSTMWinrate: true,

		NoDCNN:     false,
		RootDCNN:   true,
		UseRollout: false,

		CacheMemoryMiB: 400,
	}
}

// Option mutates a Parameters block, matching the functional-options idiom
// the teacher uses for its bench arenas and risk-agent uses for its
// searcher.
type Option func(*Parameters)

func WithCpuct(init, base, baseFactor float32) Option {
	return func(p *Parameters) {
		p.CpuctInit, p.CpuctBase, p.CpuctBaseFactor = init, base, baseFactor
	}
}

func WithDirichletNoise(epsilon, init, factor float32) Option {
	return func(p *Parameters) {
		p.DirichletNoise = true
		p.DirichletEpsilon, p.DirichletInit, p.DirichletFactor = epsilon, init, factor
	}
}

func WithGumbel(playouts, consideredMoves int) Option {
	return func(p *Parameters) {
		p.Gumbel = true
		p.GumbelPlayouts = playouts
		p.GumbelConsideredMoves = consideredMoves
	}
}

func WithSymmetryPruning(enabled bool) Option {
	return func(p *Parameters) { p.SymmPruning = enabled }
}

func WithCacheMemoryMiB(mib int) Option {
	return func(p *Parameters) { p.CacheMemoryMiB = mib }
}

func NewParameters(opts ...Option) *Parameters {
	p := DefaultParameters()
	for _, opt := range opts {
		opt(p)
	}
	return p
}
