package mcts

import (
	"context"
	"fmt"
	"sort"

	"github.com/kurobane-go/gozen/pkg/game"
)

// candidate is a legal move paired with its raw prior before renormalization.
type candidate struct {
	vertex int
	policy float32
}

// ExpandChildren is the one-shot expansion procedure. The caller must have
// already won AcquireExpanding on n; ExpandChildren always resolves the
// state machine, either to Expanded (success) or back to Initial
// (evaluator failure, so a later visitor can retry). It returns the
// node's own network evaluation in Black's perspective, for the caller to
// fold into Update on every node along the path — ExpandChildren itself
// never touches n's visit accumulators, only its one-shot children list
// and the raw netBlackWL baseline GetNetWL reads for FPU.
//
// The board passed in is owned by the caller for the duration of the call
// and must reflect the position n represents.
func (n *Node) ExpandChildren(ctx context.Context, board game.Board, evaluator game.Evaluator, avoid game.AvoidFunc, isRoot bool) (*NodeEvals, error) {
	color := board.ToMove()

	result, err := n.evaluate(ctx, board, evaluator, isRoot)
	if err != nil {
		n.ExpandCancel()
		return nil, fmt.Errorf("%w: %w", ErrEvaluatorFailure, err)
	}

	if board.Passes() >= 2 {
		n.setTerminal(color)
		evals := n.applyNetResult(board, result, color)
		n.ExpandDone()
		return evals, nil
	}

	candidates := n.gatherCandidates(board, result, color, avoid)
	candidates = n.pruneSymmetries(board, candidates, color)
	n.linkNodeList(candidates)

	n.color = color
	evals := n.applyNetResult(board, result, color)
	n.ExpandDone()
	return evals, nil
}

func (n *Node) evaluate(ctx context.Context, board game.Board, evaluator game.Evaluator, isRoot bool) (game.NetworkResult, error) {
	ensemble := game.EnsembleNone
	temperature := float32(1.0)
	if isRoot && n.params != nil {
		temperature = n.params.RootPolicyTemp
	} else if n.params != nil {
		temperature = n.params.PolicyTemp
	}
	if evaluator == nil || (n.params != nil && n.params.NoDCNN && !(isRoot && n.params.RootDCNN)) {
		return n.noDCNNResult(board), nil
	}
	return evaluator.Evaluate(ctx, board, ensemble, temperature)
}

// noDCNNResult builds a stand-in network result from the board's classical
// gammas policy, used when the DCNN collaborator is disabled.
func (n *Node) noDCNNResult(board game.Board) game.NetworkResult {
	gammas := board.GammasPolicy(board.ToMove())
	// Give the pass move a little value so a position with no legal board
	// moves left still has somewhere to put its policy mass.
	passProbability := float32(0.1) / float32(maxInt(board.NumIntersections(), 1))
	return game.NetworkResult{
		Probabilities:   gammas,
		PassProbability: passProbability,
		WDL:             [3]float32{0.5, 0, 0.5},
		WDLWinrate:      0.5,
		STMWinrate:      0.5,
		FinalScore:      0,
		BoardSize:       board.BoardSize(),
		Komi:            board.Komi(),
	}
}

func (n *Node) gatherCandidates(board game.Board, result game.NetworkResult, color game.Color, avoid game.AvoidFunc) []candidate {
	legal := board.LegalMoves(color, avoid)
	out := make([]candidate, 0, len(legal)+1)

	var total float32
	for _, v := range legal {
		p := float32(0)
		if idx := board.Index(v); idx >= 0 && idx < len(result.Probabilities) {
			p = result.Probabilities[idx]
		}
		out = append(out, candidate{vertex: v, policy: p})
		total += p
	}

	// Pass only joins the candidate list once few enough board moves survive
	// legality filtering — with most of the board still playable, passing
	// is essentially never correct and not worth a child slot.
	includePass := len(out) == 0 || len(out) <= 3*board.NumIntersections()/4
	if includePass {
		out = append(out, candidate{vertex: game.Pass, policy: result.PassProbability})
		total += result.PassProbability
	}

	if total < 1e-8 {
		uniform := float32(1.0) / float32(maxInt(len(out), 1))
		for i := range out {
			out[i].policy = uniform
		}
	} else {
		for i := range out {
			out[i].policy /= total
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].policy > out[j].policy })
	return out
}

// pruneSymmetries drops candidates that are symmetry-equivalent to one
// already kept, when SymmPruning is enabled. gatherCandidates has already
// sorted by policy descending, so the representative kept for each
// symmetry class is always the highest-policy member of that class.
func (n *Node) pruneSymmetries(board game.Board, candidates []candidate, color game.Color) []candidate {
	if n.params == nil || !n.params.SymmPruning {
		return candidates
	}

	seen := make(map[uint64]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if c.vertex == game.Pass {
			out = append(out, c)
			continue
		}
		fork := board.Clone()
		if err := fork.PlayMove(c.vertex); err != nil {
			out = append(out, c)
			continue
		}
		minHash := fork.ComputeSymmetryHash(identitySymmetry)
		for s := 1; s < numSymmetries; s++ {
			if sh := fork.ComputeSymmetryHash(s); sh < minHash {
				minHash = sh
			}
		}
		if seen[minHash] {
			continue
		}
		seen[minHash] = true
		out = append(out, c)
	}
	return out
}

// linkNodeList installs the uninflated Edge slots. This is the single
// publication point for n.children: after this call and ExpandDone,
// n.children is read-only for the lifetime of the node.
func (n *Node) linkNodeList(candidates []candidate) {
	children := make([]Edge, len(candidates))
	for i, c := range candidates {
		children[i] = newEdge(c.vertex, c.policy)
	}
	n.children = children
}

func (n *Node) setTerminal(color game.Color) {
	n.color = game.Invalid
	n.children = nil
}

// applyNetResult records the node's raw network evaluation for GetNetWL's
// FPU baseline and returns it as a NodeEvals for the caller to fold into
// Update along the whole backup path, including n itself. It never calls
// Update or touches avgBlackOwnership directly — n has zero visits at
// this point, and the backup walk in the caller is the only writer.
func (n *Node) applyNetResult(board game.Board, result game.NetworkResult, color game.Color) *NodeEvals {
	wl := float64(result.STMWinrate)
	if n.params != nil && !n.params.UseSTMWinrate {
		wl = (float64(result.WDL[0]) - float64(result.WDL[2]) + 1) / 2
	}
	blackWL := wl
	blackScore := float64(result.FinalScore)
	if color == game.White {
		blackWL = 1.0 - blackWL
		blackScore = -blackScore
	}
	n.netBlackWL = blackWL
	n.netDraw = float64(result.WDL[1])
	n.netBlackFS = blackScore

	var ownership []float64
	if len(result.Ownership) > 0 {
		ownership = make([]float64, len(result.Ownership))
		for i, v := range result.Ownership {
			fv := float64(v)
			if color == game.White {
				fv = -fv
			}
			ownership[i] = fv
		}
	}
	n.netBlackOwnership = ownership

	return &NodeEvals{
		BlackWL:         blackWL,
		Draw:            float64(result.WDL[1]),
		BlackFinalScore: blackScore,
		BlackOwnership:  ownership,
	}
}
