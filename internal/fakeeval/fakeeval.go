// Package fakeeval provides a deterministic stand-in network evaluator for
// tests and the searchdemo CLI: no real policy/value network is part of
// this module, so a uniform-policy, fixed-value evaluator fills the
// game.Evaluator contract end to end.
package fakeeval

import (
	"context"

	"github.com/kurobane-go/gozen/pkg/game"
)

// Evaluator returns a uniform policy over legal-looking intersections and
// a configurable fixed win-rate, so callers can script lopsided or even
// positions without a real network.
type Evaluator struct {
	// Winrate is returned verbatim as STMWinrate for every position.
	Winrate float32
	// FinalScore is returned verbatim as FinalScore for every position.
	FinalScore float32
}

// New returns an evaluator that reports a neutral 50% winrate and zero
// score lead for every position, the simplest useful default.
func New() *Evaluator {
	return &Evaluator{Winrate: 0.5, FinalScore: 0}
}

func (e *Evaluator) Evaluate(ctx context.Context, state game.Board, ensemble game.Ensemble, temperature float32) (game.NetworkResult, error) {
	n := state.NumIntersections()
	probs := make([]float32, n)
	legal := state.LegalMoves(state.ToMove(), nil)
	if len(legal) > 0 {
		p := float32(1.0) / float32(len(legal)+1)
		for _, v := range legal {
			if idx := state.Index(v); idx >= 0 && idx < len(probs) {
				probs[idx] = p
			}
		}
	}

	ownership := make([]float32, n)

	return game.NetworkResult{
		Probabilities:   probs,
		PassProbability: 1.0 / float32(len(legal)+1),
		WDL:             [3]float32{e.Winrate, 0, 1 - e.Winrate},
		WDLWinrate:      e.Winrate,
		STMWinrate:      e.Winrate,
		Ownership:       ownership,
		FinalScore:      e.FinalScore,
		BoardSize:       state.BoardSize(),
		Komi:            state.Komi(),
	}, nil
}
