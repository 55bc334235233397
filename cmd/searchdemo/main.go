// Command searchdemo runs a short fixed-cycle search against an empty
// board using the fake evaluator, and prints the resulting analysis
// string. It exists to exercise the engine end to end, not to play a
// strong game: the policy/value network and full Go rules both live
// outside this module.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kurobane-go/gozen/internal/fakeeval"
	"github.com/kurobane-go/gozen/internal/testboard"
	"github.com/kurobane-go/gozen/pkg/cache"
	"github.com/kurobane-go/gozen/pkg/mcts"
)

func main() {
	board := testboard.NewBoard(9, 7.5)
	evaluator := fakeeval.New()

	evalCache, err := cache.NewEvalCache(64, mcts.Logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "building cache:", err)
		os.Exit(1)
	}
	defer evalCache.Close()

	engine := mcts.NewEngine(board, evaluator, evalCache,
		mcts.WithCpuct(0.5, 19652, 1.0),
		mcts.WithSymmetryPruning(true),
	)

	limits := mcts.DefaultLimits()
	limits.SetCycles(400)
	engine.SetLimits(limits)

	listener := mcts.NewStatsListener()
	listener.OnStop(func(s mcts.ListenerStats) {
		fmt.Fprintf(os.Stderr, "search done: visits=%d time=%dms stop=%s\n", s.Visits, s.TimeMs, s.StopReason)
	})
	engine.AttachListener(listener)

	ctx := context.Background()
	move, err := engine.Search(ctx, board)
	if err != nil {
		fmt.Fprintln(os.Stderr, "search failed:", err)
		os.Exit(1)
	}

	fmt.Println("best move:", board.VertexText(move))
	fmt.Print(engine.Root().ToVerboseString(board.VertexText, board.ToMove(), nil))
}
