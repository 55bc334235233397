package mcts

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/kurobane-go/gozen/pkg/game"
	"github.com/muesli/termenv"
)

// Dialect selects which analysis-output convention ToAnalysisString
// speaks, matching the handful of GTP extension conventions GUIs expect.
type Dialect int

const (
	DialectPlain Dialect = iota
	DialectSayuri
	DialectKata
)

// AnalysisConfig governs what ToAnalysisString reports.
type AnalysisConfig struct {
	Dialect         Dialect
	MaxMoves        int
	Ownership       bool
	MovesOwnership  bool
}

// VertexText converts a vertex to its human-readable board coordinate,
// e.g. "Q16" or "pass" — supplied by the board collaborator since only it
// knows the board's coordinate convention.
type VertexText func(vertex int) string

// GetPvString walks the principal variation from n down through
// successive best-move children and renders it as a space-separated move
// list.
func (n *Node) GetPvString(vertexText VertexText, rng *rand.Rand) string {
	var sb strings.Builder
	cur := n
	for cur.HaveChildren() {
		best := cur.GetBestMove(cur.color, rng)
		if best == nil {
			break
		}
		sb.WriteString(vertexText(best.Vertex()))
		sb.WriteString(" ")
		next := best.Get()
		if next == nil {
			break
		}
		cur = next
	}
	return strings.TrimSpace(sb.String())
}

// OwnershipToString renders a node's running ownership estimate as a flat
// row of per-intersection values, board-row-major from the top.
func OwnershipToString(board game.Board, color game.Color, name string, node *Node) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString(" ")
	size := board.BoardSize()
	ownership := node.GetOwnership(color)
	for y := size - 1; y >= 0; y-- {
		for x := 0; x < size; x++ {
			idx := board.Index(board.Vertex(x, y))
			v := 0.0
			if idx >= 0 && idx < len(ownership) {
				v = ownership[idx]
			}
			sb.WriteString(fmt.Sprintf("%.6f ", v))
		}
	}
	return sb.String()
}

// ToAnalysisString renders the GTP-analysis-style move list the way
// Sabaki-compatible GUIs expect, in one of three house dialects.
func (n *Node) ToAnalysisString(board game.Board, color game.Color, vertexText VertexText, cfg AnalysisConfig, rng *rand.Rand) string {
	list := n.GetLcbUtilityList(color)
	if len(list) == 0 {
		return ""
	}
	rootVisits := float64(n.Visits() - 1)

	var sb strings.Builder
	order := 0
	for _, entry := range list {
		if cfg.MaxMoves > 0 && order+1 > cfg.MaxMoves {
			break
		}
		lcb := entry.Ulcb
		if lcb < 0 {
			lcb = 0
		}
		child := n.GetChild(entry.Vertex)
		if child == nil {
			continue
		}
		finalScore := child.GetFinalScore(color)
		winrate := child.GetWL(color, false)
		visits := child.Visits()
		prior := child.Policy()
		pv := vertexText(entry.Vertex) + " " + child.GetPvString(vertexText, rng)

		if n.params != nil && n.params.NoDCNN && rootVisits > 0 && float64(visits)/rootVisits < 0.01 {
			continue
		}

		switch cfg.Dialect {
		case DialectSayuri:
			kl := child.ComputeKlDivergence(rng)
			complexity := child.ComputeTreeComplexity()
			fmt.Fprintf(&sb, "info move %s visits %d winrate %.6f scorelead %.6f prior %.6f lcb %.6f kl %.6f complexity %.6f order %d pv %s",
				vertexText(entry.Vertex), visits, winrate, finalScore, prior, lcb, kl, complexity, order, pv)
		case DialectKata:
			fmt.Fprintf(&sb, "info move %s visits %d winrate %.6f scoreLead %.6f prior %.6f lcb %.6f order %d pv %s",
				vertexText(entry.Vertex), visits, winrate, finalScore, prior, lcb, order, pv)
		default:
			fmt.Fprintf(&sb, "info move %s visits %d winrate %d scoreLead %.6f prior %d lcb %d order %d pv %s",
				vertexText(entry.Vertex), visits, minInt(10000, int(10000*winrate)), finalScore,
				minInt(10000, int(10000*float64(prior))), minInt(10000, int(10000*lcb)), order, pv)
		}

		if cfg.MovesOwnership {
			name := "movesOwnership"
			if cfg.Dialect == DialectSayuri {
				name = "movesownership"
			}
			sb.WriteString(" ")
			sb.WriteString(OwnershipToString(board, color, name, child))
		}
		order++
	}

	if cfg.Ownership {
		sb.WriteString(" ")
		sb.WriteString(OwnershipToString(board, color, "ownership", n))
	}

	return sb.String()
}

// ToVerboseString renders the human-readable move table used by
// interactive tooling: one row per candidate move plus a closing tree
// status block with the KL divergence, complexity estimate, and a rough
// memory-use figure.
func (n *Node) ToVerboseString(vertexText VertexText, color game.Color, rng *rand.Rand) string {
	list := n.GetLcbUtilityList(color)
	if len(list) == 0 {
		return " * Search List: N/A\n"
	}

	parentVisits := n.Visits() - 1
	profile := termenv.ColorProfile()

	var sb strings.Builder
	sb.WriteString(" * Search List:\n")
	fmt.Fprintf(&sb, "%6s%10s%7s%7s%7s%7s%7s%7s\n", "move", "visits", "WL(%)", "LCB(%)", "D(%)", "P(%)", "N(%)", "S")

	for i, entry := range list {
		lcb := entry.Ulcb
		if lcb < 0 {
			lcb = 0
		}
		child := n.GetChild(entry.Vertex)
		if child == nil {
			continue
		}
		visits := child.Visits()
		prob := child.Policy()
		finalScore := child.GetFinalScore(color)
		eval := child.GetWL(color, false)
		draw := child.GetDraw()
		pv := vertexText(entry.Vertex) + " " + child.GetPvString(vertexText, rng)

		visitRatio := 0.0
		if parentVisits > 0 {
			visitRatio = float64(visits) / float64(parentVisits)
		}

		row := fmt.Sprintf("%6s%10d%7.2f%7.2f%7.2f%7.2f%7.2f%7.2f | PV: %s",
			vertexText(entry.Vertex), visits, eval*100, lcb*100, draw*100,
			float64(prob)*100, visitRatio*100, finalScore, pv)
		if i == 0 {
			row = termenv.String(row).Foreground(profile.Color("2")).Bold().String()
		}
		sb.WriteString(row)
		sb.WriteString("\n")
	}

	nodes, edges := n.ComputeNodeCount()
	const nodeMem = 256 // rough struct footprint, not computed via unsafe.Sizeof to stay portable
	const edgeMem = 24
	memUsed := float64(nodes*nodeMem+edges*edgeMem) / (1024.0 * 1024.0)

	fmt.Fprintf(&sb, " * Tree Status:\n%10s %.4f\n%10s %.4f\n%10s %d\n%10s %d\n%10s %.4f (MiB)\n",
		"root KL:", n.ComputeKlDivergence(rng),
		"root C:", n.ComputeTreeComplexity(),
		"nodes:", nodes,
		"edges:", edges,
		"memory:", memUsed)

	return sb.String()
}
