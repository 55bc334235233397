package mcts

// Update folds one simulation's evaluation into the node's running
// statistics. The accumulators are always kept in Black's perspective so
// that mixed-color paths never need a sign flip mid-reduction; callers
// convert to side-to-move perspective only when reading. Ownership is
// accumulated as a running mean under a mutex since it is a slice and the
// board can be large enough that a lock-free approach would just be a CAS
// loop over every element every update.
//
// squaredEvalDiff tracks Welford's M2 (sum of squared deviations from the
// running mean) for the win-rate stream, used later by the LCB variance
// estimate. The node's own visit counter acts as Welford's n, so the
// increment order matters: capture the pre-update mean and count before
// bumping visits.
func (n *Node) Update(evals *NodeEvals) {
	oldVisits := n.visits.Add(1) - 1
	newVisits := oldVisits + 1

	oldMean := 0.0
	if oldVisits > 0 {
		oldMean = n.accBlackWL.Load() / float64(oldVisits)
	}

	n.accBlackWL.Add(evals.BlackWL)
	n.accDraw.Add(evals.Draw)
	n.accBlackFS.Add(evals.BlackFinalScore)

	newMean := n.accBlackWL.Load() / float64(newVisits)
	delta := evals.BlackWL - oldMean
	delta2 := evals.BlackWL - newMean
	n.squaredEvalDiff.Add(delta * delta2)

	if evals.BlackOwnership != nil {
		n.updateOwnership(evals.BlackOwnership, newVisits)
	}
}

func (n *Node) updateOwnership(sample []float64, visits int64) {
	n.ownershipMu.Lock()
	defer n.ownershipMu.Unlock()

	if n.avgBlackOwnership == nil {
		n.avgBlackOwnership = make([]float64, len(sample))
	}
	for i, v := range sample {
		if i >= len(n.avgBlackOwnership) {
			break
		}
		n.avgBlackOwnership[i] += (v - n.avgBlackOwnership[i]) / float64(visits)
	}
}

// GetVariance returns the Welford sample variance of the win-rate stream,
// used by GetLcbVariance to build the standard error for the LCB bound.
// Returns a conservative 1.0 before enough samples exist to estimate it.
func (n *Node) GetVariance() float64 {
	visits := n.Visits()
	if visits <= 1 {
		return 1.0
	}
	return n.squaredEvalDiff.Load() / float64(visits-1)
}
