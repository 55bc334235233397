package mcts

// VirtualLossCount is the pessimistic weight applied to a node per
// in-flight selection path occupying it, to discourage other threads from
// herding onto the same subtree while a playout is in progress.
const VirtualLossCount = 3

// mainThreadID is the id of the search goroutine that invokes the search
// listener's per-cycle callback, mirroring the teacher's single-reporter
// convention for multi-goroutine searches. Stop reasons are evaluated by
// Search itself once every worker has exited.
const mainThreadID = 0
