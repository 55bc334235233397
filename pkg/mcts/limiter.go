package mcts

import (
	"context"
	"math"
	"sync/atomic"
)

// StopReason is a bitmask of why a search stopped; more than one limit can
// trip in the same EvaluateStopReason call (e.g. Movetime and Cycles both
// firing on the same poll).
type StopReason int

const (
	StopNone      StopReason = 0
	StopInterrupt StopReason = 1 << 0 // context cancellation or SetStop(true)
	StopMovetime  StopReason = 1 << 1 // movetime budget elapsed
	StopMemory    StopReason = 1 << 2 // byte-size budget reached; tree growth disabled, not yet fully stopped
	StopDepth     StopReason = 1 << 3 // depth limit reached
	StopCycles    StopReason = 1 << 4 // visit/cycle limit reached
)

func (sr StopReason) String() string {
	if sr == StopNone {
		return "None"
	}
	named := []struct {
		flag StopReason
		name string
	}{
		{StopInterrupt, "Interrupt"},
		{StopMovetime, "Movetime"},
		{StopMemory, "Memory"},
		{StopDepth, "Depth"},
		{StopCycles, "Cycles"},
	}
	var out string
	for _, n := range named {
		if sr&n.flag == n.flag {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	return out
}

// Limiter tracks the stop conditions for one search: wall-clock movetime,
// a node-count-derived memory ceiling, search depth, and playout cycles.
// Ok is polled by every worker goroutine on every playout; EvaluateStopReason
// runs once, after all workers have exited, to record why.
type Limiter struct {
	limits   *Limits
	Timer    *searchTimer
	nodeSize uint32 // approximate bytes per tree node, for converting ByteSize into a node ceiling
	maxSize  uint32

	expand atomic.Bool // false once memory is exhausted: selection may still run, but expansion must not
	stop   atomic.Bool

	limitsEnabled int // bitmask of which limits Reset found configured, consulted by the memory/other-limit priority rule
	reason        StopReason
	ctx           context.Context
}

func NewLimiter(nodeSize uint32) *Limiter {
	l := &Limiter{
		limits:   DefaultLimits(),
		Timer:    newSearchTimer(),
		nodeSize: nodeSize,
		ctx:      context.Background(),
	}
	l.expand.Store(true)
	return l
}

func (l *Limiter) Reset() {
	l.Timer.Movetime(l.limits.Movetime)
	l.Timer.Reset()
	l.stop.Store(false)
	l.expand.Store(true)
	l.reason = StopNone

	if l.limits.ByteSize != DefaultByteSizeLimit {
		l.maxSize = uint32(l.limits.ByteSize) / l.nodeSize
	} else {
		l.maxSize = math.MaxUint32
	}

	l.limitsEnabled = flag(l.Timer.IsSet(), int(StopMovetime)) |
		flag(l.limits.ByteSize != DefaultByteSizeLimit, int(StopMemory)) |
		flag(l.limits.Depth != DefaultDepthLimit, int(StopDepth)) |
		flag(l.limits.Cycles != DefaultCyclesLimit, int(StopCycles))
}

// EvaluateStopReason records which limits were tripped as of this call.
// Called once, by the coordinating goroutine, after every worker has
// already exited its polling loop.
func (l *Limiter) EvaluateStopReason(size, depth, cycles uint32) {
	l.reason = StopReason(l.tripMask(size, depth, cycles))
}

func (l *Limiter) StopReason() StopReason { return l.reason }

func (l *Limiter) SetContext(ctx context.Context) { l.ctx = ctx }

func (l *Limiter) SetStop(v bool) { l.stop.Store(v) }

func (l *Limiter) Stop() bool {
	select {
	case <-l.ctx.Done():
		l.stop.Store(true)
	default:
	}
	return l.stop.Load()
}

func (l *Limiter) SetLimits(limits *Limits) { l.limits = limits }
func (l *Limiter) Limits() *Limits          { return l.limits }

func (l *Limiter) Elapsed() uint32 { return uint32(l.Timer.Deltatime()) }

// Expand reports whether the tree may still grow. Goes false once the
// memory ceiling is hit, independent of whether the search as a whole
// has been told to stop.
func (l *Limiter) Expand() bool { return l.expand.Load() }

func flag(set bool, bit int) int {
	if set {
		return bit
	}
	return 0
}

// tripMask returns the StopReason bits whose condition currently holds.
func (l *Limiter) tripMask(size, depth, cycles uint32) int {
	stop := l.Stop()
	if l.limits.Infinite {
		return flag(stop, int(StopInterrupt))
	}

	mask := flag(stop, int(StopInterrupt))
	mask |= flag(l.Timer.IsEnd(), int(StopMovetime))
	mask |= flag(l.maxSize <= size, int(StopMemory))
	mask |= flag(l.limits.Depth <= int(depth), int(StopDepth))
	mask |= flag(l.limits.Cycles <= cycles, int(StopCycles))

	// Memory alone never stops the search outright when another limit is
	// also configured: once the tree can't grow, expansion just waits on
	// whichever other limit (time, cycles) ends things.
	if l.limitsEnabled&int(StopMemory) == int(StopMemory) &&
		l.limitsEnabled&(int(StopMovetime)|int(StopCycles)) != 0 {
		if mask&int(StopMemory) == int(StopMemory) {
			l.expand.Store(false)
			mask ^= int(StopMemory)
		}
	}

	return mask
}

func (l *Limiter) Ok(size, depth, cycles uint32) bool {
	return l.tripMask(size, depth, cycles) == 0
}
