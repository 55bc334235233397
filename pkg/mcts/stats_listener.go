package mcts

// ListenerStats is the snapshot handed to progress callbacks: enough to
// drive a GTP-style periodic "info" line without exposing the tree itself.
type ListenerStats struct {
	Visits     int64
	TimeMs     int
	StopReason StopReason
}

// ListenerFunc receives a ListenerStats snapshot, built lazily so a
// listener that only cares about onStop never pays for onCycle's snapshot
// construction cost.
type ListenerFunc func(ListenerStats)

// StatsListener is the progress-reporting callback set a caller attaches
// to an Engine before Search: onCycle fires periodically during the
// search, onStop fires exactly once when it ends.
type StatsListener struct {
	// called every N root visits, receives the current snapshot
	onCycle ListenerFunc
	nCycles int64

	// called once when the search stops, either by limiter or stop signal
	onStop ListenerFunc
}

// NewStatsListener returns an empty listener set that fires onCycle every
// visit by default.
func NewStatsListener() StatsListener {
	return StatsListener{nCycles: 1}
}

// OnCycle attaches a callback invoked every N root visits, set via
// SetCycleInterval. Evaluating it more often meaningfully slows a search
// since the main thread has to read root state to build the snapshot.
func (listener *StatsListener) OnCycle(onCycle ListenerFunc) *StatsListener {
	listener.onCycle = onCycle
	return listener
}

// SetCycleInterval governs how often onCycle fires, in root visits.
func (listener *StatsListener) SetCycleInterval(n int64) *StatsListener {
	if n < 1 {
		n = 1
	}
	listener.nCycles = n
	return listener
}

// OnStop attaches the callback invoked once, after the search loop exits,
// with StopReason already populated in the snapshot.
func (listener *StatsListener) OnStop(onStop ListenerFunc) *StatsListener {
	listener.onStop = onStop
	return listener
}

func (listener *StatsListener) invokeCycle(visits int64, snapshot func() ListenerStats) {
	if listener.onCycle != nil && visits%listener.nCycles == 0 {
		listener.onCycle(snapshot())
	}
}
