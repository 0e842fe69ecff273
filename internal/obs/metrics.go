// Package obs collects lightweight engine counters.
package obs

import "sync/atomic"

// Metrics counts the interesting events of a running engine.
// All counters are atomic; a single instance is shared across
// trader loops, the order engine and the feed.
type Metrics struct {
	barsReceived    uint64
	barsDropped     uint64
	ticksEvaluated  uint64
	signals         uint64
	submissions     uint64
	submissionDrops uint64
	fills           uint64
	fillRejects     uint64
	closes          uint64
	commands        uint64
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	BarsReceived    uint64 `json:"barsReceived"`
	BarsDropped     uint64 `json:"barsDropped"`
	TicksEvaluated  uint64 `json:"ticksEvaluated"`
	Signals         uint64 `json:"signals"`
	Submissions     uint64 `json:"submissions"`
	SubmissionDrops uint64 `json:"submissionDrops"`
	Fills           uint64 `json:"fills"`
	FillRejects     uint64 `json:"fillRejects"`
	Closes          uint64 `json:"closes"`
	Commands        uint64 `json:"commands"`
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncBarReceived() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.barsReceived, 1)
}

func (m *Metrics) IncBarDropped() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.barsDropped, 1)
}

func (m *Metrics) IncTickEvaluated() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ticksEvaluated, 1)
}

func (m *Metrics) IncSignal() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.signals, 1)
}

func (m *Metrics) IncSubmission() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.submissions, 1)
}

func (m *Metrics) IncSubmissionDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.submissionDrops, 1)
}

func (m *Metrics) IncFill() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.fills, 1)
}

func (m *Metrics) IncFillReject() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.fillRejects, 1)
}

func (m *Metrics) IncClose() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.closes, 1)
}

func (m *Metrics) IncCommand() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.commands, 1)
}

// Snapshot captures the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		BarsReceived:    atomic.LoadUint64(&m.barsReceived),
		BarsDropped:     atomic.LoadUint64(&m.barsDropped),
		TicksEvaluated:  atomic.LoadUint64(&m.ticksEvaluated),
		Signals:         atomic.LoadUint64(&m.signals),
		Submissions:     atomic.LoadUint64(&m.submissions),
		SubmissionDrops: atomic.LoadUint64(&m.submissionDrops),
		Fills:           atomic.LoadUint64(&m.fills),
		FillRejects:     atomic.LoadUint64(&m.fillRejects),
		Closes:          atomic.LoadUint64(&m.closes),
		Commands:        atomic.LoadUint64(&m.commands),
	}
}
