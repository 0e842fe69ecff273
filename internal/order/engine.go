// Package order resolves trade submissions into ledger mutations.
//
// The engine consumes the shared submission queue on a single
// goroutine; that receive is the only true blocking wait in the
// core. Long/Short/Reverse submissions are handed to a bounded
// set of fill workers so consumption never stalls on simulated
// broker latency. Close resolves inline with no latency.
package order

import (
	"context"
	"sync"
	"time"

	"github.com/yanun0323/logs"

	"tradesim/internal/bus"
	"tradesim/internal/journal"
	"tradesim/internal/model"
	"tradesim/internal/model/enum"
	"tradesim/internal/obs"
	"tradesim/internal/portfolio"
	"tradesim/pkg/exception"
)

const (
	defaultFillLatency = 300 * time.Millisecond
	defaultFillWorkers = 8
)

// Config controls fill behavior.
type Config struct {
	// FillLatency simulates the broker round trip before a
	// Long/Short/Reverse touches the ledger.
	FillLatency time.Duration
	// FillWorkers caps concurrent in-flight fills. Submissions
	// beyond the cap are rejected, not queued.
	FillWorkers int
}

func (c Config) withDefaults() Config {
	if c.FillLatency <= 0 {
		c.FillLatency = defaultFillLatency
	}
	if c.FillWorkers <= 0 {
		c.FillWorkers = defaultFillWorkers
	}
	return c
}

// Engine executes submissions against the shared ledger.
type Engine struct {
	cfg      Config
	queue    *bus.Queue
	ledger   *portfolio.Ledger
	pricer   Pricer
	recorder journal.Recorder
	metrics  *obs.Metrics

	slots chan struct{}
	wg    sync.WaitGroup
}

// NewEngine wires an order engine. recorder and metrics may be
// nil; pricer must not be.
func NewEngine(cfg Config, queue *bus.Queue, ledger *portfolio.Ledger, pricer Pricer, recorder journal.Recorder, metrics *obs.Metrics) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:      cfg,
		queue:    queue,
		ledger:   ledger,
		pricer:   pricer,
		recorder: recorder,
		metrics:  metrics,
		slots:    make(chan struct{}, cfg.FillWorkers),
	}
}

// Run consumes submissions until the queue closes or the context
// is done, then waits for in-flight fills to land. Dispatched
// fills are never cancelled; shutdown only stops new work.
func (e *Engine) Run(ctx context.Context) {
	logs.Info("order engine started")
	e.queue.Run(ctx, e.handle)
	e.wg.Wait()
	logs.Info("order engine stopped")
}

func (e *Engine) handle(s model.Submission) {
	switch s.Signal {
	case enum.SignalClose:
		e.close(s.Pair)

	case enum.SignalLong:
		e.dispatch(s.Pair, enum.SignalLong)

	case enum.SignalShort:
		e.dispatch(s.Pair, enum.SignalShort)

	case enum.SignalReverse:
		e.dispatch(s.Pair, enum.SignalReverse)

	default:
		logs.Warnf("%s: unsupported signal %d", s.Pair, s.Signal)
	}
}

// close resolves synchronously; removing an absent position is a
// no-op, not an error.
func (e *Engine) close(pair model.MarketPair) {
	pos, ok := e.ledger.Close(pair)
	if !ok {
		return
	}
	e.metrics.IncClose()
	logs.Infof("%s: closed position size=%d entry=%.4f", pair, pos.Size, pos.Price)
	e.record(journal.NewEntry(e.ledger.EngineID().String(), pair, enum.SignalClose, pos))
}

// dispatch hands a fill to a worker slot. When every slot is
// busy the submission is rejected so fan-out stays bounded.
func (e *Engine) dispatch(pair model.MarketPair, action enum.Signal) {
	select {
	case e.slots <- struct{}{}:
	default:
		e.metrics.IncFillReject()
		logs.Warnf("%s: dropping %s, err: %+v", pair, action, exception.ErrFillCapacity)
		return
	}

	e.wg.Add(1)
	go func() {
		defer func() {
			<-e.slots
			e.wg.Done()
		}()
		e.fill(pair, action)
	}()
}

func (e *Engine) fill(pair model.MarketPair, action enum.Signal) {
	// broker round trip; deliberately not tied to shutdown.
	time.Sleep(e.cfg.FillLatency)

	price := e.pricer.FillPrice(pair)

	switch action {
	case enum.SignalLong, enum.SignalShort:
		size := 1
		if action == enum.SignalShort {
			size = -1
		}
		pos := model.Position{Size: size, Price: price}
		if !e.ledger.OpenIfAbsent(pair, pos) {
			e.metrics.IncFillReject()
			logs.Warnf("%s: already positioned, ignoring %s", pair, action)
			return
		}
		e.metrics.IncFill()
		logs.Infof("%s: filled %s size=%d price=%.4f", pair, action, size, price)
		e.record(journal.NewEntry(e.ledger.EngineID().String(), pair, action, pos))

	case enum.SignalReverse:
		pos, ok := e.ledger.Reverse(pair, price)
		if !ok {
			e.metrics.IncFillReject()
			logs.Warnf("%s: nothing to reverse", pair)
			return
		}
		e.metrics.IncFill()
		logs.Infof("%s: reversed to size=%d price=%.4f", pair, pos.Size, price)
		e.record(journal.NewEntry(e.ledger.EngineID().String(), pair, enum.SignalReverse, pos))
	}
}

// record is fire-and-forget; a journal failure never propagates
// into the fill path.
func (e *Engine) record(entry journal.Entry) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(context.Background(), entry); err != nil {
		logs.Errorf("journal record failed, err: %+v", err)
	}
}
