// Package trader runs the per-market decision loop.
//
// One trader owns exactly one market. It multiplexes over four
// event sources: the engine stop broadcast, its command channel,
// its inbound candle channel and the tick cadence. Nothing here
// blocks on another market; the only shared state is the ledger,
// touched through short lock scopes, and the submission queue,
// written with a non-blocking publish.
package trader

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/logs"

	"tradesim/internal/bus"
	"tradesim/internal/history"
	"tradesim/internal/model"
	"tradesim/internal/model/enum"
	"tradesim/internal/obs"
	"tradesim/internal/portfolio"
	"tradesim/internal/strategy"
)

const defaultHistorySize = 1024

// Config describes one trader.
type Config struct {
	Pair model.MarketPair
	// TickRate is the cadence at which the strategy is evaluated.
	TickRate time.Duration
	// HistorySize bounds the loop-local candle ring.
	HistorySize int
}

// Trader is the decision loop for a single market.
type Trader struct {
	pair        model.MarketPair
	tickRate    time.Duration
	strategy    strategy.SignalGenerator
	ledger      *portfolio.Ledger
	submissions *bus.Queue
	metrics     *obs.Metrics
	history     *history.Ring
}

// New builds a trader. The candle/command/stop channels arrive
// later, at spawn time, from the trading engine.
func New(cfg Config, strat strategy.SignalGenerator, ledger *portfolio.Ledger, submissions *bus.Queue, metrics *obs.Metrics) *Trader {
	size := cfg.HistorySize
	if size <= 0 {
		size = defaultHistorySize
	}
	return &Trader{
		pair:        cfg.Pair,
		tickRate:    cfg.TickRate,
		strategy:    strat,
		ledger:      ledger,
		submissions: submissions,
		metrics:     metrics,
		history:     history.New(size),
	}
}

func (t *Trader) Pair() model.MarketPair {
	return t.pair
}

// Channels are the spawn-time wiring for one trader.
type Channels struct {
	// Stop is closed by the engine; every trader observes it
	// independently.
	Stop <-chan struct{}
	// Commands is this trader's slot of the command broadcast.
	Commands <-chan model.Command
	// Candles is the market's inbound price channel; the trader
	// is its sole consumer.
	Candles <-chan model.Candle
}

// Run executes the decision loop until stopped. At most one
// candle is consumed per wakeup; a candle arriving after the
// tick snapshot is visible only to the next evaluation.
func (t *Trader) Run(ch Channels) {
	logs.Infof("%s: trader started, tick=%s", t.pair, t.tickRate)
	defer logs.Infof("%s: trader stopped", t.pair)

	ticker := time.NewTicker(t.tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ch.Stop:
			return

		case cmd := <-ch.Commands:
			if t.apply(cmd) {
				return
			}

		case c, ok := <-ch.Candles:
			if !ok {
				return
			}
			t.history.Push(c)
			t.metrics.IncBarReceived()

		case <-ticker.C:
			t.evaluate()
		}
	}
}

// apply handles one control command. Returns true when the loop
// must terminate.
func (t *Trader) apply(cmd model.Command) bool {
	t.metrics.IncCommand()

	switch cmd.Kind {
	case enum.CommandForceExit:
		logs.Warnf("%s: force exit", t.pair)
		return true

	case enum.CommandPortfolioStatus:
		snapshot := t.ledger.Snapshot()
		payload, err := sonic.Marshal(snapshot)
		if err != nil {
			logs.Errorf("%s: marshal portfolio status, err: %+v", t.pair, err)
			return false
		}
		logs.Infof("%s: portfolio status %s", t.pair, payload)

	case enum.CommandCloseAll:
		if _, open := t.ledger.Position(t.pair); open {
			t.submit(enum.SignalClose)
		}

	case enum.CommandAddPosition:
		if cmd.Pair != t.pair {
			return false
		}
		if t.ledger.Add(cmd.Pair, cmd.Position) {
			logs.Infof("%s: position injected size=%d price=%.4f", t.pair, cmd.Position.Size, cmd.Position.Price)
		} else {
			logs.Warnf("%s: position injection ignored, market already positioned", t.pair)
		}

	default:
		logs.Warnf("%s: unknown command %d", t.pair, cmd.Kind)
	}

	return false
}

// evaluate runs one strategy tick. The ledger lock is held only
// for the position read; the strategy sees a cloned history and
// runs strictly outside the lock.
func (t *Trader) evaluate() {
	if !t.ledger.Tracks(t.pair) {
		return
	}

	// a tracked market with no entry evaluates as flat.
	pos, _ := t.ledger.Position(t.pair)
	t.metrics.IncTickEvaluated()

	signal, ok := t.strategy.Evaluate(strategy.Context{
		Pair:     t.pair,
		Position: pos,
		Candles:  t.history.Snapshot(),
	})
	if !ok {
		return
	}

	t.metrics.IncSignal()
	t.submit(signal)
}

// submit pushes a submission without blocking. A full or closed
// queue drops the intent; it is logged, never retried.
func (t *Trader) submit(signal enum.Signal) {
	err := t.submissions.TryPublish(model.Submission{Signal: signal, Pair: t.pair})
	if err != nil {
		t.metrics.IncSubmissionDrop()
		logs.Errorf("%s: dropped %s submission, err: %+v", t.pair, signal, err)
		return
	}
	t.metrics.IncSubmission()
}
