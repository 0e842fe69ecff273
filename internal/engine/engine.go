// Package engine owns the set of trader loops.
//
// It spawns exactly one goroutine per configured market, wires
// the per-market candle channels, the per-trader command slots
// and the shared stop broadcast, and hands back a Handle for
// external injection and shutdown.
package engine

import (
	"sync"

	"github.com/yanun0323/logs"

	"tradesim/internal/model"
	"tradesim/internal/trader"
	"tradesim/pkg/exception"
)

const (
	defaultFeedCapacity    = 512
	defaultCommandCapacity = 16
)

// Config controls channel sizing.
type Config struct {
	// FeedCapacity bounds each market's inbound candle channel.
	FeedCapacity int
	// CommandCapacity bounds each trader's command slot.
	CommandCapacity int
}

func (c Config) withDefaults() Config {
	if c.FeedCapacity <= 0 {
		c.FeedCapacity = defaultFeedCapacity
	}
	if c.CommandCapacity <= 0 {
		c.CommandCapacity = defaultCommandCapacity
	}
	return c
}

// Engine spawns and supervises trader loops.
type Engine struct {
	cfg     Config
	traders []*trader.Trader
}

// New builds an engine over the given traders.
func New(cfg Config, traders []*trader.Trader) *Engine {
	return &Engine{cfg: cfg.withDefaults(), traders: traders}
}

// commandSlot pairs a trader's command channel with its
// done signal so broadcasts never block on a dead loop.
type commandSlot struct {
	ch   chan model.Command
	done chan struct{}
}

// Handle is the running engine's external surface.
type Handle struct {
	feeds map[model.MarketPair]chan model.Candle
	slots []commandSlot
	stop  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

// Start spawns one goroutine per market and returns the handle.
// The pool is sized to the market count; no trader shares an
// execution slot with another.
func (e *Engine) Start() (*Handle, error) {
	if len(e.traders) == 0 {
		return nil, exception.ErrNoMarkets
	}

	h := &Handle{
		feeds: make(map[model.MarketPair]chan model.Candle, len(e.traders)),
		slots: make([]commandSlot, 0, len(e.traders)),
		stop:  make(chan struct{}),
	}

	for _, tr := range e.traders {
		pair := tr.Pair()
		if _, dup := h.feeds[pair]; dup {
			return nil, exception.ErrDuplicateMarket
		}

		candles := make(chan model.Candle, e.cfg.FeedCapacity)
		slot := commandSlot{
			ch:   make(chan model.Command, e.cfg.CommandCapacity),
			done: make(chan struct{}),
		}
		h.feeds[pair] = candles
		h.slots = append(h.slots, slot)

		h.wg.Add(1)
		go func(tr *trader.Trader, slot commandSlot, candles chan model.Candle) {
			defer h.wg.Done()
			defer close(slot.done)
			tr.Run(trader.Channels{
				Stop:     h.stop,
				Commands: slot.ch,
				Candles:  candles,
			})
		}(tr, slot, candles)
	}

	logs.Infof("trading engine started, markets=%d", len(e.traders))
	return h, nil
}

// Push injects a candle into one market's inbound channel. The
// send never blocks: a full channel surfaces ErrFeedBacklog so
// the producer observes backpressure instead of silent loss.
func (h *Handle) Push(pair model.MarketPair, c model.Candle) error {
	select {
	case <-h.stop:
		return exception.ErrEngineStopped
	default:
	}

	ch, ok := h.feeds[pair]
	if !ok {
		return exception.ErrUnknownMarket
	}

	select {
	case ch <- c:
		return nil
	default:
		return exception.ErrFeedBacklog
	}
}

// Markets lists the pairs this handle can feed.
func (h *Handle) Markets() []model.MarketPair {
	pairs := make([]model.MarketPair, 0, len(h.feeds))
	for pair := range h.feeds {
		pairs = append(pairs, pair)
	}
	return pairs
}

// Broadcast fans a command out to every trader. Delivery blocks
// per slot until the command is accepted, the target loop has
// exited, or the engine stops; control signals are never
// silently dropped.
func (h *Handle) Broadcast(cmd model.Command) {
	for _, slot := range h.slots {
		select {
		case slot.ch <- cmd:
		case <-slot.done:
		case <-h.stop:
			return
		}
	}
}

// Stop closes the stop broadcast. Idempotent. Every loop
// observes it within one cycle bound; in-flight order fills are
// not cancelled.
func (h *Handle) Stop() {
	h.once.Do(func() {
		close(h.stop)
	})
}

// Wait blocks until every trader loop has terminated.
func (h *Handle) Wait() {
	h.wg.Wait()
}
