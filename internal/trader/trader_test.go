package trader

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradesim/internal/bus"
	"tradesim/internal/model"
	"tradesim/internal/model/enum"
	"tradesim/internal/obs"
	"tradesim/internal/portfolio"
	"tradesim/internal/strategy"
)

var sui = model.NewMarketPair("SUI", "USD")

type harness struct {
	trader   *Trader
	ledger   *portfolio.Ledger
	queue    *bus.Queue
	metrics  *obs.Metrics
	stop     chan struct{}
	commands chan model.Command
	candles  chan model.Candle
	done     chan struct{}
}

func newHarness(t *testing.T, strat strategy.SignalGenerator, tickRate time.Duration) *harness {
	t.Helper()
	ledger := portfolio.NewLedger(uuid.New(), []model.MarketPair{sui})
	queue := bus.NewQueue(8)
	metrics := obs.NewMetrics()
	h := &harness{
		trader:   New(Config{Pair: sui, TickRate: tickRate, HistorySize: 16}, strat, ledger, queue, metrics),
		ledger:   ledger,
		queue:    queue,
		metrics:  metrics,
		stop:     make(chan struct{}),
		commands: make(chan model.Command, 4),
		candles:  make(chan model.Candle, 8),
		done:     make(chan struct{}),
	}
	go func() {
		defer close(h.done)
		h.trader.Run(Channels{Stop: h.stop, Commands: h.commands, Candles: h.candles})
	}()
	t.Cleanup(func() {
		select {
		case <-h.done:
		default:
			close(h.stop)
			<-h.done
		}
	})
	return h
}

func (h *harness) waitDone(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case <-h.done:
	case <-time.After(within):
		t.Fatal("trader did not terminate in time")
	}
}

// noSignal never trades.
type noSignal struct{}

func (noSignal) Evaluate(strategy.Context) (enum.Signal, bool) { return 0, false }

func TestForceExitTerminatesLoop(t *testing.T) {
	h := newHarness(t, noSignal{}, time.Hour)

	h.commands <- model.Command{Kind: enum.CommandForceExit}
	h.waitDone(t, time.Second)
	assert.Equal(t, uint64(1), h.metrics.Snapshot().Commands)
}

func TestStopBroadcastTerminatesLoop(t *testing.T) {
	h := newHarness(t, noSignal{}, time.Hour)

	close(h.stop)
	h.waitDone(t, time.Second)
}

func TestCandlesAccumulateNewestFirst(t *testing.T) {
	h := newHarness(t, noSignal{}, time.Hour)

	for ts := int64(1); ts <= 3; ts++ {
		h.candles <- model.Candle{Close: float64(ts), Timestamp: ts}
	}

	require.Eventually(t, func() bool {
		return h.metrics.Snapshot().BarsReceived == 3
	}, time.Second, 5*time.Millisecond)

	snapshot := h.trader.history.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, int64(3), snapshot[0].Timestamp)
	assert.Equal(t, int64(1), snapshot[2].Timestamp)
}

func TestFlatMarketEvaluatesAndSubmits(t *testing.T) {
	h := newHarness(t, strategy.Simple{}, 10*time.Millisecond)

	h.candles <- model.Candle{Close: 11, Timestamp: 1}

	require.Eventually(t, func() bool {
		return h.metrics.Snapshot().Submissions >= 1
	}, time.Second, 5*time.Millisecond)

	// the trader itself never mutates the ledger on a signal.
	assert.Zero(t, h.ledger.Count())
}

func TestCloseAllSubmitsOnlyWhenPositioned(t *testing.T) {
	h := newHarness(t, noSignal{}, time.Hour)

	h.commands <- model.Command{Kind: enum.CommandCloseAll}
	require.Eventually(t, func() bool {
		return h.metrics.Snapshot().Commands == 1
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, h.queue.Len(), "flat market ignores close-all")

	require.True(t, h.ledger.OpenIfAbsent(sui, model.Position{Size: 1, Price: 12}))
	h.commands <- model.Command{Kind: enum.CommandCloseAll}
	require.Eventually(t, func() bool {
		return h.queue.Len() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestAddPositionAppliesToOwnMarketOnly(t *testing.T) {
	h := newHarness(t, noSignal{}, time.Hour)

	other := model.NewMarketPair("BTC", "USD")
	h.commands <- model.Command{
		Kind:     enum.CommandAddPosition,
		Pair:     other,
		Position: model.Position{Size: 1, Price: 10},
	}
	h.commands <- model.Command{
		Kind:     enum.CommandAddPosition,
		Pair:     sui,
		Position: model.Position{Size: -1, Price: 14},
	}

	require.Eventually(t, func() bool {
		return h.metrics.Snapshot().Commands == 2
	}, time.Second, 5*time.Millisecond)

	pos, ok := h.ledger.Position(sui)
	require.True(t, ok)
	assert.Equal(t, -1, pos.Size)

	_, ok = h.ledger.Position(other)
	assert.False(t, ok)
}

func TestFullQueueDropsSubmission(t *testing.T) {
	h := newHarness(t, strategy.Simple{}, 10*time.Millisecond)

	// saturate the queue so the trader's publish fails.
	for h.queue.TryPublish(model.Submission{Signal: enum.SignalClose, Pair: sui}) == nil {
	}

	h.candles <- model.Candle{Close: 11, Timestamp: 1}

	require.Eventually(t, func() bool {
		return h.metrics.Snapshot().SubmissionDrops >= 1
	}, time.Second, 5*time.Millisecond)
}
