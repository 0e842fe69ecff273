package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradesim/internal/bus"
	"tradesim/internal/journal"
	"tradesim/internal/model"
	"tradesim/internal/model/enum"
	"tradesim/internal/obs"
	"tradesim/internal/order"
	"tradesim/internal/portfolio"
	"tradesim/internal/strategy"
	"tradesim/internal/trader"
	"tradesim/pkg/exception"
)

var (
	btc = model.NewMarketPair("BTC", "USD")
	sol = model.NewMarketPair("SOL", "USD")
)

func buildTraders(queue *bus.Queue, ledger *portfolio.Ledger, metrics *obs.Metrics, strat strategy.SignalGenerator, tickRate time.Duration, pairs ...model.MarketPair) []*trader.Trader {
	traders := make([]*trader.Trader, 0, len(pairs))
	for _, pair := range pairs {
		cfg := trader.Config{Pair: pair, TickRate: tickRate, HistorySize: 32}
		traders = append(traders, trader.New(cfg, strat, ledger, queue, metrics))
	}
	return traders
}

type neverSignal struct{}

func (neverSignal) Evaluate(strategy.Context) (enum.Signal, bool) { return 0, false }

func TestStartRequiresMarkets(t *testing.T) {
	_, err := New(Config{}, nil).Start()
	assert.ErrorIs(t, err, exception.ErrNoMarkets)
}

func TestStartRejectsDuplicateMarkets(t *testing.T) {
	queue := bus.NewQueue(8)
	ledger := portfolio.NewLedger(uuid.New(), []model.MarketPair{btc})
	metrics := obs.NewMetrics()
	traders := buildTraders(queue, ledger, metrics, neverSignal{}, time.Hour, btc, btc)

	_, err := New(Config{}, traders).Start()
	assert.ErrorIs(t, err, exception.ErrDuplicateMarket)
}

func TestPushRouting(t *testing.T) {
	queue := bus.NewQueue(8)
	ledger := portfolio.NewLedger(uuid.New(), []model.MarketPair{btc})
	metrics := obs.NewMetrics()
	traders := buildTraders(queue, ledger, metrics, neverSignal{}, time.Hour, btc)

	h, err := New(Config{FeedCapacity: 2}, traders).Start()
	require.NoError(t, err)
	defer func() {
		h.Stop()
		h.Wait()
	}()

	require.NoError(t, h.Push(btc, model.Candle{Close: 10, Timestamp: 1}))

	err = h.Push(sol, model.Candle{})
	assert.ErrorIs(t, err, exception.ErrUnknownMarket)
	assert.Len(t, h.Markets(), 1)
}

func TestPushBackpressure(t *testing.T) {
	queue := bus.NewQueue(8)
	ledger := portfolio.NewLedger(uuid.New(), []model.MarketPair{btc})
	metrics := obs.NewMetrics()
	traders := buildTraders(queue, ledger, metrics, neverSignal{}, time.Hour, btc)

	h, err := New(Config{FeedCapacity: 1}, traders).Start()
	require.NoError(t, err)

	// park the consumer so the bounded channel actually fills.
	h.Broadcast(model.Command{Kind: enum.CommandForceExit})
	h.Wait()

	require.NoError(t, h.Push(btc, model.Candle{Close: 10}))
	assert.ErrorIs(t, h.Push(btc, model.Candle{Close: 10}), exception.ErrFeedBacklog)
}

func TestBroadcastForceExitStopsAllLoops(t *testing.T) {
	queue := bus.NewQueue(8)
	ledger := portfolio.NewLedger(uuid.New(), []model.MarketPair{btc, sol})
	metrics := obs.NewMetrics()
	traders := buildTraders(queue, ledger, metrics, neverSignal{}, time.Hour, btc, sol)

	h, err := New(Config{}, traders).Start()
	require.NoError(t, err)

	h.Broadcast(model.Command{Kind: enum.CommandForceExit})

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Wait()
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loops did not exit after force-exit broadcast")
	}
	assert.Equal(t, uint64(2), metrics.Snapshot().Commands)
}

func TestStopIsIdempotentAndTerminates(t *testing.T) {
	queue := bus.NewQueue(8)
	ledger := portfolio.NewLedger(uuid.New(), []model.MarketPair{btc})
	metrics := obs.NewMetrics()
	traders := buildTraders(queue, ledger, metrics, neverSignal{}, time.Hour, btc)

	h, err := New(Config{}, traders).Start()
	require.NoError(t, err)

	h.Stop()
	h.Stop()
	h.Wait()

	assert.ErrorIs(t, h.Push(btc, model.Candle{}), exception.ErrEngineStopped)
}

// TestEndToEndAlwaysLong drives the whole pipeline: one market,
// a policy that longs when flat, ten injected candles. After the
// simulated fill latency the ledger must hold exactly one +1
// position even though the policy fired on several ticks.
func TestEndToEndAlwaysLong(t *testing.T) {
	queue := bus.NewQueue(128)
	ledger := portfolio.NewLedger(uuid.New(), []model.MarketPair{btc})
	metrics := obs.NewMetrics()
	recorder := journal.NewMemory()

	orderEngine := order.NewEngine(
		order.Config{FillLatency: 30 * time.Millisecond, FillWorkers: 4},
		queue, ledger, order.FixedPricer{Price: 15}, recorder, metrics,
	)
	orderCtx, cancelOrders := context.WithCancel(context.Background())
	orderDone := make(chan struct{})
	go func() {
		defer close(orderDone)
		orderEngine.Run(orderCtx)
	}()

	traders := buildTraders(queue, ledger, metrics, strategy.Simple{}, 10*time.Millisecond, btc)
	h, err := New(Config{}, traders).Start()
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, h.Push(btc, model.Candle{Close: 10 + float64(i), Timestamp: int64(i)}))
	}

	require.Eventually(t, func() bool {
		pos, ok := ledger.Position(btc)
		return ok && pos.Size == 1
	}, 3*time.Second, 10*time.Millisecond)

	// give duplicate in-flight fills time to resolve and be
	// rejected, then check the map invariant.
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 1, ledger.Count())

	pos, ok := ledger.Position(btc)
	require.True(t, ok)
	assert.Equal(t, 1, pos.Size)
	assert.Equal(t, float64(15), pos.Price)

	h.Stop()
	h.Wait()
	cancelOrders()
	<-orderDone
}
