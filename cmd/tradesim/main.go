package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"tradesim/internal/bus"
	"tradesim/internal/engine"
	"tradesim/internal/feed"
	"tradesim/internal/journal"
	"tradesim/internal/model"
	"tradesim/internal/obs"
	"tradesim/internal/ops"
	"tradesim/internal/order"
	"tradesim/internal/portfolio"
	"tradesim/internal/strategy"
	"tradesim/internal/trader"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config (empty = built-in demo markets)")
	feedSource := flag.String("feed", "", "Feed source override: synthetic|binance")
	runFor := flag.Duration("run-for", 0, "Stop after this duration (0 = run until signal)")
	flag.Parse()

	cfg := ops.Default()
	if *configPath != "" {
		loaded, err := ops.Load(*configPath)
		if err != nil {
			logs.Errorf("config load failed, err: %+v", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *feedSource != "" {
		cfg.Feed.Source = *feedSource
	}
	if err := cfg.Validate(); err != nil {
		logs.Errorf("config invalid, err: %+v", err)
		os.Exit(1)
	}

	if cfg.Profiling.Enable {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "tradesim",
			ServerAddress:   cfg.Profiling.ServerAddress,
		})
		if err != nil {
			logs.Warnf("profiling disabled, err: %+v", err)
		} else {
			defer func() {
				_ = profiler.Stop()
			}()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engineID := uuid.New()
	logs.Infof("starting engine %s, markets=%d feed=%s", engineID, len(cfg.Markets), cfg.Feed.Source)

	pairs := make([]model.MarketPair, 0, len(cfg.Markets))
	for _, m := range cfg.Markets {
		pairs = append(pairs, model.NewMarketPair(m.Asset, m.Base))
	}

	ledger := portfolio.NewLedger(engineID, pairs)
	metrics := obs.NewMetrics()
	queue := bus.NewQueue(cfg.Engine.SubmissionQueue)

	var recorder journal.Recorder = journal.NewMemory()
	if cfg.Journal.Enable {
		pg, err := journal.NewPostgres(cfg.Journal.Postgres)
		if err != nil {
			logs.Errorf("journal unavailable, err: %+v", err)
			os.Exit(1)
		}
		recorder = pg
	}
	defer func() {
		_ = recorder.Close()
	}()

	pricer := order.NewRandomPricer(cfg.Feed.PriceMin, cfg.Feed.PriceMax, 0)
	orderEngine := order.NewEngine(order.Config{
		FillLatency: cfg.Engine.FillLatency.Std(),
		FillWorkers: cfg.Engine.FillWorkers,
	}, queue, ledger, pricer, recorder, metrics)

	ordersDone := make(chan struct{})
	go func() {
		defer close(ordersDone)
		orderEngine.Run(ctx)
	}()

	traders := make([]*trader.Trader, 0, len(cfg.Markets))
	for i, m := range cfg.Markets {
		strat, err := strategy.Build(m.Strategy.Name, m.Strategy.Options)
		if err != nil {
			logs.Errorf("%s: strategy build failed, err: %+v", pairs[i], err)
			os.Exit(1)
		}
		traders = append(traders, trader.New(trader.Config{
			Pair:        pairs[i],
			TickRate:    m.TickRate.Std(),
			HistorySize: cfg.Engine.HistorySize,
		}, strat, ledger, queue, metrics))
	}

	handle, err := engine.New(engine.Config{
		FeedCapacity:    cfg.Engine.FeedQueue,
		CommandCapacity: cfg.Engine.CommandQueue,
	}, traders).Start()
	if err != nil {
		logs.Errorf("engine start failed, err: %+v", err)
		os.Exit(1)
	}

	if err := startFeed(ctx, cfg.Feed, pairs, handle, metrics); err != nil {
		logs.Errorf("feed start failed, err: %+v", err)
		os.Exit(1)
	}

	wait(*runFor)

	logs.Info("shutting down")
	handle.Stop()
	handle.Wait()

	// stop accepting submissions, drain the queue and let
	// in-flight fills land before reporting.
	queue.Close()
	<-ordersDone

	report(ledger, metrics)
}

func startFeed(ctx context.Context, cfg ops.FeedConfig, pairs []model.MarketPair, handle *engine.Handle, metrics *obs.Metrics) error {
	switch cfg.Source {
	case ops.FeedSourceBinance:
		binance := feed.NewBinance(ctx, pairs)
		if err := binance.StartWebsocket(ctx); err != nil {
			return err
		}
		if err := binance.SubscribeKlines(ctx, cfg.KlineInterval); err != nil {
			return err
		}
		binance.Run(ctx, handle)
		return nil

	default:
		synthetic := feed.NewSynthetic(feed.SyntheticConfig{
			Interval: cfg.Interval.Std(),
			PriceMin: cfg.PriceMin,
			PriceMax: cfg.PriceMax,
		}, metrics)
		go synthetic.Run(ctx, handle)
		return nil
	}
}

func wait(runFor time.Duration) {
	if runFor <= 0 {
		<-sys.Shutdown()
		return
	}

	timer := time.NewTimer(runFor)
	defer timer.Stop()
	select {
	case <-sys.Shutdown():
	case <-timer.C:
	}
}

func report(ledger *portfolio.Ledger, metrics *obs.Metrics) {
	positions, err := sonic.Marshal(ledger.Snapshot())
	if err == nil {
		logs.Infof("final positions %s", positions)
	}
	counters, err := sonic.Marshal(metrics.Snapshot())
	if err == nil {
		logs.Infof("run counters %s", counters)
	}
}
