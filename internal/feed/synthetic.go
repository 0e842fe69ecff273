package feed

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/yanun0323/logs"

	"tradesim/internal/model"
	"tradesim/internal/obs"
	"tradesim/pkg/exception"
)

const (
	defaultTickInterval = 100 * time.Millisecond
	defaultPriceMin     = 10.0
	defaultPriceMax     = 20.0
	defaultVolumeMin    = 1000
	defaultVolumeMax    = 2000
)

// SyntheticConfig controls the imitation market data generator.
type SyntheticConfig struct {
	Interval time.Duration
	PriceMin float64
	PriceMax float64
	Seed     int64
}

func (c SyntheticConfig) withDefaults() SyntheticConfig {
	if c.Interval <= 0 {
		c.Interval = defaultTickInterval
	}
	if c.PriceMax <= c.PriceMin {
		c.PriceMin = defaultPriceMin
		c.PriceMax = defaultPriceMax
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UTC().UnixNano()
	}
	return c
}

// Synthetic pushes random candles into a random market at a
// fixed cadence.
type Synthetic struct {
	cfg     SyntheticConfig
	rng     *rand.Rand
	metrics *obs.Metrics
}

// NewSynthetic creates a generator. metrics may be nil.
func NewSynthetic(cfg SyntheticConfig, metrics *obs.Metrics) *Synthetic {
	cfg = cfg.withDefaults()
	return &Synthetic{
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		metrics: metrics,
	}
}

// Next draws one candle.
func (s *Synthetic) Next(now time.Time) model.Candle {
	span := s.cfg.PriceMax - s.cfg.PriceMin
	draw := func() float64 {
		return s.cfg.PriceMin + s.rng.Float64()*span
	}
	return model.Candle{
		Open:      draw(),
		High:      draw(),
		Low:       draw(),
		Close:     draw(),
		Volume:    defaultVolumeMin + s.rng.Int63n(defaultVolumeMax-defaultVolumeMin+1),
		Timestamp: now.Unix(),
	}
}

// Run generates candles until the context is done or the sink
// reports the engine stopped. A backlogged market drops that
// candle and keeps going; the drop is counted, never silent.
func (s *Synthetic) Run(ctx context.Context, sink Sink) {
	markets := sink.Markets()
	if len(markets) == 0 {
		logs.Warn("synthetic feed: no markets to feed")
		return
	}

	logs.Infof("synthetic feed started, markets=%d interval=%s", len(markets), s.cfg.Interval)
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			pair := markets[s.rng.Intn(len(markets))]
			err := sink.Push(pair, s.Next(now))
			switch {
			case err == nil:
			case errors.Is(err, exception.ErrEngineStopped):
				return
			case errors.Is(err, exception.ErrFeedBacklog):
				s.metrics.IncBarDropped()
				logs.Warnf("%s: feed backlog, candle dropped", pair)
			default:
				logs.Errorf("%s: push candle, err: %+v", pair, err)
			}
		}
	}
}
