package strategy

import (
	"tradesim/internal/indicator"
	"tradesim/internal/model"
	"tradesim/internal/model/enum"
)

// HeikinTrend smooths the raw candles with the Heikin-Ashi
// transform and follows the smoothed trend: it enters when the
// last Lookback smoothed candles agree on a direction and closes
// once the newest smoothed candle flips against the position.
type HeikinTrend struct {
	Lookback int
}

func (s HeikinTrend) Evaluate(ctx Context) (enum.Signal, bool) {
	lookback := s.Lookback
	if lookback <= 0 {
		lookback = 3
	}
	// each smoothed candle consumes a (current, prev) pair.
	if len(ctx.Candles) < lookback+1 {
		return 0, false
	}

	smoothed := make([]indicator.HeikinAshi, lookback)
	for i := 0; i < lookback; i++ {
		smoothed[i] = indicator.FromOhlc(ohlc(ctx.Candles[i]), ohlc(ctx.Candles[i+1]))
	}

	if !ctx.Position.Flat() {
		newest := smoothed[0]
		if ctx.Position.Size > 0 && newest.Close < newest.Open {
			return enum.SignalClose, true
		}
		if ctx.Position.Size < 0 && newest.Close > newest.Open {
			return enum.SignalClose, true
		}
		return 0, false
	}

	bullish, bearish := true, true
	for _, ha := range smoothed {
		bullish = bullish && ha.Close > ha.Open
		bearish = bearish && ha.Close < ha.Open
	}

	switch {
	case bullish:
		return enum.SignalLong, true
	case bearish:
		return enum.SignalShort, true
	default:
		return 0, false
	}
}

// ohlc adapts a model.Candle to the indicator view.
type ohlc model.Candle

func (c ohlc) OpenPrice() float64  { return c.Open }
func (c ohlc) HighPrice() float64  { return c.High }
func (c ohlc) LowPrice() float64   { return c.Low }
func (c ohlc) ClosePrice() float64 { return c.Close }
