package strategy

import (
	"tradesim/internal/model"
	"tradesim/internal/model/enum"
)

const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0
)

// RSI trades on the relative strength index of closing prices.
// Flat markets enter long when oversold and short when
// overbought; positioned markets close once the latest close
// moves against the entry price.
type RSI struct {
	Period int
}

func (s RSI) Evaluate(ctx Context) (enum.Signal, bool) {
	if len(ctx.Candles) == 0 {
		return 0, false
	}

	if !ctx.Position.Flat() {
		latest := ctx.Candles[0]
		if underwater(ctx.Position, latest.Close) {
			return enum.SignalClose, true
		}
		return 0, false
	}

	value, ok := rsi(ctx.Candles, s.Period)
	if !ok {
		return 0, false
	}

	switch {
	case value <= rsiOversold:
		return enum.SignalLong, true
	case value >= rsiOverbought:
		return enum.SignalShort, true
	default:
		return 0, false
	}
}

func underwater(pos model.Position, lastClose float64) bool {
	if pos.Size > 0 {
		return lastClose < pos.Price
	}
	return lastClose > pos.Price
}

// rsi computes a simple-average RSI over the newest-first candle
// slice. Needs period+1 closes.
func rsi(candles []model.Candle, period int) (float64, bool) {
	if period <= 0 || len(candles) < period+1 {
		return 0, false
	}

	var gains, losses float64
	// candles are newest-first; walk the last `period` deltas.
	for i := 0; i < period; i++ {
		delta := candles[i].Close - candles[i+1].Close
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	if losses == 0 {
		if gains == 0 {
			return 50, true
		}
		return 100, true
	}

	rs := (gains / float64(period)) / (losses / float64(period))
	return 100 - 100/(1+rs), true
}
