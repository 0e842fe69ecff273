// Package strategy defines the pluggable signal policy evaluated
// by each trader loop.
//
// A strategy sees a read-only snapshot of its market: the current
// position and a newest-first candle history. It never touches
// the ledger and is always invoked outside the ledger lock.
package strategy

import (
	"tradesim/internal/model"
	"tradesim/internal/model/enum"
)

// Context is the snapshot handed to a strategy on each tick.
// Candles are ordered newest-first and owned by the callee.
type Context struct {
	Pair     model.MarketPair
	Position model.Position
	Candles  []model.Candle
}

// SignalGenerator produces an optional trade signal for one tick.
// The second return value reports whether a signal was generated.
type SignalGenerator interface {
	Evaluate(ctx Context) (enum.Signal, bool)
}
