package strategy

import (
	"github.com/yanun0323/logs"

	"tradesim/internal/model/enum"
)

// Simple opens a long as soon as the market is flat and at least
// one candle has arrived. It never exits; useful as a smoke-test
// policy and in end-to-end tests.
type Simple struct{}

func (Simple) Evaluate(ctx Context) (enum.Signal, bool) {
	if len(ctx.Candles) == 0 {
		logs.Warnf("%s: no candles yet", ctx.Pair)
		return 0, false
	}

	if ctx.Position.Flat() {
		return enum.SignalLong, true
	}

	return 0, false
}
