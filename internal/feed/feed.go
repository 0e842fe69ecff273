// Package feed produces price candles for the trading engine.
//
// Producers are external to the concurrency core: they only see
// the Sink surface and push well-formed candles through it.
package feed

import "tradesim/internal/model"

// Sink accepts candles for a market. The engine handle satisfies
// it; a full channel surfaces an error so producers observe
// backpressure.
type Sink interface {
	Push(pair model.MarketPair, c model.Candle) error
	Markets() []model.MarketPair
}
