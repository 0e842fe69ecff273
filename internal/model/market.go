package model

// MarketPair identifies a tradable instrument as asset + quote.
// It is the partition key for trader loops, feed channels and
// ledger entries; value equality makes it usable as a map key.
type MarketPair struct {
	Asset string
	Base  string
}

func NewMarketPair(asset, base string) MarketPair {
	return MarketPair{Asset: asset, Base: base}
}

func (p MarketPair) String() string {
	if p.Base == "" {
		return p.Asset
	}
	return p.Asset + "/" + p.Base
}

// Candle is one OHLCV price bar. Produced externally, immutable.
type Candle struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
	Timestamp int64
}
