// Package indicator provides price-series transforms used by
// strategies for smoothing.
package indicator

// Ohlc is the minimal candle view an indicator needs.
type Ohlc interface {
	OpenPrice() float64
	HighPrice() float64
	LowPrice() float64
	ClosePrice() float64
}

// HeikinAshi is a smoothed candle derived from the current raw
// candle and its predecessor.
type HeikinAshi struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// FromOhlc builds a Heikin-Ashi candle from the current and
// previous raw candles. Open is the midpoint of the previous bar,
// close the average of the current bar.
func FromOhlc[O Ohlc](current, prev O) HeikinAshi {
	return HeikinAshi{
		Open:  (prev.OpenPrice() + prev.ClosePrice()) / 2,
		High:  max(current.HighPrice(), current.OpenPrice(), current.ClosePrice()),
		Low:   min(current.LowPrice(), current.OpenPrice(), current.ClosePrice()),
		Close: (current.OpenPrice() + current.HighPrice() + current.LowPrice() + current.ClosePrice()) / 4,
	}
}
