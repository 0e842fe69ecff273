package history

import "tradesim/internal/model"

// Ring is a bounded candle history owned by exactly one trader
// loop. Candles are pushed as they arrive; once the capacity is
// reached the oldest candle is evicted. Reads are newest-first.
type Ring struct {
	candles []model.Candle
	size    int
	index   int
	filled  bool
}

// New allocates a ring with the given capacity.
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring{
		candles: make([]model.Candle, capacity),
		size:    capacity,
	}
}

// Push records a new candle, evicting the oldest when full.
func (r *Ring) Push(c model.Candle) {
	r.candles[r.index] = c
	r.index = (r.index + 1) % r.size
	if r.index == 0 {
		r.filled = true
	}
}

// Len returns the number of stored candles.
func (r *Ring) Len() int {
	if r.filled {
		return r.size
	}
	return r.index
}

// At returns the i-th candle counting back from the newest.
// At(0) is the most recent push.
func (r *Ring) At(i int) (model.Candle, bool) {
	if i < 0 || i >= r.Len() {
		return model.Candle{}, false
	}
	idx := (r.index - 1 - i + r.size) % r.size
	return r.candles[idx], true
}

// Snapshot copies the stored candles newest-first. The copy is
// handed to strategies so the loop-local ring is never shared.
func (r *Ring) Snapshot() []model.Candle {
	length := r.Len()
	out := make([]model.Candle, 0, length)
	for i := 0; i < length; i++ {
		c, _ := r.At(i)
		out = append(out, c)
	}
	return out
}
