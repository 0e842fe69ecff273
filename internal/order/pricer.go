package order

import (
	"math/rand"
	"sync"
	"time"

	"tradesim/internal/model"
)

// Pricer draws the fill price for a resolved submission. In this
// simulation the price source is external to the ledger; the
// default draws from a uniform range the way the synthetic feed
// does.
type Pricer interface {
	FillPrice(pair model.MarketPair) float64
}

// RandomPricer draws uniform prices from [Min, Max].
type RandomPricer struct {
	mu  sync.Mutex
	rng *rand.Rand
	min float64
	max float64
}

const (
	defaultPriceMin = 10.0
	defaultPriceMax = 20.0
)

// NewRandomPricer creates a pricer over the given range. An
// empty range falls back to the default band; a zero seed falls
// back to the wall clock.
func NewRandomPricer(min, max float64, seed int64) *RandomPricer {
	if max < min {
		min, max = max, min
	}
	if max <= min {
		min, max = defaultPriceMin, defaultPriceMax
	}
	if seed == 0 {
		seed = time.Now().UTC().UnixNano()
	}
	return &RandomPricer{
		rng: rand.New(rand.NewSource(seed)),
		min: min,
		max: max,
	}
}

func (p *RandomPricer) FillPrice(model.MarketPair) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.min + p.rng.Float64()*(p.max-p.min)
}

// FixedPricer always returns the same price. Test helper.
type FixedPricer struct {
	Price float64
}

func (p FixedPricer) FillPrice(model.MarketPair) float64 {
	return p.Price
}
