// Package journal appends executed fills to durable storage.
//
// The journal is write-only from the engine's point of view: it
// records what the order engine did, it never feeds state back
// into the ledger.
package journal

import (
	"context"
	"time"

	"tradesim/internal/model"
	"tradesim/internal/model/enum"
)

// Entry is one executed ledger mutation.
type Entry struct {
	EngineID string
	Asset    string
	Base     string
	Action   enum.Signal
	Size     int
	Price    float64
	FilledAt time.Time
}

// NewEntry builds an entry for a resolved submission.
func NewEntry(engineID string, pair model.MarketPair, action enum.Signal, pos model.Position) Entry {
	return Entry{
		EngineID: engineID,
		Asset:    pair.Asset,
		Base:     pair.Base,
		Action:   action,
		Size:     pos.Size,
		Price:    pos.Price,
		FilledAt: time.Now().UTC(),
	}
}

// Recorder persists journal entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
	Close() error
}
