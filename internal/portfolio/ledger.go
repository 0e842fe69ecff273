// Package portfolio holds the shared position ledger.
//
// The ledger is the single source of truth for open positions
// across every market. It is shared by reference between the
// order engine (writer) and every trader loop (reader), so all
// access runs inside one mutex scope. Lock scopes stay short and
// never block internally; callers must not re-enter.
package portfolio

import (
	"sync"

	"github.com/google/uuid"

	"tradesim/internal/model"
)

// Ledger maps each tracked market to at most one open position.
type Ledger struct {
	engineID uuid.UUID

	mu        sync.Mutex
	tracked   map[model.MarketPair]struct{}
	positions map[model.MarketPair]model.Position
}

// NewLedger creates an empty ledger tracking the given markets.
func NewLedger(engineID uuid.UUID, markets []model.MarketPair) *Ledger {
	tracked := make(map[model.MarketPair]struct{}, len(markets))
	for _, pair := range markets {
		tracked[pair] = struct{}{}
	}
	return &Ledger{
		engineID:  engineID,
		tracked:   tracked,
		positions: make(map[model.MarketPair]model.Position, len(markets)),
	}
}

func (l *Ledger) EngineID() uuid.UUID {
	return l.engineID
}

// Tracks reports whether the ledger was configured for the market.
func (l *Ledger) Tracks(pair model.MarketPair) bool {
	l.mu.Lock()
	_, ok := l.tracked[pair]
	l.mu.Unlock()
	return ok
}

// Position returns the open position for a market. A missing
// entry is not an error; it means the market is flat.
func (l *Ledger) Position(pair model.MarketPair) (model.Position, bool) {
	l.mu.Lock()
	pos, ok := l.positions[pair]
	l.mu.Unlock()
	return pos, ok
}

// OpenIfAbsent inserts a position only when the market has none.
// A duplicate open for an already positioned market is ignored.
func (l *Ledger) OpenIfAbsent(pair model.MarketPair, pos model.Position) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, occupied := l.positions[pair]; occupied {
		return false
	}
	l.positions[pair] = pos
	return true
}

// Close removes the market's position. No-op when absent.
func (l *Ledger) Close(pair model.MarketPair) (model.Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pos, ok := l.positions[pair]
	if ok {
		delete(l.positions, pair)
	}
	return pos, ok
}

// Reverse flips an existing position to the opposite side at the
// given price inside a single lock scope. No-op when flat.
func (l *Ledger) Reverse(pair model.MarketPair, price float64) (model.Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pos, ok := l.positions[pair]
	if !ok || pos.Size == 0 {
		return model.Position{}, false
	}
	next := model.Position{Size: -pos.Size, Price: price}
	l.positions[pair] = next
	return next, true
}

// Add force-inserts a position, used by the AddPosition control
// command. It keeps insert-if-absent semantics so an admin
// injection never clobbers a live position.
func (l *Ledger) Add(pair model.MarketPair, pos model.Position) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, occupied := l.positions[pair]; occupied {
		return false
	}
	l.positions[pair] = pos
	return true
}

// ClosedPosition records a position removed by CloseAll.
type ClosedPosition struct {
	Pair     model.MarketPair
	Position model.Position
}

// CloseAll removes every open position and returns them.
func (l *Ledger) CloseAll() []ClosedPosition {
	l.mu.Lock()
	defer l.mu.Unlock()
	closed := make([]ClosedPosition, 0, len(l.positions))
	for pair, pos := range l.positions {
		closed = append(closed, ClosedPosition{Pair: pair, Position: pos})
		delete(l.positions, pair)
	}
	return closed
}

// Snapshot is a point-in-time copy of the ledger for status
// queries and logging.
type Snapshot struct {
	EngineID  string                   `json:"engineId"`
	Positions map[string]PositionEntry `json:"positions"`
}

// PositionEntry is the serializable view of one open position.
type PositionEntry struct {
	Size  int     `json:"size"`
	Price float64 `json:"price"`
}

// Snapshot copies the current positions. The copy is taken under
// the lock; serialization happens on the caller's side.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	positions := make(map[string]PositionEntry, len(l.positions))
	for pair, pos := range l.positions {
		positions[pair.String()] = PositionEntry{Size: pos.Size, Price: pos.Price}
	}
	return Snapshot{
		EngineID:  l.engineID.String(),
		Positions: positions,
	}
}

// Count returns the number of open positions.
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.positions)
}
