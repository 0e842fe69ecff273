package model

// Position is the open exposure for one market.
// Size is signed: positive long, negative short, zero flat.
// Price is the entry price determined at fill time.
type Position struct {
	Size  int
	Price float64
}

func (p Position) Flat() bool {
	return p.Size == 0
}
