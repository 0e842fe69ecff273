package model

import "tradesim/internal/model/enum"

// Command is a control signal broadcast to every trader loop.
// Pair and Position are only meaningful for CommandAddPosition;
// each loop decides applicability on its own.
type Command struct {
	Kind     enum.CommandKind
	Pair     MarketPair
	Position Position
}

// Submission is the unit sent from a trader loop to the order
// engine. The fill price is drawn at resolution time, so it only
// carries the decision and its market.
type Submission struct {
	Signal enum.Signal
	Pair   MarketPair
}
