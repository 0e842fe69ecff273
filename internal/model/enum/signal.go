package enum

// Signal is a strategy decision for a single market.
type Signal uint8

const (
	_signal_beg Signal = iota
	SignalLong
	SignalShort
	SignalClose
	SignalReverse
	_signal_end
)

func (s Signal) IsAvailable() bool {
	return s > _signal_beg && s < _signal_end
}

func (s Signal) String() string {
	switch s {
	case SignalLong:
		return "long"
	case SignalShort:
		return "short"
	case SignalClose:
		return "close"
	case SignalReverse:
		return "reverse"
	default:
		return "unknown"
	}
}
