package enum

// CommandKind describes the meaning of a control command.
type CommandKind uint8

const (
	CommandUnknown CommandKind = iota
	CommandForceExit
	CommandPortfolioStatus
	CommandCloseAll
	CommandAddPosition
)

func (c CommandKind) String() string {
	switch c {
	case CommandForceExit:
		return "force_exit"
	case CommandPortfolioStatus:
		return "portfolio_status"
	case CommandCloseAll:
		return "close_all"
	case CommandAddPosition:
		return "add_position"
	default:
		return "unknown"
	}
}
