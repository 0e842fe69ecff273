package exception

import "github.com/yanun0323/errors"

var (
	ErrUnknownMarket   = errors.New("engine: unknown market")
	ErrFeedBacklog     = errors.New("engine: feed channel backlog")
	ErrEngineStopped   = errors.New("engine: stopped")
	ErrNoMarkets       = errors.New("engine: no markets configured")
	ErrDuplicateMarket = errors.New("engine: duplicate market")
)
