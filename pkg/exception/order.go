package exception

import "github.com/yanun0323/errors"

var (
	ErrSubmissionQueueFull   = errors.New("order: submission queue full")
	ErrSubmissionQueueClosed = errors.New("order: submission queue closed")
	ErrFillCapacity          = errors.New("order: fill worker capacity reached")
)
