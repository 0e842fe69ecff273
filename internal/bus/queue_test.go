package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradesim/internal/model"
	"tradesim/internal/model/enum"
	"tradesim/pkg/exception"
)

func submission(asset string) model.Submission {
	return model.Submission{
		Signal: enum.SignalLong,
		Pair:   model.NewMarketPair(asset, "USD"),
	}
}

func TestTryPublishFull(t *testing.T) {
	q := NewQueue(2)

	require.NoError(t, q.TryPublish(submission("BTC")))
	require.NoError(t, q.TryPublish(submission("SOL")))

	err := q.TryPublish(submission("SUI"))
	assert.ErrorIs(t, err, exception.ErrSubmissionQueueFull)
}

func TestTryPublishClosed(t *testing.T) {
	q := NewQueue(2)
	q.Close()
	q.Close() // idempotent

	err := q.TryPublish(submission("BTC"))
	assert.ErrorIs(t, err, exception.ErrSubmissionQueueClosed)
}

func TestRunDrainsThenExits(t *testing.T) {
	q := NewQueue(4)
	require.NoError(t, q.TryPublish(submission("BTC")))
	require.NoError(t, q.TryPublish(submission("SOL")))
	q.Close()

	var seen []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Run(context.Background(), func(s model.Submission) {
			seen = append(seen, s.Pair.Asset)
		})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not exit after close")
	}
	assert.Equal(t, []string{"BTC", "SOL"}, seen)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Run(ctx, func(model.Submission) {})
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not observe context cancellation")
	}
}
