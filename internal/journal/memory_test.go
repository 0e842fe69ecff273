package journal

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradesim/internal/model"
	"tradesim/internal/model/enum"
)

func TestMemoryRecord(t *testing.T) {
	m := NewMemory()
	pair := model.NewMarketPair("BTC", "USD")

	entry := NewEntry("engine-1", pair, enum.SignalLong, model.Position{Size: 1, Price: 15})
	require.NoError(t, m.Record(context.Background(), entry))

	entries := m.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "BTC", entries[0].Asset)
	assert.Equal(t, enum.SignalLong, entries[0].Action)
	assert.Equal(t, 1, entries[0].Size)
	assert.False(t, entries[0].FilledAt.IsZero())
}

func TestMemoryConcurrentRecord(t *testing.T) {
	m := NewMemory()
	pair := model.NewMarketPair("SOL", "USD")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Record(context.Background(), NewEntry("e", pair, enum.SignalClose, model.Position{}))
		}()
	}
	wg.Wait()

	assert.Len(t, m.Entries(), 16)
	require.NoError(t, m.Close())
}
