package feed

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradesim/internal/model"
)

func TestBinanceSymbol(t *testing.T) {
	assert.Equal(t, "SOLUSDT", binanceSymbol(model.NewMarketPair("SOL", "USD")))
	assert.Equal(t, "BTCEUR", binanceSymbol(model.NewMarketPair("btc", "eur")))
}

func TestKlineEventToCandle(t *testing.T) {
	payload := []byte(`{
		"e": "kline",
		"E": 1700000061000,
		"s": "SOLUSDT",
		"k": {
			"t": 1700000000000,
			"o": "58.1200",
			"h": "58.5000",
			"l": "57.9000",
			"c": "58.3300",
			"v": "1250.5",
			"x": true
		}
	}`)

	var event binanceKlineEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	require.Equal(t, "kline", event.EventType)
	require.True(t, event.Kline.Final)

	candle, err := event.candle()
	require.NoError(t, err)
	assert.Equal(t, 58.12, candle.Open)
	assert.Equal(t, 58.5, candle.High)
	assert.Equal(t, 57.9, candle.Low)
	assert.Equal(t, 58.33, candle.Close)
	assert.Equal(t, int64(1250), candle.Volume)
	assert.Equal(t, int64(1700000000), candle.Timestamp)
}
