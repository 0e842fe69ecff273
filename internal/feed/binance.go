package feed

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"github.com/yanun0323/pkg/ws"

	"tradesim/internal/model"
)

const _binanceBaseWsUrl = "wss://stream.binance.com:9443/ws"

const _binanceSubscribeID = 1

// Binance streams closed klines as candles. It is a drop-in
// replacement for the synthetic generator behind the same Sink
// seam.
type Binance struct {
	wss     *ws.WebSocket
	markets map[string]model.MarketPair
}

// NewBinance maps each market to its exchange symbol
// (asset+base, upper-cased; a USD base is quoted as USDT).
func NewBinance(ctx context.Context, markets []model.MarketPair) *Binance {
	bySymbol := make(map[string]model.MarketPair, len(markets))
	for _, pair := range markets {
		bySymbol[binanceSymbol(pair)] = pair
	}
	return &Binance{
		wss:     ws.New(ctx, _binanceBaseWsUrl),
		markets: bySymbol,
	}
}

func binanceSymbol(pair model.MarketPair) string {
	base := pair.Base
	if strings.EqualFold(base, "USD") {
		base = "USDT"
	}
	return strings.ToUpper(pair.Asset + base)
}

func (repo *Binance) StartWebsocket(ctx context.Context) error {
	if err := repo.wss.Start(ctx); err != nil {
		return errors.Wrap(err, "start wss")
	}
	return nil
}

func (repo *Binance) Close() {
	repo.wss.Close()
}

type binanceSubscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

type binanceSubscribeResponse struct {
	ID     int64 `json:"id"`
	Result any   `json:"result"`
}

// SubscribeKlines subscribes the kline stream for every mapped
// market at the given interval (e.g. "1m").
func (repo *Binance) SubscribeKlines(ctx context.Context, interval string) error {
	params := make([]string, 0, len(repo.markets))
	for symbol := range repo.markets {
		params = append(params, fmt.Sprintf("%s@kline_%s", strings.ToLower(symbol), interval))
	}

	appendIntoRegister := true
	if err := repo.wss.SendAndWait(ctx, ws.Sidecar{
		Sender: func(ctx context.Context, client *ws.WebSocket) error {
			payload := binanceSubscribeRequest{
				Method: "SUBSCRIBE",
				Params: params,
				ID:     _binanceSubscribeID,
			}
			if err := client.WriteJSON(payload); err != nil {
				return errors.Wrap(err, "write subscribe payload").With("payload", payload)
			}
			return nil
		},
		Waiter: func(ctx context.Context, m ws.Message) (bool, error) {
			resp, ok := ws.ReadMessage[binanceSubscribeResponse](m)
			if !ok || resp.ID != _binanceSubscribeID {
				return false, nil
			}
			if resp.Result != nil {
				return false, errors.Errorf("subscribe klines, err: %+v", resp.Result)
			}
			return true, nil
		},
	}, appendIntoRegister); err != nil {
		return errors.Wrap(err, "send and wait")
	}

	return nil
}

type binanceKlineEvent struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Kline     struct {
		StartTime int64           `json:"t"`
		Open      decimal.Decimal `json:"o"`
		High      decimal.Decimal `json:"h"`
		Low       decimal.Decimal `json:"l"`
		Close     decimal.Decimal `json:"c"`
		Volume    decimal.Decimal `json:"v"`
		Final     bool            `json:"x"`
	} `json:"k"`
}

// Run forwards closed klines into the sink until the context is
// done or the process shuts down.
func (repo *Binance) Run(ctx context.Context, sink Sink) (unsubscribe func()) {
	ch, cancel := repo.wss.Subscribe()

	go func() {
		defer cancel()
		for {
			select {
			case <-sys.Shutdown():
				return
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}

				event, ok := ws.ReadMessage[binanceKlineEvent](m)
				if !ok || event.EventType != "kline" {
					continue
				}
				// only completed candles enter the history.
				if !event.Kline.Final {
					continue
				}

				pair, ok := repo.markets[event.Symbol]
				if !ok {
					continue
				}

				candle, err := event.candle()
				if err != nil {
					logs.Errorf("%s: parse kline, err: %+v", pair, err)
					continue
				}

				if err := sink.Push(pair, candle); err != nil {
					logs.Warnf("%s: push kline, err: %+v", pair, err)
				}
			}
		}
	}()

	return cancel
}

func (e binanceKlineEvent) candle() (model.Candle, error) {
	open, err := parsePrice(e.Kline.Open)
	if err != nil {
		return model.Candle{}, err
	}
	high, err := parsePrice(e.Kline.High)
	if err != nil {
		return model.Candle{}, err
	}
	low, err := parsePrice(e.Kline.Low)
	if err != nil {
		return model.Candle{}, err
	}
	closePrice, err := parsePrice(e.Kline.Close)
	if err != nil {
		return model.Candle{}, err
	}
	volume, err := parsePrice(e.Kline.Volume)
	if err != nil {
		return model.Candle{}, err
	}

	return model.Candle{
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    int64(volume),
		Timestamp: e.Kline.StartTime / 1000,
	}, nil
}

func parsePrice(d decimal.Decimal) (float64, error) {
	value, err := strconv.ParseFloat(d.String(), 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse decimal")
	}
	return value, nil
}
