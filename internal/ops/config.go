// Package ops loads and resolves the engine configuration.
package ops

import (
	"encoding/json"
	"os"
	"time"

	"github.com/yanun0323/errors"

	"tradesim/pkg/conn"
)

// Duration accepts either a Go duration string ("300ms") or a
// plain nanosecond count in JSON.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return errors.Wrap(err, "parse duration")
		}
		*d = Duration(parsed)
		return nil
	}

	var nanos int64
	if err := json.Unmarshal(data, &nanos); err != nil {
		return err
	}
	*d = Duration(nanos)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Engine    EngineConfig    `json:"engine"`
	Markets   []MarketConfig  `json:"markets"`
	Feed      FeedConfig      `json:"feed"`
	Journal   JournalConfig   `json:"journal"`
	Profiling ProfilingConfig `json:"profiling"`
}

// EngineConfig sizes the channels and the fill pipeline.
type EngineConfig struct {
	SubmissionQueue int      `json:"submissionQueue"`
	FeedQueue       int      `json:"feedQueue"`
	CommandQueue    int      `json:"commandQueue"`
	HistorySize     int      `json:"historySize"`
	FillLatency     Duration `json:"fillLatency"`
	FillWorkers     int      `json:"fillWorkers"`
}

// StrategyConfig selects a signal policy by name. Options are
// forwarded verbatim to the strategy factory.
type StrategyConfig struct {
	Name    string          `json:"name"`
	Options json.RawMessage `json:"options"`
}

// MarketConfig describes one traded market.
type MarketConfig struct {
	Asset    string         `json:"asset"`
	Base     string         `json:"base"`
	TickRate Duration       `json:"tickRate"`
	Strategy StrategyConfig `json:"strategy"`
}

// FeedConfig selects and tunes the candle producer.
type FeedConfig struct {
	Source        string   `json:"source"` // synthetic | binance
	Interval      Duration `json:"interval"`
	PriceMin      float64  `json:"priceMin"`
	PriceMax      float64  `json:"priceMax"`
	KlineInterval string   `json:"klineInterval"`
}

// JournalConfig enables the fill journal.
type JournalConfig struct {
	Enable   bool        `json:"enable"`
	Postgres conn.Option `json:"postgres"`
}

// ProfilingConfig enables continuous profiling.
type ProfilingConfig struct {
	Enable        bool   `json:"enable"`
	ServerAddress string `json:"serverAddress"`
}

const (
	FeedSourceSynthetic = "synthetic"
	FeedSourceBinance   = "binance"

	defaultTickRate        = 5 * time.Second
	defaultSubmissionQueue = 128
	defaultFeedQueue       = 512
	defaultCommandQueue    = 16
	defaultHistorySize     = 1024
	defaultKlineInterval   = "1m"
)

// Default returns the config used when no file is provided: the
// four demo markets of the simulator.
func Default() FileConfig {
	cfg := FileConfig{
		Markets: []MarketConfig{
			{Asset: "SUI", Base: "USD", TickRate: Duration(5 * time.Second), Strategy: StrategyConfig{Name: "rsi"}},
			{Asset: "SOL", Base: "USD", TickRate: Duration(2 * time.Second), Strategy: StrategyConfig{Name: "simple"}},
			{Asset: "BTC", Base: "USD", TickRate: Duration(15 * time.Second), Strategy: StrategyConfig{Name: "rsi"}},
			{Asset: "NQ", Base: "", TickRate: Duration(30 * time.Second), Strategy: StrategyConfig{Name: "simple"}},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates a JSON config file.
func Load(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, errors.Wrap(err, "read config")
	}

	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return FileConfig{}, errors.Wrap(err, "unmarshal config")
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

func (c *FileConfig) applyDefaults() {
	if c.Engine.SubmissionQueue <= 0 {
		c.Engine.SubmissionQueue = defaultSubmissionQueue
	}
	if c.Engine.FeedQueue <= 0 {
		c.Engine.FeedQueue = defaultFeedQueue
	}
	if c.Engine.CommandQueue <= 0 {
		c.Engine.CommandQueue = defaultCommandQueue
	}
	if c.Engine.HistorySize <= 0 {
		c.Engine.HistorySize = defaultHistorySize
	}
	if c.Feed.Source == "" {
		c.Feed.Source = FeedSourceSynthetic
	}
	if c.Feed.KlineInterval == "" {
		c.Feed.KlineInterval = defaultKlineInterval
	}
	for i := range c.Markets {
		if c.Markets[i].TickRate <= 0 {
			c.Markets[i].TickRate = Duration(defaultTickRate)
		}
	}
}

// Validate rejects configs the engine cannot start with.
func (c FileConfig) Validate() error {
	if len(c.Markets) == 0 {
		return errors.New("config: no markets")
	}

	seen := make(map[string]struct{}, len(c.Markets))
	for _, m := range c.Markets {
		if m.Asset == "" {
			return errors.New("config: market with empty asset")
		}
		key := m.Asset + "/" + m.Base
		if _, dup := seen[key]; dup {
			return errors.Errorf("config: duplicate market %s", key)
		}
		seen[key] = struct{}{}
	}

	switch c.Feed.Source {
	case FeedSourceSynthetic, FeedSourceBinance:
	default:
		return errors.Errorf("config: unknown feed source %q", c.Feed.Source)
	}

	return nil
}
