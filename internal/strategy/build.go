package strategy

import (
	"encoding/json"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
)

const (
	NameSimple      = "simple"
	NameRSI         = "rsi"
	NameHeikinTrend = "heikin"
)

// Build resolves a strategy by its configured name. Options are
// the raw JSON blob from the market's config entry; absent or
// null options fall back to defaults.
func Build(name string, options json.RawMessage) (SignalGenerator, error) {
	switch name {
	case NameSimple, "":
		return Simple{}, nil

	case NameRSI:
		opts := struct {
			Period int `json:"period"`
		}{Period: 14}
		if err := unmarshalOptions(options, &opts); err != nil {
			return nil, err
		}
		if opts.Period <= 0 {
			return nil, errors.Errorf("rsi period must be > 0, got %d", opts.Period)
		}
		return RSI{Period: opts.Period}, nil

	case NameHeikinTrend:
		opts := struct {
			Lookback int `json:"lookback"`
		}{Lookback: 3}
		if err := unmarshalOptions(options, &opts); err != nil {
			return nil, err
		}
		if opts.Lookback <= 0 {
			return nil, errors.Errorf("heikin lookback must be > 0, got %d", opts.Lookback)
		}
		return HeikinTrend{Lookback: opts.Lookback}, nil

	default:
		return nil, errors.Errorf("unknown strategy %q", name)
	}
}

func unmarshalOptions(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "unmarshal strategy options")
	}
	return nil
}
