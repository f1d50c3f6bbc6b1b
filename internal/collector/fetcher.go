package collector

import (
	"context"

	"FXSentinel/internal/model"
)

// Bar request shapes used by the collector.
const (
	IntervalDaily = "1d"
	Interval30m   = "30m"
	RangeDaily    = "3mo"
	RangeIntraday = "5d"
)

// Fetcher retrieves OHLC bars from a market data provider. rng is a lookback
// such as "3mo" or "5d"; interval a bar size such as "1d" or "30m". Bars are
// returned ascending with unique timestamps; an empty result is not an error.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol, rng, interval string) ([]model.OHLCV, error)
	Name() string
}
