package collector

import (
	"context"
	"fmt"
	"time"

	"FXSentinel/internal/calculator"
	"FXSentinel/internal/metrics"
	"FXSentinel/internal/model"
	"FXSentinel/internal/series"
	"FXSentinel/pkg/logger"
)

// Collector orchestrates bar fetching and indicator computation.
type Collector struct {
	Fetcher  Fetcher
	Intraday bool // fetch 30m bars for M30 RSI, live price and staleness
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, intraday bool) *Collector {
	return &Collector{Fetcher: fetcher, Intraday: intraday}
}

// Result is one fetch-and-compute cycle.
type Result struct {
	Indicators *model.IndicatorSet
	LastBarAt  time.Time // newest intraday bar, zero when intraday is off
}

// Collect fetches market data for the instrument and computes all indicators.
// Fetch failures wrap model.ErrFetchFailure; short history wraps
// model.ErrInsufficientData.
func (c *Collector) Collect(ctx context.Context, inst model.Instrument) (*Result, error) {
	daily, err := c.fetch(ctx, inst.Ticker, RangeDaily, IntervalDaily)
	if err != nil {
		return nil, err
	}
	if len(daily) == 0 {
		return nil, fmt.Errorf("no daily bars for %s: %w", inst.Ticker, model.ErrFetchFailure)
	}

	var intraday []model.OHLCV
	if c.Intraday {
		intraday, err = c.fetch(ctx, inst.Ticker, RangeIntraday, Interval30m)
		if err != nil {
			return nil, err
		}
	}

	ind, err := Compute(inst, daily, intraday)
	if err != nil {
		return nil, err
	}
	res := &Result{Indicators: ind}
	if last, ok := series.Latest(intraday); ok {
		res.LastBarAt = last.Time
	}
	return res, nil
}

func (c *Collector) fetch(ctx context.Context, symbol, rng, interval string) ([]model.OHLCV, error) {
	bars, err := c.Fetcher.FetchBars(ctx, symbol, rng, interval)
	if err != nil {
		metrics.BarFetches.WithLabelValues(c.Fetcher.Name(), interval, "error").Inc()
		logger.Warn("bar fetch failed",
			logger.String("provider", c.Fetcher.Name()),
			logger.String("symbol", symbol),
			logger.String("interval", interval),
			logger.ErrorField(err),
		)
		return nil, fmt.Errorf("fetch %s %s bars: %w: %w", symbol, interval, err, model.ErrFetchFailure)
	}
	metrics.BarFetches.WithLabelValues(c.Fetcher.Name(), interval, "ok").Inc()
	return bars, nil
}

// Compute derives the indicator set from raw daily and optional intraday bars.
// ATR is read at the last closed daily bar so the sizing value does not move
// while today's bar is still forming. RSI, SMA and today's range read the
// latest bar.
func Compute(inst model.Instrument, daily, intraday []model.OHLCV) (*model.IndicatorSet, error) {
	cleaned, err := series.Clean(daily)
	if err != nil {
		return nil, err
	}

	ind := &model.IndicatorSet{}

	atr, ok := calculator.ATRAt(cleaned, calculator.ATRPeriod, series.StableIndex(cleaned))
	if ok {
		ind.ATRPrice = model.Float(atr)
		ind.ATRPips = model.Float(calculator.ToPips(atr, inst.PipUnit))
	}

	if rsi, ok := calculator.RSI(calculator.Closes(cleaned), 14); ok {
		ind.RSIDaily = model.Float(rsi)
	}
	if sma, ok := calculator.SMA50(cleaned); ok {
		ind.SMA50 = model.Float(sma)
	}

	if high, low, ok := calculator.DayRange(cleaned); ok {
		ind.DayHigh = model.Float(high)
		ind.DayLow = model.Float(low)
		if ind.ATRPrice != nil {
			if usage, ok := calculator.ADRUsage(high, low, atr); ok {
				ind.ADRUsagePct = model.Float(usage)
			}
		}
	}

	if last, ok := series.Latest(intraday); ok {
		ind.CurrentPrice = model.Float(last.Close)
		if rsi, ok := calculator.RSI(calculator.Closes(intraday), 14); ok {
			ind.RSIM30 = model.Float(rsi)
		}
	} else if last, ok := series.Latest(cleaned); ok {
		ind.CurrentPrice = model.Float(last.Close)
	}

	return ind, nil
}
