// Package strategy composes market data, news and the trading window into a
// single master signal.
package strategy

import (
	"time"

	"FXSentinel/internal/model"
)

// Input is everything the composer looks at for one evaluation.
type Input struct {
	Window       model.TradingWindowStatus
	WindowReason string
	Snapshot     *model.MarketSnapshot
	News         *model.NewsResult
	Now          time.Time
}

// Composer holds the thresholds of the decision chain.
type Composer struct {
	BlackoutBefore time.Duration // block this long before a relevant event
	BlackoutAfter  time.Duration // and this long after it started
	TrendBuffer    float64       // SMA50 band half-width in ATRs
	Overbought     float64
	Oversold       float64
	ExhaustedPct   float64 // ADR usage above this blocks new entries
}

// NewComposer returns the default thresholds: 30/60 minute news blackout,
// 0.5 ATR trend band, RSI 70/30 and 100% ADR.
func NewComposer() *Composer {
	return &Composer{
		BlackoutBefore: 30 * time.Minute,
		BlackoutAfter:  60 * time.Minute,
		TrendBuffer:    0.5,
		Overbought:     70,
		Oversold:       30,
		ExhaustedPct:   100,
	}
}

// Compose walks the checks in precedence order (window, data health, news,
// exhaustion, trend) and returns the first non-normal result. When every
// gate passes the trend and momentum decide the direction.
func (c *Composer) Compose(in Input) model.MasterSignal {
	if sig, ok := windowSignal(in.Window, in.WindowReason); ok {
		return sig
	}
	if sig, ok := dataHealthSignal(in.Snapshot); ok {
		return sig
	}
	if sig, ok := c.newsSignal(in.News, in.Now); ok {
		return sig
	}

	ind := in.Snapshot.Indicators
	pip := in.Snapshot.Instrument.PipUnit
	if sig, ok := c.exhaustionSignal(ind, pip); ok {
		return sig
	}

	trend := ClassifyTrend(ind, c.TrendBuffer)
	return c.trendSignal(trend, ind, pip)
}
