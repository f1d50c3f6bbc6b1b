package model

import "time"

// IndicatorSet holds the indicators derived from one fetch. A nil field means
// the series was too short to compute it.
type IndicatorSet struct {
	ATRPrice     *float64 `json:"atr_price,omitempty"`
	ATRPips      *float64 `json:"atr_pips,omitempty"`
	RSIM30       *float64 `json:"rsi_m30,omitempty"`
	RSIDaily     *float64 `json:"rsi_daily,omitempty"`
	SMA50        *float64 `json:"sma50,omitempty"`
	ADRUsagePct  *float64 `json:"adr_usage_pct,omitempty"`
	CurrentPrice *float64 `json:"current_price,omitempty"`
	DayHigh      *float64 `json:"day_high,omitempty"`
	DayLow       *float64 `json:"day_low,omitempty"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Momentum returns the RSI the composer reads: M30 when present, else daily.
func (s *IndicatorSet) Momentum() *float64 {
	if s == nil {
		return nil
	}
	if s.RSIM30 != nil {
		return s.RSIM30
	}
	return s.RSIDaily
}

// MarketSnapshot is the cached result of one fetch-and-compute cycle.
type MarketSnapshot struct {
	Instrument Instrument    `json:"instrument"`
	Indicators *IndicatorSet `json:"indicators,omitempty"`
	IsStale    bool          `json:"is_stale"`
	StaleFor   time.Duration `json:"stale_for,omitempty"`
	Error      string        `json:"error,omitempty"`
	Err        error         `json:"-"`
	FetchedAt  time.Time     `json:"fetched_at"`
	LastBarAt  time.Time     `json:"last_bar_at,omitempty"`
}

// OK reports whether the snapshot carries usable indicators.
func (s *MarketSnapshot) OK() bool {
	return s != nil && s.Err == nil && s.Indicators != nil
}
