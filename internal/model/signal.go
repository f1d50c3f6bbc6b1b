package model

// Severity tags a MasterSignal for presentation.
type Severity string

const (
	SeverityOK    Severity = "ok"
	SeverityWarn  Severity = "warn"
	SeverityBlock Severity = "block"
	SeverityInfo  Severity = "info"
)

// SignalState identifies the terminal state of the decision chain.
type SignalState string

const (
	StateWeekend       SignalState = "WEEKEND"
	StateRollover      SignalState = "ROLLOVER"
	StateNoData        SignalState = "NO_DATA"
	StateInsufficient  SignalState = "INSUFFICIENT_HISTORY"
	StateStale         SignalState = "STALE_DATA"
	StateNewsUnknown   SignalState = "NEWS_UNVERIFIED"
	StateNewsBlackout  SignalState = "NEWS_BLACKOUT"
	StateExhausted     SignalState = "EXHAUSTED"
	StateConsolidation SignalState = "CONSOLIDATION"
	StateOverbought    SignalState = "OVERBOUGHT"
	StateOversold      SignalState = "OVERSOLD"
	StateLongOnly      SignalState = "LONG_ONLY"
	StateShortOnly     SignalState = "SHORT_ONLY"
)

// MasterSignal is the final output of the signal composer.
type MasterSignal struct {
	State    SignalState `json:"state"`
	Title    string      `json:"title"`
	Severity Severity    `json:"severity"`
	Reason   string      `json:"reason"`
}

// Trend is the price position relative to the SMA50 band.
type Trend string

const (
	TrendUp   Trend = "UP"
	TrendDown Trend = "DOWN"
	TrendFlat Trend = "FLAT"
)

// TradingWindowStatus is the wall-clock trading gate.
type TradingWindowStatus string

const (
	WindowOpen     TradingWindowStatus = "OPEN"
	WindowWeekend  TradingWindowStatus = "WEEKEND"
	WindowRollover TradingWindowStatus = "ROLLOVER"
)

// Blocked reports whether trading should be avoided regardless of market data.
func (s TradingWindowStatus) Blocked() bool { return s != WindowOpen }

// RiskParameters are the user-owned ATR multipliers.
type RiskParameters struct {
	SLMultiplier float64 `json:"sl_multiplier" yaml:"sl_multiplier"`
	TPMultiplier float64 `json:"tp_multiplier" yaml:"tp_multiplier"`
}

// RiskLevels are the sized stop-loss/take-profit distances and prices.
// Price fields are nil when no current price is known.
type RiskLevels struct {
	SLPips       float64  `json:"sl_pips"`
	TPPips       float64  `json:"tp_pips"`
	SLPriceLong  *float64 `json:"sl_price_long,omitempty"`
	TPPriceLong  *float64 `json:"tp_price_long,omitempty"`
	SLPriceShort *float64 `json:"sl_price_short,omitempty"`
	TPPriceShort *float64 `json:"tp_price_short,omitempty"`
}
