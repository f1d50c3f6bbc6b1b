package model

import (
	"strings"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Pip units for the two quote conventions.
const (
	PipUnitStandard = 0.0001
	PipUnitJPY      = 0.01
)

// Instrument maps a display pair to the provider ticker and its pip size.
type Instrument struct {
	DisplayName string  `json:"display_name" yaml:"display_name"`
	Ticker      string  `json:"ticker" yaml:"ticker"`
	PipUnit     float64 `json:"pip_unit" yaml:"pip_unit"`
}

// DefaultInstruments is the built-in pair table.
var DefaultInstruments = []Instrument{
	{DisplayName: "EUR/USD", Ticker: "EURUSD=X", PipUnit: PipUnitStandard},
	{DisplayName: "USD/JPY", Ticker: "JPY=X", PipUnit: PipUnitJPY},
}

// PipUnitFor derives the pip size from a pair name. Yen-quoted pairs use 0.01.
func PipUnitFor(pair string) float64 {
	if strings.Contains(strings.ToUpper(pair), "JPY") {
		return PipUnitJPY
	}
	return PipUnitStandard
}

// Currencies splits "EUR/USD" into its two ISO codes.
func (i Instrument) Currencies() (base, quote string) {
	parts := strings.SplitN(strings.ToUpper(i.DisplayName), "/", 2)
	if len(parts) != 2 {
		return strings.TrimSpace(parts[0]), ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}
