// Package risk turns ATR into stop-loss and take-profit levels.
package risk

import (
	"fmt"

	"FXSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// Default multipliers applied to ATR.
const (
	DefaultSLMultiplier = 0.50
	DefaultTPMultiplier = 1.00
)

// Defaults returns the default risk parameters.
func Defaults() model.RiskParameters {
	return model.RiskParameters{SLMultiplier: DefaultSLMultiplier, TPMultiplier: DefaultTPMultiplier}
}

// Validate rejects non-positive multipliers.
func Validate(p model.RiskParameters) error {
	if p.SLMultiplier <= 0 {
		return fmt.Errorf("sl multiplier must be positive, got %v", p.SLMultiplier)
	}
	if p.TPMultiplier <= 0 {
		return fmt.Errorf("tp multiplier must be positive, got %v", p.TPMultiplier)
	}
	return nil
}

// Size computes SL/TP distances in pips and, when a price is known, the
// matching long and short price levels. Returns nil without ATR.
func Size(ind *model.IndicatorSet, pipUnit float64, p model.RiskParameters) *model.RiskLevels {
	if ind == nil || ind.ATRPips == nil || pipUnit <= 0 {
		return nil
	}

	atr := decimal.NewFromFloat(*ind.ATRPips)
	sl := atr.Mul(decimal.NewFromFloat(p.SLMultiplier)).Round(1)
	tp := atr.Mul(decimal.NewFromFloat(p.TPMultiplier)).Round(1)

	levels := &model.RiskLevels{
		SLPips: sl.InexactFloat64(),
		TPPips: tp.InexactFloat64(),
	}
	if ind.CurrentPrice == nil {
		return levels
	}

	pip := decimal.NewFromFloat(pipUnit)
	places := -pip.Exponent() + 1
	price := decimal.NewFromFloat(*ind.CurrentPrice)
	slDist := sl.Mul(pip)
	tpDist := tp.Mul(pip)

	level := func(d decimal.Decimal) *float64 {
		return model.Float(d.Round(places).InexactFloat64())
	}
	levels.SLPriceLong = level(price.Sub(slDist))
	levels.TPPriceLong = level(price.Add(tpDist))
	levels.SLPriceShort = level(price.Add(slDist))
	levels.TPPriceShort = level(price.Sub(tpDist))
	return levels
}
