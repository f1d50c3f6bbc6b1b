package calculator

import "FXSentinel/internal/model"

// DayRange returns the high and low of the latest bar.
func DayRange(bars []model.OHLCV) (high, low float64, ok bool) {
	if len(bars) == 0 {
		return 0, 0, false
	}
	last := bars[len(bars)-1]
	return last.High, last.Low, true
}

// ADRUsage is the share of a normal daily range already traded, in percent.
// Values above 100 mean the day has exhausted its typical range.
func ADRUsage(dayHigh, dayLow, atr float64) (float64, bool) {
	if atr <= 0 {
		return 0, false
	}
	return (dayHigh - dayLow) / atr * 100, true
}

// ToPips converts a price distance to pips.
func ToPips(price, pipUnit float64) float64 {
	return price / pipUnit
}
