package calculator

import (
	"math"

	"FXSentinel/internal/model"
)

// ATRPeriod is the default ATR lookback.
const ATRPeriod = 14

// TrueRange returns max(H-L, |H-Cprev|, |L-Cprev|) for bar i.
// The first bar has no previous close and yields false.
func TrueRange(bars []model.OHLCV, i int) (float64, bool) {
	if i <= 0 || i >= len(bars) {
		return 0, false
	}
	prevClose := bars[i-1].Close
	hl := bars[i].High - bars[i].Low
	hc := math.Abs(bars[i].High - prevClose)
	lc := math.Abs(bars[i].Low - prevClose)
	return math.Max(hl, math.Max(hc, lc)), true
}

// ATRAt is the arithmetic mean of the period True Ranges ending at idx.
// Not Wilder-smoothed.
func ATRAt(bars []model.OHLCV, period, idx int) (float64, bool) {
	if period <= 0 || idx >= len(bars) || idx-period+1 < 1 {
		return 0, false
	}
	sum := 0.0
	for i := idx - period + 1; i <= idx; i++ {
		tr, _ := TrueRange(bars, i)
		sum += tr
	}
	return sum / float64(period), true
}

// ATR returns the rolling ATR at the latest bar.
func ATR(bars []model.OHLCV, period int) (float64, bool) {
	return ATRAt(bars, period, len(bars)-1)
}
