// Package series prepares raw daily bars for indicator computation.
package series

import (
	"fmt"
	"time"

	"FXSentinel/internal/model"
)

// MinBars is the shortest cleaned daily series accepted: a 14-bar ATR window
// plus buffer for the previous close and the still-forming bar.
const MinBars = 18

// PurgeSundays drops bars whose session date falls on Sunday. Sunday sessions
// are a few hours long and would drag the rolling range down. Only meant for
// daily bars. The input slice is not modified.
func PurgeSundays(bars []model.OHLCV) []model.OHLCV {
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		if b.Time.Weekday() == time.Sunday {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Clean purges Sunday bars and enforces MinBars.
func Clean(daily []model.OHLCV) ([]model.OHLCV, error) {
	cleaned := PurgeSundays(daily)
	if len(cleaned) < MinBars {
		return nil, fmt.Errorf("%d daily bars after cleaning, need %d: %w", len(cleaned), MinBars, model.ErrInsufficientData)
	}
	return cleaned, nil
}

// StableIndex is the index of the last fully closed bar. The latest bar may
// still be forming, so sizing reads the one before it.
func StableIndex(bars []model.OHLCV) int {
	return len(bars) - 2
}

// Latest returns the most recent bar, closed or not.
func Latest(bars []model.OHLCV) (model.OHLCV, bool) {
	if len(bars) == 0 {
		return model.OHLCV{}, false
	}
	return bars[len(bars)-1], true
}
