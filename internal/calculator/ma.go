package calculator

import (
	"time"

	"FXSentinel/internal/model"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
)

// SMA computes the simple moving average of the trailing period closes.
// Returns false when fewer than period closes are available.
func SMA(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}
	series := closeSeries(closes)
	sma := techan.NewSimpleMovingAverage(techan.NewClosePriceIndicator(series), period)
	return sma.Calculate(series.LastIndex()).Float(), true
}

// SMA50 returns the 50-bar simple moving average of daily closes.
func SMA50(dailyBars []model.OHLCV) (float64, bool) {
	return SMA(Closes(dailyBars), 50)
}

// closeSeries loads closes into a techan series. Candle periods are synthetic
// and evenly spaced; only the close price feeds the indicator.
func closeSeries(closes []float64) *techan.TimeSeries {
	series := techan.NewTimeSeries()
	start := time.Unix(0, 0).UTC()
	for i, c := range closes {
		period := techan.NewTimePeriod(start.Add(time.Duration(2*i)*time.Minute), time.Minute)
		candle := techan.NewCandle(period)
		candle.OpenPrice = big.NewDecimal(c)
		candle.MaxPrice = big.NewDecimal(c)
		candle.MinPrice = big.NewDecimal(c)
		candle.ClosePrice = big.NewDecimal(c)
		series.AddCandle(candle)
	}
	return series
}

// Closes extracts close prices in bar order.
func Closes(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
