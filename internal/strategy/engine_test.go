package strategy

import (
	"fmt"
	"testing"
	"time"

	"FXSentinel/internal/model"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func f(v float64) *float64 { return &v }

func snapshot(price, sma, atr, rsi, adr float64) *model.MarketSnapshot {
	return &model.MarketSnapshot{
		Instrument: model.Instrument{DisplayName: "EUR/USD", Ticker: "EURUSD=X", PipUnit: model.PipUnitStandard},
		Indicators: &model.IndicatorSet{
			CurrentPrice: f(price),
			SMA50:        f(sma),
			ATRPrice:     f(atr),
			ATRPips:      f(atr / model.PipUnitStandard),
			RSIM30:       f(rsi),
			ADRUsagePct:  f(adr),
			DayHigh:      f(price + 0.0010),
			DayLow:       f(price - 0.0010),
		},
	}
}

func open(snap *model.MarketSnapshot) Input {
	return Input{Window: model.WindowOpen, Snapshot: snap, News: &model.NewsResult{}, Now: now}
}

func TestCompose_Trend(t *testing.T) {
	c := NewComposer()
	tests := []struct {
		name  string
		snap  *model.MarketSnapshot
		state model.SignalState
		sev   model.Severity
	}{
		{"uptrend", snapshot(1.1100, 1.1000, 0.0080, 55, 40), model.StateLongOnly, model.SeverityOK},
		{"uptrend overbought", snapshot(1.1100, 1.1000, 0.0080, 75, 40), model.StateOverbought, model.SeverityWarn},
		{"downtrend", snapshot(1.0900, 1.1000, 0.0080, 45, 40), model.StateShortOnly, model.SeverityOK},
		{"downtrend oversold", snapshot(1.0900, 1.1000, 0.0080, 25, 40), model.StateOversold, model.SeverityWarn},
		{"inside band", snapshot(1.1030, 1.1000, 0.0080, 80, 40), model.StateConsolidation, model.SeverityInfo},
		{"rsi 70 is not overbought", snapshot(1.1100, 1.1000, 0.0080, 70, 40), model.StateLongOnly, model.SeverityOK},
		{"rsi 30 is not oversold", snapshot(1.0900, 1.1000, 0.0080, 30, 40), model.StateShortOnly, model.SeverityOK},
		{"adr 100 is not exhausted", snapshot(1.1100, 1.1000, 0.0080, 50, 100), model.StateLongOnly, model.SeverityOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := c.Compose(open(tt.snap))
			assert.Equal(t, tt.state, sig.State)
			assert.Equal(t, tt.sev, sig.Severity)
			assert.NotEmpty(t, sig.Reason)
		})
	}
}

func TestCompose_ExhaustedRegardlessOfTrend(t *testing.T) {
	c := NewComposer()
	for _, price := range []float64{1.0800, 1.0990, 1.1000, 1.1010, 1.1200} {
		for _, rsi := range []float64{5, 30, 50, 70, 95} {
			t.Run(fmt.Sprintf("%.4f/%.0f", price, rsi), func(t *testing.T) {
				sig := c.Compose(open(snapshot(price, 1.1000, 0.0080, rsi, 120)))
				assert.Equal(t, model.StateExhausted, sig.State)
				assert.Equal(t, "NO TRADE (Exhausted)", sig.Title)
				assert.Equal(t, model.SeverityBlock, sig.Severity)
				assert.Contains(t, sig.Reason, "120%")
			})
		}
	}
}

func TestCompose_WindowFirst(t *testing.T) {
	c := NewComposer()
	in := Input{
		Window:       model.WindowWeekend,
		WindowReason: "Weekend",
		Snapshot:     &model.MarketSnapshot{Error: "boom", Err: model.ErrFetchFailure},
		News:         &model.NewsResult{NewsError: true},
		Now:          now,
	}
	sig := c.Compose(in)
	assert.Equal(t, model.StateWeekend, sig.State)
	assert.Equal(t, "MARKET CLOSED (Weekend)", sig.Title)
	assert.Equal(t, "Weekend", sig.Reason)

	in.Window = model.WindowRollover
	sig = c.Compose(in)
	assert.Equal(t, model.StateRollover, sig.State)
	assert.Equal(t, model.SeverityBlock, sig.Severity)
}

func TestCompose_DataHealth(t *testing.T) {
	c := NewComposer()

	sig := c.Compose(open(&model.MarketSnapshot{Error: "fetch failure", Err: model.ErrFetchFailure}))
	assert.Equal(t, model.StateNoData, sig.State)
	assert.Contains(t, sig.Reason, "fetch failure")

	sig = c.Compose(open(&model.MarketSnapshot{Err: fmt.Errorf("12 bars: %w", model.ErrInsufficientData)}))
	assert.Equal(t, model.StateInsufficient, sig.State)
	assert.Equal(t, model.SeverityInfo, sig.Severity)

	stale := snapshot(1.1100, 1.1000, 0.0080, 50, 150)
	stale.IsStale = true
	stale.StaleFor = 42 * time.Minute
	sig = c.Compose(open(stale))
	assert.Equal(t, model.StateStale, sig.State, "data health precedes exhaustion")
	assert.Contains(t, sig.Reason, "42m0s")

	sig = c.Compose(open(nil))
	assert.Equal(t, model.StateNoData, sig.State)
}

func TestCompose_News(t *testing.T) {
	c := NewComposer()
	event := func(offset time.Duration) *model.NewsResult {
		return &model.NewsResult{Upcoming: []model.ClassifiedEvent{{
			NewsEvent: model.NewsEvent{Time: now.Add(offset), Currency: "USD", Name: "CPI m/m"},
			Status:    model.EventUpcoming,
		}}}
	}

	tests := []struct {
		name  string
		news  *model.NewsResult
		state model.SignalState
	}{
		{"unverified", &model.NewsResult{NewsError: true, Error: "timeout"}, model.StateNewsUnknown},
		{"in 20 minutes", event(20 * time.Minute), model.StateNewsBlackout},
		{"in 30 minutes", event(30 * time.Minute), model.StateNewsBlackout},
		{"in 2 hours", event(2 * time.Hour), model.StateLongOnly},
		{"started 45 minutes ago", event(-45 * time.Minute), model.StateNewsBlackout},
		{"nothing scheduled", &model.NewsResult{}, model.StateLongOnly},
		{"news disabled", nil, model.StateLongOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := open(snapshot(1.1100, 1.1000, 0.0080, 50, 40))
			in.News = tt.news
			assert.Equal(t, tt.state, c.Compose(in).State)
		})
	}
}

func TestCompose_NewsUnverifiedNeverClear(t *testing.T) {
	in := open(snapshot(1.1100, 1.1000, 0.0080, 50, 40))
	in.News = &model.NewsResult{NewsError: true}
	sig := NewComposer().Compose(in)
	assert.NotEqual(t, model.SeverityOK, sig.Severity)
}

func TestClassifyTrend_MissingInputs(t *testing.T) {
	ind := snapshot(1.2, 1.1, 0.01, 50, 10).Indicators
	ind.SMA50 = nil
	assert.Equal(t, model.TrendFlat, ClassifyTrend(ind, 0.5))

	ind = snapshot(1.2, 1.1, 0.01, 50, 10).Indicators
	ind.ATRPrice = nil
	assert.Equal(t, model.TrendFlat, ClassifyTrend(ind, 0.5))

	assert.Equal(t, model.TrendFlat, ClassifyTrend(nil, 0.5))
	assert.Equal(t, model.TrendUp, ClassifyTrend(snapshot(1.2, 1.1, 0.01, 50, 10).Indicators, 0.5))
}

func TestCompose_DailyRSIFallback(t *testing.T) {
	snap := snapshot(1.1100, 1.1000, 0.0080, 50, 40)
	snap.Indicators.RSIM30 = nil
	snap.Indicators.RSIDaily = f(82)
	assert.Equal(t, model.StateOverbought, NewComposer().Compose(open(snap)).State)
}
