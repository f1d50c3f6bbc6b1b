package strategy

import (
	"errors"
	"fmt"
	"time"

	"FXSentinel/internal/model"
)

func windowSignal(status model.TradingWindowStatus, reason string) (model.MasterSignal, bool) {
	switch status {
	case model.WindowWeekend:
		return model.MasterSignal{State: model.StateWeekend, Title: "MARKET CLOSED (Weekend)", Severity: model.SeverityBlock, Reason: reason}, true
	case model.WindowRollover:
		return model.MasterSignal{State: model.StateRollover, Title: "NO TRADE (Rollover)", Severity: model.SeverityBlock, Reason: reason}, true
	}
	return model.MasterSignal{}, false
}

func dataHealthSignal(snap *model.MarketSnapshot) (model.MasterSignal, bool) {
	if snap == nil {
		return model.MasterSignal{State: model.StateNoData, Title: "NO DATA", Severity: model.SeverityBlock, Reason: "No market snapshot"}, true
	}
	if snap.Err != nil || snap.Indicators == nil {
		if errors.Is(snap.Err, model.ErrInsufficientData) {
			return model.MasterSignal{
				State:    model.StateInsufficient,
				Title:    "INSUFFICIENT HISTORY",
				Severity: model.SeverityInfo,
				Reason:   fmt.Sprintf("%s: not enough daily bars for ATR", snap.Instrument.DisplayName),
			}, true
		}
		msg := snap.Error
		if msg == "" {
			msg = "no indicators"
		}
		return model.MasterSignal{State: model.StateNoData, Title: "NO DATA", Severity: model.SeverityBlock, Reason: "Market data unavailable: " + msg}, true
	}
	if snap.IsStale {
		return model.MasterSignal{
			State:    model.StateStale,
			Title:    "STALE DATA",
			Severity: model.SeverityWarn,
			Reason:   fmt.Sprintf("Last bar is %s old, feed may be lagging", snap.StaleFor.Round(time.Second)),
		}, true
	}
	return model.MasterSignal{}, false
}

// newsSignal treats a failed feed as unverified, never as clear. A nil result
// means news checking is switched off.
func (c *Composer) newsSignal(news *model.NewsResult, now time.Time) (model.MasterSignal, bool) {
	if news == nil {
		return model.MasterSignal{}, false
	}
	if news.NewsError {
		return model.MasterSignal{
			State:    model.StateNewsUnknown,
			Title:    "NEWS UNVERIFIED",
			Severity: model.SeverityWarn,
			Reason:   "Calendar unavailable, check news manually: " + news.Error,
		}, true
	}
	for _, ev := range news.Upcoming {
		if now.Before(ev.Time.Add(-c.BlackoutBefore)) || now.After(ev.Time.Add(c.BlackoutAfter)) {
			continue
		}
		when := "in " + ev.Time.Sub(now).Round(time.Minute).String()
		if !now.Before(ev.Time) {
			when = "started " + now.Sub(ev.Time).Round(time.Minute).String() + " ago"
		}
		return model.MasterSignal{
			State:    model.StateNewsBlackout,
			Title:    "NO TRADE (News)",
			Severity: model.SeverityBlock,
			Reason:   fmt.Sprintf("%s %s at %s (%s)", ev.Currency, ev.Name, ev.Time.Format("15:04"), when),
		}, true
	}
	return model.MasterSignal{}, false
}

func (c *Composer) exhaustionSignal(ind *model.IndicatorSet, pip float64) (model.MasterSignal, bool) {
	if ind.ADRUsagePct == nil || *ind.ADRUsagePct <= c.ExhaustedPct {
		return model.MasterSignal{}, false
	}
	reason := fmt.Sprintf("Today's range is %.0f%% of ADR", *ind.ADRUsagePct)
	if ind.DayHigh != nil && ind.DayLow != nil && ind.ATRPips != nil {
		reason += fmt.Sprintf(" (%.1f of %.1f pips)", (*ind.DayHigh-*ind.DayLow)/pip, *ind.ATRPips)
	}
	return model.MasterSignal{State: model.StateExhausted, Title: "NO TRADE (Exhausted)", Severity: model.SeverityBlock, Reason: reason}, true
}

// ClassifyTrend compares price to SMA50 widened by buffer ATRs on both sides.
// Missing price, SMA or ATR yields Flat.
func ClassifyTrend(ind *model.IndicatorSet, buffer float64) model.Trend {
	if ind == nil || ind.CurrentPrice == nil || ind.SMA50 == nil || ind.ATRPrice == nil {
		return model.TrendFlat
	}
	band := buffer * *ind.ATRPrice
	switch price, sma := *ind.CurrentPrice, *ind.SMA50; {
	case price > sma+band:
		return model.TrendUp
	case price < sma-band:
		return model.TrendDown
	default:
		return model.TrendFlat
	}
}

func (c *Composer) trendSignal(trend model.Trend, ind *model.IndicatorSet, pip float64) model.MasterSignal {
	digits := priceDigits(pip)
	rsi := ind.Momentum()
	rsiText := "RSI n/a"
	if rsi != nil {
		rsiText = fmt.Sprintf("RSI %.1f", *rsi)
	}

	switch trend {
	case model.TrendUp:
		where := fmt.Sprintf("Price %.*f above SMA50 %.*f band", digits, *ind.CurrentPrice, digits, *ind.SMA50)
		if rsi != nil && *rsi > c.Overbought {
			return model.MasterSignal{State: model.StateOverbought, Title: "NO TRADE (Overbought)", Severity: model.SeverityWarn,
				Reason: fmt.Sprintf("%s but %s > %.0f", where, rsiText, c.Overbought)}
		}
		return model.MasterSignal{State: model.StateLongOnly, Title: "LONG TRADES ONLY", Severity: model.SeverityOK,
			Reason: fmt.Sprintf("%s, %s", where, rsiText)}
	case model.TrendDown:
		where := fmt.Sprintf("Price %.*f below SMA50 %.*f band", digits, *ind.CurrentPrice, digits, *ind.SMA50)
		if rsi != nil && *rsi < c.Oversold {
			return model.MasterSignal{State: model.StateOversold, Title: "NO TRADE (Oversold)", Severity: model.SeverityWarn,
				Reason: fmt.Sprintf("%s but %s < %.0f", where, rsiText, c.Oversold)}
		}
		return model.MasterSignal{State: model.StateShortOnly, Title: "SHORT TRADES ONLY", Severity: model.SeverityOK,
			Reason: fmt.Sprintf("%s, %s", where, rsiText)}
	}

	reason := "SMA50 or ATR unavailable"
	if ind.CurrentPrice != nil && ind.SMA50 != nil && ind.ATRPrice != nil {
		reason = fmt.Sprintf("Price %.*f within SMA50 %.*f ± %.1f ATR, %s",
			digits, *ind.CurrentPrice, digits, *ind.SMA50, c.TrendBuffer, rsiText)
	}
	return model.MasterSignal{State: model.StateConsolidation, Title: "CONSOLIDATION", Severity: model.SeverityInfo, Reason: reason}
}

// priceDigits is the number of decimals that shows a tenth of a pip.
func priceDigits(pip float64) int {
	if pip >= model.PipUnitJPY {
		return 3
	}
	return 5
}
