package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"FXSentinel/internal/dashboard"
	"FXSentinel/internal/model"
)

var severityIcon = map[model.Severity]string{
	model.SeverityOK:    "✅",
	model.SeverityWarn:  "⚠️",
	model.SeverityBlock: "⛔",
	model.SeverityInfo:  "ℹ️",
}

// FormatSignal renders a full evaluation as a Telegram HTML message.
func FormatSignal(res *dashboard.Result) string {
	var b strings.Builder
	pip := res.Instrument.PipUnit
	digits := 5
	if pip >= model.PipUnitJPY {
		digits = 3
	}

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(res.Pair), res.EvaluatedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("%s <b>%s</b>\n", severityIcon[res.Signal.Severity], html.EscapeString(res.Signal.Title)))
	b.WriteString(fmt.Sprintf("<i>%s</i>\n\n", html.EscapeString(res.Signal.Reason)))

	if snap := res.Snapshot; snap.OK() {
		ind := snap.Indicators
		if ind.CurrentPrice != nil {
			b.WriteString(fmt.Sprintf("Price: %.*f\n", digits, *ind.CurrentPrice))
		}
		if ind.ATRPips != nil {
			b.WriteString(fmt.Sprintf("ATR(14): %.1f pips\n", *ind.ATRPips))
		}
		if rsi := ind.Momentum(); rsi != nil {
			b.WriteString(fmt.Sprintf("RSI(14): %.1f\n", *rsi))
		}
		if ind.SMA50 != nil {
			b.WriteString(fmt.Sprintf("SMA50: %.*f (%s)\n", digits, *ind.SMA50, res.Trend))
		}
		if ind.ADRUsagePct != nil {
			b.WriteString(fmt.Sprintf("ADR used: %.0f%%\n", *ind.ADRUsagePct))
		}
		if snap.IsStale {
			b.WriteString(fmt.Sprintf("⚠️ last bar %s old\n", snap.StaleFor.Round(time.Minute)))
		}
	} else if snap != nil && snap.Error != "" {
		b.WriteString(fmt.Sprintf("Data error: %s\n", html.EscapeString(snap.Error)))
	}

	if lv := res.Risk; lv != nil {
		b.WriteString(fmt.Sprintf("\n🎯 <b>Risk</b> (SL ×%.2f, TP ×%.2f)\n", res.Params.SLMultiplier, res.Params.TPMultiplier))
		b.WriteString(fmt.Sprintf("SL: %.1f pips | TP: %.1f pips\n", lv.SLPips, lv.TPPips))
		if lv.SLPriceLong != nil {
			b.WriteString(fmt.Sprintf("Long:  SL %.*f / TP %.*f\n", digits, *lv.SLPriceLong, digits, *lv.TPPriceLong))
			b.WriteString(fmt.Sprintf("Short: SL %.*f / TP %.*f\n", digits, *lv.SLPriceShort, digits, *lv.TPPriceShort))
		}
	}

	if res.News != nil {
		b.WriteString("\n")
		b.WriteString(formatEvents(res.News, 3))
	}
	return b.String()
}

// FormatNews renders the classified calendar for a pair.
func FormatNews(pair string, news *model.NewsResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📰 <b>News for %s</b>\n\n", html.EscapeString(pair)))
	if news == nil {
		b.WriteString("News checks are disabled.\n")
		return b.String()
	}
	b.WriteString(formatEvents(news, 0))
	if len(news.Passed) > 0 {
		b.WriteString("\n<b>Passed:</b>\n")
		for _, ev := range news.Passed {
			b.WriteString(formatEvent(ev))
		}
	}
	return b.String()
}

func formatEvents(news *model.NewsResult, limit int) string {
	if news.NewsError {
		return "⚠️ News unverified: " + html.EscapeString(news.Error) + "\n"
	}
	if len(news.Upcoming) == 0 {
		return "No high-impact events ahead.\n"
	}
	var b strings.Builder
	b.WriteString("<b>Upcoming:</b>\n")
	for i, ev := range news.Upcoming {
		if limit > 0 && i == limit {
			b.WriteString(fmt.Sprintf("  … %d more\n", len(news.Upcoming)-limit))
			break
		}
		b.WriteString(formatEvent(ev))
	}
	return b.String()
}

func formatEvent(ev model.ClassifiedEvent) string {
	return fmt.Sprintf("  %s %s %s\n", ev.Time.Format("15:04"), ev.Currency, html.EscapeString(ev.Name))
}

// FormatParams renders the stored parameters.
func FormatParams(pair string, rp model.RiskParameters) string {
	return fmt.Sprintf("⚙️ <b>Parameters</b>\nPair: %s\nSL multiplier: %.2f\nTP multiplier: %.2f\n",
		html.EscapeString(pair), rp.SLMultiplier, rp.TPMultiplier)
}

// FormatStateChange renders an alert for a new master signal state.
func FormatStateChange(prev model.SignalState, res *dashboard.Result) string {
	return fmt.Sprintf("🔔 <b>%s</b>: %s → %s\n\n%s", html.EscapeString(res.Pair), prev, res.Signal.State, FormatSignal(res))
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return strings.Join([]string{
		"🤖 <b>Commands</b>",
		"/signal - evaluate the selected pair",
		"/pair &lt;PAIR&gt; - select a pair, e.g. /pair USD/JPY",
		"/sl &lt;x&gt; - set the stop-loss ATR multiplier",
		"/tp &lt;x&gt; - set the take-profit ATR multiplier",
		"/params - show stored parameters",
		"/news - upcoming events for the selected pair",
		"/refresh - clear cached data",
	}, "\n")
}
