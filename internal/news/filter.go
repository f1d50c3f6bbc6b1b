package news

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"FXSentinel/internal/metrics"
	"FXSentinel/internal/model"
)

// DefaultKeywords are the event-name fragments that mark a market-moving
// release: inflation, growth, employment, rates and central-bank speakers.
var DefaultKeywords = []string{
	"CPI", "Consumer Price Index",
	"GDP",
	"Nonfarm", "Non-Farm", "Payroll", "Unemployment Rate",
	"Interest Rate", "Policy Rate", "Minimum Bid Rate", "FOMC", "Monetary Policy",
	"Speaks", "Testifies", "Chair", "President",
}

// HolidayKeywords flag bank holidays, when liquidity thins out.
var HolidayKeywords = []string{"Holiday", "Bank Holiday"}

var timeLayouts = []string{"3:04pm", "3:04PM", "15:04"}

// Filter classifies raw calendar rows for a pair.
type Filter struct {
	Keywords    []string
	SourceZone  *time.Location // zone the calendar prints times in
	DisplayZone *time.Location // zone events are reported in
	Window      time.Duration  // events further than this from now are dropped
	PassedAfter time.Duration  // events older than this are passed
}

// NewFilter returns a filter with the default keyword list, a 24h window and
// a 60 minute passed threshold.
func NewFilter(source, display *time.Location, includeHolidays bool) *Filter {
	kw := append([]string(nil), DefaultKeywords...)
	if includeHolidays {
		kw = append(kw, HolidayKeywords...)
	}
	if source == nil {
		source = time.UTC
	}
	if display == nil {
		display = time.UTC
	}
	return &Filter{
		Keywords:    kw,
		SourceZone:  source,
		DisplayZone: display,
		Window:      24 * time.Hour,
		PassedAfter: 60 * time.Minute,
	}
}

// Classify keeps the rows whose currency belongs to pair and whose name
// matches a keyword, then splits them into upcoming (ascending) and passed
// (most recent first). Rows with an unparseable time are skipped.
func (f *Filter) Classify(pair string, now time.Time, rows []RawEvent) (upcoming, passed []model.ClassifiedEvent) {
	base, quote := splitPair(pair)
	now = now.In(f.DisplayZone)

	for _, row := range rows {
		cur := strings.ToUpper(strings.TrimSpace(row.Currency))
		if cur == "" || (cur != base && cur != quote) {
			continue
		}
		if !f.matches(row.Event) {
			continue
		}
		at, err := f.parseTime(row.TimeText, now)
		if err != nil {
			metrics.NewsParseFailures.Inc()
			continue
		}
		diff := at.Sub(now)
		if diff > f.Window || diff < -f.Window {
			continue
		}

		ev := model.ClassifiedEvent{
			NewsEvent: model.NewsEvent{Time: at, Currency: cur, Name: row.Event, Impact: row.Impact},
			Status:    model.EventUpcoming,
		}
		if now.Sub(at) > f.PassedAfter {
			ev.Status = model.EventPassed
			passed = append(passed, ev)
		} else {
			upcoming = append(upcoming, ev)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].Time.Before(upcoming[j].Time) })
	sort.SliceStable(passed, func(i, j int) bool { return passed[i].Time.After(passed[j].Time) })
	return upcoming, passed
}

func (f *Filter) matches(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range f.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// parseTime reads a bare time of day as today's date in the source zone and
// converts it to the display zone.
func (f *Filter) parseTime(text string, now time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		y, m, d := now.In(f.SourceZone).Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, f.SourceZone).In(f.DisplayZone), nil
	}
	return time.Time{}, fmt.Errorf("event time %q: %w", text, model.ErrParseFailure)
}

// splitPair returns the two ISO codes of "EUR/USD" or "EURUSD".
func splitPair(pair string) (base, quote string) {
	p := strings.ToUpper(strings.TrimSpace(pair))
	if b, q, ok := strings.Cut(p, "/"); ok {
		return b, q
	}
	if len(p) == 6 {
		return p[:3], p[3:]
	}
	return p, ""
}
