// Package news turns an economic calendar feed into the events that matter
// for one currency pair.
package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"FXSentinel/internal/model"

	"github.com/PuerkitoBio/goquery"
)

const forexFactoryURL = "https://www.forexfactory.com/calendar?day=today"

// RawEvent is one calendar row as scraped, before any parsing.
type RawEvent struct {
	TimeText string
	Currency string
	Impact   string
	Event    string
}

// Feed delivers today's raw calendar rows.
type Feed interface {
	Fetch(ctx context.Context) ([]RawEvent, error)
	Name() string
}

// ForexFactoryFeed scrapes the ForexFactory daily calendar page.
type ForexFactoryFeed struct {
	URL       string
	Client    *http.Client
	UserAgent string
}

// NewForexFactoryFeed creates a scraper with optional proxy support. An empty
// pageURL uses the public calendar.
func NewForexFactoryFeed(pageURL, proxyURL string, timeout time.Duration) *ForexFactoryFeed {
	if pageURL == "" {
		pageURL = forexFactoryURL
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ForexFactoryFeed{
		URL:       pageURL,
		Client:    &http.Client{Timeout: timeout, Transport: transport},
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	}
}

func (f *ForexFactoryFeed) Name() string { return "forexfactory" }

// Fetch downloads the calendar and extracts its rows. Rows with fewer than
// four cells are skipped. A blank time cell belongs to the same slot as the
// row above it.
func (f *ForexFactoryFeed) Fetch(ctx context.Context) ([]RawEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar request: %w: %w", err, model.ErrFetchFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar status %d: %w", resp.StatusCode, model.ErrFetchFailure)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w: %w", err, model.ErrFetchFailure)
	}
	return parseCalendar(doc), nil
}

func parseCalendar(doc *goquery.Document) []RawEvent {
	var (
		events   []RawEvent
		lastTime string
	)
	doc.Find("tr.calendar__row").Each(func(_ int, s *goquery.Selection) {
		if s.Find("td").Length() < 4 {
			return
		}

		timeText := cellText(s, "td.calendar__time")
		if timeText == "" {
			timeText = lastTime
		} else {
			lastTime = timeText
		}

		currency := cellText(s, "td.calendar__currency")
		name := cellText(s, "td.calendar__event")
		if currency == "" || name == "" {
			return
		}

		impact, _ := s.Find("td.calendar__impact span").Attr("title")
		events = append(events, RawEvent{
			TimeText: timeText,
			Currency: currency,
			Impact:   strings.TrimSpace(impact),
			Event:    name,
		})
	})
	return events
}

func cellText(s *goquery.Selection, selector string) string {
	return strings.Join(strings.Fields(s.Find(selector).First().Text()), " ")
}

// StaticFeed serves a fixed set of rows. Used with the mock data source.
type StaticFeed struct {
	Events []RawEvent
	Err    error
}

func (f *StaticFeed) Name() string { return "static" }

func (f *StaticFeed) Fetch(context.Context) ([]RawEvent, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]RawEvent, len(f.Events))
	copy(out, f.Events)
	return out, nil
}
