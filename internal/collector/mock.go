package collector

import (
	"context"
	"sync"
	"time"

	"FXSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Bars are keyed by interval; Calls counts FetchBars invocations. When
// Generate is set it is called on every fetch instead of reading Bars.
type MockFetcher struct {
	mu       sync.Mutex
	Bars     map[string][]model.OHLCV
	Generate func(interval string) []model.OHLCV
	Err      error
	Calls    int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, _, _, interval string) ([]model.OHLCV, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Generate != nil {
		return m.Generate(interval), nil
	}
	bars := m.Bars[interval]
	out := make([]model.OHLCV, len(bars))
	copy(out, bars)
	return out, nil
}

// CallCount returns the number of FetchBars calls so far.
func (m *MockFetcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// GenerateDailyBars builds n weekday bars ending on end, each with the given
// high-low range centred on price.
func GenerateDailyBars(end time.Time, n int, price, rng float64) []model.OHLCV {
	bars := make([]model.OHLCV, 0, n)
	day := end
	for len(bars) < n {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			bars = append(bars, model.OHLCV{
				Time:  day,
				Open:  price,
				High:  price + rng/2,
				Low:   price - rng/2,
				Close: price,
			})
		}
		day = day.AddDate(0, 0, -1)
	}
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars
}
