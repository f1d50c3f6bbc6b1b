package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"FXSentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eurusd = model.Instrument{DisplayName: "EUR/USD", Ticker: "EURUSD=X", PipUnit: model.PipUnitStandard}

// Wednesday 2024-05-15 10:00 UTC
var testNow = time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)

func intradayBars(last time.Time, n int, price float64) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := 0; i < n; i++ {
		ts := last.Add(-time.Duration(n-1-i) * 30 * time.Minute)
		p := price + float64(i)*0.0001
		bars[i] = model.OHLCV{Time: ts, Open: p, High: p + 0.0002, Low: p - 0.0002, Close: p}
	}
	return bars
}

func TestCompute_ATRInPips(t *testing.T) {
	daily := GenerateDailyBars(testNow, 20, 1.1000, 0.0020)

	ind, err := Compute(eurusd, daily, nil)
	require.NoError(t, err)
	require.NotNil(t, ind.ATRPips)
	assert.InDelta(t, 20.0, *ind.ATRPips, 1e-9)
	assert.InDelta(t, 0.0020, *ind.ATRPrice, 1e-12)
	assert.Nil(t, ind.SMA50, "20 bars cannot carry a 50-bar average")
	assert.Nil(t, ind.RSIM30)
	require.NotNil(t, ind.CurrentPrice)
	assert.InDelta(t, 1.1, *ind.CurrentPrice, 1e-12)
	require.NotNil(t, ind.ADRUsagePct)
	assert.InDelta(t, 100.0, *ind.ADRUsagePct, 1e-6)
}

func TestCompute_StableBarIgnoresFormingCandle(t *testing.T) {
	early := GenerateDailyBars(testNow, 25, 1.1000, 0.0020)
	late := GenerateDailyBars(testNow, 25, 1.1000, 0.0020)

	// Same session observed twice: the live bar's range grows during the day.
	early[len(early)-1].High, early[len(early)-1].Low = 1.1003, 1.0999
	late[len(late)-1].High, late[len(late)-1].Low = 1.1040, 1.0960

	a, err := Compute(eurusd, early, nil)
	require.NoError(t, err)
	b, err := Compute(eurusd, late, nil)
	require.NoError(t, err)

	assert.Equal(t, *a.ATRPips, *b.ATRPips)
	assert.Less(t, *a.ADRUsagePct, *b.ADRUsagePct)
}

func TestCompute_InsufficientHistory(t *testing.T) {
	_, err := Compute(eurusd, GenerateDailyBars(testNow, 10, 1.1, 0.002), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInsufficientData))
}

func TestCompute_IntradayDrivesPriceAndMomentum(t *testing.T) {
	daily := GenerateDailyBars(testNow, 60, 1.1000, 0.0020)
	intraday := intradayBars(testNow.Add(-5*time.Minute), 40, 1.1010)

	ind, err := Compute(eurusd, daily, intraday)
	require.NoError(t, err)
	require.NotNil(t, ind.RSIM30)
	assert.Equal(t, 100.0, *ind.RSIM30)
	assert.InDelta(t, intraday[len(intraday)-1].Close, *ind.CurrentPrice, 1e-12)
	require.NotNil(t, ind.SMA50)
	assert.InDelta(t, 1.1, *ind.SMA50, 1e-9)
	assert.Equal(t, ind.RSIM30, ind.Momentum())
}

func newService(f *MockFetcher, intraday bool, clock *time.Time) *SnapshotService {
	col := NewCollector(f, intraday)
	return NewSnapshotService(col, time.Minute, DefaultStaleAfter, time.UTC).
		WithClock(func() time.Time { return *clock })
}

func TestSnapshot_IdempotentWithinTTL(t *testing.T) {
	now := testNow
	f := &MockFetcher{Bars: map[string][]model.OHLCV{
		IntervalDaily: GenerateDailyBars(now, 30, 1.1, 0.002),
		Interval30m:   intradayBars(now.Add(-5*time.Minute), 30, 1.1),
	}}
	svc := newService(f, true, &now)
	ctx := context.Background()

	first := svc.Snapshot(ctx, eurusd)
	calls := f.CallCount()
	assert.Equal(t, 2, calls, "one daily and one intraday fetch")

	now = now.Add(30 * time.Second)
	second := svc.Snapshot(ctx, eurusd)
	assert.Equal(t, calls, f.CallCount())
	assert.Same(t, first, second)

	now = now.Add(31 * time.Second)
	third := svc.Snapshot(ctx, eurusd)
	assert.Equal(t, 2*calls, f.CallCount(), "expired entry refetches")
	assert.NotSame(t, first, third)
}

func TestSnapshot_RefreshClears(t *testing.T) {
	now := testNow
	f := &MockFetcher{Bars: map[string][]model.OHLCV{
		IntervalDaily: GenerateDailyBars(now, 30, 1.1, 0.002),
	}}
	svc := newService(f, false, &now)

	svc.Snapshot(context.Background(), eurusd)
	svc.Refresh()
	svc.Snapshot(context.Background(), eurusd)
	assert.Equal(t, 2, f.CallCount())
}

func TestSnapshot_FetchFailureBecomesField(t *testing.T) {
	now := testNow
	f := &MockFetcher{Err: fmt.Errorf("connection reset")}
	svc := newService(f, true, &now)

	snap := svc.Snapshot(context.Background(), eurusd)
	require.NotNil(t, snap)
	assert.False(t, snap.OK())
	assert.True(t, errors.Is(snap.Err, model.ErrFetchFailure))
	assert.Contains(t, snap.Error, "connection reset")
	assert.Nil(t, snap.Indicators)
}

func TestSnapshot_TimeoutIsNotCached(t *testing.T) {
	now := testNow
	f := &MockFetcher{
		Bars: map[string][]model.OHLCV{IntervalDaily: GenerateDailyBars(now, 30, 1.1, 0.002)},
		Err:  fmt.Errorf("yahoo fetch: %w", context.DeadlineExceeded),
	}
	svc := newService(f, false, &now)

	snap := svc.Snapshot(context.Background(), eurusd)
	assert.False(t, snap.OK())
	assert.True(t, errors.Is(snap.Err, model.ErrFetchFailure))
	assert.True(t, model.IsCanceled(snap.Err))

	f.Err = nil
	snap = svc.Snapshot(context.Background(), eurusd)
	assert.True(t, snap.OK(), "retried instead of serving the cached timeout")
	assert.Equal(t, 2, f.CallCount())
}

type ctxFetcher struct{ MockFetcher }

func (c *ctxFetcher) FetchBars(ctx context.Context, symbol, rng, interval string) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.MockFetcher.FetchBars(ctx, symbol, rng, interval)
}

func TestSnapshot_CallerCancellationDoesNotPoison(t *testing.T) {
	now := testNow
	f := &ctxFetcher{MockFetcher{Bars: map[string][]model.OHLCV{
		IntervalDaily: GenerateDailyBars(now, 30, 1.1, 0.002),
	}}}
	svc := NewSnapshotService(NewCollector(f, false), time.Minute, DefaultStaleAfter, time.UTC).
		WithClock(func() time.Time { return now })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	first := svc.Snapshot(ctx, eurusd)
	assert.True(t, first.OK(), first.Error)

	second := svc.Snapshot(context.Background(), eurusd)
	assert.Same(t, first, second)
	assert.Equal(t, 1, f.CallCount())
}

func TestSnapshot_EmptyDailyIsFailure(t *testing.T) {
	now := testNow
	svc := newService(&MockFetcher{}, false, &now)

	snap := svc.Snapshot(context.Background(), eurusd)
	assert.True(t, errors.Is(snap.Err, model.ErrFetchFailure))
}

func TestSnapshot_Staleness(t *testing.T) {
	tests := []struct {
		name  string
		lag   time.Duration
		stale bool
	}{
		{"fresh", 10 * time.Minute, false},
		{"at threshold", 20 * time.Minute, false},
		{"lagging", 21 * time.Minute, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := testNow
			f := &MockFetcher{Bars: map[string][]model.OHLCV{
				IntervalDaily: GenerateDailyBars(now, 30, 1.1, 0.002),
				Interval30m:   intradayBars(now.Add(-tt.lag), 30, 1.1),
			}}
			snap := newService(f, true, &now).Snapshot(context.Background(), eurusd)
			require.True(t, snap.OK())
			assert.Equal(t, tt.stale, snap.IsStale)
		})
	}
}

func TestSnapshot_NoStalenessWithoutIntraday(t *testing.T) {
	now := testNow.Add(72 * time.Hour)
	f := &MockFetcher{Bars: map[string][]model.OHLCV{
		IntervalDaily: GenerateDailyBars(testNow, 30, 1.1, 0.002),
	}}
	snap := newService(f, false, &now).Snapshot(context.Background(), eurusd)
	require.True(t, snap.OK())
	assert.False(t, snap.IsStale)
}

const chartJSON = `{"chart":{"result":[{"meta":{"exchangeTimezoneName":"Europe/London"},
"timestamp":[1715558400,1715644800,1715644800,1715731200],
"indicators":{"quote":[{"open":[1.07,1.08,1.081,null],"high":[1.08,1.09,1.091,null],
"low":[1.06,1.07,1.071,null],"close":[1.075,1.085,1.086,null],"volume":[0,0,0,null]}]}}],"error":null}}`

func TestYahooFetcher_FetchBars(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	f := NewYahooFetcher("", 5*time.Second)
	f.BaseURL = srv.URL + "/chart/%s?interval=%s&range=%s"

	bars, err := f.FetchBars(context.Background(), "EURUSD=X", RangeDaily, IntervalDaily)
	require.NoError(t, err)
	assert.Equal(t, "/chart/EURUSD=X", gotPath)
	assert.Equal(t, "interval=1d&range=3mo", gotQuery)

	require.Len(t, bars, 2, "null bar dropped, duplicate timestamp collapsed")
	assert.InDelta(t, 1.086, bars[1].Close, 1e-12, "last duplicate wins")
	assert.Equal(t, "Europe/London", bars[0].Time.Location().String())
	assert.True(t, bars[0].Time.Before(bars[1].Time))
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("", 5*time.Second)
	f.BaseURL = srv.URL + "/%s?interval=%s&range=%s"

	_, err := f.FetchBars(context.Background(), "BAD", RangeDaily, IntervalDaily)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestRESTFetcher_FetchBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "30m", r.URL.Query().Get("interval"))
		w.Write([]byte(`[{"timestamp":1715644800,"open":1,"high":2,"low":0.5,"close":1.5},
{"timestamp":1715558400,"open":1,"high":2,"low":0.5,"close":1.2}]`))
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", "", time.Second)
	bars, err := f.FetchBars(context.Background(), "EURUSD", RangeIntraday, Interval30m)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.InDelta(t, 1.2, bars[0].Close, 1e-12, "sorted ascending")
}
