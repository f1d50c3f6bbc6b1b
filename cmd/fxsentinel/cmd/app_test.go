package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"FXSentinel/internal/collector"
	"FXSentinel/internal/config"
	"FXSentinel/internal/dashboard"
	"FXSentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockConfig = `
data_source:
  provider: mock
params:
  backend: memory
risk:
  default_pair: USD/JPY
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestBuildAppMock(t *testing.T) {
	c, err := config.Load(writeConfig(t, mockConfig))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	a, err := buildApp(c)
	require.NoError(t, err)
	defer a.Close()

	res, err := a.dash.Evaluate(context.Background(), dashboard.Request{})
	require.NoError(t, err)
	assert.Equal(t, "USD/JPY", res.Pair)
	require.True(t, res.Snapshot.OK(), res.Snapshot.Error)
	assert.False(t, res.Snapshot.IsStale)
	require.NotNil(t, res.Snapshot.Indicators.ATRPips)
	assert.InDelta(t, 0.6, *res.Snapshot.Indicators.ATRPips, 0.001) // 60 pips of 0.0001 in yen pips
	require.NotNil(t, res.News)
	assert.False(t, res.News.NewsError)
}

func TestNewStoreBackends(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{"memory", "file", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			c := &config.Config{}
			c.Params.Backend = backend
			c.Params.Path = filepath.Join(dir, backend, "params")
			s, err := newStore(c)
			require.NoError(t, err)
			defer s.Close()

			require.NoError(t, s.Set("pair", "EUR/USD"))
			assert.Equal(t, "EUR/USD", s.Get("pair", ""))
		})
	}

	c := &config.Config{}
	c.Params.Backend = "etcd"
	_, err := newStore(c)
	assert.Error(t, err)
}

func TestMockFetcherStaysFresh(t *testing.T) {
	now := time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)
	f := newMockFetcher(func() time.Time { return now })
	ctx := context.Background()

	bars, err := f.FetchBars(ctx, "EURUSD=X", collector.RangeIntraday, collector.Interval30m)
	require.NoError(t, err)
	require.Len(t, bars, 48)
	assert.Equal(t, now, bars[len(bars)-1].Time)

	now = now.Add(3 * time.Hour)
	bars, err = f.FetchBars(ctx, "EURUSD=X", collector.RangeIntraday, collector.Interval30m)
	require.NoError(t, err)
	assert.Equal(t, now, bars[len(bars)-1].Time, "regenerated per fetch")

	daily, err := f.FetchBars(ctx, "EURUSD=X", collector.RangeDaily, collector.IntervalDaily)
	require.NoError(t, err)
	assert.Len(t, daily, 80)
	assert.Equal(t, 3, f.CallCount())
}

func TestNewFetcherUnknown(t *testing.T) {
	c := &config.Config{}
	c.DataSource.Provider = "bloomberg"
	_, err := newFetcher(c)
	assert.Error(t, err)
}

func TestCheckCommandJSON(t *testing.T) {
	path := writeConfig(t, mockConfig)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"check", "--config", path, "--env-file", filepath.Join(t.TempDir(), "none.env"), "--pair", "eurusd", "--sl", "0.25", "-o", "json"})
	require.NoError(t, rootCmd.Execute())

	var res dashboard.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, "EUR/USD", res.Pair)
	assert.Equal(t, 0.25, res.Params.SLMultiplier)
	assert.Equal(t, 1.00, res.Params.TPMultiplier)
	require.NotNil(t, res.Risk)
	assert.InDelta(t, 15.0, res.Risk.SLPips, 0.01)
	assert.NotEqual(t, model.SignalState(""), res.Signal.State)
}
