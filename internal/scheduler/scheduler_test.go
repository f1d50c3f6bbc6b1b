package scheduler

import (
	"context"
	"fmt"
	"testing"

	"FXSentinel/internal/dashboard"
	"FXSentinel/internal/model"
	"FXSentinel/internal/risk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDashboard struct {
	state     model.SignalState
	pair      string
	rp        model.RiskParameters
	refreshed bool
}

func (f *fakeDashboard) Evaluate(context.Context, dashboard.Request) (*dashboard.Result, error) {
	return &dashboard.Result{
		Pair:     f.pair,
		Signal:   model.MasterSignal{State: f.state, Title: string(f.state), Severity: model.SeverityInfo},
		Snapshot: &model.MarketSnapshot{},
		News:     &model.NewsResult{},
	}, nil
}
func (f *fakeDashboard) Refresh()                         { f.refreshed = true }
func (f *fakeDashboard) SelectedPair() string             { return f.pair }
func (f *fakeDashboard) RiskParams() model.RiskParameters { return f.rp }
func (f *fakeDashboard) SelectPair(p string) (model.Instrument, error) {
	if p != "USD/JPY" {
		return model.Instrument{}, fmt.Errorf("%q: %w", p, model.ErrUnknownPair)
	}
	f.pair = p
	return model.DefaultInstruments[1], nil
}
func (f *fakeDashboard) SetRiskParams(p model.RiskParameters) error {
	if err := risk.Validate(p); err != nil {
		return err
	}
	f.rp = p
	return nil
}

type fakeSender struct{ sent []string }

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.sent = append(f.sent, text)
	return nil
}

func newTestScheduler() (*Scheduler, *fakeDashboard, *fakeSender) {
	dash := &fakeDashboard{state: model.StateConsolidation, pair: "EUR/USD", rp: risk.Defaults()}
	sender := &fakeSender{}
	return NewScheduler(context.Background(), dash, sender), dash, sender
}

func TestCheckNow_AlertsOnChangeOnly(t *testing.T) {
	s, dash, sender := newTestScheduler()

	assert.False(t, s.CheckNow(), "baseline")
	assert.False(t, s.CheckNow(), "unchanged")

	dash.state = model.StateLongOnly
	assert.True(t, s.CheckNow())
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "CONSOLIDATION → LONG_ONLY")

	assert.False(t, s.CheckNow())
	assert.Len(t, sender.sent, 1)
}

func TestRegisterAll(t *testing.T) {
	s, _, _ := newTestScheduler()
	require.NoError(t, s.RegisterAll("0 */5 * * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)
	assert.Error(t, s.RegisterAll("not a cron"))
}

func TestHandleCommand(t *testing.T) {
	s, dash, _ := newTestScheduler()
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/signal"), "CONSOLIDATION")
	assert.Contains(t, s.HandleCommand(ctx, "/news@FXSentinelBot"), "No high-impact events")

	assert.Contains(t, s.HandleCommand(ctx, "/pair USD/JPY"), "Pair: USD/JPY")
	assert.Equal(t, "USD/JPY", dash.pair)
	assert.Contains(t, s.HandleCommand(ctx, "/pair XAU/USD"), "unknown pair")
	assert.Contains(t, s.HandleCommand(ctx, "/pair"), "Usage")

	assert.Contains(t, s.HandleCommand(ctx, "/sl 0.8"), "SL multiplier: 0.80")
	assert.Equal(t, 0.8, dash.rp.SLMultiplier)
	assert.Contains(t, s.HandleCommand(ctx, "/tp -1"), "❌")
	assert.Equal(t, 1.0, dash.rp.TPMultiplier)
	assert.Contains(t, s.HandleCommand(ctx, "/tp x"), "Usage")

	assert.Contains(t, s.HandleCommand(ctx, "/refresh"), "cleared")
	assert.True(t, dash.refreshed)

	assert.Contains(t, s.HandleCommand(ctx, "hello"), "Commands")
}
