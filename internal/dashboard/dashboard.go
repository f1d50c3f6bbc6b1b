// Package dashboard runs the full evaluation for one pair: snapshot, news,
// trading window, master signal and risk levels.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FXSentinel/internal/collector"
	"FXSentinel/internal/metrics"
	"FXSentinel/internal/model"
	"FXSentinel/internal/news"
	"FXSentinel/internal/params"
	"FXSentinel/internal/risk"
	"FXSentinel/internal/session"
	"FXSentinel/internal/strategy"
	"FXSentinel/pkg/logger"
)

// Request selects what to evaluate. Empty fields fall back to the stored
// parameters.
type Request struct {
	Pair string
	Risk *model.RiskParameters
}

// Result is the bundle handed to the presentation layers.
type Result struct {
	Pair         string                    `json:"pair"`
	Instrument   model.Instrument          `json:"instrument"`
	Window       model.TradingWindowStatus `json:"window"`
	WindowReason string                    `json:"window_reason"`
	Signal       model.MasterSignal        `json:"signal"`
	Trend        model.Trend               `json:"trend"`
	Snapshot     *model.MarketSnapshot     `json:"snapshot"`
	News         *model.NewsResult         `json:"news,omitempty"`
	Params       model.RiskParameters      `json:"params"`
	Risk         *model.RiskLevels         `json:"risk,omitempty"`
	EvaluatedAt  time.Time                 `json:"evaluated_at"`
}

// Options wires a Service. News may be nil to skip the calendar.
type Options struct {
	Instruments  []model.Instrument
	Snapshots    *collector.SnapshotService
	News         *news.Service
	Gate         *session.Gate
	Composer     *strategy.Composer
	Store        params.Store
	RiskDefaults model.RiskParameters
	DefaultPair  string
}

// Service evaluates pairs and owns the user's parameters.
type Service struct {
	instruments  []model.Instrument
	byName       map[string]model.Instrument
	snapshots    *collector.SnapshotService
	news         *news.Service
	gate         *session.Gate
	composer     *strategy.Composer
	store        params.Store
	riskDefaults model.RiskParameters
	defaultPair  string
	now          func() time.Time
}

// New validates the options and builds a Service.
func New(opts Options) (*Service, error) {
	if len(opts.Instruments) == 0 {
		return nil, fmt.Errorf("no instruments configured")
	}
	if opts.Snapshots == nil || opts.Gate == nil || opts.Store == nil {
		return nil, fmt.Errorf("snapshots, gate and store are required")
	}
	if opts.Composer == nil {
		opts.Composer = strategy.NewComposer()
	}
	if err := risk.Validate(opts.RiskDefaults); err != nil {
		opts.RiskDefaults = risk.Defaults()
	}

	s := &Service{
		instruments:  opts.Instruments,
		byName:       make(map[string]model.Instrument, len(opts.Instruments)),
		snapshots:    opts.Snapshots,
		news:         opts.News,
		gate:         opts.Gate,
		composer:     opts.Composer,
		store:        opts.Store,
		riskDefaults: opts.RiskDefaults,
		now:          time.Now,
	}
	for _, inst := range opts.Instruments {
		s.byName[normalizePair(inst.DisplayName)] = inst
	}

	s.defaultPair = opts.Instruments[0].DisplayName
	if inst, err := s.Resolve(opts.DefaultPair); err == nil {
		s.defaultPair = inst.DisplayName
	}
	return s, nil
}

// WithClock replaces the time source for the trading window. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Instruments lists the selectable pairs.
func (s *Service) Instruments() []model.Instrument {
	out := make([]model.Instrument, len(s.instruments))
	copy(out, s.instruments)
	return out
}

// Resolve finds an instrument by display name ("EUR/USD", "eurusd").
func (s *Service) Resolve(pair string) (model.Instrument, error) {
	if inst, ok := s.byName[normalizePair(pair)]; ok {
		return inst, nil
	}
	return model.Instrument{}, fmt.Errorf("%q: %w", pair, model.ErrUnknownPair)
}

// Evaluate runs the pipeline for req. Only an unknown pair is an error;
// data and news failures are carried inside the result.
func (s *Service) Evaluate(ctx context.Context, req Request) (*Result, error) {
	pair := req.Pair
	if pair == "" {
		pair = s.SelectedPair()
	}
	inst, err := s.Resolve(pair)
	if err != nil {
		return nil, err
	}

	rp := s.RiskParams()
	if req.Risk != nil {
		rp = *req.Risk
	}

	now := s.now()
	res := &Result{
		Pair:        inst.DisplayName,
		Instrument:  inst,
		Params:      rp,
		EvaluatedAt: now,
	}
	res.Window = s.gate.Status(now)
	res.WindowReason = s.gate.Describe(res.Window)

	res.Snapshot = s.snapshots.Snapshot(ctx, inst)
	if s.news != nil {
		res.News = s.news.ForPair(ctx, inst.DisplayName)
	}

	res.Signal = s.composer.Compose(strategy.Input{
		Window:       res.Window,
		WindowReason: res.WindowReason,
		Snapshot:     res.Snapshot,
		News:         res.News,
		Now:          now,
	})
	res.Trend = model.TrendFlat
	if res.Snapshot.OK() {
		res.Trend = strategy.ClassifyTrend(res.Snapshot.Indicators, s.composer.TrendBuffer)
		res.Risk = risk.Size(res.Snapshot.Indicators, inst.PipUnit, rp)
	}

	metrics.SignalStates.WithLabelValues(inst.DisplayName, string(res.Signal.State)).Inc()
	logger.Debug("pair evaluated",
		logger.String("pair", inst.DisplayName),
		logger.String("state", string(res.Signal.State)),
		logger.String("window", string(res.Window)),
		logger.Bool("stale", res.Snapshot.IsStale),
	)
	return res, nil
}

// Refresh clears the snapshot and news caches.
func (s *Service) Refresh() {
	s.snapshots.Refresh()
	if s.news != nil {
		s.news.Refresh()
	}
}

// SelectedPair returns the stored pair, or the default when none or an
// unknown one is stored.
func (s *Service) SelectedPair() string {
	return params.LoadPair(s.store, s.defaultPair, func(p string) bool {
		_, err := s.Resolve(p)
		return err == nil
	})
}

// RiskParams returns the stored multipliers with per-field fallback.
func (s *Service) RiskParams() model.RiskParameters {
	return params.LoadRisk(s.store, s.riskDefaults)
}

// SelectPair validates and stores the selected pair.
func (s *Service) SelectPair(pair string) (model.Instrument, error) {
	inst, err := s.Resolve(pair)
	if err != nil {
		return model.Instrument{}, err
	}
	if err := params.SavePair(s.store, inst.DisplayName); err != nil {
		return model.Instrument{}, fmt.Errorf("save pair: %w", err)
	}
	return inst, nil
}

// SetRiskParams validates and stores both multipliers.
func (s *Service) SetRiskParams(p model.RiskParameters) error {
	return params.SaveRisk(s.store, p)
}

func normalizePair(pair string) string {
	return strings.ToUpper(strings.NewReplacer("/", "", " ", "").Replace(pair))
}
