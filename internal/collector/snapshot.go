package collector

import (
	"context"
	"time"

	"FXSentinel/internal/cache"
	"FXSentinel/internal/metrics"
	"FXSentinel/internal/model"
	"FXSentinel/pkg/logger"
)

// DefaultStaleAfter is the largest accepted gap between now and the newest
// intraday bar.
const DefaultStaleAfter = 20 * time.Minute

type snapshotKey struct {
	Ticker  string
	PipUnit float64
}

// SnapshotService memoizes market snapshots per (ticker, pip unit).
type SnapshotService struct {
	collector  *Collector
	cache      *cache.TTL[snapshotKey, *model.MarketSnapshot]
	staleAfter time.Duration
	refZone    *time.Location
	now        func() time.Time
}

// NewSnapshotService wraps a collector with a ttl cache. refZone is the zone
// bar times are normalized to before the freshness check.
func NewSnapshotService(col *Collector, ttl, staleAfter time.Duration, refZone *time.Location) *SnapshotService {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	if refZone == nil {
		refZone = time.UTC
	}
	return &SnapshotService{
		collector:  col,
		cache:      cache.New[snapshotKey, *model.MarketSnapshot]("snapshot", ttl),
		staleAfter: staleAfter,
		refZone:    refZone,
		now:        time.Now,
	}
}

// WithClock replaces the time source for the cache and the freshness check.
func (s *SnapshotService) WithClock(now func() time.Time) *SnapshotService {
	s.now = now
	s.cache.WithClock(now)
	return s
}

// Snapshot returns the cached snapshot for inst, loading it on a miss. It
// never returns nil and never fails: errors are carried in the snapshot.
// The load is shared, so it ignores the caller's cancellation; a snapshot
// that failed on a timeout is returned but not cached.
func (s *SnapshotService) Snapshot(ctx context.Context, inst model.Instrument) *model.MarketSnapshot {
	key := snapshotKey{Ticker: inst.Ticker, PipUnit: inst.PipUnit}
	return s.cache.GetOrLoadIf(key, func() (*model.MarketSnapshot, bool) {
		snap := s.load(context.WithoutCancel(ctx), inst)
		return snap, !model.IsCanceled(snap.Err)
	})
}

// Refresh drops all cached snapshots.
func (s *SnapshotService) Refresh() {
	s.cache.Clear()
	logger.Info("snapshot cache cleared")
}

func (s *SnapshotService) load(ctx context.Context, inst model.Instrument) *model.MarketSnapshot {
	now := s.now()
	snap := &model.MarketSnapshot{Instrument: inst, FetchedAt: now}

	res, err := s.collector.Collect(ctx, inst)
	if err != nil {
		snap.Err = err
		snap.Error = err.Error()
		logger.Warn("snapshot unavailable",
			logger.String("instrument", inst.DisplayName),
			logger.ErrorField(err),
		)
		return snap
	}

	snap.Indicators = res.Indicators
	if !res.LastBarAt.IsZero() {
		snap.LastBarAt = res.LastBarAt.In(s.refZone)
		gap := now.In(s.refZone).Sub(snap.LastBarAt)
		if gap > s.staleAfter {
			snap.IsStale = true
			snap.StaleFor = gap
			metrics.StaleSnapshots.WithLabelValues(inst.DisplayName).Inc()
			logger.Warn("intraday feed lagging",
				logger.String("instrument", inst.DisplayName),
				logger.Duration("gap", gap),
			)
		}
	}
	return snap
}
