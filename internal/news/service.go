package news

import (
	"context"
	"time"

	"FXSentinel/internal/cache"
	"FXSentinel/internal/metrics"
	"FXSentinel/internal/model"
	"FXSentinel/pkg/logger"
)

// DefaultTTL is how long fetched calendar rows are reused.
const DefaultTTL = 5 * time.Minute

// feedRows is one calendar download, or the reason it failed.
type feedRows struct {
	rows      []RawEvent
	err       error
	fetchedAt time.Time
}

// Service caches the raw calendar and classifies it per call, so event
// status follows the clock. Feed failures never surface as errors: they
// produce an empty, flagged result.
type Service struct {
	feed   Feed
	filter *Filter
	cache  *cache.TTL[string, *feedRows]
	now    func() time.Time
}

// NewService creates a news service.
func NewService(feed Feed, filter *Filter, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		feed:   feed,
		filter: filter,
		cache:  cache.New[string, *feedRows]("news", ttl),
		now:    time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	s.cache.WithClock(now)
	return s
}

// ForPair returns the events relevant to pair, classified against the
// current time.
func (s *Service) ForPair(ctx context.Context, pair string) *model.NewsResult {
	fr := s.cache.GetOrLoadIf(s.feed.Name(), func() (*feedRows, bool) {
		fr := s.fetch(ctx)
		return fr, !model.IsCanceled(fr.err)
	})

	res := &model.NewsResult{FetchedAt: fr.fetchedAt}
	if fr.err != nil {
		res.NewsError = true
		res.Error = fr.err.Error()
		return res
	}

	res.Upcoming, res.Passed = s.filter.Classify(pair, s.now(), fr.rows)
	logger.Debug("news classified",
		logger.String("pair", pair),
		logger.Int("rows", len(fr.rows)),
		logger.Int("upcoming", len(res.Upcoming)),
		logger.Int("passed", len(res.Passed)),
	)
	return res
}

// Refresh drops the cached calendar.
func (s *Service) Refresh() {
	s.cache.Clear()
}

// fetch downloads the calendar detached from the caller's cancellation: the
// rows are shared, so one abandoned request must not fail the others. The
// feed's own client timeout still bounds it.
func (s *Service) fetch(ctx context.Context) *feedRows {
	fr := &feedRows{fetchedAt: s.now()}
	fr.rows, fr.err = s.feed.Fetch(context.WithoutCancel(ctx))
	if fr.err != nil {
		metrics.NewsFetches.WithLabelValues("error").Inc()
		logger.Warn("news feed unavailable",
			logger.String("feed", s.feed.Name()),
			logger.ErrorField(fr.err),
		)
		return fr
	}
	metrics.NewsFetches.WithLabelValues("ok").Inc()
	return fr
}
