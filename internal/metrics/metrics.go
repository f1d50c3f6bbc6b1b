package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxsentinel_cache_hits_total",
		Help: "Cache lookups served from memory",
	}, []string{"cache"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxsentinel_cache_misses_total",
		Help: "Cache lookups that triggered a load",
	}, []string{"cache"})

	BarFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxsentinel_bar_fetch_total",
		Help: "Bar series fetches by provider, interval and result",
	}, []string{"provider", "interval", "result"})

	NewsFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxsentinel_news_fetch_total",
		Help: "News feed fetches by result",
	}, []string{"result"})

	NewsParseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fxsentinel_news_parse_failures_total",
		Help: "Calendar events dropped because their time could not be parsed",
	})

	StaleSnapshots = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxsentinel_stale_snapshots_total",
		Help: "Snapshots flagged stale by the freshness check",
	}, []string{"instrument"})

	SignalStates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxsentinel_signal_state_total",
		Help: "Composed master signals by state",
	}, []string{"pair", "state"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "fxsentinel_http_request_duration_seconds",
		Help: "Duration of HTTP requests in seconds",
	}, []string{"method", "path", "status"})
)
