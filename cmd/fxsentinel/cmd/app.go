package cmd

import (
	"fmt"
	"time"

	"FXSentinel/internal/collector"
	"FXSentinel/internal/config"
	"FXSentinel/internal/dashboard"
	"FXSentinel/internal/model"
	"FXSentinel/internal/news"
	"FXSentinel/internal/params"
	"FXSentinel/internal/strategy"
	"FXSentinel/pkg/logger"
)

// app is the wired service graph shared by serve and check.
type app struct {
	dash  *dashboard.Service
	store params.Store
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("close params store", logger.ErrorField(err))
	}
}

func buildApp(cfg *config.Config) (*app, error) {
	gate, err := cfg.Gate()
	if err != nil {
		return nil, fmt.Errorf("trading window: %w", err)
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	col := collector.NewCollector(fetcher, cfg.IntradayEnabled())
	snaps := collector.NewSnapshotService(col, cfg.Cache.SnapshotTTL, cfg.Market.StaleAfter, gate.DisplayZone)

	var newsSvc *news.Service
	if cfg.NewsEnabled() {
		src, err := time.LoadLocation(cfg.News.SourceZone)
		if err != nil {
			return nil, fmt.Errorf("news source zone: %w", err)
		}
		var feed news.Feed = news.NewForexFactoryFeed(cfg.News.URL, cfg.Proxy, cfg.News.Timeout)
		if cfg.DataSource.Provider == "mock" {
			feed = &news.StaticFeed{}
		}
		newsSvc = news.NewService(feed, news.NewFilter(src, gate.DisplayZone, cfg.News.IncludeHolidays), cfg.Cache.NewsTTL)
	}

	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	composer := strategy.NewComposer()
	composer.BlackoutBefore = cfg.News.BlackoutBefore
	composer.BlackoutAfter = cfg.News.BlackoutAfter

	dash, err := dashboard.New(dashboard.Options{
		Instruments:  cfg.Instruments,
		Snapshots:    snaps,
		News:         newsSvc,
		Gate:         gate,
		Composer:     composer,
		Store:        store,
		RiskDefaults: cfg.RiskDefaults(),
		DefaultPair:  cfg.Risk.DefaultPair,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	logger.Info("fxsentinel wired",
		logger.String("profile", cfg.Profile),
		logger.String("provider", fetcher.Name()),
		logger.String("params_backend", cfg.Params.Backend),
		logger.Bool("intraday", cfg.IntradayEnabled()),
		logger.Bool("news", cfg.NewsEnabled()),
	)
	return &app{dash: dash, store: store}, nil
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	switch cfg.DataSource.Provider {
	case "yahoo":
		f := collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.Timeout)
		if cfg.DataSource.BaseURL != "" {
			f.BaseURL = cfg.DataSource.BaseURL
		}
		return f, nil
	case "rest":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.Timeout), nil
	case "mock":
		return newMockFetcher(time.Now), nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", cfg.DataSource.Provider)
	}
}

// newMockFetcher serves flat synthetic bars with a 60 pip daily range and an
// intraday series ending at the moment of each fetch, so every pair shows
// fresh data in development.
func newMockFetcher(now func() time.Time) *collector.MockFetcher {
	return &collector.MockFetcher{Generate: func(interval string) []model.OHLCV {
		return syntheticBars(interval, now())
	}}
}

func syntheticBars(interval string, now time.Time) []model.OHLCV {
	if interval == collector.IntervalDaily {
		return collector.GenerateDailyBars(now, 80, 1.1000, 0.0060)
	}
	intraday := make([]model.OHLCV, 0, 48)
	start := now.Add(-47 * 30 * time.Minute)
	for i := 0; i < 48; i++ {
		intraday = append(intraday, model.OHLCV{
			Time: start.Add(time.Duration(i) * 30 * time.Minute),
			Open: 1.1000, High: 1.1005, Low: 1.0995, Close: 1.1000,
		})
	}
	return intraday
}

func newStore(cfg *config.Config) (params.Store, error) {
	p := cfg.Params
	switch p.Backend {
	case "memory":
		return params.NewMemoryStore(), nil
	case "file":
		return params.NewFileStore(p.Path)
	case "sqlite":
		return params.NewSQLiteStore(p.Path)
	case "redis":
		return params.NewRedisStore(params.RedisOptions{
			Addr:     p.Redis.Addr,
			Password: p.Redis.Password,
			DB:       p.Redis.DB,
			Key:      p.Redis.Key,
		})
	default:
		return nil, fmt.Errorf("unknown params backend %q", p.Backend)
	}
}
