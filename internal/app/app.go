// Package app wires C1–C10 into a single composition root, the way
// the teacher's internal/app package builds its own App from a
// Config and a logger (quaero/internal/app/app.go).
package app

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/novis10813/mops-financial-api/internal/common"
	"github.com/novis10813/mops-financial-api/internal/crawler"
	"github.com/novis10813/mops-financial-api/internal/httpclient"
	"github.com/novis10813/mops-financial-api/internal/service"
	"github.com/novis10813/mops-financial-api/internal/storage/sqlite"
	"github.com/novis10813/mops-financial-api/internal/xbrl"
	"github.com/novis10813/mops-financial-api/internal/xbrl/taxonomy"
)

// App holds every long-lived component, constructed once at startup
// and passed down explicitly — nothing here is a package-level
// global.
type App struct {
	Config  *common.Config
	Logger  arbor.ILogger
	Facade  *service.Facade

	db           *sqlite.DB
	taxonomyIdx  *taxonomy.Index
}

// New builds the full dependency graph: C2's fetcher, C6's taxonomy
// resolver, C2-C7's XBRL download+parse pipeline, the four C8
// scrapers, C9's SQLite repositories, and C10's façade on top.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	fetcherOpts := []httpclient.Option{
		httpclient.WithUserAgent(cfg.HTTP.UserAgent),
		httpclient.WithReferer(cfg.HTTP.BaseURL),
		httpclient.WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes),
	}
	if cfg.HTTP.MinRequestIntervalMS > 0 {
		fetcherOpts = append(fetcherOpts, httpclient.WithMinInterval(time.Duration(cfg.HTTP.MinRequestIntervalMS)*time.Millisecond))
	}
	if cfg.HTTP.CABundlePath != "" {
		fetcherOpts = append(fetcherOpts, httpclient.WithCABundle(cfg.HTTP.CABundlePath))
	}
	fetcher := httpclient.New(logger, fetcherOpts...)

	db, err := sqlite.Open(logger, sqlite.Config{
		Path:         cfg.Storage.SQLitePath,
		MaxOpenConns: cfg.Storage.MaxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("app: open storage: %w", err)
	}

	taxonomyIdx, err := taxonomy.OpenIndex(cfg.Taxonomy.IndexPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("app: open taxonomy index: %w", err)
	}
	resolver := taxonomy.NewResolver(cfg.Taxonomy.CacheDir, fetcher, taxonomyIdx, logger)

	downloader := xbrl.NewDownloader(fetcher, cfg.HTTP.BaseURL)
	pipeline := xbrl.NewPipeline(resolver, logger)

	statementRepo := sqlite.NewStatementRepository(db)
	crawlRepo := sqlite.NewCrawlRepository(db)

	revenueScraper := crawler.NewRevenueScraper(fetcher, cfg.HTTP.BaseURL)
	pledgeScraper := crawler.NewPledgeScraper(fetcher, cfg.HTTP.BaseURL)
	dividendScraper := crawler.NewDividendScraper(fetcher, cfg.HTTP.BaseURL)
	disclosureScraper := crawler.NewDisclosureScraper(fetcher, cfg.HTTP.BaseURL)

	facade := service.New(
		downloader,
		pipeline,
		statementRepo,
		crawlRepo,
		revenueScraper,
		pledgeScraper,
		dividendScraper,
		disclosureScraper,
		logger,
	)

	return &App{
		Config:      cfg,
		Logger:      logger,
		Facade:      facade,
		db:          db,
		taxonomyIdx: taxonomyIdx,
	}, nil
}

// Close releases the storage and taxonomy-index handles.
func (a *App) Close() error {
	var firstErr error
	if err := a.taxonomyIdx.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
