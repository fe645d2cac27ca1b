// Package interfaces collects the contracts C10's façade depends on,
// implemented by the concrete packages under internal/xbrl, internal/crawler,
// and internal/storage/sqlite. Defining them here keeps the façade
// testable against fakes without importing concrete packages into tests.
package interfaces

import (
	"context"

	"github.com/novis10813/mops-financial-api/internal/crawler"
	"github.com/novis10813/mops-financial-api/internal/models"
)

// XBRLFetcher downloads the XBRL ZIP package for one identity tuple
// (C2 + the download URL convention).
type XBRLFetcher interface {
	DownloadZIP(ctx context.Context, key models.StockPeriodKey) ([]byte, error)
}

// StatementParser turns a downloaded ZIP into a built Statement,
// covering C3 (unpack) through C7 (build) internally.
type StatementParser interface {
	ParseStatement(ctx context.Context, key models.StockPeriodKey, zipBytes []byte) (*models.Statement, error)
}

// StatementRepository is C9's statement half.
type StatementRepository interface {
	GetReport(ctx context.Context, key models.StockPeriodKey) (*models.Statement, error)
	SaveReport(ctx context.Context, stmt *models.Statement) error
}

// CrawlRepository is C9's crawl-row half, one method pair per
// endpoint.
type CrawlRepository interface {
	GetRevenueRows(ctx context.Context, year, month int, market string) ([]models.RevenueRow, error)
	SaveRevenueRows(ctx context.Context, rows []models.RevenueRow) error
	GetPledgeRows(ctx context.Context, year, month int) ([]models.PledgeRow, error)
	SavePledgeRows(ctx context.Context, rows []models.PledgeRow) error
	GetDividendRows(ctx context.Context, stockID string, yearStart, yearEnd int) ([]models.DividendRow, error)
	SaveDividendRows(ctx context.Context, rows []models.DividendRow) error
	GetDisclosureRows(ctx context.Context, year, month int, kind string) ([]models.DisclosureRow, error)
	SaveDisclosureRows(ctx context.Context, rows []models.DisclosureRow) error
}

// RevenueScraper, PledgeScraper, DividendScraper, DisclosureScraper
// are C8's per-endpoint contracts, satisfied directly by the
// concrete *crawler.XxxScraper types.
type RevenueScraper interface {
	Fetch(ctx context.Context, q crawler.RevenueQuery) ([]models.RevenueRow, error)
}

type PledgeScraper interface {
	Fetch(ctx context.Context, q crawler.PledgeQuery) ([]models.PledgeRow, error)
}

type DividendScraper interface {
	Fetch(ctx context.Context, q crawler.DividendQuery) ([]models.DividendRow, error)
}

type DisclosureScraper interface {
	Fetch(ctx context.Context, q crawler.DisclosureQuery) (*models.DisclosureResult, error)
}
