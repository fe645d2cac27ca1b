// Package service implements C10: the cache-aware façade that
// orchestrates read-through lookups across C2–C9, coalesces
// concurrent requests per identity tuple, and applies the bounded
// retry policy of spec.md §7.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/novis10813/mops-financial-api/internal/apperrors"
	"github.com/novis10813/mops-financial-api/internal/crawler"
	"github.com/novis10813/mops-financial-api/internal/interfaces"
	"github.com/novis10813/mops-financial-api/internal/models"
)

// retryBackoffs is spec.md §7's TransientFetchError policy: up to 2
// retries with 1s then 4s backoff before bubbling the error.
var retryBackoffs = []time.Duration{1 * time.Second, 4 * time.Second}

// Facade is C10. Every dependency is passed in explicitly at
// construction — no package-level globals (spec.md §9).
type Facade struct {
	fetcher    interfaces.XBRLFetcher
	parser     interfaces.StatementParser
	statements interfaces.StatementRepository
	crawls     interfaces.CrawlRepository

	revenue     interfaces.RevenueScraper
	pledge      interfaces.PledgeScraper
	dividend    interfaces.DividendScraper
	disclosure  interfaces.DisclosureScraper

	logger arbor.ILogger

	statementGroup  *group
	revenueGroup    *group
	pledgeGroup     *group
	dividendGroup   *group
	disclosureGroup *group
}

func New(
	fetcher interfaces.XBRLFetcher,
	parser interfaces.StatementParser,
	statements interfaces.StatementRepository,
	crawls interfaces.CrawlRepository,
	revenue interfaces.RevenueScraper,
	pledge interfaces.PledgeScraper,
	dividend interfaces.DividendScraper,
	disclosure interfaces.DisclosureScraper,
	logger arbor.ILogger,
) *Facade {
	return &Facade{
		fetcher:         fetcher,
		parser:          parser,
		statements:      statements,
		crawls:          crawls,
		revenue:         revenue,
		pledge:          pledge,
		dividend:        dividend,
		disclosure:      disclosure,
		logger:          logger,
		statementGroup:  newGroup(),
		revenueGroup:    newGroup(),
		pledgeGroup:     newGroup(),
		dividendGroup:   newGroup(),
		disclosureGroup: newGroup(),
	}
}

// withRetry runs fn, retrying per retryBackoffs while the error is a
// retryable TransientFetchError (spec.md §7).
func withRetry(ctx context.Context, logger arbor.ILogger, requestID string, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !apperrors.Retryable(err) {
			return err
		}
		if attempt >= len(retryBackoffs) {
			return err
		}
		logger.Warn().Str("request_id", requestID).Int("attempt", attempt+1).Err(err).Msg("service: retrying transient fetch failure")
		select {
		case <-time.After(retryBackoffs[attempt]):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// GetStatement implements get_financial_statement (spec.md §6, §4.10).
func (f *Facade) GetStatement(ctx context.Context, q StatementQuery) (*models.Statement, error) {
	if err := validate.Struct(q); err != nil {
		return nil, apperrors.New(apperrors.KindClient, "service.GetStatement", err)
	}
	requestID := uuid.NewString()
	key := q.key()

	result, err := f.statementGroup.do(ctx, key.String(), func() (interface{}, error) {
		return f.readThroughStatement(ctx, requestID, key, q.ForceRefresh)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Statement), nil
}

func (f *Facade) readThroughStatement(ctx context.Context, requestID string, key models.StockPeriodKey, forceRefresh bool) (*models.Statement, error) {
	if !forceRefresh {
		cached, err := f.statements.GetReport(ctx, key)
		if err != nil {
			f.logger.Warn().Str("request_id", requestID).Str("stock_id", key.StockID).Err(err).Msg("service: statement cache lookup failed, proceeding to fetch")
		} else if cached != nil {
			return cached, nil
		}
	}

	var zipBytes []byte
	err := withRetry(ctx, f.logger, requestID, func() error {
		var fetchErr error
		zipBytes, fetchErr = f.fetcher.DownloadZIP(ctx, key)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	stmt, err := f.parser.ParseStatement(ctx, key, zipBytes)
	if err != nil {
		return nil, err
	}

	if err := f.statements.SaveReport(ctx, stmt); err != nil {
		f.logger.Warn().Str("request_id", requestID).Str("stock_id", key.StockID).Err(err).Msg("service: persisting statement failed, returning freshly parsed result anyway")
	}
	return stmt, nil
}

// GetRevenue implements get_monthly_revenue.
func (f *Facade) GetRevenue(ctx context.Context, q RevenueQuery) ([]models.RevenueRow, error) {
	if err := validate.Struct(q); err != nil {
		return nil, apperrors.New(apperrors.KindClient, "service.GetRevenue", err)
	}
	requestID := uuid.NewString()
	key := revenueKey(q)

	result, err := f.revenueGroup.do(ctx, key, func() (interface{}, error) {
		return f.readThroughRevenue(ctx, requestID, q)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.RevenueRow), nil
}

func (f *Facade) readThroughRevenue(ctx context.Context, requestID string, q RevenueQuery) ([]models.RevenueRow, error) {
	if !q.ForceRefresh {
		cached, err := f.crawls.GetRevenueRows(ctx, q.Year, q.Month, q.Market)
		if err != nil {
			f.logger.Warn().Str("request_id", requestID).Err(err).Msg("service: revenue cache lookup failed, proceeding to fetch")
		} else if len(cached) > 0 {
			return cached, nil
		}
	}

	var rows []models.RevenueRow
	err := withRetry(ctx, f.logger, requestID, func() error {
		var fetchErr error
		rows, fetchErr = f.revenue.Fetch(ctx, crawler.RevenueQuery{Market: q.Market, Year: q.Year, Month: q.Month, Type: q.Type})
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	if err := f.crawls.SaveRevenueRows(ctx, rows); err != nil {
		f.logger.Warn().Str("request_id", requestID).Err(err).Msg("service: persisting revenue rows failed, returning freshly parsed result anyway")
	}
	return rows, nil
}

// GetPledge implements get_share_pledging.
func (f *Facade) GetPledge(ctx context.Context, q PledgeQuery) ([]models.PledgeRow, error) {
	if err := validate.Struct(q); err != nil {
		return nil, apperrors.New(apperrors.KindClient, "service.GetPledge", err)
	}
	requestID := uuid.NewString()
	key := pledgeKey(q)

	result, err := f.pledgeGroup.do(ctx, key, func() (interface{}, error) {
		return f.readThroughPledge(ctx, requestID, q)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.PledgeRow), nil
}

func (f *Facade) readThroughPledge(ctx context.Context, requestID string, q PledgeQuery) ([]models.PledgeRow, error) {
	if !q.ForceRefresh {
		cached, err := f.crawls.GetPledgeRows(ctx, q.Year, q.Month)
		if err != nil {
			f.logger.Warn().Str("request_id", requestID).Err(err).Msg("service: pledge cache lookup failed, proceeding to fetch")
		} else if len(cached) > 0 {
			return cached, nil
		}
	}

	var rows []models.PledgeRow
	err := withRetry(ctx, f.logger, requestID, func() error {
		var fetchErr error
		rows, fetchErr = f.pledge.Fetch(ctx, crawler.PledgeQuery{Year: q.Year, Month: q.Month, TypeK: q.Market, CoID: q.CoID})
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	if err := f.crawls.SavePledgeRows(ctx, rows); err != nil {
		f.logger.Warn().Str("request_id", requestID).Err(err).Msg("service: persisting pledge rows failed, returning freshly parsed result anyway")
	}
	return rows, nil
}

// GetDividend implements get_dividend.
func (f *Facade) GetDividend(ctx context.Context, q DividendQuery) ([]models.DividendRow, error) {
	if err := validate.Struct(q); err != nil {
		return nil, apperrors.New(apperrors.KindClient, "service.GetDividend", err)
	}
	requestID := uuid.NewString()
	key := dividendKey(q)

	result, err := f.dividendGroup.do(ctx, key, func() (interface{}, error) {
		return f.readThroughDividend(ctx, requestID, q)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.DividendRow), nil
}

func (f *Facade) readThroughDividend(ctx context.Context, requestID string, q DividendQuery) ([]models.DividendRow, error) {
	if !q.ForceRefresh {
		cached, err := f.crawls.GetDividendRows(ctx, q.StockID, q.YearStart, q.YearEnd)
		if err != nil {
			f.logger.Warn().Str("request_id", requestID).Str("stock_id", q.StockID).Err(err).Msg("service: dividend cache lookup failed, proceeding to fetch")
		} else if len(cached) > 0 {
			return cached, nil
		}
	}

	var rows []models.DividendRow
	err := withRetry(ctx, f.logger, requestID, func() error {
		var fetchErr error
		rows, fetchErr = f.dividend.Fetch(ctx, crawler.DividendQuery{YearStart: q.YearStart, YearEnd: q.YearEnd, QueryType: q.QueryType, CoID: q.StockID})
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	if err := f.crawls.SaveDividendRows(ctx, rows); err != nil {
		f.logger.Warn().Str("request_id", requestID).Str("stock_id", q.StockID).Err(err).Msg("service: persisting dividend rows failed, returning freshly parsed result anyway")
	}
	return rows, nil
}

// GetDisclosure implements get_disclosure.
func (f *Facade) GetDisclosure(ctx context.Context, q DisclosureQuery) (*models.DisclosureResult, error) {
	if err := validate.Struct(q); err != nil {
		return nil, apperrors.New(apperrors.KindClient, "service.GetDisclosure", err)
	}
	requestID := uuid.NewString()
	key := disclosureKey(q)

	result, err := f.disclosureGroup.do(ctx, key, func() (interface{}, error) {
		return f.readThroughDisclosure(ctx, requestID, q)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.DisclosureResult), nil
}

func (f *Facade) readThroughDisclosure(ctx context.Context, requestID string, q DisclosureQuery) (*models.DisclosureResult, error) {
	if !q.ForceRefresh {
		fundsLending, err1 := f.crawls.GetDisclosureRows(ctx, q.Year, q.Month, "funds_lending")
		endorsement, err2 := f.crawls.GetDisclosureRows(ctx, q.Year, q.Month, "endorsement_guarantee")
		if err1 != nil || err2 != nil {
			f.logger.Warn().Str("request_id", requestID).Msg("service: disclosure cache lookup failed, proceeding to fetch")
		} else if len(fundsLending) > 0 || len(endorsement) > 0 {
			return &models.DisclosureResult{FundsLending: fundsLending, EndorsementGuarantee: endorsement}, nil
		}
	}

	var result *models.DisclosureResult
	err := withRetry(ctx, f.logger, requestID, func() error {
		var fetchErr error
		result, fetchErr = f.disclosure.Fetch(ctx, crawler.DisclosureQuery{Year: q.Year, Month: q.Month, TypeK: q.Market, CoID: q.CoID})
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	if err := f.crawls.SaveDisclosureRows(ctx, result.FundsLending); err != nil {
		f.logger.Warn().Str("request_id", requestID).Err(err).Msg("service: persisting funds-lending rows failed, returning freshly parsed result anyway")
	}
	if err := f.crawls.SaveDisclosureRows(ctx, result.EndorsementGuarantee); err != nil {
		f.logger.Warn().Str("request_id", requestID).Err(err).Msg("service: persisting endorsement/guarantee rows failed, returning freshly parsed result anyway")
	}
	return result, nil
}
