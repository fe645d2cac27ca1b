package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/novis10813/mops-financial-api/internal/apperrors"
	"github.com/novis10813/mops-financial-api/internal/models"
)

// CrawlRepository implements C9's get_crawl_rows/save_crawl_rows pair
// for the four crawl endpoints, each batch-upserted by its own
// natural key in one transaction (spec.md §4.9).
type CrawlRepository struct {
	db *DB
}

func NewCrawlRepository(db *DB) *CrawlRepository {
	return &CrawlRepository{db: db}
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func decOrEmpty(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	return d.String()
}

// --- Revenue ---

func (r *CrawlRepository) SaveRevenueRows(ctx context.Context, rows []models.RevenueRow) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return apperrors.New(apperrors.KindStorage, "sqlite.SaveRevenueRows", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO revenue_rows (stock_id, year, month, market, company_name, revenue, revenue_last_month, revenue_last_year, mom_change, yoy_change, accumulated_revenue, accumulated_last_year, accumulated_yoy_change, comment, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(stock_id, year, month, market) DO UPDATE SET
			company_name = excluded.company_name, revenue = excluded.revenue,
			revenue_last_month = excluded.revenue_last_month, revenue_last_year = excluded.revenue_last_year,
			mom_change = excluded.mom_change, yoy_change = excluded.yoy_change,
			accumulated_revenue = excluded.accumulated_revenue, accumulated_last_year = excluded.accumulated_last_year,
			accumulated_yoy_change = excluded.accumulated_yoy_change, comment = excluded.comment, fetched_at = excluded.fetched_at`)
	if err != nil {
		return apperrors.New(apperrors.KindStorage, "sqlite.SaveRevenueRows", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.StockID, row.Year, row.Month, row.Market, row.CompanyName,
			decOrEmpty(row.Revenue), decOrEmpty(row.RevenueLastMonth), decOrEmpty(row.RevenueLastYear),
			decOrEmpty(row.MoMChange), decOrEmpty(row.YoYChange), decOrEmpty(row.AccumulatedRevenue),
			decOrEmpty(row.AccumulatedLastYear), decOrEmpty(row.AccumulatedYoYChange), row.Comment, now); err != nil {
			return apperrors.New(apperrors.KindStorage, "sqlite.SaveRevenueRows", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return apperrors.New(apperrors.KindStorage, "sqlite.SaveRevenueRows", err)
	}
	return nil
}

func (r *CrawlRepository) GetRevenueRows(ctx context.Context, year, month int, market string) ([]models.RevenueRow, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT stock_id, company_name, year, month, market, revenue, revenue_last_month, revenue_last_year, mom_change, yoy_change, accumulated_revenue, accumulated_last_year, accumulated_yoy_change, comment, fetched_at
		FROM revenue_rows WHERE year = ? AND month = ? AND market = ?`, year, month, market)
	if err != nil {
		return nil, apperrors.New(apperrors.KindStorage, "sqlite.GetRevenueRows", err)
	}
	defer rows.Close()

	var out []models.RevenueRow
	for rows.Next() {
		var row models.RevenueRow
		var revenue, lastMonth, lastYear, mom, yoy, accum, accumLast, accumYoY string
		var fetchedAt int64
		if err := rows.Scan(&row.StockID, &row.CompanyName, &row.Year, &row.Month, &row.Market,
			&revenue, &lastMonth, &lastYear, &mom, &yoy, &accum, &accumLast, &accumYoY, &row.Comment, &fetchedAt); err != nil {
			return nil, apperrors.New(apperrors.KindStorage, "sqlite.GetRevenueRows", err)
		}
		row.Revenue, row.RevenueLastMonth, row.RevenueLastYear = dec(revenue), dec(lastMonth), dec(lastYear)
		row.MoMChange, row.YoYChange = dec(mom), dec(yoy)
		row.AccumulatedRevenue, row.AccumulatedLastYear, row.AccumulatedYoYChange = dec(accum), dec(accumLast), dec(accumYoY)
		row.FetchedAt = time.Unix(fetchedAt, 0).UTC()
		out = append(out, row)
	}
	return out, rows.Err()
}

// --- Pledge ---

func (r *CrawlRepository) SavePledgeRows(ctx context.Context, rows []models.PledgeRow) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return apperrors.New(apperrors.KindStorage, "sqlite.SavePledgeRows", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pledge_rows (stock_id, year, month, title, name, company_name, current_shares, pledged_shares, pledge_ratio, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(stock_id, year, month, title, name) DO UPDATE SET
			company_name = excluded.company_name, current_shares = excluded.current_shares,
			pledged_shares = excluded.pledged_shares, pledge_ratio = excluded.pledge_ratio, fetched_at = excluded.fetched_at`)
	if err != nil {
		return apperrors.New(apperrors.KindStorage, "sqlite.SavePledgeRows", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.StockID, row.Year, row.Month, row.Title, row.Name, row.CompanyName,
			decOrEmpty(row.CurrentShares), decOrEmpty(row.PledgedShares), decOrEmpty(row.PledgeRatio), now); err != nil {
			return apperrors.New(apperrors.KindStorage, "sqlite.SavePledgeRows", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return apperrors.New(apperrors.KindStorage, "sqlite.SavePledgeRows", err)
	}
	return nil
}

func (r *CrawlRepository) GetPledgeRows(ctx context.Context, year, month int) ([]models.PledgeRow, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT stock_id, company_name, year, month, title, name, current_shares, pledged_shares, pledge_ratio, fetched_at
		FROM pledge_rows WHERE year = ? AND month = ?`, year, month)
	if err != nil {
		return nil, apperrors.New(apperrors.KindStorage, "sqlite.GetPledgeRows", err)
	}
	defer rows.Close()

	var out []models.PledgeRow
	for rows.Next() {
		var row models.PledgeRow
		var current, pledged, ratio string
		var fetchedAt int64
		if err := rows.Scan(&row.StockID, &row.CompanyName, &row.Year, &row.Month, &row.Title, &row.Name,
			&current, &pledged, &ratio, &fetchedAt); err != nil {
			return nil, apperrors.New(apperrors.KindStorage, "sqlite.GetPledgeRows", err)
		}
		row.CurrentShares, row.PledgedShares, row.PledgeRatio = dec(current), dec(pledged), dec(ratio)
		row.FetchedAt = time.Unix(fetchedAt, 0).UTC()
		out = append(out, row)
	}
	return out, rows.Err()
}

// --- Dividend ---

func (r *CrawlRepository) SaveDividendRows(ctx context.Context, rows []models.DividendRow) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return apperrors.New(apperrors.KindStorage, "sqlite.SaveDividendRows", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dividend_rows (stock_id, year, quarter, cash_dividend, stock_dividend, board_resolution_date, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(stock_id, year, quarter) DO UPDATE SET
			cash_dividend = excluded.cash_dividend, stock_dividend = excluded.stock_dividend,
			board_resolution_date = excluded.board_resolution_date, fetched_at = excluded.fetched_at`)
	if err != nil {
		return apperrors.New(apperrors.KindStorage, "sqlite.SaveDividendRows", err)
	}
	defer stmt.Close()

	// Annual rows carry a NULL quarter, and NULLs never collide in the
	// primary key, so an annual row is replaced by delete-then-insert.
	clearAnnual, err := tx.PrepareContext(ctx, `DELETE FROM dividend_rows WHERE stock_id = ? AND year = ? AND quarter IS NULL`)
	if err != nil {
		return apperrors.New(apperrors.KindStorage, "sqlite.SaveDividendRows", err)
	}
	defer clearAnnual.Close()

	for _, row := range rows {
		var quarter sql.NullInt64
		if row.Quarter != nil {
			quarter = sql.NullInt64{Int64: int64(*row.Quarter), Valid: true}
		} else if _, err := clearAnnual.ExecContext(ctx, row.StockID, row.Year); err != nil {
			return apperrors.New(apperrors.KindStorage, "sqlite.SaveDividendRows", err)
		}
		if _, err := stmt.ExecContext(ctx, row.StockID, row.Year, quarter, decOrEmpty(row.CashDividend),
			decOrEmpty(row.StockDividend), formatDate(row.BoardResolutionDate), now); err != nil {
			return apperrors.New(apperrors.KindStorage, "sqlite.SaveDividendRows", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return apperrors.New(apperrors.KindStorage, "sqlite.SaveDividendRows", err)
	}
	return nil
}

func (r *CrawlRepository) GetDividendRows(ctx context.Context, stockID string, yearStart, yearEnd int) ([]models.DividendRow, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT stock_id, year, quarter, cash_dividend, stock_dividend, board_resolution_date, fetched_at
		FROM dividend_rows WHERE stock_id = ? AND year BETWEEN ? AND ?`, stockID, yearStart, yearEnd)
	if err != nil {
		return nil, apperrors.New(apperrors.KindStorage, "sqlite.GetDividendRows", err)
	}
	defer rows.Close()

	var out []models.DividendRow
	for rows.Next() {
		var row models.DividendRow
		var quarter sql.NullInt64
		var cash, stock string
		var boardDate sql.NullString
		var fetchedAt int64
		if err := rows.Scan(&row.StockID, &row.Year, &quarter, &cash, &stock, &boardDate, &fetchedAt); err != nil {
			return nil, apperrors.New(apperrors.KindStorage, "sqlite.GetDividendRows", err)
		}
		if quarter.Valid {
			q := int(quarter.Int64)
			row.Quarter = &q
		}
		row.CashDividend, row.StockDividend = dec(cash), dec(stock)
		if boardDate.Valid && boardDate.String != "" {
			if t, err := time.Parse(time.RFC3339, boardDate.String); err == nil {
				row.BoardResolutionDate = t
			}
		}
		row.FetchedAt = time.Unix(fetchedAt, 0).UTC()
		out = append(out, row)
	}
	return out, rows.Err()
}

// --- Disclosure ---

func (r *CrawlRepository) SaveDisclosureRows(ctx context.Context, rows []models.DisclosureRow) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return apperrors.New(apperrors.KindStorage, "sqlite.SaveDisclosureRows", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO disclosure_rows (stock_id, year, month, kind, entity, has_balance, current_month, previous_month, max_limit, accumulated_balance, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(stock_id, year, month, kind, entity) DO UPDATE SET
			has_balance = excluded.has_balance, current_month = excluded.current_month,
			previous_month = excluded.previous_month, max_limit = excluded.max_limit,
			accumulated_balance = excluded.accumulated_balance, fetched_at = excluded.fetched_at`)
	if err != nil {
		return apperrors.New(apperrors.KindStorage, "sqlite.SaveDisclosureRows", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.StockID, row.Year, row.Month, row.Kind, string(row.Entity), boolToInt(row.HasBalance),
			decOrEmpty(row.CurrentMonth), decOrEmpty(row.PreviousMonth), decOrEmpty(row.MaxLimit), decOrEmpty(row.AccumulatedBalance), now); err != nil {
			return apperrors.New(apperrors.KindStorage, "sqlite.SaveDisclosureRows", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return apperrors.New(apperrors.KindStorage, "sqlite.SaveDisclosureRows", err)
	}
	return nil
}

func (r *CrawlRepository) GetDisclosureRows(ctx context.Context, year, month int, kind string) ([]models.DisclosureRow, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT stock_id, year, month, kind, entity, has_balance, current_month, previous_month, max_limit, accumulated_balance, fetched_at
		FROM disclosure_rows WHERE year = ? AND month = ? AND kind = ?`, year, month, kind)
	if err != nil {
		return nil, apperrors.New(apperrors.KindStorage, "sqlite.GetDisclosureRows", err)
	}
	defer rows.Close()

	var out []models.DisclosureRow
	for rows.Next() {
		var row models.DisclosureRow
		var entity string
		var hasBalance int
		var current, previous, maxLimit, accum string
		var fetchedAt int64
		if err := rows.Scan(&row.StockID, &row.Year, &row.Month, &row.Kind, &entity, &hasBalance,
			&current, &previous, &maxLimit, &accum, &fetchedAt); err != nil {
			return nil, apperrors.New(apperrors.KindStorage, "sqlite.GetDisclosureRows", err)
		}
		row.Entity = models.DisclosureEntity(entity)
		row.HasBalance = hasBalance != 0
		row.CurrentMonth, row.PreviousMonth, row.MaxLimit, row.AccumulatedBalance = dec(current), dec(previous), dec(maxLimit), dec(accum)
		row.FetchedAt = time.Unix(fetchedAt, 0).UTC()
		out = append(out, row)
	}
	return out, rows.Err()
}
