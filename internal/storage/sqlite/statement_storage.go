package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/novis10813/mops-financial-api/internal/apperrors"
	"github.com/novis10813/mops-financial-api/internal/models"
)

// StatementRepository implements C9's get_report/save_report pair.
type StatementRepository struct {
	db *DB
}

func NewStatementRepository(db *DB) *StatementRepository {
	return &StatementRepository{db: db}
}

// GetReport returns the cached statement for key, or (nil, nil) if
// absent.
func (r *StatementRepository) GetReport(ctx context.Context, key models.StockPeriodKey) (*models.Statement, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT currency, unit_scale, report_date, empty, verified, items_json, fetched_at
		FROM statements WHERE stock_id = ? AND year = ? AND quarter = ? AND report_type = ?`,
		key.StockID, key.Year, key.Quarter, string(key.ReportType))

	var currency sql.NullString
	var unitScale int
	var reportDate sql.NullString
	var empty int
	var verified int
	var itemsJSON string
	var fetchedAt int64

	if err := row.Scan(&currency, &unitScale, &reportDate, &empty, &verified, &itemsJSON, &fetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.New(apperrors.KindStorage, "sqlite.GetReport", err)
	}

	var items []*models.StatementItem
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		return nil, apperrors.New(apperrors.KindStorage, "sqlite.GetReport", err)
	}

	stmt := &models.Statement{
		Key:       key,
		Currency:  currency.String,
		UnitScale: unitScale,
		Items:     items,
		Empty:     empty != 0,
		Verified:  verified != 0,
		FetchedAt: time.Unix(fetchedAt, 0).UTC(),
	}
	if reportDate.Valid && reportDate.String != "" {
		if t, err := time.Parse(time.RFC3339, reportDate.String); err == nil {
			stmt.ReportDate = t
		}
	}
	return stmt, nil
}

// SaveReport upserts stmt by its identity tuple in one transaction,
// always refreshing fetched_at (spec.md §4.9).
func (r *StatementRepository) SaveReport(ctx context.Context, stmt *models.Statement) error {
	itemsJSON, err := json.Marshal(stmt.Items)
	if err != nil {
		return apperrors.New(apperrors.KindStorage, "sqlite.SaveReport", err)
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return apperrors.New(apperrors.KindStorage, "sqlite.SaveReport", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO statements (stock_id, year, quarter, report_type, currency, unit_scale, report_date, empty, verified, items_json, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(stock_id, year, quarter, report_type) DO UPDATE SET
			currency = excluded.currency,
			unit_scale = excluded.unit_scale,
			report_date = excluded.report_date,
			empty = excluded.empty,
			verified = excluded.verified,
			items_json = excluded.items_json,
			fetched_at = excluded.fetched_at`,
		stmt.Key.StockID, stmt.Key.Year, stmt.Key.Quarter, string(stmt.Key.ReportType),
		stmt.Currency, stmt.UnitScale, formatDate(stmt.ReportDate), boolToInt(stmt.Empty), boolToInt(stmt.Verified), string(itemsJSON), time.Now().Unix())
	if err != nil {
		return apperrors.New(apperrors.KindStorage, "sqlite.SaveReport", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.New(apperrors.KindStorage, "sqlite.SaveReport", err)
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
