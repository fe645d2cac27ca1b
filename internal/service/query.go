package service

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/novis10813/mops-financial-api/internal/models"
)

var validate = validator.New()

// StatementQuery is the validated request shape for GetStatement,
// mirroring spec.md §6's get_financial_statement(stock_id, year,
// quarter, report_type, force_refresh).
type StatementQuery struct {
	StockID      string            `validate:"required,alphanum,min=4,max=6"`
	Year         int               `validate:"gte=102,lte=200"`
	Quarter      int               `validate:"gte=1,lte=4"`
	ReportType   models.ReportType `validate:"required,oneof=balance_sheet income_statement cash_flow equity_statement"`
	ForceRefresh bool
}

func (q StatementQuery) key() models.StockPeriodKey {
	return models.StockPeriodKey{StockID: q.StockID, Year: q.Year, Quarter: q.Quarter, ReportType: q.ReportType}
}

// RevenueQuery is the validated request shape for GetRevenue.
type RevenueQuery struct {
	Market       string `validate:"required,oneof=sii otc"`
	Year         int    `validate:"gte=102,lte=200"`
	Month        int    `validate:"gte=1,lte=12"`
	Type         string
	ForceRefresh bool
}

// PledgeQuery is the validated request shape for GetPledge.
type PledgeQuery struct {
	Year         int    `validate:"gte=102,lte=200"`
	Month        int    `validate:"gte=1,lte=12"`
	Market       string `validate:"required,oneof=sii otc"`
	CoID         string
	ForceRefresh bool
}

// DividendQuery is the validated request shape for GetDividend.
type DividendQuery struct {
	StockID      string `validate:"required"`
	YearStart    int    `validate:"gte=102,lte=200"`
	YearEnd      int    `validate:"gte=102,lte=200"`
	QueryType    int    `validate:"oneof=1 2"`
	ForceRefresh bool
}

// DisclosureQuery is the validated request shape for GetDisclosure.
type DisclosureQuery struct {
	Year         int    `validate:"gte=102,lte=200"`
	Month        int    `validate:"gte=1,lte=12"`
	Market       string `validate:"required,oneof=sii otc"`
	CoID         string
	ForceRefresh bool
}

// The single-flight keys below are the identity tuple spec.md §4.10
// requires coalescing on — not the full query, so a force_refresh
// call still coalesces with a concurrent cached-read call for the
// same identity (spec.md P4/P5).

func revenueKey(q RevenueQuery) string {
	return fmt.Sprintf("revenue|%s|%d|%d", q.Market, q.Year, q.Month)
}

func pledgeKey(q PledgeQuery) string {
	return fmt.Sprintf("pledge|%d|%d|%s|%s", q.Year, q.Month, q.Market, q.CoID)
}

func dividendKey(q DividendQuery) string {
	return fmt.Sprintf("dividend|%s|%d|%d|%d", q.StockID, q.YearStart, q.YearEnd, q.QueryType)
}

func disclosureKey(q DisclosureQuery) string {
	return fmt.Sprintf("disclosure|%d|%d|%s|%s", q.Year, q.Month, q.Market, q.CoID)
}
