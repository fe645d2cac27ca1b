package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueRow is one company's monthly-revenue filing row.
type RevenueRow struct {
	StockID              string
	CompanyName          string
	Year                 int
	Month                int
	Market               string // "sii" or "otc"
	Revenue              decimal.Decimal
	RevenueLastMonth     decimal.Decimal
	RevenueLastYear      decimal.Decimal
	MoMChange            decimal.Decimal
	YoYChange            decimal.Decimal
	AccumulatedRevenue   decimal.Decimal
	AccumulatedLastYear  decimal.Decimal
	AccumulatedYoYChange decimal.Decimal
	Comment              string
	FetchedAt            time.Time
}

// PledgeRow is one insider's share-pledge disclosure row.
type PledgeRow struct {
	StockID       string
	CompanyName   string
	Year          int
	Month         int
	Title         string
	Name          string
	CurrentShares decimal.Decimal
	PledgedShares decimal.Decimal
	PledgeRatio   decimal.Decimal
	FetchedAt     time.Time
}

// DividendRow is one dividend-resolution row. Quarter is nil for
// annual rows (query_type=2).
type DividendRow struct {
	StockID             string
	Year                int
	Quarter             *int
	CashDividend        decimal.Decimal
	StockDividend       decimal.Decimal
	BoardResolutionDate time.Time
	FetchedAt           time.Time
}

// DisclosureEntity distinguishes a filer's own figures from its
// subsidiaries' figures within a disclosure row.
type DisclosureEntity string

const (
	DisclosureEntitySelf       DisclosureEntity = "本公司"
	DisclosureEntitySubsidiary DisclosureEntity = "子公司"
)

// DisclosureRow is one funds-lending or endorsement/guarantee row.
type DisclosureRow struct {
	StockID            string
	Year               int
	Month              int
	Kind               string // "funds_lending" or "endorsement_guarantee"
	Entity             DisclosureEntity
	HasBalance         bool
	CurrentMonth       decimal.Decimal
	PreviousMonth      decimal.Decimal
	MaxLimit           decimal.Decimal
	AccumulatedBalance decimal.Decimal
	FetchedAt          time.Time
}

// DisclosureResult bundles the two row-sets plus the scalar
// cross-company rollup from the disclosure endpoint (spec.md §4.8).
type DisclosureResult struct {
	FundsLending         []DisclosureRow
	EndorsementGuarantee []DisclosureRow
	CrossCompanyRollup    decimal.Decimal
}
