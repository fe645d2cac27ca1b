package statement

import (
	"time"

	"github.com/novis10813/mops-financial-api/internal/models"
)

// selectContext implements spec.md §4.7's context-selection rule:
// balance_sheet picks the instant context at the period end-date; the
// other three report types pick the duration context running from the
// fiscal-year start to the period end-date. Ties are broken first by
// entity_identifier matching stock_id, then by an empty scenario.
func selectContext(key models.StockPeriodKey, contexts []models.Context) *models.Context {
	month, day := key.PeriodEnd()
	year := key.GregorianYear()
	periodEnd := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	fiscalYearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)

	var candidates []models.Context
	for _, c := range contexts {
		switch {
		case key.ReportType == models.ReportBalanceSheet:
			if c.Period.IsInstant() && sameDay(c.Period.Instant, periodEnd) {
				candidates = append(candidates, c)
			}
		default:
			if c.Period.IsDuration() && sameDay(c.Period.Start, fiscalYearStart) && sameDay(c.Period.End, periodEnd) {
				candidates = append(candidates, c)
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) == 1 {
		return &candidates[0]
	}

	best := rankContexts(candidates, key.StockID)
	return best
}

func rankContexts(candidates []models.Context, stockID string) *models.Context {
	var matchingEntity []models.Context
	for _, c := range candidates {
		if c.EntityIdentifier == stockID {
			matchingEntity = append(matchingEntity, c)
		}
	}
	if len(matchingEntity) > 0 {
		candidates = matchingEntity
	}

	for i := range candidates {
		if !candidates[i].HasScenario() {
			return &candidates[i]
		}
	}
	return &candidates[0]
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
