// Package crawler implements C8: four tolerant HTML/AJAX table
// scrapers over MOPS's periodic-filing pages (spec.md §4.8).
package crawler

import (
	"fmt"

	"github.com/novis10813/mops-financial-api/internal/apperrors"
)

// skipRateThreshold is the 25% skip-rate ceiling spec.md §4.8 sets
// before a scraper's partial result is rejected outright.
const skipRateThreshold = 0.25

// rowCounter accumulates discovered and skipped rows as a scraper
// walks a table, enforcing spec.md §4.8's tolerance ceiling.
type rowCounter struct {
	discovered int
	skipped    int
}

func (c *rowCounter) found()  { c.discovered++ }
func (c *rowCounter) skip()   { c.skipped++ }

func (c *rowCounter) checkRate(op string) error {
	if c.discovered == 0 {
		return nil
	}
	rate := float64(c.skipped) / float64(c.discovered)
	if rate > skipRateThreshold {
		return apperrors.New(apperrors.KindParse, op, fmt.Errorf("skip rate %.0f%% exceeds 25%% ceiling (%d/%d rows)", rate*100, c.skipped, c.discovered))
	}
	return nil
}
