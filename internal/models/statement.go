package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementItem is a single node in the display tree of a statement.
type StatementItem struct {
	Concept  string
	LabelZH  string
	LabelEN  string
	Value    *decimal.Decimal
	Weight   decimal.Decimal
	Depth    int
	Children []*StatementItem
}

// HasValue reports whether the node carries a bound fact value.
func (i *StatementItem) HasValue() bool {
	return i.Value != nil
}

// Statement is the fully assembled hierarchical financial report.
type Statement struct {
	Key         StockPeriodKey
	Currency    string
	UnitScale   int
	ReportDate  time.Time
	Items       []*StatementItem
	Empty       bool // true when the role had no presentation tree (spec.md §4.7 EmptyStatement)
	Verified    bool // true once Verify found zero calculation-arc violations
	FetchedAt   time.Time
}

// Violation describes one calculation-arc identity that did not hold
// within tolerance when Verify was run (spec.md P2).
type Violation struct {
	ParentConcept string
	Parent        decimal.Decimal
	Computed      decimal.Decimal
	Diff          decimal.Decimal
}

// AccountingTolerance is spec.md P2's default relative tolerance for
// Verify: |parent - sum(weight*child)| <= max(1, |parent| * tolerance).
var AccountingTolerance = decimal.NewFromFloat(1e-6)

// Verify walks items looking for nodes whose calculation arcs are all
// present (carried via CalcChildren) and whose children all have
// values, checking |parent - sum(weight*child)| <= max(1, |parent|*tol).
// CalcChildren is supplied by the statement builder alongside the
// presentation tree since the calculation relationship is independent
// of display nesting (spec.md §4.7 "Weight propagation").
func Verify(items []*StatementItem, calcChildren map[string][]WeightedChild, tolerance decimal.Decimal) []Violation {
	var violations []Violation
	byConcept := map[string]*StatementItem{}
	index(items, byConcept)

	for parentConcept, children := range calcChildren {
		parent, ok := byConcept[parentConcept]
		if !ok || !parent.HasValue() {
			continue
		}
		sum := decimal.Zero
		complete := true
		for _, c := range children {
			child, ok := byConcept[c.Concept]
			if !ok || !child.HasValue() {
				complete = false
				break
			}
			sum = sum.Add(c.Weight.Mul(*child.Value))
		}
		if !complete {
			continue
		}
		diff := parent.Value.Sub(sum).Abs()
		limit := decimal.Max(decimal.NewFromInt(1), parent.Value.Abs().Mul(tolerance))
		if diff.GreaterThan(limit) {
			violations = append(violations, Violation{
				ParentConcept: parentConcept,
				Parent:        *parent.Value,
				Computed:      sum,
				Diff:          diff,
			})
		}
	}
	return violations
}

// WeightedChild is one calculation-arc child contribution to a parent
// concept's accounting identity.
type WeightedChild struct {
	Concept string
	Weight  decimal.Decimal
}

func index(items []*StatementItem, out map[string]*StatementItem) {
	for _, it := range items {
		out[it.Concept] = it
		index(it.Children, out)
	}
}
