// Package statement implements C7, the algorithmic core that turns
// parsed facts, contexts, and linkbases into a hierarchical financial
// statement tree (spec.md §4.7).
package statement

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/novis10813/mops-financial-api/internal/models"
	"github.com/novis10813/mops-financial-api/internal/xbrl/linkbase"
)

// Input bundles everything the builder needs for one statement.
type Input struct {
	Key          models.StockPeriodKey
	Facts        []models.Fact
	Contexts     []models.Context
	Calculation  map[string][]models.CalculationArc
	Presentation map[string][]models.PresentationArc
	Labels       *models.LabelSet
	// SchemaConcepts lists every concept declared under the role's
	// namespace, used only for the flat-fallback failure mode when no
	// presentation linkbase is available (spec.md §4.7).
	SchemaConcepts []string
}

// Build assembles a Statement per spec.md §4.7's context selection,
// fact binding, weight propagation, label resolution, and ordering
// rules. The whole Presentation map forms the tree: arcs are not
// filtered by extended-link role, and the report type is only checked
// for validity.
func Build(in Input) *models.Statement {
	stmt := &models.Statement{Key: in.Key}

	if !in.Key.ReportType.Valid() {
		stmt.Empty = true
		return stmt
	}

	ctx := selectContext(in.Key, in.Contexts)
	if ctx != nil {
		stmt.ReportDate = periodEndDate(in.Key)
	}

	factIndex := indexFacts(in.Facts)
	roleRoots := rootsFor(in.Presentation)

	if len(roleRoots) == 0 {
		if len(in.SchemaConcepts) == 0 {
			stmt.Empty = true
			return stmt
		}
		stmt.Items = flatFallback(in.SchemaConcepts, ctx, factIndex, in.Labels, calcWeightIndex(in.Calculation))
		return stmt
	}

	calcIdx := calcWeightIndex(in.Calculation)
	for _, root := range roleRoots {
		item := buildItem(root, decimal.NewFromInt(1), "", 0, ctx, factIndex, in.Presentation, in.Labels, calcIdx)
		stmt.Items = append(stmt.Items, item)
	}
	return stmt
}

// calcWeightIndex re-keys the calculation linkbase as parent -> child
// -> weight, so buildItem can look up the arc weight for a given
// presentation edge in O(1) instead of scanning in.Calculation[parent]
// per child.
func calcWeightIndex(calc map[string][]models.CalculationArc) map[string]map[string]decimal.Decimal {
	idx := make(map[string]map[string]decimal.Decimal, len(calc))
	for parent, arcs := range calc {
		children := make(map[string]decimal.Decimal, len(arcs))
		for _, a := range arcs {
			children[a.To] = a.Weight
		}
		idx[parent] = children
	}
	return idx
}

// weightFor returns the calculation-arc weight for parent->concept,
// defaulting to +1 when no such arc exists (spec.md §4.7).
func weightFor(idx map[string]map[string]decimal.Decimal, parent, concept string) decimal.Decimal {
	if children, ok := idx[parent]; ok {
		if w, ok := children[concept]; ok {
			return w
		}
	}
	return decimal.NewFromInt(1)
}

// anyWeightFor returns concept's calculation-arc weight under whichever
// parent declares it, for use where no presentation parent is known
// (flatFallback's schema-order listing has no tree to anchor on).
func anyWeightFor(idx map[string]map[string]decimal.Decimal, concept string) decimal.Decimal {
	for _, children := range idx {
		if w, ok := children[concept]; ok {
			return w
		}
	}
	return decimal.NewFromInt(1)
}

// CalcChildren extracts the (parent → weighted children) map that
// models.Verify consumes, kept independent of the presentation tree
// per spec.md §4.7's "Weight propagation" note.
func CalcChildren(calc map[string][]models.CalculationArc) map[string][]models.WeightedChild {
	out := make(map[string][]models.WeightedChild, len(calc))
	for parent, arcs := range calc {
		children := make([]models.WeightedChild, 0, len(arcs))
		for _, a := range arcs {
			children = append(children, models.WeightedChild{Concept: a.To, Weight: a.Weight})
		}
		out[parent] = children
	}
	return out
}

func indexFacts(facts []models.Fact) map[string]models.Fact {
	// Keyed by (concept, context_ref); later facts in document order
	// win on duplicate keys, matching how issuers occasionally restate
	// a fact later in the same document.
	idx := make(map[string]models.Fact, len(facts))
	for _, f := range facts {
		idx[f.Concept+"|"+f.ContextRef] = f
	}
	return idx
}

// rootsFor finds concepts that appear only as a "From" in the
// presentation map and never as a "To" — the top-level nodes of the
// role's tree. Siblings are ordered per spec.md §4.7's "presentation-arc
// order ascending" rule; a root carries no incoming arc of its own, so
// its position is taken from the order of its first (lowest-order)
// child, concept name breaking ties.
func rootsFor(pres map[string][]models.PresentationArc) []string {
	isChild := map[string]bool{}
	for _, arcs := range pres {
		for _, a := range arcs {
			isChild[a.To] = true
		}
	}
	var roots []string
	for from := range pres {
		if !isChild[from] {
			roots = append(roots, from)
		}
	}
	sort.SliceStable(roots, func(i, j int) bool {
		oi, oj := rootOrder(pres, roots[i]), rootOrder(pres, roots[j])
		if oi.Equal(oj) {
			return roots[i] < roots[j]
		}
		return oi.LessThan(oj)
	})
	return roots
}

func rootOrder(pres map[string][]models.PresentationArc, root string) decimal.Decimal {
	if arcs := pres[root]; len(arcs) > 0 {
		return arcs[0].Order
	}
	return decimal.NewFromInt(1)
}

func buildItem(concept string, weight decimal.Decimal, preferredLabel string, depth int, ctx *models.Context, facts map[string]models.Fact, pres map[string][]models.PresentationArc, labels *models.LabelSet, calc map[string]map[string]decimal.Decimal) *models.StatementItem {
	item := &models.StatementItem{
		Concept: concept,
		Weight:  weight,
		Depth:   depth,
	}

	if ctx != nil {
		if fact, ok := facts[concept+"|"+ctx.ID]; ok && fact.IsNumeric {
			v := fact.Value
			item.Value = &v
		}
	}

	preferred := linkbase.RoleLocalName(preferredLabel)
	if labels != nil {
		item.LabelZH = labelOrFallback(labels.ZHLabel(concept, preferred), concept)
		item.LabelEN = labelOrFallback(labels.ENLabel(concept, preferred), concept)
	} else {
		item.LabelZH = concept
		item.LabelEN = concept
	}

	// pres[concept] is already ordered by presentation-arc order
	// ascending (linkbase.ParsePresentation sorts it), so children are
	// appended in display order without re-sorting here.
	for _, arc := range pres[concept] {
		childWeight := weightFor(calc, concept, arc.To)
		child := buildItem(arc.To, childWeight, arc.PreferredLabel, depth+1, ctx, facts, pres, labels, calc)
		item.Children = append(item.Children, child)
	}
	return item
}

func labelOrFallback(label, concept string) string {
	if label == "" {
		return conceptLocalName(concept)
	}
	return label
}

func conceptLocalName(concept string) string {
	for i := len(concept) - 1; i >= 0; i-- {
		if concept[i] == ':' || concept[i] == '_' {
			return concept[i+1:]
		}
	}
	return concept
}

func sortSiblings(items []*models.StatementItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Concept < items[j].Concept })
}

// flatFallback implements spec.md §4.7's "Missing presentation linkbase
// altogether" failure mode: every concept in the role's schema
// namespace that has a bound fact, sorted by concept name.
func flatFallback(schemaConcepts []string, ctx *models.Context, facts map[string]models.Fact, labels *models.LabelSet, calc map[string]map[string]decimal.Decimal) []*models.StatementItem {
	var items []*models.StatementItem
	for _, concept := range schemaConcepts {
		item := &models.StatementItem{Concept: concept, Weight: anyWeightFor(calc, concept)}
		if ctx != nil {
			if fact, ok := facts[concept+"|"+ctx.ID]; ok && fact.IsNumeric {
				v := fact.Value
				item.Value = &v
			}
		}
		if !item.HasValue() {
			continue
		}
		if labels != nil {
			item.LabelZH = labelOrFallback(labels.ZHLabel(concept, ""), concept)
			item.LabelEN = labelOrFallback(labels.ENLabel(concept, ""), concept)
		} else {
			item.LabelZH = concept
			item.LabelEN = concept
		}
		items = append(items, item)
	}
	sortSiblings(items)
	return items
}

// periodEndDate converts the key's (year, quarter) into the Gregorian
// period end-date per spec.md §4.7.
func periodEndDate(key models.StockPeriodKey) time.Time {
	month, day := key.PeriodEnd()
	return time.Date(key.GregorianYear(), time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
