package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fact is a single concept-valued datum bound to a context.
type Fact struct {
	Concept    string // qualified name, e.g. "ifrs-full:Revenue"
	ContextRef string
	UnitRef    string
	Text       string           // raw text for non-numeric facts
	Value      decimal.Decimal  // parsed value for numeric facts
	IsNumeric  bool
	Decimals   *int
	Scale      *int
}

// Period is either an instant or a duration. Exactly one of Instant or
// (Start, End) is set.
type Period struct {
	Instant time.Time
	Start   time.Time
	End     time.Time
}

// IsInstant reports whether p represents a point in time.
func (p Period) IsInstant() bool {
	return !p.Instant.IsZero()
}

// IsDuration reports whether p represents a start..end range.
func (p Period) IsDuration() bool {
	return !p.Start.IsZero() && !p.End.IsZero()
}

// Context carries the entity, period, and opaque scenario/segment for
// a set of facts.
type Context struct {
	ID               string
	EntityIdentifier string
	Period           Period
	Scenario         []byte // opaque, preserved but not interpreted
}

// HasScenario reports whether c carries a non-empty scenario/segment.
func (c Context) HasScenario() bool {
	return len(c.Scenario) > 0
}

// CalculationArc is a signed, weighted relation between two concepts
// inside a calculation linkbase.
type CalculationArc struct {
	From   string
	To     string
	Weight decimal.Decimal
	Order  decimal.Decimal
}

// PresentationArc is an ordering relation for display inside a
// presentation linkbase role.
type PresentationArc struct {
	From            string
	To              string
	Order           decimal.Decimal
	PreferredLabel  string
}

// LabelSet holds the zh/en display-label maps produced by the label
// linkbase parser, keyed by concept then by XBRL label role.
type LabelSet struct {
	ZH map[string]map[string]string // concept -> role -> text
	EN map[string]map[string]string
}

func NewLabelSet() *LabelSet {
	return &LabelSet{ZH: map[string]map[string]string{}, EN: map[string]map[string]string{}}
}

// labelRolePriority mirrors spec.md §4.4: terseLabel beats label beats
// verboseLabel when no preferred_label is given.
var labelRolePriority = []string{"terseLabel", "label", "verboseLabel"}

func (l *LabelSet) resolve(lang map[string]map[string]string, concept, preferred string) string {
	roles, ok := lang[concept]
	if !ok {
		return ""
	}
	if preferred != "" {
		if text, ok := roles[preferred]; ok {
			return text
		}
	}
	for _, role := range labelRolePriority {
		if text, ok := roles[role]; ok {
			return text
		}
	}
	// fall back to any role present, deterministically picking the first
	// by role-name order so resolution is stable across runs.
	for _, role := range sortedKeys(roles) {
		return roles[role]
	}
	return ""
}

// ZHLabel resolves the Chinese display label for concept.
func (l *LabelSet) ZHLabel(concept, preferred string) string {
	return l.resolve(l.ZH, concept, preferred)
}

// ENLabel resolves the English display label for concept.
func (l *LabelSet) ENLabel(concept, preferred string) string {
	return l.resolve(l.EN, concept, preferred)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
