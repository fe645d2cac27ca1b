// Package linkbase implements C4: calculation/presentation arc parsing
// and bilingual label extraction from XBRL linkbase XML (spec.md
// §4.4), grounded on the token-walking encoding/xml technique used for
// dynamic XBRL elements in other_examples/RxDataLab-go-edgar__xbrl.go.
package linkbase

import (
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/novis10813/mops-financial-api/internal/apperrors"
	"github.com/novis10813/mops-financial-api/internal/models"
)

// rawArc captures one xlink:from/xlink:to arc element's attributes
// before the locator labels are resolved to concept names.
type rawArc struct {
	fromLabel      string
	toLabel        string
	weight         decimal.Decimal
	order          decimal.Decimal
	preferredLabel string
}

// walkArcs decodes data as a generic linkbase XML tree, collecting
// locators (elements whose local name ends in "loc") and arcs
// (arcElementLocalName elements carrying both xlink:from and xlink:to),
// then resolves arcs to concept names via the locator map.
func walkArcs(data []byte, arcElementLocalName string) ([]rawArc, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	locators := map[string]string{}
	var arcs []rawArc

	for {
		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, apperrors.New(apperrors.KindParse, "linkbase.walkArcs", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		attrs := attrMap(start.Attr)
		switch {
		case strings.HasSuffix(start.Name.Local, "loc"):
			label := attrs["label"]
			href := attrs["href"]
			if label != "" && href != "" {
				locators[label] = conceptFromHref(href)
			}
		case start.Name.Local == arcElementLocalName:
			from := attrs["from"]
			to := attrs["to"]
			if from == "" || to == "" {
				continue
			}
			weight := decimal.NewFromInt(1)
			if w, ok := attrs["weight"]; ok {
				if parsed, err := decimal.NewFromString(w); err == nil {
					weight = parsed
				}
			}
			order := decimal.NewFromInt(1)
			if o, ok := attrs["order"]; ok {
				if parsed, err := decimal.NewFromString(o); err == nil {
					order = parsed
				}
			}
			arcs = append(arcs, rawArc{
				fromLabel:      from,
				toLabel:        to,
				weight:         weight,
				order:          order,
				preferredLabel: attrs["preferredLabel"],
			})
		}
	}

	for i := range arcs {
		if c, ok := locators[arcs[i].fromLabel]; ok {
			arcs[i].fromLabel = c
		}
		if c, ok := locators[arcs[i].toLabel]; ok {
			arcs[i].toLabel = c
		}
	}
	return arcs, nil
}

// attrMap indexes xml.Attr by local name, ignoring namespace prefixes
// (xlink:from, xlink:to, xlink:label, xlink:href, xlink:role all
// resolve to "from"/"to"/"label"/"href"/"role").
func attrMap(attrs []xml.Attr) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[a.Name.Local] = a.Value
	}
	return out
}

// conceptFromHref resolves a locator's xlink:href to the prefix:LocalName
// QName form C5 binds facts under (xml_backend.go's conceptName,
// ixbrl_backend.go's raw name attribute). Schema IDs encode that QName
// as the NCName "<prefix>_<LocalName>" (e.g. "ifrs-full_Revenue"); the
// prefix itself never contains an underscore, so splitting on the first
// one recovers both parts.
func conceptFromHref(href string) string {
	idx := strings.LastIndex(href, "#")
	if idx == -1 {
		return href
	}
	fragment := href[idx+1:]
	if us := strings.IndexByte(fragment, '_'); us != -1 {
		return fragment[:us] + ":" + fragment[us+1:]
	}
	return fragment
}

// ParseCalculation implements spec.md §4.4: map from_concept to an
// ordered list of calculation arcs, sorted by order ascending with
// to_concept as tiebreaker. The cycle-closing arc of each cycle is
// dropped here and described in the returned slice so the caller can
// warn about it (spec.md §9 — cycles are detected and dropped with a
// warning, not failed outright).
func ParseCalculation(data []byte) (map[string][]models.CalculationArc, []string, error) {
	raw, err := walkArcs(data, "calculationArc")
	if err != nil {
		return nil, nil, err
	}

	byFrom := map[string][]models.CalculationArc{}
	for _, a := range raw {
		byFrom[a.fromLabel] = append(byFrom[a.fromLabel], models.CalculationArc{
			From:   a.fromLabel,
			To:     a.toLabel,
			Weight: a.weight,
			Order:  a.order,
		})
	}
	for from := range byFrom {
		sortArcs(byFrom[from])
	}

	dropped := dropCycles(byFrom)
	return byFrom, dropped, nil
}

// ParsePresentation implements spec.md §4.4 for presentation arcs.
func ParsePresentation(data []byte) (map[string][]models.PresentationArc, error) {
	raw, err := walkArcs(data, "presentationArc")
	if err != nil {
		return nil, err
	}

	byFrom := map[string][]models.PresentationArc{}
	for _, a := range raw {
		byFrom[a.fromLabel] = append(byFrom[a.fromLabel], models.PresentationArc{
			From:           a.fromLabel,
			To:             a.toLabel,
			Order:          a.order,
			PreferredLabel: a.preferredLabel,
		})
	}
	for from := range byFrom {
		sortPresArcs(byFrom[from])
	}
	return byFrom, nil
}

func sortArcs(arcs []models.CalculationArc) {
	sort.SliceStable(arcs, func(i, j int) bool {
		if arcs[i].Order.Equal(arcs[j].Order) {
			return arcs[i].To < arcs[j].To
		}
		return arcs[i].Order.LessThan(arcs[j].Order)
	})
}

func sortPresArcs(arcs []models.PresentationArc) {
	sort.SliceStable(arcs, func(i, j int) bool {
		if arcs[i].Order.Equal(arcs[j].Order) {
			return arcs[i].To < arcs[j].To
		}
		return arcs[i].Order.LessThan(arcs[j].Order)
	})
}

// dropCycles removes the cycle-closing arc from each detected cycle in
// the calculation arc graph (spec.md §4, §9: "detect and drop the
// cycle-closing arc with a warning rather than failing the whole
// document"). Returns human-readable descriptions of what was dropped.
func dropCycles(byFrom map[string][]models.CalculationArc) []string {
	var dropped []string
	visiting := map[string]bool{}
	visited := map[string]bool{}

	var visit func(concept string) bool
	visit = func(concept string) bool {
		if visited[concept] {
			return false
		}
		visiting[concept] = true
		arcs := byFrom[concept]
		kept := arcs[:0]
		for _, arc := range arcs {
			if visiting[arc.To] {
				dropped = append(dropped, concept+"->"+arc.To)
				continue
			}
			kept = append(kept, arc)
			visit(arc.To)
		}
		byFrom[concept] = kept
		visiting[concept] = false
		visited[concept] = true
		return true
	}

	for concept := range byFrom {
		visit(concept)
	}
	return dropped
}
