package linkbase

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/novis10813/mops-financial-api/internal/apperrors"
	"github.com/novis10813/mops-financial-api/internal/models"
)

// rawLabel is one <label> element's text together with the role and
// language it was declared under, before resolution to a concept.
type rawLabel struct {
	labelID string
	role    string
	lang    string
	text    string
}

// ParseLabels implements spec.md §4.4's label extraction: locators map
// concept to label-element IDs via labelArcs, and <label> elements
// carry role/xml:lang/text. Concepts with no matching label are simply
// absent from the returned set; callers fall back to the concept's
// local name.
func ParseLabels(data []byte) (*models.LabelSet, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	locators := map[string]string{}  // xlink:label -> concept
	labelArcs := map[string][]string{} // from (locator label) -> every to (label element label)
	labels := map[string]rawLabel{}  // label element's xlink:label -> rawLabel

	for {
		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, apperrors.New(apperrors.KindParse, "linkbase.ParseLabels", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		attrs := attrMap(start.Attr)

		switch {
		case strings.HasSuffix(start.Name.Local, "loc"):
			if label, href := attrs["label"], attrs["href"]; label != "" && href != "" {
				locators[label] = conceptFromHref(href)
			}
		case start.Name.Local == "labelArc":
			if from, to := attrs["from"], attrs["to"]; from != "" && to != "" {
				labelArcs[from] = append(labelArcs[from], to)
			}
		case start.Name.Local == "label":
			var text string
			if err := decoder.DecodeElement(&text, &start); err != nil {
				return nil, apperrors.New(apperrors.KindParse, "linkbase.ParseLabels", err)
			}
			labels[attrs["label"]] = rawLabel{
				labelID: attrs["label"],
				role:    RoleLocalName(attrs["role"]),
				lang:    attrs["lang"],
				text:    text,
			}
		}
	}

	set := models.NewLabelSet()
	for locLabel, concept := range locators {
		for _, labelElementID := range labelArcs[locLabel] {
			lbl, ok := labels[labelElementID]
			if !ok {
				continue
			}
			target := set.EN
			if isZH(lbl.lang) {
				target = set.ZH
			}
			if target[concept] == nil {
				target[concept] = map[string]string{}
			}
			target[concept][lbl.role] = lbl.text
		}
	}
	return set, nil
}

func isZH(lang string) bool {
	return strings.HasPrefix(strings.ToLower(lang), "zh")
}

// RoleLocalName reduces a full role URI
// (http://www.xbrl.org/2003/role/terseLabel) to its local name
// (terseLabel) for matching against a LabelSet's role keys. Exported
// so the statement builder can convert a presentation arc's
// preferredLabel URI before calling LabelSet.ZHLabel/ENLabel.
func RoleLocalName(role string) string {
	idx := strings.LastIndex(role, "/")
	if idx == -1 {
		return role
	}
	return role[idx+1:]
}
