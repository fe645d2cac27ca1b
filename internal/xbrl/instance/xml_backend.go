package instance

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/novis10813/mops-financial-api/internal/apperrors"
	"github.com/novis10813/mops-financial-api/internal/models"
	"github.com/novis10813/mops-financial-api/internal/numeric"
)

// XMLBackend extracts facts and contexts from a plain XBRL instance
// document (root element xbrli:xbrl), walking tokens the same way
// internal/xbrl/linkbase does.
type XMLBackend struct{}

func (XMLBackend) Available(data []byte) bool {
	return hasXBRLIRoot(data) && !hasHTMLRoot(data)
}

func (XMLBackend) ExtractFacts(data []byte) ([]models.Fact, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var facts []models.Fact

	for {
		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, apperrors.New(apperrors.KindParse, "instance.XMLBackend.ExtractFacts", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		attrs := attrMap(start.Attr)
		contextRef, ok := attrs["contextRef"]
		if !ok {
			continue
		}

		var text string
		if err := decoder.DecodeElement(&text, &start); err != nil {
			return nil, apperrors.New(apperrors.KindParse, "instance.XMLBackend.ExtractFacts", err)
		}

		fact := models.Fact{
			Concept:    conceptName(start.Name),
			ContextRef: contextRef,
			UnitRef:    attrs["unitRef"],
			Text:       text,
		}

		if fact.UnitRef != "" {
			if value, ok := numeric.ParseString(text); ok {
				fact.IsNumeric = true
				fact.Value = applyScaleAndSign(value, attrs)
				if d, ok := attrs["decimals"]; ok {
					if parsed, err := strconv.Atoi(d); err == nil {
						fact.Decimals = &parsed
					}
				}
				if s, ok := attrs["scale"]; ok {
					if parsed, err := strconv.Atoi(s); err == nil {
						fact.Scale = &parsed
					}
				}
			}
		}
		facts = append(facts, fact)
	}
	return facts, nil
}

// applyScaleAndSign implements spec.md §4.5's
// final_value = parsed × (sign=="-" ? -1 : 1) × 10^scale.
func applyScaleAndSign(value decimal.Decimal, attrs map[string]string) decimal.Decimal {
	v := value
	if attrs["sign"] == "-" {
		v = v.Neg()
	}
	if s, ok := attrs["scale"]; ok {
		if scale, err := strconv.Atoi(s); err == nil && scale != 0 {
			v = v.Shift(int32(scale))
		}
	}
	return v
}

func (XMLBackend) ExtractContexts(data []byte) ([]models.Context, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var contexts []models.Context

	for {
		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, apperrors.New(apperrors.KindParse, "instance.XMLBackend.ExtractContexts", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "context" {
			continue
		}

		var raw rawContext
		if err := decoder.DecodeElement(&raw, &start); err != nil {
			return nil, apperrors.New(apperrors.KindParse, "instance.XMLBackend.ExtractContexts", err)
		}
		contexts = append(contexts, raw.toContext(attrMap(start.Attr)["id"]))
	}
	return contexts, nil
}

// rawContext mirrors the xbrli:context schema closely enough for
// encoding/xml to decode it directly, avoiding another hand-rolled
// token walk for this well-defined, fixed-shape element.
type rawContext struct {
	Entity struct {
		Identifier string `xml:"identifier"`
	} `xml:"entity"`
	Period struct {
		Instant   string `xml:"instant"`
		StartDate string `xml:"startDate"`
		EndDate   string `xml:"endDate"`
	} `xml:"period"`
	Scenario struct {
		Inner []byte `xml:",innerxml"`
	} `xml:"scenario"`
}

func (r rawContext) toContext(id string) models.Context {
	c := models.Context{ID: id, EntityIdentifier: r.Entity.Identifier}
	if r.Period.Instant != "" {
		if t, err := time.Parse("2006-01-02", r.Period.Instant); err == nil {
			c.Period.Instant = t
		}
	}
	if r.Period.StartDate != "" && r.Period.EndDate != "" {
		if t, err := time.Parse("2006-01-02", r.Period.StartDate); err == nil {
			c.Period.Start = t
		}
		if t, err := time.Parse("2006-01-02", r.Period.EndDate); err == nil {
			c.Period.End = t
		}
	}
	c.Scenario = r.Scenario.Inner
	return c
}

func attrMap(attrs []xml.Attr) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[a.Name.Local] = a.Value
	}
	return out
}

// conceptName builds "prefix:LocalName" from a decoded xml.Name,
// recovering a namespace prefix from the resolved URI the same way
// RxDataLab's extractFacts does for us-gaap/dei — fall back to the
// URI's last path segment when the prefix isn't one of the fixed
// known ones.
func conceptName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return namespacePrefix(name.Space) + ":" + name.Local
}

func namespacePrefix(namespace string) string {
	switch {
	case bytesContainsFold(namespace, "ifrs-full"):
		return "ifrs-full"
	case bytesContainsFold(namespace, "tifrs"):
		return "tifrs"
	case bytesContainsFold(namespace, "xbrli"):
		return "xbrli"
	}
	idx := bytes.LastIndexByte([]byte(namespace), '/')
	if idx == -1 || idx == len(namespace)-1 {
		return namespace
	}
	return namespace[idx+1:]
}

func bytesContainsFold(s, substr string) bool {
	return bytes.Contains(bytes.ToLower([]byte(s)), bytes.ToLower([]byte(substr)))
}
