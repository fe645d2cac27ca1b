package instance

import (
	"bytes"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/novis10813/mops-financial-api/internal/apperrors"
	"github.com/novis10813/mops-financial-api/internal/models"
	"github.com/novis10813/mops-financial-api/internal/numeric"
)

// IXBRLBackend extracts facts and contexts from an inline-XBRL HTML
// document via goquery Selection traversal, grounded on the same
// Selection-walking style the crawler uses for table rows.
type IXBRLBackend struct{}

func (IXBRLBackend) Available(data []byte) bool {
	return hasHTMLRoot(data)
}

func (IXBRLBackend) ExtractFacts(data []byte) ([]models.Fact, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.New(apperrors.KindParse, "instance.IXBRLBackend.ExtractFacts", err)
	}

	var facts []models.Fact
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		contextRef, ok := sel.Attr("contextref")
		if !ok {
			return
		}
		name, ok := sel.Attr("name")
		if !ok {
			return
		}

		text := sel.Text()
		fact := models.Fact{
			Concept:    name,
			ContextRef: contextRef,
			Text:       text,
		}

		if unitRef, ok := sel.Attr("unitref"); ok {
			fact.UnitRef = unitRef
			if value, ok := numeric.ParseString(text); ok {
				fact.IsNumeric = true
				attrs := map[string]string{"sign": sel.AttrOr("sign", "")}
				if scale, ok := sel.Attr("scale"); ok {
					attrs["scale"] = scale
					if parsed, err := strconv.Atoi(scale); err == nil {
						fact.Scale = &parsed
					}
				}
				if decimals, ok := sel.Attr("decimals"); ok {
					if parsed, err := strconv.Atoi(decimals); err == nil {
						fact.Decimals = &parsed
					}
				}
				fact.Value = applyScaleAndSign(value, attrs)
			}
		}
		facts = append(facts, fact)
	})
	return facts, nil
}

func (IXBRLBackend) ExtractContexts(data []byte) ([]models.Context, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.New(apperrors.KindParse, "instance.IXBRLBackend.ExtractContexts", err)
	}

	var contexts []models.Context
	doc.Find("context").Each(func(_ int, sel *goquery.Selection) {
		id, _ := sel.Attr("id")
		c := models.Context{ID: id}
		c.EntityIdentifier = sel.Find("identifier").First().Text()

		if instant := sel.Find("instant").First(); instant.Length() > 0 {
			if t, err := time.Parse("2006-01-02", instant.Text()); err == nil {
				c.Period.Instant = t
			}
		} else {
			start := sel.Find("startdate").First().Text()
			end := sel.Find("enddate").First().Text()
			if t, err := time.Parse("2006-01-02", start); err == nil {
				c.Period.Start = t
			}
			if t, err := time.Parse("2006-01-02", end); err == nil {
				c.Period.End = t
			}
		}

		if scenario := sel.Find("scenario"); scenario.Length() > 0 {
			html, _ := scenario.Html()
			c.Scenario = []byte(html)
		}
		contexts = append(contexts, c)
	})
	return contexts, nil
}
