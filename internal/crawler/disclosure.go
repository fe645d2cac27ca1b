package crawler

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/novis10813/mops-financial-api/internal/apperrors"
	"github.com/novis10813/mops-financial-api/internal/httpclient"
	"github.com/novis10813/mops-financial-api/internal/models"
	"github.com/novis10813/mops-financial-api/internal/numeric"
)

// DisclosureQuery identifies one funds-lending/endorsement AJAX query.
type DisclosureQuery struct {
	Year  int
	Month int
	TypeK string
	CoID  string
}

type DisclosureScraper struct {
	fetcher *httpclient.Fetcher
	baseURL string
}

func NewDisclosureScraper(fetcher *httpclient.Fetcher, baseURL string) *DisclosureScraper {
	return &DisclosureScraper{fetcher: fetcher, baseURL: baseURL}
}

func (s *DisclosureScraper) Fetch(ctx context.Context, q DisclosureQuery) (*models.DisclosureResult, error) {
	params := url.Values{
		"year":  {strconv.Itoa(q.Year)},
		"month": {strconv.Itoa(q.Month)},
		"TYPEK": {q.TypeK},
	}
	if q.CoID != "" {
		params.Set("co_id", q.CoID)
	}

	res, err := s.fetcher.Get(ctx, s.baseURL+"/mops/web/ajax_t05st11", http.MethodPost, params, nil, httpclient.EncodingUTF8)
	if err != nil {
		return nil, err
	}
	return ParseDisclosure([]byte(res.Text), q)
}

// ParseDisclosure implements spec.md §4.8's two-row-set plus
// cross-company-rollup extraction. The two row-sets are told apart by
// the id of the element wrapping each table in the fragment
// ("fundslending" / "endorsement"); section headings are not read.
func ParseDisclosure(decoded []byte, q DisclosureQuery) (*models.DisclosureResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return nil, apperrors.New(apperrors.KindParse, "crawler.ParseDisclosure", err)
	}

	result := &models.DisclosureResult{}
	counter := &rowCounter{}

	fundsLending, err := parseDisclosureTable(doc, "#fundslending table tr", "funds_lending", q, counter)
	if err != nil {
		return nil, err
	}
	endorsement, err := parseDisclosureTable(doc, "#endorsement table tr", "endorsement_guarantee", q, counter)
	if err != nil {
		return nil, err
	}
	result.FundsLending = fundsLending
	result.EndorsementGuarantee = endorsement

	if rollup, ok := numeric.ParseString(strings.TrimSpace(doc.Find(".cross-company-rollup").First().Text())); ok {
		result.CrossCompanyRollup = rollup
	} else {
		result.CrossCompanyRollup = decimal.Zero
	}

	if err := counter.checkRate("crawler.ParseDisclosure"); err != nil {
		return result, err
	}
	return result, nil
}

func parseDisclosureTable(doc *goquery.Document, selector, kind string, q DisclosureQuery, counter *rowCounter) ([]models.DisclosureRow, error) {
	var rows []models.DisclosureRow
	doc.Find(selector).Each(func(_ int, tr *goquery.Selection) {
		texts := cellTexts(tr.Find("td"))
		if len(texts) < 5 {
			return
		}
		entityText := strings.TrimSpace(col(texts, 0))
		entity := models.DisclosureEntitySelf
		switch entityText {
		case string(models.DisclosureEntitySelf):
			entity = models.DisclosureEntitySelf
		case string(models.DisclosureEntitySubsidiary):
			entity = models.DisclosureEntitySubsidiary
		default:
			return // not a data row (likely a header)
		}
		counter.found()

		current, ok := numeric.ParseString(col(texts, 2))
		if !ok {
			counter.skip()
			return
		}

		row := models.DisclosureRow{
			StockID:      strings.TrimSpace(col(texts, 1)),
			Year:         q.Year,
			Month:        q.Month,
			Kind:         kind,
			Entity:       entity,
			HasBalance:   true,
			CurrentMonth: current,
		}
		row.PreviousMonth, _ = numeric.ParseString(col(texts, 3))
		row.MaxLimit, _ = numeric.ParseString(col(texts, 4))
		row.AccumulatedBalance, _ = numeric.ParseString(col(texts, 5))
		row.HasBalance = !row.CurrentMonth.IsZero() || !row.AccumulatedBalance.IsZero()
		rows = append(rows, row)
	})
	return rows, nil
}
