package crawler

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/novis10813/mops-financial-api/internal/apperrors"
	"github.com/novis10813/mops-financial-api/internal/httpclient"
	"github.com/novis10813/mops-financial-api/internal/models"
	"github.com/novis10813/mops-financial-api/internal/numeric"
)

// PledgeQuery identifies one insider-pledge AJAX query.
type PledgeQuery struct {
	Year  int
	Month int
	TypeK string // "sii" or "otc"
	CoID  string // optional, empty means all companies
}

// PledgeScraper posts to MOPS's ajax_stapap1 endpoint and parses the
// returned HTML fragment.
type PledgeScraper struct {
	fetcher *httpclient.Fetcher
	baseURL string
}

func NewPledgeScraper(fetcher *httpclient.Fetcher, baseURL string) *PledgeScraper {
	return &PledgeScraper{fetcher: fetcher, baseURL: baseURL}
}

func (s *PledgeScraper) Fetch(ctx context.Context, q PledgeQuery) ([]models.PledgeRow, error) {
	params := url.Values{
		"year":  {strconv.Itoa(q.Year)},
		"month": {strconv.Itoa(q.Month)},
		"TYPEK": {q.TypeK},
	}
	if q.CoID != "" {
		params.Set("co_id", q.CoID)
	}

	res, err := s.fetcher.Get(ctx, s.baseURL+"/mops/web/ajax_stapap1", http.MethodPost, params, nil, httpclient.EncodingUTF8)
	if err != nil {
		return nil, err
	}
	return ParsePledge([]byte(res.Text), q)
}

// ParsePledge implements spec.md §4.8's pledge-row extraction.
func ParsePledge(decoded []byte, q PledgeQuery) ([]models.PledgeRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return nil, apperrors.New(apperrors.KindParse, "crawler.ParsePledge", err)
	}

	var rows []models.PledgeRow
	counter := &rowCounter{}

	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		texts := cellTexts(tr.Find("td"))
		if len(texts) < 6 {
			return
		}
		stockID := strings.TrimSpace(col(texts, 0))
		if !looksLikeStockID(stockID) {
			return
		}
		counter.found()

		pledgedShares, ok := numeric.ParseString(col(texts, 5))
		if !ok {
			counter.skip()
			return
		}

		row := models.PledgeRow{
			StockID:       stockID,
			CompanyName:   strings.TrimSpace(col(texts, 1)),
			Year:          q.Year,
			Month:         q.Month,
			Title:         strings.TrimSpace(col(texts, 2)),
			Name:          strings.TrimSpace(col(texts, 3)),
			PledgedShares: pledgedShares,
		}
		row.CurrentShares, _ = numeric.ParseString(col(texts, 4))
		row.PledgeRatio, _ = numeric.ParseString(col(texts, 6))
		rows = append(rows, row)
	})

	if err := counter.checkRate("crawler.ParsePledge"); err != nil {
		return rows, err
	}
	return rows, nil
}
