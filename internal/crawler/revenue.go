package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/novis10813/mops-financial-api/internal/apperrors"
	"github.com/novis10813/mops-financial-api/internal/httpclient"
	"github.com/novis10813/mops-financial-api/internal/models"
	"github.com/novis10813/mops-financial-api/internal/numeric"
)

// RevenueQuery identifies one monthly-revenue filing page.
type RevenueQuery struct {
	Market string // "sii" or "otc"
	Year   int    // ROC year
	Month  int
	Type   string // MOPS's filing-type code, e.g. "0" for general industries
}

// RevenueScraper fetches and parses MOPS's monthly revenue table.
type RevenueScraper struct {
	fetcher *httpclient.Fetcher
	baseURL string
}

func NewRevenueScraper(fetcher *httpclient.Fetcher, baseURL string) *RevenueScraper {
	return &RevenueScraper{fetcher: fetcher, baseURL: baseURL}
}

func (s *RevenueScraper) url(q RevenueQuery) string {
	typeCode := q.Type
	if typeCode == "" {
		typeCode = "0"
	}
	return fmt.Sprintf("%s/nas/t21/%s/t21sc03_%d_%d_%s.html", s.baseURL, q.Market, q.Year, q.Month, typeCode)
}

// Fetch retrieves the revenue page over HTTP and parses it.
func (s *RevenueScraper) Fetch(ctx context.Context, q RevenueQuery) ([]models.RevenueRow, error) {
	res, err := s.fetcher.Get(ctx, s.url(q), http.MethodGet, nil, nil, httpclient.EncodingBig5)
	if err != nil {
		return nil, err
	}
	return ParseRevenue([]byte(res.Text), q)
}

// ParseRevenue implements spec.md §4.8's revenue-row extraction as a
// pure function over already-decoded HTML text.
func ParseRevenue(decoded []byte, q RevenueQuery) ([]models.RevenueRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return nil, apperrors.New(apperrors.KindParse, "crawler.ParseRevenue", err)
	}

	var rows []models.RevenueRow
	counter := &rowCounter{}

	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 3 {
			return // header/footer row
		}
		texts := cellTexts(cells)

		stockID := strings.TrimSpace(texts[0])
		if stockID == "" || !looksLikeStockID(stockID) {
			return // not a data row
		}
		counter.found()

		revenue, ok := numeric.ParseString(col(texts, 2))
		if !ok {
			counter.skip()
			return
		}

		row := models.RevenueRow{
			StockID:     stockID,
			CompanyName: strings.TrimSpace(col(texts, 1)),
			Year:        q.Year,
			Month:       q.Month,
			Market:      q.Market,
			Revenue:     revenue,
		}
		row.RevenueLastMonth, _ = numeric.ParseString(col(texts, 3))
		row.RevenueLastYear, _ = numeric.ParseString(col(texts, 4))
		row.MoMChange, _ = numeric.ParseString(col(texts, 5))
		row.YoYChange, _ = numeric.ParseString(col(texts, 6))
		row.AccumulatedRevenue, _ = numeric.ParseString(col(texts, 7))
		row.AccumulatedLastYear, _ = numeric.ParseString(col(texts, 8))
		row.AccumulatedYoYChange, _ = numeric.ParseString(col(texts, 9))
		row.Comment = strings.TrimSpace(col(texts, 10))

		rows = append(rows, row)
	})

	if err := counter.checkRate("crawler.ParseRevenue"); err != nil {
		return rows, err
	}
	return rows, nil
}

func cellTexts(cells *goquery.Selection) []string {
	texts := make([]string, cells.Length())
	cells.Each(func(i int, cell *goquery.Selection) {
		texts[i] = cell.Text()
	})
	return texts
}

func col(texts []string, i int) string {
	if i < 0 || i >= len(texts) {
		return ""
	}
	return texts[i]
}

// looksLikeStockID rejects non-data rows (section headers, notes)
// that lack a plausible 4+ digit stock code in the first cell.
func looksLikeStockID(s string) bool {
	if len(s) < 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
