package crawler

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/novis10813/mops-financial-api/internal/apperrors"
	"github.com/novis10813/mops-financial-api/internal/httpclient"
	"github.com/novis10813/mops-financial-api/internal/models"
	"github.com/novis10813/mops-financial-api/internal/numeric"
)

// DividendQuery identifies one dividend-resolution AJAX query.
// QueryType 1 returns quarterly rows, 2 returns annual rows (Quarter
// is nil for those).
type DividendQuery struct {
	YearStart int
	YearEnd   int
	QueryType int
	CoID      string
}

type DividendScraper struct {
	fetcher *httpclient.Fetcher
	baseURL string
}

func NewDividendScraper(fetcher *httpclient.Fetcher, baseURL string) *DividendScraper {
	return &DividendScraper{fetcher: fetcher, baseURL: baseURL}
}

func (s *DividendScraper) Fetch(ctx context.Context, q DividendQuery) ([]models.DividendRow, error) {
	params := url.Values{
		"year_start": {strconv.Itoa(q.YearStart)},
		"year_end":   {strconv.Itoa(q.YearEnd)},
		"query_type": {strconv.Itoa(q.QueryType)},
	}
	if q.CoID != "" {
		params.Set("co_id", q.CoID)
	}

	res, err := s.fetcher.Get(ctx, s.baseURL+"/mops/web/ajax_t05st09_2", http.MethodPost, params, nil, httpclient.EncodingUTF8)
	if err != nil {
		return nil, err
	}
	return ParseDividend([]byte(res.Text), q)
}

// ParseDividend implements spec.md §4.8's dividend-row extraction.
// Column layout differs by query_type: annual rows (2) omit the
// quarter column, so the column indices for cash/stock/date shift by one.
func ParseDividend(decoded []byte, q DividendQuery) ([]models.DividendRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return nil, apperrors.New(apperrors.KindParse, "crawler.ParseDividend", err)
	}

	var rows []models.DividendRow
	counter := &rowCounter{}
	annual := q.QueryType == 2

	const yearCol = 1
	quarterCol, cashCol, stockCol, dateCol := 2, 3, 4, 5
	if annual {
		cashCol, stockCol, dateCol = 2, 3, 4
	}

	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		texts := cellTexts(tr.Find("td"))
		minCols := dateCol + 1
		if len(texts) < minCols {
			return
		}
		stockID := strings.TrimSpace(col(texts, 0))
		if !looksLikeStockID(stockID) {
			return
		}
		counter.found()

		year, err := strconv.Atoi(strings.TrimSpace(col(texts, yearCol)))
		if err != nil {
			counter.skip()
			return
		}

		var quarter *int
		if !annual {
			q, ok := parseQuarter(col(texts, quarterCol))
			if !ok {
				counter.skip()
				return
			}
			quarter = &q
		}

		cash, ok := numeric.ParseString(col(texts, cashCol))
		if !ok {
			counter.skip()
			return
		}

		row := models.DividendRow{
			StockID:      stockID,
			Year:         year,
			Quarter:      quarter,
			CashDividend: cash,
		}
		row.StockDividend, _ = numeric.ParseString(col(texts, stockCol))
		if t, err := time.Parse("2006-01-02", strings.TrimSpace(col(texts, dateCol))); err == nil {
			row.BoardResolutionDate = t
		}
		rows = append(rows, row)
	})

	if err := counter.checkRate("crawler.ParseDividend"); err != nil {
		return rows, err
	}
	return rows, nil
}

func parseQuarter(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 4 {
		return 0, false
	}
	return n, true
}
