// Package xbrl wires C2's download convention and C3 through C7 into
// the single ParseStatement operation C10 calls on a cache miss.
package xbrl

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/novis10813/mops-financial-api/internal/httpclient"
	"github.com/novis10813/mops-financial-api/internal/models"
	"github.com/novis10813/mops-financial-api/internal/xbrl/archive"
	"github.com/novis10813/mops-financial-api/internal/xbrl/instance"
	"github.com/novis10813/mops-financial-api/internal/xbrl/linkbase"
	"github.com/novis10813/mops-financial-api/internal/xbrl/statement"
	"github.com/novis10813/mops-financial-api/internal/xbrl/taxonomy"
)

// Downloader fetches the XBRL ZIP package for one identity tuple
// per spec.md §6's download_xbrl_zip(stock_id, year, quarter).
type Downloader struct {
	fetcher *httpclient.Fetcher
	baseURL string
}

func NewDownloader(fetcher *httpclient.Fetcher, baseURL string) *Downloader {
	return &Downloader{fetcher: fetcher, baseURL: baseURL}
}

// reportCode selects MOPS's consolidated-vs-standalone report code;
// this service only ever requests the consolidated ("C") report.
const reportCode = "C"

func (d *Downloader) DownloadZIP(ctx context.Context, key models.StockPeriodKey) ([]byte, error) {
	url := fmt.Sprintf("%s/server-java/FileDownLoad?functionName=t164sb01&step=9&co_id=%s&year=%d&season=%d&report_id=%s",
		d.baseURL, key.StockID, key.GregorianYear(), key.Quarter, reportCode)
	res, err := d.fetcher.Get(ctx, url, http.MethodGet, nil, nil, httpclient.EncodingUTF8)
	if err != nil {
		return nil, err
	}
	return res.Body, nil
}

// Pipeline runs C3 (unpack) through C7 (build) over a downloaded ZIP.
type Pipeline struct {
	resolver *taxonomy.Resolver
	logger   arbor.ILogger
}

func NewPipeline(resolver *taxonomy.Resolver, logger arbor.ILogger) *Pipeline {
	return &Pipeline{resolver: resolver, logger: logger}
}

func (p *Pipeline) ParseStatement(ctx context.Context, key models.StockPeriodKey, zipBytes []byte) (*models.Statement, error) {
	pkg, err := archive.Unpack(zipBytes)
	if err != nil {
		return nil, err
	}

	facts, contexts, err := instance.Extract(pkg.Instance(), instance.Backends())
	if err != nil {
		return nil, err
	}

	calc, presentation, labels, bestEffort := p.resolveLinkbases(ctx, pkg)
	if bestEffort {
		p.logger.Warn().Str("stock_id", key.StockID).Msg("xbrl: building statement from a best-effort linkbase set")
	}

	stmt := statement.Build(statement.Input{
		Key:          key,
		Facts:        facts,
		Contexts:     contexts,
		Calculation:  calc,
		Presentation: presentation,
		Labels:       labels,
	})

	violations := models.Verify(stmt.Items, statement.CalcChildren(calc), models.AccountingTolerance)
	stmt.Verified = len(violations) == 0
	if !stmt.Verified {
		p.logger.Warn().Str("stock_id", key.StockID).Int("count", len(violations)).Msg("xbrl: accounting-equation violations found")
	}
	return stmt, nil
}

// resolveLinkbases prefers the linkbase files carried inside the ZIP
// itself (pkg.CalcPaths/PresPaths/LabelPaths); when a report package
// omits one, it falls back to C6's remote taxonomy resolver so parsing
// still proceeds best-effort (spec.md §4.6).
func (p *Pipeline) resolveLinkbases(ctx context.Context, pkg *archive.Package) (map[string][]models.CalculationArc, map[string][]models.PresentationArc, *models.LabelSet, bool) {
	var bestEffort bool

	calc, dropped, err := parseFirst(pkg.CalcPaths, pkg, linkbase.ParseCalculation)
	if err != nil {
		bestEffort = true
	}
	if len(dropped) > 0 {
		p.logger.Warn().Int("count", len(dropped)).Msg("xbrl: calculation cycles dropped")
	}

	pres, err := parseFirstPres(pkg.PresPaths, pkg)
	if err != nil {
		bestEffort = true
	}

	labels, err := parseFirstLabels(pkg.LabelPaths, pkg)
	if err != nil {
		bestEffort = true
	}

	if (calc == nil || pres == nil || labels == nil) && p.resolver != nil {
		if schemaURL := schemaLocationURL(pkg.Instance()); schemaURL != "" {
			calcURL, presURL, labelURL := deriveLinkbaseURLs(schemaURL)
			set := p.resolver.ResolveLinkbases(ctx, calcURL, presURL, labelURL)
			if calc == nil {
				calc = set.Calculation
			}
			if pres == nil {
				pres = set.Presentation
			}
			if labels == nil {
				labels = set.Labels
			}
			bestEffort = bestEffort || set.BestEffort
		} else {
			bestEffort = true
		}
	}

	return calc, pres, labels, bestEffort
}

var schemaLocationPattern = regexp.MustCompile(`xsi:schemaLocation="([^"]+)"`)

// schemaLocationURL extracts the first remote .xsd reference from the
// instance document's xsi:schemaLocation attribute, per spec.md §4.6.
// schemaLocation pairs namespace and URL tokens space-separated; the
// URL is the second token of each pair, taken when it is an http(s)
// reference.
func schemaLocationURL(data []byte) string {
	m := schemaLocationPattern.FindSubmatch(data)
	if m == nil {
		return ""
	}
	tokens := strings.Fields(string(m[1]))
	for i := 1; i < len(tokens); i += 2 {
		tok := tokens[i]
		if strings.HasPrefix(tok, "http://") || strings.HasPrefix(tok, "https://") {
			return tok
		}
	}
	return ""
}

// deriveLinkbaseURLs derives the taxonomy's sibling linkbase URLs from
// its schema URL, following MOPS's packaging convention of co-located
// {base}_cal.xml/_pre.xml/_lab.xml next to {base}.xsd.
func deriveLinkbaseURLs(schemaURL string) (calc, pres, label string) {
	base := strings.TrimSuffix(schemaURL, ".xsd")
	return base + "_cal.xml", base + "_pre.xml", base + "_lab.xml"
}

func parseFirst(paths []string, pkg *archive.Package, fn func([]byte) (map[string][]models.CalculationArc, []string, error)) (map[string][]models.CalculationArc, []string, error) {
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no calculation linkbase in package")
	}
	return fn(pkg.Files[paths[0]])
}

func parseFirstPres(paths []string, pkg *archive.Package) (map[string][]models.PresentationArc, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no presentation linkbase in package")
	}
	return linkbase.ParsePresentation(pkg.Files[paths[0]])
}

func parseFirstLabels(paths []string, pkg *archive.Package) (*models.LabelSet, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no label linkbase in package")
	}
	return linkbase.ParseLabels(pkg.Files[paths[0]])
}
