package taxonomy

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/novis10813/mops-financial-api/internal/apperrors"
	"github.com/novis10813/mops-financial-api/internal/httpclient"
	"github.com/novis10813/mops-financial-api/internal/models"
	"github.com/novis10813/mops-financial-api/internal/xbrl/linkbase"
)

// LinkbaseSet is the parsed result for one resolved taxonomy URL.
// Calculation and Presentation are nil, and Labels is an empty set,
// when the corresponding linkbase file wasn't present or failed to
// parse — a best-effort set per spec.md §4.6 still carries whatever
// parsed cleanly.
type LinkbaseSet struct {
	Calculation map[string][]models.CalculationArc
	Presentation map[string][]models.PresentationArc
	Labels       *models.LabelSet
	BestEffort   bool
}

// Resolver resolves remote taxonomy URLs to a local cache directory,
// fetching via C2 at most once per URL concurrently (single-flight)
// and parsing the cached bytes into calculation/presentation/label
// linkbases.
type Resolver struct {
	root    string
	fetcher *httpclient.Fetcher
	index   *Index
	logger  arbor.ILogger

	mu      sync.Mutex
	inFlight map[string]chan struct{}
	results  map[string]resolveResult
}

type resolveResult struct {
	path string
	err  error
}

// NewResolver constructs a Resolver caching under root, fetching
// misses via fetcher and indexing them in index.
func NewResolver(root string, fetcher *httpclient.Fetcher, index *Index, logger arbor.ILogger) *Resolver {
	return &Resolver{
		root:     root,
		fetcher:  fetcher,
		index:    index,
		logger:   logger,
		inFlight: make(map[string]chan struct{}),
		results:  make(map[string]resolveResult),
	}
}

// Resolve returns the local file path for url, fetching and caching it
// on first access. Concurrent callers for the same url share one fetch
// (spec.md §4.6's single-flight guarantee), mirroring the lock-protected
// in-flight map shape C10 uses for read-through requests.
func (r *Resolver) Resolve(ctx context.Context, url string) (string, error) {
	if entry, err := r.index.Lookup(url); err == nil && entry != nil {
		if _, statErr := os.Stat(entry.LocalPath); statErr == nil {
			return entry.LocalPath, nil
		}
	}

	r.mu.Lock()
	if wait, ok := r.inFlight[url]; ok {
		r.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		r.mu.Lock()
		res := r.results[url]
		r.mu.Unlock()
		return res.path, res.err
	}

	done := make(chan struct{})
	r.inFlight[url] = done
	r.mu.Unlock()

	path, err := r.fetchAndCache(ctx, url)

	r.mu.Lock()
	r.results[url] = resolveResult{path: path, err: err}
	delete(r.inFlight, url)
	r.mu.Unlock()
	close(done)

	return path, err
}

func (r *Resolver) fetchAndCache(ctx context.Context, url string) (string, error) {
	res, err := r.fetcher.Get(ctx, url, http.MethodGet, nil, nil, httpclient.EncodingUTF8)
	if err != nil {
		return "", apperrors.New(apperrors.KindTaxonomyResolution, "taxonomy.Resolve", err)
	}

	localPath := LocalPathFor(r.root, url)
	if err := os.MkdirAll(r.root, 0o755); err != nil {
		return "", apperrors.New(apperrors.KindTaxonomyResolution, "taxonomy.Resolve", err)
	}
	if err := os.WriteFile(localPath, res.Body, 0o644); err != nil {
		return "", apperrors.New(apperrors.KindTaxonomyResolution, "taxonomy.Resolve", err)
	}

	if err := r.index.Put(IndexEntry{URL: url, LocalPath: localPath, FetchedAt: time.Now().Unix()}); err != nil {
		r.logger.Warn().Err(err).Str("url", url).Msg("taxonomy: failed to persist index entry")
	}
	return localPath, nil
}

// ResolveLinkbases resolves calcURL/presURL/labelURL (any of which may
// be empty) and parses whatever it successfully fetched. Failures on
// individual URLs are logged and downgraded rather than propagated —
// spec.md §4.6: "Failure to resolve a schema does not abort parsing."
func (r *Resolver) ResolveLinkbases(ctx context.Context, calcURL, presURL, labelURL string) *LinkbaseSet {
	set := &LinkbaseSet{Labels: models.NewLabelSet()}

	if calcURL != "" {
		if data, err := r.resolveAndRead(ctx, calcURL); err == nil {
			arcs, _, parseErr := linkbase.ParseCalculation(data)
			if parseErr == nil {
				set.Calculation = arcs
			} else {
				set.BestEffort = true
			}
		} else {
			set.BestEffort = true
		}
	}

	if presURL != "" {
		if data, err := r.resolveAndRead(ctx, presURL); err == nil {
			arcs, parseErr := linkbase.ParsePresentation(data)
			if parseErr == nil {
				set.Presentation = arcs
			} else {
				set.BestEffort = true
			}
		} else {
			set.BestEffort = true
		}
	}

	if labelURL != "" {
		if data, err := r.resolveAndRead(ctx, labelURL); err == nil {
			labels, parseErr := linkbase.ParseLabels(data)
			if parseErr == nil {
				set.Labels = labels
			} else {
				set.BestEffort = true
			}
		} else {
			set.BestEffort = true
		}
	}

	return set
}

func (r *Resolver) resolveAndRead(ctx context.Context, url string) ([]byte, error) {
	path, err := r.Resolve(ctx, url)
	if err != nil {
		r.logger.Warn().Err(err).Str("url", url).Msg("taxonomy: resolution failed, degrading to best-effort")
		return nil, err
	}
	return os.ReadFile(path)
}
