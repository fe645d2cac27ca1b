// Package httpclient implements C2: a rate-limited HTTP fetch
// primitive with encoding-aware body decoding (spec.md §4.2).
package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/novis10813/mops-financial-api/internal/apperrors"
)

// Encoding names the decode-hint values C10/C8 pass per endpoint.
type Encoding string

const (
	EncodingBig5 Encoding = "big5"
	EncodingUTF8 Encoding = "utf-8"
)

// replacementCharThreshold is the §4.2 "≥1% of bytes" fallback rule.
const replacementCharThreshold = 0.01

// Result is the outcome of a single fetch.
type Result struct {
	Body       []byte
	Text       string
	StatusCode int
}

// Fetcher enforces a per-host minimum inter-request spacing and
// decodes response bodies with automatic encoding fallback.
type Fetcher struct {
	client    *http.Client
	userAgent string
	referer   string
	timeout   time.Duration
	maxBody   int64
	logger    arbor.ILogger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	minGap   time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

func WithUserAgent(ua string) Option       { return func(f *Fetcher) { f.userAgent = ua } }
func WithReferer(referer string) Option    { return func(f *Fetcher) { f.referer = referer } }
func WithMaxBodyBytes(n int64) Option       { return func(f *Fetcher) { f.maxBody = n } }
func WithMinInterval(d time.Duration) Option { return func(f *Fetcher) { f.minGap = d } }

// WithCABundle loads a private CA bundle into the client's transport,
// per spec.md §9's supported override for TLS verification (always on).
func WithCABundle(path string) Option {
	return func(f *Fetcher) {
		if path == "" {
			return
		}
		pem, err := os.ReadFile(path)
		if err != nil {
			return
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return
		}
		transport := f.client.Transport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{RootCAs: pool}
		f.client.Transport = transport
	}
}

// New constructs a Fetcher with a 30s default timeout and 1s default
// per-host spacing (spec.md §4.2).
func New(logger arbor.ILogger, opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:  30 * time.Second,
		minGap:   1 * time.Second,
		maxBody:  50 * 1024 * 1024,
		logger:   logger,
		limiters: make(map[string]*rate.Limiter),
		client:   &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client.Timeout = f.timeout
	return f
}

func (f *Fetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		// One token every minGap, burst of 1: serializes callers per host
		// while letting each wait cooperatively (spec.md §4.2/§5).
		lim = rate.NewLimiter(rate.Every(f.minGap), 1)
		f.limiters[host] = lim
	}
	return lim
}

// Get performs a rate-limited GET/POST request and decodes the body
// using encodingHint, falling back to the other known encoding if the
// decoded text's replacement characters reach 1% of the body's bytes.
func (f *Fetcher) Get(ctx context.Context, rawURL, method string, params url.Values, headers http.Header, encodingHint Encoding) (*Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperrors.New(apperrors.KindClient, "httpclient.Get", err)
	}

	if err := f.limiterFor(u.Host).Wait(ctx); err != nil {
		return nil, apperrors.New(apperrors.KindTransientFetch, "httpclient.Get", err)
	}

	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	target := *u
	if method == http.MethodGet {
		if params != nil {
			q := target.Query()
			for k, vs := range params {
				for _, v := range vs {
					q.Add(k, v)
				}
			}
			target.RawQuery = q.Encode()
		}
	} else if params != nil {
		body = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, apperrors.New(apperrors.KindClient, "httpclient.Get", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if f.referer != "" {
		req.Header.Set("Referer", f.referer)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	f.logger.Debug().Str("url", target.String()).Str("method", method).Msg("httpclient: request")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.New(apperrors.KindTransientFetch, "httpclient.Get", err)
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, f.maxBody+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, apperrors.New(apperrors.KindTransientFetch, "httpclient.Get", err)
	}
	if int64(len(raw)) > f.maxBody {
		return nil, apperrors.New(apperrors.KindClient, "httpclient.Get", fmt.Errorf("response exceeds %d bytes", f.maxBody))
	}

	if err := classifyStatus(resp.StatusCode); err != nil {
		return &Result{Body: raw, StatusCode: resp.StatusCode}, err
	}

	text := decodeWithFallback(raw, encodingHint, f.logger)
	return &Result{Body: raw, Text: text, StatusCode: resp.StatusCode}, nil
}

func classifyStatus(status int) error {
	switch {
	case status == http.StatusNotFound:
		return apperrors.New(apperrors.KindNotFound, "httpclient.Get", fmt.Errorf("http %d", status))
	case status >= 400 && status < 500:
		return apperrors.New(apperrors.KindClient, "httpclient.Get", fmt.Errorf("http %d", status))
	case status >= 500:
		return apperrors.New(apperrors.KindTransientFetch, "httpclient.Get", fmt.Errorf("http %d", status))
	default:
		return nil
	}
}
