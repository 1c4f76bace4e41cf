// Package scraper wraps the colly collector used for every JSON endpoint the
// stock locator talks to.
package scraper

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aluiziolira/go-stock-locator/config"
)

// Fetcher issues single blocking GET requests and returns the raw body.
// Each call is attempted exactly once.
type Fetcher struct {
	collector *colly.Collector
	Metrics   *Metrics
}

// NewFetcher builds a fetcher configured from cfg. A nil metrics is allowed.
func NewFetcher(cfg config.HTTPConfig, metrics *Metrics) *Fetcher {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(cfg.MaxBodySize),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true
	// Status codes are classified in OnResponse; any 2xx is a success.
	collector.ParseHTTPErrorResponse = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	return &Fetcher{
		collector: collector,
		Metrics:   metrics,
	}
}

// WithTransport replaces the HTTP transport, e.g. with a mock in tests.
func (f *Fetcher) WithTransport(rt http.RoundTripper) {
	f.collector.WithTransport(rt)
}

// GetJSON performs one GET against rawURL and returns the body of a 2xx
// response, which may be empty (e.g. 204). Any other status is returned as a
// typed error from this package.
func (f *Fetcher) GetJSON(ctx context.Context, phase, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "fetch cancelled")
	}

	c := f.collector.Clone()
	var (
		body     []byte
		fetchErr error
		start    = time.Now()
	)

	c.OnResponse(func(r *colly.Response) {
		if r.StatusCode >= http.StatusMultipleChoices {
			fetchErr = classifyError(nil, r.StatusCode)
			return
		}
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = classifyError(err, statusCode)
	})

	f.Metrics.IncRequest(phase)
	zap.L().Debug("fetch started", zap.String("phase", phase), zap.String("url", redact(rawURL)))

	hdr := http.Header{}
	hdr.Set("Accept", "application/json")
	err := c.Request(http.MethodGet, rawURL, nil, nil, hdr)
	f.Metrics.ObserveDuration(phase, time.Since(start))

	if fetchErr == nil && err != nil {
		fetchErr = classifyError(err, 0)
	}
	if fetchErr != nil {
		category := ErrorTypeLabel(fetchErr)
		f.Metrics.IncError(phase, category)
		zap.L().Error("fetch failed",
			zap.String("phase", phase),
			zap.String("url", redact(rawURL)),
			zap.String("category", category),
			zap.Error(fetchErr),
		)
		return nil, eris.Wrapf(fetchErr, "%s request", phase)
	}

	zap.L().Debug("fetch finished",
		zap.String("phase", phase),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)),
	)
	return body, nil
}

// redact hides API keys before URLs reach the logs.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
