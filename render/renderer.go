// Package render loads product pages in a headless browser and returns the
// client state the page injects after hydration.
package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/aluiziolira/go-stock-locator/config"
	"github.com/aluiziolira/go-stock-locator/scraper"
)

// Renderer returns the JSON-serialised page-global state of a rendered page.
// A page without the state global yields the JSON literal null.
type Renderer interface {
	Render(ctx context.Context, pageURL string) ([]byte, error)
}

// ChromeRenderer renders pages with a fresh headless Chrome per call.
type ChromeRenderer struct {
	cfg       config.RenderConfig
	userAgent string
	limiter   *rate.Limiter
	metrics   *scraper.Metrics
}

// NewChromeRenderer builds a renderer. Consecutive renders are spaced at least
// cfg.MinInterval apart.
func NewChromeRenderer(cfg config.RenderConfig, userAgent string, metrics *scraper.Metrics) *ChromeRenderer {
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	return &ChromeRenderer{
		cfg:       cfg,
		userAgent: userAgent,
		limiter:   rate.NewLimiter(limit, 1),
		metrics:   metrics,
	}
}

// Render navigates to pageURL, waits for the network to go idle and reads the
// configured state global. Browser resources are released before returning.
func (r *ChromeRenderer) Render(ctx context.Context, pageURL string) ([]byte, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "render limiter wait")
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", r.cfg.Headless),
		chromedp.UserAgent(r.userAgent),
	)
	if r.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.cfg.ExecPath))
	}
	if r.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	start := time.Now()
	r.metrics.IncRequest(scraper.PhaseRender)
	zap.L().Debug("render started", zap.String("url", pageURL))

	idle := waitNetworkIdle(tabCtx)
	var state string
	err := chromedp.Run(tabCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return page.SetLifecycleEventsEnabled(true).Do(ctx)
		}),
		chromedp.Navigate(pageURL),
		idle,
		chromedp.Evaluate(stateExpression(r.cfg.StateGlobal), &state),
	)
	r.metrics.ObserveDuration(scraper.PhaseRender, time.Since(start))
	if err != nil {
		r.metrics.IncError(scraper.PhaseRender, scraper.ErrorTypeLabel(err))
		return nil, eris.Wrapf(err, "render %s", pageURL)
	}

	zap.L().Debug("render finished",
		zap.String("url", pageURL),
		zap.Int("state_bytes", len(state)),
		zap.Duration("duration", time.Since(start)),
	)
	return []byte(state), nil
}

// stateExpression serialises window[global] so the result is detached from
// the live page and keeps object key order.
func stateExpression(global string) string {
	return fmt.Sprintf("JSON.stringify(window[%q] ?? null)", global)
}

// waitNetworkIdle returns an action that blocks until the document loaded by
// the next navigation reports networkIdle. The listener is registered
// immediately so events fired during Navigate are not missed.
func waitNetworkIdle(ctx context.Context) chromedp.Action {
	var (
		mu       sync.Mutex
		loaderID string
		once     sync.Once
		done     = make(chan struct{})
	)

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		e, ok := ev.(*page.EventLifecycleEvent)
		if !ok {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		switch e.Name {
		case "init":
			// The main document commits before any of its subframes.
			if loaderID == "" {
				loaderID = string(e.LoaderID)
			}
		case "networkIdle":
			if loaderID != "" && string(e.LoaderID) == loaderID {
				once.Do(func() { close(done) })
			}
		}
	})

	return chromedp.ActionFunc(func(ctx context.Context) error {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return eris.Wrap(ctx.Err(), "wait for network idle")
		}
	})
}
