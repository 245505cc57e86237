package webfetch

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"github.com/webstudio/backend/internal/domain/audit"
	"go.uber.org/zap"
)

// navigation timing of the current document, in milliseconds
const timingScript = `(() => {
  const nav = performance.getEntriesByType('navigation')[0];
  return nav ? Math.round(nav.responseStart - nav.requestStart) : 0;
})()`

// BrowserFetcher renders the page in headless Chrome so script-built markup is scored too
type BrowserFetcher struct {
	config   Config
	allocCtx context.Context
	resolver *net.Resolver
	logger   *zap.Logger
}

var _ audit.Fetcher = (*BrowserFetcher)(nil)

// NewBrowserFetcher opens tabs on allocCtx, usually the allocator shared with the PDF renderer
func NewBrowserFetcher(allocCtx context.Context, cfg Config, logger *zap.Logger) *BrowserFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowserFetcher{
		config:   cfg.withDefaults(),
		allocCtx: allocCtx,
		resolver: net.DefaultResolver,
		logger:   logger,
	}
}

// Fetch navigates to rawURL, waits for the body and extracts metrics from the rendered DOM
func (f *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (audit.PageMetrics, error) {
	if !f.config.AllowPrivate {
		if err := f.checkPublic(ctx, rawURL); err != nil {
			return audit.PageMetrics{}, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	tabCtx, tabCancel := chromedp.NewContext(f.allocCtx)
	defer tabCancel()
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	if err := chromedp.Run(tabCtx, emulation.SetUserAgentOverride(f.config.UserAgent)); err != nil {
		return audit.PageMetrics{}, fmt.Errorf("failed to open browser tab: %w", err)
	}

	start := time.Now()
	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(rawURL))
	if err != nil {
		return audit.PageMetrics{}, fmt.Errorf("failed to load %s: %w", rawURL, err)
	}
	elapsed := time.Since(start)
	if resp != nil && resp.Status >= 400 {
		return audit.PageMetrics{}, fmt.Errorf("site responded with HTTP %d", resp.Status)
	}

	var (
		document string
		location string
		ttfb     float64
	)
	err = chromedp.Run(tabCtx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &document, chromedp.ByQuery),
		chromedp.Location(&location),
		chromedp.Evaluate(timingScript, &ttfb),
	)
	if err != nil {
		return audit.PageMetrics{}, fmt.Errorf("failed to read rendered page: %w", err)
	}
	if int64(len(document)) > f.config.MaxBodyBytes {
		document = document[:f.config.MaxBodyBytes]
	}

	finalURL, err := url.Parse(location)
	if err != nil {
		finalURL, _ = url.Parse(rawURL)
	}
	m, err := Extract(strings.NewReader(document), finalURL)
	if err != nil {
		return audit.PageMetrics{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	m.FinalURL = finalURL.String()
	m.HTTPS = finalURL.Scheme == "https"
	m.HTMLBytes = int64(len(document))
	m.ResponseTimeMs = int64(ttfb)
	if m.ResponseTimeMs <= 0 {
		m.ResponseTimeMs = elapsed.Milliseconds()
	}
	if resp != nil {
		m.StatusCode = int(resp.Status)
		if v, ok := resp.Headers["X-Robots-Tag"].(string); ok && strings.Contains(strings.ToLower(v), "noindex") {
			m.NoIndex = true
		}
	}

	f.logger.Debug("Page rendered",
		zap.String("url", rawURL),
		zap.String("final_url", m.FinalURL),
		zap.Int("status", m.StatusCode),
		zap.Duration("elapsed", elapsed),
	)
	return m, nil
}

// checkPublic resolves the host up front; Chrome does its own DNS so there is no dial hook
func (f *BrowserFetcher) checkPublic(ctx context.Context, rawURL string) error {
	host := hostOf(rawURL)
	if host == "" {
		return fmt.Errorf("invalid URL %q", rawURL)
	}
	addrs, err := f.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", host, err)
	}
	for _, a := range addrs {
		if err := rejectPrivate("tcp", net.JoinHostPort(a.IP.String(), "443"), nil); err != nil {
			return err
		}
	}
	return nil
}
