package printing

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	defaultScale         = 1.0
	defaultMaxParallel   = 2
)

// ChromedpConfig tunes the headless Chrome printer. Zero values get defaults.
type ChromedpConfig struct {
	DefaultTimeout time.Duration
	// RemoteURL points at the DevTools websocket of a browser sidecar
	RemoteURL string
	// NoSandbox is needed when Chrome runs as root inside a container
	NoSandbox   bool
	Scale       float64
	MaxParallel int
	// Allocator, when set, is used instead of launching a browser
	Allocator context.Context
	Logger    *zap.Logger
}

// ChromedpRenderer prints through tabs of one browser, at most
// MaxParallel at a time
type ChromedpRenderer struct {
	config ChromedpConfig
	logger *zap.Logger
	slots  chan struct{}

	once        sync.Once
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer returns a renderer whose browser starts lazily
func NewChromedpRenderer(config ChromedpConfig) *ChromedpRenderer {
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = defaultChromeTimeout
	}
	if config.Scale <= 0 {
		config.Scale = defaultScale
	}
	if config.MaxParallel <= 0 {
		config.MaxParallel = defaultMaxParallel
	}
	return &ChromedpRenderer{
		config: config,
		logger: cmp.Or(config.Logger, zap.NewNop()),
		slots:  make(chan struct{}, config.MaxParallel),
	}
}

// BrowserAllocator starts a shared Chrome allocator with server-friendly flags
func BrowserAllocator(remoteURL string, noSandbox bool) (context.Context, context.CancelFunc) {
	if remoteURL != "" {
		return chromedp.NewRemoteAllocator(context.Background(), remoteURL)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if noSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	return chromedp.NewExecAllocator(context.Background(), opts...)
}

func (r *ChromedpRenderer) allocator() context.Context {
	r.once.Do(func() {
		if r.config.Allocator != nil {
			r.allocCtx = r.config.Allocator
			return
		}
		r.allocCtx, r.allocCancel = BrowserAllocator(r.config.RemoteURL, r.config.NoSandbox)
	})
	return r.allocCtx
}

// Render prints req in a fresh tab of the shared browser
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	select {
	case r.slots <- struct{}{}:
		defer func() { <-r.slots }()
	case <-ctx.Done():
		return nil, NewRenderError(CodeTimeout, "no free browser tab", ctx.Err())
	}

	started := time.Now()
	timeout := cmp.Or(req.Timeout, r.config.DefaultTimeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tab, closeTab := chromedp.NewContext(r.allocator(),
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer closeTab()
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	var pdf []byte
	err := chromedp.Run(tab,
		chromedp.Navigate("about:blank"),
		loadDocument(wrapDocument(req.HTML, req.Title)),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) (err error) {
			pdf, _, err = r.printParams(req).Do(ctx)
			return err
		}),
	)
	switch {
	case err != nil && ctx.Err() != nil:
		return nil, NewRenderError(CodeTimeout, fmt.Sprintf("printing %q stopped after %v", req.Title, time.Since(started).Round(time.Millisecond)), err)
	case err != nil:
		r.logger.Error("Chrome failed to print", zap.String("title", req.Title), zap.Error(err))
		return nil, NewRenderError(CodeFailed, "chrome print", err)
	case len(pdf) == 0:
		return nil, NewRenderError(CodeFailed, "chrome returned an empty PDF", nil)
	}

	res := &RenderResult{PDF: pdf, Pages: countPages(pdf), Elapsed: time.Since(started)}
	r.logger.Info("PDF printed",
		zap.String("title", req.Title),
		zap.Int("bytes", len(pdf)),
		zap.Int("pages", res.Pages),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

// loadDocument replaces the blank page's content with doc
func loadDocument(doc string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, doc).Do(ctx)
	})
}

// printParams translates req into Chrome's inch-based print call. Header and
// footer templates need at least headerClearance of margin to show.
func (r *ChromedpRenderer) printParams(req *RenderRequest) *page.PrintToPDFParams {
	w, h, _ := req.Paper.Size()
	m := req.Margin
	if req.Header != "" {
		m.Top = max(m.Top, headerClearance)
	}
	if req.Footer != "" {
		m.Bottom = max(m.Bottom, headerClearance)
	}

	return page.PrintToPDF().
		WithPrintBackground(true).
		WithPreferCSSPageSize(false).
		WithPaperWidth(inches(w)).
		WithPaperHeight(inches(h)).
		WithLandscape(req.Landscape).
		WithMarginTop(inches(m.Top)).
		WithMarginRight(inches(m.Right)).
		WithMarginBottom(inches(m.Bottom)).
		WithMarginLeft(inches(m.Left)).
		WithScale(r.config.Scale).
		WithDisplayHeaderFooter(req.Header != "" || req.Footer != "").
		WithHeaderTemplate(cmp.Or(req.Header, "<span></span>")).
		WithFooterTemplate(cmp.Or(req.Footer, "<span></span>"))
}

// wrapDocument turns an HTML fragment into a UTF-8 page. Complete documents
// pass through untouched.
func wrapDocument(body, title string) string {
	head := strings.ToLower(body[:min(len(body), 512)])
	if strings.Contains(head, "<!doctype") || strings.Contains(head, "<html") {
		return body
	}
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8">`)
	if title != "" {
		fmt.Fprintf(&b, "<title>%s</title>", html.EscapeString(title))
	}
	b.WriteString("</head><body>")
	b.WriteString(body)
	b.WriteString("</body></html>")
	return b.String()
}

// Close stops the browser if this renderer launched it
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

// countPages counts page objects in the PDF. Never less than one.
func countPages(pdf []byte) int {
	n := bytes.Count(pdf, []byte("/Type /Page")) - bytes.Count(pdf, []byte("/Type /Pages"))
	return max(n, 1)
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)
