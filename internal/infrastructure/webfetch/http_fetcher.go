package webfetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/webstudio/backend/internal/domain/audit"
	"go.uber.org/zap"
)

const (
	defaultTimeout      = 20 * time.Second
	defaultMaxBodyBytes = 5 << 20
	defaultUserAgent    = "Mozilla/5.0 (compatible; WebstudioAudit/1.0)"
	maxRedirects        = 5
)

// ErrPrivateAddress is returned when a host resolves to a loopback or private network
var ErrPrivateAddress = errors.New("address is not publicly routable")

// Config holds fetcher settings
type Config struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	// AllowPrivate lets the fetcher reach loopback and private networks. Tests only.
	AllowPrivate bool
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	return c
}

// HTTPFetcher downloads a page with net/http and extracts metrics from the raw HTML
type HTTPFetcher struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

var _ audit.Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates a fetcher with its own client
func NewHTTPFetcher(cfg Config, logger *zap.Logger) *HTTPFetcher {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	if !cfg.AllowPrivate {
		dialer.Control = rejectPrivate
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		MaxIdleConns:          20,
		IdleConnTimeout:       30 * time.Second,
	}

	return &HTTPFetcher{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
	}
}

// rejectPrivate runs after DNS resolution so rebinding to an internal address is caught too
func rejectPrivate(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return fmt.Errorf("%w: %s", ErrPrivateAddress, host)
	}
	return nil
}

// Fetch downloads rawURL and returns its metrics. HTTP error statuses and
// non-HTML responses are returned as errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (audit.PageMetrics, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return audit.PageMetrics{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "cs,de;q=0.8,en;q=0.6")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return audit.PageMetrics{}, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	ttfb := time.Since(start)

	if resp.StatusCode >= http.StatusBadRequest {
		return audit.PageMetrics{}, fmt.Errorf("site responded with HTTP %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !isHTML(ct) {
		return audit.PageMetrics{}, fmt.Errorf("unsupported content type %q", ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodyBytes))
	if err != nil {
		return audit.PageMetrics{}, fmt.Errorf("failed to read response: %w", err)
	}

	finalURL := resp.Request.URL
	m, err := Extract(bytes.NewReader(body), finalURL)
	if err != nil {
		return audit.PageMetrics{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	m.FinalURL = finalURL.String()
	m.StatusCode = resp.StatusCode
	m.HTTPS = finalURL.Scheme == "https"
	m.ResponseTimeMs = ttfb.Milliseconds()
	m.HTMLBytes = max(int64(len(body)), resp.ContentLength)
	if strings.Contains(strings.ToLower(resp.Header.Get("X-Robots-Tag")), "noindex") {
		m.NoIndex = true
	}

	f.logger.Debug("Page fetched",
		zap.String("url", rawURL),
		zap.String("final_url", m.FinalURL),
		zap.Int("status", m.StatusCode),
		zap.Int64("bytes", m.HTMLBytes),
		zap.Duration("ttfb", ttfb),
	)
	return m, nil
}

func isHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
