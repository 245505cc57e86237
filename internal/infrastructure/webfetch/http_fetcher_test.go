package webfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalFetcher(cfg Config) *HTTPFetcher {
	cfg.AllowPrivate = true
	return NewHTTPFetcher(cfg, nil)
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			http.Redirect(w, r, "/home", http.StatusMovedPermanently)
		case "/home":
			gotUA = r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(wellBuiltPage))
		}
	}))
	defer srv.Close()

	f := newLocalFetcher(Config{UserAgent: "TestAudit/1.0"})
	m, err := f.Fetch(context.Background(), srv.URL+"/")
	require.NoError(t, err)

	assert.Equal(t, "TestAudit/1.0", gotUA)
	assert.Equal(t, srv.URL+"/home", m.FinalURL)
	assert.Equal(t, http.StatusOK, m.StatusCode)
	assert.False(t, m.HTTPS)
	assert.Equal(t, int64(len(wellBuiltPage)), m.HTMLBytes)
	assert.Equal(t, 1, m.H1Count)
	assert.True(t, m.HasViewport)
}

func TestHTTPFetcher_RobotsHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("X-Robots-Tag", "noindex")
		_, _ = w.Write([]byte("<html><body><h1>x</h1></body></html>"))
	}))
	defer srv.Close()

	m, err := newLocalFetcher(Config{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, m.NoIndex)
}

func TestHTTPFetcher_LimitsBody(t *testing.T) {
	big := "<html><body>" + strings.Repeat("<p>slovo</p>", 1000) + "</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Length", strconv.Itoa(len(big)))
		_, _ = w.Write([]byte(big))
	}))
	defer srv.Close()

	m, err := newLocalFetcher(Config{MaxBodyBytes: 1024}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Less(t, m.WordCount, 1000)
	assert.Equal(t, int64(len(big)), m.HTMLBytes)
}

func TestHTTPFetcher_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/pdf":
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF"))
		case "/loop":
			http.Redirect(w, r, "/loop", http.StatusFound)
		}
	}))
	defer srv.Close()

	f := newLocalFetcher(Config{})
	_, err := f.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "HTTP 404")

	_, err = f.Fetch(context.Background(), srv.URL+"/pdf")
	assert.ErrorContains(t, err, "unsupported content type")

	_, err = f.Fetch(context.Background(), srv.URL+"/loop")
	assert.ErrorContains(t, err, "redirects")
}

func TestHTTPFetcher_RejectsPrivateAddresses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(Config{}, nil).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not publicly routable")
}

func TestRejectPrivate(t *testing.T) {
	assert.ErrorIs(t, rejectPrivate("tcp", "127.0.0.1:80", nil), ErrPrivateAddress)
	assert.ErrorIs(t, rejectPrivate("tcp", "10.1.2.3:443", nil), ErrPrivateAddress)
	assert.ErrorIs(t, rejectPrivate("tcp", "[::1]:443", nil), ErrPrivateAddress)
	assert.ErrorIs(t, rejectPrivate("tcp", "169.254.169.254:80", nil), ErrPrivateAddress)
	assert.NoError(t, rejectPrivate("tcp", "93.184.216.34:443", nil))
}
