// Package proxy fetches remote documents on behalf of the page, so the
// browser never has to talk to third-party origins directly.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/utils"
)

var (
	// ErrUnsupportedURL is returned for anything but absolute http(s) URLs.
	ErrUnsupportedURL = errors.New("only absolute http and https URLs can be fetched")
	// ErrUpstreamStatus is returned when the remote answers with a non-2xx status.
	ErrUpstreamStatus = errors.New("upstream returned an error status")
	// ErrTooLarge is returned when the remote body exceeds the size limit.
	ErrTooLarge = errors.New("upstream body exceeds size limit")
	// ErrForbiddenHost is returned when the target resolves to a loopback,
	// private or link-local address and private targets are not allowed.
	ErrForbiddenHost = errors.New("target host is not publicly routable")
)

// Envelope is the /api/fetchData response: the raw remote body as text.
type Envelope struct {
	Body string `json:"body"`
}

// Source returns the text body of a remote document.
type Source interface {
	FetchBody(ctx context.Context, rawURL string) (string, error)
}

// DocumentCache is an optional shared cache of fetched bodies.
type DocumentCache interface {
	GetCachedDocument(ctx context.Context, rawURL string) (string, bool, error)
	CacheDocument(ctx context.Context, rawURL, body string, ttl time.Duration) error
}

// Options configures a Fetcher.
type Options struct {
	Timeout  time.Duration // per upstream request
	MaxBytes int64         // body size cap
	CacheTTL time.Duration // how long bodies stay in the cache

	// AllowPrivate lets the proxy reach loopback and LAN addresses.
	AllowPrivate bool
}

// Fetcher is the in-process proxy. It backs both /api/fetchData and the
// page's bookmark loader.
type Fetcher struct {
	client *http.Client
	opts   Options
	cache  DocumentCache
	logger logger.Logger
}

var _ Source = (*Fetcher)(nil)

// NewFetcher creates a Fetcher. cache may be nil.
func NewFetcher(opts Options, cache DocumentCache, log logger.Logger) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 1 << 20
	}
	client := &http.Client{Timeout: opts.Timeout}
	if !opts.AllowPrivate {
		// Checked on the resolved address, so DNS names pointing inward are caught too.
		dialer := &net.Dialer{Timeout: opts.Timeout, Control: publicOnly}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DialContext = dialer.DialContext
		transport.Proxy = nil
		client.Transport = transport
	}
	return &Fetcher{
		client: client,
		opts:   opts,
		cache:  cache,
		logger: log,
	}
}

// ValidateURL parses rawURL and checks it is an absolute http(s) URL.
func ValidateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, rawURL)
	}
	return u, nil
}

// publicOnly is a net.Dialer Control hook refusing non-public addresses.
func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrForbiddenHost, err)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil || !utils.IsPublicAddr(addr) {
		return fmt.Errorf("%w: %s", ErrForbiddenHost, host)
	}
	return nil
}

// checkHost rejects literal private addresses and localhost before dialing.
func checkHost(u *url.URL) error {
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return fmt.Errorf("%w: %s", ErrForbiddenHost, host)
	}
	if addr, err := netip.ParseAddr(host); err == nil && !utils.IsPublicAddr(addr) {
		return fmt.Errorf("%w: %s", ErrForbiddenHost, host)
	}
	return nil
}

// FetchBody returns the remote body, from the cache when possible.
func (f *Fetcher) FetchBody(ctx context.Context, rawURL string) (string, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return "", err
	}
	if !f.opts.AllowPrivate {
		if err := checkHost(u); err != nil {
			return "", err
		}
	}
	key := u.String()

	if f.cache != nil {
		body, ok, err := f.cache.GetCachedDocument(ctx, key)
		if err != nil {
			f.logger.Warn("failed to read document cache",
				logger.String("url", key),
				logger.Error(err))
		} else if ok {
			f.logger.Debug("document cache hit", logger.String("url", key))
			return body, nil
		}
	}

	body, err := f.fetch(ctx, key)
	if err != nil {
		return "", err
	}

	if f.cache != nil {
		if err := f.cache.CacheDocument(ctx, key, body, f.opts.CacheTTL); err != nil {
			f.logger.Warn("failed to cache document",
				logger.String("url", key),
				logger.Error(err))
		}
	}

	return body, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain;q=0.9, */*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch document: %w", err)
	}
	defer utils.DrainAndClose(resp.Body, 4<<10)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	if int64(len(data)) > f.opts.MaxBytes {
		return "", fmt.Errorf("%w (%d bytes)", ErrTooLarge, f.opts.MaxBytes)
	}

	return string(data), nil
}
