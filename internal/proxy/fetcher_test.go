package proxy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/MrSnakeDoc/newtab/internal/logger"
)

type memCache struct {
	mu   sync.Mutex
	docs map[string]string
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{docs: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) GetCachedDocument(_ context.Context, rawURL string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.docs[rawURL]
	return body, ok, nil
}

func (m *memCache) CacheDocument(_ context.Context, rawURL, body string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[rawURL] = body
	m.ttls[rawURL] = ttl
	return nil
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"https://example.com/pins.json", true},
		{"http://example.com", true},
		{"ftp://example.com/file", false},
		{"file:///etc/passwd", false},
		{"/relative/path", false},
		{"", false},
		{"https://", false},
	}

	for _, tt := range tests {
		_, err := ValidateURL(tt.in)
		if tt.ok && err != nil {
			t.Errorf("ValidateURL(%q) unexpected error: %v", tt.in, err)
		}
		if !tt.ok && !errors.Is(err, ErrUnsupportedURL) {
			t.Errorf("ValidateURL(%q) = %v, want ErrUnsupportedURL", tt.in, err)
		}
	}
}

func TestFetcher_FetchBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"url":"https://a.dev","image":"https://a.dev/i.png","name":"A"}]`))
	}))
	defer srv.Close()

	f := NewFetcher(Options{Timeout: time.Second, AllowPrivate: true}, nil, logger.Nop())
	body, err := f.FetchBody(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(body, `"name":"A"`) {
		t.Errorf("body = %q, want the upstream payload verbatim", body)
	}
}

func TestFetcher_UpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(Options{AllowPrivate: true}, nil, logger.Nop())
	_, err := f.FetchBody(context.Background(), srv.URL)
	if !errors.Is(err, ErrUpstreamStatus) {
		t.Fatalf("err = %v, want ErrUpstreamStatus", err)
	}
}

func TestFetcher_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	f := NewFetcher(Options{MaxBytes: 16, AllowPrivate: true}, nil, logger.Nop())
	_, err := f.FetchBody(context.Background(), srv.URL)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
}

func TestFetcher_UsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	cache := newMemCache()
	f := NewFetcher(Options{CacheTTL: time.Minute, AllowPrivate: true}, cache, logger.Nop())

	for i := 0; i < 3; i++ {
		body, err := f.FetchBody(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if body != "[]" {
			t.Fatalf("fetch %d: body = %q", i, body)
		}
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("upstream hits = %d, want 1", got)
	}
	if ttl := cache.ttls[srv.URL]; ttl != time.Minute {
		t.Errorf("cached ttl = %v, want 1m", ttl)
	}
}

func TestFetcher_ErrorsAreNotCached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cache := newMemCache()
	f := NewFetcher(Options{AllowPrivate: true}, cache, logger.Nop())
	if _, err := f.FetchBody(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error")
	}
	if len(cache.docs) != 0 {
		t.Errorf("cache holds %d docs, want 0", len(cache.docs))
	}
}

func TestFetcher_RejectsPrivateTargets(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	f := NewFetcher(Options{Timeout: time.Second}, nil, logger.Nop())

	targets := []string{
		srv.URL,
		"http://localhost:8080/pins.json",
		"http://api.localhost/pins.json",
		"http://10.0.0.1/pins.json",
		"http://192.168.1.20/pins.json",
		"http://169.254.169.254/latest/meta-data",
		"http://[::1]:8080/",
		"http://0.0.0.0/",
	}
	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			_, err := f.FetchBody(context.Background(), target)
			if !errors.Is(err, ErrForbiddenHost) {
				t.Errorf("FetchBody(%q) err = %v, want ErrForbiddenHost", target, err)
			}
		})
	}

	if got := hits.Load(); got != 0 {
		t.Errorf("upstream hits = %d, want 0", got)
	}
}

func TestPublicOnly(t *testing.T) {
	tests := []struct {
		address string
		ok      bool
	}{
		{"93.184.216.34:443", true},
		{"[2606:4700::1111]:443", true},
		{"127.0.0.1:80", false},
		{"[::1]:80", false},
		{"172.20.1.1:80", false},
		{"[fe80::1]:80", false},
		{"not-an-address", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			err := publicOnly("tcp", tt.address, nil)
			if tt.ok && err != nil {
				t.Errorf("publicOnly(%q) unexpected error: %v", tt.address, err)
			}
			if !tt.ok && !errors.Is(err, ErrForbiddenHost) {
				t.Errorf("publicOnly(%q) = %v, want ErrForbiddenHost", tt.address, err)
			}
		})
	}
}

func TestClient_FetchBody(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != FetchDataPath {
			http.NotFound(w, r)
			return
		}
		gotURL = r.URL.Query().Get("url")
		_ = json.NewEncoder(w).Encode(Envelope{Body: `[{"name":"X"}]`})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	body, err := c.FetchBody(context.Background(), "https://pins.example/list.json?x=1&y=2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotURL != "https://pins.example/list.json?x=1&y=2" {
		t.Errorf("proxy saw url=%q, want it query-escaped round trip", gotURL)
	}
	if body != `[{"name":"X"}]` {
		t.Errorf("body = %q", body)
	}
}

func TestClient_ProxyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.FetchBody(context.Background(), "https://pins.example/list.json")
	if !errors.Is(err, ErrUpstreamStatus) {
		t.Fatalf("err = %v, want ErrUpstreamStatus", err)
	}
}
