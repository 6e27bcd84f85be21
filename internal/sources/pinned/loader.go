// Package pinned loads the user's pinned bookmark document from a remote URL.
package pinned

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/proxy"
)

var (
	// ErrMalformedDocument means the body is not a JSON array of bookmarks.
	ErrMalformedDocument = errors.New("pinned document is not a JSON array of bookmarks")
	// ErrInvalidEntry means one entry of the array failed validation.
	ErrInvalidEntry = errors.New("pinned document has an invalid entry")
)

// Loader fetches and validates pinned documents through a proxy.Source.
type Loader struct {
	source proxy.Source
	logger logger.Logger
}

// NewLoader creates a Loader reading through src.
func NewLoader(src proxy.Source, log logger.Logger) *Loader {
	return &Loader{source: src, logger: log}
}

// Load fetches the document at rawURL and returns its bookmarks in document
// order. On any error the returned slice is nil; callers keep their current list.
func (l *Loader) Load(ctx context.Context, rawURL string) ([]domain.Bookmark, error) {
	body, err := l.source.FetchBody(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pinned document: %w", err)
	}

	bookmarks, err := Decode([]byte(body))
	if err != nil {
		l.logger.Warn("rejected pinned document",
			logger.String("url", rawURL),
			logger.Error(err))
		return nil, err
	}

	l.logger.Debug("loaded pinned bookmarks",
		logger.String("url", rawURL),
		logger.Int("count", len(bookmarks)))
	return bookmarks, nil
}

// Decode parses a pinned document. The whole document is rejected when it is
// not an array or when any entry is invalid. Unknown fields are ignored.
func Decode(data []byte) ([]domain.Bookmark, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrMalformedDocument
	}

	var entries []domain.Bookmark
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	out := make([]domain.Bookmark, 0, len(entries))
	for i, e := range entries {
		e = normalize(e)
		if err := Validate(e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Validate checks a single bookmark entry.
func Validate(b domain.Bookmark) error {
	if b.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEntry)
	}
	if !isHTTPURL(b.URL) {
		return fmt.Errorf("%w: url %q must be an absolute http(s) URL", ErrInvalidEntry, b.URL)
	}
	if b.Image != "" && !isHTTPURL(b.Image) {
		return fmt.Errorf("%w: image %q must be an absolute http(s) URL", ErrInvalidEntry, b.Image)
	}
	return nil
}

func normalize(b domain.Bookmark) domain.Bookmark {
	b.URL = strings.TrimSpace(b.URL)
	b.Image = strings.TrimSpace(b.Image)
	b.Name = strings.TrimSpace(b.Name)
	return b
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
