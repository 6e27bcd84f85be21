package domain

import (
	"net/url"
	"strings"
)

// SearchKind tells how a search bar submission was routed.
type SearchKind string

const (
	SearchEmpty    SearchKind = "empty"
	SearchDirect   SearchKind = "direct"
	SearchBookmark SearchKind = "bookmark"
	SearchEngine   SearchKind = "engine"
)

// BookmarkShortcutPrefix marks a query as a bookmark name lookup, ex: "@github".
const BookmarkShortcutPrefix = "@"

// SearchResult is where a search bar submission navigates to.
type SearchResult struct {
	Kind   SearchKind
	Target string
}

// ResolveSearch routes search bar input.
//
// Input starting with "https://" is navigated to directly. "@name" jumps to the
// best matching bookmark when one matches. Everything else goes to the search
// engine template (which must contain %s) with the input query-escaped.
func ResolveSearch(input, searchTemplate string, bookmarks []Bookmark) SearchResult {
	input = strings.TrimSpace(input)
	if input == "" {
		return SearchResult{Kind: SearchEmpty}
	}

	if strings.HasPrefix(input, "https://") {
		return SearchResult{Kind: SearchDirect, Target: input}
	}

	if strings.HasPrefix(input, BookmarkShortcutPrefix) {
		name := strings.TrimSpace(strings.TrimPrefix(input, BookmarkShortcutPrefix))
		if bm, ok := FindBestBookmark(name, bookmarks); ok {
			return SearchResult{Kind: SearchBookmark, Target: bm.URL}
		}
	}

	return SearchResult{
		Kind:   SearchEngine,
		Target: strings.Replace(searchTemplate, "%s", url.QueryEscape(input), 1),
	}
}
