package homepage

import (
	"errors"
	"path"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/sources/pinned"
)

// ErrNoBookmarks is returned when a file yields no usable entry.
var ErrNoBookmarks = errors.New("no valid bookmarks found in config")

// DashboardIconsBase serves icons referenced by bare file name (github.png).
const DashboardIconsBase = "https://cdn.jsdelivr.net/gh/walkxcode/dashboard-icons"

// Mapper converts Homepage bookmark config to domain bookmarks
type Mapper struct{}

// NewMapper creates a new bookmark mapper
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapBookmarks flattens categories into an ordered bookmark list.
// File order is kept; entries without a usable href are skipped.
func (m *Mapper) MapBookmarks(config BookmarksConfig) ([]domain.Bookmark, error) {
	bookmarks := make([]domain.Bookmark, 0)

	for _, category := range config {
		for _, categoryName := range sortedKeys(category) {
			for _, bookmarkMap := range category[categoryName] {
				for _, bookmarkName := range sortedKeys(bookmarkMap) {
					entries := bookmarkMap[bookmarkName]
					if len(entries) == 0 {
						continue
					}
					entry := entries[0]

					name := strings.TrimSpace(bookmarkName)
					if name == "" {
						name = entry.Abbr
					}

					b := domain.Bookmark{
						URL:   strings.TrimSpace(entry.Href),
						Image: ResolveIcon(entry.Icon),
						Name:  name,
					}
					if err := pinned.Validate(b); err != nil {
						continue
					}
					bookmarks = append(bookmarks, b)
				}
			}
		}
	}

	if len(bookmarks) == 0 {
		return nil, ErrNoBookmarks
	}
	return bookmarks, nil
}

// ResolveIcon turns a Homepage icon reference into an image URL.
// Absolute URLs pass through, bare file names map to the dashboard-icons CDN,
// and icon-font references (mdi-, si-) have no image.
func ResolveIcon(icon string) string {
	icon = strings.TrimSpace(icon)
	switch {
	case icon == "":
		return ""
	case strings.HasPrefix(icon, "http://"), strings.HasPrefix(icon, "https://"):
		return icon
	case strings.HasPrefix(icon, "mdi-"), strings.HasPrefix(icon, "si-"), strings.Contains(icon, "/"):
		return ""
	}

	ext := strings.TrimPrefix(path.Ext(icon), ".")
	switch ext {
	case "png", "svg", "webp":
		return DashboardIconsBase + "/" + ext + "/" + icon
	case "":
		return DashboardIconsBase + "/png/" + icon + ".png"
	default:
		return ""
	}
}

// sortedKeys gives map iteration a stable order. Homepage maps carry a single
// key each, so list order is what really orders the output.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
