package homepage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleBookmarks = `---
- Developer:
    - Github:
        - abbr: GH
          icon: github.png
          href: https://github.com/
    - Gitea:
        - abbr: GT
          href: {{HOMEPAGE_VAR_GITEA_URL}}
- Social:
    - Reddit:
        - abbr: RE
          icon: https://www.redditstatic.com/icon.png
          href: https://reddit.com/
    - Mastodon:
        - abbr: MA
          icon: mdi-mastodon
          href: https://mastodon.social/
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "bookmarks.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	return p
}

func TestLoaderLoad(t *testing.T) {
	loader := NewLoader(writeFile(t, sampleBookmarks))
	config, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(config) != 2 {
		t.Fatalf("Load() returned %d categories, want 2", len(config))
	}
}

func TestLoaderLoadMissingFile(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := loader.Load(); err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("- : [unclosed")); err == nil {
		t.Fatal("Parse() expected error")
	}
}

func TestStripTemplateVariables(t *testing.T) {
	got := string(stripTemplateVariables([]byte("href: {{HOMEPAGE_VAR_X}}")))
	if got != `href: ""` {
		t.Errorf("stripTemplateVariables() = %q", got)
	}
}

func TestMapBookmarks(t *testing.T) {
	config, err := Parse([]byte(sampleBookmarks))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	got, err := NewMapper().MapBookmarks(config)
	if err != nil {
		t.Fatalf("MapBookmarks() error = %v", err)
	}

	// Gitea is dropped: its href was a stripped template variable.
	want := []struct{ name, url, image string }{
		{"Github", "https://github.com/", DashboardIconsBase + "/png/github.png"},
		{"Reddit", "https://reddit.com/", "https://www.redditstatic.com/icon.png"},
		{"Mastodon", "https://mastodon.social/", ""},
	}
	if len(got) != len(want) {
		t.Fatalf("MapBookmarks() returned %d bookmarks, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Name != w.name || got[i].URL != w.url || got[i].Image != w.image {
			t.Errorf("bookmark[%d] = %+v, want %+v", i, got[i], w)
		}
	}
}

func TestMapBookmarksEmpty(t *testing.T) {
	_, err := NewMapper().MapBookmarks(BookmarksConfig{})
	if !errors.Is(err, ErrNoBookmarks) {
		t.Fatalf("MapBookmarks() error = %v, want ErrNoBookmarks", err)
	}
}

func TestResolveIcon(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"https://x.dev/a.png", "https://x.dev/a.png"},
		{"github.png", DashboardIconsBase + "/png/github.png"},
		{"gitea.svg", DashboardIconsBase + "/svg/gitea.svg"},
		{"jellyfin", DashboardIconsBase + "/png/jellyfin.png"},
		{"mdi-home", ""},
		{"si-github", ""},
		{"/icons/local.png", ""},
		{"weird.gif", ""},
	}
	for _, tt := range tests {
		if got := ResolveIcon(tt.in); got != tt.want {
			t.Errorf("ResolveIcon(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
