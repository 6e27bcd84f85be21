package index

import (
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/newtab/internal/domain"
)

func TestNewMemoryIndex(t *testing.T) {
	index := NewMemoryIndex()
	if index == nil {
		t.Fatal("NewMemoryIndex() returned nil")
	}

	bookmarks := index.GetBookmarks()
	if len(bookmarks) != 1 {
		t.Fatalf("NewMemoryIndex() should start with the single default bookmark, got %v", len(bookmarks))
	}
	if bookmarks[0] != domain.DefaultBookmarks()[0] {
		t.Errorf("default bookmark = %+v", bookmarks[0])
	}
	if !index.GetLastBookmarkReload().IsZero() {
		t.Error("last reload should be zero before any UpdateBookmarks")
	}
}

func TestUpdateBookmarksReplacesInOrder(t *testing.T) {
	index := NewMemoryIndex()

	updated := []domain.Bookmark{
		{Name: "B", URL: "https://b.example.com"},
		{Name: "A", URL: "https://a.example.com"},
	}
	index.UpdateBookmarks(updated)

	got := index.GetBookmarks()
	if len(got) != 2 {
		t.Fatalf("UpdateBookmarks() should replace, got %v bookmarks want 2", len(got))
	}
	if got[0].Name != "B" || got[1].Name != "A" {
		t.Errorf("UpdateBookmarks() did not keep order: %+v", got)
	}
	if index.GetLastBookmarkReload().IsZero() {
		t.Error("last reload should be set")
	}

	// Mutating the returned slice must not leak into the index.
	got[0].Name = "mutated"
	if index.GetBookmarks()[0].Name != "B" {
		t.Error("GetBookmarks() returned an aliased slice")
	}
}

func TestWeatherSnapshots(t *testing.T) {
	index := NewMemoryIndex()

	index.UpdateWeather(domain.LoadingWeather("F"))
	if index.WeatherCount() != 0 {
		t.Error("placeholder should not be stored")
	}

	now := time.Now()
	index.UpdateWeather(domain.NewResolvedWeather(20, "C", "Clear sky", "icon", true, now))
	index.UpdateWeather(domain.NewResolvedWeather(68, "F", "Clear sky", "icon", true, now))

	c, ok := index.GetWeather("c")
	if !ok || c.Temperature != 20 {
		t.Errorf("GetWeather(c) = %+v, %v", c, ok)
	}
	f, ok := index.GetWeather("F")
	if !ok || f.Temperature != 68 {
		t.Errorf("GetWeather(F) = %+v, %v", f, ok)
	}
	if index.WeatherCount() != 2 {
		t.Errorf("WeatherCount() = %d, want 2", index.WeatherCount())
	}
	if index.GetLastWeatherUpdate().IsZero() {
		t.Error("last weather update should be set")
	}
}

func TestConcurrentAccess(t *testing.T) {
	index := NewMemoryIndex()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			index.UpdateBookmarks([]domain.Bookmark{{Name: "x", URL: "https://x.example.com"}})
			index.UpdateWeather(domain.NewResolvedWeather(1, "F", "Clear sky", "icon", true, time.Now()))
		}()
		go func() {
			defer wg.Done()
			_ = index.GetBookmarks()
			_, _ = index.GetWeather("F")
		}()
	}
	wg.Wait()

	if index.BookmarkCount() != 1 {
		t.Errorf("BookmarkCount() = %d, want 1", index.BookmarkCount())
	}
}
