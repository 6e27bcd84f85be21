package page

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/MrSnakeDoc/newtab/internal/domain"
)

//go:embed templates/page.html
var templateFS embed.FS

// FallbackNotice is shown when the pinned document could not be loaded.
const FallbackNotice = "Couldn't load your pinned bookmarks, showing the defaults instead."

// WeatherUnavailable replaces the loading text when the provider call failed.
const WeatherUnavailable = "Weather unavailable"

// Renderer writes page snapshots as HTML.
type Renderer struct {
	siteName string
	tmpl     *template.Template
}

// NewRenderer parses the embedded page template.
func NewRenderer(siteName string) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	return &Renderer{siteName: siteName, tmpl: tmpl}, nil
}

type viewModel struct {
	Title           string
	SiteName        string
	ViewID          string
	Unit            string
	Pinned          string
	Time            string
	Weekday         string
	Weather         domain.WeatherModel
	WeatherPending  bool
	WeatherFailed   bool
	WeatherText     string
	WeatherFallback string
	Notice          string
	Bookmarks       []domain.Bookmark
	Background      template.CSS
	Filter          template.CSS
}

// Render writes snap as a full HTML document.
func (r *Renderer) Render(w io.Writer, viewID string, snap Snapshot) error {
	vm := viewModel{
		Title:           snap.Config.Title,
		SiteName:        r.siteName,
		ViewID:          viewID,
		Unit:            snap.Config.Unit,
		Pinned:          snap.Config.Pinned,
		Time:            snap.Clock.Time,
		Weekday:         snap.Clock.Weekday,
		Weather:         snap.Weather,
		WeatherPending:  !snap.Weather.Resolved(),
		WeatherText:     snap.Weather.Description,
		WeatherFallback: WeatherUnavailable,
		Bookmarks:       snap.Bookmarks,
		// ResolveBackground only lets through values safe inside a declaration.
		Background: template.CSS(snap.Background.CSS),
		Filter:     template.CSS(snap.Background.Filter),
	}
	if snap.BookmarkStatus == BookmarksFailed {
		vm.Notice = FallbackNotice
	}
	// A failed fetch keeps the placeholder model, so only the label changes.
	if snap.WeatherState == WeatherStateFailed && !snap.Weather.Resolved() {
		vm.WeatherFailed = true
		vm.WeatherText = WeatherUnavailable
	}

	if err := r.tmpl.Execute(w, vm); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}
