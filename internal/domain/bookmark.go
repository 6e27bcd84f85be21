package domain

// Bookmark is a pinned shortcut tile: a target URL, an icon image and a
// display name.
type Bookmark struct {
	// URL is where the tile navigates to (opened in a new browsing context).
	URL string `json:"url" yaml:"url" jsonschema:"required,format=uri,description=Target URL opened when the tile is clicked"`

	// Image is the tile icon. May be empty.
	Image string `json:"image" yaml:"image" jsonschema:"format=uri,description=Icon image URL"`

	// Name is the caption shown under the icon.
	Name string `json:"name" yaml:"name" jsonschema:"required,minLength=1,description=Tile caption"`
}

// DefaultBookmarks is the built-in pinned set used when neither a bookmark
// file nor a pinned source is configured.
func DefaultBookmarks() []Bookmark {
	return []Bookmark{
		{
			Name:  "GitHub Repo",
			URL:   "https://github.com/cnrad/h.cnrad.dev",
			Image: "https://www.macobserver.com/wp-content/uploads/2019/05/workfeatured-GitHub-2.png",
		},
	}
}

// CloneBookmarks returns a copy that never aliases the input and is never nil.
func CloneBookmarks(in []Bookmark) []Bookmark {
	out := make([]Bookmark, len(in))
	copy(out, in)
	return out
}
