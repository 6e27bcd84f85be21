package pinned

import (
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/MrSnakeDoc/newtab/internal/domain"
)

// SchemaID identifies the published pinned document schema.
const SchemaID = "https://newtab.local/schema/bookmarks.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
)

// Schema returns the JSON Schema of a pinned document: an array of bookmarks.
// It is reflected once from domain.Bookmark.
func Schema() *jsonschema.Schema {
	schemaOnce.Do(func() {
		ref := jsonschema.Reflector{
			Anonymous:      true,
			DoNotReference: true,
		}
		item := ref.Reflect(&domain.Bookmark{})
		item.Version = ""
		// Unknown fields are ignored on decode.
		item.AdditionalProperties = nil

		schema = &jsonschema.Schema{
			Version:     jsonschema.Version,
			ID:          SchemaID,
			Title:       "Pinned bookmarks",
			Description: "Ordered list of bookmark tiles shown on the new tab page",
			Type:        "array",
			Items:       item,
		}
	})
	return schema
}
