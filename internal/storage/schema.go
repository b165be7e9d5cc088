package storage

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/maruel/bookshelf/internal/models"
)

// FileSchema returns the JSON Schema of the catalog file.
//
// No property is required since missing fields get default values on load.
func FileSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect([]models.Entry{})
	s.Title = "Book catalog"
	s.Description = "Books in insertion order. Missing fields default to " +
		fmt.Sprintf("%q, %q, available and no kind.", DefaultTitle, DefaultAuthor)
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
