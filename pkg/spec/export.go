package spec

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaID is the $id of the generated model spec schema.
const SchemaID = "https://github.com/ormasoftchile/argspec/schemas/model-spec-v0.json"

// GenerateJSONSchema produces a JSON Schema Draft 2020-12 document from the
// ModelSpec Go types.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	s := r.Reflect(&ModelSpec{})
	s.ID = SchemaID
	s.Title = "Model argument specification"
	s.Description = "Schema for model spec YAML documents (Draft 2020-12)"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal model spec schema: %w", err)
	}
	return data, nil
}
