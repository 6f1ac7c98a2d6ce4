package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// LoadFile reads, structurally validates and decodes a model spec YAML file.
func LoadFile(path string) (*ModelSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model spec: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a model spec document from r. The document is first checked
// against the generated JSON Schema, then strictly decoded.
func Load(r io.Reader) (*ModelSpec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read model spec: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("structural decode: %w", err)
	}
	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}

	var ms ModelSpec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ms); err != nil {
		return nil, fmt.Errorf("structural decode: %w", err)
	}
	return &ms, nil
}

// SchemaError lists every schema violation found in a document.
type SchemaError struct {
	Causes []string
}

func (e *SchemaError) Error() string {
	return "model spec does not match schema:\n  " + strings.Join(e.Causes, "\n  ")
}

// ValidateDocument checks a decoded YAML/JSON document against the model
// spec JSON Schema.
func ValidateDocument(doc any) error {
	// Round-trip through JSON so numbers and maps take the shapes the
	// schema validator expects.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal for schema validation: %w", err)
	}
	inst, err := sjsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}

	sch, err := compileSchema()
	if err != nil {
		return err
	}

	err = sch.Validate(inst)
	if err == nil {
		return nil
	}
	ve, ok := err.(*sjsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("schema validation: %w", err)
	}
	se := &SchemaError{}
	for _, cause := range flattenValidationErrors(ve) {
		loc := "/" + strings.Join(cause.InstanceLocation, "/")
		se.Causes = append(se.Causes, fmt.Sprintf("%s: %v", loc, cause.ErrorKind))
	}
	return se
}

func compileSchema() (*sjsonschema.Schema, error) {
	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return nil, fmt.Errorf("generate schema: %w", err)
	}
	schemaDoc, err := sjsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	c := sjsonschema.NewCompiler()
	if err := c.AddResource(SchemaID, schemaDoc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile(SchemaID)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return sch, nil
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

// LoadArgsFile reads an args mapping from a YAML or JSON file.
func LoadArgsFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read args: %w", err)
	}
	return ParseArgs(data)
}

// ParseArgs decodes an args mapping. An empty document yields an empty map.
func ParseArgs(data []byte) (map[string]any, error) {
	args := map[string]any{}
	if err := yaml.Unmarshal(data, &args); err != nil {
		return nil, fmt.Errorf("decode args: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
