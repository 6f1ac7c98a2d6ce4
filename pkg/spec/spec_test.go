package spec

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func testdataPath(name string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", name)
}

func TestLoadFile_Demo(t *testing.T) {
	ms, err := LoadFile(testdataPath("demo.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.ModelName != "Demonstration of the model Spec" {
		t.Errorf("model_name = %q", ms.ModelName)
	}
	if ms.Args.Len() != 11 {
		t.Fatalf("fields = %d, want 11", ms.Args.Len())
	}

	// declaration order is preserved
	fields := ms.Args.Fields()
	if fields[0].Key != "workspace_dir" || fields[10].Key != "habitat_raster_path" {
		t.Errorf("order = %q ... %q", fields[0].Key, fields[10].Key)
	}

	ws, ok := ms.Args.Lookup("workspace_dir")
	if !ok {
		t.Fatal("workspace_dir not found")
	}
	if ws.Type != TypeDirectory || ws.Required.Kind != Unconditional {
		t.Errorf("workspace_dir = %+v", ws)
	}
	if ws.ValidationOptions["permissions"] != "rwx" {
		t.Errorf("permissions = %v", ws.ValidationOptions["permissions"])
	}

	suffix, _ := ms.Args.Lookup("results_suffix")
	if suffix.Required.Kind != Optional {
		t.Errorf("results_suffix kind = %v", suffix.Required.Kind)
	}

	hab, _ := ms.Args.Lookup("habitat_raster_path")
	if hab.Required.Kind != Conditional || len(hab.Required.DependsOn) != 1 || hab.Required.DependsOn[0] != "aoi_vector_path" {
		t.Errorf("habitat_raster_path requirement = %+v", hab.Required)
	}

	if err := ms.Args.Check(nil); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	doc := `
model_name: bad
args:
  a:
    type: number
    requird: true
`
	_, err := Load(strings.NewReader(doc))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %T: %v", err, err)
	}
	if !strings.Contains(se.Error(), "requird") {
		t.Errorf("error should name the offending property: %v", se)
	}
}

func TestLoad_MissingTypeRejected(t *testing.T) {
	doc := `
model_name: bad
args:
  a:
    required: true
`
	if _, err := Load(strings.NewReader(doc)); err == nil {
		t.Fatal("expected schema error for missing type")
	}
}

func TestLoad_BadRequiredRejected(t *testing.T) {
	doc := `
model_name: bad
args:
  a:
    type: number
    required: "sometimes"
`
	if _, err := Load(strings.NewReader(doc)); err == nil {
		t.Fatal("expected error for string-valued required")
	}
}

func TestRequirement_YAMLForms(t *testing.T) {
	tests := []struct {
		in   string
		kind RequirementKind
		deps []string
	}{
		{"required: true", Unconditional, nil},
		{"required: false", Optional, nil},
		{"required: null", Optional, nil},
		{"required: [a, b]", Conditional, []string{"a", "b"}},
		{"required: []", Conditional, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var out struct {
				Required Requirement `yaml:"required"`
			}
			if err := yaml.Unmarshal([]byte(tt.in), &out); err != nil {
				t.Fatal(err)
			}
			if out.Required.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", out.Required.Kind, tt.kind)
			}
			if len(out.Required.DependsOn) != len(tt.deps) {
				t.Errorf("deps = %v, want %v", out.Required.DependsOn, tt.deps)
			}
		})
	}
}

func TestRequirement_JSON(t *testing.T) {
	data, err := json.Marshal(DependsOn("x", "y"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["x","y"]` {
		t.Errorf("got %s", data)
	}
	var r Requirement
	if err := json.Unmarshal([]byte("true"), &r); err != nil {
		t.Fatal(err)
	}
	if r.Kind != Unconditional {
		t.Errorf("kind = %v", r.Kind)
	}
}

func TestNew_DuplicateKey(t *testing.T) {
	_, err := New(
		Field{Key: "a", Type: TypeNumber},
		Field{Key: "a", Type: TypeBoolean},
	)
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	known := func(tag TypeTag) bool { return tag == TypeNumber }

	s := MustNew(
		Field{Key: "b", Type: TypeNumber, Required: DependsOn("missing")},
		Field{Key: "a", Type: TypeNumber},
	)
	err := s.Check(known)
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Key != "b" {
		t.Fatalf("expected dependency error on b, got %v", err)
	}

	s = MustNew(Field{Key: "a", Type: "mystery"})
	if err := s.Check(known); err == nil || !strings.Contains(err.Error(), "mystery") {
		t.Fatalf("expected unknown type error, got %v", err)
	}

	s = MustNew(
		Field{Key: "a", Type: TypeNumber},
		Field{Key: "b", Type: TypeNumber, Required: DependsOn("a")},
	)
	if err := s.Check(known); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSpecification_MarshalRoundTrip(t *testing.T) {
	s := MustNew(
		Field{Key: "zeta", Type: TypeNumber, Required: Required()},
		Field{Key: "alpha", Type: TypeBoolean},
	)
	data, err := yaml.Marshal(ModelSpec{ModelName: "m", Args: *s})
	if err != nil {
		t.Fatal(err)
	}
	// mapping order follows declaration order, not key order
	if strings.Index(string(data), "zeta") > strings.Index(string(data), "alpha") {
		t.Errorf("order lost:\n%s", data)
	}
	ms, err := Load(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("reload: %v\n%s", err, data)
	}
	if f, _ := ms.Args.Lookup("zeta"); f.Required.Kind != Unconditional {
		t.Errorf("zeta requirement lost: %+v", f)
	}

	js, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(js), `{"zeta":`) {
		t.Errorf("json order = %s", js)
	}
}

func TestGenerateJSONSchema(t *testing.T) {
	data, err := GenerateJSONSchema()
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if doc["$id"] != SchemaID {
		t.Errorf("$id = %v", doc["$id"])
	}
	if !strings.Contains(string(data), "validation_options") {
		t.Error("schema should describe validation_options")
	}
}

func TestParseArgs(t *testing.T) {
	args, err := ParseArgs([]byte("a: 1\nb: hello\nc:\n"))
	if err != nil {
		t.Fatal(err)
	}
	if args["a"] != 1 || args["b"] != "hello" {
		t.Errorf("args = %v", args)
	}
	if v, ok := args["c"]; !ok || v != nil {
		t.Errorf("c should be present and nil, got %v (%v)", v, ok)
	}

	empty, err := ParseArgs(nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("empty args = %v, %v", empty, err)
	}
}
