// Package spec defines model argument specifications: the declarative schema
// that a model ships describing which run arguments it accepts, their types,
// whether they are required, and the options their checkers receive.
package spec

import (
	"fmt"
)

// ---------------------------------------------------------------------------
// Type tags
// ---------------------------------------------------------------------------

// TypeTag names the checker a field is dispatched to.
type TypeTag string

const (
	TypeDirectory       TypeTag = "directory"
	TypeFile            TypeTag = "file"
	TypeCSV             TypeTag = "csv"
	TypeRaster          TypeTag = "raster"
	TypeVector          TypeTag = "vector"
	TypeNumber          TypeTag = "number"
	TypeBoolean         TypeTag = "boolean"
	TypeFreestyleString TypeTag = "freestyle_string"
	TypeOptionString    TypeTag = "option_string"

	// TypeOptionsString is the spelling used by older model specs.
	TypeOptionsString TypeTag = "options_string"
)

// ---------------------------------------------------------------------------
// Model spec document
// ---------------------------------------------------------------------------

// ModelSpec is the top-level document shipped with a model.
type ModelSpec struct {
	ModelName     string        `yaml:"model_name"               json:"model_name"`
	Module        string        `yaml:"module,omitempty"         json:"module,omitempty"`
	UserguideHTML string        `yaml:"userguide_html,omitempty" json:"userguide_html,omitempty"`
	Args          Specification `yaml:"args"                     json:"args"`
}

// Options holds the type-specific validation options of a field.
type Options map[string]any

// Field is one entry of a Specification.
type Field struct {
	// Key is the args key. It comes from the mapping key, not a field.
	Key string `yaml:"-" json:"-"`

	Name              string      `yaml:"name,omitempty"               json:"name,omitempty"`
	About             string      `yaml:"about,omitempty"              json:"about,omitempty"`
	Type              TypeTag     `yaml:"type"                         json:"type"`
	Required          Requirement `yaml:"required,omitempty"           json:"required,omitempty"`
	ValidationOptions Options     `yaml:"validation_options,omitempty" json:"validation_options,omitempty"`
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

// ConfigError reports a malformed Specification: something no change to the
// args can fix. Validation stops when one is encountered.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("spec configuration error at %q: %s", e.Key, e.Reason)
	}
	return "spec configuration error: " + e.Reason
}

// ConfigErrorf builds a ConfigError for key.
func ConfigErrorf(key, format string, args ...any) *ConfigError {
	return &ConfigError{Key: key, Reason: fmt.Sprintf(format, args...)}
}
