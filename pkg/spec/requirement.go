package spec

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// RequirementKind discriminates the Requirement variants.
type RequirementKind int

const (
	// Optional fields are never reported missing.
	Optional RequirementKind = iota
	// Unconditional fields must always be present and non-empty.
	Unconditional
	// Conditional fields are required when at least one of their
	// dependencies is present and valid.
	Conditional
)

func (k RequirementKind) String() string {
	switch k {
	case Optional:
		return "optional"
	case Unconditional:
		return "required"
	case Conditional:
		return "conditional"
	default:
		return fmt.Sprintf("RequirementKind(%d)", int(k))
	}
}

// Requirement describes when a field must be supplied. In YAML it is written
// as `true`, `false`, or a list of dependency keys.
type Requirement struct {
	Kind      RequirementKind
	DependsOn []string
}

// Required returns an unconditional requirement.
func Required() Requirement { return Requirement{Kind: Unconditional} }

// NotRequired returns an optional requirement.
func NotRequired() Requirement { return Requirement{Kind: Optional} }

// DependsOn returns a requirement that applies when any of keys is present
// and valid.
func DependsOn(keys ...string) Requirement {
	return Requirement{Kind: Conditional, DependsOn: keys}
}

// IsZero lets yaml omitempty drop optional requirements.
func (r Requirement) IsZero() bool {
	return r.Kind == Optional
}

// UnmarshalYAML accepts a bool, null, or a sequence of keys.
func (r *Requirement) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*r = NotRequired()
			return nil
		}
		var b bool
		if err := node.Decode(&b); err != nil {
			return fmt.Errorf("line %d: required must be a bool or a list of keys", node.Line)
		}
		if b {
			*r = Required()
		} else {
			*r = NotRequired()
		}
		return nil
	case yaml.SequenceNode:
		var keys []string
		if err := node.Decode(&keys); err != nil {
			return fmt.Errorf("line %d: required: %w", node.Line, err)
		}
		*r = DependsOn(keys...)
		return nil
	default:
		return fmt.Errorf("line %d: required must be a bool or a list of keys", node.Line)
	}
}

// MarshalYAML writes the bool-or-list form.
func (r Requirement) MarshalYAML() (any, error) {
	return r.wire(), nil
}

// MarshalJSON writes the bool-or-list form.
func (r Requirement) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire())
}

// UnmarshalJSON accepts a bool, null, or an array of keys.
func (r *Requirement) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*r = NotRequired()
	case bool:
		if v {
			*r = Required()
		} else {
			*r = NotRequired()
		}
	case []any:
		keys := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("required: dependency %v is not a string", item)
			}
			keys = append(keys, s)
		}
		*r = DependsOn(keys...)
	default:
		return fmt.Errorf("required must be a bool or a list of keys, got %T", raw)
	}
	return nil
}

func (r Requirement) wire() any {
	switch r.Kind {
	case Unconditional:
		return true
	case Conditional:
		keys := r.DependsOn
		if keys == nil {
			keys = []string{}
		}
		return keys
	default:
		return false
	}
}

// JSONSchema describes the bool-or-list form for invopop/jsonschema.
func (Requirement) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Description: "true, false, or the keys this field depends on",
		OneOf: []*jsonschema.Schema{
			{Type: "boolean"},
			{Type: "null"},
			{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		},
	}
}
