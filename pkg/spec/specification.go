package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// Specification is an ordered mapping from args key to Field. It is built
// once per model and only read afterwards.
type Specification struct {
	fields []Field
	index  map[string]int
}

// New builds a Specification from fields in declaration order.
// Field keys must be non-empty and unique.
func New(fields ...Field) (*Specification, error) {
	s := &Specification{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		if err := s.add(f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustNew is New for statically declared specifications.
func MustNew(fields ...Field) *Specification {
	s, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Specification) add(f Field) error {
	if f.Key == "" {
		return ConfigErrorf("", "field with empty key")
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, dup := s.index[f.Key]; dup {
		return ConfigErrorf(f.Key, "duplicate key")
	}
	f.Required.DependsOn = slices.Clone(f.Required.DependsOn)
	s.index[f.Key] = len(s.fields)
	s.fields = append(s.fields, f)
	return nil
}

// Len returns the number of fields.
func (s *Specification) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// Fields returns a copy of the fields in declaration order.
func (s *Specification) Fields() []Field {
	if s == nil {
		return nil
	}
	return slices.Clone(s.fields)
}

// Lookup returns the field for key.
func (s *Specification) Lookup(key string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	i, ok := s.index[key]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Keys returns the field keys sorted lexicographically.
func (s *Specification) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		keys = append(keys, f.Key)
	}
	slices.Sort(keys)
	return keys
}

// Check verifies internal consistency: every dependency names an existing
// field and, when known is non-nil, every type tag is accepted by it.
// Fields are visited in lexicographic key order so the first error is stable.
func (s *Specification) Check(known func(TypeTag) bool) error {
	for _, key := range s.Keys() {
		f, _ := s.Lookup(key)
		if f.Type == "" {
			return ConfigErrorf(key, "missing type")
		}
		if known != nil && !known(f.Type) {
			return ConfigErrorf(key, "unknown type %q", f.Type)
		}
		if f.Required.Kind != Conditional {
			continue
		}
		for _, dep := range f.Required.DependsOn {
			if _, ok := s.index[dep]; !ok {
				return ConfigErrorf(key, "required depends on unknown key %q", dep)
			}
		}
	}
	return nil
}

// UnmarshalYAML decodes a mapping of key → field, keeping mapping order.
func (s *Specification) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: args must be a mapping", node.Line)
	}
	*s = Specification{index: make(map[string]int, len(node.Content)/2)}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		var f Field
		if err := valNode.Decode(&f); err != nil {
			return fmt.Errorf("args.%s: %w", keyNode.Value, err)
		}
		f.Key = keyNode.Value
		if err := s.add(f); err != nil {
			return err
		}
	}
	return nil
}

// MarshalYAML writes the fields as an ordered mapping.
func (s Specification) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range s.fields {
		var val yaml.Node
		if err := val.Encode(f); err != nil {
			return nil, fmt.Errorf("args.%s: %w", f.Key, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: f.Key},
			&val,
		)
	}
	return node, nil
}

// MarshalJSON writes the fields as an object in declaration order.
func (s Specification) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f)
		if err != nil {
			return nil, fmt.Errorf("args.%s: %w", f.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of key → field. JSON objects carry no
// order guarantee through encoding/json, so keys are added sorted.
func (s *Specification) UnmarshalJSON(data []byte) error {
	var raw map[string]Field
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	*s = Specification{index: make(map[string]int, len(raw))}
	for _, k := range keys {
		f := raw[k]
		f.Key = k
		if err := s.add(f); err != nil {
			return err
		}
	}
	return nil
}

// JSONSchema describes the args mapping for invopop/jsonschema.
func (Specification) JSONSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{DoNotReference: true}
	field := r.Reflect(&Field{})
	field.Version = ""
	field.ID = ""
	return &jsonschema.Schema{
		Type:                 "object",
		Description:          "Argument key to field specification",
		AdditionalProperties: field,
	}
}
