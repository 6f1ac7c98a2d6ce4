// Package checks implements the per-type argument checkers and the registry
// that maps a field's type tag to its checker.
//
// A checker returns an empty message when the value is valid, a
// human-readable message when it is not, and an error only when the check
// itself could not be carried out. A *spec.ConfigError means the model spec is
// malformed; any other error is an unexpected fault.
package checks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/argspec/pkg/spec"
)

// Checker validates one value against type-specific options.
type Checker interface {
	Check(ctx context.Context, value any, opts spec.Options) (string, error)
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, value any, opts spec.Options) (string, error)

// Check calls f.
func (f CheckerFunc) Check(ctx context.Context, value any, opts spec.Options) (string, error) {
	return f(ctx, value, opts)
}

// decodeOptions decodes opts into dst, rejecting option names dst does not
// declare.
func decodeOptions(opts spec.Options, dst any) error {
	if len(opts) == 0 {
		return nil
	}
	data, err := yaml.Marshal(map[string]any(opts))
	if err != nil {
		return fmt.Errorf("encode validation options: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode validation options: %w", err)
	}
	return nil
}

// textValue renders scalar values as text. Maps, slices and nil have no
// text form.
func textValue(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		if x {
			return "True", true
		}
		return "False", true
	case int:
		return strconv.Itoa(x), true
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case fmt.Stringer:
		return x.String(), true
	}
	return "", false
}
