package checks

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ormasoftchile/argspec/pkg/expression"
	"github.com/ormasoftchile/argspec/pkg/spec"
)

type numberOptions struct {
	Regexp     *patternOptions `yaml:"regexp"`
	Expression string          `yaml:"expression"`
}

// NumberChecker accepts values that read as a real number, optionally
// constrained by a pattern on the text form and a boolean expression over
// value.
type NumberChecker struct{}

func (NumberChecker) Check(_ context.Context, value any, opts spec.Options) (string, error) {
	var o numberOptions
	if err := decodeOptions(opts, &o); err != nil {
		return "", err
	}
	n, ok := numberValue(value)
	if !ok {
		return "Value could not be interpreted as a number", nil
	}
	if o.Regexp != nil {
		text, _ := textValue(value)
		if msg, err := o.Regexp.matchPattern(strings.TrimSpace(text)); msg != "" || err != nil {
			return msg, err
		}
	}
	if o.Expression == "" {
		return "", nil
	}
	ok, err := expression.Evaluate(o.Expression, n)
	if err != nil {
		return "", err
	}
	if !ok {
		return fmt.Sprintf("Value does not meet condition %s", o.Expression), nil
	}
	return "", nil
}

// numberValue reads v as a float. Booleans are not numbers.
func numberValue(v any) (float64, bool) {
	switch x := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return numericValue(v)
}

func numericValue(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
