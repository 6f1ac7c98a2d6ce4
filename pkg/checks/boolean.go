package checks

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ormasoftchile/argspec/pkg/spec"
)

// BooleanChecker accepts native booleans, numbers and the strings "true" and
// "false" in any case.
type BooleanChecker struct{}

func (BooleanChecker) Check(_ context.Context, value any, opts spec.Options) (string, error) {
	if err := decodeOptions(opts, &struct{}{}); err != nil {
		return "", err
	}
	switch v := value.(type) {
	case bool:
		return "", nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "false":
			return "", nil
		}
		return "Value must be one of 'True' or 'False'", nil
	case json.Number:
		if _, err := v.Float64(); err != nil {
			return "Value could not be cast to boolean", nil
		}
		return "", nil
	}
	if _, ok := numericValue(value); ok {
		return "", nil
	}
	return "Value could not be cast to boolean", nil
}
