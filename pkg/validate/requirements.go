package validate

import "github.com/ormasoftchile/argspec/pkg/spec"

// absoluteRequirements runs phase 1: unconditionally required fields must be
// present and non-empty. Missing and empty keys are reported in one warning
// each.
func absoluteRequirements(args map[string]any, s *spec.Specification, invalid map[string]bool) []Warning {
	var missing, empty []string
	for _, key := range sortedKeys(s, func(f spec.Field) bool { return f.Required.Kind == spec.Unconditional }) {
		value, ok := args[key]
		switch {
		case !ok:
			missing = append(missing, key)
		case isEmpty(value):
			empty = append(empty, key)
		default:
			continue
		}
		invalid[key] = true
	}

	var warnings []Warning
	if len(missing) > 0 {
		warnings = append(warnings, Warning{Keys: missing, Message: MsgMissing})
	}
	if len(empty) > 0 {
		warnings = append(warnings, Warning{Keys: empty, Message: MsgNoValue})
	}
	return warnings
}

// conditionalRequirements runs phase 3. A field with dependencies is
// required when at least one dependency was provided and is not invalid.
func conditionalRequirements(args map[string]any, s *spec.Specification, invalid map[string]bool) []Warning {
	var warnings []Warning
	for _, key := range sortedKeys(s, func(f spec.Field) bool { return f.Required.Kind == spec.Conditional }) {
		if invalid[key] || provided(args, key) {
			continue
		}
		f, _ := s.Lookup(key)
		if !anySatisfied(args, f.Required.DependsOn, invalid) {
			continue
		}
		msg := MsgMissing
		if _, ok := args[key]; ok {
			msg = MsgNoValue
		}
		warnings = append(warnings, Warning{Keys: []string{key}, Message: msg})
		invalid[key] = true
	}
	return warnings
}

func anySatisfied(args map[string]any, deps []string, invalid map[string]bool) bool {
	for _, dep := range deps {
		if provided(args, dep) && !invalid[dep] {
			return true
		}
	}
	return false
}
