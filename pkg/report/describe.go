package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ormasoftchile/argspec/pkg/spec"
)

// Describe renders a model spec as a Markdown table of its fields, in
// declaration order.
func Describe(ms *spec.ModelSpec) string {
	var b strings.Builder
	title := ms.ModelName
	if title == "" {
		title = "Model arguments"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if ms.Module != "" {
		fmt.Fprintf(&b, "Module: `%s`\n\n", ms.Module)
	}
	if ms.UserguideHTML != "" {
		fmt.Fprintf(&b, "User guide: %s\n\n", ms.UserguideHTML)
	}

	b.WriteString("| Key | Name | Type | Required | Options | About |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, f := range ms.Args.Fields() {
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s | %s | %s |\n",
			f.Key, cell(f.Name), f.Type, requirement(f.Required), cell(options(f.ValidationOptions)), cell(f.About))
	}
	return b.String()
}

func requirement(r spec.Requirement) string {
	switch r.Kind {
	case spec.Unconditional:
		return "yes"
	case spec.Conditional:
		if len(r.DependsOn) == 0 {
			return "no"
		}
		return "if " + strings.Join(r.DependsOn, " or ")
	}
	return "no"
}

func options(opts spec.Options) string {
	if len(opts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, optionValue(opts[k]))
	}
	return strings.Join(parts, "; ")
}

func optionValue(v any) string {
	switch x := v.(type) {
	case []any:
		items := make([]string, len(x))
		for i, item := range x {
			items[i] = optionValue(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case map[string]any:
		return "{" + options(spec.Options(x)) + "}"
	}
	return fmt.Sprint(v)
}
