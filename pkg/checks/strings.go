package checks

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/ormasoftchile/argspec/pkg/spec"
)

// patternOptions is a regular expression searched for anywhere in the value.
type patternOptions struct {
	Pattern       *string `yaml:"pattern"`
	CaseSensitive bool    `yaml:"case_sensitive"`
}

func (p patternOptions) compile() (*regexp.Regexp, error) {
	if p.Pattern == nil {
		return nil, nil
	}
	src := *p.Pattern
	if !p.CaseSensitive {
		src = "(?i)" + src
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, spec.ConfigErrorf("", "invalid pattern %q: %v", *p.Pattern, err)
	}
	return re, nil
}

// matchPattern returns the mismatch message, or "" when text matches or no
// pattern is set.
func (p patternOptions) matchPattern(text string) (string, error) {
	re, err := p.compile()
	if err != nil || re == nil {
		return "", err
	}
	if !re.MatchString(text) {
		return fmt.Sprintf("Value did not match expected pattern %s", *p.Pattern), nil
	}
	return "", nil
}

type freestyleOptions struct {
	patternOptions `yaml:",inline"`
	Regexp         *patternOptions `yaml:"regexp"`
}

// FreestyleChecker accepts any text-representable value, optionally
// constrained by a pattern.
type FreestyleChecker struct{}

func (FreestyleChecker) Check(_ context.Context, value any, opts spec.Options) (string, error) {
	var o freestyleOptions
	if err := decodeOptions(opts, &o); err != nil {
		return "", err
	}
	text, ok := textValue(value)
	if !ok {
		return notText, nil
	}
	if o.Regexp != nil {
		if o.Pattern != nil {
			return "", spec.ConfigErrorf("", "pattern given both inline and under regexp")
		}
		return o.Regexp.matchPattern(text)
	}
	return o.patternOptions.matchPattern(text)
}

type optionStringOptions struct {
	Options []string `yaml:"options"`
}

// OptionChecker accepts exactly one of a fixed set of strings.
type OptionChecker struct{}

func (OptionChecker) Check(_ context.Context, value any, opts spec.Options) (string, error) {
	var o optionStringOptions
	if err := decodeOptions(opts, &o); err != nil {
		return "", err
	}
	if len(o.Options) == 0 {
		return "", spec.ConfigErrorf("", "option_string requires a non-empty options list")
	}
	if text, ok := textValue(value); ok && slices.Contains(o.Options, text) {
		return "", nil
	}
	sorted := slices.Clone(o.Options)
	slices.Sort(sorted)
	return "Value must be one of: " + strings.Join(sorted, ", "), nil
}
