package geo

import "strings"

var metreAliases = map[string]bool{
	"m":      true,
	"meter":  true,
	"meters": true,
	"metre":  true,
	"metres": true,
}

// SameLinearUnit compares unit names ignoring case. All spellings of the
// metre are treated as equal.
func SameLinearUnit(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if metreAliases[a] && metreAliases[b] {
		return true
	}
	return a == b
}
