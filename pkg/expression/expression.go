// Package expression evaluates boolean constraints over a single numeric
// variable named value, e.g. "value > 0" or "(value >= 0) & (value < 1)".
package expression

import (
	"fmt"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	"github.com/ormasoftchile/argspec/pkg/spec"
)

// Variable is the name an expression binds the candidate to.
const Variable = "value"

// Evaluate reports whether src holds for the candidate.
//
// An expression that never mentions value is a malformed spec and yields a
// *spec.ConfigError. Compile and runtime failures are returned as plain errors.
func Evaluate(src string, candidate float64) (bool, error) {
	src = Normalize(src)

	names, err := Identifiers(src)
	if err != nil {
		return false, fmt.Errorf("parse expression %q: %w", src, err)
	}
	if !slices.Contains(names, Variable) {
		return false, spec.ConfigErrorf("", "expression %q does not reference %q", src, Variable)
	}

	env := map[string]any{Variable: candidate}
	program, err := expr.Compile(src, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("compile expression %q: %w", src, err)
	}
	output, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("eval expression %q: %w", src, err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q did not return bool (got %T: %v)", src, output, output)
	}
	return result, nil
}

// Identifiers returns the sorted, de-duplicated identifiers an expression
// refers to.
func Identifiers(src string) ([]string, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	c := &identCollector{seen: map[string]struct{}{}}
	ast.Walk(&tree.Node, c)

	names := make([]string, 0, len(c.seen))
	for n := range c.seen {
		names = append(names, n)
	}
	slices.Sort(names)
	return names, nil
}

type identCollector struct {
	seen map[string]struct{}
}

func (c *identCollector) Visit(node *ast.Node) {
	if id, ok := (*node).(*ast.IdentifierNode); ok {
		c.seen[id.Value] = struct{}{}
	}
}

// Normalize rewrites lone & and | operators to && and ||. Model specs often
// write element-wise operators, e.g. "(value > 0) & (value < 1)". Quoted
// string literals are left untouched.
func Normalize(src string) string {
	if !strings.ContainsAny(src, "&|") {
		return src
	}
	var b strings.Builder
	b.Grow(len(src) + 4)
	var quote byte
	for i := 0; i < len(src); i++ {
		ch := src[i]
		switch {
		case quote != 0:
			b.WriteByte(ch)
			if ch == '\\' && i+1 < len(src) {
				i++
				b.WriteByte(src[i])
			} else if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'' || ch == '`':
			quote = ch
			b.WriteByte(ch)
		case ch == '&' || ch == '|':
			if i+1 < len(src) && src[i+1] == ch {
				b.WriteByte(ch)
				b.WriteByte(ch)
				i++
				continue
			}
			b.WriteByte(ch)
			b.WriteByte(ch)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
