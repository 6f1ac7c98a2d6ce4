package expression

import (
	"errors"
	"testing"

	"github.com/ormasoftchile/argspec/pkg/spec"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr  string
		value float64
		want  bool
	}{
		{"value > 0", 0, false},
		{"value > 0", 5, true},
		{"value >= -1", -1, true},
		{"(value >= 0) & (value < 1)", 0.5, true},
		{"(value >= 0) & (value < 1)", 1, false},
		{"(value < 0) | (value > 10)", 11, true},
		{"value >= 0 and value <= 100", 42, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Evaluate(tt.expr, tt.value)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q, %v) = %v, want %v", tt.expr, tt.value, got, tt.want)
			}
		})
	}
}

func TestEvaluate_MissingVariableIsConfigError(t *testing.T) {
	_, err := Evaluate("1 > 0", 3)
	var ce *spec.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestEvaluate_NonBoolIsError(t *testing.T) {
	_, err := Evaluate("value + 1", 3)
	if err == nil {
		t.Fatal("expected error for non-bool expression")
	}
	var ce *spec.ConfigError
	if errors.As(err, &ce) {
		t.Fatalf("non-bool result should not be a ConfigError: %v", err)
	}
}

func TestEvaluate_SyntaxError(t *testing.T) {
	if _, err := Evaluate("value >", 3); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestIdentifiers(t *testing.T) {
	names, err := Identifiers("value > limit && value < other || value == limit")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"limit", "other", "value"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"(value > 0) & (value < 1)":  "(value > 0) && (value < 1)",
		"(value > 0) && (value < 1)": "(value > 0) && (value < 1)",
		"value < 0 | value > 1":      "value < 0 || value > 1",
		`value > 0 && "a&b" != ""`:   `value > 0 && "a&b" != ""`,
		"value > 0":                  "value > 0",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
