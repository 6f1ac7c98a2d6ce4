package validate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormasoftchile/argspec/pkg/checks"
	"github.com/ormasoftchile/argspec/pkg/spec"
)

func allowAll(string, checks.AccessMode) (bool, error) { return true, nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func number(key string, req spec.Requirement, expression string) spec.Field {
	f := spec.Field{Key: key, Type: spec.TypeNumber, Required: req}
	if expression != "" {
		f.ValidationOptions = spec.Options{"expression": expression}
	}
	return f
}

func TestValidate_AllValid(t *testing.T) {
	s := spec.MustNew(
		number("a", spec.Required(), "value > 0"),
		number("b", spec.DependsOn("a"), ""),
		spec.Field{Key: "c", Type: spec.TypeBoolean},
	)
	v := New(WithLogger(quietLogger()))
	warnings, err := v.Validate(context.Background(), map[string]any{"a": 1, "b": "2.5", "c": "false"}, s)
	require.NoError(t, err)
	assert.NotNil(t, warnings)
	assert.Empty(t, warnings)
}

func TestValidate_AbsoluteRequirements(t *testing.T) {
	s := spec.MustNew(
		number("zeta", spec.Required(), ""),
		number("alpha", spec.Required(), ""),
		number("beta", spec.Required(), ""),
		number("gamma", spec.Required(), ""),
		number("opt", spec.NotRequired(), ""),
	)
	args := map[string]any{"beta": "", "gamma": nil}

	warnings, err := New(WithLogger(quietLogger())).Validate(context.Background(), args, s)
	require.NoError(t, err)
	assert.Equal(t, []Warning{
		{Keys: []string{"alpha", "zeta"}, Message: MsgMissing},
		{Keys: []string{"beta", "gamma"}, Message: MsgNoValue},
	}, warnings)
}

func TestValidate_ConditionalRequirement(t *testing.T) {
	s := spec.MustNew(
		number("A", spec.NotRequired(), "value > 0"),
		number("B", spec.DependsOn("A"), ""),
	)
	v := New(WithLogger(quietLogger()))

	tests := []struct {
		name string
		args map[string]any
		want []Warning
	}{
		{"dependency valid, field absent", map[string]any{"A": 5},
			[]Warning{{Keys: []string{"B"}, Message: MsgMissing}}},
		{"dependency valid, field empty", map[string]any{"A": 5, "B": ""},
			[]Warning{{Keys: []string{"B"}, Message: MsgNoValue}}},
		{"dependency invalid", map[string]any{"A": -1},
			[]Warning{{Keys: []string{"A"}, Message: "Value does not meet condition value > 0"}}},
		{"dependency absent", map[string]any{}, []Warning{}},
		{"dependency empty", map[string]any{"A": ""}, []Warning{}},
		{"both present", map[string]any{"A": 1, "B": 2}, []Warning{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings, err := v.Validate(context.Background(), tt.args, s)
			require.NoError(t, err)
			assert.Equal(t, tt.want, warnings)
		})
	}
}

func TestValidate_ConditionalAnyDependency(t *testing.T) {
	s := spec.MustNew(
		number("a", spec.NotRequired(), "value > 0"),
		number("b", spec.NotRequired(), "value > 0"),
		number("c", spec.DependsOn("a", "b"), ""),
		number("d", spec.DependsOn(), ""),
	)
	warnings, err := New(WithLogger(quietLogger())).Validate(context.Background(), map[string]any{"a": 0, "b": 1}, s)
	require.NoError(t, err)
	assert.Equal(t, []Warning{
		{Keys: []string{"a"}, Message: "Value does not meet condition value > 0"},
		{Keys: []string{"c"}, Message: MsgMissing},
	}, warnings)
}

// countingChecker records the keys' values it was asked about.
type countingChecker struct {
	mu    sync.Mutex
	calls []any
}

func (c *countingChecker) Check(_ context.Context, value any, _ spec.Options) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, value)
	return "", nil
}

func TestValidate_InvalidFieldsAreNotRechecked(t *testing.T) {
	counter := &countingChecker{}
	reg := checks.NewRegistry(map[spec.TypeTag]checks.Checker{"counted": counter})
	s := spec.MustNew(
		spec.Field{Key: "empty", Type: "counted", Required: spec.Required()},
		spec.Field{Key: "present", Type: "counted", Required: spec.Required()},
		spec.Field{Key: "optional", Type: "counted"},
	)

	warnings, err := New(WithRegistry(reg), WithLogger(quietLogger())).
		Validate(context.Background(), map[string]any{"empty": "", "present": "x"}, s)
	require.NoError(t, err)
	assert.Equal(t, []Warning{{Keys: []string{"empty"}, Message: MsgNoValue}}, warnings)
	assert.Equal(t, []any{"x"}, counter.calls)
}

func TestValidate_FaultIsolation(t *testing.T) {
	reg := checks.DefaultRegistry().
		With("panics", checks.CheckerFunc(func(context.Context, any, spec.Options) (string, error) {
			panic("backend exploded")
		})).
		With("fails", checks.CheckerFunc(func(context.Context, any, spec.Options) (string, error) {
			return "", errors.New("dataset driver crashed")
		}))
	s := spec.MustNew(
		spec.Field{Key: "x", Type: "panics"},
		spec.Field{Key: "w", Type: "fails"},
		number("y", spec.NotRequired(), "value > 0"),
		number("dependent", spec.DependsOn("x"), ""),
	)

	var logs bytes.Buffer
	v := New(WithRegistry(reg), WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))))
	warnings, err := v.Validate(context.Background(), map[string]any{"x": "a", "w": "b", "y": 0}, s)
	require.NoError(t, err)
	assert.Equal(t, []Warning{
		{Keys: []string{"w"}, Message: MsgUnexpected},
		{Keys: []string{"x"}, Message: MsgUnexpected},
		{Keys: []string{"y"}, Message: "Value does not meet condition value > 0"},
	}, warnings)
	assert.Contains(t, logs.String(), "dataset driver crashed")
	assert.Contains(t, logs.String(), "backend exploded")
	assert.Contains(t, logs.String(), `"field":"x"`)
	assert.Contains(t, logs.String(), `"run_id"`)
}

func TestValidate_ConfigErrors(t *testing.T) {
	v := New(WithLogger(quietLogger()))
	tests := []struct {
		name    string
		spec    *spec.Specification
		args    map[string]any
		wantKey string
	}{
		{"unknown type", spec.MustNew(spec.Field{Key: "a", Type: "colour"}), map[string]any{}, "a"},
		{"unknown dependency", spec.MustNew(number("a", spec.DependsOn("ghost"), "")), map[string]any{}, "a"},
		{"expression without value", spec.MustNew(number("n", spec.NotRequired(), "1 > 0")), map[string]any{"n": 1}, "n"},
		{"invalid permission letters", spec.MustNew(spec.Field{
			Key: "f", Type: spec.TypeFile, ValidationOptions: spec.Options{"permissions": "rz"},
		}), map[string]any{"f": "validate_test.go"}, "f"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings, err := v.Validate(context.Background(), tt.args, tt.spec)
			assert.Nil(t, warnings)
			var cfgErr *spec.ConfigError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.wantKey, cfgErr.Key)
		})
	}
}

func TestValidate_NilSpecification(t *testing.T) {
	_, err := New().Validate(context.Background(), map[string]any{}, nil)
	assert.Error(t, err)
}

func TestValidate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := spec.MustNew(number("a", spec.Required(), ""))
	_, err := New(WithLogger(quietLogger())).Validate(ctx, map[string]any{"a": 1}, s)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidate_Idempotent(t *testing.T) {
	s := spec.MustNew(
		number("a", spec.Required(), "value > 0"),
		number("b", spec.DependsOn("a"), ""),
		spec.Field{Key: "c", Type: spec.TypeOptionString, ValidationOptions: spec.Options{"options": []any{"x", "y"}}},
	)
	args := map[string]any{"a": 3, "c": "z"}
	v := New(WithLogger(quietLogger()))

	first, err := v.Validate(context.Background(), args, s)
	require.NoError(t, err)
	second, err := v.Validate(context.Background(), args, s)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, map[string]any{"a": 3, "c": "z"}, args)
}

func TestValidate_ConcurrentMatchesSequential(t *testing.T) {
	var fields []spec.Field
	args := map[string]any{}
	for i := range 40 {
		key := fmt.Sprintf("n%02d", i)
		fields = append(fields, number(key, spec.NotRequired(), "value > 20"))
		args[key] = i
	}
	s := spec.MustNew(fields...)

	sequential, err := New(WithLogger(quietLogger())).Validate(context.Background(), args, s)
	require.NoError(t, err)
	concurrent, err := New(WithLogger(quietLogger()), WithConcurrency(8)).Validate(context.Background(), args, s)
	require.NoError(t, err)
	assert.Len(t, sequential, 21)
	assert.Equal(t, sequential, concurrent)
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[Outcome]int
	runs     int
	warnings int
}

func (r *recordingObserver) ObserveCheck(_ spec.TypeTag, outcome Outcome, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = map[Outcome]int{}
	}
	r.outcomes[outcome]++
}

func (r *recordingObserver) ObserveRun(warnings int, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	r.warnings += warnings
}

func TestValidate_Observer(t *testing.T) {
	obs := &recordingObserver{}
	s := spec.MustNew(
		number("good", spec.NotRequired(), ""),
		number("bad", spec.NotRequired(), ""),
		spec.Field{Key: "missing", Type: spec.TypeNumber, Required: spec.Required()},
	)
	_, err := New(WithObserver(obs), WithLogger(quietLogger())).
		Validate(context.Background(), map[string]any{"good": 1, "bad": "x"}, s)
	require.NoError(t, err)
	assert.Equal(t, map[Outcome]int{OutcomeValid: 1, OutcomeInvalid: 1}, obs.outcomes)
	assert.Equal(t, 1, obs.runs)
	assert.Equal(t, 2, obs.warnings)
}

func TestValidate_DemoModel(t *testing.T) {
	ms, err := spec.LoadFile(filepath.Join("..", "spec", "testdata", "demo.yaml"))
	require.NoError(t, err)

	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	aoi := write("aoi.geojson", `{
  "type": "FeatureCollection",
  "crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::32610"}},
  "features": [{"type": "Feature", "properties": {"id": 1},
    "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,0]]]}}]
}`)
	args := map[string]any{
		"workspace_dir":       dir,
		"results_suffix":      "",
		"n_workers":           "4",
		"info_table_path":     write("info.csv", "name,path,stressor_buffer\nfishing,f.shp,100\n"),
		"criteria_table_path": write("criteria.csv", "HABITAT NAME,eelgrass\n"),
		"resolution":          30,
		"max_rating":          3,
		"decay_eq":            "Linear",
		"aoi_vector_path":     aoi,
		"visualize_outputs":   true,
	}

	v := New(
		WithRegistry(checks.DefaultRegistry(checks.WithAccess(allowAll))),
		WithLogger(quietLogger()),
		WithConcurrency(4),
	)
	warnings, err := v.Validate(context.Background(), args, &ms.Args)
	require.NoError(t, err)
	assert.Equal(t, []Warning{{Keys: []string{"habitat_raster_path"}, Message: MsgMissing}}, warnings)

	args["aoi_vector_path"] = filepath.Join(dir, "missing.geojson")
	args["decay_eq"] = "Quadratic"
	warnings, err = v.Validate(context.Background(), args, &ms.Args)
	require.NoError(t, err)
	assert.Equal(t, []Warning{
		{Keys: []string{"aoi_vector_path"}, Message: "File not found: " + filepath.Join(dir, "missing.geojson")},
		{Keys: []string{"decay_eq"}, Message: "Value must be one of: Exponential, Linear, None"},
	}, warnings)
}
