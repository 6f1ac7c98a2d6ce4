// Package validate runs an Args mapping through a Specification and returns
// the resulting warnings.
//
// Validation happens in three phases. Phase 1 reports unconditionally
// required fields that are missing or empty. Phase 2 dispatches every
// provided field that is not yet known to be invalid to the checker
// registered for its type. Phase 3 reports conditionally required fields
// whose dependencies are satisfied but which were not provided. Each phase
// adds the fields it rejects to the invalid-key set consulted by the later
// phases.
package validate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ormasoftchile/argspec/pkg/checks"
	"github.com/ormasoftchile/argspec/pkg/spec"
)

// Messages shared by the requirement phases and the fault path.
const (
	MsgMissing    = "Key is missing from the args dict"
	MsgNoValue    = "Key is required but has no value"
	MsgUnexpected = "An unexpected error occurred in validation"
)

// Warning explains why one or more fields are invalid.
type Warning struct {
	Keys    []string `json:"keys" yaml:"keys"`
	Message string   `json:"message" yaml:"message"`
}

// Outcome classifies a single checker call.
type Outcome string

const (
	OutcomeValid       Outcome = "valid"
	OutcomeInvalid     Outcome = "invalid"
	OutcomeFault       Outcome = "fault"
	OutcomeConfigError Outcome = "config_error"
)

// Observer receives timing and outcome data. Implementations must be safe
// for concurrent use.
type Observer interface {
	ObserveCheck(tag spec.TypeTag, outcome Outcome, elapsed time.Duration)
	ObserveRun(warnings int, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveCheck(spec.TypeTag, Outcome, time.Duration) {}
func (nopObserver) ObserveRun(int, time.Duration, error)              {}

// Validator validates Args against Specifications. It holds no per-call
// state and may be shared between goroutines.
type Validator struct {
	registry    *checks.Registry
	logger      *slog.Logger
	observer    Observer
	concurrency int
}

// Option is a functional option for configuring Validator instances.
type Option func(*Validator)

// WithRegistry sets the checker registry. The default is
// checks.DefaultRegistry().
func WithRegistry(r *checks.Registry) Option {
	return func(v *Validator) {
		v.registry = r
	}
}

// WithLogger sets the logger checker faults are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = l
	}
}

// WithObserver sets the observer notified about every check and run.
func WithObserver(o Observer) Option {
	return func(v *Validator) {
		v.observer = o
	}
}

// WithConcurrency bounds how many checkers phase 2 runs at once. Values
// below 1 mean 1.
func WithConcurrency(n int) Option {
	return func(v *Validator) {
		v.concurrency = n
	}
}

// New creates a Validator with the provided options.
func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	if v.registry == nil {
		v.registry = checks.DefaultRegistry()
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	if v.observer == nil {
		v.observer = nopObserver{}
	}
	if v.concurrency < 1 {
		v.concurrency = 1
	}
	return v
}

// Validate checks args against s. The returned error is either a
// *spec.ConfigError, meaning s cannot be used with the registry, or the
// context's error. Invalid args are reported only through warnings; an
// empty slice means args are valid.
func (v *Validator) Validate(ctx context.Context, args map[string]any, s *spec.Specification) ([]Warning, error) {
	start := time.Now()
	logger := v.logger.With("run_id", uuid.NewString())

	warnings, err := v.validate(ctx, logger, args, s)
	v.observer.ObserveRun(len(warnings), time.Since(start), err)
	if err != nil {
		logger.Debug("validation aborted", "error", err)
		return nil, err
	}

	logger.Debug("validation completed",
		"fields", s.Len(),
		"warnings", len(warnings),
		"duration", time.Since(start))
	return warnings, nil
}

func (v *Validator) validate(ctx context.Context, logger *slog.Logger, args map[string]any, s *spec.Specification) ([]Warning, error) {
	if s == nil {
		return nil, errors.New("specification cannot be nil")
	}
	if err := s.Check(v.registry.Known); err != nil {
		return nil, err
	}

	invalid := make(map[string]bool)
	warnings := absoluteRequirements(args, s, invalid)

	checked, err := v.checkValues(ctx, logger, args, s, invalid)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, checked...)
	warnings = append(warnings, conditionalRequirements(args, s, invalid)...)
	if warnings == nil {
		warnings = []Warning{}
	}
	return warnings, nil
}

// provided reports whether args holds a usable value for key. Absent keys,
// nil and the empty string all mean "not provided".
func provided(args map[string]any, key string) bool {
	value, ok := args[key]
	return ok && !isEmpty(value)
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

// sortedKeys returns the field keys of s matching keep, in lexicographic
// order.
func sortedKeys(s *spec.Specification, keep func(spec.Field) bool) []string {
	var keys []string
	for _, key := range s.Keys() {
		f, _ := s.Lookup(key)
		if keep(f) {
			keys = append(keys, key)
		}
	}
	return keys
}
