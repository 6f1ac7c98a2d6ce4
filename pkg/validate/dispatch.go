package validate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ormasoftchile/argspec/pkg/spec"
)

type checkResult struct {
	message string
	err     error
	stack   []byte
}

// checkValues runs phase 2. Checkers may run concurrently; warnings are
// emitted in key order regardless.
func (v *Validator) checkValues(ctx context.Context, logger *slog.Logger, args map[string]any, s *spec.Specification, invalid map[string]bool) ([]Warning, error) {
	keys := sortedKeys(s, func(f spec.Field) bool {
		return !invalid[f.Key] && provided(args, f.Key)
	})
	results := make([]checkResult, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i, key := range keys {
		f, _ := s.Lookup(key)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = v.runCheck(gctx, f, args[key])
			var cfgErr *spec.ConfigError
			if errors.As(results[i].err, &cfgErr) {
				if cfgErr.Key == "" {
					cfgErr.Key = key
				}
				return cfgErr
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var warnings []Warning
	for i, key := range keys {
		res := results[i]
		switch {
		case res.err != nil:
			f, _ := s.Lookup(key)
			attrs := []any{
				slog.String("field", key),
				slog.String("type", string(f.Type)),
				slog.Any("value", args[key]),
				slog.String("error", res.err.Error()),
			}
			if res.stack != nil {
				attrs = append(attrs, slog.String("stack", string(res.stack)))
			}
			logger.Error("unexpected error in validation", attrs...)
			warnings = append(warnings, Warning{Keys: []string{key}, Message: MsgUnexpected})
		case res.message != "":
			warnings = append(warnings, Warning{Keys: []string{key}, Message: res.message})
		default:
			continue
		}
		invalid[key] = true
	}
	return warnings, nil
}

// runCheck calls the checker for f, converting a panic into an error.
func (v *Validator) runCheck(ctx context.Context, f spec.Field, value any) (res checkResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = checkResult{err: fmt.Errorf("checker panicked: %v", r), stack: debug.Stack()}
		}
		v.observer.ObserveCheck(f.Type, classify(res), time.Since(start))
	}()

	c, ok := v.registry.Lookup(f.Type)
	if !ok {
		return checkResult{err: spec.ConfigErrorf(f.Key, "no checker registered for type %q", f.Type)}
	}
	msg, err := c.Check(ctx, value, f.ValidationOptions)
	return checkResult{message: msg, err: err}
}

func classify(res checkResult) Outcome {
	var cfgErr *spec.ConfigError
	switch {
	case errors.As(res.err, &cfgErr):
		return OutcomeConfigError
	case res.err != nil:
		return OutcomeFault
	case res.message != "":
		return OutcomeInvalid
	}
	return OutcomeValid
}
