// Package tiers resolves an operation against an ordered list of storage tiers.
package tiers

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"restaurant-admin-api/apperr"
)

// Tier names the store that answered an operation.
type Tier string

const (
	External Tier = "external"
	Primary  Tier = "primary"
	Fallback Tier = "fallback"
)

// HeaderName carries the answering tier on HTTP responses.
const HeaderName = "X-Data-Tier"

// Step is one attempt in a resolution chain.
type Step[T any] struct {
	Tier    Tier
	Timeout time.Duration
	Run     func(ctx context.Context) (T, error)
}

// Result is the value produced by the first successful step.
type Result[T any] struct {
	Value T
	Tier  Tier
}

// Resolve runs steps in order and returns the first success.
//
// Each step runs under its own deadline. When the deadline fires the step's
// context is cancelled and whatever it returns afterwards is dropped. Errors of
// non-final steps are logged and the next step is tried. The last step's error
// is returned as-is when it is a not-found, otherwise wrapped in ErrAllTiersFailed.
// A step error marked with Halt ends the chain at that step.
func Resolve[T any](ctx context.Context, op string, steps ...Step[T]) (Result[T], error) {
	var lastErr error
	for i, s := range steps {
		v, err := runStep(ctx, s)
		if err == nil {
			if i > 0 {
				log.Infof("🔁 %s answered by %s tier", op, s.Tier)
			}
			return Result[T]{Value: v, Tier: s.Tier}, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return Result[T]{}, err
		}
		var h *haltError
		if errors.As(err, &h) {
			log.WithError(err).Warnf("⚠️ %s stopped at %s tier", op, s.Tier)
			return Result[T]{}, err
		}
		if i < len(steps)-1 {
			log.WithError(err).Warnf("⚠️ %s failed on %s tier, trying %s", op, s.Tier, steps[i+1].Tier)
		}
	}
	if lastErr == nil {
		return Result[T]{}, fmt.Errorf("%w: %s has no tiers configured", apperr.ErrAllTiersFailed, op)
	}
	if apperr.IsNotFound(lastErr) || errors.Is(lastErr, apperr.ErrValidation) {
		return Result[T]{}, lastErr
	}
	log.WithError(lastErr).Errorf("❌ %s failed on every tier", op)
	return Result[T]{}, fmt.Errorf("%w: %s: %w", apperr.ErrAllTiersFailed, op, lastErr)
}

// Halt marks err as final: later tiers are not tried and err is returned as-is.
func Halt(err error) error {
	if err == nil {
		return nil
	}
	return &haltError{err: err}
}

type haltError struct{ err error }

func (h *haltError) Error() string { return h.err.Error() }
func (h *haltError) Unwrap() error { return h.err }

func runStep[T any](ctx context.Context, s Step[T]) (T, error) {
	var zero T
	stepCtx, cancel := ctx, context.CancelFunc(func() {})
	if s.Timeout > 0 {
		stepCtx, cancel = context.WithTimeout(ctx, s.Timeout)
	}
	defer cancel()

	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := s.Run(stepCtx)
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		if o.err == nil && stepCtx.Err() != nil {
			// finished after the deadline; the result is not trusted
			return zero, fmt.Errorf("%s tier: %w", s.Tier, stepCtx.Err())
		}
		if o.err != nil {
			return zero, fmt.Errorf("%s tier: %w", s.Tier, o.err)
		}
		return o.v, nil
	case <-stepCtx.Done():
		if errors.Is(stepCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			log.Warnf("⏱️ %s tier timed out after %s", s.Tier, s.Timeout)
			return zero, fmt.Errorf("%s tier: %w after %s", s.Tier, apperr.ErrConnectionTimeout, s.Timeout)
		}
		return zero, fmt.Errorf("%s tier: %w", s.Tier, stepCtx.Err())
	}
}

// Chain collects steps for one operation, skipping tiers that do not apply.
type Chain[T any] struct {
	steps []Step[T]
}

// Add appends a step when enabled is true.
func (c *Chain[T]) Add(enabled bool, tier Tier, timeout time.Duration, run func(ctx context.Context) (T, error)) *Chain[T] {
	if enabled && run != nil {
		c.steps = append(c.steps, Step[T]{Tier: tier, Timeout: timeout, Run: run})
	}
	return c
}

// Extend appends the steps of other.
func (c *Chain[T]) Extend(other *Chain[T]) *Chain[T] {
	if other != nil {
		c.steps = append(c.steps, other.steps...)
	}
	return c
}

// Len reports how many steps will run.
func (c *Chain[T]) Len() int { return len(c.steps) }

// Resolve runs the collected steps.
func (c *Chain[T]) Resolve(ctx context.Context, op string) (Result[T], error) {
	return Resolve(ctx, op, c.steps...)
}
