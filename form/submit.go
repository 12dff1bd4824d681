package form

import (
	"context"
	"fmt"
	"time"

	"github.com/lborres/wanderlust/core"
)

// Submitter is an outbound call made when a form completes, such as a
// payment capture or an identity verification request.
type Submitter interface {
	Submit(ctx context.Context, payload any) error
}

type SubmitterFunc func(ctx context.Context, payload any) error

func (f SubmitterFunc) Submit(ctx context.Context, payload any) error { return f(ctx, payload) }

// SimulatedGateway stands in for a remote provider. It waits Delay, then
// returns the result of Fail (nil when Fail is unset). Cancelling ctx ends
// the wait early with ctx.Err().
type SimulatedGateway struct {
	Delay time.Duration
	Fail  func(payload any) error
}

func (g *SimulatedGateway) Submit(ctx context.Context, payload any) error {
	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	if g.Fail != nil {
		return g.Fail(payload)
	}
	return nil
}

// WithTimeout bounds every call to s by d. A zero d leaves s unbounded.
func WithTimeout(s Submitter, d time.Duration) Submitter {
	if d <= 0 {
		return s
	}
	return SubmitterFunc(func(ctx context.Context, payload any) error {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return s.Submit(ctx, payload)
	})
}

// Observer receives the outcome of each submission.
type Observer interface {
	ObserveSubmission(kind string, elapsed time.Duration, err error)
}

// Instrument reports every call to s to obs under kind.
func Instrument(s Submitter, kind string, obs Observer) Submitter {
	if obs == nil {
		return s
	}
	return SubmitterFunc(func(ctx context.Context, payload any) error {
		started := time.Now()
		err := s.Submit(ctx, payload)
		obs.ObserveSubmission(kind, time.Since(started), err)
		return err
	})
}

// submitFailed wraps a provider error so callers can match
// core.ErrSubmissionFailed.
func submitFailed(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrSubmissionFailed, what, err)
}
