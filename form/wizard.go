// Package form drives multi-step forms: an ordered list of named steps where
// moving forward is gated on the current step's validation and the last
// interactive step hands the collected data to a terminal action.
package form

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/pkg/logger"
	"github.com/lborres/wanderlust/validate"
)

// Step is one named stage of a wizard. Validate checks only the fields the
// step owns; it is evaluated against the current data every time, so
// conditional requirements follow later edits. A nil Validate owns no fields.
type Step[T any] struct {
	Name     string
	Validate func(data *T, now time.Time) validate.Errors
}

// Action is the terminal side effect performed by Submit.
type Action[T any] func(ctx context.Context, data T) error

// State is a point-in-time view of a wizard.
type State struct {
	Step       string          `json:"step"`
	Index      int             `json:"index"`
	Steps      []string        `json:"steps"`
	Terminal   bool            `json:"terminal"`
	Submitting bool            `json:"submitting"`
	Errors     validate.Errors `json:"errors,omitempty"`
}

type Option[T any] func(*Wizard[T])

// WithClock replaces time.Now for date rules.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(w *Wizard[T]) { w.now = now }
}

func WithLogger[T any](log logger.Logger) Option[T] {
	return func(w *Wizard[T]) { w.log = log }
}

// WithData sets the initial form values.
func WithData[T any](data T) Option[T] {
	return func(w *Wizard[T]) { w.data = data }
}

// Wizard is safe for concurrent use. While a submission is running every
// mutating call fails with core.ErrSubmissionInProgress.
type Wizard[T any] struct {
	mu         sync.Mutex
	steps      []Step[T]
	current    int
	data       T
	errors     validate.Errors
	submitting bool

	action Action[T]
	now    func() time.Time
	log    logger.Logger
}

// New builds a wizard over steps. The last step is terminal and only
// reachable through Submit, so at least two steps are required.
func New[T any](steps []Step[T], action Action[T], opts ...Option[T]) (*Wizard[T], error) {
	if len(steps) < 2 {
		return nil, fmt.Errorf("%w: a form needs at least one step and a terminal step", core.ErrInvalidInput)
	}
	if action == nil {
		return nil, fmt.Errorf("%w: submit action is required", core.ErrInvalidInput)
	}

	seen := make(map[string]bool, len(steps))
	for _, s := range steps {
		if s.Name == "" || seen[s.Name] {
			return nil, fmt.Errorf("%w: step names must be unique and non-empty", core.ErrInvalidInput)
		}
		seen[s.Name] = true
	}

	w := &Wizard[T]{
		steps:  steps,
		action: action,
		now:    time.Now,
		log:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *Wizard[T]) terminal() int    { return len(w.steps) - 1 }
func (w *Wizard[T]) lastInput() int   { return len(w.steps) - 2 }
func (w *Wizard[T]) isTerminal() bool { return w.current == w.terminal() }

func (w *Wizard[T]) validateStep(i int) validate.Errors {
	if w.steps[i].Validate == nil {
		return nil
	}
	errs := w.steps[i].Validate(&w.data, w.now())
	if errs.Empty() {
		return nil
	}
	return errs
}

// Current returns the name of the current step.
func (w *Wizard[T]) Current() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.steps[w.current].Name
}

func (w *Wizard[T]) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	names := make([]string, len(w.steps))
	for i, s := range w.steps {
		names[i] = s.Name
	}
	return State{
		Step:       w.steps[w.current].Name,
		Index:      w.current,
		Steps:      names,
		Terminal:   w.isTerminal(),
		Submitting: w.submitting,
		Errors:     maps.Clone(w.errors),
	}
}

// Data returns a copy of the form values. Pointer fields are shared.
func (w *Wizard[T]) Data() T {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.data
}

// Errors returns the field errors published by the last failed Advance or
// Submit, or nil.
func (w *Wizard[T]) Errors() validate.Errors {
	w.mu.Lock()
	defer w.mu.Unlock()
	return maps.Clone(w.errors)
}

// Update edits the form values in place.
func (w *Wizard[T]) Update(fn func(*T)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return core.ErrSubmissionInProgress
	}
	fn(&w.data)
	return nil
}

// Advance validates the current step and moves to the next one. On
// validation failure the step does not change and the field errors are
// returned. The step before the terminal one can only be left with Submit.
func (w *Wizard[T]) Advance() (validate.Errors, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return nil, core.ErrSubmissionInProgress
	}
	if w.current >= w.lastInput() {
		return nil, core.ErrNoNextStep
	}

	if errs := w.validateStep(w.current); errs != nil {
		w.errors = errs
		return maps.Clone(errs), nil
	}

	w.errors = nil
	w.current++
	return nil, nil
}

// Retreat moves to the previous step keeping every entered value. It is a
// no-op on the first step and once the terminal step is reached.
func (w *Wizard[T]) Retreat() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return core.ErrSubmissionInProgress
	}
	if w.current == 0 || w.isTerminal() {
		return nil
	}
	w.errors = nil
	w.current--
	return nil
}

// Submit re-validates every step, then runs the terminal action. Field
// errors move the wizard to the first failing step and are returned without
// an error. A failing action leaves the wizard on the current step and
// returns an error wrapping core.ErrSubmissionFailed; calling Submit again
// retries.
func (w *Wizard[T]) Submit(ctx context.Context) (validate.Errors, error) {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return nil, core.ErrSubmissionInProgress
	}
	if w.current != w.lastInput() {
		w.mu.Unlock()
		return nil, core.ErrNotSubmittable
	}

	for i := 0; i <= w.lastInput(); i++ {
		if errs := w.validateStep(i); errs != nil {
			w.current = i
			w.errors = errs
			w.mu.Unlock()
			return maps.Clone(errs), nil
		}
	}

	w.submitting = true
	w.errors = nil
	data := w.data
	from := w.steps[w.current].Name
	w.mu.Unlock()

	started := time.Now()
	err := w.action(ctx, data)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false

	if err != nil {
		w.log.Warn("form submission failed", "step", from, "error", err, "elapsed", time.Since(started))
		if !errors.Is(err, core.ErrSubmissionFailed) {
			err = fmt.Errorf("%w: %w", core.ErrSubmissionFailed, err)
		}
		return nil, err
	}

	w.current = w.terminal()
	w.log.Info("form submitted", "step", w.steps[w.current].Name, "elapsed", time.Since(started))
	return nil, nil
}

// ValidateStep runs one step's rules against the current data without
// moving. Unknown names fail with core.ErrUnknownStep.
func (w *Wizard[T]) ValidateStep(name string) (validate.Errors, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, s := range w.steps {
		if s.Name == name {
			return w.validateStep(i), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", core.ErrUnknownStep, name)
}

// Complete walks the wizard from its current step to the last interactive
// one and submits. It stops at the first step with field errors, leaving the
// wizard there. Callers that collect every field up front use it instead of
// driving Advance themselves.
func (w *Wizard[T]) Complete(ctx context.Context) (validate.Errors, error) {
	for {
		errs, err := w.Advance()
		if errors.Is(err, core.ErrNoNextStep) {
			break
		}
		if err != nil || errs != nil {
			return errs, err
		}
	}
	return w.Submit(ctx)
}
