package forms

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// SubmitFunc hands a validated draft to the persistence collaborator.
type SubmitFunc[T any] func(ctx context.Context, record T) error

// Config groups the pieces a Form needs.
type Config[T any] struct {
	Draft T
	Rules *Ruleset[T]
	// Derive recomputes dependent draft fields (totals, resolved display
	// values) after every edit. Optional.
	Derive func(*T)
	Submit SubmitFunc[T]
	// OnSuccess receives the submitted record, e.g. to hand a created entity
	// back to a parent form. Optional.
	OnSuccess func(T)
	// Notifier receives transient success/failure notices. A fresh one is
	// created when nil.
	Notifier      *Notifier
	SuccessNotice string
	FailureNotice string
}

// Form owns one entity draft and walks it through
// editing -> submitting -> {success, failure}. Failure returns to editing with
// the draft intact; success clears the draft and closes the form. A dismissed
// form discards any still-in-flight submission result via a generation
// counter.
type Form[T any] struct {
	mu         sync.Mutex
	id         uuid.UUID
	generation uint64
	state      State
	dismissed  bool
	draft      T
	cfg        Config[T]
	notifier   *Notifier
}

// New builds a Form in the editing state.
func New[T any](cfg Config[T]) *Form[T] {
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = NewNotifier()
	}
	if cfg.SuccessNotice == "" {
		cfg.SuccessNotice = "saved"
	}
	if cfg.FailureNotice == "" {
		cfg.FailureNotice = "could not save, please try again"
	}
	f := &Form[T]{
		id:       uuid.New(),
		state:    StateEditing,
		draft:    cfg.Draft,
		cfg:      cfg,
		notifier: notifier,
	}
	f.deriveLocked()
	return f
}

// ID identifies this form instance.
func (f *Form[T]) ID() uuid.UUID {
	return f.id
}

// State reports the current lifecycle state.
func (f *Form[T]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Closed reports whether the form was submitted or dismissed.
func (f *Form[T]) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dismissed || f.state == StateSuccess
}

// Draft returns the current draft record.
func (f *Form[T]) Draft() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Notices returns the active transient notifications.
func (f *Form[T]) Notices() []Notice {
	return f.notifier.Active()
}

// Apply mutates the draft and recomputes derived fields. Only legal while
// editing.
func (f *Form[T]) Apply(mutate func(*T)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dismissed || f.state == StateSuccess {
		return ErrFormClosed
	}
	if f.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	mutate(&f.draft)
	f.deriveLocked()
	return nil
}

// Blur runs the synchronous rules for one field, the on-blur validation path.
func (f *Form[T]) Blur(field string) Errors {
	f.mu.Lock()
	record := f.draft
	f.mu.Unlock()
	return f.cfg.Rules.CheckField(record, field)
}

// Submit re-validates the whole draft and hands it to the collaborator.
// Field errors block the transition and are returned without touching the
// state machine. A collaborator failure pushes a transient notice, keeps the
// draft, and returns the form to editing; the error is returned so callers
// can surface it. On success the draft is cleared and the form closes.
func (f *Form[T]) Submit(ctx context.Context) (Errors, error) {
	f.mu.Lock()
	if f.dismissed {
		f.mu.Unlock()
		return nil, ErrFormClosed
	}
	switch f.state {
	case StateSubmitting:
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	case StateSuccess:
		f.mu.Unlock()
		return nil, ErrFormClosed
	}
	f.deriveLocked()
	f.state = StateSubmitting
	generation := f.generation
	record := f.draft
	f.mu.Unlock()

	errs := f.cfg.Rules.Check(ctx, record)
	if len(errs) > 0 {
		f.settle(generation, StateEditing)
		return errs, nil
	}

	err := f.cfg.Submit(ctx, record)

	f.mu.Lock()
	if f.generation != generation {
		// Form was dismissed while the request was in flight; its effects
		// must not apply.
		f.mu.Unlock()
		return nil, ErrStaleGeneration
	}
	if err != nil {
		f.state = StateEditing
		f.mu.Unlock()
		f.notifier.Push("error", f.cfg.FailureNotice)
		return nil, err
	}
	f.state = StateSuccess
	var zero T
	f.draft = zero
	f.mu.Unlock()

	f.notifier.Push("success", f.cfg.SuccessNotice)
	if f.cfg.OnSuccess != nil {
		f.cfg.OnSuccess(record)
	}
	return nil, nil
}

// Cancel discards the draft after an explicit confirmation step. Cancelling
// without confirmation returns ErrConfirmRequired so the caller can show the
// confirm dialog.
func (f *Form[T]) Cancel(confirmed bool) error {
	if !confirmed {
		return ErrConfirmRequired
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dismissed || f.state == StateSuccess {
		return ErrFormClosed
	}
	f.dismissLocked()
	return nil
}

// Dismiss closes the form unconditionally, bumping the generation so any
// in-flight submission result is dropped.
func (f *Form[T]) Dismiss() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dismissLocked()
}

func (f *Form[T]) dismissLocked() {
	f.dismissed = true
	f.generation++
	var zero T
	f.draft = zero
}

func (f *Form[T]) deriveLocked() {
	if f.cfg.Derive != nil {
		f.cfg.Derive(&f.draft)
	}
}

func (f *Form[T]) settle(generation uint64, state State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generation != generation {
		return
	}
	f.state = state
}
