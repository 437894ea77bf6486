package forms

import (
	"context"
	"errors"
	"time"

	"boscov/client/internal/api"
	"boscov/client/internal/lib/validator"

	govalidator "github.com/go-playground/validator/v10"
)

type State int

const (
	StatePristine State = iota
	StateDirty
	StateValidating
	StateSaving
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePristine:
		return "pristine"
	case StateDirty:
		return "dirty"
	case StateValidating:
		return "validating"
	case StateSaving:
		return "saving"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

var (
	ErrInvalid      = errors.New("form has validation errors")
	ErrUnchanged    = errors.New("form has no changes")
	ErrSaveInFlight = errors.New("a save is already in flight")
)

// SuccessCloseDelay is how long the shell keeps a succeeded dialog on screen
// before auto-closing it.
const SuccessCloseDelay = 1200 * time.Millisecond

const fallbackSaveMsg = "Ocorreu um erro ao salvar. Tente novamente."

// SaveFunc performs the create or update call for the submitted values.
type SaveFunc[T any] func(ctx context.Context, values T) error

// Controller is the edit-state machine behind every create/edit dialog.
// It seeds from an optional existing entity, tracks dirtiness against that
// seed, validates before submit, and surfaces field-level and general errors.
type Controller[T Values[T]] struct {
	validate *govalidator.Validate

	seed    T
	values  T
	editing bool

	state       State
	fieldErrors map[string]string
	generalErr  string
}

// NewController seeds the form. editing is true when the seed comes from an
// existing entity; create mode has no "unchanged" concept.
func NewController[T Values[T]](validate *govalidator.Validate, seed T, editing bool) *Controller[T] {
	c := &Controller[T]{validate: validate}
	c.Reset(seed, editing)
	return c
}

// Reset re-seeds the form. Re-opening a dialog for a different entity must
// route through here so no transient state leaks between entities.
func (c *Controller[T]) Reset(seed T, editing bool) {
	c.seed = seed
	c.values = seed
	c.editing = editing
	c.state = StatePristine
	c.fieldErrors = nil
	c.generalErr = ""
}

func (c *Controller[T]) Values() T            { return c.values }
func (c *Controller[T]) State() State         { return c.state }
func (c *Controller[T]) Editing() bool        { return c.editing }
func (c *Controller[T]) GeneralError() string { return c.generalErr }

func (c *Controller[T]) FieldErrors() map[string]string {
	return c.fieldErrors
}

func (c *Controller[T]) Dirty() bool {
	return !c.values.Equal(c.seed)
}

// Update applies a field edit and recomputes the machine state. Field errors
// already on display are re-checked so they clear as the user fixes them;
// new errors only appear on submit.
func (c *Controller[T]) Update(mutate func(values *T)) {
	if c.state == StateSaving || c.state == StateSucceeded {
		return
	}
	mutate(&c.values)
	c.generalErr = ""
	if len(c.fieldErrors) > 0 {
		current := validator.ValidateStruct(c.validate, c.values)
		for field := range c.fieldErrors {
			if msg, still := current[field]; still {
				c.fieldErrors[field] = msg
			} else {
				delete(c.fieldErrors, field)
			}
		}
	}
	if c.Dirty() {
		c.state = StateDirty
	} else {
		c.state = StatePristine
	}
}

// CanSubmit reports whether the submit control is enabled: the form must be
// valid, not mid-save, and in edit mode it must have changes.
func (c *Controller[T]) CanSubmit() bool {
	if c.state == StateSaving || c.state == StateSucceeded {
		return false
	}
	if c.editing && !c.Dirty() {
		return false
	}
	return len(validator.ValidateStruct(c.validate, c.values)) == 0
}

// Submit runs full validation and, when it passes, the save operation.
// Validation failure populates field errors and never issues a call. A save
// failure surfaces the server message verbatim when present.
func (c *Controller[T]) Submit(ctx context.Context, save SaveFunc[T]) error {
	if c.state == StateSaving {
		return ErrSaveInFlight
	}
	if c.editing && !c.Dirty() {
		return ErrUnchanged
	}
	c.state = StateValidating
	if errs := validator.ValidateStruct(c.validate, c.values); len(errs) > 0 {
		c.fieldErrors = errs
		c.generalErr = ""
		c.state = StateFailed
		return ErrInvalid
	}
	c.fieldErrors = nil
	c.state = StateSaving
	if err := save(ctx, c.values); err != nil {
		var vErr *api.ValidationError
		if errors.As(err, &vErr) {
			c.fieldErrors = vErr.Fields
			c.generalErr = ""
		} else {
			c.generalErr = api.Message(err, fallbackSaveMsg)
		}
		c.state = StateFailed
		return err
	}
	c.state = StateSucceeded
	return nil
}
