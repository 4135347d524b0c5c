// Package credential holds the state of one interactive logon attempt and
// the provider facade the host drives: field enumeration, field value
// get/set, select/deselect and submit.
package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/hnrobert/remlogon/internal/fields"
	"github.com/hnrobert/remlogon/internal/logon"
	"github.com/hnrobert/remlogon/internal/secret"
)

var (
	ErrOutOfRange    = fields.ErrOutOfRange
	ErrInvalidField  = errors.New("field is not editable")
	ErrNotApplicable = errors.New("field has no text value")
	ErrValueTooLong  = errors.New("value too long")
)

// Events is the host callback surface used to push field values back into
// the host's own field display.
type Events interface {
	SetFieldValue(index int, value string) error
}

// Validator runs one full validation/reconciliation pass; logon.Engine
// satisfies it.
type Validator interface {
	Attempt(ctx context.Context, username, password string) logon.Result
}

// Credential is the mutable state of the single logon tile. Username and
// password live in bounded zeroing buffers; the last-entered username is
// additionally cached in plain form so a re-selected tile can show it again
// after the buffers were wiped (the password is never cached).
type Credential struct {
	username *secret.Buffer
	password *secret.Buffer

	lastUsername string
	events       Events
	validator    Validator
}

func New(v Validator) *Credential {
	return &Credential{
		username:  secret.New(secret.UsernameMaxLen),
		password:  secret.New(secret.PasswordMaxLen),
		validator: v,
	}
}

// Advise registers the host event callback; a later Advise replaces it.
func (c *Credential) Advise(ev Events) {
	c.events = ev
}

func (c *Credential) Unadvise() {
	c.events = nil
}

// GetField returns the current text of a field: the live value for the two
// inputs, the static label for label and submit, ErrNotApplicable for the
// image.
func (c *Credential) GetField(index int) (string, error) {
	d, err := fields.At(index)
	if err != nil {
		return "", err
	}
	switch d.Kind {
	case fields.KindUsernameInput:
		return c.username.String(), nil
	case fields.KindPasswordInput:
		return c.password.String(), nil
	case fields.KindImage:
		return "", ErrNotApplicable
	default:
		return d.Label, nil
	}
}

// SetField replaces the value of an input field. Oversized input fails with
// ErrValueTooLong and leaves the prior value intact.
func (c *Credential) SetField(index int, value string) error {
	d, err := fields.At(index)
	if err != nil {
		return err
	}
	switch d.Kind {
	case fields.KindUsernameInput:
		if err := c.username.Set(value); err != nil {
			return fmt.Errorf("%w: username exceeds %d characters", ErrValueTooLong, c.username.MaxRunes())
		}
		c.lastUsername = value
		return nil
	case fields.KindPasswordInput:
		if err := c.password.Set(value); err != nil {
			return fmt.Errorf("%w: password exceeds %d characters", ErrValueTooLong, c.password.MaxRunes())
		}
		return nil
	default:
		return ErrInvalidField
	}
}

// Selected is called when the user picks this tile. Never auto-submits.
func (c *Credential) Selected() (autoLogon bool) {
	return false
}

// Deselected wipes the password and re-publishes the displayed values: the
// cached username so the user sees it again on re-select, an empty string
// for the password. The username buffer is refilled from the cache, the
// password is gone for good.
func (c *Credential) Deselected() error {
	c.username.Clear()
	c.password.Clear()
	_ = c.username.Set(c.lastUsername)

	if c.events == nil {
		return nil
	}
	for i := 0; i < fields.Count(); i++ {
		d, err := fields.At(i)
		if err != nil {
			return err
		}
		switch d.Kind {
		case fields.KindUsernameInput:
			if err := c.events.SetFieldValue(i, c.lastUsername); err != nil {
				return err
			}
		case fields.KindPasswordInput:
			if err := c.events.SetFieldValue(i, ""); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clear wipes both buffers and the username cache. Runs on destruction.
// Idempotent.
func (c *Credential) Clear() {
	c.username.Clear()
	c.password.Clear()
	c.lastUsername = ""
}

// Submit runs the validation and reconciliation engine exactly once with the
// currently entered values and relays its result.
func (c *Credential) Submit(ctx context.Context) logon.Result {
	return c.validator.Attempt(ctx, c.username.String(), c.password.String())
}
