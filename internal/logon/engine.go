// Package logon implements the credential validation and local account
// reconciliation engine. Phase 1 checks the entered username/password against
// the remote authority; phase 2 makes the local OS account exist, carry the
// reconciled flag set and hold the just-validated password.
package logon

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/hnrobert/remlogon/internal/accounts"
	"github.com/hnrobert/remlogon/internal/logger"
	"github.com/hnrobert/remlogon/internal/remote"
)

// Required flags every reconciled account carries, forbidden flags every
// reconciled account loses.
const (
	RequiredFlags  = accounts.PasswordCannotChange | accounts.PasswordNeverExpires
	ForbiddenFlags = accounts.AccountDisabled | accounts.PasswordNotRequired | accounts.Locked | accounts.PasswordExpired
)

// FallbackStatusText is shown when a failure carries no usable description.
const FallbackStatusText = "Fehler bei der Anmeldung."

// Checker is the phase-1 boundary; remote.Authority satisfies it.
type Checker interface {
	Check(ctx context.Context, username, password string) (int, error)
}

type Engine struct {
	remote Checker
	store  accounts.Store
	domain string

	mu     sync.Mutex
	userMu map[string]*sync.Mutex
}

// New builds an engine. domain goes verbatim into the serialized credential;
// it may be empty for purely local sessions.
func New(checker Checker, store accounts.Store, domain string) *Engine {
	return &Engine{
		remote: checker,
		store:  store,
		domain: domain,
		userMu: map[string]*sync.Mutex{},
	}
}

// Attempt runs one full validation/reconciliation pass. It is never
// re-entered for the same credential instance; a fresh submit starts over
// from scratch. Reconciliation for one username is a critical section so
// concurrent attempts against the same account cannot lose updates.
func (e *Engine) Attempt(ctx context.Context, username, password string) Result {
	id := uuid.NewString()[:8]
	logger.Info("logon attempt %s for user %s", id, username)

	status, err := e.remote.Check(ctx, username, password)
	if err != nil {
		logger.Warn("attempt %s: remote check failed: %v", id, err)
		return rejected(err)
	}
	if status != remote.StatusAccepted {
		logger.Info("attempt %s: %v: user %s (status %d)", id, ErrRemoteRejected, username, status)
		r := rejected(nil)
		r.RemoteStatus = status
		return r
	}

	mu := e.lockFor(username)
	mu.Lock()
	defer mu.Unlock()

	if err := e.reconcile(username, password); err != nil {
		logger.Error("attempt %s: reconciliation failed: %v", id, err)
		return rejected(err)
	}

	logger.Info("attempt %s: user %s accepted", id, username)
	return Result{
		Outcome: Accepted,
		Credential: &Serialized{
			Username: username,
			Domain:   e.domain,
			Password: password,
		},
	}
}

// reconcile is phase 2. Partial progress is not rolled back; the next
// successful attempt repairs whatever an earlier failure left behind.
func (e *Engine) reconcile(username, password string) error {
	acct, err := e.store.Lookup(username)
	switch {
	case errors.Is(err, accounts.ErrUserNotFound):
		err := e.store.Create(accounts.CreateRequest{
			Username: username,
			Password: password,
			Flags:    RequiredFlags,
		})
		if err != nil {
			return &OpError{Op: OpCreate, Err: err}
		}
		return nil
	case err != nil:
		return &OpError{Op: OpLookup, Err: err}
	}

	newFlags := (acct.Flags | RequiredFlags) &^ ForbiddenFlags
	if newFlags != acct.Flags {
		if err := e.store.SetFlags(username, newFlags); err != nil {
			return &OpError{Op: OpUpdateFlags, Err: err}
		}
	}
	// The local password is always forced to match the remote-validated one.
	if err := e.store.SetPassword(username, password); err != nil {
		return &OpError{Op: OpSetPassword, Err: err}
	}
	return nil
}

func (e *Engine) lockFor(username string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	if m := e.userMu[username]; m != nil {
		return m
	}
	m := &sync.Mutex{}
	e.userMu[username] = m
	return m
}

// rejected builds the NotFinished result for err. The message is derived
// from the error's own description with a fixed fallback; the password never
// appears in it.
func rejected(err error) Result {
	text := ""
	if err != nil {
		text = err.Error()
		if text == "" {
			text = FallbackStatusText
		}
	}
	return Result{
		Outcome:    NotFinished,
		StatusText: text,
		StatusIcon: IconError,
	}
}
