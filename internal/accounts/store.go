package accounts

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrInvalidUsername = errors.New("invalid username")
)

// Account is the observed state of a local account. It is read fresh on
// every lookup and never cached across logon attempts.
type Account struct {
	Name  string
	UID   int
	Flags Flags
}

// CreateRequest describes a new standard-privilege account. The logon engine
// creates accounts with no home directory, no comment and the password that
// was just validated remotely.
type CreateRequest struct {
	Username string
	Password string
	Flags    Flags
}

// Store is the boundary to the operating system's account database.
//
// Implementations must treat each operation as a short critical section per
// underlying file or tool so that concurrent attempts for the same username
// cannot lose updates.
type Store interface {
	// Lookup returns the account for username or ErrUserNotFound.
	Lookup(username string) (Account, error)
	// Create adds the account described by req. The password is part of the
	// creation, no separate SetPassword call is needed for new accounts.
	Create(req CreateRequest) error
	// SetFlags writes the given flag set, replacing the current one.
	SetFlags(username string, flags Flags) error
	// SetPassword replaces the account's password.
	SetPassword(username, password string) error
}
