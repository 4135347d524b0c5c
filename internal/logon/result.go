package logon

// Icon is the status icon the host shows next to a rejection message.
type Icon int

const (
	IconNone Icon = iota
	IconError
)

// Outcome discriminates the two terminal states of an attempt.
type Outcome int

const (
	// NotFinished means the host must re-display the logon surface.
	NotFinished Outcome = iota
	// Accepted means the host can log the session on with the credential.
	Accepted
)

// Serialized is the opaque credential triple handed to the host's logon
// mechanism after a fully successful attempt.
type Serialized struct {
	Username string
	Domain   string
	Password string
}

// Result is the terminal outcome of one logon attempt. It is never persisted
// and never retried automatically.
type Result struct {
	Outcome    Outcome
	Credential *Serialized

	// Rejection details. StatusText never contains the password. A remote
	// rejection leaves StatusText empty and reports the HTTP status instead,
	// message policy being the host's business.
	StatusText   string
	StatusIcon   Icon
	RemoteStatus int
}
