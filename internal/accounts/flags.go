package accounts

import "strings"

// Flags is the bitset of account properties the logon engine reconciles.
type Flags uint32

const (
	PasswordCannotChange Flags = 1 << iota
	PasswordNeverExpires
	AccountDisabled
	PasswordNotRequired
	Locked
	PasswordExpired
)

func (f Flags) Has(mask Flags) bool { return f&mask == mask }

func (f Flags) String() string {
	names := []struct {
		bit  Flags
		name string
	}{
		{PasswordCannotChange, "pw-cant-change"},
		{PasswordNeverExpires, "pw-never-expires"},
		{AccountDisabled, "disabled"},
		{PasswordNotRequired, "pw-not-required"},
		{Locked, "locked"},
		{PasswordExpired, "pw-expired"},
	}
	var out []string
	for _, n := range names {
		if f&n.bit != 0 {
			out = append(out, n.name)
		}
	}
	if len(out) == 0 {
		return "none"
	}
	return strings.Join(out, ",")
}
