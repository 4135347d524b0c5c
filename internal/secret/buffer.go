package secret

import (
	"crypto/subtle"
	"errors"
	"unicode/utf8"
)

// Package-wide bounds for logon input fields.
// Usernames may carry a short domain prefix ("DOMAIN\user" or "user@domain"),
// so the username buffer gets a small allowance on top of the base bound.
const (
	baseLen         = 256
	domainAllowance = 16

	UsernameMaxLen = baseLen + domainAllowance
	PasswordMaxLen = baseLen
)

var ErrTooLong = errors.New("value exceeds field bound")

// Buffer is a fixed-capacity holder for credential text. The backing array is
// allocated once and overwritten with zeros on every Set and Clear so that no
// fragment of a previous value survives in reusable memory. Bounds are
// measured in runes to match what a user can actually type into a field.
type Buffer struct {
	buf     []byte
	n       int
	maxRune int
}

// New returns a buffer that accepts up to maxRunes runes.
func New(maxRunes int) *Buffer {
	return &Buffer{
		buf:     make([]byte, maxRunes*utf8.UTFMax),
		maxRune: maxRunes,
	}
}

func (b *Buffer) MaxRunes() int { return b.maxRune }

// Len reports the current value's length in runes.
func (b *Buffer) Len() int {
	return utf8.RuneCount(b.buf[:b.n])
}

// Set replaces the stored value. Oversized input fails with ErrTooLong and
// leaves the previous value untouched; nothing of the rejected value is
// written into the backing array.
func (b *Buffer) Set(value string) error {
	if utf8.RuneCountInString(value) > b.maxRune {
		return ErrTooLong
	}
	zero(b.buf)
	b.n = copy(b.buf, value)
	return nil
}

// String returns the current value.
func (b *Buffer) String() string {
	return string(b.buf[:b.n])
}

// Equal compares the stored value against s in constant time.
func (b *Buffer) Equal(s string) bool {
	return subtle.ConstantTimeCompare(b.buf[:b.n], []byte(s)) == 1
}

// Clear overwrites the backing array with zeros before the logical reset.
// Idempotent.
func (b *Buffer) Clear() {
	zero(b.buf)
	b.n = 0
}

func zero(p []byte) {
	for i := range p {
		p[i] = 0
	}
}
