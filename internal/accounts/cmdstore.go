package accounts

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CmdStore implements Store by shelling out to the shadow-utils tools.
// It needs root and the useradd/usermod/chage/chpasswd/passwd/getent binaries.
//
// Flag observation is best effort: `passwd -S` exposes lock state, missing
// passwords and the age bounds, but not account expiry, so AccountDisabled
// reads as unset here. Reconciliation still converges because forbidden
// flags are re-cleared on every successful attempt.
type CmdStore struct {
	Timeout time.Duration
}

func NewCmdStore() *CmdStore {
	return &CmdStore{Timeout: 10 * time.Second}
}

func (s *CmdStore) run(name string, args ...string) error {
	_, err := s.runOut(name, args...)
	return err
}

func (s *CmdStore) runOut(name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return stdout.String(), fmt.Errorf("%s: %w", name, err)
		}
		return stdout.String(), fmt.Errorf("%s: %s", name, msg)
	}
	return stdout.String(), nil
}

func (s *CmdStore) runWithStdin(stdin []byte, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("%s: %w", name, err)
		}
		return fmt.Errorf("%s: %s", name, msg)
	}
	return nil
}

func (s *CmdStore) Lookup(username string) (Account, error) {
	out, err := s.runOut("getent", "passwd", username)
	if err != nil {
		// getent exits 2 when the key is unknown.
		return Account{}, ErrUserNotFound
	}
	parts := parseColonLine(strings.TrimSpace(out))
	if len(parts) < 7 {
		return Account{}, fmt.Errorf("unexpected getent output for %s", username)
	}
	uid, err := atoi(parts[2], "passwd.uid")
	if err != nil {
		return Account{}, err
	}
	acct := Account{Name: parts[0], UID: uid}
	acct.Flags = s.statusFlags(username)
	return acct, nil
}

// statusFlags derives what `passwd -S` can tell us:
//
//	alice P 07/01/2024 0 99999 7 -1
//	name  status lastchg min max warn inactive
func (s *CmdStore) statusFlags(username string) Flags {
	out, err := s.runOut("passwd", "-S", username)
	if err != nil {
		return 0
	}
	fieldsOut := strings.Fields(strings.TrimSpace(out))
	if len(fieldsOut) < 5 {
		return 0
	}
	var f Flags
	switch fieldsOut[1] {
	case "L", "LK":
		f |= Locked
	case "NP":
		f |= PasswordNotRequired
	}
	if fieldsOut[3] == minNoChange {
		f |= PasswordCannotChange
	}
	if fieldsOut[4] == maxNoExpiry || fieldsOut[4] == "-1" {
		f |= PasswordNeverExpires
	}
	return f
}

func (s *CmdStore) Create(req CreateRequest) error {
	if !ValidUsername(req.Username) {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, req.Username)
	}
	if _, err := s.runOut("getent", "passwd", req.Username); err == nil {
		return fmt.Errorf("%w: %s", ErrUserExists, req.Username)
	}
	if err := s.run("useradd", "-M", "-c", "", "-s", defaultShell, req.Username); err != nil {
		return err
	}
	if err := s.SetPassword(req.Username, req.Password); err != nil {
		return err
	}
	return s.SetFlags(req.Username, req.Flags)
}

func (s *CmdStore) SetFlags(username string, flags Flags) error {
	if flags&Locked != 0 {
		if err := s.run("usermod", "-L", username); err != nil {
			return err
		}
	} else {
		// usermod -U fails when the account has no password; ignore that case.
		_ = s.run("usermod", "-U", username)
	}

	minDays, maxDays := minDefault, maxRotation
	if flags&PasswordCannotChange != 0 {
		minDays = minNoChange
	}
	if flags&PasswordNeverExpires != 0 {
		maxDays = "-1"
	}
	if err := s.run("chage", "-m", minDays, "-M", maxDays, username); err != nil {
		return err
	}

	if flags&PasswordExpired != 0 {
		if err := s.run("chage", "-d", "0", username); err != nil {
			return err
		}
	}
	expire := "-1"
	if flags&AccountDisabled != 0 {
		expire = "1970-01-02"
	}
	if err := s.run("chage", "-E", expire, username); err != nil {
		return err
	}
	if flags&PasswordNotRequired != 0 {
		return s.run("passwd", "-d", username)
	}
	return nil
}

func (s *CmdStore) SetPassword(username, password string) error {
	// chpasswd reads "user:pass" lines from stdin.
	line := fmt.Sprintf("%s:%s\n", username, password)
	return s.runWithStdin([]byte(line), "chpasswd")
}
