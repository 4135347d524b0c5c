// Package session performs the actual session logon after an accepted
// attempt: a login shell for the validated user, started behind a PTY so su
// can prompt for the password we just synced.
package session

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"

	"github.com/hnrobert/remlogon/internal/logon"
)

var (
	ErrSessionBackend = errors.New("session backend error")
	ErrNoCredential   = errors.New("no serialized credential")
)

// Session is a running login shell. Reads and writes go straight to the PTY.
type Session struct {
	cmd *exec.Cmd
	f   *os.File
}

// Start launches a login shell for the credential's user via su behind a
// PTY and answers the password prompt. The caller owns the returned session
// and must Close it.
func Start(ctx context.Context, cred *logon.Serialized) (*Session, error) {
	if cred == nil {
		return nil, ErrNoCredential
	}
	if strings.TrimSpace(cred.Username) == "" {
		return nil, fmt.Errorf("%w: empty username", ErrNoCredential)
	}

	cmd := exec.CommandContext(ctx, "su", "-", cred.Username)
	f, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("%w: start su: %v", ErrSessionBackend, err)
	}

	if err := answerPrompt(f, cred.Password); err != nil {
		_ = f.Close()
		_ = cmd.Process.Kill()
		return nil, err
	}
	return &Session{cmd: cmd, f: f}, nil
}

// answerPrompt waits for su's password prompt and writes the password.
// BusyBox and shadow-utils su both prompt on the PTY.
func answerPrompt(f *os.File, password string) error {
	var out bytes.Buffer
	br := bufio.NewReader(f)
	buf := make([]byte, 4096)
	deadline := time.Now().Add(6 * time.Second)
	for time.Now().Before(deadline) {
		_ = f.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, rerr := br.Read(buf)
		if n > 0 {
			out.Write(buf[:n])
			if strings.Contains(strings.ToLower(out.String()), "password") {
				_, werr := io.WriteString(f, password+"\n")
				return werr
			}
		}
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			// Timeouts just mean no prompt yet; keep polling.
			continue
		}
	}
	return fmt.Errorf("%w: su never prompted", ErrSessionBackend)
}

func (s *Session) Read(p []byte) (int, error)  { return s.f.Read(p) }
func (s *Session) Write(p []byte) (int, error) { return s.f.Write(p) }

// Wait blocks until the shell exits.
func (s *Session) Wait() error { return s.cmd.Wait() }

func (s *Session) Close() error {
	err := s.f.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	return err
}
