// Package audit keeps a small JSON journal of logon attempts. Passwords are
// never recorded.
package audit

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hnrobert/remlogon/internal/hostfs"
)

type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
	OutcomeError    Outcome = "error"
)

type Record struct {
	Time         time.Time `json:"time"`
	Username     string    `json:"username"`
	RemoteIP     string    `json:"remote_ip,omitempty"`
	Outcome      Outcome   `json:"outcome"`
	RemoteStatus int       `json:"remote_status,omitempty"`
	Detail       string    `json:"detail,omitempty"`
}

type Store struct {
	mu   sync.Mutex
	path string
	max  int
}

// NewStore journals to path, keeping at most max records (0 means the
// default of 1000).
func NewStore(path string, max int) *Store {
	if max <= 0 {
		max = 1000
	}
	return &Store{path: path, max: max}
}

func DefaultPath() string {
	return filepath.Join("/remlogon_data", "attempts.json")
}

// Ensure creates the backing directory and an empty journal if missing.
func (s *Store) Ensure() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := hostfs.EnsureDir(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s.saveLocked(nil)
		}
		return err
	}
	return nil
}

// Append adds one record, trimming the journal to the configured size.
func (s *Store) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadLocked()
	if err != nil {
		return err
	}
	recs = append(recs, rec)
	if len(recs) > s.max {
		recs = recs[len(recs)-s.max:]
	}
	return s.saveLocked(recs)
}

// List returns all records, oldest first.
func (s *Store) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() ([]Record, error) {
	b, err := hostfs.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}
	var recs []Record
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Store) saveLocked(recs []Record) error {
	if recs == nil {
		recs = []Record{}
	}
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return hostfs.WriteFileAtomic(s.path, b, 0600)
}
