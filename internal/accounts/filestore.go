package accounts

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hnrobert/remlogon/internal/hostfs"
)

// Shadow field values used to express reconciled flags.
const (
	minNoChange   = "99999" // password may never be changed by the user
	minDefault    = "0"
	maxNoExpiry   = "99999"
	maxRotation   = "90" // rotation period when expiry is enforced
	warnDefault   = "7"
	expireNever   = ""
	expireAlready = "1" // day 1 of the epoch, account expired long ago
	mustChange    = "0" // last-change day 0 forces a change at next logon
)

const (
	defaultShell = "/bin/bash"
	noHomeDir    = "/nonexistent"
	uidFloor     = 1000
)

// FileStore implements Store by editing passwd/shadow/group directly.
// Flags map onto shadow semantics:
//
//	Locked               -> "!" prefix on the hash
//	PasswordNotRequired  -> empty hash
//	PasswordCannotChange -> minimum age 99999
//	PasswordNeverExpires -> maximum age 99999 (or unset)
//	PasswordExpired      -> last-change day 0
//	AccountDisabled      -> account expiry date in the past
type FileStore struct {
	PasswdPath string
	ShadowPath string
	GroupPath  string

	// Now is overridable for tests; zero value means time.Now.
	Now func() time.Time
}

// NewFileStore returns a store over explicit file paths.
func NewFileStore(passwd, shadow, group string) *FileStore {
	return &FileStore{PasswdPath: passwd, ShadowPath: shadow, GroupPath: group}
}

// NewHostFileStore returns a store over the bind-mounted host files.
func NewHostFileStore() (*FileStore, error) {
	passwd, err := hostfs.Path(hostfs.EtcPasswdRel)
	if err != nil {
		return nil, err
	}
	shadow, err := hostfs.Path(hostfs.EtcShadowRel)
	if err != nil {
		return nil, err
	}
	group, err := hostfs.Path(hostfs.EtcGroupRel)
	if err != nil {
		return nil, err
	}
	return NewFileStore(passwd, shadow, group), nil
}

func (s *FileStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *FileStore) Lookup(username string) (Account, error) {
	pw, err := loadPasswd(s.PasswdPath)
	if err != nil {
		return Account{}, err
	}
	pe := pw.find(username)
	if pe == nil {
		return Account{}, ErrUserNotFound
	}
	sh, err := loadShadow(s.ShadowPath)
	if err != nil {
		return Account{}, err
	}
	acct := Account{Name: pe.Name, UID: pe.UID}
	if se := sh.find(username); se != nil {
		acct.Flags = s.flagsFromShadow(se)
	}
	return acct, nil
}

func (s *FileStore) Create(req CreateRequest) error {
	if !ValidUsername(req.Username) {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, req.Username)
	}
	pw, err := loadPasswd(s.PasswdPath)
	if err != nil {
		return err
	}
	sh, err := loadShadow(s.ShadowPath)
	if err != nil {
		return err
	}
	gr, err := loadGroup(s.GroupPath)
	if err != nil {
		return err
	}
	if pw.find(req.Username) != nil || sh.find(req.Username) != nil {
		return fmt.Errorf("%w: %s", ErrUserExists, req.Username)
	}

	// Primary group: create if missing.
	primary := gr.find(req.Username)
	if primary == nil {
		gid := gr.nextGID(uidFloor)
		if err := gr.add(groupEntry{Name: req.Username, Passwd: "x", GID: gid}); err != nil {
			return err
		}
		primary = gr.find(req.Username)
	}

	uid := pw.nextUID(uidFloor)
	if err := pw.add(passwdEntry{
		Name:   req.Username,
		Passwd: "x",
		UID:    uid,
		GID:    primary.GID,
		Gecos:  "",
		Home:   noHomeDir,
		Shell:  defaultShell,
	}); err != nil {
		return err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return err
	}
	se := shadowEntry{
		Name:       req.Username,
		Hash:       hash,
		LastChange: daysSinceEpoch(s.now()),
		Min:        minDefault,
		Max:        maxNoExpiry,
		Warn:       warnDefault,
	}
	s.applyFlagsToShadow(&se, req.Flags)
	if err := sh.add(se); err != nil {
		return err
	}

	if err := hostfs.WriteFileAtomic(s.PasswdPath, pw.bytes(), 0644); err != nil {
		return err
	}
	if err := hostfs.WriteFileAtomic(s.ShadowPath, sh.bytes(), 0600); err != nil {
		return err
	}
	return hostfs.WriteFileAtomic(s.GroupPath, gr.bytes(), 0644)
}

func (s *FileStore) SetFlags(username string, flags Flags) error {
	sh, err := loadShadow(s.ShadowPath)
	if err != nil {
		return err
	}
	se := sh.find(username)
	if se == nil {
		return ErrUserNotFound
	}
	s.applyFlagsToShadow(se, flags)
	return hostfs.WriteFileAtomic(s.ShadowPath, sh.bytes(), 0600)
}

func (s *FileStore) SetPassword(username, password string) error {
	sh, err := loadShadow(s.ShadowPath)
	if err != nil {
		return err
	}
	se := sh.find(username)
	if se == nil {
		return ErrUserNotFound
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	// A lock prefix survives a password write; only SetFlags unlocks.
	if strings.HasPrefix(se.Hash, "!") {
		hash = "!" + hash
	}
	se.Hash = hash
	se.LastChange = daysSinceEpoch(s.now())
	return hostfs.WriteFileAtomic(s.ShadowPath, sh.bytes(), 0600)
}

func (s *FileStore) flagsFromShadow(e *shadowEntry) Flags {
	var f Flags
	hash := e.Hash
	if strings.HasPrefix(hash, "!") {
		f |= Locked
		hash = strings.TrimPrefix(hash, "!")
	}
	if hash == "" {
		f |= PasswordNotRequired
	}
	if e.Min == minNoChange {
		f |= PasswordCannotChange
	}
	if e.Max == "" || e.Max == maxNoExpiry {
		f |= PasswordNeverExpires
	}
	if e.LastChange == mustChange {
		f |= PasswordExpired
	}
	if e.Expire != "" {
		if day, err := strconv.Atoi(e.Expire); err == nil && int64(day) <= s.now().Unix()/86400 {
			f |= AccountDisabled
		}
	}
	return f
}

func (s *FileStore) applyFlagsToShadow(e *shadowEntry, flags Flags) {
	base := strings.TrimPrefix(e.Hash, "!")
	if flags&PasswordNotRequired != 0 {
		base = ""
	} else if base == "" {
		// Clearing "no password required" without a password leaves the
		// account non-loggable until SetPassword runs.
		base = "*"
	}
	if flags&Locked != 0 {
		base = "!" + base
	}
	e.Hash = base

	if flags&PasswordCannotChange != 0 {
		e.Min = minNoChange
	} else {
		e.Min = minDefault
	}
	if flags&PasswordNeverExpires != 0 {
		e.Max = maxNoExpiry
	} else {
		e.Max = maxRotation
	}
	if flags&PasswordExpired != 0 {
		e.LastChange = mustChange
	} else if e.LastChange == mustChange {
		e.LastChange = daysSinceEpoch(s.now())
	}
	if flags&AccountDisabled != 0 {
		e.Expire = expireAlready
	} else {
		e.Expire = expireNever
	}
}
