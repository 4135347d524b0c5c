package accounts

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hnrobert/remlogon/internal/hostfs"
)

type passwdEntry struct {
	Name   string
	Passwd string
	UID    int
	GID    int
	Gecos  string
	Home   string
	Shell  string
}

type passwdFile struct {
	pf parsedFile[passwdEntry]
}

func loadPasswd(path string) (*passwdFile, error) {
	b, err := hostfs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines, err := readLines(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}

	var pf parsedFile[passwdEntry]
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if trim == "" || strings.HasPrefix(trim, "#") {
			pf.lines = append(pf.lines, rawLine[passwdEntry]{raw: line})
			continue
		}
		parts := parseColonLine(line)
		if len(parts) < 7 {
			// Preserve unknown line as-is.
			pf.lines = append(pf.lines, rawLine[passwdEntry]{raw: line})
			continue
		}
		uid, err := atoi(parts[2], "passwd.uid")
		if err != nil {
			return nil, err
		}
		gid, err := atoi(parts[3], "passwd.gid")
		if err != nil {
			return nil, err
		}
		e := passwdEntry{
			Name:   parts[0],
			Passwd: parts[1],
			UID:    uid,
			GID:    gid,
			Gecos:  parts[4],
			Home:   parts[5],
			Shell:  parts[6],
		}
		pf.lines = append(pf.lines, rawLine[passwdEntry]{entry: &e})
	}

	return &passwdFile{pf: pf}, nil
}

func (f *passwdFile) find(name string) *passwdEntry {
	for _, e := range f.pf.entries() {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func (f *passwdFile) add(e passwdEntry) error {
	if f.find(e.Name) != nil {
		return fmt.Errorf("%w: %s", ErrUserExists, e.Name)
	}
	f.pf.lines = append(f.pf.lines, rawLine[passwdEntry]{entry: &e})
	return nil
}

func (f *passwdFile) nextUID(min int) int {
	max := min - 1
	for _, e := range f.pf.entries() {
		if e.UID > max {
			max = e.UID
		}
	}
	return max + 1
}

func (f *passwdFile) bytes() []byte {
	var buf strings.Builder
	for _, ln := range f.pf.lines {
		if ln.entry != nil {
			e := ln.entry
			buf.WriteString(fmt.Sprintf("%s:%s:%d:%d:%s:%s:%s\n",
				e.Name, e.Passwd, e.UID, e.GID, e.Gecos, e.Home, e.Shell))
			continue
		}
		buf.WriteString(ln.raw)
		buf.WriteString("\n")
	}
	return []byte(buf.String())
}
