package accounts

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hnrobert/remlogon/internal/hostfs"
)

type groupEntry struct {
	Name    string
	Passwd  string
	GID     int
	Members []string
}

type groupFile struct {
	pf parsedFile[groupEntry]
}

func loadGroup(path string) (*groupFile, error) {
	b, err := hostfs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines, err := readLines(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}

	var pf parsedFile[groupEntry]
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if trim == "" || strings.HasPrefix(trim, "#") {
			pf.lines = append(pf.lines, rawLine[groupEntry]{raw: line})
			continue
		}
		parts := parseColonLine(line)
		if len(parts) < 4 {
			pf.lines = append(pf.lines, rawLine[groupEntry]{raw: line})
			continue
		}
		gid, err := atoi(parts[2], "group.gid")
		if err != nil {
			return nil, err
		}
		members := []string{}
		if parts[3] != "" {
			members = strings.Split(parts[3], ",")
		}
		e := groupEntry{Name: parts[0], Passwd: parts[1], GID: gid, Members: members}
		pf.lines = append(pf.lines, rawLine[groupEntry]{entry: &e})
	}
	return &groupFile{pf: pf}, nil
}

func (f *groupFile) find(name string) *groupEntry {
	for _, e := range f.pf.entries() {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func (f *groupFile) add(e groupEntry) error {
	if f.find(e.Name) != nil {
		return fmt.Errorf("group already exists: %s", e.Name)
	}
	f.pf.lines = append(f.pf.lines, rawLine[groupEntry]{entry: &e})
	return nil
}

func (f *groupFile) nextGID(min int) int {
	max := min - 1
	for _, e := range f.pf.entries() {
		if e.GID > max {
			max = e.GID
		}
	}
	return max + 1
}

func (f *groupFile) bytes() []byte {
	var buf strings.Builder
	for _, ln := range f.pf.lines {
		if ln.entry != nil {
			e := ln.entry
			members := strings.Join(e.Members, ",")
			buf.WriteString(fmt.Sprintf("%s:%s:%d:%s\n", e.Name, e.Passwd, e.GID, members))
		} else {
			buf.WriteString(ln.raw)
			buf.WriteString("\n")
		}
	}
	return []byte(buf.String())
}
