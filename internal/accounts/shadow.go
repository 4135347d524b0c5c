package accounts

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/hnrobert/remlogon/internal/hostfs"
)

type shadowEntry struct {
	Name       string
	Hash       string
	LastChange string
	Min        string
	Max        string
	Warn       string
	Inactive   string
	Expire     string
	Reserved   string
}

type shadowFile struct {
	pf parsedFile[shadowEntry]
}

func loadShadow(path string) (*shadowFile, error) {
	b, err := hostfs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines, err := readLines(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}

	var pf parsedFile[shadowEntry]
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if trim == "" || strings.HasPrefix(trim, "#") {
			pf.lines = append(pf.lines, rawLine[shadowEntry]{raw: line})
			continue
		}

		parts := parseColonLine(line)
		if len(parts) < 2 {
			pf.lines = append(pf.lines, rawLine[shadowEntry]{raw: line})
			continue
		}

		for len(parts) < 9 {
			parts = append(parts, "")
		}

		e := shadowEntry{
			Name:       parts[0],
			Hash:       parts[1],
			LastChange: parts[2],
			Min:        parts[3],
			Max:        parts[4],
			Warn:       parts[5],
			Inactive:   parts[6],
			Expire:     parts[7],
			Reserved:   parts[8],
		}
		pf.lines = append(pf.lines, rawLine[shadowEntry]{entry: &e})
	}

	return &shadowFile{pf: pf}, nil
}

func (f *shadowFile) find(name string) *shadowEntry {
	for _, e := range f.pf.entries() {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func (f *shadowFile) add(e shadowEntry) error {
	if f.find(e.Name) != nil {
		return fmt.Errorf("%w: shadow entry %s", ErrUserExists, e.Name)
	}
	f.pf.lines = append(f.pf.lines, rawLine[shadowEntry]{entry: &e})
	return nil
}

func (f *shadowFile) bytes() []byte {
	var buf strings.Builder
	for _, ln := range f.pf.lines {
		if ln.entry != nil {
			e := ln.entry
			buf.WriteString(fmt.Sprintf("%s:%s:%s:%s:%s:%s:%s:%s:%s\n",
				e.Name, e.Hash, e.LastChange, e.Min, e.Max, e.Warn, e.Inactive, e.Expire, e.Reserved))
			continue
		}
		buf.WriteString(ln.raw)
		buf.WriteString("\n")
	}
	return []byte(buf.String())
}

func daysSinceEpoch(t time.Time) string {
	return fmt.Sprintf("%d", t.Unix()/86400)
}
