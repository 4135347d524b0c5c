package hostfs

import (
	"errors"
	"path/filepath"
	"strings"
)

// HostRoot is the fixed mount point for the host filesystem inside the container.
const HostRoot = "/host"

// Well-known host file locations.
const (
	EtcPasswdRel = "etc/passwd"
	EtcShadowRel = "etc/shadow"
	EtcGroupRel  = "etc/group"
)

var ErrInvalidPath = errors.New("invalid host path")

// Path joins HostRoot with a relative path (no leading slash).
// Example: Path("etc/shadow") -> /host/etc/shadow
func Path(rel string) (string, error) {
	rel = strings.TrimPrefix(rel, "/")
	clean := filepath.Clean(rel)
	if clean == "." || clean == "" {
		return "", ErrInvalidPath
	}
	if strings.HasPrefix(clean, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(HostRoot, clean), nil
}
