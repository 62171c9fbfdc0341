package contentd

import (
	"path/filepath"
	"strings"
)

// ContainedName treats raw as text appended to a root directory and returns
// the cleaned name relative to that root. The root itself is returned as ".".
// ok is false when the cleaned name would leave the root, carries a volume
// name, or contains a NUL byte.
//
// The check is lexical: "/etc" becomes "etc" and "a/../b" becomes "b",
// while "../b" and "a/../../b" escape. Symlinks are not evaluated here.
func ContainedName(raw string) (name string, ok bool) {
	if strings.ContainsRune(raw, 0) {
		return "", false
	}

	sep := string(filepath.Separator)
	trimmed := strings.TrimLeft(filepath.FromSlash(raw), sep)
	if filepath.VolumeName(trimmed) != "" {
		return "", false
	}

	rel := filepath.Clean(trimmed)
	if rel == ".." || strings.HasPrefix(rel, ".."+sep) {
		return "", false
	}

	return rel, true
}
