package analyzer

import (
	"os"
	"path/filepath"
	"strings"
)

// HasFilePathPrefix reports whether the filesystem path s
// begins with the elements in prefix.
//
// HasFilePathPrefix is case-sensitive (except for volume names) even if the
// filesystem is not, and assumes that all path separators are canonicalized
// to filepath.Separator (as returned by filepath.Clean).
func HasFilePathPrefix(s, prefix string) bool {
	sv := filepath.VolumeName(s)
	pv := filepath.VolumeName(prefix)
	s = s[len(sv):]
	prefix = prefix[len(pv):]

	// Windows volume names are case-insensitive, the rest of the path is not.
	if sv != pv {
		sv = strings.ToUpper(sv)
		pv = strings.ToUpper(pv)
	}

	switch {
	default:
		return false
	case sv != pv:
		return false
	case len(s) == len(prefix):
		return s == prefix
	case prefix == "":
		return true
	case len(s) > len(prefix):
		if prefix[len(prefix)-1] == filepath.Separator {
			return strings.HasPrefix(s, prefix)
		}
		return s[len(prefix)] == filepath.Separator && s[:len(prefix)] == prefix
	}
}

// TrimFilePathPrefix returns s without the leading path elements in prefix.
// The separator following prefix is kept, so trimming "/proj" from
// "/proj/src/a.ts" gives "/src/a.ts".
//
// If s does not start with prefix (HasFilePathPrefix with the same arguments
// returns false), TrimFilePathPrefix returns s. If s equals prefix,
// TrimFilePathPrefix returns "".
func TrimFilePathPrefix(s, prefix string) string {
	if prefix == "" {
		return s
	}
	if !HasFilePathPrefix(s, prefix) {
		return s
	}
	trimmed := s[len(prefix):]
	if trimmed != "" && os.IsPathSeparator(prefix[len(prefix)-1]) {
		trimmed = string(filepath.Separator) + trimmed
	}
	return trimmed
}

// QuoteGlob returns s with all Glob metacharacters quoted.
// We don't try to handle backslash here, as that can appear in a
// file path on Windows.
func QuoteGlob(s string) string {
	if !strings.ContainsAny(s, `*?[]{}`) {
		return s
	}
	var sb strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '{', '}':
			sb.WriteByte('\\')
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// isIgnoredDir reports whether a directory element holds files that are
// never part of the analyzed project.
func isIgnoredDir(name string) bool {
	switch name {
	case "node_modules", ".bzr", ".hg", ".git", ".svn":
		return true
	}
	return false
}

// hasIgnoredElem reports whether any directory element of the
// slash-separated path p is ignored.
func hasIgnoredElem(p string) bool {
	elems := strings.Split(p, "/")
	for _, elem := range elems[:len(elems)-1] {
		if isIgnoredDir(elem) {
			return true
		}
	}
	return false
}
