package partialjson

import "strings"

// JoinPath joins a JSON path slice into a dot-separated string.
// Array indices like "[0]" are appended without a dot.
func JoinPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		if i > 0 && !strings.HasPrefix(part, "[") {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

// PathSet is a set of joined JSON paths for fast lookup.
type PathSet map[string]struct{}

// NewPathSet builds a PathSet from parser incomplete paths.
func NewPathSet(paths [][]string) PathSet {
	set := make(PathSet, len(paths))
	for _, path := range paths {
		set[JoinPath(path)] = struct{}{}
	}
	return set
}

// Covers reports whether jsonPath or any of its parents is in the set.
// If "user" is incomplete, "user.name" is too.
func (s PathSet) Covers(jsonPath string) bool {
	if _, ok := s[jsonPath]; ok {
		return true
	}
	for i := len(jsonPath) - 1; i > 0; i-- {
		if jsonPath[i] == '.' || jsonPath[i] == '[' {
			if _, ok := s[jsonPath[:i]]; ok {
				return true
			}
		}
	}
	return false
}
