package fs

import (
	"path/filepath"
	"strings"
)

// ignoreRule is one configured pattern. Rules containing '/' match the path
// relative to the walk root; all others match the base name only.
type ignoreRule struct {
	glob     string
	fullPath bool
}

// IgnoreMatcher decides which files a walk leaves out. Ignored files are
// neither counted nor copied.
type IgnoreMatcher struct {
	rules []ignoreRule
}

// NewIgnoreMatcher builds a matcher from configured patterns.
// Blank entries and entries starting with '#' are dropped, as are patterns
// filepath.Match rejects.
func NewIgnoreMatcher(patterns []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		if _, err := filepath.Match(p, ""); err != nil {
			continue
		}
		m.rules = append(m.rules, ignoreRule{glob: p, fullPath: strings.Contains(p, "/")})
	}
	return m
}

// Len returns the number of usable rules.
func (m *IgnoreMatcher) Len() int {
	return len(m.rules)
}

// Match reports whether rel, a path relative to the walk root, is ignored.
func (m *IgnoreMatcher) Match(rel string) bool {
	if len(m.rules) == 0 {
		return false
	}
	slashed := filepath.ToSlash(rel)
	base := filepath.Base(rel)
	for _, r := range m.rules {
		subject := base
		if r.fullPath {
			subject = slashed
		}
		if ok, _ := filepath.Match(r.glob, subject); ok {
			return true
		}
	}
	return false
}
