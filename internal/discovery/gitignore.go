package discovery

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/testing-tools/adapter/internal/fsio"
)

// ignoreRule is a single parsed .gitignore line. This is a lightweight
// approximation covering the common cases (comments, negation with '!',
// trailing '/' for directory-only rules, leading '/' anchoring, basename
// matching for slash-free patterns, path.Match globbing). It is not a full
// .gitignore implementation, but adequate for typical setups.
type ignoreRule struct {
	pattern  string
	negative bool
	anchored bool
	dirOnly  bool
	hasSlash bool
}

// ignoreRules holds the rules of one .gitignore file, anchored at root.
type ignoreRules struct {
	root  string
	rules []ignoreRule
}

// nearestRepoRoot returns the closest ancestor directory containing a .git
// directory, or start itself when none exists.
func nearestRepoRoot(start string) string {
	d := start
	for {
		if fi, err := os.Stat(filepath.Join(d, ".git")); err == nil && fi.IsDir() {
			return d
		}
		parent := filepath.Dir(d)
		if parent == d {
			return start
		}
		d = parent
	}
}

// loadIgnoreFile parses the .gitignore at base. A missing file yields nil.
func loadIgnoreFile(base string) (*ignoreRules, error) {
	p := filepath.Join(base, ".gitignore")
	f, err := os.Open(p)
	if err != nil {
		return nil, nil
	}
	defer fsio.SafeClose(f, p)

	var rules []ignoreRule
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		r := ignoreRule{}
		if strings.HasPrefix(line, "!") {
			r.negative = true
			line = strings.TrimSpace(line[1:])
		}
		if strings.HasSuffix(line, "/") {
			r.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		if strings.HasPrefix(line, "/") {
			r.anchored = true
			line = strings.TrimPrefix(line, "/")
		}
		if line == "" {
			continue
		}
		r.pattern = line
		r.hasSlash = strings.Contains(line, "/")
		rules = append(rules, r)
	}
	// Scanner errors are non-critical here.
	return &ignoreRules{root: base, rules: rules}, nil
}

// match applies the rules to a path relative to the repo root. Later rules
// override earlier ones, which is how negation works.
func (g *ignoreRules) match(rel string, isDir bool) bool {
	if g == nil {
		return false
	}
	rel = strings.ReplaceAll(rel, string(os.PathSeparator), "/")
	matched := false
	for _, r := range g.rules {
		if r.dirOnly && !isDir {
			continue
		}
		if r.applies(rel, isDir) {
			matched = !r.negative
		}
	}
	return matched
}

// applies reports whether the rule's pattern matches rel.
func (r ignoreRule) applies(rel string, isDir bool) bool {
	if r.anchored {
		return matchSegment(r.pattern, rel)
	}
	if !r.hasSlash {
		base := path.Base(rel)
		if matchSegment(r.pattern, base) {
			return true
		}
		return isDir && r.pattern == base
	}
	// Slash-bearing but unanchored: allow a match starting at any segment.
	if matchSegment(r.pattern, rel) {
		return true
	}
	for i := 0; i < len(rel); i++ {
		if rel[i] == '/' && i+1 < len(rel) {
			if matchSegment(r.pattern, rel[i+1:]) {
				return true
			}
		}
	}
	return false
}

func matchSegment(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	if err != nil {
		// Invalid pattern: fall back to literal comparison.
		return pattern == name
	}
	return ok
}
