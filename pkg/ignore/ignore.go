// Package ignore layers per-directory gitignore rule sets over a directory
// walk. Pattern matching itself is delegated to sabhiram/go-gitignore; this
// package owns per-line negation, last-match-wins ordering, and precedence
// across nested ignore files.
package ignore

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	gitignore "github.com/sabhiram/go-gitignore"
	"gitlab.com/tozd/go/errors"
)

const (
	// IgnoreFileName is the ignore file read in each directory.
	IgnoreFileName = ".gitignore"

	// gitDirName is always excluded, ignore files or not.
	gitDirName = ".git"
)

// rule is one pattern line. Each line compiles on its own so a negated line
// can report a match in its own right; the set-level matcher swallows that
// signal for negations.
type rule struct {
	negate  bool
	matcher *gitignore.GitIgnore
}

// 📋 RuleSet is the compiled ignore rules defined by a single directory.
type RuleSet struct {
	Dir   string // directory containing the ignore file (absolute)
	rules []rule
}

// 🏭 CompileRuleSet loads and compiles dir/.gitignore. Returns (nil, nil)
// when the directory has no ignore file. Malformed pattern lines are skipped
// with a warning rather than failing the whole set.
func CompileRuleSet(ctx context.Context, dir string) (*RuleSet, error) {
	path := filepath.Join(dir, IgnoreFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Errorf("reading ignore file %s: %w", path, err)
	}

	rs := &RuleSet{Dir: dir}
	for i, line := range strings.Split(string(data), "\n") {
		pattern := strings.TrimSpace(line)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}
		if !validPatternLine(pattern) {
			zerolog.Ctx(ctx).Warn().
				Str("file", path).
				Int("line", i+1).
				Str("pattern", line).
				Msg("skipping malformed ignore pattern")
			continue
		}

		negate := strings.HasPrefix(pattern, "!")
		if negate {
			pattern = strings.TrimPrefix(pattern, "!")
		}
		rs.rules = append(rs.rules, rule{
			negate:  negate,
			matcher: gitignore.CompileIgnoreLines(pattern),
		})
	}
	return rs, nil
}

// validPatternLine reports whether a trimmed ignore-file line is usable.
// A line is rejected only when its glob syntax is broken, e.g. an unclosed
// character class.
func validPatternLine(pattern string) bool {
	pattern = strings.TrimPrefix(pattern, "!")
	pattern = strings.TrimSuffix(pattern, "/")
	for _, segment := range strings.Split(pattern, "/") {
		if _, err := filepath.Match(segment, "probe"); err != nil {
			return false
		}
	}
	return true
}

// 🥞 Stack is the ordered collection of rule sets active at a point in the
// walk, outermost directory first. It mirrors the walk: a directory's set is
// pushed on descent and popped when its subtree completes. Not safe for
// concurrent use; the walker owns it.
type Stack struct {
	sets []*RuleSet
}

// NewStack returns an empty rule-set stack.
func NewStack() *Stack {
	return &Stack{}
}

// Push adds a rule set for a newly entered directory. Nil sets are dropped so
// callers can push the result of CompileRuleSet unconditionally; the return
// value reports whether a matching Pop is owed.
func (s *Stack) Push(rs *RuleSet) bool {
	if rs == nil {
		return false
	}
	s.sets = append(s.sets, rs)
	return true
}

// Pop removes the most recently pushed rule set.
func (s *Stack) Pop() {
	if len(s.sets) == 0 {
		return
	}
	s.sets = s.sets[:len(s.sets)-1]
}

// Len returns the number of active rule sets.
func (s *Stack) Len() int {
	return len(s.sets)
}

// 🔍 Excluded decides whether path is ignored under the active rule sets.
// Paths are matched relative to each set's defining directory. Deeper sets
// are consulted after ancestor sets, so the last set containing any matching
// rule wins, including negation rules, which re-include the path.
//
// The version-control metadata directory is excluded unconditionally, even in
// trees with no ignore files at all.
func (s *Stack) Excluded(path string, isDir bool) bool {
	if filepath.Base(path) == gitDirName {
		return true
	}

	excluded := false
	for _, rs := range s.sets {
		rel, err := filepath.Rel(rs.Dir, path)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		rel = filepath.ToSlash(rel)

		if matched, decided := rs.match(rel, isDir); decided {
			excluded = matched
		}
	}
	return excluded
}

// match evaluates one rule set against a slash-separated relative path.
// The lines are scanned bottom-up and the first matching line decides, which
// is exactly last-match-wins in file order. The second return distinguishes
// negation from "no rule in this set has an opinion".
func (rs *RuleSet) match(rel string, isDir bool) (matched, decided bool) {
	for i := len(rs.rules) - 1; i >= 0; i-- {
		r := rs.rules[i]
		// Directory-only patterns (trailing separator) only apply when the
		// probe path carries the separator, so directories probe both forms.
		if isDir && r.matcher.MatchesPath(rel+"/") {
			return !r.negate, true
		}
		if r.matcher.MatchesPath(rel) {
			return !r.negate, true
		}
	}
	return false, false
}
