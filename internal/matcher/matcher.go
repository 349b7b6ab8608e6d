// Package matcher runs a rule's alternative regular expressions against a log.
//
// A rule may describe one failure with several wordings (different loader or
// library versions print different messages). The alternatives are tried in
// declared order and the first one that matches wins; callers get back a single
// optional Match and never learn which alternative produced it.
package matcher

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrMissingGroup is wrapped by CaptureError.
var ErrMissingGroup = errors.New("capture group missing from match")

// CaptureError reports that a pattern matched but a capture group the rule
// expected did not participate. It always indicates a badly written pattern.
type CaptureError struct {
	Pattern string
	Group   int
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("pattern %q: group %d: %v", e.Pattern, e.Group, ErrMissingGroup)
}

// Unwrap returns ErrMissingGroup so errors.Is works.
func (e *CaptureError) Unwrap() error {
	return ErrMissingGroup
}

// Matcher is an ordered set of alternative patterns.
// A Matcher is immutable and safe for concurrent use.
type Matcher struct {
	alternatives []*regexp.Regexp
}

// Compile compiles patterns, in order, into a Matcher.
func Compile(patterns ...string) (*Matcher, error) {
	if len(patterns) == 0 {
		return nil, errors.New("at least one pattern is required")
	}
	m := &Matcher{alternatives: make([]*regexp.Regexp, 0, len(patterns))}
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern[%d]: %w", i, err)
		}
		m.alternatives = append(m.alternatives, re)
	}
	return m, nil
}

// MustCompile is like Compile but panics on error. It is meant for
// package-level rule variables.
func MustCompile(patterns ...string) *Matcher {
	m, err := Compile(patterns...)
	if err != nil {
		panic("matcher: " + err.Error())
	}
	return m
}

// Find returns the match of the first alternative that matches text, or nil.
func (m *Matcher) Find(text string) *Match {
	for _, re := range m.alternatives {
		if loc := re.FindStringSubmatchIndex(text); loc != nil {
			return &Match{text: text, re: re, loc: loc}
		}
	}
	return nil
}

// MatchString reports whether any alternative matches text.
func (m *Matcher) MatchString(text string) bool {
	for _, re := range m.alternatives {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// NumSubexp returns the smallest number of capture groups among the
// alternatives: the highest group index every alternative can provide.
func (m *Matcher) NumSubexp() int {
	n := -1
	for _, re := range m.alternatives {
		if n < 0 || re.NumSubexp() < n {
			n = re.NumSubexp()
		}
	}
	return n
}

// Patterns returns the source of each alternative in declared order.
func (m *Matcher) Patterns() []string {
	out := make([]string, len(m.alternatives))
	for i, re := range m.alternatives {
		out[i] = re.String()
	}
	return out
}

// Match holds the captures of a successful Find.
type Match struct {
	text string
	re   *regexp.Regexp
	loc  []int
}

// Group returns capture group i (1-indexed). Group 0 is the whole match.
// A group outside the pattern, or one that did not take part in the match,
// is reported as a *CaptureError.
func (m *Match) Group(i int) (string, error) {
	if i < 0 || 2*i+1 >= len(m.loc) || m.loc[2*i] < 0 {
		return "", &CaptureError{Pattern: m.re.String(), Group: i}
	}
	return m.text[m.loc[2*i]:m.loc[2*i+1]], nil
}

// Groups returns the requested groups in order, or the first CaptureError.
func (m *Match) Groups(indices ...int) ([]string, error) {
	out := make([]string, len(indices))
	for j, i := range indices {
		g, err := m.Group(i)
		if err != nil {
			return nil, err
		}
		out[j] = g
	}
	return out, nil
}
