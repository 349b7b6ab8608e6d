package pattern

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"

	"github.com/logdoctor/logdoctor-go/internal/matcher"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
)

// placeholderPattern matches a capture reference in a title or description.
// Matches: "${1}", "${12}"
// Captures: (1) group number
var placeholderPattern = regexp.MustCompile(`\$\{([0-9]+)\}`)

// Rule is a compiled RuleSpec. It implements check.Rule and is safe for
// concurrent use.
type Rule struct {
	id          string
	title       string
	summary     string
	description string
	severity    check.Severity
	matcher     *matcher.Matcher // nil for environment-only rules
	groups      []int            // referenced capture groups, ascending
	mods        []check.ModID
}

// Compile turns every rule of rf into a check.Rule, in file order. It rejects
// invalid regular expressions and capture references that an alternative
// cannot satisfy.
//
// Example:
//
//	rf, err := pattern.Load("rules.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rules, err := pattern.Compile(rf)
func Compile(rf *RuleFile) ([]check.Rule, error) {
	if rf == nil {
		return nil, fmt.Errorf("rule file is nil")
	}

	out := make([]check.Rule, 0, len(rf.Rules))
	for i, spec := range rf.Rules {
		r, err := compileRule(i, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func compileRule(i int, spec RuleSpec) (*Rule, error) {
	sev, err := check.ParseSeverity(spec.Severity)
	if err != nil {
		return nil, &RuleError{Index: i, ID: spec.ID, Field: "severity", Message: err.Error(), Cause: err}
	}

	r := &Rule{
		id:          spec.ID,
		title:       spec.Title,
		summary:     spec.Summary,
		description: spec.Description,
		severity:    sev,
		groups:      referencedGroups(spec.Title + "\n" + spec.Description),
	}
	for _, id := range spec.RequiresMods {
		r.mods = append(r.mods, check.NewModID(id))
	}

	if len(spec.Patterns) == 0 {
		if len(r.groups) > 0 {
			return nil, &RuleError{
				Index:   i,
				ID:      spec.ID,
				Field:   "description",
				Message: "capture references need at least one pattern",
			}
		}
		return r, nil
	}

	m, err := matcher.Compile(spec.Patterns...)
	if err != nil {
		return nil, &RuleError{
			Index:   i,
			ID:      spec.ID,
			Field:   "patterns",
			Message: fmt.Sprintf("invalid regular expression: %v", err),
			Cause:   err,
		}
	}
	if n := len(r.groups); n > 0 {
		if highest := r.groups[n-1]; highest > m.NumSubexp() {
			return nil, &RuleError{
				Index:   i,
				ID:      spec.ID,
				Field:   "description",
				Message: fmt.Sprintf("references ${%d} but an alternative has only %d capture groups", highest, m.NumSubexp()),
			}
		}
	}
	r.matcher = m
	return r, nil
}

// referencedGroups returns the distinct group numbers referenced in s,
// ascending. ${0} (the whole match) is allowed.
func referencedGroups(s string) []int {
	seen := make(map[int]bool)
	var groups []int
	for _, m := range placeholderPattern.FindAllStringSubmatch(s, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		groups = append(groups, n)
	}
	slices.Sort(groups)
	return groups
}

// Name implements check.Rule.
func (r *Rule) Name() string { return r.id }

// Summary returns the rule's summary, or its title if none was given.
func (r *Rule) Summary() string {
	if r.summary != "" {
		return r.summary
	}
	return r.title
}

// Check implements check.Rule.
func (r *Rule) Check(log string, env *check.Environment) (*check.Report, error) {
	for _, id := range r.mods {
		if !env.HasMod(id) {
			return nil, nil
		}
	}

	if r.matcher == nil {
		return &check.Report{Title: r.title, Description: r.description, Severity: r.severity}, nil
	}

	m := r.matcher.Find(log)
	if m == nil {
		return nil, nil
	}
	values := make(map[string]string, len(r.groups))
	for _, g := range r.groups {
		v, err := m.Group(g)
		if err != nil {
			return nil, err
		}
		values[strconv.Itoa(g)] = v
	}

	expand := func(s string) string {
		return placeholderPattern.ReplaceAllStringFunc(s, func(ref string) string {
			return values[placeholderPattern.FindStringSubmatch(ref)[1]]
		})
	}
	return &check.Report{
		Title:       expand(r.title),
		Description: expand(r.description),
		Severity:    r.severity,
	}, nil
}

// LoadRules loads, validates and compiles each rule file in turn. Paths may
// be doublestar globs. Rules keep file order, then in-file order.
func LoadRules(paths ...string) ([]check.Rule, error) {
	files, err := ExpandGlobs(paths...)
	if err != nil {
		return nil, err
	}

	var all []check.Rule
	for _, path := range files {
		rf, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		rules, err := Compile(rf)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		all = append(all, rules...)
	}
	return all, nil
}
