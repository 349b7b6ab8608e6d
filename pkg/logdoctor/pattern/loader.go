package pattern

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/logdoctor/logdoctor-go/internal/safefile"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
	"gopkg.in/yaml.v3"
)

const (
	// MaxRuleFileSize is the maximum allowed size for a rule file (1MB).
	MaxRuleFileSize = 1 * 1024 * 1024

	// MaxPatternLength is the maximum length of one regular expression.
	MaxPatternLength = 512

	// MaxRuleCount is the maximum number of rules in one file.
	MaxRuleCount = 1000

	// SupportedVersion is the currently supported rule file format version.
	SupportedVersion = 1
)

// Load reads and validates a rule file. Errors never contain the path.
//
// Example:
//
//	rf, err := pattern.Load("rules.yaml")
//	if err != nil {
//	    log.Fatalf("failed to load rule file: %v", err)
//	}
func Load(path string) (*RuleFile, error) {
	data, err := safefile.ReadRegular(path, MaxRuleFileSize)
	if err != nil {
		if errors.Is(err, safefile.ErrTooLarge) {
			return nil, fmt.Errorf("rule file too large (max %d bytes)", MaxRuleFileSize)
		}
		return nil, fmt.Errorf("failed to read rule file: %w", safefile.SanitizePathError(err))
	}
	return LoadBytes(data)
}

// LoadBytes parses and validates a rule file held in memory.
func LoadBytes(data []byte) (*RuleFile, error) {
	if len(data) == 0 {
		return nil, errors.New("rule file is empty")
	}
	if len(data) > MaxRuleFileSize {
		return nil, fmt.Errorf("rule file too large: %d bytes (max %d)", len(data), MaxRuleFileSize)
	}

	var rf RuleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := rf.Validate(); err != nil {
		return nil, err
	}
	return &rf, nil
}

// ExpandGlobs resolves rule file arguments that may contain doublestar globs
// ("rules/**/*.yaml"). Plain paths are kept even if they do not exist so that
// Load reports them. The result is sorted within each glob and deduplicated.
func ExpandGlobs(args ...string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	for _, arg := range args {
		if !HasMeta(arg) {
			if !seen[arg] {
				seen[arg] = true
				paths = append(paths, arg)
			}
			continue
		}
		if !doublestar.ValidatePattern(arg) {
			return nil, fmt.Errorf("invalid rule file glob %q", arg)
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("rule file glob %q: %w", arg, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	return paths, nil
}

// HasMeta reports whether s contains glob metacharacters.
func HasMeta(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

// Validate performs schema-level validation. It does not compile regular
// expressions; Compile does.
func (rf *RuleFile) Validate() error {
	if rf.Version != SupportedVersion {
		return &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (only version %d is supported)", rf.Version, SupportedVersion),
		}
	}
	if len(rf.Rules) == 0 {
		return &ValidationError{
			Field:   "rules",
			Message: "at least one rule is required",
		}
	}
	if len(rf.Rules) > MaxRuleCount {
		return &ValidationError{
			Field:   "rules",
			Message: fmt.Sprintf("too many rules (%d), maximum allowed is %d", len(rf.Rules), MaxRuleCount),
		}
	}

	seenIDs := make(map[string]int, len(rf.Rules))
	for i, r := range rf.Rules {
		if r.ID == "" {
			return &RuleError{Index: i, Field: "id", Message: "id is required"}
		}
		if prev, exists := seenIDs[r.ID]; exists {
			return &RuleError{
				Index:   i,
				ID:      r.ID,
				Field:   "id",
				Message: fmt.Sprintf("duplicate id (previously defined at rule[%d])", prev),
			}
		}
		seenIDs[r.ID] = i

		if r.Title == "" {
			return &RuleError{Index: i, ID: r.ID, Field: "title", Message: "title is required"}
		}
		if r.Severity == "" {
			return &RuleError{Index: i, ID: r.ID, Field: "severity", Message: "severity is required"}
		}
		if _, err := check.ParseSeverity(r.Severity); err != nil {
			return &RuleError{Index: i, ID: r.ID, Field: "severity", Message: err.Error(), Cause: err}
		}
		if len(r.Patterns) == 0 && len(r.RequiresMods) == 0 {
			return &RuleError{
				Index:   i,
				ID:      r.ID,
				Field:   "patterns",
				Message: "patterns or requires_mods is required",
			}
		}
		for j, p := range r.Patterns {
			if p == "" {
				return &RuleError{Index: i, ID: r.ID, Field: fmt.Sprintf("patterns[%d]", j), Message: "pattern is empty"}
			}
			if len(p) > MaxPatternLength {
				return &RuleError{
					Index:   i,
					ID:      r.ID,
					Field:   fmt.Sprintf("patterns[%d]", j),
					Message: fmt.Sprintf("pattern too long: %d bytes (max %d)", len(p), MaxPatternLength),
				}
			}
		}
		for j, id := range r.RequiresMods {
			if check.NewModID(id) == "" {
				return &RuleError{Index: i, ID: r.ID, Field: fmt.Sprintf("requires_mods[%d]", j), Message: "mod id is empty"}
			}
		}
	}
	return nil
}
