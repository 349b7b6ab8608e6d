package pattern

import "fmt"

// ValidationError represents a file-level validation error, such as an
// unsupported version or an empty rule list.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// RuleError represents an error in one rule of a file.
type RuleError struct {
	Index   int    // 0-based index of the rule in the file
	ID      string // may be empty if the id field is missing
	Field   string
	Message string
	Cause   error // underlying error, e.g. a regexp compile error
}

func (e *RuleError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("rule %q: %s: %s", e.ID, e.Field, e.Message)
	}
	return fmt.Sprintf("rule[%d]: %s: %s", e.Index, e.Field, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *RuleError) Unwrap() error {
	return e.Cause
}
