package check

// Rule recognizes one failure signature in a log.
//
// Check returns:
//   - (*Report, nil): the signature was found
//   - (nil, nil): no match (not an error)
//   - (nil, error): the rule's own pattern matched but an expected capture
//     group was absent; this is a defect in the rule, not in the log
//
// Implementations must be stateless and must not modify env.
type Rule interface {
	Name() string
	Check(log string, env *Environment) (*Report, error)
}

// CheckFunc is the signature of a rule body.
type CheckFunc func(log string, env *Environment) (*Report, error)

// NewRule wraps fn as a Rule called name.
func NewRule(name string, fn CheckFunc) Rule {
	return funcRule{name: name, fn: fn}
}

type funcRule struct {
	name string
	fn   CheckFunc
}

func (r funcRule) Name() string { return r.name }

func (r funcRule) Check(log string, env *Environment) (*Report, error) {
	return r.fn(log, env)
}

// Summarizer is implemented by rules that can describe what they look for in
// one line. Listings fall back to the name for rules that do not.
type Summarizer interface {
	Summary() string
}
