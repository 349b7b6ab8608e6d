package logdoctor

import (
	"github.com/logdoctor/logdoctor-go/internal/environment"
	"github.com/logdoctor/logdoctor-go/internal/rules"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
)

// Type aliases so most callers only import this package.
type (
	Report      = check.Report
	Severity    = check.Severity
	Environment = check.Environment
	Rule        = check.Rule
	CheckFunc   = check.CheckFunc
)

const (
	None   = check.None
	Medium = check.Medium
	High   = check.High
)

// NewRule adapts fn to a Rule called name.
func NewRule(name string, fn CheckFunc) Rule {
	return check.NewRule(name, fn)
}

// NewEnvironment detects the launcher, installed mods and versions from log.
// The result is never nil and its KnownMods map is never nil.
func NewEnvironment(log string) *Environment {
	return environment.Detect(normalize(log))
}

// BuiltinRules returns the builtin catalogue in evaluation order.
func BuiltinRules() []Rule {
	return rules.All()
}

// MaxSeverity returns the highest severity among reports.
func MaxSeverity(reports []Report) Severity {
	return check.MaxSeverity(reports)
}
