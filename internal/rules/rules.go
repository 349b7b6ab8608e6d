// Package rules holds the builtin diagnostic rule catalogue.
//
// Each rule recognizes one known failure signature in a Minecraft or mod loader
// log. Rules are independent: every rule runs for every log and none of them
// can hide or reorder another's report.
package rules

import "github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"

// Definition is a builtin rule: a name, a one-line summary for listings and
// the check body.
type Definition struct {
	name    string
	summary string
	check   check.CheckFunc
}

func define(name, summary string, fn check.CheckFunc) Definition {
	return Definition{name: name, summary: summary, check: fn}
}

// Name implements check.Rule.
func (d Definition) Name() string { return d.name }

// Summary describes what the rule looks for.
func (d Definition) Summary() string { return d.summary }

// Check implements check.Rule.
func (d Definition) Check(log string, env *check.Environment) (*check.Report, error) {
	return d.check(log, env)
}

// All returns the builtin catalogue in evaluation order. The order is the
// order reports appear in; it is not a priority.
func All() []check.Rule {
	return []check.Rule{
		CrashReport,
		MissingDependency,
		MixinFailure,
		JavaVersion,
		MissingField,
		PolyMC,
		OptiFabric,
		BCLib,
		Indium,
	}
}

// Names returns the names of All, in order.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, r := range all {
		names[i] = r.Name()
	}
	return names
}
