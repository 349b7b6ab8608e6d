// Package pattern loads diagnostic rules from YAML files so that new failure
// signatures can be added without rebuilding.
//
// Rules from a file run after the builtin catalogue, in file order, and follow
// the same contract: a rule either produces one report or nothing.
package pattern

// RuleFile is the structure of a YAML rule file.
//
// Example YAML file:
//
//	version: 1
//	rules:
//	  - id: sodium-incompatible
//	    title: Incompatible with Sodium
//	    severity: high
//	    description: The mod `${1}` does not work together with Sodium.
//	    patterns:
//	      - "Mod '(.+)' \\(\\S+\\) \\S+ is incompatible with any version of mod 'Sodium'"
//	  - id: lithium-installed
//	    title: Lithium installed
//	    severity: none
//	    description: Lithium is installed.
//	    requires_mods: [lithium]
type RuleFile struct {
	// Version is the rule file format version. Currently only version 1 is supported.
	Version int `yaml:"version"`

	// Rules is the list of rule definitions, in evaluation order.
	Rules []RuleSpec `yaml:"rules"`
}

// RuleSpec defines one rule.
//
// A rule fires when any of its Patterns matches (the first alternative that
// matches supplies the captures) and every mod in RequiresMods is installed.
// At least one of the two must be given.
//
// Title and Description may reference capture groups of the matching
// alternative as ${1}, ${2}, ... Every alternative must have at least as many
// groups as the highest reference.
type RuleSpec struct {
	ID           string   `yaml:"id"`
	Title        string   `yaml:"title"`
	Summary      string   `yaml:"summary,omitempty"`
	Description  string   `yaml:"description"`
	Severity     string   `yaml:"severity"`
	Patterns     []string `yaml:"patterns,omitempty"`
	RequiresMods []string `yaml:"requires_mods,omitempty"`
}
