package rules

import (
	"fmt"

	"github.com/logdoctor/logdoctor-go/internal/matcher"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
)

// Fabric Loader phrases a missing dependency differently depending on the
// version range the dependent declared. Some builds omit the dependent's
// version after its id.
// Captures: (1) dependent mod name, (2) dependency name
var missingDependencyPattern = matcher.MustCompile(
	`Mod '(.+)' \(\S+\)(?: \S+)? requires any version between \S+ and \S+ of (.+), which is missing!`,
	`Mod '(.+)' \(\S+\)(?: \S+)? requires version \S+ or later of (.+), which is missing!`,
	`Mod '(.+)' \(\S+\)(?: \S+)? requires any version of (.+), which is missing!`,
)

// MissingDependency reports a mod whose required dependency is not installed.
var MissingDependency = define("missing-dependency",
	"A mod requires another mod that is not installed",
	missingDependency)

func missingDependency(log string, _ *check.Environment) (*check.Report, error) {
	m := missingDependencyPattern.Find(log)
	if m == nil {
		return nil, nil
	}
	g, err := m.Groups(1, 2)
	if err != nil {
		return nil, err
	}
	dependent, dependency := g[0], g[1]

	return &check.Report{
		Title:       "Missing dependency",
		Description: fmt.Sprintf("The `%s` mod needs `%s` to be installed, but it is missing.", dependent, dependency),
		Severity:    check.High,
	}, nil
}
