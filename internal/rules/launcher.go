package rules

import "github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"

// PolyMC advises leaving the PolyMC launcher. It only looks at the
// environment, never at the log text.
var PolyMC = define("polymc",
	"The log was produced by the outdated PolyMC launcher",
	polyMC)

func polyMC(_ string, env *check.Environment) (*check.Report, error) {
	if env == nil || env.Launcher != check.LauncherPolyMC {
		return nil, nil
	}
	return &check.Report{
		Title:       "PolyMC Detected",
		Description: "PolyMC is an outdated launcher. Consider switching to [Prism Launcher](https://prismlauncher.org/), a fork with more features and better support.",
		Severity:    check.Medium,
	}, nil
}
