package rules

import (
	"github.com/logdoctor/logdoctor-go/internal/matcher"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
)

// OptiFabric is also recognized from the text, for logs where the mod
// listing was never printed.
var optiFabricPattern = matcher.MustCompile(
	`Mod '.+' \(\S+\) \S+ is incompatible with any version of mod '.+' \(optifabric\)`,
	`me\.modmuss50\.optifabric`,
)

// OptiFabric reports OptiFine running on Fabric through OptiFabric.
var OptiFabric = define("optifabric",
	"OptiFine is loaded through OptiFabric",
	optiFabric)

func optiFabric(log string, env *check.Environment) (*check.Report, error) {
	if !env.HasMod("optifabric") && !optiFabricPattern.MatchString(log) {
		return nil, nil
	}
	return &check.Report{
		Title:       "OptiFabric detected",
		Description: "Optifine is known to cause problems with many mods on Fabric. If you're having strange issues or crashes, consider replacing it with some of the many available [alternatives](https://lambdaurora.dev/optifine_alternatives/).",
		Severity:    check.High,
	}, nil
}

// BCLib reports that BCLib is installed.
var BCLib = define("bclib",
	"BCLib is installed",
	bcLib)

func bcLib(_ string, env *check.Environment) (*check.Report, error) {
	if !env.HasMod("bclib") {
		return nil, nil
	}
	return &check.Report{
		Title:       "BCLib detected",
		Description: "BCLib is known to cause issues with some mods. If you're experiencing crashes or other problems, consider trying without it.",
		Severity:    check.Medium,
	}, nil
}

var nullRendererPattern = matcher.MustCompile(
	`because the return value of "net\.fabricmc\.fabric\.api\.renderer\.v1\.RendererAccess\.getRenderer\(\)" is null`,
)

// Indium reports a mod using the Fabric Rendering API with no renderer present.
var Indium = define("indium",
	"A mod needs the Fabric Rendering API but no renderer (Indium) is installed",
	indium)

func indium(log string, _ *check.Environment) (*check.Report, error) {
	if !nullRendererPattern.MatchString(log) {
		return nil, nil
	}
	return &check.Report{
		Title:       "Missing Indium",
		Description: "A mod is trying to make use of Fabric Rendering API, which may be missing when rendering mods such as Sodium are loaded. If you use Sodium, install [Indium](https://modrinth.com/mod/indium) to resolve this.",
		Severity:    check.High,
	}, nil
}
