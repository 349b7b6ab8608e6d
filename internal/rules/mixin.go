package rules

import (
	"fmt"

	"github.com/logdoctor/logdoctor-go/internal/matcher"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
)

var (
	// Injector or accessor that found no target.
	// Captures: (1) mixin name, (2) mod id
	mixinTargetPattern = matcher.MustCompile(
		`InvalidInjectionException: Critical injection failure: @Inject annotation on \S+ could not find any targets matching '.+' in \S+\. Using refmap \S+ \[PREINJECT Applicator Phase \-> \S+:(\w+) from mod (\w+)`,
		`InvalidAccessorException: No candidates were found matching \S+ in \S+ for \S+:(\w+) from mod (\w+)`,
	)

	// Captures: (1) mod id
	mixinApplyPattern = matcher.MustCompile(
		`MixinApplyError: Mixin \[\S+\.mixins\.json:\S+ from mod (\S+)\] from phase \[\S+\] in config \[\S+\.mixins\.json\] FAILED during \S+`,
	)

	// Captures: (1) mod id
	entrypointPattern = matcher.MustCompile(
		`RuntimeException: Could not execute entrypoint stage '\S+' due to errors, provided by '(\S+)'!`,
	)
)

// MixinFailure reports mixin and entrypoint failures. The symptoms are checked
// in order and only the first one found is reported.
var MixinFailure = define("mixin-failure",
	"A mod's mixin or entrypoint failed, usually a version mismatch",
	mixinFailure)

func mixinFailure(log string, _ *check.Environment) (*check.Report, error) {
	if m := mixinTargetPattern.Find(log); m != nil {
		g, err := m.Groups(1, 2)
		if err != nil {
			return nil, err
		}
		mixin, modID := g[0], g[1]
		return &check.Report{
			Title: "Mixin inject failed",
			Description: fmt.Sprintf("Mixin `%s` from mod `%s` has failed. It is possible that `%s` is not compatible with this Minecraft version, consider double-checking its version.",
				mixin, modID, modID),
			Severity: check.High,
		}, nil
	}

	if m := mixinApplyPattern.Find(log); m != nil {
		modID, err := m.Group(1)
		if err != nil {
			return nil, err
		}
		return &check.Report{
			Title: "Mixin error",
			Description: fmt.Sprintf("The mod `%s` has encountered a mixin error, this may be caused by a mismatch in Minecraft version or a mod incompatibility. Further investigation is required.",
				modID),
			Severity: check.High,
		}, nil
	}

	if m := entrypointPattern.Find(log); m != nil {
		modID, err := m.Group(1)
		if err != nil {
			return nil, err
		}
		return &check.Report{
			Title: "Entrypoint error",
			Description: fmt.Sprintf("The mod `%s` has encountered an error in its entrypoint, though it may not have caused it. Further investigation is required.",
				modID),
			Severity: check.High,
		}, nil
	}

	return nil, nil
}
