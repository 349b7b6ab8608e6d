package rules

import (
	"fmt"

	"github.com/blang/semver/v4"
	"github.com/logdoctor/logdoctor-go/internal/matcher"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
)

var noSuchFieldPattern = matcher.MustCompile(`java\.lang\.NoSuchFieldError`)

// fieldStrippingFixed is the first Fabric Loader release that strips
// client-only fields correctly on the logical server.
var fieldStrippingFixed = semver.MustParse("0.15.0")

const missingFieldDescription = "On the logical server some fields may be deleted by Fabric Loader when a mod defines them as client-only. Since this feature was broken before loader `0.15`, some mods may have implemented it incorrectly. See if there's an update for the mod in question, or try downgrading Fabric Loader."

// MissingField reports a NoSuchFieldError, typically a client-only field
// stripped on a server.
var MissingField = define("missing-field",
	"A field was missing at runtime, often client-only code on a server",
	missingField)

func missingField(log string, env *check.Environment) (*check.Report, error) {
	if !noSuchFieldPattern.MatchString(log) {
		return nil, nil
	}

	description := missingFieldDescription
	if env != nil && env.Loader != "" && env.LoaderVersion != "" {
		loader := check.ModMetadata{Version: env.LoaderVersion}
		v, ok := loader.SemVer()
		// The threshold only applies to Fabric Loader's own release line.
		if env.Loader == check.LoaderFabric && ok && v.LT(fieldStrippingFixed) {
			description += fmt.Sprintf(" This log was produced by Fabric Loader `%s`, which predates the fix.", env.LoaderVersion)
		} else {
			description += fmt.Sprintf(" This log was produced by %s Loader `%s`.", env.Loader, env.LoaderVersion)
		}
	}

	return &check.Report{
		Title:       "Field missing error",
		Description: description,
		Severity:    check.High,
	}, nil
}
