// Package logdoctor diagnoses Minecraft and mod loader logs.
//
// A [Diagnoser] runs a catalogue of independent rules over the full text of a
// log or crash report. Every rule runs exactly once and each one that
// recognizes its failure signature contributes a [Report]. Reports come back
// in catalogue order; overlapping reports are all kept.
//
// # Basic Usage
//
// To diagnose a log with the builtin catalogue:
//
//	reports := logdoctor.Diagnose(text)
//	for _, r := range reports {
//	    fmt.Printf("[%s] %s\n%s\n", r.Severity, r.Title, r.Description)
//	}
//
// The environment (launcher, installed mods, loader version) is detected from
// the same text. Callers that already know the installed mods can build the
// environment themselves:
//
//	env := logdoctor.NewEnvironment(text)
//	env.KnownMods[check.NewModID("bclib")] = check.ModMetadata{ID: "bclib"}
//	reports := d.Diagnose(text, env)
//
// # Custom Rules
//
// Rules implement [Rule]. Plain functions can be adapted with [NewRule]:
//
//	noisy := logdoctor.NewRule("noisy-mod", func(text string, env *logdoctor.Environment) (*logdoctor.Report, error) {
//	    if !strings.Contains(text, "[NoisyMod]") {
//	        return nil, nil
//	    }
//	    return &logdoctor.Report{Title: "NoisyMod installed", Severity: logdoctor.Medium}, nil
//	})
//
//	d, err := logdoctor.New(logdoctor.WithExtraRules(noisy))
//
// Rules can also be written as YAML files, see package pattern.
//
// # Defects
//
// A rule that returns an error or panics is a defect in that rule. The
// Diagnoser logs it, tells the [Observer] and carries on with the remaining
// rules; the faulty rule contributes nothing to that run.
package logdoctor
