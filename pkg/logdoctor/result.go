package logdoctor

import "github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"

// Result pairs one diagnosed source with its reports, in the shape used by
// the CLI's JSON output and the HTTP service.
type Result struct {
	Source           string         `json:"source"`
	Digest           string         `json:"digest,omitempty"`
	Launcher         check.Launcher `json:"launcher"`
	MinecraftVersion string         `json:"minecraft_version,omitempty"`
	Loader           string         `json:"loader,omitempty"`
	LoaderVersion    string         `json:"loader_version,omitempty"`
	Severity         Severity       `json:"severity"`
	Color            string         `json:"color"`
	Reports          []Report       `json:"reports"`
}

// NewResult summarizes reports produced for source. Severity and Color
// describe the highest severity present.
func NewResult(source, digest string, env *Environment, reports []Report) Result {
	if reports == nil {
		reports = []Report{}
	}
	sev := MaxSeverity(reports)
	r := Result{
		Source:   source,
		Digest:   digest,
		Severity: sev,
		Color:    sev.Hex(),
		Reports:  reports,
	}
	if env != nil {
		r.Launcher = env.Launcher
		r.MinecraftVersion = env.MinecraftVersion
		r.Loader = env.Loader
		r.LoaderVersion = env.LoaderVersion
	}
	return r
}
