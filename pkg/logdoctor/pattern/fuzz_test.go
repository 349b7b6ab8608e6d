package pattern

import (
	"testing"

	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
)

// FuzzRule_Check runs compiled rules over arbitrary text to make sure a
// validated rule never panics and only fails with a capture error.
func FuzzRule_Check(f *testing.F) {
	rf := &RuleFile{
		Version: 1,
		Rules: []RuleSpec{
			{ID: "basic", Title: "Basic ${1}", Severity: "high", Patterns: []string{`Test: (\w+)`}},
			{ID: "two", Title: "T", Description: "${1}/${2}", Severity: "medium",
				Patterns: []string{`Mod '(.+)' requires (.+)!`, `(\w+) needs (\w+)`}},
			{ID: "optional", Title: "T", Description: "${1}", Severity: "none", Patterns: []string{`x(y)?`}},
		},
	}
	if err := rf.Validate(); err != nil {
		f.Fatalf("Validate() error = %v", err)
	}
	rules, err := Compile(rf)
	if err != nil {
		f.Fatalf("Compile() error = %v", err)
	}

	f.Add("Test: ABC123")
	f.Add("Mod 'Foo' requires Bar!")
	f.Add("a needs b")
	f.Add("")
	f.Add("x")
	f.Add(string([]byte{0xff, 0xfe, 0xfd}))
	f.Add("${1}${2}")

	env := &check.Environment{}
	f.Fuzz(func(t *testing.T, text string) {
		for _, r := range rules {
			rep, err := r.Check(text, env)
			if err != nil && rep != nil {
				t.Fatalf("%s: report returned together with error %v", r.Name(), err)
			}
			if err != nil && r.Name() != "optional" {
				t.Fatalf("%s: unexpected error %v", r.Name(), err)
			}
		}
	})
}
