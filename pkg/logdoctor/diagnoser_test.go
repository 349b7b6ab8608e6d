package logdoctor_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/logdoctor/logdoctor-go/pkg/logdoctor"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	missingDependencyLine = "Mod 'Foo' (foo) requires any version of Bar Lib, which is missing!"
	unsupportedClassLine  = "java.lang.UnsupportedClassVersionError: net/example/Mod has been compiled by a more recent version of the Java Runtime (class file version 61.0), this version of the Java Runtime only recognizes class file versions up to 52.0"
	optiFabricLine        = "\tat me.modmuss50.optifabric.mod.OptifineSetup.run(OptifineSetup.java:42)"
)

func envWithMods(ids ...string) *logdoctor.Environment {
	env := &logdoctor.Environment{KnownMods: map[check.ModID]check.ModMetadata{}}
	for _, id := range ids {
		env.KnownMods[check.ModID(id)] = check.ModMetadata{ID: check.ModID(id)}
	}
	return env
}

func TestDiagnose_Scenarios(t *testing.T) {
	t.Run("missing dependency", func(t *testing.T) {
		reports := logdoctor.Diagnose(missingDependencyLine)
		require.Len(t, reports, 1)
		assert.Equal(t, "Missing dependency", reports[0].Title)
		assert.Equal(t, logdoctor.High, reports[0].Severity)
		assert.Contains(t, reports[0].Description, "Foo")
		assert.Contains(t, reports[0].Description, "Bar Lib")
	})

	t.Run("unsupported class version", func(t *testing.T) {
		reports := logdoctor.Diagnose(unsupportedClassLine)
		require.Len(t, reports, 1)
		assert.Equal(t, "Incorrect Java version", reports[0].Title)
		assert.Contains(t, reports[0].Description, "Java 17")
		assert.Contains(t, reports[0].Description, "Java 8")
	})

	t.Run("nothing known", func(t *testing.T) {
		d, err := logdoctor.New()
		require.NoError(t, err)
		reports := d.Diagnose("[12:00:00] [main/INFO]: Loading for game Minecraft 1.20.1", envWithMods())
		assert.NotNil(t, reports)
		assert.Empty(t, reports)
	})

	t.Run("bclib regardless of text", func(t *testing.T) {
		d, err := logdoctor.New()
		require.NoError(t, err)
		for _, text := range []string{"", "hello", "bclib"} {
			reports := d.Diagnose(text, envWithMods("bclib"))
			require.Len(t, reports, 1, "text %q", text)
			assert.Equal(t, "BCLib detected", reports[0].Title)
			assert.Equal(t, logdoctor.Medium, reports[0].Severity)
		}
	})

	t.Run("independent reports in catalogue order", func(t *testing.T) {
		reports := logdoctor.Diagnose(optiFabricLine + "\n" + missingDependencyLine + "\n")
		require.Len(t, reports, 2)
		assert.Equal(t, "Missing dependency", reports[0].Title)
		assert.Equal(t, "OptiFabric detected", reports[1].Title)
	})
}

func TestDiagnose_DetectsEnvironment(t *testing.T) {
	log := "[12:00:00] [main/INFO]: PolyMC version: 1.4.4\n" +
		"[12:00:01] [main/INFO]: Loading 2 mods:\n" +
		"\t- bclib 2.3.3\n" +
		"\t- minecraft 1.19.2\n"

	reports := logdoctor.Diagnose(log)
	titles := make([]string, len(reports))
	for i, r := range reports {
		titles[i] = r.Title
	}
	assert.Equal(t, []string{"PolyMC Detected", "BCLib detected"}, titles)
}

func TestDiagnose_NormalizesCRLF(t *testing.T) {
	log := "---- Minecraft Crash Report ----\r\n" +
		"// Oops.\r\n" +
		"\r\n" +
		"Time: 2024-01-15 12:00:00\r\n" +
		"Description: Rendering overlay\r\n" +
		"\r\n" +
		"java.lang.IllegalStateException: boom\r\n"

	reports := logdoctor.Diagnose(log)
	require.Len(t, reports, 1)
	assert.Equal(t, "Crash report analysis", reports[0].Title)
	assert.NotContains(t, reports[0].Description, "\r")
}

func TestDiagnose_Idempotent(t *testing.T) {
	log := missingDependencyLine + "\n" + unsupportedClassLine + "\n" + optiFabricLine
	first := logdoctor.Diagnose(log)
	second := logdoctor.Diagnose(log)
	assert.Equal(t, first, second)
}

func TestDiagnose_OrderIsCatalogueOrder(t *testing.T) {
	var rules []logdoctor.Rule
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("rule-%02d", i)
		rules = append(rules, logdoctor.NewRule(name, func(string, *logdoctor.Environment) (*logdoctor.Report, error) {
			if i%3 == 0 {
				return nil, nil
			}
			return &logdoctor.Report{Title: name}, nil
		}))
	}

	var want []string
	for i := 0; i < 20; i++ {
		if i%3 != 0 {
			want = append(want, fmt.Sprintf("rule-%02d", i))
		}
	}

	for _, n := range []int{1, 4, 32} {
		t.Run(fmt.Sprintf("concurrency=%d", n), func(t *testing.T) {
			d, err := logdoctor.New(logdoctor.WithRules(rules...), logdoctor.WithConcurrency(n))
			require.NoError(t, err)
			var got []string
			for _, r := range d.Diagnose("", nil) {
				got = append(got, r.Title)
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestDiagnose_DefectIsolation(t *testing.T) {
	errBroken := errors.New("broken capture")
	rules := []logdoctor.Rule{
		logdoctor.NewRule("first", func(string, *logdoctor.Environment) (*logdoctor.Report, error) {
			return &logdoctor.Report{Title: "first"}, nil
		}),
		logdoctor.NewRule("errors", func(string, *logdoctor.Environment) (*logdoctor.Report, error) {
			return &logdoctor.Report{Title: "partial"}, errBroken
		}),
		logdoctor.NewRule("panics", func(string, *logdoctor.Environment) (*logdoctor.Report, error) {
			var m map[string]int
			m["x"]++
			return nil, nil
		}),
		logdoctor.NewRule("last", func(string, *logdoctor.Environment) (*logdoctor.Report, error) {
			return &logdoctor.Report{Title: "last"}, nil
		}),
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	obs := &recordingObserver{}

	d, err := logdoctor.New(
		logdoctor.WithRules(rules...),
		logdoctor.WithLogger(logger),
		logdoctor.WithObserver(obs),
	)
	require.NoError(t, err)

	reports := d.Diagnose("anything", nil)
	require.Len(t, reports, 2)
	assert.Equal(t, "first", reports[0].Title)
	assert.Equal(t, "last", reports[1].Title)

	out := buf.String()
	assert.Contains(t, out, "rule=errors")
	assert.Contains(t, out, "broken capture")
	assert.Contains(t, out, "rule=panics")

	assert.Equal(t, logdoctor.OutcomeDefect, obs.outcome("errors"))
	assert.Equal(t, logdoctor.OutcomeDefect, obs.outcome("panics"))
	assert.Equal(t, logdoctor.OutcomeMatched, obs.outcome("first"))
	assert.Equal(t, 1, obs.runs)
}

func TestDiagnose_ObserverNoMatch(t *testing.T) {
	obs := &recordingObserver{}
	d, err := logdoctor.New(logdoctor.WithObserver(obs), logdoctor.WithConcurrency(3))
	require.NoError(t, err)

	d.Diagnose("", nil)
	for _, name := range []string{"crash-report", "indium"} {
		assert.Equal(t, logdoctor.OutcomeNoMatch, obs.outcome(name))
	}
	assert.Len(t, obs.outcomes, len(logdoctor.BuiltinRules()))
}

func TestDiagnose_ReportsAreCopies(t *testing.T) {
	shared := &logdoctor.Report{Title: "shared"}
	d, err := logdoctor.New(logdoctor.WithRules(
		logdoctor.NewRule("shared", func(string, *logdoctor.Environment) (*logdoctor.Report, error) {
			return shared, nil
		}),
	))
	require.NoError(t, err)

	reports := d.Diagnose("", nil)
	reports[0].Title = "changed"
	assert.Equal(t, "shared", shared.Title)
}

func TestDefectError(t *testing.T) {
	inner := errors.New("group 2 missing")
	err := &logdoctor.DefectError{Rule: "r", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "rule r: group 2 missing", err.Error())

	p := &logdoctor.DefectError{Rule: "r", Panic: "boom"}
	assert.Equal(t, "rule r: panic: boom", p.Error())
	assert.Nil(t, errors.Unwrap(p))
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "no_match", logdoctor.OutcomeNoMatch.String())
	assert.Equal(t, "matched", logdoctor.OutcomeMatched.String())
	assert.Equal(t, "defect", logdoctor.OutcomeDefect.String())
}

func TestNew_Options(t *testing.T) {
	t.Run("disabled rules", func(t *testing.T) {
		d, err := logdoctor.New(logdoctor.WithDisabledRules("bclib", "polymc"))
		require.NoError(t, err)
		for _, r := range d.Rules() {
			assert.NotEqual(t, "bclib", r.Name())
			assert.NotEqual(t, "polymc", r.Name())
		}
		assert.Len(t, d.Rules(), len(logdoctor.BuiltinRules())-2)
		assert.Empty(t, d.Diagnose("", envWithMods("bclib")))
	})

	t.Run("unknown disabled rule", func(t *testing.T) {
		_, err := logdoctor.New(logdoctor.WithDisabledRules("no-such-rule"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no-such-rule")
	})

	t.Run("extra rules append", func(t *testing.T) {
		extra := logdoctor.NewRule("extra", func(string, *logdoctor.Environment) (*logdoctor.Report, error) {
			return nil, nil
		})
		d, err := logdoctor.New(logdoctor.WithExtraRules(extra))
		require.NoError(t, err)
		rules := d.Rules()
		assert.Equal(t, "extra", rules[len(rules)-1].Name())
		assert.Equal(t, "crash-report", rules[0].Name())
	})

	t.Run("duplicate names", func(t *testing.T) {
		dup := logdoctor.NewRule("bclib", func(string, *logdoctor.Environment) (*logdoctor.Report, error) {
			return nil, nil
		})
		_, err := logdoctor.New(logdoctor.WithExtraRules(dup))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `duplicate rule name "bclib"`)
	})

	t.Run("nil rule", func(t *testing.T) {
		_, err := logdoctor.New(logdoctor.WithRules(nil))
		assert.Error(t, err)
	})

	t.Run("bad concurrency", func(t *testing.T) {
		_, err := logdoctor.New(logdoctor.WithConcurrency(0))
		assert.Error(t, err)
	})

	t.Run("nil options are ignored", func(t *testing.T) {
		d, err := logdoctor.New(nil, logdoctor.WithObserver(nil))
		require.NoError(t, err)
		assert.Len(t, d.Rules(), len(logdoctor.BuiltinRules()))
	})

	t.Run("rules returns a copy", func(t *testing.T) {
		d, err := logdoctor.New()
		require.NoError(t, err)
		rules := d.Rules()
		rules[0] = nil
		assert.NotNil(t, d.Rules()[0])
	})
}

func TestDiagnoser_ConcurrentUse(t *testing.T) {
	d, err := logdoctor.New(logdoctor.WithConcurrency(4))
	require.NoError(t, err)

	texts := []string{missingDependencyLine, unsupportedClassLine, optiFabricLine, ""}
	want := make([][]logdoctor.Report, len(texts))
	for i, text := range texts {
		want[i] = d.Diagnose(text, nil)
	}

	var wg sync.WaitGroup
	for n := 0; n < 8; n++ {
		for i, text := range texts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.Equal(t, want[i], d.Diagnose(text, nil))
			}()
		}
	}
	wg.Wait()
}

func FuzzDiagnose(f *testing.F) {
	f.Add(missingDependencyLine)
	f.Add(unsupportedClassLine)
	f.Add("---- Minecraft Crash Report ----\n// x\n\nTime: t\nDescription: d\n\ne\n")
	f.Add("Loading 1 mods:\n\t- bclib 1.0\n")
	f.Add(strings.Repeat("\r\n", 10))

	f.Fuzz(func(t *testing.T, log string) {
		first := logdoctor.Diagnose(log)
		second := logdoctor.Diagnose(log)
		if len(first) != len(second) {
			t.Fatalf("non-deterministic: %d vs %d reports", len(first), len(second))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("report %d differs: %+v vs %+v", i, first[i], second[i])
			}
		}
	})
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[string]logdoctor.Outcome
	runs     int
}

func (o *recordingObserver) ObserveRule(rule string, outcome logdoctor.Outcome, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = make(map[string]logdoctor.Outcome)
	}
	o.outcomes[rule] = outcome
}

func (o *recordingObserver) ObserveDiagnosis([]logdoctor.Report, time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runs++
}

func (o *recordingObserver) outcome(rule string) logdoctor.Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.outcomes[rule]
}

func TestDiagnose_NestedModListing(t *testing.T) {
	log := strings.Join([]string{
		"[12:00:01] [main/INFO]: Loading Minecraft 1.20.1 with Fabric Loader 0.15.3",
		"[12:00:01] [main/INFO]: Loading 6 mods:",
		"\t- fabric-api 0.92.0+1.20.1",
		"\t   |-- fabric-api-base 0.4.31+1802ada577",
		"\t   \\-- fabric-transitive-access-wideners-v1 4.3.1+1802ada577",
		"\t- bclib 3.0.13",
		"\t- optifabric 1.14.3",
		"\t- minecraft 1.20.1",
		"[12:00:02] [main/INFO]: SpongePowered MIXIN Subsystem Version=0.8.5",
	}, "\n")

	env := logdoctor.NewEnvironment(log)
	assert.True(t, env.HasMod("bclib"))
	assert.True(t, env.HasMod("optifabric"))
	assert.True(t, env.HasMod("minecraft"))

	d, err := logdoctor.New()
	require.NoError(t, err)
	var titles []string
	for _, r := range d.Diagnose(log, env) {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"OptiFabric detected", "BCLib detected"}, titles)
}
