package logdoctor

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// discardLogger returns a logger that discards all output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Outcome is the result of one rule evaluation.
type Outcome int

const (
	// OutcomeNoMatch means the rule did not recognize anything.
	OutcomeNoMatch Outcome = iota
	// OutcomeMatched means the rule produced a report.
	OutcomeMatched
	// OutcomeDefect means the rule returned an error or panicked.
	OutcomeDefect
)

// String returns the outcome name used in logs and metric labels.
func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeDefect:
		return "defect"
	}
	return "no_match"
}

// Observer is notified about every rule evaluation and every finished run.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveRule(rule string, outcome Outcome, elapsed time.Duration)
	ObserveDiagnosis(reports []Report, elapsed time.Duration)
}

// DefectError describes a rule that failed during evaluation.
type DefectError struct {
	Rule  string
	Err   error // set when the rule returned an error
	Panic any   // set when the rule panicked
}

func (e *DefectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rule %s: %v", e.Rule, e.Err)
	}
	return fmt.Sprintf("rule %s: panic: %v", e.Rule, e.Panic)
}

func (e *DefectError) Unwrap() error {
	return e.Err
}

// Diagnoser evaluates a fixed rule catalogue. It holds no per-run state and is
// safe for concurrent use.
type Diagnoser struct {
	rules       []Rule
	log         *slog.Logger
	concurrency int
	observer    Observer
}

// New returns a Diagnoser over the builtin catalogue as modified by opts.
func New(opts ...Option) (*Diagnoser, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	catalogue, err := buildCatalogue(cfg)
	if err != nil {
		return nil, err
	}

	log := cfg.logger
	if log == nil {
		log = discardLogger
	}

	return &Diagnoser{
		rules:       catalogue,
		log:         log,
		concurrency: cfg.concurrency,
		observer:    cfg.observer,
	}, nil
}

func buildCatalogue(cfg *config) ([]Rule, error) {
	disabled := make(map[string]bool, len(cfg.disabled))
	for _, name := range cfg.disabled {
		disabled[name] = false
	}

	all := make([]Rule, 0, len(cfg.rules)+len(cfg.extra))
	all = append(all, cfg.rules...)
	all = append(all, cfg.extra...)

	seen := make(map[string]bool, len(all))
	catalogue := make([]Rule, 0, len(all))
	for _, r := range all {
		if r == nil {
			return nil, fmt.Errorf("nil rule in catalogue")
		}
		name := r.Name()
		if name == "" {
			return nil, fmt.Errorf("rule with empty name in catalogue")
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate rule name %q", name)
		}
		seen[name] = true
		if _, ok := disabled[name]; ok {
			disabled[name] = true
			continue
		}
		catalogue = append(catalogue, r)
	}

	for _, name := range cfg.disabled {
		if !disabled[name] {
			return nil, fmt.Errorf("cannot disable unknown rule %q", name)
		}
	}
	return catalogue, nil
}

// Rules returns the effective catalogue in evaluation order.
func (d *Diagnoser) Rules() []Rule {
	out := make([]Rule, len(d.rules))
	copy(out, d.rules)
	return out
}

// Diagnose runs every rule once over log and returns the reports in catalogue
// order. If env is nil it is detected from log. The result is never nil.
func (d *Diagnoser) Diagnose(log string, env *Environment) []Report {
	start := time.Now()
	log = normalize(log)
	if env == nil {
		env = NewEnvironment(log)
	}

	results := make([]*Report, len(d.rules))
	if d.concurrency > 1 && len(d.rules) > 1 {
		var g errgroup.Group
		g.SetLimit(d.concurrency)
		for i, r := range d.rules {
			g.Go(func() error {
				results[i] = d.evaluate(r, log, env)
				return nil
			})
		}
		_ = g.Wait() // evaluate never fails
	} else {
		for i, r := range d.rules {
			results[i] = d.evaluate(r, log, env)
		}
	}

	reports := make([]Report, 0, len(results))
	for _, rep := range results {
		if rep != nil {
			reports = append(reports, *rep)
		}
	}

	if d.observer != nil {
		d.observer.ObserveDiagnosis(reports, time.Since(start))
	}
	return reports
}

// evaluate runs one rule, converting errors and panics into a logged defect
// and a nil result.
func (d *Diagnoser) evaluate(r Rule, log string, env *Environment) (rep *Report) {
	start := time.Now()
	name := r.Name()

	defer func() {
		if p := recover(); p != nil {
			d.defect(&DefectError{Rule: name, Panic: p}, start, slog.String("stack", string(debug.Stack())))
			rep = nil
		}
	}()

	rep, err := r.Check(log, env)
	if err != nil {
		d.defect(&DefectError{Rule: name, Err: err}, start)
		return nil
	}

	if d.observer != nil {
		outcome := OutcomeNoMatch
		if rep != nil {
			outcome = OutcomeMatched
		}
		d.observer.ObserveRule(name, outcome, time.Since(start))
	}
	if rep == nil {
		return nil
	}
	out := *rep
	return &out
}

func (d *Diagnoser) defect(err *DefectError, start time.Time, attrs ...any) {
	args := append([]any{slog.String("rule", err.Rule), slog.Any("error", err)}, attrs...)
	d.log.Error("rule failed", args...)
	if d.observer != nil {
		d.observer.ObserveRule(err.Rule, OutcomeDefect, time.Since(start))
	}
}

// normalize converts CRLF line endings so patterns only need to handle \n.
func normalize(log string) string {
	if !strings.Contains(log, "\r\n") {
		return log
	}
	return strings.ReplaceAll(log, "\r\n", "\n")
}

var defaultDiagnoser = func() *Diagnoser {
	d, err := New()
	if err != nil {
		panic("logdoctor: builtin catalogue: " + err.Error())
	}
	return d
}()

// Diagnose runs the builtin catalogue over log with a detected environment.
func Diagnose(log string) []Report {
	return defaultDiagnoser.Diagnose(log, nil)
}
