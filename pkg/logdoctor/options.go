package logdoctor

import (
	"fmt"
	"log/slog"
)

// Option configures a Diagnoser using the functional options pattern.
type Option func(*config)

type config struct {
	rules       []Rule
	extra       []Rule
	disabled    []string
	logger      *slog.Logger
	concurrency int
	observer    Observer
}

func defaultConfig() *config {
	return &config{
		rules:       BuiltinRules(),
		concurrency: 1,
	}
}

func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (c *config) validate() error {
	if c.concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.concurrency)
	}
	return nil
}

// WithRules replaces the builtin catalogue. The order of rs is the
// evaluation and report order.
func WithRules(rs ...Rule) Option {
	return func(c *config) {
		c.rules = rs
	}
}

// WithExtraRules appends rules after the catalogue, e.g. rules loaded from
// YAML files. Repeated calls accumulate.
func WithExtraRules(rs ...Rule) Option {
	return func(c *config) {
		c.extra = append(c.extra, rs...)
	}
}

// WithDisabledRules removes the named rules from the catalogue. Naming a rule
// that does not exist is an error from New.
func WithDisabledRules(names ...string) Option {
	return func(c *config) {
		c.disabled = append(c.disabled, names...)
	}
}

// WithLogger sets the logger rule defects are reported to.
// If logger is nil, logging is disabled (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithConcurrency evaluates up to n rules at once. Reports are still returned
// in catalogue order. Default: 1 (sequential).
func WithConcurrency(n int) Option {
	return func(c *config) {
		c.concurrency = n
	}
}

// WithObserver receives per-rule outcomes and timings.
// If o is nil, this option has no effect.
func WithObserver(o Observer) Option {
	return func(c *config) {
		if o != nil {
			c.observer = o
		}
	}
}
