package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/logdoctor/logdoctor-go/internal/config"
	"github.com/logdoctor/logdoctor-go/internal/ingest"
	"github.com/logdoctor/logdoctor-go/internal/logfinder"
	"github.com/logdoctor/logdoctor-go/internal/mclogs"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/pattern"
)

// catalogueOptions selects the rules of a Diagnoser. Flag values are
// appended to the configured ones.
type catalogueOptions struct {
	ruleFiles   []string
	disabled    []string
	concurrency int
}

func (o catalogueOptions) merged(c config.RulesConfig) catalogueOptions {
	out := catalogueOptions{
		ruleFiles:   append(append([]string{}, c.Files...), o.ruleFiles...),
		disabled:    append(append([]string{}, c.Disabled...), o.disabled...),
		concurrency: c.Concurrency,
	}
	if o.concurrency > 0 {
		out.concurrency = o.concurrency
	}
	return out
}

// buildDiagnoser builds a Diagnoser from the builtin catalogue, the YAML rule
// files in opts and any extra options.
func buildDiagnoser(opts catalogueOptions, logger *slog.Logger, extra ...logdoctor.Option) (*logdoctor.Diagnoser, error) {
	var fileRules []logdoctor.Rule
	if len(opts.ruleFiles) > 0 {
		rules, err := pattern.LoadRules(opts.ruleFiles...)
		if err != nil {
			// Error from pattern package is already sanitized (base name only)
			return nil, fmt.Errorf("rule file %w", err)
		}
		fileRules = rules
		logger.Debug("loaded rule files", slog.Int("files", len(opts.ruleFiles)), slog.Int("rules", len(rules)))
	}

	concurrency := opts.concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	dopts := []logdoctor.Option{
		logdoctor.WithExtraRules(fileRules...),
		logdoctor.WithDisabledRules(opts.disabled...),
		logdoctor.WithConcurrency(concurrency),
		logdoctor.WithLogger(logger),
	}
	return logdoctor.New(append(dopts, extra...)...)
}

func newReader(c config.IngestConfig) (*ingest.Reader, error) {
	return ingest.New(ingest.Options{
		Include:      c.Include,
		MaxBytes:     c.MaxBytes,
		MaxTextBytes: c.MaxTextBytes,
	})
}

func newPasteClient(c config.MCLogsConfig) (*mclogs.Client, error) {
	return mclogs.New(mclogs.Config{
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
	})
}

// inputs turns command arguments into sources.
//
//   - no arguments: the latest log and crash report of the game instance
//   - "-": standard input
//   - a mclo.gs link: the shared paste
//   - a doublestar glob: every allowed file it matches
//   - anything else: a file path
type inputs struct {
	reader      *ingest.Reader
	instanceDir string
	stdin       io.Reader
	paste       func() (*mclogs.Client, error)
	logger      *slog.Logger
}

func (in *inputs) collect(ctx context.Context, args []string) ([]ingest.Source, error) {
	if len(args) == 0 {
		paths, err := in.instancePaths()
		if err != nil {
			return nil, err
		}
		args = paths
	}

	var sources []ingest.Source
	for _, arg := range args {
		srcs, err := in.resolve(ctx, arg)
		if err != nil {
			return nil, err
		}
		sources = append(sources, srcs...)
	}
	return sources, nil
}

func (in *inputs) instancePaths() ([]string, error) {
	dir, err := logfinder.FindInstanceDir(in.instanceDir)
	if err != nil {
		return nil, fmt.Errorf("%w (pass files or --instance)", err)
	}
	paths, err := logfinder.FindLatest(dir)
	if err != nil {
		return nil, err
	}
	in.logger.Debug("using instance logs", slog.String("instance", dir), slog.Int("files", len(paths)))
	return paths, nil
}

func (in *inputs) resolve(ctx context.Context, arg string) ([]ingest.Source, error) {
	if arg == "-" {
		src, err := in.reader.Read("stdin", in.stdin)
		if err != nil {
			return nil, err
		}
		return []ingest.Source{src}, nil
	}

	if ids := mclogsIDs(arg); len(ids) > 0 {
		client, err := in.paste()
		if err != nil {
			return nil, err
		}
		var sources []ingest.Source
		for _, id := range ids {
			raw, err := client.Raw(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("mclo.gs/%s: %w", id, err)
			}
			src, err := in.reader.Text("mclo.gs/"+id, raw)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		}
		return sources, nil
	}

	if pattern.HasMeta(arg) {
		if !doublestar.ValidatePattern(arg) {
			return nil, fmt.Errorf("invalid glob %q", arg)
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", arg, err)
		}
		sort.Strings(matches)
		var sources []ingest.Source
		for _, m := range matches {
			if !in.reader.Allowed(m) {
				in.logger.Debug("skipping file", slog.String("file", m))
				continue
			}
			src, err := in.reader.ReadFile(m)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		}
		if len(sources) == 0 {
			return nil, fmt.Errorf("glob %q matched no log files", arg)
		}
		return sources, nil
	}

	src, err := in.reader.ReadFile(arg)
	if err != nil {
		return nil, err
	}
	return []ingest.Source{src}, nil
}

// mclogsIDs returns the paste ids of arg when arg is a link rather than an
// existing file.
func mclogsIDs(arg string) []string {
	if _, err := os.Stat(arg); err == nil {
		return nil
	}
	return mclogs.ExtractIDs(arg)
}
