package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/logdoctor/logdoctor-go/internal/ingest"
	"github.com/logdoctor/logdoctor-go/internal/mclogs"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
	"github.com/spf13/cobra"
)

var (
	// diagnose flags
	instanceDir string
	format      string
	ruleFiles   []string
	disabled    []string
	concurrency int
	failOn      string
	upload      bool
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose [files|mclo.gs links|-]...",
	Short: "Diagnose logs and crash reports",
	Long: `Diagnose Minecraft logs and crash reports against the rule catalogue.

Without arguments the latest log and the newest crash report of the game
instance are used. Arguments may be files, doublestar globs, mclo.gs links
or "-" for standard input. Gzip compressed logs are read transparently.

Examples:
  # Diagnose the auto-detected instance
  logdoctor diagnose

  # Diagnose a specific instance
  logdoctor diagnose --instance ~/.local/share/PrismLauncher/instances/fabric/.minecraft

  # Diagnose files and a shared paste
  logdoctor diagnose logs/latest.log "crash-reports/*.txt" https://mclo.gs/HpAwPry

  # Add custom rules and fail in CI on anything serious
  logdoctor diagnose --rules rules.yaml --fail-on high build.log

  # Machine readable output
  logdoctor diagnose --format json latest.log | jq '.[].reports[].title'`,
	RunE: runDiagnose,
}

func init() {
	diagnoseCmd.Flags().StringVarP(&instanceDir, "instance", "i", "",
		"Game instance directory (auto-detected if not specified)")
	diagnoseCmd.Flags().StringVarP(&format, "format", "f", "pretty",
		"Output format: pretty, json, jsonl, markdown")
	diagnoseCmd.Flags().StringSliceVarP(&ruleFiles, "rules", "r", nil,
		"YAML rule files or globs to add to the builtin rules")
	diagnoseCmd.Flags().StringSliceVar(&disabled, "disable", nil,
		"Rule names to skip (comma-separated)")
	diagnoseCmd.Flags().IntVar(&concurrency, "concurrency", 0,
		"Rules evaluated in parallel (0 = rules.concurrency)")
	diagnoseCmd.Flags().StringVar(&failOn, "fail-on", "",
		"Exit with status 2 if any report has at least this severity: none, medium, high")
	diagnoseCmd.Flags().BoolVar(&upload, "upload", false,
		"Upload each local source to mclo.gs and print its link")

	mustRegister(diagnoseCmd, "format", completeFormats(ValidFormats))
	mustRegister(diagnoseCmd, "fail-on", completeSeverities())
	registerCatalogueCompletions(diagnoseCmd)
	_ = diagnoseCmd.MarkFlagDirname("instance")

	rootCmd.AddCommand(diagnoseCmd)
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !ValidFormats[format] {
		return fmt.Errorf("unknown format: %s", format)
	}

	threshold, hasThreshold := check.Severity(0), false
	if failOn != "" {
		s, err := check.ParseSeverity(failOn)
		if err != nil {
			return fmt.Errorf("invalid --fail-on: %w", err)
		}
		threshold, hasThreshold = s, true
	}

	opts := catalogueOptions{ruleFiles: ruleFiles, disabled: disabled, concurrency: concurrency}
	d, err := buildDiagnoser(opts.merged(cfg.Rules), logger)
	if err != nil {
		return err
	}

	reader, err := newReader(cfg.Ingest)
	if err != nil {
		return err
	}

	var client *mclogs.Client
	paste := func() (*mclogs.Client, error) {
		if client == nil {
			c, err := newPasteClient(cfg.MCLogs)
			if err != nil {
				return nil, err
			}
			client = c
		}
		return client, nil
	}

	in := &inputs{
		reader:      reader,
		instanceDir: instanceDir,
		stdin:       cmd.InOrStdin(),
		paste:       paste,
		logger:      logger,
	}
	sources, err := in.collect(ctx, args)
	if err != nil {
		return err
	}

	results := diagnoseSources(d, sources, logger)

	if err := OutputResults(format, results, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("output error: %w", err)
	}

	if upload {
		c, err := paste()
		if err != nil {
			return err
		}
		if err := uploadSources(ctx, c, sources, cmd.ErrOrStderr()); err != nil {
			return err
		}
	}

	if hasThreshold && reachesSeverity(results, threshold) {
		return &exitError{code: 2}
	}
	return nil
}

// diagnoseSources runs d over every source, keeping input order.
func diagnoseSources(d *logdoctor.Diagnoser, sources []ingest.Source, logger *slog.Logger) []logdoctor.Result {
	results := make([]logdoctor.Result, 0, len(sources))
	for _, src := range sources {
		env := logdoctor.NewEnvironment(src.Text)
		reports := d.Diagnose(src.Text, env)
		logger.Debug("diagnosed source",
			slog.String("source", src.Name),
			slog.String("digest", src.Digest),
			slog.Int("reports", len(reports)),
		)
		results = append(results, logdoctor.NewResult(src.Name, src.Digest, env, reports))
	}
	return results
}

// reachesSeverity reports whether any report is at least threshold.
func reachesSeverity(results []logdoctor.Result, threshold check.Severity) bool {
	for _, r := range results {
		for _, rep := range r.Reports {
			if rep.Severity >= threshold {
				return true
			}
		}
	}
	return false
}

// uploadSources shares every local source and prints one "name<TAB>url"
// line per upload.
func uploadSources(ctx context.Context, c *mclogs.Client, sources []ingest.Source, out io.Writer) error {
	for _, src := range sources {
		if strings.HasPrefix(src.Name, "mclo.gs/") {
			continue
		}
		p, err := c.Upload(ctx, src.Text)
		if err != nil {
			return fmt.Errorf("uploading %s: %w", src.Name, err)
		}
		fmt.Fprintf(out, "%s\t%s\n", src.Name, p.URL)
	}
	return nil
}
