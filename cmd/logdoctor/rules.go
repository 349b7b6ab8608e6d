package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/logdoctor/logdoctor-go/pkg/logdoctor"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	// rules flags
	rulesFormat string
	rulesFiles  []string
	rulesOff    []string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rules in evaluation order",
	Long: `List the effective rule catalogue: the builtin rules followed by the rules
of any YAML rule files, minus disabled rules.

Examples:
  logdoctor rules
  logdoctor rules --rules "rules/**/*.yaml" --format json`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().StringVarP(&rulesFormat, "format", "f", "table",
		"Output format: table, json")
	rulesCmd.Flags().StringSliceVarP(&rulesFiles, "rules", "r", nil,
		"YAML rule files or globs to add to the builtin rules")
	rulesCmd.Flags().StringSliceVar(&rulesOff, "disable", nil,
		"Rule names to leave out (comma-separated)")

	mustRegister(rulesCmd, "format", completeValues("table", "json"))
	registerCatalogueCompletions(rulesCmd)

	rootCmd.AddCommand(rulesCmd)
}

// ruleInfo is one row of the listing.
type ruleInfo struct {
	Name    string `json:"name"`
	Source  string `json:"source"`
	Summary string `json:"summary,omitempty"`
}

func runRules(cmd *cobra.Command, args []string) error {
	opts := catalogueOptions{ruleFiles: rulesFiles, disabled: rulesOff}
	d, err := buildDiagnoser(opts.merged(cfg.Rules), logger)
	if err != nil {
		return err
	}
	infos := describeRules(d.Rules())

	switch rulesFormat {
	case "table":
		return outputRulesTable(infos, cmd.OutOrStdout())
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	default:
		return fmt.Errorf("unknown format: %s", rulesFormat)
	}
}

func describeRules(rules []logdoctor.Rule) []ruleInfo {
	builtin := make(map[string]bool)
	for _, r := range logdoctor.BuiltinRules() {
		builtin[r.Name()] = true
	}

	infos := make([]ruleInfo, 0, len(rules))
	for _, r := range rules {
		info := ruleInfo{Name: r.Name(), Source: "file"}
		if builtin[r.Name()] {
			info.Source = "builtin"
		}
		if s, ok := r.(check.Summarizer); ok {
			info.Summary = s.Summary()
		}
		infos = append(infos, info)
	}
	return infos
}

func outputRulesTable(infos []ruleInfo, out io.Writer) error {
	table := tablewriter.NewWriter(out)
	table.Header("#", "Name", "Source", "Summary")
	for i, info := range infos {
		if err := table.Append([]string{fmt.Sprint(i + 1), info.Name, info.Source, info.Summary}); err != nil {
			return err
		}
	}
	return table.Render()
}
