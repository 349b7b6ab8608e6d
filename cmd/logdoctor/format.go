package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/logdoctor/logdoctor-go/internal/ingest"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
)

// ValidFormats lists all valid output formats.
var ValidFormats = map[string]bool{
	"pretty":   true,
	"json":     true,
	"jsonl":    true,
	"markdown": true,
}

// OutputResults writes results in the specified format to the writer.
func OutputResults(format string, results []logdoctor.Result, out io.Writer) error {
	switch format {
	case "pretty":
		return OutputPretty(results, out)
	case "json":
		return OutputJSON(results, out)
	case "jsonl":
		return OutputJSONL(results, out)
	case "markdown":
		return OutputMarkdown(results, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputJSON writes all results as one indented JSON array.
func OutputJSON(results []logdoctor.Result, out io.Writer) error {
	if results == nil {
		results = []logdoctor.Result{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// OutputJSONL writes one JSON object per result.
func OutputJSONL(results []logdoctor.Result, out io.Writer) error {
	for _, r := range results {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out, string(data)); err != nil {
			return err
		}
	}
	return nil
}

// OutputMarkdown writes each result as a titled section with one field per
// report, the way chat embeds present them.
func OutputMarkdown(results []logdoctor.Result, out io.Writer) error {
	var sb strings.Builder
	for _, r := range results {
		fmt.Fprintf(&sb, "## %s\n\n", r.Source)
		if facts := environmentFacts(r); facts != "" {
			fmt.Fprintf(&sb, "_%s_\n\n", facts)
		}
		if len(r.Reports) == 0 {
			sb.WriteString("No known problems found.\n\n")
			continue
		}
		for _, rep := range r.Reports {
			fmt.Fprintf(&sb, "### %s (%s)\n\n%s\n\n", rep.Title, rep.Severity, strings.TrimRight(rep.Description, "\n"))
		}
	}
	_, err := io.WriteString(out, sb.String())
	return err
}

// OutputPretty writes results for a terminal. Report titles are tinted with
// their severity color when out supports it.
func OutputPretty(results []logdoctor.Result, out io.Writer) error {
	r := lipgloss.NewRenderer(out)
	sourceStyle := r.NewStyle().Bold(true)
	dimStyle := r.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	bodyStyle := r.NewStyle().PaddingLeft(4)

	var sb strings.Builder
	total := 0
	for i, res := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		header := sourceStyle.Render(res.Source)
		meta := []string{}
		if res.Digest != "" {
			meta = append(meta, ingest.ShortDigest(res.Digest))
		}
		if facts := environmentFacts(res); facts != "" {
			meta = append(meta, facts)
		}
		if len(meta) > 0 {
			header += " " + dimStyle.Render("("+strings.Join(meta, ", ")+")")
		}
		sb.WriteString(header + "\n")

		if len(res.Reports) == 0 {
			sb.WriteString("  " + dimStyle.Render("No known problems found.") + "\n")
			continue
		}
		for _, rep := range res.Reports {
			total++
			tint := severityStyle(r, rep.Severity)
			fmt.Fprintf(&sb, "  %s %s %s\n",
				tint.Render("●"),
				tint.Bold(true).Render(rep.Title),
				dimStyle.Render("["+rep.Severity.String()+"]"))
			desc := strings.TrimRight(rep.Description, "\n")
			if desc != "" {
				sb.WriteString(bodyStyle.Render(desc) + "\n")
			}
		}
	}

	if len(results) > 1 {
		fmt.Fprintf(&sb, "\n%s\n", dimStyle.Render(fmt.Sprintf("%d sources, %d reports", len(results), total)))
	}
	_, err := io.WriteString(out, sb.String())
	return err
}

func severityStyle(r *lipgloss.Renderer, s check.Severity) lipgloss.Style {
	return r.NewStyle().Foreground(lipgloss.Color(s.Hex()))
}

// environmentFacts renders what is known about the environment, e.g.
// "PolyMC, Minecraft 1.20.1, Fabric Loader 0.15.3".
func environmentFacts(r logdoctor.Result) string {
	var facts []string
	if r.Launcher != check.LauncherUnknown {
		facts = append(facts, r.Launcher.String())
	}
	if r.MinecraftVersion != "" {
		facts = append(facts, "Minecraft "+r.MinecraftVersion)
	}
	if r.LoaderVersion != "" {
		loader := r.Loader
		if loader == "" {
			loader = check.LoaderFabric
		}
		facts = append(facts, loader+" Loader "+r.LoaderVersion)
	}
	return strings.Join(facts, ", ")
}
