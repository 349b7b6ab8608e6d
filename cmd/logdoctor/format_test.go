package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/logdoctor/logdoctor-go/pkg/logdoctor"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
)

var updateGolden = flag.Bool("update-golden", false, "update golden files")

func sampleResults() []logdoctor.Result {
	env := &logdoctor.Environment{
		Launcher:         check.LauncherPrism,
		MinecraftVersion: "1.20.1",
		Loader:           check.LoaderFabric,
		LoaderVersion:    "0.15.3",
	}
	return []logdoctor.Result{
		logdoctor.NewResult("latest.log", "0123456789abcdef", env, []logdoctor.Report{
			{Title: "Missing dependency", Description: "Mod **Foo** requires **Bar Lib**.\n", Severity: logdoctor.High},
			{Title: "BCLib detected", Description: "BCLib is known to break things.", Severity: logdoctor.Medium},
		}),
		logdoctor.NewResult("crash-2024-01-15_12.00.00-client.txt", "", nil, nil),
	}
}

func TestValidFormats(t *testing.T) {
	tests := []struct {
		format string
		valid  bool
	}{
		{"pretty", true},
		{"json", true},
		{"jsonl", true},
		{"markdown", true},
		{"table", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := ValidFormats[tt.format]; got != tt.valid {
				t.Errorf("ValidFormats[%q] = %v, want %v", tt.format, got, tt.valid)
			}
		})
	}
}

func TestOutputResults_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := OutputResults("xml", sampleResults(), &buf); err == nil {
		t.Fatal("OutputResults() expected error for unknown format")
	}
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := OutputJSON(sampleResults(), &buf); err != nil {
		t.Fatalf("OutputJSON() error = %v", err)
	}

	var decoded []struct {
		Source   string `json:"source"`
		Severity string `json:"severity"`
		Reports  []struct {
			Title string `json:"title"`
		} `json:"reports"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("OutputJSON() produced invalid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("len(decoded) = %d, want 2", len(decoded))
	}
	if decoded[0].Severity != "high" || len(decoded[0].Reports) != 2 {
		t.Errorf("decoded[0] = %+v", decoded[0])
	}
	if decoded[1].Reports == nil {
		t.Error("empty report list should encode as [], not null")
	}
}

func TestOutputJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := OutputJSON(nil, &buf); err != nil {
		t.Fatalf("OutputJSON() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("OutputJSON(nil) = %q, want []", got)
	}
}

func TestOutputPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := OutputPretty(sampleResults(), &buf); err != nil {
		t.Fatalf("OutputPretty() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"latest.log",
		"01234567",
		"Prism Launcher, Minecraft 1.20.1, Fabric Loader 0.15.3",
		"Missing dependency",
		"[high]",
		"BCLib detected",
		"[medium]",
		"    BCLib is known to break things.",
		"No known problems found.",
		"2 sources, 2 reports",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("OutputPretty() missing %q in:\n%s", want, out)
		}
	}
	if strings.Index(out, "Missing dependency") > strings.Index(out, "BCLib detected") {
		t.Error("OutputPretty() reordered reports")
	}
}

// TestOutputResults_Golden tests output formats using golden files.
// Run with -update-golden to update the golden files.
func TestOutputResults_Golden(t *testing.T) {
	tests := []struct {
		name   string
		format string
	}{
		{name: "markdown", format: "markdown"},
		{name: "jsonl", format: "jsonl"},
	}

	// Support both flag and env var for updating golden files
	update := *updateGolden || os.Getenv("UPDATE_GOLDEN") != ""

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := OutputResults(tt.format, sampleResults(), &buf); err != nil {
				t.Fatalf("OutputResults() error = %v", err)
			}

			golden := filepath.Join("testdata", "golden", tt.name+".golden")

			if update {
				if err := os.MkdirAll(filepath.Dir(golden), 0755); err != nil {
					t.Fatalf("failed to create golden dir: %v", err)
				}
				if err := os.WriteFile(golden, buf.Bytes(), 0644); err != nil {
					t.Fatalf("failed to write golden file: %v", err)
				}
				t.Logf("updated golden file: %s", golden)
				return
			}

			expected, err := os.ReadFile(golden)
			if err != nil {
				t.Fatalf("failed to read golden file %s: %v\nRun with -update-golden to create it", golden, err)
			}

			// Normalize line endings for cross-platform compatibility
			got := bytes.ReplaceAll(buf.Bytes(), []byte("\r\n"), []byte("\n"))
			want := bytes.ReplaceAll(expected, []byte("\r\n"), []byte("\n"))

			if !bytes.Equal(got, want) {
				t.Errorf("output mismatch for %s:\ngot:\n%s\nwant:\n%s", golden, got, want)
			}
		})
	}
}

func TestEnvironmentFacts(t *testing.T) {
	tests := []struct {
		name string
		res  logdoctor.Result
		want string
	}{
		{"nothing known", logdoctor.Result{}, ""},
		{"launcher only", logdoctor.Result{Launcher: check.LauncherPolyMC}, "PolyMC"},
		{"versions only", logdoctor.Result{MinecraftVersion: "1.19.2", LoaderVersion: "0.14.21"}, "Minecraft 1.19.2, Fabric Loader 0.14.21"},
		{"quilt", logdoctor.Result{Loader: check.LoaderQuilt, LoaderVersion: "0.20.2"}, "Quilt Loader 0.20.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := environmentFacts(tt.res); got != tt.want {
				t.Errorf("environmentFacts() = %q, want %q", got, tt.want)
			}
		})
	}
}
