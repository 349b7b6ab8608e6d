// Command logdoctor diagnoses Minecraft logs and crash reports.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/logdoctor/logdoctor-go/internal/config"
	"github.com/spf13/cobra"
)

var (
	// global flags
	configPath string
	logLevel   string
	verbose    bool

	// set by PersistentPreRunE
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "logdoctor",
	Short: "Diagnose Minecraft logs and crash reports",
	Long: `logdoctor scans Minecraft launcher logs and crash reports for known
failure signatures and explains how to fix them.

Configuration is read from ~/.config/logdoctor/config.yaml (if present)
and LOGDOCTOR_* environment variables. Flags take precedence over both.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default ~/.config/logdoctor/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides log.level)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Shorthand for --log-level debug")
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if verbose {
		c.Log.Level = "debug"
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := newLogger(c.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	cfg, logger = c, l
	return nil
}

// newLogger builds the process logger. Output goes to w so that stdout
// stays reserved for results.
func newLogger(c config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// exitError carries a process exit code without printing anything.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
