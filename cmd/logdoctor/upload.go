package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var uploadInstance string

var uploadCmd = &cobra.Command{
	Use:   "upload [files|-]...",
	Short: "Share logs on mclo.gs",
	Long: `Upload logs to mclo.gs and print one "name<TAB>url" line per upload.

Without arguments the latest log and the newest crash report of the game
instance are uploaded.

Examples:
  logdoctor upload
  logdoctor upload logs/latest.log
  cat latest.log | logdoctor upload -`,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadInstance, "instance", "i", "",
		"Game instance directory (auto-detected if not specified)")
	_ = uploadCmd.MarkFlagDirname("instance")

	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reader, err := newReader(cfg.Ingest)
	if err != nil {
		return err
	}
	client, err := newPasteClient(cfg.MCLogs)
	if err != nil {
		return err
	}

	for _, arg := range args {
		if ids := mclogsIDs(arg); len(ids) > 0 {
			return fmt.Errorf("%s is already on mclo.gs", arg)
		}
	}

	in := &inputs{
		reader:      reader,
		instanceDir: uploadInstance,
		stdin:       cmd.InOrStdin(),
		logger:      logger,
	}
	sources, err := in.collect(ctx, args)
	if err != nil {
		return err
	}
	return uploadSources(ctx, client, sources, cmd.OutOrStdout())
}
