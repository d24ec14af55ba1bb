package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/docvault-backend/internal/app"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

var extractLang string

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract text from an image or PDF",
	Long:  `Runs the extraction engine on one file. No database is needed.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractLang, "lang", "", "language hint, e.g. vie+eng (comma separated for several)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app.LoadDotEnv(nil)
	cfg := app.LoadConfig(nil)
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	extractor, clients, err := app.NewExtractor(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer clients.Close()

	res, err := extractor.Extract(ctx, args[0], extractLang)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), outputFormat, res)
}
