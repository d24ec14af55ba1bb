package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	apperrors "github.com/yungbote/docvault-backend/internal/pkg/errors"
)

var outputFormat string

var rootCmd = &cobra.Command{
	Use:           "docvault",
	Short:         "Versioned document ingestion",
	Long:          `Extract, ingest, version, diff and re-index documents in the knowledge base.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "o", "yaml", "output format: yaml|json")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err != nil {
		name := rootCmd.Name()
		if cmd != nil {
			name = cmd.Name()
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeValidation:
		return 2
	case apperrors.CodeNotFound:
		return 3
	case apperrors.CodeExtraction:
		return 4
	case apperrors.CodeConflict:
		return 5
	default:
		return 1
	}
}
