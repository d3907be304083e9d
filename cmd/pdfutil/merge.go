// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfutil/internal/merge"
	"github.com/pdiddy/pdfutil/internal/pipeline"
)

var mergeCmd = &cobra.Command{
	Use:   "merge [dir]",
	Short: "Merge the PDFs and images of a folder into one PDF",
	Long: `Merge converts every JPEG and BMP image in the folder to a single-page
PDF, then combines the folder's PDFs (sorted by name) followed by the
converted images (sorted by name) into one output file in the same folder.

Files that cannot be read are skipped and reported. Temporary files are
staged under <tmp>/pdf_utility_temps and removed when the run ends.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringP("output", "o", "merged.pdf", "output file name; .pdf is appended when missing")

	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	dir := targetDir(cfg, args)
	out := cmd.OutOrStdout()

	started := time.Now()
	report, err := pipeline.RunMerge(dir, output, cfg, out)
	recordRun(cmd.Context(), cfg.Journal, mergeRun(dir, report, err, started), cmd.ErrOrStderr())

	if report.Cleanup.Leftover != "" {
		printStatus(out, "cleanup", statusWarn, "leftover scratch area "+report.Cleanup.Leftover)
	}

	switch {
	case errors.Is(err, merge.ErrNothingToMerge):
		printStatus(out, "merge", statusWarn, "nothing to merge")
		return nil
	case err != nil:
		printStatus(out, "merge", statusError, err.Error())
		return err
	}

	msg := fmt.Sprintf("%s (%d pages, %s)", report.Merge.Output, report.Merge.Pages, humanize.Bytes(uint64(report.Merge.Bytes)))
	kind := statusOK
	if report.Merge.HasSkipped() || report.Normalize.HasFailures() {
		kind = statusWarn
		msg += fmt.Sprintf(", %d skipped", report.Merge.Skipped+report.Normalize.Failed)
	}
	printStatus(out, "merge", kind, msg)
	return nil
}
