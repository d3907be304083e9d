// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfutil/internal/scratch"
)

var scratchCmd = &cobra.Command{
	Use:   "scratch",
	Short: "Inspect and clean the temporary staging area",
}

var scratchPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove scratch areas left behind by earlier runs",
	Long: `Prune deletes temp_pdfs_<pid> directories under <tmp>/pdf_utility_temps
that are older than --max-age. The current process's own area is never
touched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		maxAge, _ := cmd.Flags().GetDuration("max-age")

		mgr := scratch.NewManager(cfg.Scratch)
		res := mgr.Prune(maxAge)

		out := cmd.OutOrStdout()
		for _, path := range res.Removed {
			fmt.Fprintf(out, "removed: %s\n", path)
		}
		for _, e := range res.Errors {
			fmt.Fprintf(out, "failed:  %s (%v)\n", e.Path, e.Err)
		}

		kind := statusOK
		if len(res.Errors) > 0 {
			kind = statusWarn
		}
		printStatus(out, "prune", kind, fmt.Sprintf("%d removed, %d failed in %s", len(res.Removed), len(res.Errors), mgr.Base()))
		return nil
	},
}

func init() {
	scratchPruneCmd.Flags().Duration("max-age", time.Hour, "only remove areas older than this")

	scratchCmd.AddCommand(scratchPruneCmd)
	rootCmd.AddCommand(scratchCmd)
}
