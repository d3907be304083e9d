// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfutil/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent merge and protect runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		if cfg.Journal.Path == "" {
			return errors.New("journal is disabled (journal.path is empty)")
		}
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderHistory(runs, time.Now()))
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "number of runs to show")

	rootCmd.AddCommand(historyCmd)
}

// historyColumns lists the journal columns in display order. Counts and
// durations are right-aligned.
var historyColumns = []struct {
	title string
	align text.Align
	value func(r journal.Run, now time.Time) string
}{
	{"Started", text.AlignLeft, func(r journal.Run, now time.Time) string {
		return humanize.RelTime(r.StartedAt, now, "ago", "from now")
	}},
	{"Kind", text.AlignLeft, func(r journal.Run, _ time.Time) string { return string(r.Kind) }},
	{"Outcome", text.AlignLeft, func(r journal.Run, _ time.Time) string { return string(r.Outcome) }},
	{"Target", text.AlignLeft, func(r journal.Run, _ time.Time) string { return r.Target }},
	{"Done", text.AlignRight, func(r journal.Run, _ time.Time) string { return strconv.Itoa(r.Succeeded) }},
	{"Skipped", text.AlignRight, func(r journal.Run, _ time.Time) string { return strconv.Itoa(r.Skipped) }},
	{"Failed", text.AlignRight, func(r journal.Run, _ time.Time) string { return strconv.Itoa(r.Failed) }},
	{"Total", text.AlignRight, func(r journal.Run, _ time.Time) string { return strconv.Itoa(r.Total) }},
	{"Took", text.AlignRight, func(r journal.Run, _ time.Time) string {
		return r.Duration.Round(time.Millisecond).String()
	}},
	{"Leftover", text.AlignLeft, func(r journal.Run, _ time.Time) string { return r.Leftover }},
}

// renderHistory formats runs as a rounded table, newest first as given.
func renderHistory(runs []journal.Run, now time.Time) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(historyColumns))
	configs := make([]table.ColumnConfig, len(historyColumns))
	for i, col := range historyColumns {
		header[i] = col.title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: col.align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, r := range runs {
		row := make(table.Row, len(historyColumns))
		for i, col := range historyColumns {
			row[i] = col.value(r, now)
		}
		tw.AppendRow(row)
	}
	return tw.Render()
}
