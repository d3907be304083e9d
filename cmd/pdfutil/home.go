// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfutil/internal/homecfg"
)

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show or change the default folder",
}

var homeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the folder used when no folder argument is given",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), homecfg.Load(cfg.Home.File))
		return nil
	},
}

var homeSetCmd = &cobra.Command{
	Use:   "set <dir>",
	Short: "Save dir as the default folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		if err := homecfg.Save(cfg.Home.File, args[0]); err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), "home", statusOK, homecfg.Load(cfg.Home.File))
		return nil
	},
}

func init() {
	homeCmd.AddCommand(homeShowCmd, homeSetCmd)
	rootCmd.AddCommand(homeCmd)
}
