// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdfutil CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfutil/internal/homecfg"
	"github.com/pdiddy/pdfutil/internal/journal"
	"github.com/pdiddy/pdfutil/internal/scratch"
	"github.com/pdiddy/pdfutil/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the pdfutil CLI.
var rootCmd = &cobra.Command{
	Use:   "pdfutil",
	Short: "Merge and password-protect the documents of a folder",
	Long: `pdfutil works on one folder at a time. merge combines the folder's PDFs
and JPEG/BMP images into a single PDF; protect writes password-protected
copies of its PDFs and Excel workbooks into a protected/ subfolder.

When no folder is given, the saved home folder is used (see "pdfutil home").`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdfutil.yaml or ~/.config/pdfutil/pdfutil.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdfutil")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdfutil"))
		}
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("PDFUTIL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so environment overrides are
// picked up by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("scratch.root", os.TempDir())
	v.SetDefault("scratch.max_attempts", scratch.DefaultRetryPolicy.MaxAttempts)
	v.SetDefault("scratch.retry_delay", scratch.DefaultRetryPolicy.Delay)
	v.SetDefault("normalize.dpi", 100)
	v.SetDefault("normalize.jpeg_quality", 95)
	v.SetDefault("protect.owner_password", "")
	v.SetDefault("protect.output_dir", "protected")
	v.SetDefault("journal.path", journal.DefaultPath())
	v.SetDefault("home.file", homecfg.DefaultPath())
}

// loadConfig decodes the merged viper settings into a Config value.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// targetDir returns the folder named on the command line, or the saved home
// folder when none was given.
func targetDir(cfg types.Config, args []string) string {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0]
	}
	return homecfg.Load(cfg.Home.File)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
