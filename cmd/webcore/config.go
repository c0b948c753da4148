package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"surevoucher/webcore/pkg/cli"
	"surevoucher/webcore/pkg/config"
)

var configShowFlags struct {
	output string
}

var configInitFlags struct {
	path  string
	force bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and create configuration",
	Long: `Inspect and create webcore configuration files.

Subcommands:
  show - Print the effective configuration
  init - Write a configuration file with default values`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration webcore would run with: defaults, overridden by the
config file, overridden by SUREVOUCHER__ environment variables.

Examples:
  webcore config show
  SUREVOUCHER__PORT=9090 webcore config show --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseOutputFormat(configShowFlags.output)
		if err != nil {
			return err
		}
		if format == cli.FormatText {
			format = cli.FormatYAML
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a YAML configuration file containing every key with its default value.

Examples:
  # Write to the per-user file that run discovers without --config
  webcore config init

  # Write to a specific path, replacing an existing file
  webcore config init --path ./config.yaml --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configInitFlags.path
		if path == "" {
			path = config.DefaultPath()
		}

		if !configInitFlags.force {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return err
			}
		}

		if err := config.Save(config.Default(), path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Configuration written: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)

	configShowCmd.Flags().StringVarP(&configShowFlags.output, "output", "o", "yaml", "output format: yaml, json")
	configInitCmd.Flags().StringVar(&configInitFlags.path, "path", "", "output file (default: $XDG_CONFIG_HOME/surevoucher/surevoucher.yaml)")
	configInitCmd.Flags().BoolVar(&configInitFlags.force, "force", false, "overwrite an existing file")
}
