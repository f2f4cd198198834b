package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/biliterm/internal/config"
	"github.com/zjrosen/biliterm/internal/flags"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), cfgPath)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return initConfigFile(cmd, cfgPath, force)
	},
}

var configFlagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "List feature flags and their resolved values",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		resolved := flags.New(cfg.Flags)
		for _, f := range flags.Known() {
			state := "off"
			if resolved.Enabled(f.Name) {
				state = "on"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-3s  %s\n", f.Name, state, f.Help)
		}
	},
}

func init() {
	configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd, configPathCmd, configFlagsCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfigFile(cmd *cobra.Command, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			data, readErr := os.ReadFile(path) //nolint:gosec // G304: path is the user's config file
			if readErr == nil && string(data) == config.DefaultConfigTemplate() {
				fmt.Fprintf(cmd.OutOrStdout(), "Default config already at %s\n", path)
				return nil
			}
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", path, err)
		}
	}
	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
