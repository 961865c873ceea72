// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/backoffice-tui/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := targetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print one setting, e.g. session.warning_window_secs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		v, err := cfg.Get(args[0])
		if err != nil {
			return usageError{err}
		}
		if list, ok := v.([]string); ok {
			v = strings.Join(list, ",")
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one setting and save the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Set(args[0], args[1]); err != nil {
			return usageError{err}
		}
		cfg.Migrate()
		if err := cfg.Validate(); err != nil {
			return configError{err}
		}

		path, err := targetConfigPath()
		if err != nil {
			return err
		}
		if strings.HasSuffix(path, ".json") {
			err = config.SaveJSON(cfg, path)
		} else {
			err = config.SaveTOML(cfg, path)
		}
		if err != nil {
			return configError{err}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", SuccessStyle.Render("[OK]"), args[0], args[1])
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List every settable key",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, key := range config.GetAllKeys() {
			fmt.Fprintln(cmd.OutOrStdout(), key)
		}
	},
}

func init() {
	configCmd.AddCommand(configPathCmd, configGetCmd, configSetCmd, configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func targetConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		return "", configError{err}
	}
	return path, nil
}
