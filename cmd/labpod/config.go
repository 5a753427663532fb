// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"labpod-cli/internal/config"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage labpod configuration",
		Long: `Manage labpod configuration.

Configuration is stored in:
  - Linux: ~/.config/labpod/config.cue
  - macOS: ~/Library/Application Support/labpod/config.cue
  - Windows: %APPDATA%\labpod\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	}
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

func showConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	if dir, dirErr := config.ConfigDir(); dirErr == nil {
		path := filepath.Join(dir, "config.cue")
		if fileExists(path) {
			fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), path)
		} else {
			fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
		}
	}
	fmt.Println()

	fmt.Printf("%s: %s\n", keyStyle.Render("container_engine"), valueStyle.Render(string(cfg.ContainerEngine)))
	fmt.Printf("%s: %s\n", keyStyle.Render("paths.workspace"), valueStyle.Render(string(cfg.Paths.Workspace)))
	fmt.Printf("%s: %s\n", keyStyle.Render("paths.data_root"), valueStyle.Render(string(cfg.Paths.DataRoot)))
	fmt.Printf("%s: %s\n", keyStyle.Render("paths.bashrc"), valueStyle.Render(string(cfg.Paths.Bashrc)))
	fmt.Printf("%s: %s\n", keyStyle.Render("paths.home_root"), valueStyle.Render(string(cfg.Paths.HomeRoot)))
	fmt.Printf("%s: %s\n", keyStyle.Render("jupyter.binary"), valueStyle.Render(cfg.Jupyter.Binary))
	fmt.Printf("%s: %s\n", keyStyle.Render("jupyter.config_file"), valueStyle.Render(string(cfg.Jupyter.ConfigFile)))
	fmt.Printf("%s: %s\n", keyStyle.Render("jupyter.clear_env"), valueStyle.Render(strings.Join(cfg.Jupyter.ClearEnv, ", ")))
	fmt.Printf("%s: %s\n", keyStyle.Render("build.registry"), valueStyle.Render(cfg.Build.Registry))
	fmt.Printf("%s: %s\n", keyStyle.Render("build.manifest"), valueStyle.Render(cfg.Build.Manifest))
	fmt.Printf("%s: %s\n", keyStyle.Render("ui.verbose"), valueStyle.Render(fmt.Sprintf("%t", cfg.UI.Verbose)))
	return nil
}

func showConfigPath() error {
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Println(filepath.Join(dir, "config.cue"))
	return nil
}
