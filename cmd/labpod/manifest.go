// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"labpod-cli/internal/config"
	"labpod-cli/internal/manifest"
)

var (
	manifestPath string

	manifestCmd = &cobra.Command{
		Use:   "manifest",
		Short: "Inspect pixi manifests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	manifestShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show the manifest's project metadata and dependency counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifestShow()
		},
	}

	manifestLintCmd = &cobra.Command{
		Use:   "lint",
		Short: "Check the manifest for problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifestLint()
		},
	}
)

func init() {
	manifestCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "", "pixi manifest path (default from config)")
	manifestCmd.AddCommand(manifestShowCmd)
	manifestCmd.AddCommand(manifestLintCmd)
}

func loadManifest() (*manifest.Manifest, error) {
	path := manifestPath
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		path = cfg.Build.Manifest
	}
	return manifest.Load(path)
}

func runManifestShow() error {
	m, err := loadManifest()
	if err != nil {
		return err
	}

	conda, pypi := m.DependencyCount()

	fmt.Println(TitleStyle.Render("Manifest: ") + m.Path)
	fmt.Println()
	fmt.Printf("%s: %s\n", CmdStyle.Render("name"), m.Project.Name)
	fmt.Printf("%s: %s\n", CmdStyle.Render("version"), m.Project.Version)
	if m.Project.Description != "" {
		fmt.Printf("%s: %s\n", CmdStyle.Render("description"), m.Project.Description)
	}
	if len(m.Project.Channels) > 0 {
		fmt.Printf("%s: %s\n", CmdStyle.Render("channels"), strings.Join(m.Project.Channels, ", "))
	}
	if len(m.Project.Platforms) > 0 {
		fmt.Printf("%s: %s\n", CmdStyle.Render("platforms"), strings.Join(m.Project.Platforms, ", "))
	}
	fmt.Printf("%s: %d conda, %d pypi\n", CmdStyle.Render("dependencies"), conda, pypi)
	return nil
}

func runManifestLint() error {
	m, err := loadManifest()
	if err != nil {
		return err
	}

	if err := m.Lint(); err != nil {
		fmt.Println(ErrorStyle.Render("Manifest has problems:"))
		var lintErr *manifest.LintError
		if errors.As(err, &lintErr) {
			for _, problem := range lintErr.Problems {
				fmt.Println("  " + WarningStyle.Render("•") + " " + problem)
			}
		}
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Println(SuccessStyle.Render("Manifest is valid: ") + m.Path)
	return nil
}
