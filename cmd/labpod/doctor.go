// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"labpod-cli/internal/config"
	"labpod-cli/internal/manifest"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the local environment",
	Long: `Diagnose the local environment.

Checks that a container engine is reachable, that the notebook server
binary and its configuration file exist, and that the entrypoint's
filesystem paths are present. Inside a platform image every check
should pass; on a workstation only the engine checks matter.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return runDoctor(cmd, cfg)
	},
}

func runDoctor(cmd *cobra.Command, cfg *config.Config) error {
	fmt.Println(TitleStyle.Render("labpod doctor"))
	fmt.Println()

	failures := 0
	check := func(name string, ok bool, detail string) {
		if ok {
			fmt.Printf("  %s %s", SuccessStyle.Render("✓"), name)
		} else {
			fmt.Printf("  %s %s", ErrorStyle.Render("✗"), name)
			failures++
		}
		if detail != "" {
			fmt.Printf(" %s", SubtitleStyle.Render("("+detail+")"))
		}
		fmt.Println()
	}

	engine, err := newEngineFromConfig(cfg)
	if err != nil {
		check("container engine", false, err.Error())
	} else {
		version, verr := engine.Version(cmd.Context())
		if verr != nil {
			check("container engine", true, engine.Name()+", version unknown")
		} else {
			check("container engine", true, engine.Name()+" "+version)
		}
	}

	_, err = exec.LookPath(cfg.Jupyter.Binary)
	check("notebook server binary", err == nil, cfg.Jupyter.Binary)

	check("notebook server config", fileExists(string(cfg.Jupyter.ConfigFile)), string(cfg.Jupyter.ConfigFile))
	check("workspace directory", dirExists(string(cfg.Paths.Workspace)), string(cfg.Paths.Workspace))
	check("data root", dirExists(string(cfg.Paths.DataRoot)), string(cfg.Paths.DataRoot))
	check("shell init file", fileExists(string(cfg.Paths.Bashrc)), string(cfg.Paths.Bashrc))

	if _, err := manifest.Load(cfg.Build.Manifest); err == nil {
		check("pixi manifest", true, cfg.Build.Manifest)
	} else {
		check("pixi manifest", false, cfg.Build.Manifest+", not found or unreadable")
	}

	fmt.Println()
	if failures > 0 {
		fmt.Printf("%s %d check(s) failed\n", WarningStyle.Render("!"), failures)
		return &ExitError{Code: 1}
	}
	fmt.Println(SuccessStyle.Render("All checks passed"))
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
