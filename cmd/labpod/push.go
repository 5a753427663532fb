// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"labpod-cli/internal/config"
	"labpod-cli/internal/container"
)

var (
	pushManifestPath string

	pushCmd = &cobra.Command{
		Use:   "push [image-tag]",
		Short: "Publish a built platform image",
		Long: `Publish a built platform image to its registry.

With no argument the tag is derived from the pixi manifest, the same
way 'labpod build' derives it. The image must exist locally.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runPush(cmd, cfg, args)
		},
	}
)

func init() {
	pushCmd.Flags().StringVarP(&pushManifestPath, "manifest", "m", "", "pixi manifest path (default from config)")
}

func runPush(cmd *cobra.Command, cfg *config.Config, args []string) error {
	var tag container.ImageTag
	if len(args) == 1 {
		tag = container.ImageTag(args[0])
		if err := tag.Validate(); err != nil {
			return err
		}
	} else {
		buildManifestPath = pushManifestPath
		resolved, err := resolveImageTag(cfg)
		if err != nil {
			return err
		}
		tag = resolved
	}

	engine, err := newEngineFromConfig(cfg)
	if err != nil {
		return err
	}

	exists, err := engine.ImageExists(cmd.Context(), tag)
	if err != nil {
		return err
	}
	if !exists {
		return &ExitError{Code: 1, Err: fmt.Errorf("image %s not found locally, run 'labpod build' first", tag)}
	}

	fmt.Printf("%s %s (engine: %s)\n", TitleStyle.Render("Pushing"), CmdStyle.Render(string(tag)), engine.Name())

	opts := container.PushOptions{
		Tag:    tag,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	if err := engine.Push(cmd.Context(), opts); err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Println(SuccessStyle.Render("Push succeeded: ") + string(tag))
	return nil
}
