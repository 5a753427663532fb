// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"labpod-cli/internal/config"
	"labpod-cli/internal/container"
	"labpod-cli/internal/manifest"
)

var (
	buildManifestPath string
	buildDockerfile   string
	buildContextDir   string
	buildNoCache      bool
	buildArgs         []string

	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Build the platform image for a pixi manifest",
		Long: `Build the platform image for a pixi manifest.

The image tag is derived from the manifest's project name and version,
prefixed with the configured registry. The build runs through Docker or
Podman, whichever the configuration selects.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runBuild(cmd, cfg)
		},
	}
)

func init() {
	buildCmd.Flags().StringVarP(&buildManifestPath, "manifest", "m", "", "pixi manifest path (default from config)")
	buildCmd.Flags().StringVarP(&buildDockerfile, "file", "f", "Dockerfile", "Dockerfile path relative to the context")
	buildCmd.Flags().StringVar(&buildContextDir, "context", ".", "build context directory")
	buildCmd.Flags().BoolVar(&buildNoCache, "no-cache", false, "disable the build cache")
	buildCmd.Flags().StringArrayVar(&buildArgs, "build-arg", nil, "build-time variable (KEY=VALUE)")
}

func runBuild(cmd *cobra.Command, cfg *config.Config) error {
	tag, err := resolveImageTag(cfg)
	if err != nil {
		return err
	}

	engine, err := newEngineFromConfig(cfg)
	if err != nil {
		return err
	}

	args, err := parseBuildArgs(buildArgs)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s (engine: %s)\n", TitleStyle.Render("Building"), CmdStyle.Render(string(tag)), engine.Name())

	opts := container.BuildOptions{
		ContextDir: buildContextDir,
		Dockerfile: buildDockerfile,
		Tag:        tag,
		BuildArgs:  args,
		NoCache:    buildNoCache,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
	if err := engine.Build(cmd.Context(), opts); err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Println(SuccessStyle.Render("Build succeeded: ") + string(tag))
	return nil
}

// resolveImageTag loads the manifest and derives the image tag from it.
func resolveImageTag(cfg *config.Config) (container.ImageTag, error) {
	path := buildManifestPath
	if path == "" {
		path = cfg.Build.Manifest
	}

	m, err := manifest.Load(path)
	if err != nil {
		return "", err
	}
	if err := m.Lint(); err != nil {
		return "", err
	}

	raw, err := m.ImageTag(cfg.Build.Registry)
	if err != nil {
		return "", err
	}
	tag := container.ImageTag(raw)
	if err := tag.Validate(); err != nil {
		return "", err
	}
	return tag, nil
}

// newEngineFromConfig creates the container engine the config selects.
func newEngineFromConfig(cfg *config.Config) (container.Engine, error) {
	switch cfg.ContainerEngine {
	case config.ContainerEngineDocker:
		return container.NewEngine(container.EngineTypeDocker)
	case config.ContainerEnginePodman:
		return container.NewEngine(container.EngineTypePodman)
	default:
		return container.AutoDetectEngine()
	}
}

// parseBuildArgs splits KEY=VALUE flags into a map.
func parseBuildArgs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid build arg %q, expected KEY=VALUE", pair)
		}
		out[key] = value
	}
	return out, nil
}
