// SPDX-License-Identifier: MPL-2.0

// Package manifest reads the pixi dependency manifest baked into the
// platform images. The build command derives image tags from it, and
// 'labpod manifest' exposes it for inspection.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"labpod-cli/internal/issue"

	"github.com/pelletier/go-toml/v2"
)

var (
	// ErrManifestInvalid is the sentinel error wrapped by LintError.
	ErrManifestInvalid = errors.New("invalid pixi manifest")
)

type (
	// Project is the [project] table of a pixi manifest.
	Project struct {
		// Name is the project name (used as the default image name).
		Name string `toml:"name"`
		// Version is the project version (used as the default image tag).
		Version string `toml:"version"`
		// Description is the free-form project description.
		Description string `toml:"description"`
		// Channels are the conda channels packages resolve against.
		Channels []string `toml:"channels"`
		// Platforms are the target platforms (e.g., linux-64).
		Platforms []string `toml:"platforms"`
	}

	// Manifest is the decoded pixi.toml. Dependency values may be plain
	// version strings or tables (version + channel + build), so they decode
	// to any and only the keys are interpreted here.
	Manifest struct {
		Project          Project        `toml:"project"`
		Dependencies     map[string]any `toml:"dependencies"`
		PyPIDependencies map[string]any `toml:"pypi-dependencies"`
		Tasks            map[string]any `toml:"tasks"`

		// Path is the file the manifest was loaded from (not part of TOML).
		Path string `toml:"-"`
	}

	// LintError collects the problems found by Lint.
	// It wraps ErrManifestInvalid for errors.Is() compatibility.
	LintError struct {
		Path     string
		Problems []string
	}
)

// Error implements the error interface for LintError.
func (e *LintError) Error() string {
	return fmt.Sprintf("%s: %d problem(s): %s", e.Path, len(e.Problems), strings.Join(e.Problems, "; "))
}

// Unwrap returns ErrManifestInvalid for errors.Is() compatibility.
func (e *LintError) Unwrap() error { return ErrManifestInvalid }

// Load reads and decodes a pixi manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load pixi manifest").
			WithResource(path).
			WithSuggestion("Check that the manifest path is correct").
			WithSuggestion("Pass --manifest to point at a different file").
			Wrap(err).
			BuildError()
	}

	return Parse(data, path)
}

// Parse decodes pixi manifest bytes. The path is used for error messages only.
func Parse(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			err = fmt.Errorf("%s (at line %d, column %d)", derr.Error(), row, col)
		}
		return nil, issue.NewErrorContext().
			WithOperation("parse pixi manifest").
			WithResource(path).
			WithSuggestion("Check TOML syntax near the reported position").
			Wrap(err).
			BuildError()
	}
	m.Path = path
	return &m, nil
}

// Lint checks the manifest for the fields the platform images rely on.
// Returns nil when the manifest is complete, or a *LintError listing
// every problem found.
func (m *Manifest) Lint() error {
	var problems []string

	if strings.TrimSpace(m.Project.Name) == "" {
		problems = append(problems, "project.name is required")
	}
	if strings.TrimSpace(m.Project.Version) == "" {
		problems = append(problems, "project.version is required")
	}
	if len(m.Project.Channels) == 0 {
		problems = append(problems, "project.channels must list at least one channel")
	}
	if len(m.Project.Platforms) == 0 {
		problems = append(problems, "project.platforms must list at least one platform")
	}
	if len(m.Dependencies) == 0 {
		problems = append(problems, "dependencies table is empty")
	}

	if len(problems) > 0 {
		return &LintError{Path: m.Path, Problems: problems}
	}
	return nil
}

// ImageTag derives the default image tag (name:version) from the manifest.
// An optional registry prefix is prepended when non-empty.
func (m *Manifest) ImageTag(registry string) (string, error) {
	if err := m.Lint(); err != nil {
		return "", err
	}
	tag := m.Project.Name + ":" + m.Project.Version
	if registry != "" {
		tag = strings.TrimSuffix(registry, "/") + "/" + tag
	}
	return tag, nil
}

// DependencyCount returns the number of conda and PyPI dependencies.
func (m *Manifest) DependencyCount() (conda, pypi int) {
	return len(m.Dependencies), len(m.PyPIDependencies)
}
