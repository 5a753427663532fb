// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ContainerEnginePodman uses Podman as the container runtime.
	ContainerEnginePodman ContainerEngine = "podman"
	// ContainerEngineDocker uses Docker as the container runtime.
	ContainerEngineDocker ContainerEngine = "docker"
	// ContainerEngineAuto picks whichever engine is available, Docker first.
	ContainerEngineAuto ContainerEngine = "auto"
)

var (
	// ErrInvalidContainerEngine is returned when a ContainerEngine value is not recognized.
	ErrInvalidContainerEngine = errors.New("invalid container engine")
	// ErrInvalidAbsoluteDirPath is the sentinel error wrapped by InvalidAbsoluteDirPathError.
	ErrInvalidAbsoluteDirPath = errors.New("invalid absolute directory path")
	// ErrInvalidAbsoluteFilePath is the sentinel error wrapped by InvalidAbsoluteFilePathError.
	ErrInvalidAbsoluteFilePath = errors.New("invalid absolute file path")
	// ErrInvalidPathsConfig is the sentinel error wrapped by InvalidPathsConfigError.
	ErrInvalidPathsConfig = errors.New("invalid paths config")
	// ErrInvalidJupyterConfig is the sentinel error wrapped by InvalidJupyterConfigError.
	ErrInvalidJupyterConfig = errors.New("invalid jupyter config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ContainerEngine specifies which container runtime to use for image builds.
	ContainerEngine string

	// InvalidContainerEngineError is returned when a ContainerEngine value is not recognized.
	// It wraps ErrInvalidContainerEngine for errors.Is() compatibility.
	InvalidContainerEngineError struct {
		Value ContainerEngine
	}

	// AbsoluteDirPath represents an absolute path to a directory inside the image.
	// A valid path must be non-empty, not whitespace-only, and start with '/'.
	AbsoluteDirPath string

	// InvalidAbsoluteDirPathError is returned when an AbsoluteDirPath value is
	// empty, whitespace-only, or relative. It wraps ErrInvalidAbsoluteDirPath.
	InvalidAbsoluteDirPathError struct {
		Value AbsoluteDirPath
	}

	// AbsoluteFilePath represents an absolute path to a file inside the image.
	// A valid path must be non-empty, not whitespace-only, and start with '/'.
	AbsoluteFilePath string

	// InvalidAbsoluteFilePathError is returned when an AbsoluteFilePath value is
	// empty, whitespace-only, or relative. It wraps ErrInvalidAbsoluteFilePath.
	InvalidAbsoluteFilePathError struct {
		Value AbsoluteFilePath
	}

	// InvalidPathsConfigError is returned when a PathsConfig has invalid fields.
	// It wraps ErrInvalidPathsConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidPathsConfigError struct {
		FieldErrors []error
	}

	// InvalidJupyterConfigError is returned when a JupyterConfig has invalid fields.
	// It wraps ErrInvalidJupyterConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidJupyterConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// PathsConfig holds the fixed filesystem locations the entrypoint touches.
	// Defaults match the platform image layout; overridable for tests and
	// non-standard images.
	PathsConfig struct {
		// Workspace is the shared workspace directory (clone destination, chown target).
		Workspace AbsoluteDirPath `json:"workspace" mapstructure:"workspace"`
		// DataRoot is the root under which per-user data directories live.
		DataRoot AbsoluteDirPath `json:"data_root" mapstructure:"data_root"`
		// Bashrc is the system-wide shell init file the prompt line is appended to.
		Bashrc AbsoluteFilePath `json:"bashrc" mapstructure:"bashrc"`
		// HomeRoot is the directory under which provisioned user homes are created.
		HomeRoot AbsoluteDirPath `json:"home_root" mapstructure:"home_root"`
	}

	// JupyterConfig configures the notebook server launched by the entrypoint.
	JupyterConfig struct {
		// Binary is the notebook server executable.
		Binary string `json:"binary" mapstructure:"binary"`
		// ConfigFile is the fixed server configuration file path.
		ConfigFile AbsoluteFilePath `json:"config_file" mapstructure:"config_file"`
		// ClearEnv lists environment variables cleared before the launch so the
		// provisioning context cannot leak notebook configuration into the session.
		ClearEnv []string `json:"clear_env" mapstructure:"clear_env"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// BuildConfig configures image builds.
	BuildConfig struct {
		// Registry is the default registry prefix for push targets.
		Registry string `json:"registry" mapstructure:"registry"`
		// Manifest is the pixi manifest path used to derive image tags.
		Manifest string `json:"manifest" mapstructure:"manifest"`
	}

	// Config holds the application configuration.
	Config struct {
		// ContainerEngine specifies whether to use "podman", "docker", or "auto"
		ContainerEngine ContainerEngine `json:"container_engine" mapstructure:"container_engine"`
		// Paths configures the filesystem locations the entrypoint touches
		Paths PathsConfig `json:"paths" mapstructure:"paths"`
		// Jupyter configures the launched notebook server
		Jupyter JupyterConfig `json:"jupyter" mapstructure:"jupyter"`
		// Build configures image builds
		Build BuildConfig `json:"build" mapstructure:"build"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}
)

// String returns the string representation of the ContainerEngine.
func (ce ContainerEngine) String() string { return string(ce) }

// IsValid returns whether the ContainerEngine is one of the defined engine types,
// and a list of validation errors if it is not.
func (ce ContainerEngine) IsValid() (bool, []error) {
	switch ce {
	case ContainerEnginePodman, ContainerEngineDocker, ContainerEngineAuto:
		return true, nil
	default:
		return false, []error{&InvalidContainerEngineError{Value: ce}}
	}
}

// Error implements the error interface for InvalidContainerEngineError.
func (e *InvalidContainerEngineError) Error() string {
	return fmt.Sprintf("invalid container engine %q (valid: podman, docker, auto)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidContainerEngineError) Unwrap() error {
	return ErrInvalidContainerEngine
}

// String returns the string representation of the AbsoluteDirPath.
func (p AbsoluteDirPath) String() string { return string(p) }

// IsValid returns whether the AbsoluteDirPath is valid.
// A valid path must be non-empty, not whitespace-only, and absolute.
func (p AbsoluteDirPath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" || !strings.HasPrefix(string(p), "/") {
		return false, []error{&InvalidAbsoluteDirPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidAbsoluteDirPathError.
func (e *InvalidAbsoluteDirPathError) Error() string {
	return fmt.Sprintf("invalid absolute directory path %q: must be non-empty and start with '/'", e.Value)
}

// Unwrap returns ErrInvalidAbsoluteDirPath for errors.Is() compatibility.
func (e *InvalidAbsoluteDirPathError) Unwrap() error { return ErrInvalidAbsoluteDirPath }

// String returns the string representation of the AbsoluteFilePath.
func (p AbsoluteFilePath) String() string { return string(p) }

// IsValid returns whether the AbsoluteFilePath is valid.
// A valid path must be non-empty, not whitespace-only, and absolute.
func (p AbsoluteFilePath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" || !strings.HasPrefix(string(p), "/") {
		return false, []error{&InvalidAbsoluteFilePathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidAbsoluteFilePathError.
func (e *InvalidAbsoluteFilePathError) Error() string {
	return fmt.Sprintf("invalid absolute file path %q: must be non-empty and start with '/'", e.Value)
}

// Unwrap returns ErrInvalidAbsoluteFilePath for errors.Is() compatibility.
func (e *InvalidAbsoluteFilePathError) Unwrap() error { return ErrInvalidAbsoluteFilePath }

// IsValid returns whether the PathsConfig has valid fields.
// It delegates to each path's IsValid().
func (c PathsConfig) IsValid() (bool, []error) {
	var errs []error
	for _, p := range []AbsoluteDirPath{c.Workspace, c.DataRoot, c.HomeRoot} {
		if valid, fieldErrs := p.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.Bashrc.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidPathsConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPathsConfigError.
func (e *InvalidPathsConfigError) Error() string {
	return fmt.Sprintf("invalid paths config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidPathsConfig for errors.Is() compatibility.
func (e *InvalidPathsConfigError) Unwrap() error { return ErrInvalidPathsConfig }

// IsValid returns whether the JupyterConfig has valid fields.
// Binary must be non-empty; ConfigFile must be a valid absolute path.
// ClearEnv entries need no validation (any variable name may be cleared).
func (c JupyterConfig) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.Binary) == "" {
		errs = append(errs, fmt.Errorf("jupyter binary must be non-empty"))
	}
	if valid, fieldErrs := c.ConfigFile.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidJupyterConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidJupyterConfigError.
func (e *InvalidJupyterConfigError) Error() string {
	return fmt.Sprintf("invalid jupyter config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidJupyterConfig for errors.Is() compatibility.
func (e *InvalidJupyterConfigError) Unwrap() error { return ErrInvalidJupyterConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to ContainerEngine.IsValid(), Paths.IsValid(), and
// Jupyter.IsValid(). Build and UI have only free-form/bool fields and
// need no validation.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ContainerEngine.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Paths.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Jupyter.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration. The path and jupyter
// defaults match the platform image layout.
func DefaultConfig() *Config {
	return &Config{
		ContainerEngine: ContainerEngineAuto,
		Paths: PathsConfig{
			Workspace: "/workspace",
			DataRoot:  "/data",
			Bashrc:    "/etc/bash.bashrc",
			HomeRoot:  "/home",
		},
		Jupyter: JupyterConfig{
			Binary:     "jupyter",
			ConfigFile: "/etc/jupyter/jupyter_lab_config.py",
			ClearEnv:   []string{"JUPYTER_PATH", "JUPYTER_CONFIG_DIR"},
		},
		Build: BuildConfig{
			Registry: "",
			Manifest: "pixi.toml",
		},
		UI: UIConfig{
			Verbose: false,
		},
	}
}
