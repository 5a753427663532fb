// SPDX-License-Identifier: MPL-2.0

// Package jupyter builds the process invocation for the notebook
// server that terminates the entrypoint sequence. It only constructs
// argv and environment; the hand-off itself lives with the caller.
package jupyter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLaunchSpec indicates a launch spec missing required fields.
var ErrInvalidLaunchSpec = errors.New("invalid launch spec")

// LaunchSpec describes how to start the notebook server.
type LaunchSpec struct {
	// Binary is the notebook server executable.
	Binary string

	// Subcommand selects the server flavor (typically "lab").
	Subcommand string

	// User is the OS account to run the server as. Empty means the
	// current user.
	User string

	// NotebookDir is the server's working root, normally the
	// provisioned user's home directory.
	NotebookDir string

	// ConfigFile is the server configuration file path.
	ConfigFile string

	// Token authenticates clients. It is passed under both the legacy
	// and the current configuration key so either server generation
	// honors it.
	Token string

	// ClearEnv lists environment variables that must not reach the
	// server process.
	ClearEnv []string
}

// Validate reports whether the launch spec can produce an invocation.
func (s LaunchSpec) Validate() error {
	var problems []string
	if s.Binary == "" {
		problems = append(problems, "binary is empty")
	}
	if s.NotebookDir == "" {
		problems = append(problems, "notebook dir is empty")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidLaunchSpec, strings.Join(problems, "; "))
	}
	return nil
}

// Argv returns the full command line for the server, including the
// privilege-drop wrapper when a target user is set.
func (s LaunchSpec) Argv() ([]string, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	argv := []string{}
	if s.User != "" {
		argv = append(argv, "runuser", "--user", s.User, "--")
	}
	argv = append(argv, s.Binary)
	if s.Subcommand != "" {
		argv = append(argv, s.Subcommand)
	}
	argv = append(argv,
		"--notebook-dir="+s.NotebookDir,
		"--no-browser",
	)
	if s.ConfigFile != "" {
		argv = append(argv, "--config="+s.ConfigFile)
	}
	if s.Token != "" {
		argv = append(argv,
			"--NotebookApp.token="+s.Token,
			"--ServerApp.token="+s.Token,
		)
	}
	return argv, nil
}

// Env filters base (entries in "KEY=VALUE" form) down to the
// environment the server should inherit, dropping every variable named
// in ClearEnv.
func (s LaunchSpec) Env(base []string) []string {
	if len(s.ClearEnv) == 0 {
		return base
	}
	cleared := make(map[string]struct{}, len(s.ClearEnv))
	for _, name := range s.ClearEnv {
		cleared[name] = struct{}{}
	}

	out := make([]string, 0, len(base))
	for _, entry := range base {
		name, _, _ := strings.Cut(entry, "=")
		if _, drop := cleared[name]; drop {
			continue
		}
		out = append(out, entry)
	}
	return out
}
