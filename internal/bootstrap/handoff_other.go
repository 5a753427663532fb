// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"labpod-cli/internal/issue"
)

// ExitStatusError carries the notebook server's exit status so callers
// can propagate it as the process exit code.
type ExitStatusError struct {
	Code int
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("notebook server exited with status %d", e.Code)
}

// ExecHandoff approximates exec on platforms without it: the server
// runs as a child with inherited stdio, and a non-zero exit surfaces
// as an ExitStatusError.
func ExecHandoff(argv []string, env []string) error {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return issue.WrapWithContext(err, "locate notebook server binary", argv[0])
	}

	cmd := exec.Command(path, argv[1:]...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitStatusError{Code: exitErr.ExitCode()}
		}
		return issue.WrapWithContext(err, "run notebook server", path)
	}
	return nil
}
