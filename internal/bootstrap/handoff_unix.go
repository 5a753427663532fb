// SPDX-License-Identifier: MPL-2.0

//go:build unix

package bootstrap

import (
	"os/exec"
	"syscall"

	"labpod-cli/internal/issue"
)

// ExecHandoff replaces the current process with argv via exec. It only
// returns on failure.
func ExecHandoff(argv []string, env []string) error {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return issue.WrapWithContext(err, "locate notebook server binary", argv[0])
	}
	if err := syscall.Exec(path, argv, env); err != nil {
		return issue.WrapWithContext(err, "exec notebook server", path)
	}
	return nil
}
