// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"labpod-cli/internal/issue"
)

// PromptLine returns the bashrc line that sets an interactive prompt
// showing user, host and working directory for the given owner. The
// owner value is shell-quoted before interpolation so arbitrary
// identity strings cannot break out of the assignment.
func PromptLine(owner string) (string, error) {
	quoted, err := syntax.Quote(owner+`@\h:\w\$ `, syntax.LangBash)
	if err != nil {
		return "", fmt.Errorf("quote prompt for %q: %w", owner, err)
	}
	line := "export PS1=" + quoted
	// A line that does not parse as bash would corrupt every future
	// interactive shell in the container.
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	if _, err := parser.Parse(strings.NewReader(line), "bashrc"); err != nil {
		return "", fmt.Errorf("generated prompt line does not parse: %w", err)
	}
	return line, nil
}

// AppendLine appends line (plus a trailing newline) to the file at
// path, creating the file if it does not exist.
func AppendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return issue.WrapWithContext(err, "append to shell init file", path)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return issue.WrapWithContext(err, "append to shell init file", path)
	}
	if err := f.Close(); err != nil {
		return issue.WrapWithContext(err, "append to shell init file", path)
	}
	return nil
}

// ChownRecursive changes ownership of root and everything under it to
// the identity's numeric uid and gid. Symlinks are re-owned without
// being followed. The walk continues past per-entry failures and
// reports the first error encountered, matching chown -R semantics.
func ChownRecursive(root string, id Identity) error {
	uid, gid, err := numericIDs(id)
	if err != nil {
		return err
	}

	var firstErr error
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return nil
		}
		if err := os.Lchown(path, uid, gid); err != nil && firstErr == nil {
			firstErr = err
		}
		return nil
	})
	if walkErr != nil {
		return issue.WrapWithContext(walkErr, "change ownership", root)
	}
	if firstErr != nil {
		return issue.WrapWithContext(firstErr, "change ownership", root)
	}
	return nil
}

// HomeDir returns the created user's home directory under homeRoot.
func HomeDir(homeRoot string, id Identity) string {
	return filepath.Join(homeRoot, id.User)
}

// DataDir returns the per-user data directory under dataRoot.
func DataDir(dataRoot, owner string) string {
	return filepath.Join(dataRoot, owner)
}

func numericIDs(id Identity) (uid, gid int, err error) {
	if id.UID == "" || id.GID == "" {
		return 0, 0, fmt.Errorf("%w: numeric uid and gid are required to change ownership", ErrInvalidIdentity)
	}
	uid, err = strconv.Atoi(id.UID)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: uid %q: %v", ErrInvalidIdentity, id.UID, err)
	}
	gid, err = strconv.Atoi(id.GID)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: gid %q: %v", ErrInvalidIdentity, id.GID, err)
	}
	return uid, gid, nil
}
