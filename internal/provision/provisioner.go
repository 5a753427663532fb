// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"labpod-cli/internal/issue"
)

var (
	// ErrInvalidIdentity indicates the user/group fields do not form a
	// provisionable identity.
	ErrInvalidIdentity = errors.New("invalid identity")

	// ErrProvisionFailed indicates an account-creation command failed.
	ErrProvisionFailed = errors.New("provisioning failed")
)

// Identity describes the account to create inside the container. All
// fields originate from environment variables, so the numeric ids are
// carried as strings and validated here.
type Identity struct {
	User  string
	UID   string
	Group string
	GID   string
}

// Validate reports whether the identity can be provisioned. User and
// Group are required; UID and GID, when present, must be non-negative
// integers.
func (id Identity) Validate() error {
	var problems []string
	if strings.TrimSpace(id.User) == "" {
		problems = append(problems, "user name is empty")
	}
	if strings.TrimSpace(id.Group) == "" {
		problems = append(problems, "group name is empty")
	}
	for _, f := range []struct{ name, value string }{
		{"uid", id.UID},
		{"gid", id.GID},
	} {
		if f.value == "" {
			continue
		}
		n, err := strconv.Atoi(f.value)
		if err != nil || n < 0 {
			problems = append(problems, fmt.Sprintf("%s %q is not a non-negative integer", f.name, f.value))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidIdentity, strings.Join(problems, "; "))
	}
	return nil
}

// ExecCommandFunc creates commands for account tooling. Tests inject a
// replacement to observe the exact invocations without touching the
// host account database.
type ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

// Provisioner creates the group and user an identity describes.
type Provisioner interface {
	// EnsureGroup creates the identity's group. Creation is not
	// idempotent at the tool level; callers decide whether an existing
	// group is an error.
	EnsureGroup(ctx context.Context, id Identity) error

	// EnsureUser creates the identity's user with a home directory,
	// primary membership in the identity's group, and no usable login
	// password.
	EnsureUser(ctx context.Context, id Identity) error
}

// SystemProvisioner shells out to groupadd and useradd.
type SystemProvisioner struct {
	execCommand ExecCommandFunc
}

// SystemOption configures a SystemProvisioner.
type SystemOption func(*SystemProvisioner)

// WithExecCommand overrides command creation, mainly for tests.
func WithExecCommand(f ExecCommandFunc) SystemOption {
	return func(p *SystemProvisioner) {
		p.execCommand = f
	}
}

// NewSystemProvisioner returns a provisioner backed by the shadow-utils
// command-line tools.
func NewSystemProvisioner(opts ...SystemOption) *SystemProvisioner {
	p := &SystemProvisioner{
		execCommand: func(ctx context.Context, name string, arg ...string) *exec.Cmd {
			return exec.CommandContext(ctx, name, arg...)
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GroupAddArgs returns the groupadd invocation for the identity,
// excluding the binary name.
func (p *SystemProvisioner) GroupAddArgs(id Identity) []string {
	args := []string{}
	if id.GID != "" {
		args = append(args, "--gid", id.GID)
	}
	return append(args, id.Group)
}

// UserAddArgs returns the useradd invocation for the identity,
// excluding the binary name. The account gets a home directory, a bash
// login shell, and the identity's group as primary group; no password
// is set, so password login stays disabled.
func (p *SystemProvisioner) UserAddArgs(id Identity) []string {
	args := []string{"--create-home", "--shell", "/bin/bash"}
	if id.UID != "" {
		args = append(args, "--uid", id.UID)
	}
	args = append(args, "--gid", id.Group)
	return append(args, id.User)
}

func (p *SystemProvisioner) EnsureGroup(ctx context.Context, id Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}
	return p.run(ctx, "groupadd", p.GroupAddArgs(id), "create group "+id.Group)
}

func (p *SystemProvisioner) EnsureUser(ctx context.Context, id Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}
	return p.run(ctx, "useradd", p.UserAddArgs(id), "create user "+id.User)
}

func (p *SystemProvisioner) run(ctx context.Context, binary string, args []string, operation string) error {
	cmd := p.execCommand(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		cause := fmt.Errorf("%w: %s: %v", ErrProvisionFailed, binary, err)
		if trimmed := strings.TrimSpace(string(output)); trimmed != "" {
			cause = fmt.Errorf("%w: %s", cause, trimmed)
		}
		return issue.NewErrorContext().
			WithOperation(operation).
			WithResource(binary).
			WithSuggestion(fmt.Sprintf("run '%s %s' manually inside the container to inspect the failure", binary, strings.Join(args, " "))).
			Wrap(cause).
			BuildError()
	}
	return nil
}
