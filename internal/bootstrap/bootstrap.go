// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"

	"labpod-cli/internal/config"
	"labpod-cli/internal/issue"
	"labpod-cli/internal/jupyter"
	"labpod-cli/internal/provision"
)

// jupyterSubcommand selects the server flavor launched at hand-off.
const jupyterSubcommand = "lab"

// HandoffFunc transfers control to the notebook server. On platforms
// with exec semantics it only returns on failure; elsewhere it runs the
// server to completion and reports its exit status.
type HandoffFunc func(argv []string, env []string) error

// Bootstrap runs the entrypoint sequence against a configuration and an
// environment snapshot.
type Bootstrap struct {
	cfg         *config.Config
	env         *Environment
	provisioner provision.Provisioner
	execCommand provision.ExecCommandFunc
	handoff     HandoffFunc
	logger      *log.Logger
}

// Option configures a Bootstrap.
type Option func(*Bootstrap)

// WithProvisioner overrides the account provisioner.
func WithProvisioner(p provision.Provisioner) Option {
	return func(b *Bootstrap) { b.provisioner = p }
}

// WithExecCommand overrides command creation for the clone step.
func WithExecCommand(f provision.ExecCommandFunc) Option {
	return func(b *Bootstrap) { b.execCommand = f }
}

// WithHandoff overrides the terminal hand-off.
func WithHandoff(f HandoffFunc) Option {
	return func(b *Bootstrap) { b.handoff = f }
}

// WithLogger overrides the step logger.
func WithLogger(l *log.Logger) Option {
	return func(b *Bootstrap) { b.logger = l }
}

// New assembles a Bootstrap with production defaults: the shadow-utils
// provisioner, real command execution, and a process-replacing hand-off.
func New(cfg *config.Config, env *Environment, opts ...Option) *Bootstrap {
	b := &Bootstrap{
		cfg:         cfg,
		env:         env,
		provisioner: provision.NewSystemProvisioner(),
		execCommand: func(ctx context.Context, name string, arg ...string) *exec.Cmd {
			return exec.CommandContext(ctx, name, arg...)
		},
		handoff: ExecHandoff,
		logger:  log.NewWithOptions(os.Stderr, log.Options{Prefix: "entrypoint"}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run executes the entrypoint sequence. Clone, prompt, chown, and
// chdir failures are logged and skipped; a failed group or user
// creation aborts the launch, since the server cannot run as an
// account that does not exist. When provisioning is not requested the
// sequence is a no-op and no server is launched.
func (b *Bootstrap) Run(ctx context.Context) error {
	if b.env.RepoURL != "" {
		if err := b.cloneRepository(ctx); err != nil {
			b.logger.Warn("repository clone failed, continuing", "url", b.env.RepoURL, "error", err)
		}
	}

	if !b.env.ProvisioningRequested() {
		b.logger.Debug("owner or connect group not set, skipping provisioning and launch")
		return nil
	}

	// The secret must not survive past this point no matter how the
	// rest of the sequence ends.
	defer b.env.APIToken.Drop()

	id := b.env.Identity()
	if err := b.provisioner.EnsureGroup(ctx, id); err != nil {
		return issue.WrapWithContext(err, "provision group", id.Group)
	}
	if err := b.provisioner.EnsureUser(ctx, id); err != nil {
		return issue.WrapWithContext(err, "provision user", id.User)
	}
	b.env.APIToken.Drop()
	b.logger.Info("provisioned account", "user", id.User, "uid", id.UID, "group", id.Group, "gid", id.GID)

	dataDir := provision.DataDir(string(b.cfg.Paths.DataRoot), b.env.Owner)
	if err := os.Setenv(EnvOwnerData, dataDir); err != nil {
		return issue.WrapWithContext(err, "export owner data path", dataDir)
	}

	if line, err := provision.PromptLine(b.env.Owner); err != nil {
		b.logger.Warn("prompt line generation failed, continuing", "error", err)
	} else if err := provision.AppendLine(string(b.cfg.Paths.Bashrc), line); err != nil {
		b.logger.Warn("prompt line append failed, continuing", "path", b.cfg.Paths.Bashrc, "error", err)
	}

	if err := provision.ChownRecursive(string(b.cfg.Paths.Workspace), id); err != nil {
		b.logger.Warn("workspace chown failed, continuing", "path", b.cfg.Paths.Workspace, "error", err)
	}

	home := provision.HomeDir(string(b.cfg.Paths.HomeRoot), id)
	if err := os.Chdir(home); err != nil {
		b.logger.Warn("chdir to home failed, continuing", "path", home, "error", err)
	}

	spec := jupyter.LaunchSpec{
		Binary:      b.cfg.Jupyter.Binary,
		Subcommand:  jupyterSubcommand,
		User:        b.env.Owner,
		NotebookDir: home,
		ConfigFile:  string(b.cfg.Jupyter.ConfigFile),
		Token:       b.env.JupyterToken,
		ClearEnv:    b.cfg.Jupyter.ClearEnv,
	}
	argv, err := spec.Argv()
	if err != nil {
		return issue.WrapWithOperation(err, "build notebook server invocation")
	}
	env := spec.Env(os.Environ())

	b.logger.Info("handing off to notebook server", "user", b.env.Owner, "notebook_dir", home)
	return b.handoff(argv, env)
}

func (b *Bootstrap) cloneRepository(ctx context.Context) error {
	workspace := string(b.cfg.Paths.Workspace)
	cmd := b.execCommand(ctx, "git", "clone", b.env.RepoURL, workspace)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git clone into %s: %w: %s", workspace, err, output)
	}
	b.logger.Info("cloned repository", "url", b.env.RepoURL, "into", workspace)
	return nil
}
