// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"labpod-cli/internal/bootstrap"
	"labpod-cli/internal/config"
)

var entrypointCmd = &cobra.Command{
	Use:   "entrypoint [repository-url]",
	Short: "Run the container boot sequence",
	Long: `Run the container boot sequence.

This is the image's ENTRYPOINT. It optionally clones a repository into
the workspace, provisions the owner's account from the OWNER /
CONNECT_GROUP environment variables, scrubs the platform API token,
and replaces itself with a Jupyter server running as the provisioned
user. When the identity variables are absent the sequence provisions
nothing and exits without launching a server.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return runEntrypoint(cmd.Context(), cfg, args)
	},
}

func runEntrypoint(ctx context.Context, cfg *config.Config, args []string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "entrypoint"})
	if GetVerbose() {
		logger.SetLevel(log.DebugLevel)
	}

	env := bootstrap.CaptureEnvironment(args)
	b := bootstrap.New(cfg, env, bootstrap.WithLogger(logger))

	if err := b.Run(ctx); err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	return nil
}
