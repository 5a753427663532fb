// SPDX-License-Identifier: MPL-2.0

package container

import (
	"labpod-cli/internal/issue"
)

// buildContainerError wraps an image build failure with actionable context.
func buildContainerError(engine string, opts BuildOptions, err error) error {
	return issue.NewErrorContext().
		WithOperation("build image").
		WithResource(string(opts.Tag)).
		WithSuggestion("Check that the " + engine + " daemon is running").
		WithSuggestion("Inspect the build output above for Dockerfile errors").
		WithSuggestion("Run 'labpod doctor' to verify the build environment").
		Wrap(err).
		BuildError()
}

// pushContainerError wraps an image push failure with actionable context.
func pushContainerError(engine string, opts PushOptions, err error) error {
	return issue.NewErrorContext().
		WithOperation("push image").
		WithResource(string(opts.Tag)).
		WithSuggestion("Check that you are logged in to the registry ('" + engine + " login')").
		WithSuggestion("Verify the tag includes the intended registry prefix").
		Wrap(err).
		BuildError()
}
