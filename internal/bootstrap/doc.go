// SPDX-License-Identifier: MPL-2.0

// Package bootstrap implements the container entrypoint sequence:
// optional repository clone, owner/group account provisioning, secret
// scrubbing, workspace ownership, and the terminal hand-off to the
// notebook server running as the provisioned user. The sequence is
// driven by a one-shot environment snapshot taken at process start, so
// required versus optional inputs are explicit instead of buried in
// conditional environment reads.
package bootstrap
