// SPDX-License-Identifier: MPL-2.0

// Package provision creates OS-level accounts inside a running
// container: a connect group with a fixed GID, an owner user with a
// fixed UID, and ownership of the directories the user needs. The
// system provisioner shells out to the shadow-utils tools (groupadd,
// useradd) so the container's own account database stays the source
// of truth; pure-Go helpers cover the filesystem side (recursive
// chown, bashrc prompt line).
package provision
