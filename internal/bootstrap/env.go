// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"os"

	"labpod-cli/internal/provision"
)

// Environment variable names consumed by the entrypoint sequence.
const (
	EnvOwner        = "OWNER"
	EnvOwnerUID     = "OWNER_UID"
	EnvConnectGroup = "CONNECT_GROUP"
	EnvConnectGID   = "CONNECT_GID"
	EnvAPIToken     = "API_TOKEN"
	EnvJupyterToken = "JUPYTER_TOKEN"
	EnvOwnerData    = "OWNER_DATA"
)

// Environment is the one-shot snapshot of everything the entrypoint
// reads from its process environment and arguments. It is assembled
// exactly once at startup; the sequence itself never consults
// os.Getenv again.
type Environment struct {
	// Owner is the username to provision. Empty disables provisioning.
	Owner string

	// OwnerUID is the numeric id for the created user (optional).
	OwnerUID string

	// ConnectGroup is the group to create. Empty disables provisioning.
	ConnectGroup string

	// ConnectGID is the numeric id for the created group (optional).
	ConnectGID string

	// APIToken is the platform secret scrubbed once provisioning begins.
	APIToken *Secret

	// JupyterToken authenticates notebook clients.
	JupyterToken string

	// RepoURL is the optional positional argument naming a repository
	// to clone into the workspace.
	RepoURL string
}

// CaptureEnvironment snapshots the process environment and the
// entrypoint's positional arguments.
func CaptureEnvironment(args []string) *Environment {
	env := &Environment{
		Owner:        os.Getenv(EnvOwner),
		OwnerUID:     os.Getenv(EnvOwnerUID),
		ConnectGroup: os.Getenv(EnvConnectGroup),
		ConnectGID:   os.Getenv(EnvConnectGID),
		APIToken:     CaptureSecret(EnvAPIToken),
		JupyterToken: os.Getenv(EnvJupyterToken),
	}
	if len(args) > 0 {
		env.RepoURL = args[0]
	}
	return env
}

// ProvisioningRequested reports whether both identity variables are
// present. When either is missing the sequence neither provisions nor
// launches anything.
func (e *Environment) ProvisioningRequested() bool {
	return e.Owner != "" && e.ConnectGroup != ""
}

// Identity returns the OS identity to provision.
func (e *Environment) Identity() provision.Identity {
	return provision.Identity{
		User:  e.Owner,
		UID:   e.OwnerUID,
		Group: e.ConnectGroup,
		GID:   e.ConnectGID,
	}
}
