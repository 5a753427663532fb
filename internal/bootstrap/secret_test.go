// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"os"
	"testing"
)

func TestSecretCaptureAndDrop(t *testing.T) {
	t.Setenv("TEST_SECRET", "hunter2")

	s := CaptureSecret("TEST_SECRET")
	if s.Value() != "hunter2" {
		t.Errorf("Value() = %q, want %q", s.Value(), "hunter2")
	}
	if s.Dropped() {
		t.Error("secret should not be dropped before Drop()")
	}

	s.Drop()

	if s.Value() != "" {
		t.Error("Value() should be empty after Drop()")
	}
	if !s.Dropped() {
		t.Error("Dropped() should report true after Drop()")
	}
	if _, present := os.LookupEnv("TEST_SECRET"); present {
		t.Error("variable should be removed from the environment")
	}
}

func TestSecretDropIsIdempotent(t *testing.T) {
	t.Setenv("TEST_SECRET", "hunter2")

	s := CaptureSecret("TEST_SECRET")
	s.Drop()
	s.Drop()

	if !s.Dropped() {
		t.Error("secret should stay dropped")
	}
}

func TestSecretMissingVariable(t *testing.T) {
	os.Unsetenv("TEST_SECRET_ABSENT")

	s := CaptureSecret("TEST_SECRET_ABSENT")
	if s.Value() != "" {
		t.Errorf("Value() = %q for a missing variable", s.Value())
	}
	s.Drop()
}

func TestEnvironmentCapture(t *testing.T) {
	t.Setenv(EnvOwner, "alice")
	t.Setenv(EnvOwnerUID, "1100")
	t.Setenv(EnvConnectGroup, "lab")
	t.Setenv(EnvConnectGID, "1200")
	t.Setenv(EnvAPIToken, "secret")
	t.Setenv(EnvJupyterToken, "tok")

	env := CaptureEnvironment([]string{"https://example.com/repo.git", "ignored"})

	if env.Owner != "alice" || env.ConnectGroup != "lab" {
		t.Errorf("identity fields = %q/%q", env.Owner, env.ConnectGroup)
	}
	if env.RepoURL != "https://example.com/repo.git" {
		t.Errorf("RepoURL = %q", env.RepoURL)
	}
	if !env.ProvisioningRequested() {
		t.Error("provisioning should be requested when both identity vars are set")
	}

	id := env.Identity()
	if id.User != "alice" || id.UID != "1100" || id.Group != "lab" || id.GID != "1200" {
		t.Errorf("Identity() = %+v", id)
	}
}

func TestProvisioningRequested(t *testing.T) {
	tests := []struct {
		name         string
		owner, group string
		want         bool
	}{
		{"both set", "alice", "lab", true},
		{"owner only", "alice", "", false},
		{"group only", "", "lab", false},
		{"neither", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := &Environment{Owner: tt.owner, ConnectGroup: tt.group}
			if got := env.ProvisioningRequested(); got != tt.want {
				t.Errorf("ProvisioningRequested() = %v, want %v", got, tt.want)
			}
		})
	}
}
