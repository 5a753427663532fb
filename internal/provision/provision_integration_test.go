// SPDX-License-Identifier: MPL-2.0

// Integration tests that provision a real account inside a throwaway
// container. They require Docker or Podman and are skipped in short mode.
package provision

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"

	"labpod-cli/internal/container"
)

// checkTestcontainersAvailable safely checks if testcontainers can be used.
func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

func TestProvision_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	engine, err := container.AutoDetectEngine()
	if err != nil {
		t.Skipf("skipping provisioning integration tests: no container engine available: %v", err)
	}
	if !engine.Available() {
		t.Skip("skipping provisioning integration tests: container engine not available")
	}
	if !checkTestcontainersAvailable() {
		t.Skip("skipping provisioning integration tests: testcontainers provider not available")
	}

	t.Run("GroupAndUserCreated", func(t *testing.T) { testGroupAndUserCreated(t, engine) })
	t.Run("HomeDirectoryCreated", func(t *testing.T) { testHomeDirectoryCreated(t, engine) })
}

// runScript executes a shell script in a throwaway debian container and
// returns its combined output.
func runScript(t *testing.T, engine container.Engine, script string) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var stdout, stderr bytes.Buffer
	result, err := engine.Run(ctx, container.RunOptions{
		Image:   container.ImageTag("debian:bookworm-slim"),
		Command: []string{"bash", "-c", script},
		Remove:  true,
		Stdout:  &stdout,
		Stderr:  &stderr,
	})
	if err != nil {
		t.Fatalf("container run failed: %v, stderr: %s", err, stderr.String())
	}
	if result.ExitCode != 0 {
		t.Fatalf("script exited %d, stderr: %s", result.ExitCode, stderr.String())
	}
	return stdout.String() + stderr.String()
}

func testGroupAndUserCreated(t *testing.T, engine container.Engine) {
	id := Identity{User: "researcher", UID: "1100", Group: "lab", GID: "1200"}
	p := NewSystemProvisioner()

	script := strings.Join([]string{
		"groupadd " + strings.Join(p.GroupAddArgs(id), " "),
		"useradd " + strings.Join(p.UserAddArgs(id), " "),
		"id researcher",
	}, " && ")

	output := runScript(t, engine, script)
	if !strings.Contains(output, "uid=1100(researcher)") {
		t.Errorf("user missing expected uid, got: %q", output)
	}
	if !strings.Contains(output, "gid=1200(lab)") {
		t.Errorf("user missing expected primary group, got: %q", output)
	}
}

func testHomeDirectoryCreated(t *testing.T, engine container.Engine) {
	id := Identity{User: "researcher", UID: "1100", Group: "lab", GID: "1200"}
	p := NewSystemProvisioner()

	script := strings.Join([]string{
		"groupadd " + strings.Join(p.GroupAddArgs(id), " "),
		"useradd " + strings.Join(p.UserAddArgs(id), " "),
		"stat -c '%U %G' /home/researcher",
	}, " && ")

	output := runScript(t, engine, script)
	if !strings.Contains(output, "researcher lab") {
		t.Errorf("home directory not owned by the new user, got: %q", output)
	}
}
