// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"reflect"
	"strconv"
	"testing"
)

func validIdentity() Identity {
	return Identity{User: "researcher", UID: "1100", Group: "lab", GID: "1200"}
}

func TestIdentityValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      Identity
		wantErr bool
	}{
		{"valid", validIdentity(), false},
		{"valid without numeric ids", Identity{User: "researcher", Group: "lab"}, false},
		{"empty user", Identity{Group: "lab"}, true},
		{"empty group", Identity{User: "researcher"}, true},
		{"whitespace user", Identity{User: "   ", Group: "lab"}, true},
		{"non-numeric uid", Identity{User: "a", Group: "b", UID: "abc"}, true},
		{"negative gid", Identity{User: "a", Group: "b", GID: "-5"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidIdentity) {
				t.Errorf("error should wrap ErrInvalidIdentity, got %v", err)
			}
		})
	}
}

func TestGroupAddArgs(t *testing.T) {
	p := NewSystemProvisioner()

	args := p.GroupAddArgs(validIdentity())
	want := []string{"--gid", "1200", "lab"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("GroupAddArgs() = %v, want %v", args, want)
	}

	args = p.GroupAddArgs(Identity{User: "researcher", Group: "lab"})
	want = []string{"lab"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("GroupAddArgs() without gid = %v, want %v", args, want)
	}
}

func TestUserAddArgs(t *testing.T) {
	p := NewSystemProvisioner()

	args := p.UserAddArgs(validIdentity())
	want := []string{"--create-home", "--shell", "/bin/bash", "--uid", "1100", "--gid", "lab", "researcher"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("UserAddArgs() = %v, want %v", args, want)
	}

	args = p.UserAddArgs(Identity{User: "researcher", Group: "lab"})
	want = []string{"--create-home", "--shell", "/bin/bash", "--gid", "lab", "researcher"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("UserAddArgs() without uid = %v, want %v", args, want)
	}
}

func TestEnsureGroupInvokesGroupadd(t *testing.T) {
	rec := newMockRecorder()
	p := NewSystemProvisioner(WithExecCommand(rec.commandFunc(t)))

	if err := p.EnsureGroup(context.Background(), validIdentity()); err != nil {
		t.Fatalf("EnsureGroup() error = %v", err)
	}

	inv := rec.last()
	if inv == nil {
		t.Fatal("no command was invoked")
	}
	if inv.name != "groupadd" {
		t.Errorf("command = %q, want groupadd", inv.name)
	}
	want := []string{"--gid", "1200", "lab"}
	if !reflect.DeepEqual(inv.args, want) {
		t.Errorf("args = %v, want %v", inv.args, want)
	}
}

func TestEnsureUserInvokesUseradd(t *testing.T) {
	rec := newMockRecorder()
	p := NewSystemProvisioner(WithExecCommand(rec.commandFunc(t)))

	if err := p.EnsureUser(context.Background(), validIdentity()); err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}

	inv := rec.last()
	if inv == nil {
		t.Fatal("no command was invoked")
	}
	if inv.name != "useradd" {
		t.Errorf("command = %q, want useradd", inv.name)
	}
	want := []string{"--create-home", "--shell", "/bin/bash", "--uid", "1100", "--gid", "lab", "researcher"}
	if !reflect.DeepEqual(inv.args, want) {
		t.Errorf("args = %v, want %v", inv.args, want)
	}
}

func TestEnsureGroupCommandFailure(t *testing.T) {
	rec := newMockRecorder()
	rec.exitCode = 9
	rec.stdout = "groupadd: group 'lab' already exists"
	p := NewSystemProvisioner(WithExecCommand(rec.commandFunc(t)))

	err := p.EnsureGroup(context.Background(), validIdentity())
	if err == nil {
		t.Fatal("EnsureGroup() should fail when groupadd exits non-zero")
	}
	if !errors.Is(err, ErrProvisionFailed) {
		t.Errorf("error should wrap ErrProvisionFailed, got %v", err)
	}
}

func TestEnsureUserRejectsInvalidIdentity(t *testing.T) {
	rec := newMockRecorder()
	p := NewSystemProvisioner(WithExecCommand(rec.commandFunc(t)))

	err := p.EnsureUser(context.Background(), Identity{User: "", Group: "lab"})
	if !errors.Is(err, ErrInvalidIdentity) {
		t.Fatalf("expected ErrInvalidIdentity, got %v", err)
	}
	if len(rec.invocations) != 0 {
		t.Errorf("no command should run for an invalid identity, got %d invocations", len(rec.invocations))
	}
}

// --- mock exec plumbing ---

type mockInvocation struct {
	name string
	args []string
}

type mockRecorder struct {
	invocations []mockInvocation
	exitCode    int
	stdout      string
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{}
}

func (m *mockRecorder) commandFunc(t *testing.T) ExecCommandFunc {
	t.Helper()
	return func(_ context.Context, name string, args ...string) *exec.Cmd {
		m.invocations = append(m.invocations, mockInvocation{name: name, args: args})

		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, args...)
		cmd := exec.Command(os.Args[0], cs...)
		cmd.Env = []string{
			"GO_WANT_HELPER_PROCESS=1",
			fmt.Sprintf("GO_HELPER_EXIT_CODE=%d", m.exitCode),
			fmt.Sprintf("GO_HELPER_STDOUT=%s", m.stdout),
		}
		return cmd
	}
}

func (m *mockRecorder) last() *mockInvocation {
	if len(m.invocations) == 0 {
		return nil
	}
	return &m.invocations[len(m.invocations)-1]
}

// TestHelperProcess is the subprocess body for the mock exec commands.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	if out := os.Getenv("GO_HELPER_STDOUT"); out != "" {
		fmt.Fprint(os.Stdout, out)
	}
	code, _ := strconv.Atoi(os.Getenv("GO_HELPER_EXIT_CODE"))
	os.Exit(code)
}
