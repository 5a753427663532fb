// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"labpod-cli/internal/config"
	"labpod-cli/internal/provision"
	"labpod-cli/internal/testutil"
)

// fakeProvisioner records calls and returns configured errors.
type fakeProvisioner struct {
	groupCalls []provision.Identity
	userCalls  []provision.Identity
	groupErr   error
	userErr    error
}

func (f *fakeProvisioner) EnsureGroup(_ context.Context, id provision.Identity) error {
	f.groupCalls = append(f.groupCalls, id)
	return f.groupErr
}

func (f *fakeProvisioner) EnsureUser(_ context.Context, id provision.Identity) error {
	f.userCalls = append(f.userCalls, id)
	return f.userErr
}

// handoffRecorder captures the terminal hand-off instead of exec'ing.
type handoffRecorder struct {
	called bool
	argv   []string
	env    []string
	err    error
}

func (h *handoffRecorder) fn(argv []string, env []string) error {
	h.called = true
	h.argv = argv
	h.env = env
	return h.err
}

// testConfig returns a config whose filesystem paths live under a
// temp dir so the sequence can touch them without privileges.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	workspace := filepath.Join(root, "workspace")
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		t.Fatal(err)
	}
	home := filepath.Join(root, "home")
	if err := os.MkdirAll(filepath.Join(home, "researcher"), 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Paths.Workspace = config.AbsoluteDirPath(workspace)
	cfg.Paths.DataRoot = config.AbsoluteDirPath(filepath.Join(root, "data"))
	cfg.Paths.Bashrc = config.AbsoluteFilePath(filepath.Join(root, "bash.bashrc"))
	cfg.Paths.HomeRoot = config.AbsoluteDirPath(home)
	return cfg
}

// setEntrypointEnv sets the provisioning environment for one test. The
// identity's uid/gid are the current process's so the chown step works
// unprivileged.
func setEntrypointEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvOwner, "researcher")
	t.Setenv(EnvOwnerUID, strconv.Itoa(os.Getuid()))
	t.Setenv(EnvConnectGroup, "lab")
	t.Setenv(EnvConnectGID, strconv.Itoa(os.Getgid()))
	t.Setenv(EnvAPIToken, "super-secret")
	t.Setenv(EnvJupyterToken, "notebook-token")
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func restoreWd(t *testing.T) {
	t.Helper()
	t.Cleanup(testutil.MustChdir(t, t.TempDir()))
}

func TestRunSkipsEverythingWithoutIdentity(t *testing.T) {
	t.Setenv(EnvOwner, "")
	t.Setenv(EnvConnectGroup, "")

	fake := &fakeProvisioner{}
	rec := &handoffRecorder{}
	b := New(testConfig(t), CaptureEnvironment(nil),
		WithProvisioner(fake), WithHandoff(rec.fn), WithLogger(quietLogger()))

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(fake.groupCalls) != 0 || len(fake.userCalls) != 0 {
		t.Error("no accounts should be created when identity is absent")
	}
	if rec.called {
		t.Error("no server should be launched when identity is absent")
	}
}

func TestRunSkipsWithOnlyOwnerSet(t *testing.T) {
	t.Setenv(EnvOwner, "researcher")
	t.Setenv(EnvConnectGroup, "")

	fake := &fakeProvisioner{}
	rec := &handoffRecorder{}
	b := New(testConfig(t), CaptureEnvironment(nil),
		WithProvisioner(fake), WithHandoff(rec.fn), WithLogger(quietLogger()))

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(fake.groupCalls) != 0 || rec.called {
		t.Error("provisioning requires both owner and group")
	}
}

func TestRunProvisionsAndHandsOff(t *testing.T) {
	restoreWd(t)
	setEntrypointEnv(t)
	cfg := testConfig(t)

	fake := &fakeProvisioner{}
	rec := &handoffRecorder{}
	env := CaptureEnvironment(nil)
	b := New(cfg, env,
		WithProvisioner(fake), WithHandoff(rec.fn), WithLogger(quietLogger()))

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(fake.groupCalls) != 1 || len(fake.userCalls) != 1 {
		t.Fatalf("group calls = %d, user calls = %d, want 1 and 1", len(fake.groupCalls), len(fake.userCalls))
	}
	id := fake.userCalls[0]
	if id.User != "researcher" || id.Group != "lab" {
		t.Errorf("provisioned identity = %+v", id)
	}

	if !rec.called {
		t.Fatal("hand-off was not invoked")
	}
	home := filepath.Join(string(cfg.Paths.HomeRoot), "researcher")
	wantDirArg := "--notebook-dir=" + home
	if !containsString(rec.argv, wantDirArg) {
		t.Errorf("argv missing %q: %v", wantDirArg, rec.argv)
	}
	if !containsString(rec.argv, "--ServerApp.token=notebook-token") {
		t.Errorf("argv missing current token flag: %v", rec.argv)
	}
	if !containsString(rec.argv, "--NotebookApp.token=notebook-token") {
		t.Errorf("argv missing legacy token flag: %v", rec.argv)
	}
	if rec.argv[0] != "runuser" {
		t.Errorf("server should run as the provisioned user, argv = %v", rec.argv)
	}
}

func TestRunExportsOwnerDataPath(t *testing.T) {
	restoreWd(t)
	setEntrypointEnv(t)
	t.Setenv(EnvOwnerData, "")
	cfg := testConfig(t)

	rec := &handoffRecorder{}
	b := New(cfg, CaptureEnvironment(nil),
		WithProvisioner(&fakeProvisioner{}), WithHandoff(rec.fn), WithLogger(quietLogger()))

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := filepath.Join(string(cfg.Paths.DataRoot), "researcher")
	if got := os.Getenv(EnvOwnerData); got != want {
		t.Errorf("OWNER_DATA = %q, want %q", got, want)
	}
	if !containsString(rec.env, EnvOwnerData+"="+want) {
		t.Errorf("hand-off env missing OWNER_DATA, got %d entries", len(rec.env))
	}
}

func TestRunScrubsSecretEvenWhenLaunchFails(t *testing.T) {
	restoreWd(t)
	setEntrypointEnv(t)

	rec := &handoffRecorder{err: errors.New("exec failed")}
	env := CaptureEnvironment(nil)
	b := New(testConfig(t), env,
		WithProvisioner(&fakeProvisioner{}), WithHandoff(rec.fn), WithLogger(quietLogger()))

	if err := b.Run(context.Background()); err == nil {
		t.Fatal("Run() should propagate the hand-off failure")
	}

	if os.Getenv(EnvAPIToken) != "" {
		t.Error("API token still present in the process environment")
	}
	if !env.APIToken.Dropped() {
		t.Error("secret handle was not dropped")
	}
	for _, entry := range rec.env {
		if strings.HasPrefix(entry, EnvAPIToken+"=") {
			t.Error("API token leaked into the hand-off environment")
		}
	}
}

func TestRunScrubsSecretWhenProvisioningFails(t *testing.T) {
	setEntrypointEnv(t)

	fake := &fakeProvisioner{groupErr: errors.New("groupadd failed")}
	rec := &handoffRecorder{}
	env := CaptureEnvironment(nil)
	b := New(testConfig(t), env,
		WithProvisioner(fake), WithHandoff(rec.fn), WithLogger(quietLogger()))

	err := b.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail when group creation fails")
	}
	if rec.called {
		t.Error("server must not launch after a failed group creation")
	}
	if os.Getenv(EnvAPIToken) != "" {
		t.Error("API token must be scrubbed once provisioning begins")
	}
}

func TestRunUserCreationFailureAbortsLaunch(t *testing.T) {
	setEntrypointEnv(t)

	fake := &fakeProvisioner{userErr: errors.New("useradd failed")}
	rec := &handoffRecorder{}
	b := New(testConfig(t), CaptureEnvironment(nil),
		WithProvisioner(fake), WithHandoff(rec.fn), WithLogger(quietLogger()))

	if err := b.Run(context.Background()); err == nil {
		t.Fatal("Run() should fail when user creation fails")
	}
	if rec.called {
		t.Error("server must not launch after a failed user creation")
	}
}

func TestRunClearsJupyterEnvForHandoff(t *testing.T) {
	restoreWd(t)
	setEntrypointEnv(t)
	t.Setenv("JUPYTER_PATH", "/opt/conda/share/jupyter")
	t.Setenv("JUPYTER_CONFIG_DIR", "/root/.jupyter")

	rec := &handoffRecorder{}
	b := New(testConfig(t), CaptureEnvironment(nil),
		WithProvisioner(&fakeProvisioner{}), WithHandoff(rec.fn), WithLogger(quietLogger()))

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, entry := range rec.env {
		if strings.HasPrefix(entry, "JUPYTER_PATH=") || strings.HasPrefix(entry, "JUPYTER_CONFIG_DIR=") {
			t.Errorf("configuration variable leaked into the hand-off environment: %s", entry)
		}
	}
}

func TestRunAppendsPromptLine(t *testing.T) {
	restoreWd(t)
	setEntrypointEnv(t)
	cfg := testConfig(t)

	b := New(cfg, CaptureEnvironment(nil),
		WithProvisioner(&fakeProvisioner{}), WithHandoff((&handoffRecorder{}).fn), WithLogger(quietLogger()))

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(string(cfg.Paths.Bashrc))
	if err != nil {
		t.Fatalf("bashrc was not written: %v", err)
	}
	if !strings.Contains(string(data), "PS1=") || !strings.Contains(string(data), "researcher") {
		t.Errorf("bashrc missing prompt line, got %q", string(data))
	}
}

func TestRunClonesRepositoryWhenArgumentGiven(t *testing.T) {
	restoreWd(t)
	setEntrypointEnv(t)
	cfg := testConfig(t)

	var cloneArgs []string
	execFn := func(_ context.Context, name string, args ...string) *exec.Cmd {
		cloneArgs = append([]string{name}, args...)
		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, args...)
		cmd := exec.Command(os.Args[0], cs...)
		cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1", "GO_HELPER_EXIT_CODE=0"}
		return cmd
	}

	b := New(cfg, CaptureEnvironment([]string{"https://example.com/lab/project.git"}),
		WithProvisioner(&fakeProvisioner{}), WithExecCommand(execFn),
		WithHandoff((&handoffRecorder{}).fn), WithLogger(quietLogger()))

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"git", "clone", "https://example.com/lab/project.git", string(cfg.Paths.Workspace)}
	if strings.Join(cloneArgs, " ") != strings.Join(want, " ") {
		t.Errorf("clone invocation = %v, want %v", cloneArgs, want)
	}
}

func TestRunCloneFailureIsNotFatal(t *testing.T) {
	restoreWd(t)
	setEntrypointEnv(t)

	execFn := func(_ context.Context, name string, args ...string) *exec.Cmd {
		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, args...)
		cmd := exec.Command(os.Args[0], cs...)
		cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1", "GO_HELPER_EXIT_CODE=128"}
		return cmd
	}

	rec := &handoffRecorder{}
	b := New(testConfig(t), CaptureEnvironment([]string{"https://example.com/broken.git"}),
		WithProvisioner(&fakeProvisioner{}), WithExecCommand(execFn),
		WithHandoff(rec.fn), WithLogger(quietLogger()))

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run() should survive a failed clone, got %v", err)
	}
	if !rec.called {
		t.Error("sequence should continue to the launch after a failed clone")
	}
}

func TestRunNoCloneWithoutArgument(t *testing.T) {
	restoreWd(t)
	setEntrypointEnv(t)

	invoked := false
	execFn := func(_ context.Context, name string, args ...string) *exec.Cmd {
		invoked = true
		return exec.Command(os.Args[0])
	}

	b := New(testConfig(t), CaptureEnvironment(nil),
		WithProvisioner(&fakeProvisioner{}), WithExecCommand(execFn),
		WithHandoff((&handoffRecorder{}).fn), WithLogger(quietLogger()))

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if invoked {
		t.Error("no command should run when the repository argument is absent")
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

// TestHelperProcess is the subprocess body for mocked exec commands.
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
