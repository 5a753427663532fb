// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"testing"
)

func TestMustChdirRestores(t *testing.T) {
	original, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()

	restore := MustChdir(t, dir)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if wd != dir {
		// macOS resolves /tmp symlinks, so compare by stat.
		wdInfo, _ := os.Stat(wd)
		dirInfo, _ := os.Stat(dir)
		if !os.SameFile(wdInfo, dirInfo) {
			t.Errorf("working directory = %q, want %q", wd, dir)
		}
	}

	restore()
	wd, err = os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if wd != original {
		t.Errorf("working directory after restore = %q, want %q", wd, original)
	}
}

func TestMustSetenvRestores(t *testing.T) {
	os.Unsetenv("TESTUTIL_VAR")

	restore := MustSetenv(t, "TESTUTIL_VAR", "value")
	if got := os.Getenv("TESTUTIL_VAR"); got != "value" {
		t.Errorf("env = %q, want %q", got, "value")
	}

	restore()
	if _, present := os.LookupEnv("TESTUTIL_VAR"); present {
		t.Error("variable should be unset after restore")
	}
}

func TestMustUnsetenvRestores(t *testing.T) {
	t.Setenv("TESTUTIL_VAR", "original")

	restore := MustUnsetenv(t, "TESTUTIL_VAR")
	if _, present := os.LookupEnv("TESTUTIL_VAR"); present {
		t.Fatal("variable should be unset")
	}

	restore()
	if got := os.Getenv("TESTUTIL_VAR"); got != "original" {
		t.Errorf("env after restore = %q, want %q", got, "original")
	}
}
