// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleReleaseJSON = `{
  "release": "4.20.0-ec.3",
  "components": {
    "kubernetes": {
      "commit": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
      "remote": "https://github.com/openshift/kubernetes"
    }
  }
}`

func TestLoadReleaseInfo(t *testing.T) {
	t.Run("valid metadata loads", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "release.json")
		if err := os.WriteFile(path, []byte(sampleReleaseJSON), 0o644); err != nil {
			t.Fatal(err)
		}

		info, err := loadReleaseInfo(path)
		if err != nil {
			t.Fatalf("loadReleaseInfo() error = %v", err)
		}
		if info.Release != "4.20.0-ec.3" {
			t.Errorf("Release = %q, want %q", info.Release, "4.20.0-ec.3")
		}
		if _, ok := info.Component("kubernetes"); !ok {
			t.Error("kubernetes component missing from loaded metadata")
		}
	})

	t.Run("missing file returns exit error", func(t *testing.T) {
		_, err := loadReleaseInfo(filepath.Join(t.TempDir(), "nope.json"))
		if err == nil {
			t.Fatal("expected error for missing file")
		}
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("error = %T, want *ExitError", err)
		}
		if exitErr.Code != 1 {
			t.Errorf("Code = %d, want 1", exitErr.Code)
		}
	})
}

func TestFileExistsCheck(t *testing.T) {
	dir := t.TempDir()

	if fileExistsCheck(filepath.Join(dir, "absent")) {
		t.Error("fileExistsCheck reported true for a missing path")
	}
	if fileExistsCheck(dir) {
		t.Error("fileExistsCheck reported true for a directory")
	}

	path := filepath.Join(dir, "present")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !fileExistsCheck(path) {
		t.Error("fileExistsCheck reported false for an existing file")
	}
}
