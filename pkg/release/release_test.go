// SPDX-License-Identifier: MPL-2.0

package release

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"rebasectl/pkg/checkout"
)

const sampleInfo = `{
  "release": "4.17.9",
  "components": {
    "kubernetes": {
      "image": "quay.io/openshift/hyperkube@sha256:deadbeef",
      "commit": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
      "remote": "https://github.com/openshift/kubernetes.git"
    },
    "etcd": {
      "commit": "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
      "remote": "https://github.com/openshift/etcd.git"
    }
  }
}`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "release.json")
	if err := os.WriteFile(path, []byte(sampleInfo), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	info, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if info.Release != "4.17.9" {
		t.Errorf("Release = %q, want 4.17.9", info.Release)
	}
	kube, ok := info.Component("kubernetes")
	if !ok {
		t.Fatal("Component(kubernetes) not found")
	}
	if kube.Commit != checkout.CommitSHA(strings.Repeat("a", 40)) {
		t.Errorf("Commit = %q", kube.Commit)
	}
	if want := []string{"etcd", "kubernetes"}; !slices.Equal(info.Names(), want) {
		t.Errorf("Names() = %v, want %v", info.Names(), want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "release.json")); err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "not json",
			data:    "release: 4.17.9",
			wantErr: nil, // decode error, no sentinel
		},
		{
			name:    "missing release identifier",
			data:    `{"components": {"etcd": {"commit": "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "remote": "https://github.com/openshift/etcd.git"}}}`,
			wantErr: ErrMissingRelease,
		},
		{
			name:    "no components",
			data:    `{"release": "4.17.9", "components": {}}`,
			wantErr: ErrNoComponents,
		},
		{
			name:    "bad commit",
			data:    `{"release": "4.17.9", "components": {"etcd": {"commit": "main", "remote": "https://github.com/openshift/etcd.git"}}}`,
			wantErr: checkout.ErrInvalidCommitSHA,
		},
		{
			name:    "bad remote",
			data:    `{"release": "4.17.9", "components": {"etcd": {"commit": "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "remote": "openshift/etcd"}}}`,
			wantErr: checkout.ErrInvalidRemoteURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
