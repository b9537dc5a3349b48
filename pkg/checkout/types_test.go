// SPDX-License-Identifier: MPL-2.0

package checkout

import (
	"errors"
	"strings"
	"testing"
)

func TestRemoteURLValidate(t *testing.T) {
	tests := []struct {
		name    string
		url     RemoteURL
		wantErr bool
	}{
		{name: "https", url: "https://github.com/example/kubernetes.git"},
		{name: "ssh", url: "ssh://git@github.com/example/etcd.git"},
		{name: "scp-like", url: "git@github.com:example/etcd.git"},
		{name: "empty", url: "", wantErr: true},
		{name: "bare path", url: "github.com/example/etcd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.url.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRemoteURL) {
				t.Errorf("Validate() error should wrap ErrInvalidRemoteURL, got %v", err)
			}
		})
	}
}

func TestRemoteURLModulePath(t *testing.T) {
	tests := []struct {
		name string
		url  RemoteURL
		want string
	}{
		{
			name: "https with .git",
			url:  "https://github.com/example/kubernetes.git",
			want: "github.com/example/kubernetes",
		},
		{
			name: "https without .git",
			url:  "https://github.com/example/etcd",
			want: "github.com/example/etcd",
		},
		{
			name: "scp-like",
			url:  "git@github.com:example/etcd.git",
			want: "github.com/example/etcd",
		},
		{
			name: "ssh",
			url:  "ssh://git@github.com/example/route-controller-manager",
			want: "github.com/example/route-controller-manager",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.url.ModulePath(); got != tt.want {
				t.Errorf("ModulePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommitSHAValidate(t *testing.T) {
	valid := CommitSHA(strings.Repeat("ab12", 10))
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v for valid SHA", err)
	}

	tests := []struct {
		name string
		sha  CommitSHA
	}{
		{name: "empty", sha: ""},
		{name: "short", sha: "abc123"},
		{name: "uppercase", sha: CommitSHA(strings.Repeat("AB12", 10))},
		{name: "non-hex", sha: CommitSHA(strings.Repeat("zz12", 10))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sha.Validate()
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidCommitSHA) {
				t.Errorf("Validate() error should wrap ErrInvalidCommitSHA, got %v", err)
			}
		})
	}
}

func TestIsCommitSHA(t *testing.T) {
	if !IsCommitSHA(strings.Repeat("0f", 20)) {
		t.Error("IsCommitSHA() = false for a full hex SHA")
	}
	if IsCommitSHA("v1.2.3") {
		t.Error("IsCommitSHA() = true for a semver string")
	}
}
