// SPDX-License-Identifier: MPL-2.0

package changelog

import (
	"errors"
	"strings"
	"testing"

	"rebasectl/pkg/checkout"
)

func TestOwnerRepo(t *testing.T) {
	tests := []struct {
		name      string
		remote    checkout.RemoteURL
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{
			name:      "https with .git",
			remote:    "https://github.com/openshift/kubernetes.git",
			wantOwner: "openshift",
			wantRepo:  "kubernetes",
		},
		{
			name:      "scp-like",
			remote:    "git@github.com:openshift/etcd.git",
			wantOwner: "openshift",
			wantRepo:  "etcd",
		},
		{
			name:    "non-github host",
			remote:  "https://gitlab.com/openshift/etcd.git",
			wantErr: true,
		},
		{
			name:    "missing repo segment",
			remote:  "https://github.com/openshift",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ownerRepo(tt.remote)
			if tt.wantErr {
				if !errors.Is(err, ErrNotGitHubRemote) {
					t.Errorf("ownerRepo() error = %v, want ErrNotGitHubRemote", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ownerRepo() error = %v", err)
			}
			if owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("ownerRepo() = %q, %q, want %q, %q", owner, repo, tt.wantOwner, tt.wantRepo)
			}
		})
	}
}

func TestRender(t *testing.T) {
	entries := []Entry{
		{
			Component:  "kubernetes",
			From:       checkout.CommitSHA(strings.Repeat("a", 40)),
			To:         checkout.CommitSHA(strings.Repeat("b", 40)),
			CompareURL: "https://github.com/openshift/kubernetes/compare/aaa...bbb",
			Commits: []Commit{
				{SHA: strings.Repeat("c", 40), Subject: "Fix kubelet flake", Author: "Jane Doe"},
				{SHA: strings.Repeat("d", 40), Subject: "Bump golang.org/x/net"},
			},
		},
		{
			Component: "etcd",
			From:      checkout.CommitSHA(strings.Repeat("e", 40)),
			To:        checkout.CommitSHA(strings.Repeat("e", 40)),
		},
	}

	got := Render("4.17.9", entries)

	for _, want := range []string{
		"# Rebase changelog for 4.17.9",
		"## kubernetes (aaaaaaa...bbbbbbb)",
		"Full compare: https://github.com/openshift/kubernetes/compare/aaa...bbb",
		"- `cccccccccccc` Fix kubelet flake (Jane Doe)",
		"- `dddddddddddd` Bump golang.org/x/net\n",
		"## etcd (eeeeeee...eeeeeee)",
		"No changes.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %q in:\n%s", want, got)
		}
	}
}
