// SPDX-License-Identifier: MPL-2.0

// Package checkout manages the ephemeral on-disk clones of upstream
// components that one rebase run resolves against.
//
// Clones are fetch-once: if the destination directory already exists,
// [CloneAt] opens it without contacting the remote, so every read within a
// run reflects the commit the checkout was created at.
package checkout

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// stagingSubdir is where the kubernetes component keeps its nested staging
// modules, each publishing under the k8s.io/ namespace.
const stagingSubdir = "staging/src/k8s.io"

// Checkout is one component's on-disk clone at a resolved commit.
type Checkout struct {
	name string
	dir  string
	repo *git.Repository
}

// CloneAt clones remote at commit into destDir and returns the checkout.
// It is idempotent: when destDir already exists the existing clone is opened
// as-is and no network access happens, not even a fetch.
func CloneAt(ctx context.Context, name string, remote RemoteURL, commit CommitSHA, destDir string) (*Checkout, error) {
	if err := remote.Validate(); err != nil {
		return nil, fmt.Errorf("component %s: %w", name, err)
	}
	if err := commit.Validate(); err != nil {
		return nil, fmt.Errorf("component %s: %w", name, err)
	}

	if _, err := os.Stat(destDir); err == nil {
		repo, err := git.PlainOpen(destDir)
		if err != nil {
			return nil, fmt.Errorf("component %s: failed to open existing checkout %s: %w", name, destDir, err)
		}
		return &Checkout{name: name, dir: destDir, repo: repo}, nil
	}

	if err := os.MkdirAll(filepath.Dir(destDir), 0o755); err != nil {
		return nil, fmt.Errorf("component %s: failed to create parent directory: %w", name, err)
	}

	repo, err := git.PlainCloneContext(ctx, destDir, false, &git.CloneOptions{
		URL:      string(remote),
		Progress: nil,
	})
	if err != nil {
		// Clean up failed attempt (best-effort)
		_ = os.RemoveAll(destDir)
		return nil, fmt.Errorf("component %s: failed to clone %s: %w", name, remote, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("component %s: failed to get worktree: %w", name, err)
	}
	err = worktree.Checkout(&git.CheckoutOptions{
		Hash:  plumbing.NewHash(string(commit)),
		Force: true,
	})
	if err != nil {
		return nil, fmt.Errorf("component %s: failed to checkout %s: %w", name, commit, err)
	}

	return &Checkout{name: name, dir: destDir, repo: repo}, nil
}

// Name returns the component name this checkout belongs to.
func (c *Checkout) Name() string { return c.name }

// Dir returns the checkout's root directory.
func (c *Checkout) Dir() string { return c.dir }

// GoModPath returns the path of the component's own dependency manifest.
func (c *Checkout) GoModPath() string { return filepath.Join(c.dir, "go.mod") }

// CurrentCommit returns the commit the checkout's HEAD points at.
func (c *Checkout) CurrentCommit() (CommitSHA, error) {
	head, err := c.repo.Head()
	if err != nil {
		return "", fmt.Errorf("component %s: failed to read HEAD: %w", c.name, err)
	}
	return CommitSHA(head.Hash().String()), nil
}

// OriginURL returns the first URL of the checkout's origin remote.
func (c *Checkout) OriginURL() (RemoteURL, error) {
	remote, err := c.repo.Remote(git.DefaultRemoteName)
	if err != nil {
		return "", fmt.Errorf("component %s: failed to read origin remote: %w", c.name, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("component %s: origin remote has no URL", c.name)
	}
	return RemoteURL(urls[0]), nil
}

// StagingSubmodules returns the module suffixes of the checkout's nested
// staging tree in alphabetical order, one per immediate subdirectory of
// staging/src/k8s.io. Resolution output must not depend on enumeration
// order, so the order is fixed here.
func (c *Checkout) StagingSubmodules() ([]string, error) {
	return ListStagingSubmodules(c.dir)
}

// ListStagingSubmodules enumerates the staging submodule suffixes under dir.
// os.ReadDir already sorts entries by name.
func ListStagingSubmodules(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(dir, filepath.FromSlash(stagingSubdir)))
	if err != nil {
		return nil, fmt.Errorf("failed to read staging tree: %w", err)
	}

	var submodules []string
	for _, entry := range entries {
		if entry.IsDir() {
			submodules = append(submodules, entry.Name())
		}
	}
	return submodules, nil
}
