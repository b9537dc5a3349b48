// SPDX-License-Identifier: MPL-2.0

// Package changelog builds a human-readable summary of what moved between
// two rebase runs: for each component, the commits between the previously
// pinned SHA and the newly pinned one, fetched through the GitHub compare
// API and rendered as markdown.
package changelog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-github/v74/github"

	"rebasectl/pkg/checkout"
)

// ErrNotGitHubRemote flags a component remote the compare API cannot serve.
var ErrNotGitHubRemote = errors.New("remote is not a github.com repository")

type (
	// Commit is one upstream commit in a component's range.
	Commit struct {
		SHA     string
		Subject string
		Author  string
	}

	// Entry is the changelog of one component between two pinned commits.
	Entry struct {
		Component  string
		From       checkout.CommitSHA
		To         checkout.CommitSHA
		CompareURL string
		Commits    []Commit
	}

	// Builder fetches commit ranges from GitHub.
	Builder struct {
		client *github.Client
	}
)

// New returns a Builder. An empty token means unauthenticated requests,
// which is fine for public forks at changelog volume.
func New(token string) *Builder {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &Builder{client: client}
}

// Compare fetches the commits a component moved through between two pins.
func (b *Builder) Compare(ctx context.Context, componentName string, remote checkout.RemoteURL, from, to checkout.CommitSHA) (Entry, error) {
	owner, repo, err := ownerRepo(remote)
	if err != nil {
		return Entry{}, err
	}

	cmp, _, err := b.client.Repositories.CompareCommits(ctx, owner, repo, string(from), string(to), nil)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to compare %s/%s %s...%s: %w", owner, repo, from.Short(), to.Short(), err)
	}

	entry := Entry{
		Component:  componentName,
		From:       from,
		To:         to,
		CompareURL: cmp.GetHTMLURL(),
	}
	for _, rc := range cmp.Commits {
		subject, _, _ := strings.Cut(rc.GetCommit().GetMessage(), "\n")
		entry.Commits = append(entry.Commits, Commit{
			SHA:     rc.GetSHA(),
			Subject: subject,
			Author:  rc.GetCommit().GetAuthor().GetName(),
		})
	}
	return entry, nil
}

// Render formats entries as a markdown document.
func Render(release string, entries []Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Rebase changelog for %s\n", release)

	for _, e := range entries {
		fmt.Fprintf(&sb, "\n## %s (%s...%s)\n\n", e.Component, e.From.Short(), e.To.Short())
		if e.CompareURL != "" {
			fmt.Fprintf(&sb, "Full compare: %s\n\n", e.CompareURL)
		}
		if len(e.Commits) == 0 {
			sb.WriteString("No changes.\n")
			continue
		}
		for _, c := range e.Commits {
			sha := c.SHA
			if len(sha) > 12 {
				sha = sha[:12]
			}
			fmt.Fprintf(&sb, "- `%s` %s", sha, c.Subject)
			if c.Author != "" {
				fmt.Fprintf(&sb, " (%s)", c.Author)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// ownerRepo extracts the GitHub owner and repository from a remote URL.
func ownerRepo(remote checkout.RemoteURL) (string, string, error) {
	path := strings.TrimPrefix(remote.ModulePath(), "git@")
	parts := strings.Split(path, "/")
	if len(parts) < 3 || parts[0] != "github.com" {
		return "", "", fmt.Errorf("%w: %s", ErrNotGitHubRemote, remote)
	}
	return parts[1], parts[2], nil
}
