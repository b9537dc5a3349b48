// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"rebasectl/internal/config"
	"rebasectl/internal/issue"
	"rebasectl/pkg/checkout"
	"rebasectl/pkg/component"
	"rebasectl/pkg/manifest"
	"rebasectl/pkg/rebase"
	"rebasectl/pkg/release"
	"rebasectl/pkg/resolver"
)

// newGoModCommand creates the `rebasectl go.mod` command, the engine's main
// entry point: stage every component checkout, then rewrite and tidy the
// manifest.
func newGoModCommand() *cobra.Command {
	var releaseInfoPath string

	c := &cobra.Command{
		Use:   "go.mod",
		Short: "Update the manifest to the pinned release commits",
		Long: `Update the distribution's go.mod against the pinned release.

Every component named in the release metadata is checked out at its pinned
commit, then each directive-bearing replace line is resolved against its
component and the manifest is tidied. The run is idempotent: re-running
against unchanged metadata produces no further diff.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGoModUpdate(cmd.Context(), releaseInfoPath)
		},
	}
	c.Flags().StringVar(&releaseInfoPath, "release-info", "release.json", "path to the release metadata file")

	return c
}

func runGoModUpdate(ctx context.Context, releaseInfoPath string) error {
	logger := newLogger()

	cfg, err := loadConfig(ctx)
	if err != nil {
		renderIssue(issue.ConfigLoadFailedId)
		return &ExitError{Code: 1, Err: err}
	}

	info, err := loadReleaseInfo(releaseInfoPath)
	if err != nil {
		return err
	}
	logger.Info("rebasing against release", "release", info.Release)

	sources, err := stageCheckouts(ctx, cfg, info, logger)
	if err != nil {
		return err
	}

	m, err := manifest.NewGoMod(string(cfg.ManifestPath))
	if err != nil {
		renderIssue(issue.ManifestParseErrorId)
		return &ExitError{Code: 1, Err: err}
	}

	orch := rebase.New(m, component.DefaultRegistry(), sources, logger)
	res, err := orch.RunGoModUpdate(ctx)
	if err != nil {
		switch {
		case errors.Is(err, component.ErrUnknownComponent), errors.Is(err, resolver.ErrNotEmbeddedComponent):
			renderIssue(issue.UnknownComponentId)
		case errors.Is(err, resolver.ErrMissingUpstreamReplace):
			renderIssue(issue.MissingUpstreamReplaceId)
		default:
			renderIssue(issue.TidyFailedId)
		}
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Println(SuccessStyle.Render(fmt.Sprintf(
		"Manifest updated for release %s: %d modules resolved, %d skipped",
		info.Release, res.Resolved, res.Skipped)))
	return nil
}

// loadReleaseInfo loads and validates release metadata, rendering the
// matching remediation card on failure.
func loadReleaseInfo(path string) (*release.Info, error) {
	info, err := release.Load(path)
	if err != nil {
		if errors.Is(err, release.ErrMissingRelease) || errors.Is(err, release.ErrNoComponents) ||
			errors.Is(err, checkout.ErrInvalidCommitSHA) || errors.Is(err, checkout.ErrInvalidRemoteURL) {
			renderIssue(issue.ReleaseInfoParseErrorId)
		} else {
			renderIssue(issue.ReleaseInfoNotFoundId)
		}
		return nil, &ExitError{Code: 1, Err: issue.WrapWithContext(err, "load release metadata", path)}
	}
	return info, nil
}

// stageCheckouts clones every component of the release at its pinned commit
// into the staging directory.
func stageCheckouts(ctx context.Context, cfg *config.Config, info *release.Info, logger *log.Logger) (map[string]rebase.Source, error) {
	sources := make(map[string]rebase.Source, len(info.Components))
	for _, name := range info.Names() {
		comp, _ := info.Component(name)
		dest := filepath.Join(string(cfg.StagingDir), name)

		logger.Info("staging component checkout", "component", name, "commit", comp.Commit.Short(), "dir", dest)
		co, err := checkout.CloneAt(ctx, name, comp.Remote, comp.Commit, dest)
		if err != nil {
			renderIssue(issue.CheckoutFailedId)
			return nil, &ExitError{Code: 1, Err: issue.WrapWithContext(err, "clone component", string(comp.Remote))}
		}
		sources[name] = co
	}
	return sources, nil
}
