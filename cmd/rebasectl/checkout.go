// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rebasectl/internal/issue"
)

// newCheckoutCommand creates the `rebasectl checkout` command: stage the
// component checkouts without touching the manifest, for inspecting what a
// release pins before rebasing onto it.
func newCheckoutCommand() *cobra.Command {
	var releaseInfoPath string

	c := &cobra.Command{
		Use:   "checkout",
		Short: "Stage component checkouts for a release",
		Long: `Clone every component of the release at its pinned commit into the
staging directory, without updating the manifest. Checkouts are idempotent:
an already-staged component is left as-is.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := loadConfig(cmd.Context())
			if err != nil {
				renderIssue(issue.ConfigLoadFailedId)
				return &ExitError{Code: 1, Err: err}
			}
			info, err := loadReleaseInfo(releaseInfoPath)
			if err != nil {
				return err
			}

			sources, err := stageCheckouts(cmd.Context(), cfg, info, logger)
			if err != nil {
				return err
			}

			fmt.Println(SuccessStyle.Render(fmt.Sprintf(
				"Staged %d component checkouts for release %s under %s",
				len(sources), info.Release, cfg.StagingDir)))
			return nil
		},
	}
	c.Flags().StringVar(&releaseInfoPath, "release-info", "release.json", "path to the release metadata file")

	return c
}
