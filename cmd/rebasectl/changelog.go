// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rebasectl/internal/issue"
	"rebasectl/pkg/changelog"
)

// newChangelogCommand creates the `rebasectl changelog` command: a markdown
// summary of the commits each component moved through between two releases.
func newChangelogCommand() *cobra.Command {
	var fromPath, toPath string

	c := &cobra.Command{
		Use:   "changelog",
		Short: "Summarize component changes between two releases",
		Long: `Compare two release metadata files and print, per component, the
upstream commits between the old pin and the new one. The comparison uses
the GitHub API; configure github.token to avoid rate limits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context())
			if err != nil {
				renderIssue(issue.ConfigLoadFailedId)
				return &ExitError{Code: 1, Err: err}
			}

			from, err := loadReleaseInfo(fromPath)
			if err != nil {
				return err
			}
			to, err := loadReleaseInfo(toPath)
			if err != nil {
				return err
			}

			builder := changelog.New(cfg.GitHub.Token)
			logger := newLogger()

			var entries []changelog.Entry
			for _, name := range to.Names() {
				newPin, _ := to.Component(name)
				oldPin, ok := from.Component(name)
				if !ok {
					logger.Warn("component not in previous release, skipping", "component", name)
					continue
				}
				if oldPin.Commit == newPin.Commit {
					logger.Debug("component unchanged", "component", name)
					continue
				}

				entry, err := builder.Compare(cmd.Context(), name, newPin.Remote, oldPin.Commit, newPin.Commit)
				if err != nil {
					renderIssue(issue.ChangelogFetchFailedId)
					return &ExitError{Code: 1, Err: issue.WrapWithContext(err, "fetch changelog", name)}
				}
				entries = append(entries, entry)
			}

			fmt.Print(changelog.Render(to.Release, entries))
			return nil
		},
	}
	c.Flags().StringVar(&fromPath, "from", "", "release metadata of the previous rebase")
	c.Flags().StringVar(&toPath, "to", "", "release metadata of the new release")
	_ = c.MarkFlagRequired("from")
	_ = c.MarkFlagRequired("to")

	return c
}
