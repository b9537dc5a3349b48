// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for rebasectl.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"rebasectl/internal/config"
	"rebasectl/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "rebasectl",
		Short: "Rebase a downstream distribution onto a pinned upstream release",
		Long: TitleStyle.Render("rebasectl") + SubtitleStyle.Render(" - rebase tooling for a downstream Kubernetes distribution") + `

rebasectl keeps the distribution's go.mod aligned with the exact source
commits of a pinned upstream release. Directives embedded in replace-line
comments ('from', 'staging', 'release', 'override') tell the engine where
each module's replacement comes from; component forks are checked out at
the release's commits and the manifest is rewritten and tidied.

` + SubtitleStyle.Render("Typical flow:") + `
  1. Obtain the release metadata (pinned commits per component)
  2. Run 'rebasectl go.mod --release-info release.json'
  3. Review the manifest diff and commit it

` + SubtitleStyle.Render("Examples:") + `
  rebasectl go.mod --release-info release.json    Update the manifest
  rebasectl checkout --release-info release.json  Only stage the checkouts
  rebasectl changelog --from old.json --to new.json
  rebasectl components                            List known components
  rebasectl config show                           Show current configuration`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/rebasectl/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(newGoModCommand())
	rootCmd.AddCommand(newCheckoutCommand())
	rootCmd.AddCommand(newChangelogCommand())
	rootCmd.AddCommand(newComponentsCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newCompletionCommand())
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig applies config-file settings that flags did not override.
func initRootConfig() {
	cfg, err := loadConfig(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		return
	}

	// Apply verbose from config if not set via flag
	if !verbose {
		verbose = cfg.UI.Verbose
	}
}

// loadConfig loads configuration, honoring the --config flag.
func loadConfig(ctx context.Context) (*config.Config, error) {
	return config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
}

// newLogger returns the structured logger commands use for the audit trail.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "rebasectl",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderIssue prints the remediation card for a known issue id to stderr.
func renderIssue(id issue.Id) {
	if rendered, err := issue.Get(id).Render("dark"); err == nil {
		fmt.Fprint(os.Stderr, rendered)
	}
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}
