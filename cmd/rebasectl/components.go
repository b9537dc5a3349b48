// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rebasectl/pkg/component"
)

// newComponentsCommand creates the `rebasectl components` command.
func newComponentsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "components",
		Short: "List the components known to the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := component.DefaultRegistry()

			fmt.Println(TitleStyle.Render("Known components"))
			fmt.Println()
			for _, name := range registry.Names() {
				entry, err := registry.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Printf("%s  %s\n", CmdStyle.Render(fmt.Sprintf("%-28s", name)), SubtitleStyle.Render(string(entry.Policy)))
			}
			return nil
		},
	}
}
