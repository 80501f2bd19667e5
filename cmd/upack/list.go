// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// listCmd lists the packages registered in the selected registry.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed packages",
	Long: `List the packages recorded in the local registry.

By default the user registry is consulted; pass --machine to list the
machine-wide registry instead.`,
	Example: `  upack list
  upack list --machine`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	reg, err := openRegistry()
	if err != nil {
		return err
	}

	pkgs, err := reg.List()
	if err != nil {
		return fmt.Errorf("reading registry at %s: %w", reg.Root(), err)
	}

	if len(pkgs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("No packages installed."))
		return nil
	}

	out := cmd.OutOrStdout()
	for _, pkg := range pkgs {
		name := pkg.Name
		if pkg.Group != "" {
			name = pkg.Group + "/" + pkg.Name
		}
		fmt.Fprintf(out, "%s %s", PkgStyle.Render(name), pkg.Version)
		if verbose {
			if pkg.Path != "" {
				fmt.Fprintf(out, "  %s", VerboseStyle.Render(pkg.Path))
			}
			if pkg.FeedURL != "" {
				fmt.Fprintf(out, "  %s", VerboseStyle.Render(pkg.FeedURL))
			}
		}
		fmt.Fprintln(out)
	}
	return nil
}
