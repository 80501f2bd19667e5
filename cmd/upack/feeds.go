// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"upack-cli/internal/config"
)

// feedsCmd lists the feeds configured in feeds.toml.
var feedsCmd = &cobra.Command{
	Use:   "feeds",
	Short: "List configured feeds",
	Long: `List the feeds configured in feeds.toml.

Credentials are never printed; entries that carry an API key or a
password are marked as authenticated.`,
	Example: `  upack feeds`,
	Args:    cobra.NoArgs,
	RunE:    runFeeds,
}

func runFeeds(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	ff, err := config.LoadFeeds()
	if err != nil {
		return err
	}

	if len(ff.Feeds) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("No feeds configured."))
		return nil
	}

	out := cmd.OutOrStdout()
	for _, name := range ff.Names() {
		entry := ff.Feeds[name]
		fmt.Fprintf(out, "%s  %s", PkgStyle.Render(name), entry.URL)
		if entry.APIKey != "" || entry.Password != "" {
			fmt.Fprintf(out, "  %s", SubtitleStyle.Render("(authenticated)"))
		}
		fmt.Fprintln(out)
	}
	return nil
}
