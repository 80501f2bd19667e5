// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"upack-cli/pkg/upackage"
)

// pushFeed selects the feed to upload to.
var pushFeed string

// pushCmd uploads a package archive to a feed.
var pushCmd = &cobra.Command{
	Use:   "push <archive>",
	Short: "Upload a package archive to a feed",
	Long: `Upload a package archive to a feed.

The archive is validated locally before uploading: it must contain an
upack.json manifest with a name and a parseable version. The feed is
selected with --feed (a feeds.toml name or a URL) and falls back to the
configured default_feed.`,
	Example: `  upack push app-1.0.0.upack
  upack push app-1.0.0.upack --feed corp-main
  upack push app-1.0.0.upack --feed https://proget.example.com/upack/main`,
	Args: cobra.ExactArgs(1),
	RunE: runPush,
}

func init() {
	pushCmd.Flags().StringVar(&pushFeed, "feed", "", "target feed URL or feeds.toml name")
}

func runPush(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	logger := newLogger(cmd.ErrOrStderr())

	// Validate the archive before shipping bytes to the feed.
	manifest, err := upackage.ReadMetadata(args[0])
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	version, err := manifest.SemanticVersion()
	if err != nil {
		return fmt.Errorf("manifest version: %w", err)
	}

	client, err := resolveFeedClient(pushFeed)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	logger.Debug("uploading package", "feed", client.URL(), "name", manifest.Name, "version", version.String())
	if err := client.Upload(cmd.Context(), f); err != nil {
		return fmt.Errorf("uploading to %s: %w", client.URL(), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Pushed %s %s to %s\n",
		SuccessStyle.Render("✓"), PkgStyle.Render(manifest.Name), version, client.URL())
	return nil
}
