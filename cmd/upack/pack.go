// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"upack-cli/pkg/upackage"
	"upack-cli/pkg/upackmeta"
)

// packOutput is the output path for the built archive.
var packOutput string

// packCmd builds a package archive from a manifest and a content directory.
var packCmd = &cobra.Command{
	Use:   "pack <manifest> [content-dir]",
	Short: "Build a package archive",
	Long: `Build a package archive from an upack.json manifest and an optional
content directory.

The archive contains the manifest at its root and the content directory's
files under package/. Without --output the archive is written to
<name>-<version>.upack in the current directory.`,
	Example: `  upack pack ./upack.json ./files
  upack pack ./upack.json ./files --output dist/app.upack
  upack pack ./upack.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPack,
}

func init() {
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "", "output archive path")
}

func runPack(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}
	var manifest upackmeta.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("parsing manifest %s: %w", args[0], err)
	}

	contentDir := ""
	if len(args) > 1 {
		contentDir = args[1]
	}

	version, err := manifest.SemanticVersion()
	if err != nil {
		return fmt.Errorf("manifest version: %w", err)
	}

	output := packOutput
	if output == "" {
		output = manifest.Name + "-" + version.UniqueString() + upackage.FileExt
	}

	if err := upackage.BuildFile(output, &manifest, contentDir); err != nil {
		return fmt.Errorf("building archive: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", SuccessStyle.Render("✓"), PkgStyle.Render(output))
	return nil
}
