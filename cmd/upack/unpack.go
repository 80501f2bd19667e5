// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"upack-cli/pkg/upackage"
)

// unpackManifestOnly prints the manifest without extracting content.
var unpackManifestOnly bool

// unpackCmd extracts a package archive's content.
var unpackCmd = &cobra.Command{
	Use:   "unpack <archive> [dest-dir]",
	Short: "Extract a package archive",
	Long: `Extract the content of a package archive into a directory.

Only entries under the archive's package/ prefix are extracted; the
manifest and any other root entries are skipped. With --manifest the
manifest is printed instead and nothing is extracted.`,
	Example: `  upack unpack app-1.0.0.upack ./out
  upack unpack app-1.0.0.upack --manifest`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUnpack,
}

func init() {
	unpackCmd.Flags().BoolVar(&unpackManifestOnly, "manifest", false, "print the manifest instead of extracting")
}

func runUnpack(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	pkg, err := upackage.OpenFile(args[0])
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer pkg.Close()

	if unpackManifestOnly {
		data, err := pkg.Manifest.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encoding manifest: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	dest := "."
	if len(args) > 1 {
		dest = args[1]
	}

	if err := pkg.ExtractContent(cmd.Context(), dest); err != nil {
		return fmt.Errorf("extracting archive: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Extracted %s to %s\n",
		SuccessStyle.Render("✓"), PkgStyle.Render(args[0]), dest)
	return nil
}
