// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"upack-cli/pkg/upackver"
)

var (
	// versionsFeed selects the feed to query.
	versionsFeed string
	// versionsSatisfying filters output to versions inside a range.
	versionsSatisfying string
)

// versionsCmd lists a package's published versions.
var versionsCmd = &cobra.Command{
	Use:   "versions <package>",
	Short: "List a package's published versions",
	Long: `List the versions of a package published on a feed, newest first.

Versions are ordered by semantic-version precedence, so 1.0.0 sorts
above 1.0.0-beta.1 regardless of publish order. With --satisfying the
output is limited to versions inside the given range.`,
	Example: `  upack versions my/group/app
  upack versions app --feed corp-main
  upack versions app --satisfying "[1.0.0,2.0.0)"`,
	Args: cobra.ExactArgs(1),
	RunE: runVersions,
}

func init() {
	versionsCmd.Flags().StringVar(&versionsFeed, "feed", "", "feed URL or feeds.toml name")
	versionsCmd.Flags().StringVar(&versionsSatisfying, "satisfying", "", "only show versions inside this range")
}

func runVersions(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	id, err := parsePackageArg(args[0])
	if err != nil {
		return err
	}

	var filter *upackver.VersionRange
	if versionsSatisfying != "" {
		filter, err = upackver.ParseRange(versionsSatisfying)
		if err != nil {
			return fmt.Errorf("invalid range %q: %w", versionsSatisfying, err)
		}
	}

	client, err := resolveFeedClient(versionsFeed)
	if err != nil {
		return err
	}

	infos, err := client.ListVersions(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("listing versions of %s: %w", args[0], err)
	}

	if filter != nil {
		kept := infos[:0]
		for _, info := range infos {
			v, err := upackver.Parse(info.Version)
			if err != nil || !filter.Matches(v) {
				continue
			}
			kept = append(kept, info)
		}
		infos = kept
	}

	if len(infos) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("No published versions."))
		return nil
	}

	// Order by precedence, newest first. Unparseable versions sort last so
	// a feed with odd data still lists everything.
	sort.SliceStable(infos, func(i, j int) bool {
		vi, erri := upackver.Parse(infos[i].Version)
		vj, errj := upackver.Parse(infos[j].Version)
		if erri != nil || errj != nil {
			return errj != nil && erri == nil
		}
		return vi.Compare(vj) > 0
	})

	out := cmd.OutOrStdout()
	for _, info := range infos {
		if _, perr := upackver.Parse(info.Version); perr != nil {
			fmt.Fprintf(out, "%s %s", ErrorStyle.Render("✗"), info.Version)
			if GetVerbose() {
				fmt.Fprintf(out, "  %s", VerboseStyle.Render(perr.Error()))
			}
			fmt.Fprintln(out)
			continue
		}
		fmt.Fprintf(out, "%s", PkgStyle.Render(info.Version))
		if GetVerbose() && info.Published != "" {
			fmt.Fprintf(out, "  %s", VerboseStyle.Render(info.Published))
		}
		fmt.Fprintln(out)
	}
	return nil
}
