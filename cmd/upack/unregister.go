// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// unregisterCmd removes a package record from the local registry.
var unregisterCmd = &cobra.Command{
	Use:   "unregister <package>",
	Short: "Remove a package record from the local registry",
	Long: `Remove a package record from the local registry.

The package files themselves are not touched; only the registry record
is removed. Unregistering a package that is not recorded is not an
error.`,
	Example: `  upack unregister my/group/app
  upack unregister app --machine`,
	Args: cobra.ExactArgs(1),
	RunE: runUnregister,
}

func runUnregister(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	logger := newLogger(cmd.ErrOrStderr())

	id, err := parsePackageArg(args[0])
	if err != nil {
		return err
	}

	reg, err := openRegistry()
	if err != nil {
		return err
	}

	if err := reg.Lock(cmd.Context(), "Unregistering "+args[0]); err != nil {
		return fmt.Errorf("locking registry: %w", err)
	}
	defer func() {
		if err := reg.Unlock(); err != nil {
			logger.Warn("failed to release registry lock", "err", err)
		}
	}()

	removed, err := reg.Unregister(id)
	if err != nil {
		return fmt.Errorf("unregistering package: %w", err)
	}

	out := cmd.OutOrStdout()
	if removed {
		fmt.Fprintf(out, "%s Unregistered %s\n", SuccessStyle.Render("✓"), PkgStyle.Render(args[0]))
	} else {
		fmt.Fprintf(out, "%s is not registered\n", PkgStyle.Render(args[0]))
	}
	return nil
}
