// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os/user"
	"time"

	"github.com/spf13/cobra"

	"upack-cli/internal/config"
	"upack-cli/pkg/upackmeta"
	"upack-cli/pkg/upackver"
)

var (
	// registerPath records where the package's files live.
	registerPath string
	// registerFeed records the feed the package came from.
	registerFeed string
	// registerReason records why the package was installed.
	registerReason string
)

// registerCmd records a package in the local registry.
var registerCmd = &cobra.Command{
	Use:   "register <package> <version>",
	Short: "Record an installed package in the local registry",
	Long: `Record an installed package in the local registry.

The package argument is a name with an optional group prefix, e.g.
my/group/app. Registering an identity that is already recorded replaces
the previous record.`,
	Example: `  upack register my/group/app 1.2.3 --path /opt/app
  upack register app 2.0.0-beta.1 --feed https://proget.example.com/upack/main`,
	Args: cobra.ExactArgs(2),
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registerPath, "path", "", "directory the package is installed to")
	registerCmd.Flags().StringVar(&registerFeed, "feed", "", "source feed URL or feeds.toml name")
	registerCmd.Flags().StringVar(&registerReason, "reason", "", "reason the package was installed")
}

func runRegister(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	logger := newLogger(cmd.ErrOrStderr())

	id, err := parsePackageArg(args[0])
	if err != nil {
		return err
	}
	version, err := upackver.Parse(args[1])
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", args[1], err)
	}

	reg, err := openRegistry()
	if err != nil {
		return err
	}

	if err := reg.Lock(cmd.Context(), "Registering "+args[0]); err != nil {
		return fmt.Errorf("locking registry: %w", err)
	}
	defer func() {
		if err := reg.Unlock(); err != nil {
			logger.Warn("failed to release registry lock", "err", err)
		}
	}()

	record := &upackmeta.RegisteredPackage{
		Group:              id.Group,
		Name:               id.Name,
		Version:            version.String(),
		Path:               registerPath,
		FeedURL:            registerFeed,
		InstallationDate:   time.Now().UTC().Format(time.RFC3339),
		InstallationReason: registerReason,
		InstalledUsing:     "upack/" + Version,
		InstalledBy:        installedBy(),
	}

	if err := reg.Register(record); err != nil {
		return fmt.Errorf("registering package: %w", err)
	}

	logger.Debug("registered package", "registry", reg.Root())
	fmt.Fprintf(cmd.OutOrStdout(), "%s Registered %s %s\n",
		SuccessStyle.Render("✓"), PkgStyle.Render(args[0]), version)
	return nil
}

// installedBy resolves the recorded installer identity: the configured
// user_name if set, the OS user otherwise.
func installedBy() string {
	if cfg, err := config.Load(); err == nil && cfg.UserName != "" {
		return cfg.UserName
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}
