package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newUpgradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade [requirements...]",
		Short: "Create or upgrade the environment of each requirement",
		Long: "Create the environment of each requirement when it is missing and, with --auto-upgrade, " +
			"switch it to the newest compatible version after verifying a shadow copy. " +
			"One JSON result is printed per requirement.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Upgrade(cmd.Context(), options(cmd, args))
		},
	}
	addUpgradeFlags(cmd)
	return cmd
}

func (c *CLI) newPromoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "promote [requirements...]",
		Short: "Switch environments retained by a blue-green upgrade into place",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Promote(cmd.Context(), options(cmd, args))
		},
	}
	cmd.Flags().Bool("post-install", false, "Run the package's post-install hook after switching")
	return cmd
}

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Upgrade again whenever one of the manifests changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Watch(cmd.Context(), options(cmd, args))
		},
	}
	addUpgradeFlags(cmd)
	return cmd
}
