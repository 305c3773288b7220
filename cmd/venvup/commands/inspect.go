package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/venvup/internal/app"
)

func (c *CLI) newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install [requirement]",
		Short: "Install a requirement into an existing environment and print the install response",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			envPath, _ := cmd.Flags().GetString("env")
			return c.app.Install(cmd.Context(), app.InstallOptions{
				Options: options(cmd, args),
				EnvPath: envPath,
			})
		},
	}
	cmd.Flags().String("env", "", "Environment to install into (default: located under --envs-home)")
	return cmd
}

func (c *CLI) newVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions [requirements...]",
		Short: "Print the version each existing environment can be upgraded to",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Versions(cmd.Context(), options(cmd, args))
		},
	}
}

func (c *CLI) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [requirements...]",
		Short: "Report broken dependencies in the environment of each requirement",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Check(cmd.Context(), options(cmd, args))
		},
	}
}

func (c *CLI) newLocateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locate [requirements...]",
		Short: "Print where the environment of each requirement lives",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Locate(cmd.Context(), options(cmd, args))
		},
	}
}

func (c *CLI) newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [requirements...]",
		Short: "Print the recorded upgrade results of each requirement",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.History(cmd.Context(), options(cmd, args))
		},
	}
}
