package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/venvup/internal/app"
)

func addGlobalFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "Path to venvup.yaml (default: discovered from the working directory upwards)")
	f.StringArrayP("manifest", "m", nil, "Dependency manifest declaring the requirement (repeatable)")
	f.StringArrayP("requirement", "r", nil, "Requirement such as 'pkg~=2.0.1' (repeatable)")
	f.String("envs-home", "", "Directory holding the managed environments")
	f.String("index-url", "", "Package index to query for versions")
	f.String("archive-dir", "", "Directory of package archives to use instead of the index")
	f.StringArray("with", nil, "Additional requirement installed alongside (repeatable)")
	f.String("constraints", "", "Constraints file applied when the install leaves broken dependencies")
	f.String("log-location", "", "File or directory to append logs to")
	f.String("log-format", "", "Log format: auto, pretty or json")
	f.Bool("verbose", false, "Log debug messages")
	f.Duration("timeout", 0, "Abort the command after this long (0 disables)")
}

func addUpgradeFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("auto-upgrade", false, "Upgrade existing environments when a newer compatible version exists")
	cmd.Flags().Bool("blue-green", false, "Keep the verified environment next to the active one instead of switching")
	cmd.Flags().Bool("post-install", false, "Run the package's post-install hook after switching")
}

// options collects the flags of cmd. Positional arguments are requirements.
func options(cmd *cobra.Command, args []string) app.Options {
	f := cmd.Flags()

	opts := app.Options{}
	opts.ConfigPath, _ = f.GetString("config")
	opts.Manifests, _ = f.GetStringArray("manifest")
	opts.Requirements, _ = f.GetStringArray("requirement")
	opts.Requirements = append(opts.Requirements, args...)
	opts.EnvsHome, _ = f.GetString("envs-home")
	opts.IndexURL, _ = f.GetString("index-url")
	opts.ArchiveDir, _ = f.GetString("archive-dir")
	opts.With, _ = f.GetStringArray("with")
	opts.Constraints, _ = f.GetString("constraints")
	opts.LogLocation, _ = f.GetString("log-location")
	opts.LogFormat, _ = f.GetString("log-format")
	opts.Verbose, _ = f.GetBool("verbose")
	opts.Timeout, _ = f.GetDuration("timeout")

	opts.AutoUpgrade = changedBool(cmd, "auto-upgrade")
	opts.BlueGreen = changedBool(cmd, "blue-green")
	opts.PostInstall = changedBool(cmd, "post-install")
	return opts
}

// changedBool returns the flag value only when it was set on the command line,
// so that an unset flag leaves the configuration file in charge.
func changedBool(cmd *cobra.Command, name string) *bool {
	flag := cmd.Flags().Lookup(name)
	if flag == nil || !flag.Changed {
		return nil
	}
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return nil
	}
	return &v
}
