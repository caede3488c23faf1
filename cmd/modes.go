package cmd

import (
	"github.com/spf13/cobra"

	"runapp/internal/env"
)

// modeShort is the help line of each mode subcommand.
var modeShort = map[env.Mode]string{
	env.ModeLocal:  "Sets up local environment (local MySQL, deploy to Tomcat)",
	env.ModeCode:   "Sets up environment for VScode (external MySQL, deploy to Tomcat)",
	env.ModeDocker: "Sets up environment for Docker (local MySQL, build the image)",
	env.ModeClean:  "Cleans up and stops services",
	env.ModeDrop:   "Cleans up, stops services and drops database",
}

// modeCommand builds the subcommand that runs mode.
func modeCommand(mode env.Mode) *cobra.Command {
	return &cobra.Command{
		Use:   string(mode),
		Short: modeShort[mode],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMode(cmd, mode)
		},
	}
}

// init adds every mode except the default one, which the root command runs itself.
func init() {
	for _, mode := range env.Modes {
		if mode == env.ModeDefault {
			continue
		}
		rootCmd.AddCommand(modeCommand(mode))
	}
}
