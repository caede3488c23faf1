package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"runapp/internal/env"
	"runapp/internal/logger"
)

// debug enables debug logging, toggled via `--debug`.
var debug bool

// noColor strips ANSI colors from every log line.
var noColor bool

// configPath is an explicit project configuration file (`--config`). Empty means
// runapp.yaml in the project directory, if present.
var configPath string

// projectDir is the project runapp operates on. Empty means the working directory.
var projectDir string

// rootCmd is the base command for `runapp`. Run without a subcommand it builds the
// application against the external database and copies the seed files.
var rootCmd = &cobra.Command{
	Use:   "runapp",
	Short: "Sets up environment for running the application",
	Long: `runapp brings the local MySQL instance, the Maven build and the Tomcat
deployment of the current project into the state a mode asks for.

Without a subcommand it builds the project, prepares the external database
and copies the database seed files next to Tomcat.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,

	// PersistentPreRun initializes the logger before any subcommand runs.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug, noColor)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(cmd, env.ModeDefault)
	},
}

// Execute registers flags and subcommands and runs the CLI. Any error is printed
// and turns into exit status 1.
func Execute() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a project configuration file (default runapp.yaml)")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "C", "", "Project directory (default the working directory)")

	if err := rootCmd.Execute(); err != nil {
		logger.Error("[ERROR] %v\n", err)
		os.Exit(1)
	}
}
