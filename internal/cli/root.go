// Package cli implements the restroo command line: serve, migrate and
// consume.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/iliyamo/restroo/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "restroo",
		Short: "Restaurant discovery and table booking API",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadDotEnv(opts.EnvFile)
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewConsumeCommand(opts))
	return cmd
}
