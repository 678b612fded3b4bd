// Package commands implements the cashtrackerctl admin CLI. There is no
// self-service signup; accounts are provisioned with this tool.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cashtrackerctl",
		Short: "Administer a Cash Tracker instance",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newUserCommand())

	return rootCmd
}
