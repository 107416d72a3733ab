package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rosa-dev/rosa/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "rosa",
		Short:   "Budget ledgers for the beneficiaries of an association",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newBeneficiaryCommand())
	rootCmd.AddCommand(newLedgerCommand())
	rootCmd.AddCommand(newInteractionCommand())

	return rootCmd
}
