package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newBeneficiaryCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:     "beneficiary",
		Aliases: []string{"ben"},
		Short:   "Manage beneficiaries",
	}
	cmd.PersistentFlags().StringVar(&repoDir, "repo", ".", "project directory")

	cmd.AddCommand(newBeneficiaryAddCommand(&repoDir))
	cmd.AddCommand(newBeneficiaryListCommand(&repoDir))
	cmd.AddCommand(newBeneficiaryRemoveCommand(&repoDir))
	return cmd
}

func newBeneficiaryAddCommand(repoDir *string) *cobra.Command {
	var first, last, period string
	var empty bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a beneficiary and create their ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*repoDir)
			if err != nil {
				return err
			}
			defer p.Close()

			b, err := p.svc.CreateBeneficiary(cmd.Context(), first, last, !empty, period)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created beneficiary %s (%s)\n", b.ID, b.FullName())
			return nil
		},
	}

	cmd.Flags().StringVar(&first, "first", "", "first name")
	cmd.Flags().StringVar(&last, "last", "", "last name")
	cmd.Flags().BoolVar(&empty, "empty", false, "start with an empty ledger instead of the category schema")
	cmd.Flags().StringVar(&period, "period", "", "first period (YYYY-MM, default current month)")
	return cmd
}

func newBeneficiaryListCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List beneficiaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*repoDir)
			if err != nil {
				return err
			}
			defer p.Close()

			list, err := p.svc.Beneficiaries()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No beneficiaries.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCREATED")
			for _, b := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", b.ID, b.FullName(), b.CreatedAt.Format(time.DateOnly))
			}
			return tw.Flush()
		},
	}
}

func newBeneficiaryRemoveCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a beneficiary and their ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*repoDir)
			if err != nil {
				return err
			}
			defer p.Close()

			if err := p.svc.DeleteBeneficiary(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed beneficiary %s\n", args[0])
			return nil
		},
	}
}
