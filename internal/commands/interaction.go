package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rosa-dev/rosa/internal/model"
)

func newInteractionCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "interaction",
		Short: "Record meetings and contacts with beneficiaries",
	}
	cmd.PersistentFlags().StringVar(&repoDir, "repo", ".", "project directory")

	cmd.AddCommand(newInteractionAddCommand(&repoDir))
	cmd.AddCommand(newInteractionListCommand(&repoDir))
	return cmd
}

func newInteractionAddCommand(repoDir *string) *cobra.Command {
	var typ, title, description, period, changes, followUpDate, followUpNotes string
	var followUp bool

	types := make([]string, len(model.InteractionTypes))
	for i, t := range model.InteractionTypes {
		types[i] = string(t)
	}

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Record an interaction with a beneficiary",
		Args:  cobra.ExactArgs(1),
		RunE: projectRunE(repoDir, func(cmd *cobra.Command, p *project, args []string) error {
			in := model.Interaction{
				Beneficiary:      args[0],
				Title:            title,
				Description:      description,
				Period:           period,
				ChangesMade:      changes,
				FollowUpRequired: followUp,
				FollowUpNotes:    followUpNotes,
			}
			var err error
			if in.Type, err = model.ParseInteractionType(typ); err != nil {
				return err
			}
			if followUpDate != "" {
				if in.FollowUpDate, err = time.Parse(time.DateOnly, followUpDate); err != nil {
					return fmt.Errorf("invalid follow-up date %q, want YYYY-MM-DD", followUpDate)
				}
			}

			in, err = p.svc.AddInteraction(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded interaction %s (%s)\n", in.ID, in.Title)
			return nil
		}),
	}

	cmd.Flags().StringVar(&typ, "type", string(model.InteractionAssociation), "one of "+strings.Join(types, ", "))
	cmd.Flags().StringVar(&title, "title", "", "short title (required, at most 200 characters)")
	cmd.Flags().StringVar(&description, "description", "", "what was discussed")
	cmd.Flags().StringVar(&period, "period", "", "ledger period reviewed (YYYY-MM)")
	cmd.Flags().StringVar(&changes, "changes", "", "actions taken or services set up")
	cmd.Flags().BoolVar(&followUp, "follow-up", false, "needs a follow-up")
	cmd.Flags().StringVar(&followUpDate, "follow-up-date", "", "planned follow-up (YYYY-MM-DD)")
	cmd.Flags().StringVar(&followUpNotes, "follow-up-notes", "", "what to check at the follow-up")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newInteractionListCommand(repoDir *string) *cobra.Command {
	var pending bool

	cmd := &cobra.Command{
		Use:   "list <id>",
		Short: "List a beneficiary's interactions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: projectRunE(repoDir, func(cmd *cobra.Command, p *project, args []string) error {
			list, err := p.svc.Interactions(cmd.Context(), args[0], pending)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No interactions.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tTYPE\tTITLE\tPERIOD\tFOLLOW-UP\tSUMMARY")
			for _, in := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					in.At.Format(time.DateOnly), in.Type, in.Title, in.Period, followUpColumn(in), in.Summary())
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().BoolVar(&pending, "follow-up", false, "only interactions that need a follow-up")
	return cmd
}

func followUpColumn(in model.Interaction) string {
	switch {
	case !in.FollowUpRequired:
		return "-"
	case in.FollowUpDate.IsZero():
		return "yes"
	}
	return in.FollowUpDate.Format(time.DateOnly)
}
