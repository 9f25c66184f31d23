package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/store"
)

func newSetsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sets",
		Short: "List and edit question sets and their questions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List question sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(cmd.Context(), func(st *store.Store) error {
				sets, report, err := st.LoadSets(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(sets) == 0 {
					fmt.Fprintln(out, "No question sets. Import one with: smartstudy import FILE")
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tACTIVE\tQUESTIONS\tMASTERED\tSOURCE")
				for _, s := range sets {
					dist := deck.MasteryDistribution(s.Questions)
					active := "no"
					if s.Active {
						active = "yes"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
						s.ID, s.Name, active, len(s.Questions), dist[deck.LadderLength-1], s.Source)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				printDropped(cmd, report)
				return nil
			})
		},
	}

	toggle := func(use, short string, active bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " ID",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.withStore(cmd.Context(), func(st *store.Store) error {
					if err := st.SetActive(cmd.Context(), args[0], active); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Set %s %sd.\n", args[0], use)
					return nil
				})
			},
		}
	}

	rename := &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename a question set",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(cmd.Context(), func(st *store.Store) error {
				if err := st.RenameSet(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Set %s renamed to %q.\n", args[0], args[1])
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a question set and its questions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			return e.withStore(cmd.Context(), func(st *store.Store) error {
				if !yes {
					ok, err := confirm(cmd, fmt.Sprintf("Delete set %s and all its questions?", args[0]))
					if err != nil || !ok {
						return err
					}
				}
				if err := st.DeleteSet(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Set %s deleted.\n", args[0])
				return nil
			})
		},
	}
	del.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	cmd.AddCommand(
		list,
		toggle("activate", "Include a set in study and exams", true),
		toggle("deactivate", "Exclude a set from study and exams", false),
		rename,
		del,
		newShowSetCmd(e),
		newAddQuestionCmd(e),
		newEditQuestionCmd(e),
		newDeleteQuestionCmd(e),
	)
	return cmd
}
