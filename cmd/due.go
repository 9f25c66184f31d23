package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/filter"
	"github.com/abhisek/smartstudy/internal/spacedrep"
	"github.com/abhisek/smartstudy/internal/store"
)

func newDueCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "due",
		Short: "List the questions due in a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _ := cmd.Flags().GetInt("session")
			expr, _ := cmd.Flags().GetString("filter")
			f, err := filter.Compile(expr)
			if err != nil {
				return fmt.Errorf("--filter: %w", err)
			}

			ctx := cmd.Context()
			return e.withStore(ctx, func(st *store.Store) error {
				sets, report, err := st.LoadSets(ctx)
				if err != nil {
					return err
				}
				printDropped(cmd, report)
				if !cmd.Flags().Changed("session") {
					if session, err = st.LoadCurrentSession(ctx); err != nil {
						return err
					}
				}
				if session < 1 {
					return fmt.Errorf("--session must be >= 1, got %d", session)
				}
				if sets, err = f.Apply(sets); err != nil {
					return err
				}
				return printDue(cmd, sets, session)
			})
		},
	}
	cmd.Flags().Int("session", 0, "Session number (default: the current session)")
	cmd.Flags().String("filter", "", "CEL expression selecting questions")
	return cmd
}

func printDue(cmd *cobra.Command, sets []deck.Set, session int) error {
	out := cmd.OutOrStdout()
	pool := deck.ActivePool(sets)
	due := spacedrep.SelectDue(pool, session)
	if len(due) == 0 {
		fmt.Fprintf(out, "Nothing due in session %d.", session)
		if next, ok := spacedrep.NextFutureSession(pool, session); ok {
			fmt.Fprintf(out, " Next review in session %d.", next)
		}
		fmt.Fprintln(out)
		return nil
	}

	setNames := make(map[string]string)
	for _, s := range sets {
		for _, q := range s.Questions {
			setNames[q.ID] = s.Name
		}
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSET\tSUBJECT\tMASTERY\tSTATUS\tQUESTION")
	for _, q := range due {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			q.ID, truncate(setNames[q.ID], 20), q.Subject, deck.MasteryLabel(q.IntervalIndex),
			spacedrep.Status(q, session), truncate(q.Prompt, 50))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d question(s) due in session %d.\n", len(due), session)
	return nil
}
