package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/spacedrep"
	"github.com/abhisek/smartstudy/internal/store"
)

func newSessionCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show or change the current session number",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the current session and its workload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return e.withStore(ctx, func(st *store.Store) error {
				session, err := st.LoadCurrentSession(ctx)
				if err != nil {
					return err
				}
				sets, _, err := st.LoadSets(ctx)
				if err != nil {
					return err
				}
				pool := deck.ActivePool(sets)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Current session: %d\n", session)
				fmt.Fprintf(out, "Due now:         %d of %d active question(s)\n",
					len(spacedrep.SelectDue(pool, session)), len(pool))
				forecast := spacedrep.Forecast(pool, session, 6)
				for i := 1; i < len(forecast); i++ {
					fmt.Fprintf(out, "Session %-8d +%d becoming due\n", session+i, forecast[i])
				}
				return nil
			})
		},
	}

	next := &cobra.Command{
		Use:   "next",
		Short: "Advance to the next session without studying",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return e.withStore(ctx, func(st *store.Store) error {
				session, err := st.LoadCurrentSession(ctx)
				if err != nil {
					return err
				}
				return saveSession(cmd, st, session+1)
			})
		},
	}

	set := &cobra.Command{
		Use:   "set N",
		Short: "Set the current session number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid session number %q: must be an integer >= 1", args[0])
			}
			return e.withStore(cmd.Context(), func(st *store.Store) error {
				return saveSession(cmd, st, n)
			})
		},
	}

	cmd.AddCommand(show, next, set)
	return cmd
}

func saveSession(cmd *cobra.Command, st *store.Store, n int) error {
	if err := st.SaveCurrentSession(cmd.Context(), n); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Current session is now %d.\n", n)
	return nil
}
