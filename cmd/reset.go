package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartstudy/internal/store"
)

func newResetCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset study progress",
		Long: "Reset returns every question to the first rung, sets the session to 1\n" +
			"and clears streaks, XP and study history. Sets and questions are kept.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				ok, err := confirm(cmd, "Reset all study progress?")
				if err != nil || !ok {
					return err
				}
			}
			return e.withStore(cmd.Context(), func(st *store.Store) error {
				if err := st.ResetProgress(cmd.Context()); err != nil {
					return err
				}
				e.logger.Info("progress reset")
				fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")
				return nil
			})
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}
