package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/gamify"
	"github.com/abhisek/smartstudy/internal/store"
)

func newStatsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show level, streaks, quests, achievements and mastery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return e.withStore(ctx, func(st *store.Store) error {
				sets, _, err := st.LoadSets(ctx)
				if err != nil {
					return err
				}
				ov, err := e.progress(st).Overview(ctx, sets)
				if err != nil {
					return err
				}
				printOverview(cmd, ov)
				return nil
			})
		},
	}
}

func printOverview(cmd *cobra.Command, ov gamify.Overview) {
	out := cmd.OutOrStdout()
	sep := strings.Repeat("─", 40)

	fmt.Fprintf(out, "Level %d  (%d/%d XP, %d total)\n", ov.Level.Level, ov.Level.XPInLevel, ov.Level.XPForNext, ov.Level.TotalXP)
	streak := fmt.Sprintf("%d day(s)", ov.Stats.CurrentStreak)
	if ov.Stats.CurrentStreak > 0 && !ov.StreakAlive {
		streak += ", study today to keep it"
	}
	fmt.Fprintf(out, "Streak:   %s (longest %d)\n", streak, ov.Stats.LongestStreak)
	fmt.Fprintf(out, "Sessions: %d completed, %d perfect\n", ov.Stats.SessionsCompleted, ov.Stats.PerfectSessions)

	fmt.Fprintf(out, "\nDaily quests (%s)\n%s\n", ov.Day, sep)
	for _, q := range ov.Quests {
		mark := " "
		if q.Claimed {
			mark = "✓"
		}
		fmt.Fprintf(out, "[%s] %-20s %d/%d  %d XP\n", mark, q.Name, min(q.Current, q.Goal), q.Goal, q.XP)
	}

	fmt.Fprintf(out, "\nAchievements\n%s\n", sep)
	for _, a := range ov.Achievements {
		mark := "☆"
		if a.Unlocked {
			mark = "★"
		}
		fmt.Fprintf(out, "%s %-20s %s\n", mark, a.Name, a.Description)
	}

	fmt.Fprintf(out, "\nMastery (%d questions, %d active set(s))\n%s\n", ov.TotalQuestions, ov.ActiveSets, sep)
	for i, label := range deck.MasteryLabels() {
		fmt.Fprintf(out, "%-12s %d\n", label, ov.Mastery[i])
	}
}
