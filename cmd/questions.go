package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/store"
)

// questionFlags are shared by add-question and edit-question.
type questionFlags struct {
	prompt      string
	options     []string
	correct     int
	subject     string
	explanation string
}

func (f *questionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.prompt, "prompt", "", "Question text")
	cmd.Flags().StringArrayVar(&f.options, "option", nil, "Answer option; repeat exactly 4 times")
	cmd.Flags().IntVar(&f.correct, "correct", 0, "Number of the correct option (1-4)")
	cmd.Flags().StringVar(&f.subject, "subject", "", "Subject label")
	cmd.Flags().StringVar(&f.explanation, "explanation", "", "Explanation shown after answering")
}

// apply copies the flags the user set onto q.
func (f *questionFlags) apply(cmd *cobra.Command, q *deck.Question) error {
	flags := cmd.Flags()
	if flags.Changed("prompt") {
		q.Prompt = f.prompt
	}
	if flags.Changed("option") {
		if len(f.options) != deck.OptionCount {
			return fmt.Errorf("--option must be given exactly %d times, got %d", deck.OptionCount, len(f.options))
		}
		copy(q.Options[:], f.options)
	}
	if flags.Changed("correct") {
		if f.correct < 1 || f.correct > deck.OptionCount {
			return fmt.Errorf("--correct must be between 1 and %d, got %d", deck.OptionCount, f.correct)
		}
		q.CorrectIndex = f.correct - 1
	}
	if flags.Changed("subject") {
		q.Subject = f.subject
	}
	if flags.Changed("explanation") {
		q.Explanation = f.explanation
	}
	return nil
}

func newShowSetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "List the questions of a set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(cmd.Context(), func(st *store.Store) error {
				sets, _, err := st.LoadSets(cmd.Context())
				if err != nil {
					return err
				}
				i := deck.FindSet(sets, args[0])
				if i < 0 {
					return fmt.Errorf("%w: %s", store.ErrSetNotFound, args[0])
				}
				set := sets[i]
				out := cmd.OutOrStdout()
				if len(set.Questions) == 0 {
					fmt.Fprintf(out, "Set %q has no questions. Add one with: smartstudy sets add-question %s\n", set.Name, set.ID)
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tSUBJECT\tMASTERY\tANSWER\tQUESTION")
				for _, q := range set.Questions {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						q.ID, q.Subject, deck.MasteryLabel(q.IntervalIndex),
						truncate(q.CorrectOption(), 20), truncate(q.Prompt, 50))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(out, "%d question(s) in set %q.\n", len(set.Questions), set.Name)
				return nil
			})
		},
	}
}

func newAddQuestionCmd(e *env) *cobra.Command {
	var (
		flags questionFlags
		id    string
	)
	cmd := &cobra.Command{
		Use:   "add-question SET_ID",
		Short: "Add a question to a set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				id = deck.NewQuestionID()
			}
			q := deck.NewQuestion(id, "", [deck.OptionCount]string{}, 0)
			if err := flags.apply(cmd, &q); err != nil {
				return err
			}
			return e.withStore(cmd.Context(), func(st *store.Store) error {
				if err := st.AddQuestion(cmd.Context(), args[0], q); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added question %s to set %s.\n", q.ID, args[0])
				return syncAchievements(cmd, e.progress(st), st)
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&id, "id", "", "Question ID (generated when empty)")
	cobra.CheckErr(cmd.MarkFlagRequired("prompt"))
	cobra.CheckErr(cmd.MarkFlagRequired("option"))
	cobra.CheckErr(cmd.MarkFlagRequired("correct"))
	return cmd
}

func newEditQuestionCmd(e *env) *cobra.Command {
	var flags questionFlags
	cmd := &cobra.Command{
		Use:   "edit-question QUESTION_ID",
		Short: "Change the text, options or answer of a question",
		Long:  "Only the flags given are changed. Review progress is kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(cmd.Context(), func(st *store.Store) error {
				sets, _, err := st.LoadSets(cmd.Context())
				if err != nil {
					return err
				}
				si, qi, ok := deck.Locate(sets, args[0])
				if !ok {
					return fmt.Errorf("%w: %s", store.ErrQuestionNotFound, args[0])
				}
				q := sets[si].Questions[qi]
				if err := flags.apply(cmd, &q); err != nil {
					return err
				}
				if err := st.UpdateQuestion(cmd.Context(), q); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Question %s updated.\n", q.ID)
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newDeleteQuestionCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-question QUESTION_ID",
		Short: "Delete a single question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			return e.withStore(cmd.Context(), func(st *store.Store) error {
				if !yes {
					ok, err := confirm(cmd, fmt.Sprintf("Delete question %s? This cannot be undone.", args[0]))
					if err != nil || !ok {
						return err
					}
				}
				if err := st.DeleteQuestion(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Question %s deleted.\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}
