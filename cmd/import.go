package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartstudy/internal/gamify"
	"github.com/abhisek/smartstudy/internal/store"
	"github.com/abhisek/smartstudy/internal/transfer"
)

func newImportCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import questions from a CSV, Markdown or JSON file",
		Long: "Import questions into a new set named after the file.\n\n" +
			"CSV columns: question,option1,option2,option3,option4,correctAnswerIndex,subject,explanation\n" +
			"Markdown: # set name, ## subject, ### question, four task items with one [x], > explanation\n" +
			"JSON: a document written by 'smartstudy export'",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			formatName, _ := cmd.Flags().GetString("format")
			name, _ := cmd.Flags().GetString("name")

			format, err := transfer.ParseFormat(formatName, path)
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()

			sets, report, err := transfer.Import(f, transfer.ImportOptions{
				Format:   format,
				Name:     name,
				FileName: filepath.Base(path),
			})
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}
			printDropped(cmd, report)

			ctx := cmd.Context()
			return e.withStore(ctx, func(st *store.Store) error {
				out := cmd.OutOrStdout()
				for _, set := range sets {
					if err := st.AddSet(ctx, set); err != nil {
						return fmt.Errorf("add set %q: %w", set.Name, err)
					}
					e.logger.Info("imported set", "set", set.ID, "questions", len(set.Questions), "format", format)
					fmt.Fprintf(out, "Imported %d question(s) into set %q (%s).\n", len(set.Questions), set.Name, set.ID)
				}
				return syncAchievements(cmd, e.progress(st), st)
			})
		},
	}
	cmd.Flags().String("format", "", "File format: csv, md or json (default: from extension)")
	cmd.Flags().String("name", "", "Set name (default: Markdown title or file name)")
	return cmd
}

// syncAchievements unlocks achievements earned by library changes and
// prints them.
func syncAchievements(cmd *cobra.Command, svc *gamify.Service, st *store.Store) error {
	ctx := cmd.Context()
	sets, _, err := st.LoadSets(ctx)
	if err != nil {
		return err
	}
	rewards, err := svc.SyncAchievements(ctx, sets)
	if err != nil {
		return fmt.Errorf("sync achievements: %w", err)
	}
	for _, r := range rewards {
		fmt.Fprintf(cmd.OutOrStdout(), "★ Achievement unlocked: %s (+%d XP)\n", r.Name, r.XP)
	}
	return nil
}
