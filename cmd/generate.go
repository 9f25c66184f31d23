package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartstudy/internal/llm"
	"github.com/abhisek/smartstudy/internal/questiongen"
	"github.com/abhisek/smartstudy/internal/store"
)

func newGenerateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate FILE",
		Short: "Generate a question set from study notes with an LLM",
		Long: "Generate reads a plain text or Markdown file, asks the configured LLM\n" +
			"provider for multiple-choice questions and stores them in a new set.\n\n" +
			"Configure a provider with llm.provider or one of GEMINI_API_KEY,\n" +
			"OPENAI_API_KEY, ANTHROPIC_API_KEY or OPENROUTER_API_KEY.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			count, _ := cmd.Flags().GetInt("count")
			subject, _ := cmd.Flags().GetString("subject")
			if count < 1 {
				return fmt.Errorf("--count must be >= 1, got %d", count)
			}
			if e.cfg.LLM.Provider == "" {
				return errors.New("no LLM provider configured; set llm.provider or an API key environment variable")
			}
			text, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			ctx := cmd.Context()
			return e.withStore(ctx, func(st *store.Store) error {
				provider, err := llm.NewProvider(ctx, e.cfg.LLM, st, e.logger)
				if err != nil {
					return err
				}
				if mock, ok := llm.Unwrap(provider).(*llm.MockProvider); ok && mock.Fallback == nil {
					mock.Fallback = questiongen.SampleResponder
				}

				sets, _, err := st.LoadSets(ctx)
				if err != nil {
					return err
				}
				var existing []string
				for _, s := range sets {
					for _, q := range s.Questions {
						existing = append(existing, q.Prompt)
					}
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Generating %d question(s) with %s (%s)...\n", count, provider.Name(), provider.ModelID())
				gen := questiongen.New(provider, questiongen.DefaultConfig(), e.logger)
				res, err := gen.Generate(ctx, questiongen.Input{
					Text:     string(text),
					Count:    count,
					Subject:  subject,
					Existing: existing,
				})
				if err != nil {
					return fmt.Errorf("generate: %w", err)
				}

				set := questiongen.NewSet(filepath.Base(path), res.Questions, time.Now())
				if err := st.AddSet(ctx, set); err != nil {
					return fmt.Errorf("save generated set: %w", err)
				}
				fmt.Fprintf(out, "Added %d question(s) to set %q (%s) from %d request(s).\n",
					len(set.Questions), set.Name, set.ID, res.Chunks)
				if len(res.Rejected) > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "Rejected %d candidate(s):\n", len(res.Rejected))
					for _, r := range res.Rejected {
						fmt.Fprintf(cmd.ErrOrStderr(), "  %v\n", r)
					}
				}
				return syncAchievements(cmd, e.progress(st), st)
			})
		},
	}
	cmd.Flags().IntP("count", "n", 10, "Number of questions to generate")
	cmd.Flags().String("subject", "", "Subject for every generated question (default: chosen by the model)")
	return cmd
}
