package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/store"
	"github.com/abhisek/smartstudy/internal/transfer"
)

func newExportCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export sets as a JSON document, CSV or Markdown",
		Long: "Export writes the library to stdout or a file. JSON keeps scheduling\n" +
			"state and the current session and can be imported again; CSV and\n" +
			"Markdown carry authored content only.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			formatName, _ := cmd.Flags().GetString("format")
			setID, _ := cmd.Flags().GetString("set")
			outPath, _ := cmd.Flags().GetString("output")

			format, err := transfer.ParseFormat(formatName, "")
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var lib deck.Library
			err = e.withStore(ctx, func(st *store.Store) error {
				sets, report, err := st.LoadSets(ctx)
				if err != nil {
					return err
				}
				printDropped(cmd, report)
				session, err := st.LoadCurrentSession(ctx)
				if err != nil {
					return err
				}
				lib = deck.Library{CurrentSession: session, Sets: sets}
				return nil
			})
			if err != nil {
				return err
			}

			if setID != "" {
				i := deck.FindSet(lib.Sets, setID)
				if i < 0 {
					return fmt.Errorf("%w: %s", store.ErrSetNotFound, setID)
				}
				lib.Sets = lib.Sets[i : i+1]
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, cerr := os.Create(outPath)
				if cerr != nil {
					return fmt.Errorf("create %s: %w", outPath, cerr)
				}
				defer func() { err = errors.Join(err, f.Close()) }()
				w = f
			}
			if err := writeLibrary(w, format, lib); err != nil {
				return err
			}
			if outPath != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d set(s) to %s.\n", len(lib.Sets), outPath)
			}
			return nil
		},
	}
	cmd.Flags().String("format", "json", "Output format: json, csv or md")
	cmd.Flags().String("set", "", "Export only this set ID")
	cmd.Flags().StringP("output", "o", "", "Write to FILE instead of stdout")
	return cmd
}

func writeLibrary(w io.Writer, format transfer.Format, lib deck.Library) error {
	switch format {
	case transfer.FormatJSON:
		return deck.EncodeDocument(w, lib)
	case transfer.FormatCSV:
		var questions []deck.Question
		for _, s := range lib.Sets {
			questions = append(questions, s.Questions...)
		}
		return transfer.WriteCSV(w, questions)
	case transfer.FormatMarkdown:
		for i, s := range lib.Sets {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			if err := transfer.WriteMarkdown(w, s); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unsupported export format %q", format)
}
