package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartstudy/internal/deck"
)

// confirm asks a yes/no question on the command's input. Anything but
// "y" or "yes" declines.
func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
	return false, nil
}

// printDropped reports records skipped while loading or importing.
func printDropped(cmd *cobra.Command, report deck.LoadReport) {
	if report.Dropped == 0 {
		return
	}
	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "Skipped %d malformed record(s):\n", report.Dropped)
	for _, e := range report.Errors {
		fmt.Fprintf(w, "  %v\n", e)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
