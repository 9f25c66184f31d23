package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartstudy/internal/llm"
	"github.com/abhisek/smartstudy/internal/store"
)

func newLLMCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "llm",
		Short: "Inspect logged LLM requests",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent LLM requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			purpose, _ := cmd.Flags().GetString("purpose")

			ctx := cmd.Context()
			return e.withStore(ctx, func(st *store.Store) error {
				events, err := st.QueryLLMEvents(ctx, store.QueryOpts{Limit: limit})
				if err != nil {
					return fmt.Errorf("query events: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(events) == 0 {
					fmt.Fprintln(out, "No LLM events found.")
					return nil
				}

				fmt.Fprintf(out, "%-5s  %-19s  %-14s  %-28s  %-6s  %-6s  %-7s  %s\n",
					"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
				fmt.Fprintln(out, strings.Repeat("─", 100))
				for _, ev := range events {
					if purpose != "" && ev.Purpose != purpose {
						continue
					}
					ok := "✓"
					if !ev.Success {
						ok = "✗"
					}
					fmt.Fprintf(out, "%-5d  %-19s  %-14s  %-28s  %-6d  %-6d  %-7d  %s\n",
						ev.ID,
						ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
						ev.Purpose,
						truncate(ev.Model, 28),
						ev.InputTokens,
						ev.OutputTokens,
						ev.LatencyMs,
						ok,
					)
				}
				return nil
			})
		},
	}
	list.Flags().Int("limit", 20, "Maximum number of events")
	list.Flags().String("purpose", "", "Only show events with this purpose")

	view := &cobra.Command{
		Use:   "view ID",
		Short: "Show the full request and response of an LLM event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid ID %q: %w", args[0], err)
			}

			ctx := cmd.Context()
			return e.withStore(ctx, func(st *store.Store) error {
				ev, err := st.GetLLMEvent(ctx, id)
				if err != nil {
					return fmt.Errorf("get event: %w", err)
				}
				if ev == nil {
					return fmt.Errorf("event %d not found", id)
				}
				printLLMEvent(cmd, ev)
				return nil
			})
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show token usage and estimated cost per model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return e.withStore(ctx, func(st *store.Store) error {
				events, err := st.QueryLLMEvents(ctx, store.QueryOpts{})
				if err != nil {
					return fmt.Errorf("query events: %w", err)
				}
				printLLMUsage(cmd, events)
				return nil
			})
		},
	}

	cmd.AddCommand(list, view, stats)
	return cmd
}

func printLLMEvent(cmd *cobra.Command, ev *store.LLMEventRecord) {
	out := cmd.OutOrStdout()
	sep := strings.Repeat("─", 60)

	fmt.Fprintf(out, "ID:        %d\n", ev.ID)
	fmt.Fprintf(out, "Time:      %s\n", ev.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Provider:  %s\n", ev.Provider)
	fmt.Fprintf(out, "Model:     %s\n", ev.Model)
	fmt.Fprintf(out, "Purpose:   %s\n", ev.Purpose)
	fmt.Fprintf(out, "Tokens:    %d in / %d out\n", ev.InputTokens, ev.OutputTokens)
	fmt.Fprintf(out, "Latency:   %dms\n", ev.LatencyMs)
	fmt.Fprintf(out, "Success:   %v\n", ev.Success)
	if ev.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:     %s\n", ev.ErrorMessage)
	}

	for _, part := range []struct{ title, body string }{
		{"REQUEST", ev.RequestBody},
		{"RESPONSE", ev.ResponseBody},
	} {
		fmt.Fprintf(out, "\n%s\n%s\n%s\n", sep, part.title, sep)
		if part.body == "" {
			fmt.Fprintln(out, "(not captured)")
			continue
		}
		fmt.Fprintln(out, part.body)
	}
}

type modelUsage struct {
	model   string
	calls   int
	failed  int
	input   int
	output  int
	latency int64
}

func printLLMUsage(cmd *cobra.Command, events []store.LLMEventRecord) {
	out := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintln(out, "No LLM usage recorded yet.")
		return
	}

	byModel := make(map[string]*modelUsage)
	for _, ev := range events {
		u, ok := byModel[ev.Model]
		if !ok {
			u = &modelUsage{model: ev.Model}
			byModel[ev.Model] = u
		}
		u.calls++
		if !ev.Success {
			u.failed++
		}
		u.input += ev.InputTokens
		u.output += ev.OutputTokens
		u.latency += ev.LatencyMs
	}
	usage := make([]*modelUsage, 0, len(byModel))
	for _, u := range byModel {
		usage = append(usage, u)
	}
	sort.Slice(usage, func(i, j int) bool { return usage[i].calls > usage[j].calls })

	sep := strings.Repeat("─", 86)
	fmt.Fprintf(out, "%-28s  %6s  %6s  %10s  %10s  %8s  %9s\n",
		"Model", "Calls", "Failed", "Input", "Output", "Avg Ms", "Est. Cost")
	fmt.Fprintln(out, sep)
	var total float64
	for _, u := range usage {
		cost := llm.EstimateCost(u.model, u.input, u.output)
		total += cost
		fmt.Fprintf(out, "%-28s  %6d  %6d  %10d  %10d  %8d  %9s\n",
			truncate(u.model, 28), u.calls, u.failed, u.input, u.output,
			u.latency/int64(u.calls), fmt.Sprintf("$%.4f", cost))
	}
	fmt.Fprintln(out, sep)
	fmt.Fprintf(out, "%-28s  %6d  %6s  %10s  %10s  %8s  %9s\n",
		"TOTAL", len(events), "", "", "", "", fmt.Sprintf("$%.4f", total))
}
