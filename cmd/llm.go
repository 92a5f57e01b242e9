package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/cifra/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM requests",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, _, err := openLocal(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().LLMRequests(context.Background(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No LLM requests recorded.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-10s  %-12s  %-24s  %-6s  %-6s  %-7s  %s\n",
			"Seq", "Timestamp", "Provider", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 108))

		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗ " + truncate(e.ErrorMessage, 40)
			}
			fmt.Printf("%-5d  %-19s  %-10s  %-12s  %-24s  %-6d  %-6d  %-7d  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Provider,
				e.Purpose,
				truncate(e.Model, 24),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage by purpose",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openLocal(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().LLMRequests(context.Background(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		type usage struct {
			calls, failed, in, out int
			latency                int64
		}
		byPurpose := map[string]*usage{}
		var order []string
		for _, e := range events {
			u, ok := byPurpose[e.Purpose]
			if !ok {
				u = &usage{}
				byPurpose[e.Purpose] = u
				order = append(order, e.Purpose)
			}
			u.calls++
			if !e.Success {
				u.failed++
			}
			u.in += e.InputTokens
			u.out += e.OutputTokens
			u.latency += e.LatencyMs
		}

		fmt.Printf("%-16s  %6s  %6s  %10s  %10s  %8s\n", "Purpose", "Calls", "Failed", "Input", "Output", "Avg Ms")
		fmt.Println(strings.Repeat("─", 66))
		var total usage
		for _, p := range order {
			u := byPurpose[p]
			fmt.Printf("%-16s  %6d  %6d  %10d  %10d  %8d\n", p, u.calls, u.failed, u.in, u.out, u.latency/int64(u.calls))
			total.calls += u.calls
			total.failed += u.failed
			total.in += u.in
			total.out += u.out
		}
		fmt.Println(strings.Repeat("─", 66))
		fmt.Printf("%-16s  %6d  %6d  %10d  %10d\n", "TOTAL", total.calls, total.failed, total.in, total.out)
		return nil
	},
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. step-hint)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
