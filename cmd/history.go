package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/cifra/internal/screens/history"
	"github.com/abhisek/cifra/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the local learning log",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		st, cfg, err := openLocal(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		events, err := st.EventRepo().History(context.Background(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("История пуста.")
			return nil
		}

		// Titles come from the content in use; ids are printed when it fails to load.
		catalog, _ := loadCatalog(cfg.ContentDir)
		for _, ev := range events {
			fmt.Printf("%-5d  %s  %s\n",
				ev.Sequence,
				ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
				history.Describe(ev, catalog))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 50, "Number of events to show")
}
