package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/cifra/internal/api"
	"github.com/abhisek/cifra/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics of the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, err := openLocal(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		client := api.New(api.Options{BaseURL: cfg.APIURL, Tokens: st.Settings()})
		if !client.HasToken(ctx) {
			fmt.Println("Вы не вошли в аккаунт. Войдите в приложении, чтобы видеть статистику.")
			return nil
		}
		dash, err := client.Dashboard(ctx)
		if err != nil {
			if api.IsUnauthorized(err) {
				fmt.Println("Сессия истекла. Войдите в приложении ещё раз.")
				return nil
			}
			return fmt.Errorf("load stats: %s", api.Message(err))
		}

		s := dash.Stats
		fmt.Printf("👤 %s\n\n", dash.User.Username)
		fmt.Printf("  Пройдено уроков:  %d\n", s.LessonsCompleted)
		fmt.Printf("  Сдано тестов:     %d\n", s.TestsPassed)
		fmt.Printf("  Достижений:       %d\n", s.Achievements)
		fmt.Printf("  Серия:            %d дн. (лучшая %d, следующая цель %d)\n",
			s.CurrentStreak, s.LongestStreak, stats.NextStreakThreshold(s.CurrentStreak))
		if s.LastActivityDate != "" {
			fmt.Printf("  Последнее занятие: %s\n", s.LastActivityDate)
		}
		if len(dash.RecentTests) > 0 {
			fmt.Println("\nПоследние тесты:")
			for _, t := range dash.RecentTests {
				mark := "✗"
				if t.Passed {
					mark = "✓"
				}
				fmt.Printf("  %s %-20s %d/%d (%d%%)\n", mark, t.TestID, t.Score, t.TotalQuestions, t.Percentage)
			}
		}
		return nil
	},
}
