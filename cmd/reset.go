package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Sign out and clear the local learning log",
	Long: `Forget the stored sign-in token and delete the local learning log.
Progress saved on the server and recorded LLM requests are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Print("Удалить локальную историю и выйти из аккаунта? [y/N] ")
			answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			switch strings.ToLower(strings.TrimSpace(answer)) {
			case "y", "yes", "д", "да":
			default:
				fmt.Println("Отменено.")
				return nil
			}
		}

		st, _, err := openLocal(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()
		if err := st.Settings().ClearToken(ctx); err != nil {
			return fmt.Errorf("clear token: %w", err)
		}
		if err := st.EventRepo().ClearHistory(ctx); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		fmt.Println("Готово: вы вышли из аккаунта, локальная история очищена.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
