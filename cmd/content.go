package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/engine"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Inspect and check lesson content",
}

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List lessons and tests",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := clientConfig(cmd)
		if err != nil {
			return err
		}
		catalog, err := loadCatalog(cfg.ContentDir)
		if err != nil {
			return err
		}
		level, _ := cmd.Flags().GetString("level")

		fmt.Printf("%-22s  %-34s  %-12s  %-10s  %5s  %s\n",
			"ID", "Title", "Level", "Simulator", "Steps", "Test")
		fmt.Println(strings.Repeat("─", 100))
		lessons := catalog.Filter(content.Level(level))
		for _, l := range lessons {
			test := "-"
			if t, err := catalog.TestForLesson(l.ID); err == nil {
				test = t.ID
			}
			fmt.Printf("%-22s  %-34s  %-12s  %-10s  %5d  %s\n",
				l.ID, truncate(l.Title, 34), l.Level, l.Simulator(), len(l.Steps), test)
		}
		fmt.Printf("\n%d lessons, %d tests\n", len(lessons), len(catalog.Tests()))
		return nil
	},
}

var contentValidateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate a content directory",
	Long: `Load every lesson and test in a directory laid out like the built-in
content (lessons/*.yaml, tests/*.yaml), check them against the schemas and
build each lesson's simulator. Without a directory the built-in content is
checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		} else if cfg, err := clientConfig(cmd); err == nil {
			dir = cfg.ContentDir
		}
		catalog, err := loadCatalog(dir)
		if err != nil {
			return err
		}

		var failed int
		for _, l := range catalog.Lessons() {
			if _, err := engine.NewSimulator(&l); err != nil {
				fmt.Printf("✗ %s: %v\n", l.ID, err)
				failed++
				continue
			}
			fmt.Printf("✓ %s (%d steps)\n", l.ID, len(l.Steps))
		}
		for _, t := range catalog.Tests() {
			if _, err := catalog.LessonForTopic(t.Topic); err != nil {
				fmt.Printf("✗ test %s: no lesson for topic %q\n", t.ID, t.Topic)
				failed++
				continue
			}
			fmt.Printf("✓ test %s (%d questions)\n", t.ID, len(t.Questions))
		}
		if failed > 0 {
			return fmt.Errorf("%d content problems", failed)
		}
		fmt.Println("\nContent is valid.")
		return nil
	},
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func init() {
	contentListCmd.Flags().String("level", "", "Only lessons of this level (Базовый or Расширенный)")

	contentCmd.AddCommand(contentListCmd)
	contentCmd.AddCommand(contentValidateCmd)
}
