package cmd

import (
	"github.com/spf13/cobra"
)

var lessonCmd = &cobra.Command{
	Use:   "lesson <id>",
	Short: "Open a lesson directly",
	Example: `  cifra lesson messenger-basic
  cifra lesson gosuslugi-advanced --no-voice`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, args[0])
	},
}

func init() {
	lessonCmd.Flags().Bool("watch", false, "Reload lessons when files in --content-dir change")
}
