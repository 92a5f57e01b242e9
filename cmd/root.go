package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/cifra/internal/config"
	"github.com/abhisek/cifra/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "cifra",
	Short: "Терминальный тренажёр цифровой грамотности",
	Long: "Цифра — пошаговые уроки для тех, кто только знакомится со смартфоном: " +
		"мессенджер, звонки, покупки в интернете и Госуслуги в безопасном тренажёре.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, "")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("db", "", "Path to the local SQLite database (overrides CIFRA_DB)")
	flags.String("api-url", "", "Backend API base URL (overrides CIFRA_API_URL)")
	flags.String("content-dir", "", "Load lessons and tests from this directory instead of the built-in ones")
	flags.Bool("no-voice", false, "Start with narration turned off")
	rootCmd.Flags().Bool("watch", false, "Reload lessons when files in --content-dir change")

	rootCmd.AddCommand(lessonCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// clientConfig reads CIFRA_* settings and applies the persistent flags on
// top.
func clientConfig(cmd *cobra.Command) (config.Client, error) {
	cfg, err := config.ClientFromEnv()
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		cfg.APIURL = v
	}
	if v, _ := cmd.Flags().GetString("content-dir"); v != "" {
		cfg.ContentDir = v
	}
	if off, _ := cmd.Flags().GetBool("no-voice"); off {
		cfg.Voice = false
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then CIFRA_DB env var, then the default XDG path.
func resolveDBPath(cfg config.Client) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openLocal opens the local database named by the flags and environment.
func openLocal(cmd *cobra.Command) (*store.Store, config.Client, error) {
	cfg, err := clientConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, cfg, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, cfg, fmt.Errorf("open database: %w", err)
	}
	return st, cfg, nil
}
