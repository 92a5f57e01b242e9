package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/cifra/internal/config"
	"github.com/abhisek/cifra/internal/logger"
	"github.com/abhisek/cifra/internal/server"
	"github.com/abhisek/cifra/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the progress backend",
	Long: `Serve the REST API the terminal app syncs accounts, progress,
achievements and test results with.

Settings come from CIFRA_ADDR, CIFRA_JWT_SECRET, CIFRA_JWT_TTL,
CIFRA_DB_DRIVER (sqlite or pgx), CIFRA_DB_DSN and CIFRA_CORS_ORIGINS.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.ServerFromEnv()
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		log, err := logger.New(cfg.LogMode, "")
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := store.OpenServer(ctx, cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return err
		}
		defer st.Close()

		srv, err := server.New(st, server.Options{
			Secret:      cfg.JWTSecret,
			TokenTTL:    cfg.JWTTTL,
			CORSOrigins: cfg.CORSOrigins,
			Logger:      log,
		})
		if err != nil {
			return err
		}
		log.Info("database ready", "driver", cfg.DBDriver, "dialect", st.Dialect())
		return srv.ListenAndServe(ctx, cfg.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides CIFRA_ADDR)")
}
