package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/cifra/internal/api"
	"github.com/abhisek/cifra/internal/app"
	"github.com/abhisek/cifra/internal/assist"
	"github.com/abhisek/cifra/internal/config"
	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/llm"
	"github.com/abhisek/cifra/internal/logger"
	"github.com/abhisek/cifra/internal/narration"
	"github.com/abhisek/cifra/internal/progress"
	"github.com/abhisek/cifra/internal/screen"
	"github.com/abhisek/cifra/internal/selfupdate"
	"github.com/abhisek/cifra/internal/store"
)

// voiceSetting remembers the learner's last narration choice.
const voiceSetting = "voice"

// saveGrace is how long quitting waits for progress still being saved.
const saveGrace = 10 * time.Second

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command, lessonID string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, cfg, err := openLocal(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	dataDir, err := store.DataDir()
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	log, err := logger.New(cfg.LogMode, filepath.Join(dataDir, "cifra.log"))
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer log.Sync()

	catalog, err := loadCatalog(cfg.ContentDir)
	if err != nil {
		return err
	}
	if lessonID != "" {
		if _, err := catalog.Lesson(lessonID); err != nil {
			return err
		}
	}

	settings := st.Settings()
	events := st.EventRepo()
	client := api.New(api.Options{BaseURL: cfg.APIURL, Tokens: settings})

	narrator, closeVoice := buildNarrator(cfg, dataDir, log)
	defer closeVoice()
	narrator.SetEnabled(cfg.Voice && settings.Bool(ctx, voiceSetting, true))

	session := progress.New(catalog, progress.Options{
		Backend:  client,
		Journal:  events,
		Narrator: narrator,
		Logger:   log.With("component", "session"),
	})

	env := &screen.Env{
		Session:   session,
		Dashboard: client,
		History:   events,
		Log:       log,
	}

	llmCfg := llm.ConfigFromEnv()
	if llmCfg.Enabled() {
		provider, err := llm.NewProvider(ctx, llmCfg, events, log.With("component", "llm"))
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "Подсказки ИИ будут недоступны.")
		} else {
			env.Assist = assist.NewService(provider, assist.DefaultConfig())
		}
	}

	opts := app.Options{
		Env:        env,
		LessonID:   lessonID,
		ContentDir: cfg.ContentDir,
	}
	if version != "(devel)" {
		opts.Version = version
		opts.Updates = selfupdate.NewChecker()
	}
	opts.Watch, _ = cmd.Flags().GetBool("watch")

	runErr := app.Run(opts)

	saveCtx, cancel := context.WithTimeout(ctx, saveGrace)
	defer cancel()
	if err := session.Wait(saveCtx); err != nil {
		log.Warn("unsaved progress on exit", "error", err)
	}
	if err := settings.SetBool(ctx, voiceSetting, narrator.Enabled()); err != nil {
		log.Warn("save voice setting", "error", err)
	}
	return runErr
}

func loadCatalog(dir string) (*content.Catalog, error) {
	if dir == "" {
		c, err := content.Embedded()
		if err != nil {
			return nil, fmt.Errorf("load built-in content: %w", err)
		}
		return c, nil
	}
	c, err := content.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load content from %s: %w", dir, err)
	}
	return c, nil
}

// buildNarrator returns a speaking narrator when an audio player is
// installed and a silent one otherwise.
func buildNarrator(cfg config.Client, dataDir string, log *logger.Logger) (narration.Narrator, func()) {
	player, err := narration.FindPlayer(cfg.VoicePlayer)
	if err != nil {
		if !errors.Is(err, narration.ErrNoPlayer) || cfg.VoicePlayer != "" {
			log.Warn("voice player", "player", cfg.VoicePlayer, "error", err)
		}
		return &narration.Nop{}, func() {}
	}
	fetcher := narration.NewFetcher(cfg.TTSURL, filepath.Join(dataDir, "voice"))
	v := narration.NewVoice(fetcher, player, log.With("component", "voice"))
	return v, v.Close
}
