package narration

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"

	"github.com/abhisek/cifra/internal/logger"
)

// Players tried, in order, when no player command is configured.
var knownPlayers = [][]string{
	{"mpg123", "-q"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"mpv", "--no-video", "--really-quiet"},
	{"afplay"},
}

// ErrNoPlayer is returned when no audio player can be found.
var ErrNoPlayer = errors.New("no audio player found")

// FindPlayer resolves the player command. A configured command is split on
// whitespace; otherwise the first installed known player is used.
func FindPlayer(configured string) ([]string, error) {
	if fields := strings.Fields(configured); len(fields) > 0 {
		if _, err := exec.LookPath(fields[0]); err != nil {
			return nil, err
		}
		return fields, nil
	}
	for _, p := range knownPlayers {
		if _, err := exec.LookPath(p[0]); err == nil {
			return p, nil
		}
	}
	return nil, ErrNoPlayer
}

// Voice speaks through a downloaded MP3 and an external player process.
// Each Speak cancels the utterance before it.
type Voice struct {
	fetcher *Fetcher
	player  []string
	log     *logger.Logger

	mu      sync.Mutex
	enabled bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewVoice creates an enabled voice.
func NewVoice(fetcher *Fetcher, player []string, log *logger.Logger) *Voice {
	return &Voice{fetcher: fetcher, player: player, log: log, enabled: true}
}

func (v *Voice) Speak(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cancelLocked()
	if !v.enabled || strings.TrimSpace(text) == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		path, err := v.fetcher.Fetch(ctx, text)
		if err != nil {
			if ctx.Err() == nil {
				v.log.Warn("fetch narration", "error", err)
			}
			return
		}
		args := append(append([]string(nil), v.player[1:]...), path)
		cmd := exec.CommandContext(ctx, v.player[0], args...)
		if err := cmd.Run(); err != nil && ctx.Err() == nil {
			v.log.Warn("play narration", "player", v.player[0], "error", err)
		}
	}()
}

func (v *Voice) Cancel() {
	v.mu.Lock()
	v.cancelLocked()
	v.mu.Unlock()
}

func (v *Voice) cancelLocked() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

func (v *Voice) SetEnabled(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled = on
	if !on {
		v.cancelLocked()
	}
}

func (v *Voice) Enabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enabled
}

// Close stops the current utterance and waits for its goroutine to exit.
func (v *Voice) Close() {
	v.Cancel()
	v.wg.Wait()
}
