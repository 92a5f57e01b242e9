// Package app is the root Bubble Tea model: it owns the screen stack, draws
// the header and footer around the active screen and handles the keys that
// work everywhere.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/router"
	"github.com/abhisek/cifra/internal/screen"
	"github.com/abhisek/cifra/internal/screens/home"
	"github.com/abhisek/cifra/internal/screens/lesson"
	"github.com/abhisek/cifra/internal/screens/welcome"
	"github.com/abhisek/cifra/internal/selfupdate"
	"github.com/abhisek/cifra/internal/ui/layout"
)

const (
	restoreTimeout = 20 * time.Second
	updateTimeout  = 5 * time.Second
)

// Options configures the TUI.
type Options struct {
	Env *screen.Env

	// LessonID opens that lesson straight away, on top of the lesson list.
	LessonID string

	// ContentDir is watched for lesson edits when Watch is set.
	ContentDir string
	Watch      bool

	// Version is the running build; a release check runs when it is set and
	// Updates is not nil.
	Version string
	Updates *selfupdate.Checker
}

type restoredMsg struct{}

type catalogMsg struct {
	catalog *content.Catalog
	err     error
}

type updateMsg struct {
	latest string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	opts   Options
	env    *screen.Env
	latest *string
	width  int
	height int
}

func newAppModel(opts Options) AppModel {
	m := AppModel{opts: opts, env: opts.Env, latest: new(string)}

	if opts.LessonID != "" {
		m.router = router.New(m.newHome())
		return m
	}
	m.router = router.New(welcome.New(m.newHome))
	return m
}

func (m AppModel) newHome() screen.Screen {
	h := home.New(m.env)
	if *m.latest != "" {
		h.Update(home.UpdateAvailableMsg{Version: *m.latest})
	}
	return h
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.router.Active().Init(), m.restore()}
	if m.opts.LessonID != "" {
		cmds = append(cmds, router.Push(lesson.New(m.env, m.opts.LessonID)))
	}
	if m.opts.Updates != nil && m.opts.Version != "" {
		cmds = append(cmds, m.checkUpdate())
	}
	return tea.Batch(cmds...)
}

func (m AppModel) restore() tea.Cmd {
	session := m.env.Session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
		defer cancel()
		session.Restore(ctx)
		return restoredMsg{}
	}
}

func (m AppModel) checkUpdate() tea.Cmd {
	checker, version := m.opts.Updates, m.opts.Version
	log := m.env.Logger()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
		defer cancel()
		res, err := checker.Check(ctx, &selfupdate.CheckInput{Version: version})
		if err != nil {
			log.Debug("release check", "error", err)
			return nil
		}
		if !res.UpdateAvailable {
			return nil
		}
		return updateMsg{latest: res.LatestVersion}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case restoredMsg:
		// The header reads the session directly; forward so screens that
		// show the user can refresh.
		if r, ok := m.router.Active().(screen.Resumer); ok {
			return m, r.Resume()
		}
		return m, nil

	case catalogMsg:
		if msg.err != nil {
			m.env.Logger().Warn("reload content", "error", msg.err)
			return m, nil
		}
		m.env.Session.SetCatalog(msg.catalog)
		m.env.Logger().Info("content reloaded", "lessons", len(msg.catalog.Lessons()))
		if r, ok := m.router.Active().(screen.Resumer); ok {
			return m, r.Resume()
		}
		return m, nil

	case updateMsg:
		*m.latest = msg.latest
		return m, m.router.Update(home.UpdateAvailableMsg{Version: msg.latest})

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.Dispose()
			return m, tea.Quit
		case "esc":
			if b, ok := m.router.Active().(screen.BackHandler); ok && b.HandlesBack() {
				break
			}
			if m.router.Depth() > 1 {
				return m, router.Pop
			}
			return m, nil
		}
	}

	return m, m.router.Update(msg)
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	session := m.env.Session
	info := layout.HeaderInfo{Voice: session.VoiceEnabled()}
	if u := session.User(); u != nil {
		info.User = u.Username
		info.Streak = session.Progress().Streak
	}
	header := layout.RenderHeader(title, info, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{{Key: "Esc", Description: "Назад"}}
	}
	footerHints = append(footerHints, layout.KeyHint{Key: "Ctrl+C", Description: "Выход"})
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	if opts.Env == nil || opts.Env.Session == nil {
		return fmt.Errorf("app: session is required")
	}
	p := tea.NewProgram(newAppModel(opts))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if opts.Watch && opts.ContentDir != "" {
		go func() {
			err := content.Watch(ctx, opts.ContentDir, func(c *content.Catalog, err error) {
				p.Send(catalogMsg{catalog: c, err: err})
			})
			if err != nil {
				opts.Env.Logger().Warn("watch content", "dir", opts.ContentDir, "error", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
