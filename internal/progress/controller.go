// Package progress is the session controller: it tracks who is signed in,
// what they completed, and runs lessons and tests on their behalf.
package progress

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/cifra/internal/api"
	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/engine"
	"github.com/abhisek/cifra/internal/logger"
	"github.com/abhisek/cifra/internal/narration"
	"github.com/abhisek/cifra/internal/quiz"
	"github.com/abhisek/cifra/internal/store"
)

// AchievementIcon is sent with every achievement the client persists.
const AchievementIcon = "🏆"

// persistTimeout bounds one background save of a lesson or test result.
const persistTimeout = time.Minute

var (
	ErrNoLesson       = errors.New("no lesson in progress")
	ErrNotFinished    = errors.New("lesson is not on its final step")
	ErrNoTest         = errors.New("no test in progress")
	ErrTestLocked     = errors.New("complete the lesson before taking its test")
	ErrTestIncomplete = errors.New("answer every question before submitting")
)

// Backend is the part of the REST client the controller uses.
type Backend interface {
	HasToken(ctx context.Context) bool
	Register(ctx context.Context, username, email, password string) (*api.User, error)
	Login(ctx context.Context, username, password string) (*api.User, error)
	Verify(ctx context.Context) (*api.User, error)
	Logout(ctx context.Context) error
	Progress(ctx context.Context) ([]api.LessonProgress, error)
	Achievements(ctx context.Context) ([]api.Achievement, error)
	Stats(ctx context.Context) (*api.Stats, error)
	SaveLessonProgress(ctx context.Context, lessonID string, completed bool, currentStep int) error
	AddAchievement(ctx context.Context, name, icon string) error
	SaveTestResult(ctx context.Context, r api.TestResultRequest) error
}

// Journal receives local history events.
type Journal interface {
	AppendHistory(ctx context.Context, ev store.HistoryEvent) error
}

// Progress is what the learner has done. Both lists keep insertion order
// and hold no duplicates.
type Progress struct {
	Completed    []string
	Achievements []string
	Streak       int
}

type Options struct {
	Backend  Backend
	Journal  Journal
	Narrator narration.Narrator
	Logger   *logger.Logger
	Clock    func() time.Time
	// EngineOptions are passed to every lesson engine.
	EngineOptions []engine.Option
}

// Controller owns the session. Lessons and tests are driven from the UI loop
// only; the signed-in user and progress may also change from a background
// sign-in and are guarded by mu.
type Controller struct {
	catalog  *content.Catalog
	backend  Backend
	journal  Journal
	narrator narration.Narrator
	log      *logger.Logger
	now      func() time.Time
	engOpts  []engine.Option

	mu       sync.RWMutex
	user     *api.User
	progress Progress

	lesson *engine.Engine
	runID  string

	test       *quiz.Run
	testLesson string
	journaled  bool

	saving sync.WaitGroup
}

func New(catalog *content.Catalog, opts Options) *Controller {
	c := &Controller{
		catalog:  catalog,
		backend:  opts.Backend,
		journal:  opts.Journal,
		narrator: opts.Narrator,
		log:      opts.Logger,
		now:      opts.Clock,
		engOpts:  opts.EngineOptions,
	}
	if c.narrator == nil {
		c.narrator = &narration.Nop{}
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

func (c *Controller) Catalog() *content.Catalog { return c.catalog }

// SetCatalog swaps the content after a reload. Running lessons keep the
// lesson they started with.
func (c *Controller) SetCatalog(cat *content.Catalog) { c.catalog = cat }

func (c *Controller) Narrator() narration.Narrator { return c.narrator }

// User is nil for guests.
func (c *Controller) User() *api.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

func (c *Controller) Authenticated() bool { return c.User() != nil }

// Progress returns a copy of the learner's progress.
func (c *Controller) Progress() Progress {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Progress{
		Completed:    slices.Clone(c.progress.Completed),
		Achievements: slices.Clone(c.progress.Achievements),
		Streak:       c.progress.Streak,
	}
}

func (c *Controller) IsCompleted(lessonID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Contains(c.progress.Completed, lessonID)
}

// TestFor returns the lesson's test and whether it may be taken yet.
func (c *Controller) TestFor(lessonID string) (*content.Test, bool) {
	t, err := c.catalog.TestForLesson(lessonID)
	if err != nil {
		return nil, false
	}
	return t, c.IsCompleted(lessonID)
}

// SetVoice turns narration on or off. Turning it off silences the current
// utterance.
func (c *Controller) SetVoice(on bool) {
	c.narrator.SetEnabled(on)
	if !on {
		c.narrator.Cancel()
	}
}

func (c *Controller) VoiceEnabled() bool { return c.narrator.Enabled() }

// Restore signs the stored token back in. A rejected token is forgotten and
// the session stays a guest one; other failures are logged.
func (c *Controller) Restore(ctx context.Context) {
	if c.backend == nil || !c.backend.HasToken(ctx) {
		return
	}
	u, err := c.backend.Verify(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			if err := c.backend.Logout(ctx); err != nil {
				c.log.Warn("forget rejected token", "error", err)
			}
		} else {
			c.log.Warn("verify token", "error", err)
		}
		return
	}
	c.signIn(ctx, u)
}

// Login signs in. Validation and backend errors are returned for the form
// to show.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	if err := validateLogin(username, password); err != nil {
		return err
	}
	if c.backend == nil {
		return errors.New("no backend configured")
	}
	u, err := c.backend.Login(ctx, username, password)
	if err != nil {
		return err
	}
	c.signIn(ctx, u)
	return nil
}

// Register validates the form, creates the account and signs in.
func (c *Controller) Register(ctx context.Context, r Registration) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if c.backend == nil {
		return errors.New("no backend configured")
	}
	u, err := c.backend.Register(ctx, r.Username, r.Email, r.Password)
	if err != nil {
		return err
	}
	c.signIn(ctx, u)
	return nil
}

// Logout forgets the token and resets progress to an empty guest session.
func (c *Controller) Logout(ctx context.Context) {
	if c.backend != nil {
		if err := c.backend.Logout(ctx); err != nil {
			c.log.Warn("logout", "error", err)
		}
	}
	c.mu.Lock()
	c.user = nil
	c.progress = Progress{}
	c.mu.Unlock()
}

func (c *Controller) signIn(ctx context.Context, u *api.User) {
	c.mu.Lock()
	c.user = u
	c.mu.Unlock()
	c.log.Info("signed in", "user", u.Username)
	c.loadProgress(ctx)
}

// loadProgress merges the server's view into the session.
func (c *Controller) loadProgress(ctx context.Context) {
	rows, err := c.backend.Progress(ctx)
	if err != nil {
		c.log.Warn("load progress", "error", err)
		return
	}
	var done []string
	for _, p := range rows {
		if p.Completed {
			done = append(done, p.LessonID)
		}
	}
	c.mu.Lock()
	c.progress.Completed = union(c.progress.Completed, done...)
	c.mu.Unlock()

	achs, err := c.backend.Achievements(ctx)
	if err != nil {
		c.log.Warn("load achievements", "error", err)
	} else {
		names := make([]string, 0, len(achs))
		for _, a := range achs {
			names = append(names, a.Name)
		}
		c.mu.Lock()
		c.progress.Achievements = union(c.progress.Achievements, names...)
		c.mu.Unlock()
	}

	c.refreshStreak(ctx)
}

func (c *Controller) refreshStreak(ctx context.Context) {
	st, err := c.backend.Stats(ctx)
	if err != nil {
		c.log.Warn("load stats", "error", err)
		return
	}
	c.mu.Lock()
	if c.user != nil {
		c.progress.Streak = st.CurrentStreak
	}
	c.mu.Unlock()
}

// persist runs fn off the UI loop. The work outlives ctx's cancellation but
// not persistTimeout.
func (c *Controller) persist(ctx context.Context, fn func(ctx context.Context)) {
	c.saving.Add(1)
	go func() {
		defer c.saving.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until background saves finish or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.saving.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Lesson is the running lesson, or nil.
func (c *Controller) Lesson() *engine.Engine { return c.lesson }

// StartLesson resets the simulator, puts the cursor on the first step and
// narrates it. A lesson already running is abandoned.
func (c *Controller) StartLesson(ctx context.Context, id string) (*engine.Engine, error) {
	l, err := c.catalog.Lesson(id)
	if err != nil {
		return nil, err
	}
	c.AbandonLesson(ctx)

	opts := append([]engine.Option{engine.WithNarrator(c.narrator), engine.WithClock(c.now)}, c.engOpts...)
	e, err := engine.New(l, opts...)
	if err != nil {
		return nil, fmt.Errorf("start lesson %s: %w", id, err)
	}
	c.lesson = e
	c.runID = uuid.NewString()
	e.Start()

	c.record(ctx, store.HistoryEvent{
		Kind:       store.EventLessonStarted,
		RunID:      c.runID,
		LessonID:   l.ID,
		TotalSteps: e.Len(),
	})
	return e, nil
}

// AbandonLesson stops the running lesson without completing it.
func (c *Controller) AbandonLesson(ctx context.Context) {
	e := c.lesson
	if e == nil {
		return
	}
	e.Stop()
	c.lesson = nil
	if e.Done() {
		return
	}
	c.record(ctx, store.HistoryEvent{
		Kind:       store.EventLessonAbandoned,
		RunID:      c.runID,
		LessonID:   e.Lesson().ID,
		Step:       e.Reached(),
		TotalSteps: e.Len(),
	})
}

// CompleteLesson finishes the running lesson: it unions the lesson and its
// achievements into progress and, for signed-in users, persists them in the
// background. Persistence failures are logged, never returned.
func (c *Controller) CompleteLesson(ctx context.Context) error {
	e := c.lesson
	if e == nil {
		return ErrNoLesson
	}
	if !e.Complete() {
		return ErrNotFinished
	}
	l := e.Lesson()
	c.mu.Lock()
	c.progress.Completed = union(c.progress.Completed, l.ID)
	c.progress.Achievements = union(c.progress.Achievements, l.Achievements...)
	c.mu.Unlock()

	if c.Authenticated() {
		c.persist(ctx, func(ctx context.Context) { c.persistLesson(ctx, l) })
	}

	c.record(ctx, store.HistoryEvent{
		Kind:       store.EventLessonCompleted,
		RunID:      c.runID,
		LessonID:   l.ID,
		Step:       e.Reached(),
		TotalSteps: e.Len(),
	})
	e.Stop()
	c.lesson = nil
	return nil
}

func (c *Controller) persistLesson(ctx context.Context, l *content.Lesson) {
	if err := c.backend.SaveLessonProgress(ctx, l.ID, true, len(l.Steps)); err != nil {
		c.log.Warn("save lesson progress", "lesson", l.ID, "error", err)
		return
	}
	for _, name := range l.Achievements {
		if err := c.backend.AddAchievement(ctx, name, AchievementIcon); err != nil {
			c.log.Warn("save achievement", "lesson", l.ID, "achievement", name, "error", err)
			return
		}
	}
	c.refreshStreak(ctx)
}

// Test is the running test, or nil.
func (c *Controller) Test() *quiz.Run { return c.test }

// StartTest opens the test of a completed lesson.
func (c *Controller) StartTest(lessonID string) (*quiz.Run, error) {
	t, ok := c.TestFor(lessonID)
	if t == nil {
		return nil, fmt.Errorf("lesson %s has no test: %w", lessonID, content.ErrNotFound)
	}
	if !ok {
		return nil, ErrTestLocked
	}
	c.test = quiz.New(t)
	c.testLesson = lessonID
	c.journaled = false
	return c.test, nil
}

// SubmitTest scores the running test. A pass marks the lesson completed and
// earns the topic lesson's achievements plus the test's own.
func (c *Controller) SubmitTest(ctx context.Context) (quiz.Result, error) {
	run := c.test
	if run == nil {
		return quiz.Result{}, ErrNoTest
	}
	if !run.Complete() {
		return quiz.Result{}, ErrTestIncomplete
	}
	res := run.Submit()
	t := run.Test()

	if res.Passed {
		earned := []string{}
		if l, err := c.catalog.LessonForTopic(t.Topic); err == nil {
			earned = append(earned, l.Achievements...)
		}
		earned = append(earned, quiz.Achievement(t))
		c.mu.Lock()
		c.progress.Completed = union(c.progress.Completed, c.testLesson)
		c.progress.Achievements = union(c.progress.Achievements, earned...)
		c.mu.Unlock()
	}

	if !c.journaled {
		c.journaled = true
		c.record(ctx, store.HistoryEvent{
			Kind:       store.EventTestFinished,
			LessonID:   c.testLesson,
			TestID:     t.ID,
			Score:      res.Correct,
			Total:      res.Total,
			Percentage: res.Percentage,
			Passed:     res.Passed,
		})
	}
	return res, nil
}

// FinishTest closes the test. Signed-in users get the result persisted in
// the background; failures are logged only.
func (c *Controller) FinishTest(ctx context.Context) {
	run := c.test
	c.test = nil
	c.testLesson = ""
	if run == nil {
		return
	}
	res, submitted := run.Result()
	if !submitted || !c.Authenticated() {
		return
	}
	req := api.TestResultRequest{
		TestID:         run.Test().ID,
		Score:          res.Correct,
		TotalQuestions: res.Total,
		Percentage:     res.Percentage,
		Passed:         res.Passed,
	}
	c.persist(ctx, func(ctx context.Context) {
		if err := c.backend.SaveTestResult(ctx, req); err != nil {
			c.log.Warn("save test result", "test", req.TestID, "error", err)
			return
		}
		c.refreshStreak(ctx)
	})
}

// RecordHint notes that the learner asked for help on the current step.
func (c *Controller) RecordHint(ctx context.Context) {
	if c.lesson == nil {
		return
	}
	c.record(ctx, store.HistoryEvent{
		Kind:       store.EventHintRequested,
		RunID:      c.runID,
		LessonID:   c.lesson.Lesson().ID,
		Step:       c.lesson.Cursor(),
		TotalSteps: c.lesson.Len(),
	})
}

func (c *Controller) record(ctx context.Context, ev store.HistoryEvent) {
	if c.journal == nil {
		return
	}
	ev.Timestamp = c.now()
	if err := c.journal.AppendHistory(ctx, ev); err != nil {
		c.log.Warn("record history", "kind", ev.Kind, "error", err)
	}
}

// union appends the items not yet in list, keeping order.
func union(list []string, items ...string) []string {
	for _, it := range items {
		if it != "" && !slices.Contains(list, it) {
			list = append(list, it)
		}
	}
	return list
}
