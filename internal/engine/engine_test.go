package engine

import (
	"testing"
	"time"

	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/narration"
	"github.com/abhisek/cifra/internal/sim"
	"github.com/abhisek/cifra/internal/sim/messenger"
	"github.com/abhisek/cifra/internal/sim/phone"
	"github.com/abhisek/cifra/internal/sim/portal"
	"github.com/abhisek/cifra/internal/sim/shop"
)

func lesson(t *testing.T, id string) *content.Lesson {
	t.Helper()
	c, err := content.Embedded()
	if err != nil {
		t.Fatalf("Embedded: %v", err)
	}
	l, err := c.Lesson(id)
	if err != nil {
		t.Fatalf("Lesson(%s): %v", id, err)
	}
	return l
}

// fakeClock advances only when told to.
type fakeClock struct{ t time.Time }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 27, 9, 41, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.t }

// fire waits out tm and fires it.
func (c *fakeClock) fire(e *Engine, tm *Timer) *Timer {
	if tm == nil {
		return nil
	}
	c.t = c.t.Add(tm.Delay)
	return e.Fire(tm.ID)
}

// drain fires timers until none remain.
func (c *fakeClock) drain(e *Engine, tm *Timer) {
	for tm != nil {
		tm = c.fire(e, tm)
	}
}

func mustContinue(t *testing.T, e *Engine) {
	t.Helper()
	if !e.Continue() {
		t.Fatalf("Continue refused on step %d (%s)", e.Cursor(), e.Step().Action)
	}
}

func expectStep(t *testing.T, e *Engine, action string) {
	t.Helper()
	if got := e.Step().Action; got != action {
		t.Fatalf("cursor %d at %q, want %q", e.Cursor(), got, action)
	}
}

func TestMessengerScenario(t *testing.T) {
	clock := newClock()
	voice := &narration.Nop{}
	voice.SetEnabled(true)
	e, err := New(lesson(t, "messenger-basic"), WithClock(clock.now), WithNarrator(voice))
	if err != nil {
		t.Fatal(err)
	}
	e.Start()
	mustContinue(t, e)
	expectStep(t, e, "select-chat")

	tm, ok := e.Do("select-chat", sim.Arg{ID: 1})
	if !ok || tm == nil {
		t.Fatal("select-chat should be accepted with a pending advance")
	}
	m := e.Simulator().(*messenger.Simulator)
	if n := len(m.State().Messages); n != 1 {
		t.Fatalf("messages after select-chat = %d, want 1", n)
	}
	expectStep(t, e, "select-chat")
	if tm.Delay != 800*time.Millisecond {
		t.Errorf("delay = %v, want 800ms", tm.Delay)
	}
	clock.drain(e, tm)
	expectStep(t, e, "type-message")

	// Each keystroke re-checks the match; "привет" arrives at the sixth rune.
	var typed []rune
	for _, r := range "привет, Анна!" {
		typed = append(typed, r)
		if tm, ok = e.Type(sim.FieldMessage, string(typed)); ok {
			break
		}
	}
	if !ok || string(typed) != "привет" {
		t.Fatalf("type-message accepted at %q", string(typed))
	}
	clock.drain(e, tm)
	expectStep(t, e, "send-message")

	tm, ok = e.Do("send-message", sim.Arg{})
	if !ok {
		t.Fatal("send-message rejected")
	}
	st := m.State()
	last := st.Messages[len(st.Messages)-1]
	if last.Sender != messenger.SenderMe || last.Time != "09:41" || st.Input != "" {
		t.Errorf("after send: last=%+v input=%q", last, st.Input)
	}
	clock.drain(e, tm)
	expectStep(t, e, "back-to-list")

	spoken := voice.Spoken()
	if len(spoken) != 5 || spoken[len(spoken)-1] != e.Step().Instruction {
		t.Errorf("narration = %v", spoken)
	}
}

func TestMismatchIsIgnored(t *testing.T) {
	e, err := New(lesson(t, "messenger-basic"), WithoutDelays())
	if err != nil {
		t.Fatal(err)
	}
	mustContinue(t, e)

	m := e.Simulator().(*messenger.Simulator)
	before := m.State()
	if _, ok := e.Do("open-search", sim.Arg{}); ok {
		t.Error("open-search accepted on select-chat")
	}
	if _, ok := e.Do("select-chat", sim.Arg{ID: 42}); ok {
		t.Error("unknown chat accepted")
	}
	after := m.State()
	if after.ShowSearch != before.ShowSearch || after.CurrentChat != before.CurrentChat {
		t.Error("a rejected action mutated state")
	}
	expectStep(t, e, "select-chat")
}

func TestRepeatedActionAdvancesOnce(t *testing.T) {
	clock := newClock()
	e, err := New(lesson(t, "messenger-basic"), WithClock(clock.now))
	if err != nil {
		t.Fatal(err)
	}
	mustContinue(t, e)

	tm, ok := e.Do("select-chat", sim.Arg{ID: 1})
	if !ok {
		t.Fatal("first select-chat rejected")
	}
	if _, ok := e.Do("select-chat", sim.Arg{ID: 1}); ok {
		t.Error("second select-chat accepted while the step is locked")
	}
	clock.drain(e, tm)
	if _, ok := e.Do("select-chat", sim.Arg{ID: 1}); ok {
		t.Error("select-chat accepted on the next step")
	}
	if got := e.Cursor(); got != 2 {
		t.Errorf("cursor = %d, want 2", got)
	}
}

func TestShopTotal(t *testing.T) {
	e, err := New(lesson(t, "shop-advanced"), WithoutDelays())
	if err != nil {
		t.Fatal(err)
	}
	mustContinue(t, e)

	steps := []struct {
		action string
		arg    sim.Arg
	}{
		{"select-category", sim.Arg{ID: 1}},
		{"select-product", sim.Arg{ID: 1}},
		{"add-to-cart", sim.Arg{}},
		{"continue-shopping", sim.Arg{}},
		{"select-second-product", sim.Arg{ID: 2}},
		{"add-second-to-cart", sim.Arg{}},
		{"open-cart", sim.Arg{}},
		{"start-checkout", sim.Arg{}},
		{"select-delivery-method", sim.Arg{Key: "courier"}},
		{"select-address", sim.Arg{ID: 1}},
		{"select-payment", sim.Arg{Key: "card"}},
	}
	for _, s := range steps {
		if _, ok := e.Do(s.action, s.arg); !ok {
			t.Fatalf("%s rejected at cursor %d", s.action, e.Cursor())
		}
	}

	sh := e.Simulator().(*shop.Simulator)
	if got := sh.Total(); got != 1800 {
		t.Errorf("total = %d, want 1800", got)
	}
	expectStep(t, e, "confirm-order")
}

func TestPortalPhoneExactMatch(t *testing.T) {
	e, err := New(lesson(t, "gosuslugi-advanced"), WithoutDelays())
	if err != nil {
		t.Fatal(err)
	}
	mustContinue(t, e)
	mustContinue(t, e)
	if _, ok := e.Do("select-login-method", sim.Arg{Key: "phone"}); !ok {
		t.Fatal("select-login-method rejected")
	}
	expectStep(t, e, "enter-phone")

	if _, ok := e.Type(sim.FieldLogin, "+7 (999) 123-45-6"); ok {
		t.Error("one digit short was accepted")
	}
	expectStep(t, e, "enter-phone")
	if _, ok := e.Do("enter-phone", sim.Arg{}); ok {
		t.Error("explicit submit with a short number was accepted")
	}

	if _, ok := e.Type(sim.FieldLogin, "+7 (999) 123-45-67"); !ok {
		t.Fatal("exact number rejected")
	}
	expectStep(t, e, "enter-password")

	if _, ok := e.Type(sim.FieldPassword, "PASSWORD123"); ok {
		t.Error("password match must be case-sensitive")
	}
	if _, ok := e.Type(sim.FieldPassword, "password123"); !ok {
		t.Fatal("password rejected")
	}
	expectStep(t, e, "logged-in")
	mustContinue(t, e)

	p := e.Simulator().(*portal.Simulator)
	if got := p.State().CurrentScreen; got != portal.ScreenDashboard {
		t.Errorf("screen after logged-in = %q", got)
	}
}

func TestStagesAndAdvanceInterleave(t *testing.T) {
	clock := newClock()
	e, err := New(lesson(t, "gosuslugi-advanced"), WithClock(clock.now), WithoutDelays())
	if err != nil {
		t.Fatal(err)
	}
	// Walk to request-certificate instantly, then switch to real timers.
	walkPortalToCertificate(t, e)
	e.instant = false

	tm, ok := e.Do("request-certificate", sim.Arg{})
	if !ok {
		t.Fatal("request-certificate rejected")
	}
	p := e.Simulator().(*portal.Simulator)

	tm = clock.fire(e, tm)
	expectStep(t, e, "verify-data")
	if p.State().CertificateIssued {
		t.Error("certificate issued before verification finished")
	}
	if tm == nil {
		t.Fatal("verification stage should still be pending")
	}
	if tm.Delay != 500*time.Millisecond {
		t.Errorf("remaining verification delay = %v, want 500ms", tm.Delay)
	}
	clock.fire(e, tm)
	if !p.State().CertificateIssued {
		t.Error("certificate should be issued")
	}
}

func walkPortalToCertificate(t *testing.T, e *Engine) {
	t.Helper()
	mustContinue(t, e)
	mustContinue(t, e)
	do := func(action string, arg sim.Arg) {
		t.Helper()
		if _, ok := e.Do(action, arg); !ok {
			t.Fatalf("%s rejected at %s", action, e.Step().Action)
		}
	}
	do("select-login-method", sim.Arg{Key: "phone"})
	e.Type(sim.FieldLogin, "+7 (999) 123-45-67")
	e.Type(sim.FieldPassword, "password123")
	mustContinue(t, e)
	do("select-service", sim.Arg{Key: "doctor"})
	e.Type(sim.FieldPolicy, "1234567890123456")
	do("select-specialty", sim.Arg{ID: 1})
	do("select-doctor", sim.Arg{ID: 1})
	do("select-clinic", sim.Arg{ID: 1})
	do("select-date", sim.Arg{ID: 1})
	do("select-time", sim.Arg{ID: 1})
	do("confirm-appointment", sim.Arg{})
	do("appointment-confirmed", sim.Arg{})
	do("select-certificate-service", sim.Arg{})
	mustContinue(t, e)
	expectStep(t, e, "request-certificate")
}

func TestJumpBack(t *testing.T) {
	clock := newClock()
	voice := &narration.Nop{}
	voice.SetEnabled(true)
	e, err := New(lesson(t, "phone-basic"), WithClock(clock.now), WithNarrator(voice))
	if err != nil {
		t.Fatal(err)
	}
	mustContinue(t, e)
	tm, _ := e.Do("turn-on", sim.Arg{})
	clock.drain(e, tm)
	mustContinue(t, e)
	expectStep(t, e, "volume-up")

	if e.JumpTo(e.Cursor() + 1) {
		t.Error("jumping past the reached step must be refused")
	}

	tm, ok := e.Do("volume-up", sim.Arg{})
	if !ok || tm == nil {
		t.Fatal("volume-up rejected")
	}
	spokenBefore := len(voice.Spoken())
	if !e.JumpTo(1) {
		t.Fatal("JumpTo(1) refused")
	}
	expectStep(t, e, "turn-on")
	if !e.Reviewing() || e.Reached() != 3 {
		t.Fatalf("reviewing=%v reached=%d", e.Reviewing(), e.Reached())
	}
	if _, ok := e.Do("turn-on", sim.Arg{}); ok {
		t.Error("an action was accepted on a reviewed step")
	}
	if e.AwaitsContinue() || e.Continue() {
		t.Error("a reviewed step must not be continued")
	}
	ph := e.Simulator().(*phone.Simulator)
	if !ph.State().IsOn {
		t.Error("jump must not undo mutations")
	}

	// The pending advance still belongs to volume-up.
	clock.drain(e, tm)
	if e.Cursor() != 1 || e.Reached() != 4 {
		t.Fatalf("cursor=%d reached=%d after the pending advance", e.Cursor(), e.Reached())
	}
	if len(voice.Spoken()) != spokenBefore {
		t.Error("review must not narrate")
	}
	if !e.Passed(3) || e.Passed(4) {
		t.Error("passed markers should follow the reached step")
	}

	if !e.JumpTo(e.Reached()) {
		t.Fatal("returning to the reached step refused")
	}
	expectStep(t, e, "volume-down")
	for _, action := range []string{"volume-down", "open-power-menu", "turn-off"} {
		tm, ok := e.Do(action, sim.Arg{})
		if !ok {
			t.Fatalf("%s rejected after the review", action)
		}
		clock.drain(e, tm)
	}
	expectStep(t, e, content.ActionComplete)
	if !e.Complete() {
		t.Error("lesson could not be finished after a review")
	}
}

func TestJumpBackDuringInstall(t *testing.T) {
	clock := newClock()
	e, err := New(lesson(t, "phone-advanced"), WithClock(clock.now))
	if err != nil {
		t.Fatal(err)
	}
	do := func(action string, arg sim.Arg) {
		t.Helper()
		tm, ok := e.Do(action, arg)
		if !ok {
			t.Fatalf("%s rejected at %s", action, e.Step().Action)
		}
		clock.drain(e, tm)
	}
	typ := func(field sim.Field, value string) {
		t.Helper()
		tm, ok := e.Type(field, value)
		if !ok {
			t.Fatalf("%q rejected at %s", value, e.Step().Action)
		}
		clock.drain(e, tm)
	}

	mustContinue(t, e)
	do("open-settings", sim.Arg{})
	do("open-wifi", sim.Arg{})
	do("select-wifi", sim.Arg{ID: 1})
	typ(sim.FieldWifiPassword, "12345678")
	mustContinue(t, e)
	do("go-home", sim.Arg{})
	do("open-appstore", sim.Arg{})
	typ(sim.FieldAppSearch, "Погода")
	do("select-app", sim.Arg{ID: 1})
	expectStep(t, e, "install-app")

	tm, ok := e.Do("install-app", sim.Arg{})
	if !ok {
		t.Fatal("install-app rejected")
	}
	if !e.JumpTo(2) {
		t.Fatal("JumpTo(2) refused")
	}
	clock.drain(e, tm)

	ph := e.Simulator().(*phone.Simulator)
	if st := ph.State(); st.Installing || st.CurrentScreen != phone.ScreenAppInstalled {
		t.Fatalf("install did not finish during the review: %+v", st)
	}
	if e.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2", e.Cursor())
	}

	e.JumpTo(e.Reached())
	expectStep(t, e, "app-installed")
	mustContinue(t, e)
	if !e.Complete() {
		t.Error("Complete refused")
	}
}

func TestUnknownActionIsRejected(t *testing.T) {
	l := &content.Lesson{
		ID: "typo",
		Steps: []content.Step{
			{Action: content.ActionIntro, SimulatorType: content.SimIntro},
			{Action: "selct-chat", SimulatorType: content.SimMessenger},
			{Action: content.ActionComplete, SimulatorType: content.SimComplete},
		},
	}
	if _, err := New(l); err == nil {
		t.Fatal("a misspelled action was accepted")
	}
	if _, err := NewSimulator(l); err == nil {
		t.Error("NewSimulator accepted a misspelled action")
	}

	l.Steps[1].Action = "view-main"
	if _, err := New(l); err != nil {
		t.Errorf("informational step rejected: %v", err)
	}
}

func TestOnlyInfoStepsAwaitContinue(t *testing.T) {
	e, err := New(lesson(t, "messenger-basic"), WithoutDelays())
	if err != nil {
		t.Fatal(err)
	}
	mustContinue(t, e)
	expectStep(t, e, "select-chat")
	if e.AwaitsContinue() || e.Continue() {
		t.Error("a simulator step was passed with Continue")
	}
}

func TestCursorNeverPassesLastStep(t *testing.T) {
	e, err := New(lesson(t, "gosuslugi-basic"), WithoutDelays())
	if err != nil {
		t.Fatal(err)
	}
	last := e.Len() - 1
	for i := 0; i < 3*e.Len(); i++ {
		e.Continue()
		e.Do(e.Step().Action, sim.Arg{Key: "phone"})
		e.Type(sim.FieldLogin, "+7 (999) 123-45-67")
		e.Type(sim.FieldPassword, "password123")
		if e.Cursor() > last {
			t.Fatalf("cursor %d passed last step %d", e.Cursor(), last)
		}
	}
	expectStep(t, e, content.ActionComplete)
	if e.Continue() {
		t.Error("Continue must not pass the completion step")
	}
	if !e.Complete() {
		t.Fatal("Complete refused on the completion step")
	}
	if e.Complete() {
		t.Error("Complete twice")
	}
}

func TestCompleteOnlyOnLastStep(t *testing.T) {
	e, err := New(lesson(t, "messenger-basic"))
	if err != nil {
		t.Fatal(err)
	}
	if e.Complete() {
		t.Error("Complete accepted on intro")
	}
}

func TestStopCancels(t *testing.T) {
	clock := newClock()
	e, err := New(lesson(t, "messenger-basic"), WithClock(clock.now))
	if err != nil {
		t.Fatal(err)
	}
	mustContinue(t, e)
	tm, _ := e.Do("select-chat", sim.Arg{ID: 1})
	e.Stop()
	if e.Fire(tm.ID) != nil {
		t.Error("timer fired after Stop")
	}
	expectStep(t, e, "select-chat")
	if _, ok := e.Do("select-chat", sim.Arg{ID: 1}); ok {
		t.Error("stopped engine accepted an action")
	}
}

func TestZeroDelayAdvancesInline(t *testing.T) {
	clock := newClock()
	e, err := New(lesson(t, "messenger-advanced"), WithClock(clock.now))
	if err != nil {
		t.Fatal(err)
	}
	mustContinue(t, e)
	tm, _ := e.Do("select-chat", sim.Arg{ID: 1})
	clock.drain(e, tm)
	expectStep(t, e, "send-photo")

	tm, ok := e.Do("send-photo", sim.Arg{})
	if !ok || tm != nil {
		t.Fatalf("send-photo: ok=%v timer=%v", ok, tm)
	}
	expectStep(t, e, "select-photo")
}

func TestEveryLessonBuilds(t *testing.T) {
	c, err := content.Embedded()
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range c.Lessons() {
		e, err := New(&l)
		if err != nil {
			t.Errorf("%s: %v", l.ID, err)
			continue
		}
		if e.Simulator() == nil {
			t.Errorf("%s: no simulator", l.ID)
		}
		if !e.AwaitsContinue() {
			t.Errorf("%s: intro should await continue", l.ID)
		}
	}
}
