package app

import (
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwulff/finvoice/internal/clock"
	"github.com/jwulff/finvoice/internal/conversation"
	"github.com/jwulff/finvoice/internal/db"
	"github.com/jwulff/finvoice/internal/notify"
	"github.com/jwulff/finvoice/internal/voice"
)

type memSaver struct {
	mu    sync.Mutex
	saved []conversation.Exchange
}

func (s *memSaver) SaveExchange(e conversation.Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, e)
	return nil
}

type rig struct {
	clk     *clock.Manual
	chat    *conversation.Chat
	rec     *voice.Recorder
	notices *notify.Surface
	saver   *memSaver
	archive *db.Archiver
}

func newTestModel(t *testing.T) (Model, *rig) {
	t.Helper()
	clk := clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	catalog := conversation.DefaultCatalog()
	bridge := conversation.NewBridge(nil)
	text := conversation.NewTextPolicy(catalog, conversation.FixedSource(0))
	chat := conversation.NewChat(conversation.ChatConfig{
		Policy: text,
		Clock:  clk,
		Bridge: bridge,
	})
	notices := notify.NewSurface(clk)
	rec := voice.NewRecorder(voice.Config{
		Microphone:  voice.SimulatedMicrophone{Clock: clk},
		Arbiter:     voice.NewArbiter(),
		Clock:       clk,
		Transcriber: voice.NewCatalogTranscriber(catalog, conversation.FixedSource(0)),
		Policy:      conversation.NewVoicePolicy(catalog, conversation.FixedSource(0)),
		Bridge:      bridge,
		Notifier:    notices,
	})
	saver := &memSaver{}
	archive := db.NewArchiver(saver, nil)
	t.Cleanup(archive.Close)

	m := New(Deps{
		Chat:     chat,
		Recorder: rec,
		Notices:  notices,
		Clock:    clk,
		Archive:  archive,
		MicLabel: "simulated",
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model), &rig{clk: clk, chat: chat, rec: rec, notices: notices, saver: saver, archive: archive}
}

func press(m Model, k tea.KeyType) Model {
	updated, _ := m.Update(tea.KeyMsg{Type: k})
	return updated.(Model)
}

// advance moves the manual clock from inside Update, the way LoopClock
// delivers timers in production.
func advance(m Model, r *rig, d time.Duration) Model {
	updated, _ := m.Update(ContinuationMsg{Run: func() { r.clk.Advance(d) }})
	return updated.(Model)
}

func TestNewModel(t *testing.T) {
	m, r := newTestModel(t)
	if m.page != PageChat {
		t.Errorf("page = %d, want PageChat", m.page)
	}
	if !r.chat.Active() {
		t.Error("chat should be registered as voice sink")
	}
	if !m.input.Focused() {
		t.Error("input should be focused")
	}
	if !m.follow {
		t.Error("new model should follow the transcript")
	}
}

func TestViewWithoutSize(t *testing.T) {
	_, r := newTestModel(t)
	m := New(Deps{Chat: r.chat, Recorder: r.rec, Notices: r.notices, Clock: r.clk})
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() = %q, want Initializing...", got)
	}
}

func TestEmptyLogShowsGreeting(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()
	if !strings.Contains(view, "AI Financial Assistant") {
		t.Error("empty transcript should show the greeting")
	}
	if !strings.Contains(view, "FINVOICE") {
		t.Error("header missing")
	}
}

func TestSubmitAndReply(t *testing.T) {
	m, r := newTestModel(t)
	m.input.SetValue("  How is my portfolio?  ")

	m = press(m, tea.KeyEnter)
	if got := r.chat.Log().Len(); got != 1 {
		t.Fatalf("log length = %d, want 1", got)
	}
	if m.input.Value() != "" {
		t.Errorf("input = %q, want cleared", m.input.Value())
	}
	if m.input.Focused() {
		t.Error("input should be disabled while the reply is pending")
	}
	if !strings.Contains(m.View(), "Thinking") {
		t.Error("status bar should show the pending reply")
	}

	m = advance(m, r, conversation.DefaultReplyDelay)
	entries := r.chat.Log().All()
	if len(entries) != 2 {
		t.Fatalf("log length = %d, want 2", len(entries))
	}
	if entries[0].Content != "How is my portfolio?" {
		t.Errorf("user content = %q", entries[0].Content)
	}
	if entries[1].Origin != conversation.OriginAssistant {
		t.Errorf("second entry origin = %v, want assistant", entries[1].Origin)
	}
	if !m.input.Focused() {
		t.Error("input should be enabled after the reply")
	}
	view := m.View()
	if !strings.Contains(view, "Portfolio Performance") {
		t.Error("view should render the reply insights")
	}
	if !strings.Contains(view, "+11% YTD") {
		t.Error("view should render the insight metric")
	}
}

func TestBlankSubmitIgnored(t *testing.T) {
	m, r := newTestModel(t)
	m.input.SetValue("   ")
	m = press(m, tea.KeyEnter)

	if got := r.chat.Log().Len(); got != 0 {
		t.Errorf("log length = %d, want 0", got)
	}
	if r.chat.Pending() {
		t.Error("blank submission should not start a reply")
	}
	if r.clk.Pending() != 0 {
		t.Errorf("pending timers = %d, want 0", r.clk.Pending())
	}
}

func TestSubmitWhilePendingIgnored(t *testing.T) {
	m, r := newTestModel(t)
	m.input.SetValue("first")
	m = press(m, tea.KeyEnter)
	m.input.SetValue("second")
	m = press(m, tea.KeyEnter)

	if got := r.chat.Log().Len(); got != 1 {
		t.Errorf("log length = %d, want 1", got)
	}
	if m.input.Value() != "second" {
		t.Errorf("input = %q, want the rejected text kept", m.input.Value())
	}
}

func TestVoiceRoundTrip(t *testing.T) {
	m, r := newTestModel(t)

	m = press(m, tea.KeyCtrlR)
	if !r.rec.Requesting() {
		t.Fatal("recorder should be requesting the microphone")
	}
	if !strings.Contains(m.View(), "Requesting microphone") {
		t.Error("status bar should show the pending request")
	}

	m = advance(m, r, 0)
	if r.rec.State() != voice.StateRecording {
		t.Fatalf("state = %v, want recording", r.rec.State())
	}
	if !strings.Contains(m.View(), "● REC") {
		t.Error("status bar should show REC")
	}
	if !strings.Contains(m.View(), "Listening") {
		t.Error("listening notification should be visible")
	}

	m = advance(m, r, 2*time.Second)
	m = press(m, tea.KeyCtrlR)
	if r.rec.State() != voice.StateTranscribing {
		t.Fatalf("state = %v, want transcribing", r.rec.State())
	}

	m = advance(m, r, voice.DefaultProcessingDelay)
	if r.rec.State() != voice.StateIdle {
		t.Errorf("state = %v, want idle", r.rec.State())
	}
	entries := r.chat.Log().All()
	if len(entries) != 2 {
		t.Fatalf("log length = %d, want 2", len(entries))
	}
	for i, e := range entries {
		if e.Channel != conversation.ChannelVoice {
			t.Errorf("entries[%d].Channel = %v, want voice", i, e.Channel)
		}
	}
	if entries[0].Content != "What's my current net worth?" {
		t.Errorf("transcript = %q", entries[0].Content)
	}
	view := m.View()
	if !strings.Contains(view, "Voice") {
		t.Error("voice exchanges should carry a badge")
	}
	if !strings.Contains(view, "Speaking Response") {
		t.Error("playback notification should be visible")
	}
}

func TestCancelRecording(t *testing.T) {
	m, r := newTestModel(t)
	m = press(m, tea.KeyCtrlR)
	m = advance(m, r, 0)
	m = press(m, tea.KeyCtrlX)

	if r.rec.State() != voice.StateIdle {
		t.Errorf("state = %v, want idle", r.rec.State())
	}
	if r.rec.Session() != nil {
		t.Error("session should be discarded")
	}
	m = advance(m, r, 10*time.Second)
	if got := r.chat.Log().Len(); got != 0 {
		t.Errorf("log length = %d, want 0", got)
	}
}

func TestTabDeactivatesChat(t *testing.T) {
	m, r := newTestModel(t)
	m = press(m, tea.KeyCtrlR)
	m = advance(m, r, 0)
	m = press(m, tea.KeyCtrlR)

	m = press(m, tea.KeyTab)
	if m.page != PageInsights {
		t.Fatalf("page = %d, want PageInsights", m.page)
	}
	if r.chat.Active() {
		t.Error("chat should unregister when its page is hidden")
	}
	if m.input.Focused() {
		t.Error("input should be blurred on the insights page")
	}

	m = advance(m, r, voice.DefaultProcessingDelay)
	if got := r.chat.Log().Len(); got != 0 {
		t.Errorf("log length = %d, want 0 (no sink)", got)
	}
	if r.rec.State() != voice.StateIdle {
		t.Errorf("state = %v, want idle", r.rec.State())
	}

	m = press(m, tea.KeyTab)
	if !r.chat.Active() {
		t.Error("chat should register again when shown")
	}
	if !m.input.Focused() {
		t.Error("input should be focused on the chat page")
	}
}

func TestInsightsPage(t *testing.T) {
	m, r := newTestModel(t)
	m = press(m, tea.KeyTab)
	if !strings.Contains(m.View(), "No insights yet") {
		t.Error("empty insights page should say so")
	}

	m = press(m, tea.KeyTab)
	m.input.SetValue("portfolio")
	m = press(m, tea.KeyEnter)
	m = advance(m, r, conversation.DefaultReplyDelay)
	m = press(m, tea.KeyTab)

	view := m.View()
	if !strings.Contains(view, "INSIGHTS (2)") {
		t.Error("insights page should count the reply insights")
	}
	if !strings.Contains(view, "Diversification Score") {
		t.Error("insights page should list insight cards")
	}
}

func TestTogglePlayback(t *testing.T) {
	m, r := newTestModel(t)
	m = press(m, tea.KeyCtrlP)
	if r.rec.Playback() {
		t.Error("playback should be off after toggle")
	}
	if !strings.Contains(m.View(), "playback off") {
		t.Error("status bar should show playback off")
	}
	m = press(m, tea.KeyCtrlP)
	if !r.rec.Playback() {
		t.Error("playback should be on after second toggle")
	}
}

func TestEscDismissesNewestNotice(t *testing.T) {
	m, r := newTestModel(t)
	r.notices.Show(notify.Message{Title: "first"}, notify.Info, 0)
	r.notices.Show(notify.Message{Title: "second"}, notify.Info, 0)

	m = press(m, tea.KeyEsc)
	visible := r.notices.Visible()
	if len(visible) != 1 {
		t.Fatalf("visible = %d, want 1", len(visible))
	}
	if visible[0].Message.Title != "first" {
		t.Errorf("remaining = %q, want first", visible[0].Message.Title)
	}
	if strings.Contains(m.View(), "second") {
		t.Error("dismissed notice should not render")
	}
}

func TestNoticesExpire(t *testing.T) {
	m, r := newTestModel(t)
	r.notices.Show(notify.Message{Title: "Heads up", Body: "soon gone"}, notify.Error, time.Second)
	m = advance(m, r, 0)
	if !strings.Contains(m.View(), "Heads up: soon gone") {
		t.Error("notice should render")
	}
	m = advance(m, r, time.Second)
	if strings.Contains(m.View(), "Heads up") {
		t.Error("notice should expire")
	}
}

func TestAppendsAreArchived(t *testing.T) {
	m, r := newTestModel(t)
	m.input.SetValue("hello")
	m = press(m, tea.KeyEnter)
	_ = advance(m, r, conversation.DefaultReplyDelay)

	r.archive.Close()
	r.saver.mu.Lock()
	defer r.saver.mu.Unlock()
	if len(r.saver.saved) != 2 {
		t.Fatalf("archived = %d, want 2", len(r.saver.saved))
	}
	if r.saver.saved[0].ID != 1 || r.saver.saved[1].ID != 2 {
		t.Errorf("archived ids = %d,%d, want 1,2", r.saver.saved[0].ID, r.saver.saved[1].ID)
	}
}

func TestQuit(t *testing.T) {
	m, r := newTestModel(t)
	m = press(m, tea.KeyCtrlR)
	m = advance(m, r, 0)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
	if r.rec.State() != voice.StateIdle {
		t.Errorf("state = %v, want idle after quit", r.rec.State())
	}
	if r.chat.Active() {
		t.Error("chat should unregister on quit")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("the quick brown fox jumps", 10)
	want := []string{"the quick", "brown fox", "jumps"}
	if len(got) != len(want) {
		t.Fatalf("wrapText = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
	if got := wrapText("", 10); len(got) != 1 || got[0] != "" {
		t.Errorf("wrapText(\"\") = %q", got)
	}
}

func TestTruncateToWidth(t *testing.T) {
	if got := truncateToWidth("short", 10); got != "short" {
		t.Errorf("truncateToWidth = %q", got)
	}
	if got := truncateToWidth("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncateToWidth = %q, want abcd…", got)
	}
}
