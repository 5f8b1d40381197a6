package app

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/jwulff/finvoice/internal/clock"
	"github.com/jwulff/finvoice/internal/conversation"
	"github.com/jwulff/finvoice/internal/db"
	"github.com/jwulff/finvoice/internal/notify"
	"github.com/jwulff/finvoice/internal/ui"
	"github.com/jwulff/finvoice/internal/voice"
	"go.uber.org/zap"

	tea "github.com/charmbracelet/bubbletea"
)

// Page is the view shown in the main panel.
type Page int

const (
	PageChat Page = iota
	PageInsights
)

const greeting = "Hello! I'm your AI Financial Assistant. I can help you analyze your finances, " +
	"plan investments, and answer any financial questions. What would you like to know?"

// Deps are the long-lived components the model drives.
type Deps struct {
	Chat     *conversation.Chat
	Recorder *voice.Recorder
	Notices  *notify.Surface
	Clock    clock.Clock
	Archive  *db.Archiver // optional
	MicLabel string
	Logger   *zap.Logger
}

// redraw is shared by every copy of the value-typed Model. Component
// callbacks mark it; Update re-renders the transcript when it is set.
type redraw struct {
	dirty bool
}

// Model is the root bubbletea model for the finvoice TUI.
type Model struct {
	chat     *conversation.Chat
	recorder *voice.Recorder
	notices  *notify.Surface
	clock    clock.Clock
	logger   *zap.Logger
	micLabel string

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	page   Page
	follow bool
	width  int
	height int

	redraw *redraw
}

// New wires the model to its components and activates the chat as the voice
// sink. Exchanges appended to the log are forwarded to the archive.
func New(d Deps) Model {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about your finances... (Enter to send)"
	ti.Prompt = "│ "
	ti.CharLimit = 2000
	ti.Width = 60
	ti.PromptStyle = ui.AssistantLabelStyle
	ti.TextStyle = ui.UserTextStyle
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.SpinnerStyle

	vp := viewport.New(80, 20)

	r := &redraw{dirty: true}
	archive := d.Archive
	logger := d.Logger
	d.Chat.OnAppend(func(e conversation.Exchange) {
		r.dirty = true
		if archive != nil && !archive.Enqueue(e) {
			logger.Warn("exchange not archived", zap.Uint64("id", e.ID))
		}
	})
	d.Notices.OnChange(func() { r.dirty = true })
	d.Recorder.OnChange(func(voice.State) { r.dirty = true })
	d.Chat.Activate()

	return Model{
		chat:     d.Chat,
		recorder: d.Recorder,
		notices:  d.Notices,
		clock:    d.Clock,
		logger:   d.Logger,
		micLabel: d.MicLabel,
		input:    ti,
		viewport: vp,
		spinner:  sp,
		page:     PageChat,
		follow:   true,
		redraw:   r,
	}
}

// Init starts the cursor blink and the status spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.redraw.dirty = true

	case ContinuationMsg:
		if msg.Run != nil {
			msg.Run()
		}

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)

	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		m.follow = m.viewport.AtBottom()

	default:
		m.input, cmd = m.input.Update(msg)
	}

	m.sync()
	return m, cmd
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case KeyCtrlC:
		m.recorder.Cancel()
		m.chat.Deactivate()
		return m, tea.Quit

	case KeyRecord:
		if m.recorder.State() == voice.StateRecording {
			m.recorder.Stop()
		} else {
			m.recorder.Start()
		}
		return m, nil

	case KeyCancelRecord:
		m.recorder.Cancel()
		return m, nil

	case KeyTogglePlayback:
		m.recorder.SetPlayback(!m.recorder.Playback())
		return m, nil

	case KeyEsc:
		m.notices.DismissNewest()
		return m, nil

	case KeyTab:
		if m.page == PageChat {
			m.page = PageInsights
			m.chat.Deactivate()
		} else {
			m.page = PageChat
			m.chat.Activate()
		}
		m.follow = true
		m.redraw.dirty = true
		return m, nil

	case KeyEnter:
		if m.page != PageChat {
			return m, nil
		}
		err := m.chat.Submit(m.input.Value())
		switch {
		case err == nil:
			m.input.Reset()
			m.follow = true
		case errors.Is(err, conversation.ErrBusy):
			m.logger.Debug("submit ignored: reply pending")
		default:
			m.logger.Debug("submit rejected", zap.Error(err))
		}
		return m, nil

	case KeyUp, KeyDown, KeyPgUp, KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.follow = m.viewport.AtBottom()
		return m, cmd
	}

	if m.page != PageChat || m.chat.Pending() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// sync brings the widgets in line with component state after every event.
func (m *Model) sync() {
	if m.page == PageChat && !m.chat.Pending() {
		if !m.input.Focused() {
			m.input.Focus()
		}
	} else if m.input.Focused() {
		m.input.Blur()
	}

	m.layout()
	if m.redraw.dirty {
		m.viewport.SetContent(m.renderBody(m.viewport.Width))
		m.redraw.dirty = false
		if m.follow {
			m.viewport.GotoBottom()
		}
	}
}

func (m *Model) layout() {
	if m.width == 0 {
		return
	}
	// header, status, two dividers, input, footer
	reserved := 6 + len(m.notices.Visible())
	m.viewport.Width = m.width
	m.viewport.Height = max(3, m.height-reserved)
	m.input.Width = max(10, m.width-4)
}

// elapsed reports how long the live session has been running.
func (m Model) elapsed() time.Duration {
	sess := m.recorder.Session()
	if sess == nil {
		return 0
	}
	return m.clock.Now().Sub(sess.StartedAt).Truncate(time.Second)
}
