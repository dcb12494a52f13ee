package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/cc-view/internal/config"
	"github.com/nixlim/cc-view/internal/feed"
	"github.com/nixlim/cc-view/internal/state"
	"github.com/nixlim/cc-view/internal/transcript"
)

type ViewState int

const (
	ViewStartup ViewState = iota
	ViewDashboard
	ViewTranscript
)

type tickMsg time.Time

// StateProvider serves session snapshots to the views.
type StateProvider interface {
	GetSession(sessionID string) *state.SessionData
	ListSessions() []state.SessionData
	DroppedWrites() int64
}

// FeedProvider serves recent raw feed lines.
type FeedProvider interface {
	Recent(limit int) []feed.Line
	RecentForSession(sessionID string, limit int) []feed.Line
}

// SettingsWriter applies Claude Code settings changes from the startup view.
type SettingsWriter interface {
	EnableTelemetry() error
	FixEndpoint() error
}

type Model struct {
	view     ViewState
	width    int
	height   int
	keys     KeyMap
	quitting bool

	cfg config.Config

	state    StateProvider
	feed     FeedProvider
	settings SettingsWriter

	classifier transcript.Classifier

	selectedSession     string
	sessionCursor       int
	sessionScrollOffset int

	// Transcript view state. expandedGroups is keyed by group ID so
	// expansion survives regrouping between refreshes.
	transcriptScrollPos int
	autoScroll          bool
	expandedGroups      map[int]bool
	expandAll           bool

	feedFocused   bool
	feedScrollPos int

	kindFilter KindFilter
	filterMenu FilterMenuState

	startupMessage string

	isPersistent bool

	refreshRate time.Duration

	onShutdown func()
}

func NewModel(cfg config.Config, opts ...ModelOption) Model {
	m := Model{
		view:           ViewStartup,
		keys:           DefaultKeyMap(),
		cfg:            cfg,
		autoScroll:     true,
		classifier:     transcript.NewClassifier(cfg.Transcript.QuestionTool),
		expandedGroups: make(map[int]bool),
		kindFilter:     NewKindFilter(),
		filterMenu:     NewFilterMenu(),
		refreshRate:    time.Duration(cfg.Display.RefreshRateMS) * time.Millisecond,
	}

	for _, opt := range opts {
		opt(&m)
	}

	return m
}

type ModelOption func(*Model)

func WithStateProvider(s StateProvider) ModelOption {
	return func(m *Model) { m.state = s }
}

func WithFeedProvider(f FeedProvider) ModelOption {
	return func(m *Model) { m.feed = f }
}

func WithSettingsWriter(s SettingsWriter) ModelOption {
	return func(m *Model) { m.settings = s }
}

func WithStartView(v ViewState) ModelOption {
	return func(m *Model) { m.view = v }
}

func WithOnShutdown(fn func()) ModelOption {
	return func(m *Model) { m.onShutdown = fn }
}

func WithPersistenceFlag(isPersistent bool) ModelOption {
	return func(m *Model) { m.isPersistent = isPersistent }
}

func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, m.tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filterMenu.Active {
		return m.handleFilterMenuKey(msg)
	}

	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		if m.onShutdown != nil {
			m.onShutdown()
		}
		return m, tea.Quit
	}

	switch m.view {
	case ViewStartup:
		return m.handleStartupKey(msg)
	case ViewDashboard:
		return m.handleDashboardKey(msg)
	case ViewTranscript:
		return m.handleTranscriptKey(msg)
	}

	return m, nil
}

func (m Model) handleStartupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Enter):
		m.view = ViewDashboard
		return m, nil

	case key.Matches(msg, m.keys.Enable):
		if m.settings != nil {
			if err := m.settings.EnableTelemetry(); err != nil {
				m.startupMessage = "Error: " + err.Error()
			} else {
				m.startupMessage = "Settings written. New Claude Code sessions will auto-connect. Existing sessions need restart."
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Fix):
		if m.settings != nil {
			if err := m.settings.FixEndpoint(); err != nil {
				m.startupMessage = "Error: " + err.Error()
			} else {
				m.startupMessage = "Endpoint updated. Restart affected sessions."
			}
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.feedFocused {
		return m.handleFeedKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.sessionCursor > 0 {
			m.sessionCursor--
			m.clampSessionScroll()
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.sessionCursor < len(m.getSessions())-1 {
			m.sessionCursor++
			m.clampSessionScroll()
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		sessions := m.getSessions()
		if m.sessionCursor >= 0 && m.sessionCursor < len(sessions) {
			m.selectedSession = sessions[m.sessionCursor].SessionID
			m.view = ViewTranscript
			m.autoScroll = true
			m.transcriptScrollPos = 0
		}
		return m, nil

	case key.Matches(msg, m.keys.FocusFeed):
		m.feedFocused = true
		return m, nil

	case key.Matches(msg, m.keys.Filter):
		m.filterMenu.Active = true
		m.filterMenu.Cursor = 0
		return m, nil
	}

	return m, nil
}

func (m Model) handleFeedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.feedFocused = false
		m.feedScrollPos = 0
		return m, nil

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.ScrollUp):
		if m.feedScrollPos > 0 {
			m.feedScrollPos--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.ScrollDown):
		m.feedScrollPos++
		return m, nil
	}

	return m, nil
}

func (m Model) handleTranscriptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.view = ViewDashboard
		m.selectedSession = ""
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.view = ViewDashboard
		return m, nil

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.ScrollUp):
		m.autoScroll = false
		if m.transcriptScrollPos > 0 {
			m.transcriptScrollPos--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.ScrollDown):
		m.autoScroll = false
		m.transcriptScrollPos++
		return m, nil

	case key.Matches(msg, m.keys.Expand):
		return m.toggleGroupUnderCursor()

	case key.Matches(msg, m.keys.ExpandAll):
		m.expandAll = !m.expandAll
		return m, nil
	}

	return m, nil
}

// toggleGroupUnderCursor expands or collapses the collapsed group nearest the
// current scroll position.
func (m Model) toggleGroupUnderCursor() (tea.Model, tea.Cmd) {
	groups, _ := m.renderGroups()
	row := 0
	for _, g := range groups {
		rows := m.groupRowCount(g)
		if m.transcriptScrollPos >= row && m.transcriptScrollPos < row+rows {
			if g.Collapsed {
				m.expandedGroups[g.ID] = !m.expandedGroups[g.ID]
			}
			return m, nil
		}
		row += rows
	}
	return m, nil
}

func (m Model) handleFilterMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.filterMenu.Active = false
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.filterMenu.Cursor > 0 {
			m.filterMenu.Cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.filterMenu.Cursor < len(m.filterMenu.Options)-1 {
			m.filterMenu.Cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if m.filterMenu.Cursor >= 0 && m.filterMenu.Cursor < len(m.filterMenu.Options) {
			opt := &m.filterMenu.Options[m.filterMenu.Cursor]
			opt.Enabled = !opt.Enabled
			m.kindFilter = filterFromMenu(m.filterMenu)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) clampSessionScroll() {
	if m.sessionCursor < m.sessionScrollOffset {
		m.sessionScrollOffset = m.sessionCursor
	}
}

func (m Model) getSessions() []state.SessionData {
	if m.state == nil {
		return nil
	}
	return m.state.ListSessions()
}

func (m Model) liveThreshold() time.Duration {
	return time.Duration(m.cfg.Sessions.LiveThresholdSeconds) * time.Second
}

// renderGroups runs the transcript engine for the selected session.
func (m Model) renderGroups() ([]transcript.Group, bool) {
	if m.state == nil || m.selectedSession == "" {
		return nil, false
	}
	session := m.state.GetSession(m.selectedSession)
	if session == nil {
		return nil, false
	}

	isLive := session.Live(m.liveThreshold())
	groups, err := m.classifier.Render(session.Transcript, isLive)
	if err != nil {
		return nil, isLive
	}
	return groups, isLive
}

// sessionWaiting reports whether a session's transcript ends waiting on the
// user, for the list marker and the transcript badge.
func (m Model) sessionWaiting(s *state.SessionData) bool {
	isLive := s.Live(m.liveThreshold())
	return transcript.IsWaitingForInput(s.Transcript, isLive, m.cfg.Transcript.QuestionTool)
}

func (m Model) headerIndicators() string {
	var parts []string
	if !m.isPersistent {
		parts = append(parts, "[No persistence]")
	}
	if m.state != nil && m.state.DroppedWrites() > 0 {
		parts = append(parts, "[!] Writes dropped")
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + dimStyle.Render(strings.Join(parts, " "))
}

func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var output string
	switch m.view {
	case ViewStartup:
		output = m.renderStartup()
	case ViewDashboard:
		output = m.renderDashboard()
	case ViewTranscript:
		output = m.renderTranscriptView()
	}

	if m.height > 0 {
		lines := strings.Split(output, "\n")
		if len(lines) > m.height {
			lines = lines[:m.height]
			output = strings.Join(lines, "\n")
		}
	}

	return output
}
