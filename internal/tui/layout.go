package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type panelDimensions struct {
	sessionListW, sessionListH int
	feedW, feedH               int
	headerH                    int
}

const (
	minWidth  = 40
	minHeight = 10

	headerHeight = 1

	feedMinHeight = 5
	feedMaxHeight = 12
)

// computeDimensions splits the terminal into the session list (top) and the
// raw feed (bottom).
func computeDimensions(totalW, totalH int) panelDimensions {
	if totalW < minWidth {
		totalW = minWidth
	}
	if totalH < minHeight {
		totalH = minHeight
	}

	d := panelDimensions{
		headerH: headerHeight,
	}

	usableH := totalH - headerHeight
	if usableH < 6 {
		usableH = 6
	}

	d.feedW = totalW
	d.feedH = usableH * 35 / 100
	if d.feedH < feedMinHeight {
		d.feedH = feedMinHeight
	}
	if d.feedH > feedMaxHeight {
		d.feedH = feedMaxHeight
	}
	if d.feedH > usableH/2 {
		d.feedH = usableH / 2
	}

	d.sessionListW = totalW
	d.sessionListH = usableH - d.feedH
	if d.sessionListH < 3 {
		d.sessionListH = 3
	}

	return d
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	focusBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63"))

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("69"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	exitedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	userLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	agentLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

	questionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("213"))

	collapsedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	waitingBadgeStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("213"))

	filterMenuStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripAnsi(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

func renderBorderedPanel(content string, w, h int, style lipgloss.Style) string {
	contentH := h - 2
	if contentH < 1 {
		contentH = 1
	}

	lines := strings.Split(content, "\n")
	if len(lines) > contentH {
		lines = lines[:contentH]
		content = strings.Join(lines, "\n")
	}

	return style.
		Width(w - 2).
		Height(contentH).
		Render(content)
}

func (m Model) renderDashboard() string {
	dims := computeDimensions(m.width, m.height)

	header := m.renderHeader("Sessions")
	sessionList := m.renderSessionListPanel(dims.sessionListW, dims.sessionListH)
	feedPanel := m.renderFeedPanel(dims.feedW, dims.feedH)

	layout := lipgloss.JoinVertical(lipgloss.Left, header, sessionList, feedPanel)

	if m.filterMenu.Active {
		layout = m.overlayFilterMenu(layout)
	}

	return layout
}

func (m Model) renderHeader(viewLabel string) string {
	title := " cc-view"
	label := " [" + viewLabel + "]"
	if m.selectedSession != "" {
		label += " " + truncateID(m.selectedSession, 12)
	}

	indicators := m.headerIndicators()
	help := m.headerHelp()

	padding := m.width - lipgloss.Width(title) - lipgloss.Width(label) - lipgloss.Width(indicators) - lipgloss.Width(help)
	if padding < 0 {
		padding = 0
	}

	return headerStyle.Width(m.width).Render(title + label + indicators + strings.Repeat(" ", padding) + help)
}

func (m Model) headerHelp() string {
	switch {
	case m.view == ViewTranscript:
		return "Space:Expand  a:All  Esc:Back  q:Quit "
	case m.feedFocused:
		return "↑/↓:Scroll  Esc:Back  q:Quit "
	default:
		return "Enter:Transcript  e:Feed  f:Filter  q:Quit "
	}
}

func truncateID(id string, maxLen int) string {
	if len(id) <= maxLen {
		return id
	}
	return id[:maxLen]
}

func (m Model) overlayFilterMenu(base string) string {
	content := panelTitleStyle.Render("Feed Filter") + "\n\n"
	for i, opt := range m.filterMenu.Options {
		cursor := "  "
		if i == m.filterMenu.Cursor {
			cursor = "> "
		}
		check := "[ ]"
		if opt.Enabled {
			check = "[x]"
		}
		line := cursor + check + " " + opt.Label
		if i == m.filterMenu.Cursor {
			line = selectedStyle.Render(line)
		}
		content += line + "\n"
	}
	content += "\nEnter: Toggle  Esc: Close"

	dialog := filterMenuStyle.Render(content)

	return lipgloss.Place(
		lipgloss.Width(base),
		lipgloss.Height(base),
		lipgloss.Center,
		lipgloss.Center,
		dialog,
		lipgloss.WithWhitespaceChars(" "),
	)
}

func (m Model) renderStartup() string {
	var b strings.Builder

	b.WriteString(panelTitleStyle.Render("cc-view: live Claude Code session viewer"))
	b.WriteString("\n\n")
	b.WriteString("Waiting for OTLP telemetry on ")
	b.WriteString(m.cfg.Receiver.Bind)
	b.WriteString("\n\n")
	b.WriteString("  [s] Write telemetry settings to ~/.claude/settings.json\n")
	b.WriteString("  [x] Fix OTLP endpoint only\n")
	b.WriteString("  [Enter] Continue to dashboard\n")
	b.WriteString("  [q] Quit\n")

	if m.startupMessage != "" {
		b.WriteString("\n")
		b.WriteString(statusBarStyle.Render(m.startupMessage))
		b.WriteString("\n")
	}

	return b.String()
}
