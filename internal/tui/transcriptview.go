package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/cc-view/internal/transcript"
)

// renderTranscriptView renders the full-screen transcript for the selected
// session: primary entries in full, secondary runs as collapsed group rows.
func (m Model) renderTranscriptView() string {
	header := m.renderHeader("Transcript")

	bodyH := m.height - headerHeight - 1 // header + status bar
	if bodyH < 3 {
		bodyH = 3
	}
	bodyW := m.width
	if bodyW < minWidth {
		bodyW = minWidth
	}

	groups, _ := m.renderGroups()

	var rows []string
	for _, g := range groups {
		rows = append(rows, m.renderGroupRows(g, bodyW-4)...)
	}

	if len(rows) == 0 {
		rows = []string{dimStyle.Render("No transcript events yet")}
	}

	contentH := bodyH - 2 // panel borders
	if contentH < 1 {
		contentH = 1
	}

	startIdx := m.transcriptScrollPos
	if m.autoScroll {
		startIdx = len(rows) - contentH
	}
	if startIdx > len(rows)-contentH {
		startIdx = len(rows) - contentH
	}
	if startIdx < 0 {
		startIdx = 0
	}
	endIdx := startIdx + contentH
	if endIdx > len(rows) {
		endIdx = len(rows)
	}

	body := strings.Join(rows[startIdx:endIdx], "\n")
	panel := renderBorderedPanel(body, bodyW, bodyH, panelBorderStyle)

	statusBar := m.renderTranscriptStatusBar(startIdx, endIdx, len(rows))

	return lipgloss.JoinVertical(lipgloss.Left, header, panel, statusBar)
}

// groupRowCount returns how many display rows a group occupies.
func (m Model) groupRowCount(g transcript.Group) int {
	if g.Collapsed && !m.groupExpanded(g.ID) {
		return 1
	}
	return len(g.Entries)
}

func (m Model) groupExpanded(id int) bool {
	return m.expandAll || m.expandedGroups[id]
}

// renderGroupRows renders one group into display rows.
func (m Model) renderGroupRows(g transcript.Group, maxW int) []string {
	if g.Collapsed && !m.groupExpanded(g.ID) {
		row := collapsedStyle.Render(fmt.Sprintf("▸ %s (%d)", g.Summary, len(g.Entries)))
		return []string{row}
	}

	var rows []string
	for _, c := range g.Entries {
		prefix := ""
		if g.Collapsed {
			// Expanded secondary run keeps a gutter so it reads as detail.
			prefix = "  "
		}
		rows = append(rows, prefix+renderEntry(c, maxW-len(prefix)))
	}
	return rows
}

// renderEntry formats a single classified event.
func renderEntry(c transcript.Classified, maxW int) string {
	text := oneLine(c.Event.Text)

	switch c.Event.Kind {
	case transcript.KindUser:
		return userLineStyle.Render(truncateLine("> "+text, maxW))

	case transcript.KindAssistant:
		line := "agent: " + text
		if c.IsQuestion {
			return questionStyle.Render(truncateLine("? "+line, maxW))
		}
		return agentLineStyle.Render(truncateLine(line, maxW))

	case transcript.KindToolInvocation:
		name := c.Event.ToolName
		if name == "" {
			name = "tool"
		}
		return dimStyle.Render(truncateLine(name, maxW))

	case transcript.KindToolResult:
		name := c.Event.ToolName
		if name == "" {
			name = "result"
		}
		return dimStyle.Render(truncateLine(name+" done", maxW))

	default:
		return dimStyle.Render(truncateLine("* "+text, maxW))
	}
}

func (m Model) renderTranscriptStatusBar(start, end, total int) string {
	var parts []string

	if total > 0 {
		parts = append(parts, fmt.Sprintf("[%d-%d/%d]", start+1, end, total))
	}

	if m.expandAll {
		parts = append(parts, "all expanded")
	}

	bar := statusBarStyle.Render(strings.Join(parts, "  "))

	if m.state != nil && m.selectedSession != "" {
		if s := m.state.GetSession(m.selectedSession); s != nil && m.sessionWaiting(s) {
			badge := waitingBadgeStyle.Render(" needs your response ")
			pad := m.width - lipgloss.Width(bar) - lipgloss.Width(badge)
			if pad < 1 {
				pad = 1
			}
			return bar + strings.Repeat(" ", pad) + badge
		}
	}

	return bar
}

// oneLine collapses whitespace runs so multi-line messages render as one row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateLine(s string, maxW int) string {
	if maxW < 4 {
		maxW = 4
	}
	if len(s) <= maxW {
		return s
	}
	return s[:maxW-3] + "..."
}
