package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nixlim/cc-view/internal/state"
)

// renderSessionListPanel renders the session list with columns for session ID,
// start time, model, CWD, status, and event count. Sessions whose transcript
// ends waiting on the user get an input marker.
func (m Model) renderSessionListPanel(w, h int) string {
	sessions := m.getSessions()

	contentW := w - 4
	if contentW < 16 {
		contentW = 16
	}
	contentH := h - 4 // borders + title
	if contentH < 2 {
		contentH = 2
	}

	var lines []string

	lines = append(lines, panelTitleStyle.Render("Sessions"))

	if len(sessions) == 0 {
		lines = append(lines, "")
		lines = append(lines, dimStyle.Render("No sessions yet. Start a Claude Code session to see it here."))
		return renderBorderedPanel(strings.Join(lines, "\n"), w, h, panelBorderStyle)
	}

	header := formatSessionHeader(contentW)
	lines = append(lines, dimStyle.Render(header))
	lines = append(lines, dimStyle.Render(strings.Repeat("─", min(contentW, len(header)))))

	for i, s := range sessions {
		line := m.formatSessionRow(&s, contentW)
		if i == m.sessionCursor {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}

	// Scroll viewport: keep the three header lines fixed.
	const headerCount = 3
	if len(lines) > headerCount {
		dataLines := lines[headerCount:]
		visibleRows := contentH - headerCount
		if visibleRows > 0 && len(dataLines) > visibleRows {
			offset := m.sessionScrollOffset
			if m.sessionCursor >= offset+visibleRows {
				offset = m.sessionCursor - visibleRows + 1
			}
			if offset > len(dataLines)-visibleRows {
				offset = len(dataLines) - visibleRows
			}
			if offset < 0 {
				offset = 0
			}
			lines = append(lines[:headerCount], dataLines[offset:offset+visibleRows]...)
		}
	}

	return renderBorderedPanel(strings.Join(lines, "\n"), w, h, panelBorderStyle)
}

func formatSessionHeader(maxW int) string {
	if maxW >= 80 {
		return fmt.Sprintf("%-12s %-9s %-12s %-18s %-8s %6s %s",
			"Session", "Started", "Model", "CWD", "Status", "Events", "")
	}
	if maxW >= 50 {
		return fmt.Sprintf("%-12s %-9s %-8s %6s %s",
			"Session", "Started", "Status", "Events", "")
	}
	return fmt.Sprintf("%-12s %-8s %s", "Session", "Status", "")
}

func (m Model) formatSessionRow(s *state.SessionData, maxW int) string {
	sessionID := truncateID(s.SessionID, 12)
	started := formatStartedAt(s.StartedAt)
	model := truncateStr(s.Model, 12)
	cwd := truncateCWD(s.CWD, 18)
	statusStr := renderStatus(s.Status(m.liveThreshold()))
	events := fmt.Sprintf("%d", len(s.Transcript))

	marker := ""
	if m.sessionWaiting(s) {
		marker = waitingBadgeStyle.Render(" ? input ")
	}

	if maxW >= 80 {
		return fmt.Sprintf("%-12s %-9s %-12s %-18s %-8s %6s %s",
			sessionID, started, model, cwd, statusStr, events, marker)
	}
	if maxW >= 50 {
		return fmt.Sprintf("%-12s %-9s %-8s %6s %s",
			sessionID, started, statusStr, events, marker)
	}
	return fmt.Sprintf("%-12s %-8s %s", sessionID, statusStr, marker)
}

// formatStartedAt formats a timestamp as DDMM HHMM.
func formatStartedAt(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("0201 1504")
}

func renderStatus(s state.SessionStatus) string {
	switch s {
	case state.StatusActive:
		return activeStyle.Render("active")
	case state.StatusIdle:
		return idleStyle.Render("idle")
	case state.StatusDone:
		return doneStyle.Render("done")
	case state.StatusExited:
		return exitedStyle.Render("exited")
	default:
		return string(s)
	}
}

// truncateCWD shortens a path by replacing the home directory with ~
// and using ellipsis for long paths.
func truncateCWD(cwd string, maxLen int) string {
	if cwd == "" {
		return "—"
	}

	home, err := os.UserHomeDir()
	if err == nil && strings.HasPrefix(cwd, home) {
		cwd = "~" + cwd[len(home):]
	}

	if len(cwd) <= maxLen {
		return cwd
	}

	if maxLen <= 4 {
		return cwd[:maxLen]
	}

	base := filepath.Base(cwd)
	if len(base) >= maxLen-3 {
		return "..." + base[len(base)-(maxLen-3):]
	}

	dir := filepath.Dir(cwd)
	available := maxLen - len(base) - 4 // for .../
	if available <= 0 {
		return "..." + string(filepath.Separator) + base
	}
	return dir[:available] + "..." + string(filepath.Separator) + base
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-1] + "."
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
