package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/cc-view/internal/feed"
	"github.com/nixlim/cc-view/internal/transcript"
)

var kindLineStyles = map[transcript.Kind]lipgloss.Style{
	transcript.KindUser:           userLineStyle,
	transcript.KindAssistant:      agentLineStyle,
	transcript.KindToolInvocation: dimStyle,
	transcript.KindToolResult:     dimStyle,
	transcript.KindSystem:         dimStyle,
}

// renderFeedPanel renders the raw event feed across all sessions.
func (m Model) renderFeedPanel(w, h int) string {
	contentW := w - 4
	if contentW < 10 {
		contentW = 10
	}
	contentH := h - 4 // borders + title
	if contentH < 1 {
		contentH = 1
	}

	var lines []string
	lines = append(lines, panelTitleStyle.Render("Feed"))

	feedLines := m.getFilteredFeed(m.cfg.Display.FeedBufferSize)

	if len(feedLines) == 0 {
		lines = append(lines, "")
		lines = append(lines, dimStyle.Render("No events received yet"))
		style := panelBorderStyle
		if m.feedFocused {
			style = focusBorderStyle
		}
		return renderBorderedPanel(strings.Join(lines, "\n"), w, h, style)
	}

	visibleLines := contentH - 1 // subtract title line
	if visibleLines < 1 {
		visibleLines = 1
	}

	// Tail the feed unless the user scrolled away.
	startIdx := len(feedLines) - visibleLines
	if m.feedFocused {
		startIdx = m.feedScrollPos
	}
	if startIdx > len(feedLines)-visibleLines {
		startIdx = len(feedLines) - visibleLines
	}
	if startIdx < 0 {
		startIdx = 0
	}
	endIdx := startIdx + visibleLines
	if endIdx > len(feedLines) {
		endIdx = len(feedLines)
	}

	for _, fl := range feedLines[startIdx:endIdx] {
		lines = append(lines, renderFeedLine(fl, contentW))
	}

	style := panelBorderStyle
	if m.feedFocused {
		style = focusBorderStyle
	}
	return renderBorderedPanel(strings.Join(lines, "\n"), w, h, style)
}

// getFilteredFeed returns feed lines matching the current kind filter.
func (m Model) getFilteredFeed(limit int) []feed.Line {
	if m.feed == nil {
		return nil
	}

	var raw []feed.Line
	if m.selectedSession != "" {
		raw = m.feed.RecentForSession(m.selectedSession, limit)
	} else {
		raw = m.feed.Recent(limit)
	}

	var filtered []feed.Line
	for _, l := range raw {
		if m.kindFilter.Matches(l.Kind) {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

func renderFeedLine(l feed.Line, maxW int) string {
	style, ok := kindLineStyles[l.Kind]
	if !ok {
		style = dimStyle
	}
	return style.Render(truncateLine(l.Text, maxW))
}
