package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/podly-fm/podly/internal/core"
	"github.com/podly-fm/podly/internal/tui/styles"
)

// PodcastList displays the browsable podcast directory
type PodcastList struct {
	offset   int
	selected int
}

// NewPodcastList creates a new PodcastList component
func NewPodcastList() *PodcastList {
	return &PodcastList{}
}

// SelectNext moves the selection down
func (l *PodcastList) SelectNext(total int) {
	if l.selected < total-1 {
		l.selected++
	}
}

// SelectPrev moves the selection up
func (l *PodcastList) SelectPrev() {
	if l.selected > 0 {
		l.selected--
	}
}

// Reset returns the selection to the top
func (l *PodcastList) Reset() {
	l.selected = 0
	l.offset = 0
}

// Selected returns the selected index
func (l *PodcastList) Selected() int {
	return l.selected
}

// Render renders the podcast list panel
func (l *PodcastList) Render(podcasts []core.Track, playingID string, width, height int, focused bool) string {
	title := styles.PanelTitle("Browse", focused)

	var content string
	if len(podcasts) == 0 {
		content = styles.Muted.Render("No podcasts found")
	} else {
		content = l.renderList(podcasts, playingID, width-4, height-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (l *PodcastList) renderList(podcasts []core.Track, playingID string, width, maxLines int) string {
	if l.selected >= len(podcasts) {
		l.selected = len(podcasts) - 1
	}

	// Keep selection visible
	visibleCount := maxLines - 1
	if visibleCount < 1 {
		visibleCount = 1
	}
	if l.selected < l.offset {
		l.offset = l.selected
	}
	if l.selected >= l.offset+visibleCount {
		l.offset = l.selected - visibleCount + 1
	}

	start := l.offset
	end := start + visibleCount
	if end > len(podcasts) {
		end = len(podcasts)
	}

	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		p := podcasts[i]

		marker := "  "
		if p.ID == playingID {
			marker = styles.Playing.Render("▶ ")
		}

		label := fmt.Sprintf("%s — %s", truncate(p.Title, width/2), p.CreatorName)
		label = truncate(label, width-8)

		meta := styles.Dim.Render(fmt.Sprintf(" [%s]", p.Category))

		if i == l.selected {
			lines = append(lines, marker+styles.Selected.Render("› "+label)+meta)
		} else {
			lines = append(lines, marker+"  "+label+meta)
		}
	}

	if end < len(podcasts) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(podcasts)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
