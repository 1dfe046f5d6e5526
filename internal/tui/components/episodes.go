package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/podly-fm/podly/internal/core"
	"github.com/podly-fm/podly/internal/tui/styles"
)

// EpisodeList displays the episodes of the selected podcast
type EpisodeList struct {
	offset   int
	selected int
}

// NewEpisodeList creates a new EpisodeList component
func NewEpisodeList() *EpisodeList {
	return &EpisodeList{}
}

// SelectNext moves the selection down
func (l *EpisodeList) SelectNext(total int) {
	if l.selected < total-1 {
		l.selected++
	}
}

// SelectPrev moves the selection up
func (l *EpisodeList) SelectPrev() {
	if l.selected > 0 {
		l.selected--
	}
}

// Reset returns the selection to the top
func (l *EpisodeList) Reset() {
	l.selected = 0
	l.offset = 0
}

// Selected returns the selected index
func (l *EpisodeList) Selected() int {
	return l.selected
}

// Render renders the episodes panel
func (l *EpisodeList) Render(podcast *core.Track, episodes []core.Episode, playingID string, width, height int, focused bool) string {
	heading := "Episodes"
	if podcast != nil {
		heading = "Episodes — " + truncate(podcast.Title, width/2)
	}
	title := styles.PanelTitle(heading, focused)

	var content string
	if podcast == nil {
		content = styles.Muted.Render("Select a podcast and press 'e'")
	} else if len(episodes) == 0 {
		content = styles.Muted.Render("No episodes")
	} else {
		content = l.renderList(episodes, playingID, width-4, height-4)
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

func (l *EpisodeList) renderList(episodes []core.Episode, playingID string, width, maxLines int) string {
	if l.selected >= len(episodes) {
		l.selected = len(episodes) - 1
	}

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
	if end > len(episodes) {
		end = len(episodes)
	}

	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		e := episodes[i]

		marker := "  "
		if e.ID == playingID {
			marker = styles.Playing.Render("▶ ")
		}

		label := truncate(e.Title, width-16)
		meta := styles.Dim.Render(" " + e.Duration)

		if i == l.selected {
			lines = append(lines, marker+styles.Selected.Render("› "+label)+meta)
		} else {
			lines = append(lines, marker+"  "+label+meta)
		}
	}

	if end < len(episodes) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(episodes)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
