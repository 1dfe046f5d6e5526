package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/podly-fm/podly/internal/core"
	"github.com/podly-fm/podly/internal/tui/styles"
)

// NowPlaying displays the current playback state
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(state core.PlaybackState, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if !state.HasTrack() {
		content = styles.Muted.Render("Nothing playing")
	} else {
		content = n.renderTrack(state, width-4)
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

func (n *NowPlaying) renderTrack(state core.PlaybackState, width int) string {
	track := state.Track

	icon := n.statusIcon(state.Status)
	titleStyle := styles.Title.Width(width - 4)
	title := titleStyle.Render(track.Title)

	creator := styles.Subtitle.Render(track.CreatorName)
	category := styles.Dim.Render(track.Category)

	// Progress bar with times on either side
	progressWidth := width - 14
	if progressWidth < 10 {
		progressWidth = 10
	}
	bar := styles.ProgressBar(state.ProgressPercent(), progressWidth)
	progress := fmt.Sprintf("%s %s %s",
		formatSeconds(state.Position),
		bar,
		formatSeconds(state.Duration),
	)

	volume := fmt.Sprintf("🔊 %d%%", int(state.Volume*100))
	if state.Muted {
		volume = "🔇 muted"
	}
	rate := fmt.Sprintf("%gx", state.Rate)
	controls := styles.Muted.Render(volume + "  " + rate)

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+title,
		"  "+creator,
		"  "+category,
		"",
		progress,
		"",
		controls,
	)
}

func (n *NowPlaying) statusIcon(status core.Status) string {
	switch status {
	case core.StatusPlaying:
		return styles.Playing.Render("▶")
	case core.StatusPaused:
		return styles.Paused.Render("⏸")
	case core.StatusLoading:
		return styles.Muted.Render("…")
	case core.StatusEnded:
		return styles.Muted.Render("■")
	case core.StatusError:
		return styles.Alert.Render("✗")
	default:
		return " "
	}
}

func formatSeconds(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	m := total / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
