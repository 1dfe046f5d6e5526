package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/podly-fm/podly/internal/tui"
)

var tuiRefresh int

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch interactive dashboard",
	Long: `Launch the interactive terminal dashboard.

The dashboard provides:
  • Browse - the podcast directory with search
  • Episodes - episodes of the selected podcast
  • Now Playing - current track, progress, volume, rate

Keyboard shortcuts:
  q, Ctrl+C    Quit
  /            Search
  Enter        Play selection
  Space        Play/Pause
  s            Stop
  m            Mute
  +/-          Volume up/down
  ←/→          Seek
  r            Cycle playback speed
  Tab          Switch panel`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "refresh interval in milliseconds (default from config)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	refresh := cfg.TUI.RefreshInterval
	if tuiRefresh > 0 {
		refresh = tuiRefresh
	}

	return tui.Run(tui.Options{
		Config:  cfg,
		Logger:  log,
		Refresh: time.Duration(refresh) * time.Millisecond,
	})
}
