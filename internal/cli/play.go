package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/podly-fm/podly/internal/catalog"
	"github.com/podly-fm/podly/internal/config"
	"github.com/podly-fm/podly/internal/core"
	"github.com/podly-fm/podly/internal/history"
	"github.com/podly-fm/podly/internal/hub"
	"github.com/podly-fm/podly/internal/playback"
	"github.com/podly-fm/podly/internal/resolve"
)

var playEpisode string

var playCmd = &cobra.Command{
	Use:   "play <podcast-id>",
	Short: "Play a podcast in the foreground",
	Long: `Play a podcast and show live progress until it ends or you press Ctrl+C.

Examples:
  podly play 3                  # Play podcast 3
  podly play 3 --episode 3-ep-2 # Play a specific episode`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&playEpisode, "episode", "e", "", "episode ID to play")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	track, err := lookupTrack(ctx, args[0], playEpisode)
	if err != nil {
		return err
	}

	return playTrack(ctx, track)
}

// playTrack plays a single track in the foreground until it ends, errors,
// or the user interrupts.
func playTrack(ctx context.Context, track *core.Track) error {
	device, err := playback.NewMPVDevice(cfg.Playback.MPVPath, log)
	if err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	h := hub.New(device, hub.Options{
		Resolver: resolve.New(cfg.Playback.StrictSources),
		Logger:   log,
		Volume:   cfg.Playback.Volume,
		Rate:     cfg.Playback.Rate,
	})
	defer h.Close()

	done := make(chan struct{})
	var once sync.Once
	closeOnce := func() { once.Do(func() { close(done) }) }

	cancelNotices := h.SubscribeNotices(func(n playback.Notice) {
		fmt.Printf("\r\033[K%s\n", n.Message)
	})
	defer cancelNotices()

	cancelStates := h.Subscribe(func(state core.PlaybackState) {
		switch state.Status {
		case core.StatusPlaying, core.StatusPaused:
			printProgress(state)
		case core.StatusLoading:
			fmt.Printf("\r\033[KLoading...")
		case core.StatusEnded, core.StatusError:
			closeOnce()
		}
	})
	defer cancelStates()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	start := time.Now()
	h.PlayTrack(*track)

	select {
	case <-sigCh:
	case <-done:
	case <-ctx.Done():
	}
	fmt.Println()

	recordHistory(track, time.Since(start).Seconds())

	final := h.State()
	if final.Status == core.StatusError {
		return fmt.Errorf("playback failed")
	}
	return nil
}

// lookupTrack fetches the podcast (or one of its episodes) to play.
func lookupTrack(ctx context.Context, podcastID, episodeID string) (*core.Track, error) {
	c := catalog.New(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, log)

	podcast, err := c.GetPodcast(ctx, podcastID)
	if err != nil {
		return nil, fmt.Errorf("failed to get podcast: %w", err)
	}

	if episodeID == "" {
		return podcast, nil
	}

	episodes, err := c.GetEpisodes(ctx, podcastID)
	if err != nil {
		return nil, fmt.Errorf("failed to get episodes: %w", err)
	}
	for i := range episodes {
		if episodes[i].ID == episodeID {
			track := episodes[i].AsTrack(podcast)
			return &track, nil
		}
	}
	return nil, fmt.Errorf("episode '%s' not found in podcast '%s'", episodeID, podcastID)
}

func printProgress(state core.PlaybackState) {
	icon := "⏸"
	if state.IsPlaying() {
		icon = "▶"
	}
	fmt.Printf("\r\033[K%s %s  %s / %s  %s",
		icon,
		TruncateString(state.Track.Title, 36),
		FormatSeconds(state.Position),
		FormatSeconds(state.Duration),
		FormatProgress(state.Position, state.Duration, 24),
	)
}

func recordHistory(track *core.Track, seconds float64) {
	path := config.HistoryPath()
	if path == "" {
		return
	}
	store, err := history.Open(path)
	if err != nil {
		log.Warn("could not open history store", "error", err)
		return
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = store.Record(ctx, history.Entry{
		TrackID:         track.ID,
		Title:           track.Title,
		Creator:         track.CreatorName,
		Category:        track.Category,
		PlayedAt:        time.Now(),
		SecondsListened: seconds,
	})
	if err != nil {
		log.Warn("could not record history", "error", err)
	}
}
