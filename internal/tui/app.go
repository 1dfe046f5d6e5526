package tui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/podly-fm/podly/internal/catalog"
	"github.com/podly-fm/podly/internal/config"
	"github.com/podly-fm/podly/internal/core"
	"github.com/podly-fm/podly/internal/hub"
	"github.com/podly-fm/podly/internal/playback"
	"github.com/podly-fm/podly/internal/resolve"
	"github.com/podly-fm/podly/internal/tui/components"
	"github.com/podly-fm/podly/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelBrowse Panel = iota
	PanelEpisodes
	PanelNowPlaying
)

const (
	searchDebounce = 300 * time.Millisecond
	toastDuration  = 4 * time.Second
	seekStep       = 15.0
	volumeStep     = 0.05
)

// Options configures the TUI application.
type Options struct {
	Config  *config.Config
	Logger  *slog.Logger
	Refresh time.Duration
}

// App holds the TUI application state
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	catalog *catalog.Client
	hub     *hub.Hub
	refresh time.Duration

	states  chan core.PlaybackState
	notices chan playback.Notice
}

// NewApp creates a new TUI application
func NewApp(opts Options) (*App, error) {
	device, err := playback.NewMPVDevice(opts.Config.Playback.MPVPath, opts.Logger)
	if err != nil {
		return nil, err
	}

	h := hub.New(device, hub.Options{
		Resolver: resolve.New(opts.Config.Playback.StrictSources),
		Logger:   opts.Logger,
		Volume:   opts.Config.Playback.Volume,
		Rate:     opts.Config.Playback.Rate,
	})

	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = time.Second
	}

	app := &App{
		cfg:     opts.Config,
		logger:  opts.Logger,
		catalog: catalog.New(opts.Config.Catalog.BaseURL, opts.Config.Catalog.APIKey, opts.Logger),
		hub:     h,
		refresh: refresh,
		states:  make(chan core.PlaybackState, 64),
		notices: make(chan playback.Notice, 16),
	}

	// Bridge hub fan-out into bubbletea messages. Sends never block; a
	// dropped intermediate snapshot is replaced by the next one.
	h.Subscribe(func(state core.PlaybackState) {
		select {
		case app.states <- state:
		default:
		}
	})
	h.SubscribeNotices(func(n playback.Notice) {
		select {
		case app.notices <- n:
		default:
		}
	})

	return app, nil
}

// Close shuts down playback.
func (a *App) Close() {
	a.hub.Close()
}

// Model is the main TUI model
type Model struct {
	app          *App
	width        int
	height       int
	focusedPanel Panel

	// State
	podcasts        []core.Track
	selectedPodcast *core.Track
	episodes        []core.Episode
	state           core.PlaybackState

	// Components
	browseView   *components.PodcastList
	episodeView  *components.EpisodeList
	nowPlaying   *components.NowPlaying

	// Overlays
	showHelp bool

	// Search state
	showSearch  bool
	searchInput textinput.Model
	lastQuery   string
	activeQuery string

	// Toast handling
	toast       string
	toastLevel  playback.NoticeLevel
	toastExpiry time.Time

	// Quit flag
	quitting bool
}

// NewModel creates a new TUI model
func NewModel(app *App) Model {
	ti := textinput.New()
	ti.Placeholder = "Search podcasts..."
	ti.CharLimit = 100
	ti.Width = 50

	return Model{
		app:         app,
		state:       app.hub.State(),
		browseView:  components.NewPodcastList(),
		episodeView: components.NewEpisodeList(),
		nowPlaying:  components.NewNowPlaying(),
		searchInput: ti,
	}
}

// Messages
type tickMsg time.Time
type podcastsMsg []core.Track
type episodesMsg struct {
	podcast  *core.Track
	episodes []core.Episode
}
type stateMsg core.PlaybackState
type noticeMsg playback.Notice
type errMsg error
type searchDebounceMsg struct{ query string }

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.app.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForState() tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-m.app.states)
	}
}

func (m Model) waitForNotice() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-m.app.notices)
	}
}

func (m Model) fetchPodcasts(query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		podcasts, err := m.app.catalog.ListPodcasts(ctx, catalog.Filter{Search: query})
		if err != nil {
			return errMsg(err)
		}
		return podcastsMsg(podcasts)
	}
}

func (m Model) fetchEpisodes(podcast core.Track) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		episodes, err := m.app.catalog.GetEpisodes(ctx, podcast.ID)
		if err != nil {
			return errMsg(err)
		}
		return episodesMsg{podcast: &podcast, episodes: episodes}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tick(),
		m.fetchPodcasts(""),
		m.waitForState(),
		m.waitForNotice(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if m.toast != "" && time.Now().After(m.toastExpiry) {
			m.toast = ""
		}
		return m, m.tick()

	case stateMsg:
		m.state = core.PlaybackState(msg)
		return m, m.waitForState()

	case noticeMsg:
		m.toast = msg.Message
		m.toastLevel = msg.Level
		m.toastExpiry = time.Now().Add(toastDuration)
		return m, m.waitForNotice()

	case podcastsMsg:
		m.podcasts = msg
		m.browseView.Reset()
		return m, nil

	case episodesMsg:
		m.selectedPodcast = msg.podcast
		m.episodes = msg.episodes
		m.episodeView.Reset()
		m.focusedPanel = PanelEpisodes
		return m, nil

	case errMsg:
		m.toast = msg.Error()
		m.toastLevel = playback.NoticeError
		m.toastExpiry = time.Now().Add(toastDuration)
		return m, nil

	case searchDebounceMsg:
		if msg.query == m.searchInput.Value() && msg.query != m.lastQuery {
			m.lastQuery = msg.query
			return m, m.fetchPodcasts(msg.query)
		}
		return m, nil
	}

	// Forward other messages to textinput when search is active
	if m.showSearch {
		var inputCmd tea.Cmd
		m.searchInput, inputCmd = m.searchInput.Update(msg)
		return m, inputCmd
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	// Search overlay
	if m.showSearch {
		return m.handleSearchKeyPress(msg)
	}

	// Normal mode
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "/":
		m.showSearch = true
		m.searchInput.SetValue(m.activeQuery)
		m.searchInput.Focus()
		m.lastQuery = m.activeQuery
		return m, textinput.Blink

	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % 3
		return m, nil

	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + 2) % 3
		return m, nil
	}

	// Playback controls
	switch msg.String() {
	case " ":
		m.togglePlayPause()
		return m, nil
	case "s":
		m.app.hub.Stop()
		return m, nil
	case "m":
		m.app.hub.ToggleMute()
		return m, nil
	case "+", "=":
		m.app.hub.SetVolume(m.state.Volume + volumeStep)
		return m, nil
	case "-":
		m.app.hub.SetVolume(m.state.Volume - volumeStep)
		return m, nil
	case "left":
		m.app.hub.Seek(m.state.Position - seekStep)
		return m, nil
	case "right":
		m.app.hub.Seek(m.state.Position + seekStep)
		return m, nil
	case "r":
		m.app.hub.CycleRate()
		return m, nil
	}

	// Panel-specific keys
	switch m.focusedPanel {
	case PanelBrowse:
		switch msg.String() {
		case "j", "down":
			m.browseView.SelectNext(len(m.podcasts))
		case "k", "up":
			m.browseView.SelectPrev()
		case "enter":
			if p := m.selectedBrowsePodcast(); p != nil {
				m.app.hub.PlayTrack(*p)
			}
		case "e":
			if p := m.selectedBrowsePodcast(); p != nil {
				return m, m.fetchEpisodes(*p)
			}
		}

	case PanelEpisodes:
		switch msg.String() {
		case "j", "down":
			m.episodeView.SelectNext(len(m.episodes))
		case "k", "up":
			m.episodeView.SelectPrev()
		case "enter":
			if i := m.episodeView.Selected(); i >= 0 && i < len(m.episodes) {
				m.app.hub.PlayTrack(m.episodes[i].AsTrack(m.selectedPodcast))
			}
		}
	}

	return m, nil
}

func (m Model) handleSearchKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.showSearch = false
		m.searchInput.Blur()
		return m, nil

	case "enter":
		m.showSearch = false
		m.searchInput.Blur()
		m.activeQuery = m.searchInput.Value()
		return m, m.fetchPodcasts(m.activeQuery)
	}

	// Handle text input
	var cmds []tea.Cmd
	var inputCmd tea.Cmd
	m.searchInput, inputCmd = m.searchInput.Update(msg)
	cmds = append(cmds, inputCmd)

	// Debounce live filtering
	if m.searchInput.Value() != m.lastQuery {
		query := m.searchInput.Value()
		cmds = append(cmds, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
			return searchDebounceMsg{query: query}
		}))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) togglePlayPause() {
	switch m.state.Status {
	case core.StatusPlaying:
		m.app.hub.Pause()
	case core.StatusPaused:
		m.app.hub.Resume()
	default:
		if p := m.selectedBrowsePodcast(); p != nil {
			m.app.hub.PlayTrack(*p)
		}
	}
}

func (m Model) selectedBrowsePodcast() *core.Track {
	i := m.browseView.Selected()
	if i < 0 || i >= len(m.podcasts) {
		return nil
	}
	return &m.podcasts[i]
}

func (m Model) playingID() string {
	if m.state.Track == nil {
		return ""
	}
	return m.state.Track.ID
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.showSearch {
		return m.renderSearch()
	}

	// Main layout: browse on the left, now playing and episodes on the right
	leftWidth := m.width * 45 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := m.height * 40 / 100
	bottomHeight := m.height - topHeight - 2

	browse := m.browseView.Render(m.podcasts, m.playingID(), leftWidth-2, m.height-4, m.focusedPanel == PanelBrowse)
	nowPlaying := m.nowPlaying.Render(m.state, rightWidth-2, topHeight-2, m.focusedPanel == PanelNowPlaying)
	episodes := m.episodeView.Render(m.selectedPodcast, m.episodes, m.playingID(), rightWidth-2, bottomHeight-2, m.focusedPanel == PanelEpisodes)

	rightCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, episodes)
	main := lipgloss.JoinHorizontal(lipgloss.Top, browse, rightCol)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  /:search  enter:play  space:play/pause  s:stop  m:mute  +/-:volume  ←/→:seek  r:speed  tab:panel")

	if m.toast != "" {
		style := styles.Muted
		if m.toastLevel == playback.NoticeError {
			style = styles.Alert
		}
		status = style.Render(m.toast)
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Podly - Keyboard Shortcuts"
	divider := styles.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  /            Search podcasts
  Tab          Next panel
  Shift+Tab    Previous panel

  Playback
  ────────
  Space        Play/Pause
  s            Stop
  m            Mute
  +/=          Volume up
  -            Volume down
  ←/→          Seek 15s
  r            Cycle speed (0.75x, 1x, 1.5x, 2x)

  Browse Panel
  ────────────
  j/↓          Select next
  k/↑          Select previous
  Enter        Play podcast
  e            Show episodes

  Episodes Panel
  ──────────────
  j/↓          Select next
  k/↑          Select previous
  Enter        Play episode

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

func (m Model) renderSearch() string {
	var b strings.Builder

	b.WriteString(styles.Highlight.Render("Search"))
	b.WriteString("\n\n")
	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	if len(m.podcasts) == 0 && m.searchInput.Value() != "" {
		b.WriteString(styles.Muted.Render("No matches"))
	} else {
		maxResults := 10
		for i, p := range m.podcasts {
			if i >= maxResults {
				b.WriteString(styles.Dim.Render("  ...and more"))
				break
			}
			b.WriteString("  " + p.Title + " " + styles.Muted.Render(p.CreatorName))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.Dim.Render("Enter:apply  Esc:close"))

	content := lipgloss.NewStyle().
		Width(60).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.FocusedBorder.Render(content))
}

// Run starts the TUI application
func Run(opts Options) error {
	styles.Apply(opts.Config.TUI.Theme)

	app, err := NewApp(opts)
	if err != nil {
		return err
	}
	defer app.Close()

	model := NewModel(app)
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err = p.Run()
	return err
}
