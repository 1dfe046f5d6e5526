package playback

import (
	"log/slog"
	"sync"

	"github.com/podly-fm/podly/internal/core"
	"github.com/podly-fm/podly/internal/resolve"
)

// NoticeLevel classifies a user-facing notification.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice is a transient user-facing notification (a toast).
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Notifier receives user-facing notifications emitted by the session.
type Notifier func(Notice)

// Options configures a Session.
type Options struct {
	Resolver *resolve.Resolver
	Notify   Notifier
	OnChange func(core.PlaybackState)
	Logger   *slog.Logger
	Volume   float64 // initial volume, defaults to 1
	Rate     float64 // initial rate, defaults to 1
}

// Session is the playback state machine. It owns one Device, serializes all
// transport intents, and is the sole authority translating device events
// into state updates. Exactly one Session exists per application; the hub
// package enforces that.
type Session struct {
	device   Device
	resolver *resolve.Resolver
	notify   Notifier
	onChange func(core.PlaybackState)
	logger   *slog.Logger

	mu          sync.Mutex
	track       *core.Track
	status      core.Status
	position    float64
	duration    float64
	volume      float64
	muted       bool
	rate        float64
	wantPlaying bool
	// gen counts loads. Continuations and events carrying a stale
	// generation or track id are discarded: a new play intent logically
	// cancels whatever the previous load still delivers.
	gen    uint64
	closed bool

	loopDone chan struct{}
}

// NewSession creates a session around the given device and starts consuming
// its event stream.
func NewSession(device Device, opts Options) *Session {
	if opts.Resolver == nil {
		opts.Resolver = resolve.New(false)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	volume := opts.Volume
	if volume <= 0 || volume > 1 {
		volume = 1
	}
	rate := opts.Rate
	if rate == 0 {
		rate = 1
	}

	s := &Session{
		device:   device,
		resolver: opts.Resolver,
		notify:   opts.Notify,
		onChange: opts.OnChange,
		logger:   opts.Logger,
		status:   core.StatusIdle,
		volume:   volume,
		rate:     rate,
		loopDone: make(chan struct{}),
	}
	go s.loop()
	return s
}

// PlayTrack requests playback of a track. Calling it for the track that is
// already playing is a no-op; for the same track while paused it resumes;
// otherwise the current track is superseded and the new one is loaded.
// Failures surface as StatusError plus a notification, never as a panic or
// an unhandled failure.
func (s *Session) PlayTrack(track core.Track) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	if s.track != nil && s.track.ID == track.ID {
		switch s.status {
		case core.StatusPlaying, core.StatusLoading:
			s.mu.Unlock()
			return
		case core.StatusPaused:
			s.wantPlaying = true
			s.status = core.StatusPlaying
			s.startPlayLocked(false)
			snap := s.snapshotLocked()
			s.mu.Unlock()
			s.publish(snap)
			return
		}
		// Ended or Error: fall through to a full reload.
	}

	if s.track != nil {
		// Stop the superseded track before switching.
		s.device.Pause()
	}

	s.gen++
	t := track
	s.track = &t
	s.status = core.StatusLoading
	s.position = 0
	s.duration = 0
	s.wantPlaying = true

	src, err := s.resolver.Resolve(track.ID, track.SourceURL)
	if err != nil {
		s.status = core.StatusError
		s.wantPlaying = false
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.logger.Warn("source resolution failed", "track", track.ID, "error", err)
		s.publish(snap)
		s.send(NoticeError, "This podcast has no audio source.")
		return
	}

	s.device.Load(track.ID, src)
	s.device.SetVolume(s.volume)
	s.device.SetMuted(s.muted)
	s.device.SetRate(s.rate)
	s.startPlayLocked(true)

	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.logger.Debug("loading track", "track", track.ID, "source", src)
	s.publish(snap)
}

// Pause suspends playback. No-op unless currently playing.
func (s *Session) Pause() {
	s.mu.Lock()
	if s.status != core.StatusPlaying {
		s.mu.Unlock()
		return
	}
	s.device.Pause()
	s.status = core.StatusPaused
	s.wantPlaying = false
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// Resume continues a paused track. No-op from any other state.
func (s *Session) Resume() {
	s.mu.Lock()
	if s.status != core.StatusPaused || s.track == nil {
		s.mu.Unlock()
		return
	}
	s.wantPlaying = true
	s.status = core.StatusPlaying
	s.startPlayLocked(false)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// Stop unloads the current track and returns to idle. Always available and
// always succeeds; the device keeps its resources for reuse.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.status == core.StatusIdle {
		s.mu.Unlock()
		return
	}
	s.gen++
	s.device.Pause()
	s.device.Seek(0)
	s.track = nil
	s.status = core.StatusIdle
	s.position = 0
	s.duration = 0
	s.wantPlaying = false
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// Seek moves the playhead. Valid while playing or paused; the target is
// clamped to [0, duration] and the position updates optimistically without
// waiting for the next progress event.
func (s *Session) Seek(seconds float64) {
	s.mu.Lock()
	if s.status != core.StatusPlaying && s.status != core.StatusPaused {
		s.mu.Unlock()
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	if s.duration > 0 && seconds > s.duration {
		seconds = s.duration
	}
	s.device.Seek(seconds)
	s.position = seconds
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// SetVolume sets the volume, clamped to [0, 1]. Always valid.
func (s *Session) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	s.mu.Lock()
	s.volume = v
	s.device.SetVolume(v)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// ToggleMute flips the mute flag. Always valid; volume is preserved.
func (s *Session) ToggleMute() {
	s.mu.Lock()
	s.muted = !s.muted
	s.device.SetMuted(s.muted)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// CycleRate advances the playback rate through the fixed set, wrapping at
// the end. Always valid.
func (s *Session) CycleRate() {
	s.mu.Lock()
	s.rate = core.NextRate(s.rate)
	s.device.SetRate(s.rate)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// State returns the current snapshot.
func (s *Session) State() core.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close releases the device and stops the event loop. Safe to call once at
// application teardown.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.gen++
	s.mu.Unlock()

	s.device.Dispose()
	<-s.loopDone
}

// startPlayLocked issues the device play command and hands its deferred
// result to a continuation guarded by the current generation. The caller
// must hold the lock.
func (s *Session) startPlayLocked(announce bool) {
	gen := s.gen
	title := s.track.Title
	result := s.device.Play()
	go func() {
		err := <-result
		s.handlePlayResult(gen, title, announce, err)
	}()
}

// handlePlayResult reconciles the deferred play outcome. The result may
// arrive long after the user issued a different intent; a stale generation
// means the load was superseded and the outcome is discarded.
func (s *Session) handlePlayResult(gen uint64, title string, announce bool, err error) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}

	if err != nil {
		if s.status == core.StatusError {
			// Already failed through an error event; notify once.
			s.mu.Unlock()
			return
		}
		s.status = core.StatusError
		s.wantPlaying = false
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.logger.Warn("device refused to play", "track", title, "error", err)
		s.publish(snap)
		s.send(NoticeError, "Failed to play podcast. Please try again.")
		return
	}

	changed := false
	if s.wantPlaying && s.status == core.StatusLoading {
		s.status = core.StatusPlaying
		changed = true
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if changed {
		s.publish(snap)
	}
	if announce {
		s.send(NoticeInfo, "Now playing: "+title)
	}
}

// loop consumes device events until the device is disposed.
func (s *Session) loop() {
	defer close(s.loopDone)
	for ev := range s.device.Events() {
		s.handleEvent(ev)
	}
}

// handleEvent folds one device event into the session state. Events are
// processed in delivery order; anything tagged with a track other than the
// current one belongs to a superseded load and is dropped.
func (s *Session) handleEvent(ev Event) {
	s.mu.Lock()
	if s.closed || s.track == nil || ev.TrackID != s.track.ID {
		s.mu.Unlock()
		return
	}

	changed := true
	notifyError := false

	switch ev.Kind {
	case EventMetadataReady:
		s.duration = ev.Duration
		if s.duration > 0 && s.position > s.duration {
			s.position = s.duration
		}
		if s.status == core.StatusLoading && s.wantPlaying {
			s.status = core.StatusPlaying
		}
	case EventProgress:
		if s.status == core.StatusError {
			changed = false
			break
		}
		pos := ev.Position
		if pos < 0 {
			pos = 0
		}
		if s.duration > 0 && pos > s.duration {
			pos = s.duration
		}
		s.position = pos
	case EventEnded:
		s.status = core.StatusEnded
		s.position = 0
		s.wantPlaying = false
	case EventBufferingStart:
		if s.status == core.StatusPlaying {
			s.status = core.StatusLoading
		} else {
			changed = false
		}
	case EventBufferingEnd:
		if s.status == core.StatusLoading && s.wantPlaying {
			s.status = core.StatusPlaying
		} else {
			changed = false
		}
	case EventError:
		if s.status == core.StatusError {
			changed = false
			break
		}
		s.status = core.StatusError
		s.wantPlaying = false
		notifyError = true
	}

	snap := s.snapshotLocked()
	s.mu.Unlock()

	if changed {
		s.publish(snap)
	}
	if notifyError {
		s.logger.Warn("device error", "track", ev.TrackID, "error", ev.Err)
		s.send(NoticeError, "Error playing podcast. Please try another one.")
	}
}

// snapshotLocked copies the current state. The caller must hold the lock.
func (s *Session) snapshotLocked() core.PlaybackState {
	snap := core.PlaybackState{
		Status:   s.status,
		Position: s.position,
		Duration: s.duration,
		Volume:   s.volume,
		Muted:    s.muted,
		Rate:     s.rate,
	}
	if s.track != nil {
		t := *s.track
		snap.Track = &t
	}
	return snap
}

func (s *Session) publish(snap core.PlaybackState) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}

func (s *Session) send(level NoticeLevel, message string) {
	if s.notify != nil {
		s.notify(Notice{Level: level, Message: message})
	}
}
