package playback

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/podly-fm/podly/internal/core"
	"github.com/podly-fm/podly/internal/resolve"
)

// fakeDevice is a scripted Device for driving the session state machine.
type fakeDevice struct {
	mu       sync.Mutex
	events   chan Event
	loads    []string
	sources  []string
	seeks    []float64
	playErr  error
	paused   bool
	volume   float64
	muted    bool
	rate     float64
	disposed bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{events: make(chan Event, 32)}
}

func (f *fakeDevice) Load(trackID, sourceURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, trackID)
	f.sources = append(f.sources, sourceURL)
	f.paused = true
}

func (f *fakeDevice) Play() <-chan error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan error, 1)
	if f.playErr != nil {
		ch <- f.playErr
	} else {
		f.paused = false
		ch <- nil
	}
	return ch
}

func (f *fakeDevice) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = true
}

func (f *fakeDevice) Seek(seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, seconds)
}

func (f *fakeDevice) SetVolume(v float64)  { f.mu.Lock(); f.volume = v; f.mu.Unlock() }
func (f *fakeDevice) SetMuted(muted bool)  { f.mu.Lock(); f.muted = muted; f.mu.Unlock() }
func (f *fakeDevice) SetRate(rate float64) { f.mu.Lock(); f.rate = rate; f.mu.Unlock() }

func (f *fakeDevice) Events() <-chan Event { return f.events }

func (f *fakeDevice) Dispose() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.disposed {
		f.disposed = true
		close(f.events)
	}
}

func (f *fakeDevice) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.loads)
}

func (f *fakeDevice) setPlayErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playErr = err
}

// noticeLog collects notifications thread-safely.
type noticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *noticeLog) record(notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *noticeLog) count(substr string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, notice := range n.notices {
		if strings.Contains(notice.Message, substr) {
			c++
		}
	}
	return c
}

func newTestSession(t *testing.T, opts Options) (*Session, *fakeDevice, *noticeLog) {
	t.Helper()
	device := newFakeDevice()
	notices := &noticeLog{}
	opts.Notify = notices.record
	s := NewSession(device, opts)
	t.Cleanup(s.Close)
	return s, device, notices
}

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

func trackA() core.Track {
	return core.Track{ID: "a", Title: "Morning Brief", SourceURL: "https://x/a.mp3"}
}

func trackB() core.Track {
	return core.Track{ID: "b", Title: "Deep Dive"}
}

func TestPlayTrackReachesPlaying(t *testing.T) {
	s, _, notices := newTestSession(t, Options{})

	s.PlayTrack(trackA())
	waitFor(t, "playing", func() bool { return s.State().Status == core.StatusPlaying })

	state := s.State()
	if !state.HasTrack() || state.Track.ID != "a" {
		t.Fatalf("Track = %+v, want track a", state.Track)
	}
	waitFor(t, "now playing notice", func() bool { return notices.count("Now playing") == 1 })
}

func TestPlayTrackIdempotentWhilePlaying(t *testing.T) {
	s, device, notices := newTestSession(t, Options{})

	s.PlayTrack(trackA())
	waitFor(t, "playing", func() bool { return s.State().Status == core.StatusPlaying })

	s.PlayTrack(trackA())
	s.PlayTrack(trackA())

	if got := device.loadCount(); got != 1 {
		t.Errorf("load count = %d, want 1", got)
	}
	if got := s.State().Status; got != core.StatusPlaying {
		t.Errorf("status = %v, want playing", got)
	}
	waitFor(t, "single notice", func() bool { return notices.count("Now playing") == 1 })
	// Give any stray duplicate a chance to land.
	time.Sleep(20 * time.Millisecond)
	if got := notices.count("Now playing"); got != 1 {
		t.Errorf("now-playing notices = %d, want 1", got)
	}
}

func TestPlayTrackSamePausedResumes(t *testing.T) {
	s, device, notices := newTestSession(t, Options{})

	s.PlayTrack(trackA())
	waitFor(t, "playing", func() bool { return s.State().Status == core.StatusPlaying })
	s.Pause()

	s.PlayTrack(trackA())
	waitFor(t, "playing again", func() bool { return s.State().Status == core.StatusPlaying })

	if got := device.loadCount(); got != 1 {
		t.Errorf("load count = %d, want 1 (resume must not reload)", got)
	}
	time.Sleep(20 * time.Millisecond)
	if got := notices.count("Now playing"); got != 1 {
		t.Errorf("now-playing notices = %d, want 1 (no duplicate on resume)", got)
	}
}

func TestPauseResumeAlternation(t *testing.T) {
	s, _, _ := newTestSession(t, Options{})

	s.PlayTrack(trackA())
	waitFor(t, "playing", func() bool { return s.State().Status == core.StatusPlaying })

	for i := 0; i < 4; i++ {
		s.Pause()
		state := s.State()
		if state.Status != core.StatusPaused {
			t.Fatalf("iteration %d: status after pause = %v, want paused", i, state.Status)
		}
		if !state.HasTrack() {
			t.Fatalf("iteration %d: track dropped on pause", i)
		}

		s.Resume()
		waitFor(t, "resumed", func() bool { return s.State().Status == core.StatusPlaying })
		resumed := s.State()
		if !resumed.HasTrack() {
			t.Fatalf("iteration %d: track dropped on resume", i)
		}
	}
}

func TestPauseOutsidePlayingIsNoop(t *testing.T) {
	s, _, _ := newTestSession(t, Options{})

	s.Pause()
	if got := s.State().Status; got != core.StatusIdle {
		t.Errorf("status = %v, want idle", got)
	}

	s.Resume()
	if got := s.State().Status; got != core.StatusIdle {
		t.Errorf("status after resume from idle = %v, want idle", got)
	}
}

func TestSeekClamps(t *testing.T) {
	s, device, _ := newTestSession(t, Options{})

	s.PlayTrack(trackA())
	waitFor(t, "playing", func() bool { return s.State().Status == core.StatusPlaying })
	device.events <- Event{TrackID: "a", Kind: EventMetadataReady, Duration: 100}
	waitFor(t, "duration", func() bool { return s.State().Duration == 100 })

	cases := []struct {
		in   float64
		want float64
	}{
		{-5, 0},
		{500, 100},
		{42.5, 42.5},
	}
	for _, tc := range cases {
		s.Seek(tc.in)
		if got := s.State().Position; got != tc.want {
			t.Errorf("Seek(%v): position = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSeekInvalidStateIsNoop(t *testing.T) {
	s, device, _ := newTestSession(t, Options{})

	s.Seek(30)
	if got := s.State().Position; got != 0 {
		t.Errorf("position = %v, want 0", got)
	}
	device.mu.Lock()
	seeks := len(device.seeks)
	device.mu.Unlock()
	if seeks != 0 {
		t.Errorf("device seeks = %d, want 0", seeks)
	}
}

func TestCycleRateReturnsToStart(t *testing.T) {
	s, _, _ := newTestSession(t, Options{})

	start := s.State().Rate
	for i := 0; i < len(core.Rates); i++ {
		s.CycleRate()
	}
	if got := s.State().Rate; got != start {
		t.Errorf("rate after full cycle = %v, want %v", got, start)
	}
}

func TestVolumeClampAndMute(t *testing.T) {
	s, _, _ := newTestSession(t, Options{})

	s.SetVolume(1.8)
	if got := s.State().Volume; got != 1 {
		t.Errorf("volume = %v, want 1", got)
	}
	s.SetVolume(-0.3)
	if got := s.State().Volume; got != 0 {
		t.Errorf("volume = %v, want 0", got)
	}

	s.SetVolume(0.6)
	s.ToggleMute()
	state := s.State()
	if !state.Muted {
		t.Error("Muted = false, want true")
	}
	if state.Volume != 0.6 {
		t.Errorf("volume changed on mute: %v, want 0.6", state.Volume)
	}
	s.ToggleMute()
	if s.State().Muted {
		t.Error("Muted = true after second toggle, want false")
	}
}

func TestEndedResetsPositionKeepsTrack(t *testing.T) {
	s, device, _ := newTestSession(t, Options{})

	s.PlayTrack(trackA())
	waitFor(t, "playing", func() bool { return s.State().Status == core.StatusPlaying })
	device.events <- Event{TrackID: "a", Kind: EventMetadataReady, Duration: 90}
	device.events <- Event{TrackID: "a", Kind: EventProgress, Position: 89}
	device.events <- Event{TrackID: "a", Kind: EventEnded}
	waitFor(t, "ended", func() bool { return s.State().Status == core.StatusEnded })

	state := s.State()
	if state.IsPlaying() {
		t.Error("IsPlaying() = true after ended, want false")
	}
	if state.Position != 0 {
		t.Errorf("position = %v after ended, want 0", state.Position)
	}
	if !state.HasTrack() || state.Track.ID != "a" {
		t.Errorf("track = %+v after ended, want track a retained", state.Track)
	}
}

func TestStaleEventsFromSupersededLoadDiscarded(t *testing.T) {
	s, device, _ := newTestSession(t, Options{})

	s.PlayTrack(trackA())
	s.PlayTrack(trackB()) // supersedes a before its metadata arrives
	waitFor(t, "track b active", func() bool {
		st := s.State()
		return st.HasTrack() && st.Track.ID == "b"
	})

	// Late metadata for the superseded load must be dropped.
	device.events <- Event{TrackID: "a", Kind: EventMetadataReady, Duration: 300}
	device.events <- Event{TrackID: "a", Kind: EventProgress, Position: 250}
	device.events <- Event{TrackID: "b", Kind: EventMetadataReady, Duration: 45}
	waitFor(t, "b metadata", func() bool { return s.State().Duration == 45 })

	state := s.State()
	if state.Track.ID != "b" {
		t.Errorf("track = %q, want b", state.Track.ID)
	}
	if state.Duration != 45 {
		t.Errorf("duration = %v, want 45 (stale 300 must be discarded)", state.Duration)
	}
	if state.Position != 0 {
		t.Errorf("position = %v, want 0 (stale 250 must be discarded)", state.Position)
	}
}

func TestSwitchingTracksLoadsInOrder(t *testing.T) {
	s, device, _ := newTestSession(t, Options{})

	s.PlayTrack(trackA())
	waitFor(t, "playing a", func() bool { return s.State().Status == core.StatusPlaying })
	s.PlayTrack(trackB())
	waitFor(t, "playing b", func() bool {
		st := s.State()
		return st.Status == core.StatusPlaying && st.Track.ID == "b"
	})

	device.mu.Lock()
	loads := append([]string(nil), device.loads...)
	device.mu.Unlock()
	if len(loads) != 2 || loads[0] != "a" || loads[1] != "b" {
		t.Errorf("loads = %v, want [a b]", loads)
	}
}

func TestPlayRejectionBecomesErrorWithOneNotice(t *testing.T) {
	s, device, notices := newTestSession(t, Options{})
	device.setPlayErr(errors.New("autoplay blocked"))

	s.PlayTrack(trackA())
	waitFor(t, "error status", func() bool { return s.State().Status == core.StatusError })

	time.Sleep(20 * time.Millisecond)
	if got := notices.count("Failed to play"); got != 1 {
		t.Errorf("failure notices = %d, want exactly 1", got)
	}
	if got := notices.count("Now playing"); got != 0 {
		t.Errorf("now-playing notices = %d, want 0", got)
	}

	// A fresh request recovers from Error.
	device.setPlayErr(nil)
	s.PlayTrack(trackA())
	waitFor(t, "recovered", func() bool { return s.State().Status == core.StatusPlaying })
}

func TestDeviceErrorEventBecomesError(t *testing.T) {
	s, device, notices := newTestSession(t, Options{})

	s.PlayTrack(trackA())
	waitFor(t, "playing", func() bool { return s.State().Status == core.StatusPlaying })
	device.events <- Event{TrackID: "a", Kind: EventError, Err: errors.New("network failure")}
	waitFor(t, "error status", func() bool { return s.State().Status == core.StatusError })

	// A repeated error event must not produce a second notice.
	device.events <- Event{TrackID: "a", Kind: EventError, Err: errors.New("network failure")}
	time.Sleep(20 * time.Millisecond)
	if got := notices.count("Error playing"); got != 1 {
		t.Errorf("error notices = %d, want 1", got)
	}
}

func TestStopClearsTrackAndRecoversFromError(t *testing.T) {
	s, device, _ := newTestSession(t, Options{})

	s.PlayTrack(trackA())
	waitFor(t, "playing", func() bool { return s.State().Status == core.StatusPlaying })
	device.events <- Event{TrackID: "a", Kind: EventError}
	waitFor(t, "error", func() bool { return s.State().Status == core.StatusError })

	s.Stop()
	state := s.State()
	if state.Status != core.StatusIdle {
		t.Errorf("status = %v, want idle", state.Status)
	}
	if state.HasTrack() {
		t.Error("track retained after stop, want none")
	}
	if state.Position != 0 {
		t.Errorf("position = %v, want 0", state.Position)
	}
}

func TestBufferingDerivesLoadingStatus(t *testing.T) {
	s, device, _ := newTestSession(t, Options{})

	s.PlayTrack(trackA())
	waitFor(t, "playing", func() bool { return s.State().Status == core.StatusPlaying })

	device.events <- Event{TrackID: "a", Kind: EventBufferingStart}
	waitFor(t, "loading", func() bool { return s.State().Status == core.StatusLoading })

	device.events <- Event{TrackID: "a", Kind: EventBufferingEnd}
	waitFor(t, "playing again", func() bool { return s.State().Status == core.StatusPlaying })
}

func TestStrictResolutionFailureBecomesError(t *testing.T) {
	s, device, notices := newTestSession(t, Options{Resolver: resolve.New(true)})

	s.PlayTrack(trackB()) // no source
	waitFor(t, "error status", func() bool { return s.State().Status == core.StatusError })

	if got := device.loadCount(); got != 0 {
		t.Errorf("load count = %d, want 0 (nothing to load)", got)
	}
	if got := notices.count("no audio source"); got != 1 {
		t.Errorf("unresolved-source notices = %d, want 1", got)
	}
}

func TestFallbackSourceUsedWhenMissing(t *testing.T) {
	s, device, _ := newTestSession(t, Options{})

	s.PlayTrack(trackB()) // no source, default resolver substitutes a sample
	waitFor(t, "playing", func() bool { return s.State().Status == core.StatusPlaying })

	device.mu.Lock()
	src := device.sources[0]
	device.mu.Unlock()
	if !strings.HasPrefix(src, "https://") {
		t.Errorf("loaded source = %q, want a fallback URL", src)
	}
}

func TestOnChangePublishesSnapshots(t *testing.T) {
	var mu sync.Mutex
	var last core.PlaybackState
	device := newFakeDevice()
	s := NewSession(device, Options{OnChange: func(st core.PlaybackState) {
		mu.Lock()
		last = st
		mu.Unlock()
	}})
	t.Cleanup(s.Close)

	s.PlayTrack(trackA())
	waitFor(t, "published playing", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return last.Status == core.StatusPlaying && last.HasTrack()
	})
}
