package hub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/podly-fm/podly/internal/core"
	podlyerrors "github.com/podly-fm/podly/internal/errors"
	"github.com/podly-fm/podly/internal/playback"
)

// fakeDevice accepts every command and immediately confirms playback.
type fakeDevice struct {
	mu       sync.Mutex
	events   chan playback.Event
	disposed bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{events: make(chan playback.Event, 32)}
}

func (f *fakeDevice) Load(trackID, sourceURL string) {}

func (f *fakeDevice) Play() <-chan error {
	ch := make(chan error, 1)
	ch <- nil
	return ch
}

func (f *fakeDevice) Pause()                 {}
func (f *fakeDevice) Seek(seconds float64)   {}
func (f *fakeDevice) SetVolume(v float64)    {}
func (f *fakeDevice) SetMuted(muted bool)    {}
func (f *fakeDevice) SetRate(rate float64)   {}
func (f *fakeDevice) Events() <-chan playback.Event { return f.events }

func (f *fakeDevice) Dispose() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.disposed {
		f.disposed = true
		close(f.events)
	}
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

func TestTwoSubscribersSeeSameState(t *testing.T) {
	h := New(newFakeDevice(), Options{})
	t.Cleanup(h.Close)

	type seen struct {
		mu    sync.Mutex
		state core.PlaybackState
	}
	var a, b seen
	record := func(s *seen) func(core.PlaybackState) {
		return func(st core.PlaybackState) {
			s.mu.Lock()
			s.state = st
			s.mu.Unlock()
		}
	}
	cancelA := h.Subscribe(record(&a))
	cancelB := h.Subscribe(record(&b))
	defer cancelA()
	defer cancelB()

	h.PlayTrack(core.Track{ID: "x", Title: "Shared Session", SourceURL: "https://x/x.mp3"})
	waitFor(t, "both subscribers playing", func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		b.mu.Lock()
		defer b.mu.Unlock()
		return a.state.IsPlaying() && b.state.IsPlaying()
	})

	a.mu.Lock()
	b.mu.Lock()
	defer a.mu.Unlock()
	defer b.mu.Unlock()
	if a.state.Track == nil || b.state.Track == nil {
		t.Fatal("subscriber missing track")
	}
	if a.state.Track.ID != b.state.Track.ID {
		t.Errorf("subscribers disagree on track: %q vs %q", a.state.Track.ID, b.state.Track.ID)
	}
	if st := h.State(); st.Track.ID != a.state.Track.ID {
		t.Errorf("direct read disagrees with subscription: %q vs %q", st.Track.ID, a.state.Track.ID)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := New(newFakeDevice(), Options{})
	t.Cleanup(h.Close)

	var mu sync.Mutex
	calls := 0
	cancel := h.Subscribe(func(core.PlaybackState) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	h.SetVolume(0.5)
	waitFor(t, "first delivery", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls > 0
	})

	cancel()
	cancel() // repeated cancel must be safe

	mu.Lock()
	before := calls
	mu.Unlock()

	h.SetVolume(0.7)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	after := calls
	mu.Unlock()
	if after != before {
		t.Errorf("subscriber invoked after unsubscribe: %d calls, want %d", after, before)
	}
}

func TestNoticesFanOut(t *testing.T) {
	h := New(newFakeDevice(), Options{})
	t.Cleanup(h.Close)

	var mu sync.Mutex
	var got []playback.Notice
	cancel := h.SubscribeNotices(func(n playback.Notice) {
		mu.Lock()
		got = append(got, n)
		mu.Unlock()
	})
	defer cancel()

	h.PlayTrack(core.Track{ID: "x", Title: "Shared Session", SourceURL: "https://x/x.mp3"})
	waitFor(t, "now playing notice", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	if got[0].Level != playback.NoticeInfo {
		t.Errorf("notice level = %v, want info", got[0].Level)
	}
}

func TestFromContextOutsideScope(t *testing.T) {
	_, err := FromContext(context.Background())
	if !errors.Is(err, podlyerrors.ErrSubscriptionScope) {
		t.Errorf("FromContext() error = %v, want ErrSubscriptionScope", err)
	}
}

func TestFromContextRoundTrip(t *testing.T) {
	h := New(newFakeDevice(), Options{})
	t.Cleanup(h.Close)

	ctx := NewContext(context.Background(), h)
	got, err := FromContext(ctx)
	if err != nil {
		t.Fatalf("FromContext() error = %v", err)
	}
	if got != h {
		t.Error("FromContext() returned a different hub")
	}
}
