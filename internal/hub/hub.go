// Package hub is the single access point through which application code
// observes and drives the shared playback session. UI components never talk
// to the session or the device directly; they read snapshots, dispatch
// intents, and subscribe to changes here.
package hub

import (
	"log/slog"
	"sync"

	"github.com/podly-fm/podly/internal/core"
	"github.com/podly-fm/podly/internal/playback"
	"github.com/podly-fm/podly/internal/resolve"
)

// Options configures the hub's underlying session.
type Options struct {
	Resolver *resolve.Resolver
	Logger   *slog.Logger
	Volume   float64
	Rate     float64
}

// Hub owns exactly one playback session and fans its snapshots and
// notifications out to any number of subscribers.
type Hub struct {
	session *playback.Session

	mu         sync.Mutex
	nextID     int
	stateSubs  map[int]func(core.PlaybackState)
	noticeSubs map[int]func(playback.Notice)
	closed     bool
}

// New builds the hub and its single session/device pair.
func New(device playback.Device, opts Options) *Hub {
	h := &Hub{
		stateSubs:  make(map[int]func(core.PlaybackState)),
		noticeSubs: make(map[int]func(playback.Notice)),
	}
	h.session = playback.NewSession(device, playback.Options{
		Resolver: opts.Resolver,
		Logger:   opts.Logger,
		Volume:   opts.Volume,
		Rate:     opts.Rate,
		OnChange: h.broadcastState,
		Notify:   h.broadcastNotice,
	})
	return h
}

// State returns the current playback snapshot.
func (h *Hub) State() core.PlaybackState {
	return h.session.State()
}

// PlayTrack dispatches a play intent for the given track.
func (h *Hub) PlayTrack(track core.Track) { h.session.PlayTrack(track) }

// Pause dispatches a pause intent.
func (h *Hub) Pause() { h.session.Pause() }

// Resume dispatches a resume intent.
func (h *Hub) Resume() { h.session.Resume() }

// Stop dispatches a stop intent.
func (h *Hub) Stop() { h.session.Stop() }

// Seek dispatches a seek intent.
func (h *Hub) Seek(seconds float64) { h.session.Seek(seconds) }

// SetVolume dispatches a volume intent.
func (h *Hub) SetVolume(v float64) { h.session.SetVolume(v) }

// ToggleMute dispatches a mute toggle.
func (h *Hub) ToggleMute() { h.session.ToggleMute() }

// CycleRate advances the playback rate.
func (h *Hub) CycleRate() { h.session.CycleRate() }

// Subscribe registers fn to be invoked on every snapshot change. The
// returned cancel function is safe to call multiple times and from
// teardown paths.
func (h *Hub) Subscribe(fn func(core.PlaybackState)) (cancel func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.stateSubs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.stateSubs, id)
		h.mu.Unlock()
	}
}

// SubscribeNotices registers fn to receive user-facing notifications.
func (h *Hub) SubscribeNotices(fn func(playback.Notice)) (cancel func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.noticeSubs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.noticeSubs, id)
		h.mu.Unlock()
	}
}

// Close tears down the session and device. Further subscriptions deliver
// nothing.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.stateSubs = map[int]func(core.PlaybackState){}
	h.noticeSubs = map[int]func(playback.Notice){}
	h.mu.Unlock()

	h.session.Close()
}

func (h *Hub) broadcastState(state core.PlaybackState) {
	for _, id := range h.stateSubIDs() {
		h.mu.Lock()
		fn, ok := h.stateSubs[id]
		h.mu.Unlock()
		if ok {
			fn(state)
		}
	}
}

func (h *Hub) broadcastNotice(notice playback.Notice) {
	h.mu.Lock()
	ids := make([]int, 0, len(h.noticeSubs))
	for id := range h.noticeSubs {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.mu.Lock()
		fn, ok := h.noticeSubs[id]
		h.mu.Unlock()
		if ok {
			fn(notice)
		}
	}
}

// stateSubIDs snapshots subscriber ids; membership is re-checked before
// each invocation so a cancelled subscriber is never called.
func (h *Hub) stateSubIDs() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]int, 0, len(h.stateSubs))
	for id := range h.stateSubs {
		ids = append(ids, id)
	}
	return ids
}
