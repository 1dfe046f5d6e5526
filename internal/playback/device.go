// Package playback owns the shared audio session: the device boundary, the
// session state machine, and the reconciliation of asynchronous device
// events into a consistent snapshot.
package playback

// EventKind identifies a device event.
type EventKind int

const (
	// EventMetadataReady fires once the track duration is known.
	EventMetadataReady EventKind = iota
	// EventProgress fires repeatedly during playback. Frequency is
	// device-determined and not guaranteed uniform.
	EventProgress
	// EventEnded fires when playback reaches the end of the source.
	EventEnded
	// EventBufferingStart fires when the device stalls waiting for data.
	EventBufferingStart
	// EventBufferingEnd fires when stalled playback recovers.
	EventBufferingEnd
	// EventError fires on any unrecoverable device failure.
	EventError
)

// Event is a normalized device event. TrackID echoes the id passed to Load
// so the session can discard events from a superseded load.
type Event struct {
	TrackID  string
	Kind     EventKind
	Duration float64
	Position float64
	Err      error
}

// Device wraps exactly one native audio output resource. Implementations
// deliver events on a single channel in the order the resource produces
// them; the session is the only consumer.
type Device interface {
	// Load assigns a new source and resets the read position. Success or
	// failure is communicated through events tagged with trackID.
	Load(trackID, sourceURL string)

	// Play requests playback. The returned channel delivers exactly one
	// value: nil once the device accepts, or the refusal error.
	Play() <-chan error

	// Pause suspends playback. Safe in any state.
	Pause()

	// Seek sets the read position in seconds. Implementations clamp to
	// the known duration.
	Seek(seconds float64)

	SetVolume(v float64)
	SetMuted(muted bool)
	SetRate(rate float64)

	// Events returns the outbound event stream. The channel is closed by
	// Dispose.
	Events() <-chan Event

	// Dispose releases the native resource. Idempotent.
	Dispose()
}
