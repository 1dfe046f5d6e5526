package core

// Status describes where the playback session is in its lifecycle.
type Status int

const (
	// StatusIdle means no track is loaded.
	StatusIdle Status = iota
	// StatusLoading means a track is buffering or waiting for the device
	// to confirm playback.
	StatusLoading
	// StatusPlaying means audio is audibly progressing.
	StatusPlaying
	// StatusPaused means a track is loaded but suspended.
	StatusPaused
	// StatusEnded means the current track played to completion. The track
	// stays loaded so the UI can offer a replay affordance.
	StatusEnded
	// StatusError means the device refused to load or play the current
	// track. Only a fresh play request or a stop recovers from it.
	StatusError
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusEnded:
		return "ended"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Rates is the fixed set of playback speeds, in cycle order.
var Rates = []float64{0.75, 1.0, 1.5, 2.0}

// NextRate returns the rate following r in the cycle, wrapping at the end.
// Unknown rates restart the cycle at the first entry.
func NextRate(r float64) float64 {
	for i, known := range Rates {
		if known == r {
			return Rates[(i+1)%len(Rates)]
		}
	}
	return Rates[0]
}

// PlaybackState is an immutable snapshot of the playback session.
type PlaybackState struct {
	Track    *Track  `json:"track"`
	Status   Status  `json:"status"`
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
	Volume   float64 `json:"volume"`
	Muted    bool    `json:"muted"`
	Rate     float64 `json:"rate"`
}

// HasTrack returns true if there is an active track.
func (s *PlaybackState) HasTrack() bool {
	return s != nil && s.Track != nil
}

// IsPlaying returns true if audio is currently progressing.
func (s *PlaybackState) IsPlaying() bool {
	return s != nil && s.Status == StatusPlaying
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s *PlaybackState) ProgressPercent() float64 {
	if s == nil || s.Duration <= 0 {
		return 0
	}
	return s.Position / s.Duration * 100
}
