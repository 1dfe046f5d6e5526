package core

import "testing"

func TestNextRateCyclesThroughAllRates(t *testing.T) {
	r := 1.0
	for i := 0; i < len(Rates); i++ {
		r = NextRate(r)
	}
	if r != 1.0 {
		t.Errorf("rate after full cycle = %v, want 1.0", r)
	}
}

func TestNextRateUnknownRestartsCycle(t *testing.T) {
	if got := NextRate(1.25); got != Rates[0] {
		t.Errorf("NextRate(1.25) = %v, want %v", got, Rates[0])
	}
}

func TestProgressPercent(t *testing.T) {
	s := &PlaybackState{Position: 30, Duration: 120}
	if got := s.ProgressPercent(); got != 25 {
		t.Errorf("ProgressPercent() = %v, want 25", got)
	}

	zero := &PlaybackState{Position: 30}
	if got := zero.ProgressPercent(); got != 0 {
		t.Errorf("ProgressPercent() with zero duration = %v, want 0", got)
	}
}

func TestEpisodeAsTrack(t *testing.T) {
	parent := &Track{
		ID:           "p1",
		CreatorName:  "Tech Innovators",
		ThumbnailURL: "https://example.com/art.jpg",
		Category:     "Business",
	}
	ep := &Episode{
		ID:       "e1",
		Title:    "Getting Started with AI",
		AudioURL: "https://example.com/e1.mp3",
	}

	track := ep.AsTrack(parent)

	if track.ID != "e1" {
		t.Errorf("ID = %q, want %q", track.ID, "e1")
	}
	if track.SourceURL != "https://example.com/e1.mp3" {
		t.Errorf("SourceURL = %q, want episode audio URL", track.SourceURL)
	}
	if track.CreatorName != "Tech Innovators" {
		t.Errorf("CreatorName = %q, want parent creator", track.CreatorName)
	}
	if track.ThumbnailURL != parent.ThumbnailURL {
		t.Errorf("ThumbnailURL = %q, want parent thumbnail", track.ThumbnailURL)
	}
}
