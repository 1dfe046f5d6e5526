// Package resolve guarantees a track has a usable audio source before it is
// handed to the playback device.
package resolve

import (
	"fmt"
	"strings"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/podly-fm/podly/internal/errors"
)

// dataPrefix marks an embedded base64 audio payload. Embedded payloads are
// passed through verbatim, never fetched.
const dataPrefix = "data:"

// fallbackSources is a fixed pool of known-good sample audio used when a
// track carries no source. Kept small and stable so the same track always
// maps to the same sample.
var fallbackSources = []string{
	"https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3",
	"https://www.soundhelix.com/examples/mp3/SoundHelix-Song-2.mp3",
	"https://www.soundhelix.com/examples/mp3/SoundHelix-Song-3.mp3",
	"https://www.soundhelix.com/examples/mp3/SoundHelix-Song-4.mp3",
	"https://www.soundhelix.com/examples/mp3/SoundHelix-Song-5.mp3",
}

// Resolver applies the source resolution policy.
type Resolver struct {
	// Strict disables the sample fallback: tracks without a source fail
	// with ErrUnresolvedSource instead of playing demo audio.
	Strict bool
}

// New creates a Resolver.
func New(strict bool) *Resolver {
	return &Resolver{Strict: strict}
}

// Resolve returns a playable URL for the given track source. Non-empty
// sources pass through unchanged, including embedded data: payloads.
func (r *Resolver) Resolve(trackID, sourceURL string) (string, error) {
	if strings.TrimSpace(sourceURL) != "" {
		return sourceURL, nil
	}
	if r.Strict {
		return "", fmt.Errorf("%w (track %s)", errors.ErrUnresolvedSource, trackID)
	}
	return fallbackSources[stableIndex(trackID)], nil
}

// IsEmbedded reports whether the source is an embedded data payload rather
// than a network URL.
func IsEmbedded(sourceURL string) bool {
	return strings.HasPrefix(sourceURL, dataPrefix)
}

// stableIndex maps a track id to a fallback slot. The hash is stable across
// runs so pause/resume cycles never switch samples underneath the user.
func stableIndex(trackID string) int {
	h, err := hashstructure.Hash(trackID, hashstructure.FormatV2, nil)
	if err != nil {
		return 0
	}
	return int(h % uint64(len(fallbackSources)))
}
