package resolve

import (
	"errors"
	"strings"
	"testing"

	podlyerrors "github.com/podly-fm/podly/internal/errors"
)

func TestResolvePassesThroughRemoteURL(t *testing.T) {
	r := New(false)
	got, err := r.Resolve("a", "https://example.com/a.mp3")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "https://example.com/a.mp3" {
		t.Errorf("Resolve() = %q, want passthrough", got)
	}
}

func TestResolvePassesThroughEmbeddedPayload(t *testing.T) {
	r := New(false)
	src := "data:audio/mpeg;base64,SUQzBAAAAAAA"
	got, err := r.Resolve("a", src)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != src {
		t.Errorf("Resolve() = %q, want verbatim data payload", got)
	}
	if !IsEmbedded(got) {
		t.Error("IsEmbedded() = false, want true")
	}
}

func TestResolveFallbackIsDeterministic(t *testing.T) {
	r := New(false)
	first, err := r.Resolve("podcast-42", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !strings.HasPrefix(first, "https://") {
		t.Errorf("fallback = %q, want a URL from the sample pool", first)
	}
	for i := 0; i < 10; i++ {
		again, err := r.Resolve("podcast-42", "")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if again != first {
			t.Fatalf("fallback changed between resolutions: %q then %q", first, again)
		}
	}
}

func TestResolveDistinctTracksMaySpreadAcrossPool(t *testing.T) {
	r := New(false)
	seen := map[string]bool{}
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		src, err := r.Resolve(id, "")
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", id, err)
		}
		seen[src] = true
	}
	if len(seen) < 2 {
		t.Errorf("all ids hashed to the same fallback, want some spread (got %d distinct)", len(seen))
	}
}

func TestResolveStrictFailsWithoutSource(t *testing.T) {
	r := New(true)
	_, err := r.Resolve("a", "")
	if !errors.Is(err, podlyerrors.ErrUnresolvedSource) {
		t.Errorf("Resolve() error = %v, want ErrUnresolvedSource", err)
	}
}

func TestResolveStrictStillPassesThrough(t *testing.T) {
	r := New(true)
	got, err := r.Resolve("a", "https://example.com/a.mp3")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "https://example.com/a.mp3" {
		t.Errorf("Resolve() = %q, want passthrough", got)
	}
}
