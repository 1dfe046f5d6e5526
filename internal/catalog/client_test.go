package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListPodcastsFromRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Action != "get-podcasts" {
			t.Errorf("action = %q, want get-podcasts", req.Action)
		}
		if req.Params["category"] != "Health" {
			t.Errorf("category param = %q, want Health", req.Params["category"])
		}
		json.NewEncoder(w).Encode([]wirePodcast{
			{ID: "42", Title: "Remote Show", Author: "Someone", ImageURL: "https://x/a.jpg", Category: "Health"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", nil)
	got, err := c.ListPodcasts(context.Background(), Filter{Category: "Health"})
	if err != nil {
		t.Fatalf("ListPodcasts() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d podcasts, want 1", len(got))
	}
	if got[0].CreatorName != "Someone" {
		t.Errorf("CreatorName = %q, want normalized author field", got[0].CreatorName)
	}
	if got[0].ThumbnailURL != "https://x/a.jpg" {
		t.Errorf("ThumbnailURL = %q, want normalized imageUrl field", got[0].ThumbnailURL)
	}
}

func TestListPodcastsFallsBackToFixtures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	srv.Close() // immediately unreachable

	c := New(srv.URL, "", nil)
	got, err := c.ListPodcasts(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("ListPodcasts() error = %v, want fixture fallback", err)
	}
	if len(got) == 0 {
		t.Fatal("got empty listing, want fixtures")
	}
}

func TestOfflineModeUsesFixtures(t *testing.T) {
	c := New("", "", nil)
	got, err := c.ListPodcasts(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("ListPodcasts() error = %v", err)
	}
	if len(got) != len(fixturePodcasts) {
		t.Errorf("got %d podcasts, want %d", len(got), len(fixturePodcasts))
	}
}

func TestFixtureFilterCategory(t *testing.T) {
	got := FixturePodcasts(Filter{Category: "Health"})
	if len(got) != 2 {
		t.Fatalf("got %d Health podcasts, want 2", len(got))
	}
	for _, p := range got {
		if p.Category != "Health" {
			t.Errorf("podcast %s category = %q, want Health", p.ID, p.Category)
		}
	}
}

func TestFixtureFilterSearch(t *testing.T) {
	got := FixturePodcasts(Filter{Search: "storytell"})
	if len(got) != 1 || got[0].ID != "8" {
		t.Errorf("search result = %+v, want only podcast 8", got)
	}
}

func TestFixtureSortNewest(t *testing.T) {
	got := FixturePodcasts(Filter{Sort: SortNewest})
	for i := 1; i < len(got); i++ {
		if got[i-1].PublishedAt < got[i].PublishedAt {
			t.Fatalf("listing not sorted newest-first at index %d: %s < %s", i, got[i-1].PublishedAt, got[i].PublishedAt)
		}
	}
}

func TestFixtureSortDuration(t *testing.T) {
	got := FixturePodcasts(Filter{Sort: SortDuration})
	for i := 1; i < len(got); i++ {
		if durationMinutes(got[i-1].Duration) > durationMinutes(got[i].Duration) {
			t.Fatalf("listing not sorted by duration at index %d", i)
		}
	}
}

func TestFixturePodcastNotFound(t *testing.T) {
	if _, err := FixturePodcast("does-not-exist"); err == nil {
		t.Error("FixturePodcast() error = nil, want not-found error")
	}
}

func TestFixtureEpisodesBelongToPodcast(t *testing.T) {
	episodes := FixtureEpisodes("3")
	if len(episodes) != 5 {
		t.Fatalf("got %d episodes, want 5", len(episodes))
	}
	for _, ep := range episodes {
		if ep.PodcastID != "3" {
			t.Errorf("episode %s PodcastID = %q, want 3", ep.ID, ep.PodcastID)
		}
	}
}
