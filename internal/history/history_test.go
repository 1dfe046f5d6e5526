package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2023, 8, 1, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{TrackID: "1", Title: "First", Creator: "A", PlayedAt: base},
		{TrackID: "2", Title: "Second", Creator: "B", PlayedAt: base.Add(time.Hour)},
		{TrackID: "3", Title: "Third", Creator: "C", PlayedAt: base.Add(2 * time.Hour)},
	}
	for _, e := range entries {
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("Record(%s) error = %v", e.TrackID, err)
		}
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent() returned %d entries, want 3", len(got))
	}
	if got[0].TrackID != "3" {
		t.Errorf("most recent = %q, want 3", got[0].TrackID)
	}
}

func TestRecordReplacesExistingTrack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := Entry{TrackID: "1", Title: "Show", PlayedAt: time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC), SecondsListened: 30}
	if err := s.Record(ctx, first); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	replay := first
	replay.PlayedAt = first.PlayedAt.Add(24 * time.Hour)
	replay.SecondsListened = 95
	if err := s.Record(ctx, replay); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Recent() returned %d entries, want 1 (replay must update)", len(got))
	}
	if got[0].SecondsListened != 95 {
		t.Errorf("SecondsListened = %v, want 95", got[0].SecondsListened)
	}
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		e := Entry{
			TrackID:  string(rune('a' + i)),
			Title:    "Show",
			PlayedAt: time.Date(2023, 8, 1+i, 0, 0, 0, 0, time.UTC),
		}
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Recent(2) returned %d entries, want 2", len(got))
	}
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, Entry{TrackID: "1", Title: "Show"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Recent() after Clear returned %d entries, want 0", len(got))
	}
}
