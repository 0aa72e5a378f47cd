package replay

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/banshee-data/pointertrack/internal/db"
	"github.com/banshee-data/pointertrack/internal/pointer"
	"github.com/banshee-data/pointertrack/internal/timeutil"
	"github.com/google/go-cmp/cmp"
)

func newStore(t *testing.T) *db.DB {
	t.Helper()
	store, err := db.NewDB(filepath.Join(t.TempDir(), "replay.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDBSinkRoundTrip(t *testing.T) {
	store := newStore(t)
	clock := timeutil.NewMockClock(time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC))

	sink, err := NewDBSink(store, "two-finger", clock)
	if err != nil {
		t.Fatalf("NewDBSink failed: %v", err)
	}
	if got := sink.Session().Label; got != "two-finger" {
		t.Errorf("Session().Label = %q, want two-finger", got)
	}

	mem := &SliceSink{}
	tr := pointer.NewTracker(pointer.DefaultTrackerConfig())
	if _, err := Run(context.Background(), tr, twoFingerStream(), MultiSink{sink, mem}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	loaded, err := LoadFrames(store, sink.Session().ID)
	if err != nil {
		t.Fatalf("LoadFrames failed: %v", err)
	}
	if diff := cmp.Diff(mem.Frames, loaded); diff != "" {
		t.Errorf("LoadFrames() mismatch (-want +got):\n%s", diff)
	}

	sessions, err := store.Sessions()
	if err != nil {
		t.Fatalf("Sessions failed: %v", err)
	}
	if len(sessions) != 1 || !sessions[0].StartedAt.Equal(clock.Now()) {
		t.Errorf("Sessions() = %+v, want one session started at %v", sessions, clock.Now())
	}
}

func TestLoadFramesUnknownSession(t *testing.T) {
	store := newStore(t)

	_, err := LoadFrames(store, "nope")
	if !errors.Is(err, db.ErrSessionNotFound) {
		t.Errorf("LoadFrames() error = %v, want ErrSessionNotFound", err)
	}
}

func TestLoadFramesMismatchedCounts(t *testing.T) {
	store := newStore(t)
	s, err := store.CreateSession("partial", time.Unix(0, 0))
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := store.RecordEvent(s.ID, db.EventRecord{Seq: 0, Action: "down", Time: time.Unix(0, 0)}); err != nil {
		t.Fatalf("RecordEvent failed: %v", err)
	}

	if _, err := LoadFrames(store, s.ID); err == nil {
		t.Error("LoadFrames() succeeded with an event lacking a frame")
	}
}

func TestDBSinkRecordIsAtomic(t *testing.T) {
	store := newStore(t)
	sink, err := NewDBSink(store, "clash", timeutil.NewMockClock(time.Unix(0, 0)))
	if err != nil {
		t.Fatalf("NewDBSink failed: %v", err)
	}
	if err := store.RecordFrame(sink.Session().ID, db.FrameRecord{Seq: 0}); err != nil {
		t.Fatalf("RecordFrame failed: %v", err)
	}

	tr := pointer.NewTracker(pointer.DefaultTrackerConfig())
	if _, err := Run(context.Background(), tr, twoFingerStream(), sink); err == nil {
		t.Fatal("Run succeeded, want frame constraint error")
	}

	events, err := store.SessionEvents(sink.Session().ID)
	if err != nil {
		t.Fatalf("SessionEvents failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("SessionEvents() = %d events after failed record, want 0", len(events))
	}
}
