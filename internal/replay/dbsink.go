package replay

import (
	"fmt"

	"github.com/banshee-data/pointertrack/internal/db"
	"github.com/banshee-data/pointertrack/internal/pointer"
	"github.com/banshee-data/pointertrack/internal/timeutil"
)

// DBSink records every frame and the event that produced it into one session.
type DBSink struct {
	store   *db.DB
	session *db.Session
}

// NewDBSink creates a session labelled label, started at clock.Now().
func NewDBSink(store *db.DB, label string, clock timeutil.Clock) (*DBSink, error) {
	s, err := store.CreateSession(label, clock.Now())
	if err != nil {
		return nil, err
	}
	return &DBSink{store: store, session: s}, nil
}

// Session returns the session frames are written to.
func (s *DBSink) Session() *db.Session {
	return s.session
}

// Record persists f and its op together.
func (s *DBSink) Record(f Frame) error {
	e := f.Op.Event
	return s.store.RecordStep(s.session.ID, db.EventRecord{
		Seq:       f.Seq,
		Action:    string(f.Op.Action),
		PointerID: e.PointerID,
		X:         e.X,
		Y:         e.Y,
		OffsetX:   e.OffsetX,
		OffsetY:   e.OffsetY,
		Time:      e.Time,
	}, db.FrameRecord{
		Seq:           f.Seq,
		TrackedCount:  f.TrackedCount,
		LastPointerID: f.LastPointerID,
		StableIndex:   f.StableIndex,
		AvgAbsX:       f.AverageAbsolute.X,
		AvgAbsY:       f.AverageAbsolute.Y,
		AvgRelX:       f.AverageRelative.X,
		AvgRelY:       f.AverageRelative.Y,
		VelX:          f.Velocity.X,
		VelY:          f.Velocity.Y,
	})
}

// LoadFrames rebuilds the frames of a recorded session.
func LoadFrames(store *db.DB, sessionID string) ([]Frame, error) {
	events, err := store.SessionEvents(sessionID)
	if err != nil {
		return nil, err
	}
	records, err := store.SessionFrames(sessionID)
	if err != nil {
		return nil, err
	}
	if len(events) != len(records) {
		return nil, fmt.Errorf("session %s has %d events but %d frames", sessionID, len(events), len(records))
	}

	frames := make([]Frame, len(records))
	for i, r := range records {
		e := events[i]
		if e.Seq != r.Seq {
			return nil, fmt.Errorf("session %s: event seq %d does not match frame seq %d", sessionID, e.Seq, r.Seq)
		}
		action, err := ParseAction(e.Action)
		if err != nil {
			return nil, fmt.Errorf("session %s seq %d: %w", sessionID, e.Seq, err)
		}
		frames[i] = Frame{
			Seq: r.Seq,
			Op: Op{
				Action: action,
				Event: pointer.Event{
					PointerID: e.PointerID,
					X:         e.X,
					Y:         e.Y,
					OffsetX:   e.OffsetX,
					OffsetY:   e.OffsetY,
					Time:      e.Time,
				},
			},
			TrackedCount:    r.TrackedCount,
			LastPointerID:   r.LastPointerID,
			StableIndex:     r.StableIndex,
			Velocity:        pointer.Point{X: r.VelX, Y: r.VelY},
			AverageAbsolute: pointer.Point{X: r.AvgAbsX, Y: r.AvgAbsY},
			AverageRelative: pointer.Point{X: r.AvgRelX, Y: r.AvgRelY},
		}
	}
	return frames, nil
}
