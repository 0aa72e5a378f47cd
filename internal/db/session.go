package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/pointertrack/internal/monitoring"
	"github.com/google/uuid"
)

// Session is one recorded replay run.
type Session struct {
	ID        string
	Label     string
	StartedAt time.Time
}

// EventRecord is one input event as it was fed to the tracker.
type EventRecord struct {
	Seq       int
	Action    string
	PointerID int
	X         float64
	Y         float64
	OffsetX   float64
	OffsetY   float64
	Time      time.Time
}

// FrameRecord is the tracker state observed after applying the event with the
// same Seq. LastPointerID and StableIndex are nil when the tracker reported
// no value.
type FrameRecord struct {
	Seq           int
	TrackedCount  int
	LastPointerID *int
	StableIndex   *int
	AvgAbsX       float64
	AvgAbsY       float64
	AvgRelX       float64
	AvgRelY       float64
	VelX          float64
	VelY          float64
}

// CreateSession inserts a new session with a random UUID.
func (db *DB) CreateSession(label string, startedAt time.Time) (*Session, error) {
	s := &Session{
		ID:        uuid.New().String(),
		Label:     label,
		StartedAt: startedAt,
	}
	_, err := db.Exec(
		`INSERT INTO sessions (session_id, label, started_at) VALUES (?, ?, ?)`,
		s.ID, s.Label, s.StartedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}

// GetSession returns the session with the given ID, or ErrSessionNotFound.
func (db *DB) GetSession(id string) (*Session, error) {
	var (
		s         Session
		startedNs int64
	)
	err := db.QueryRow(
		`SELECT session_id, label, started_at FROM sessions WHERE session_id = ?`, id,
	).Scan(&s.ID, &s.Label, &startedNs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	s.StartedAt = time.Unix(0, startedNs).UTC()
	return &s, nil
}

// Sessions lists all sessions, oldest first.
func (db *DB) Sessions() ([]Session, error) {
	rows, err := db.Query(`SELECT session_id, label, started_at FROM sessions ORDER BY started_at, session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			s         Session
			startedNs int64
		)
		if err := rows.Scan(&s.ID, &s.Label, &startedNs); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.StartedAt = time.Unix(0, startedNs).UTC()
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session together with its events and frames.
func (db *DB) DeleteSession(id string) error {
	res, err := db.Exec(`DELETE FROM sessions WHERE session_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// RecordEvent appends an input event to a session.
func (db *DB) RecordEvent(sessionID string, e EventRecord) error {
	return insertEvent(db, sessionID, e)
}

// RecordFrame appends a tracker state snapshot to a session.
func (db *DB) RecordFrame(sessionID string, f FrameRecord) error {
	return insertFrame(db, sessionID, f)
}

// RecordStep appends an event and the frame it produced in one transaction,
// so a failed frame insert leaves no orphan event behind.
func (db *DB) RecordStep(sessionID string, e EventRecord, f FrameRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin step %d: %w", e.Seq, err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			monitoring.Logf("warning: failed to rollback step %d: %v", e.Seq, err)
		}
	}()

	if err := insertEvent(tx, sessionID, e); err != nil {
		return err
	}
	if err := insertFrame(tx, sessionID, f); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit step %d: %w", e.Seq, err)
	}
	return nil
}

func insertEvent(x execer, sessionID string, e EventRecord) error {
	_, err := x.Exec(
		`INSERT INTO pointer_events (
			session_id, seq, action, pointer_id, x, y, offset_x, offset_y, time_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, e.Seq, e.Action, e.PointerID, e.X, e.Y, e.OffsetX, e.OffsetY, e.Time.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record event %d: %w", e.Seq, err)
	}
	return nil
}

func insertFrame(x execer, sessionID string, f FrameRecord) error {
	_, err := x.Exec(
		`INSERT INTO tracker_frames (
			session_id, seq, tracked_count, last_pointer_id, stable_index,
			avg_abs_x, avg_abs_y, avg_rel_x, avg_rel_y, vel_x, vel_y
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, f.Seq, f.TrackedCount, nullInt(f.LastPointerID), nullInt(f.StableIndex),
		f.AvgAbsX, f.AvgAbsY, f.AvgRelX, f.AvgRelY, f.VelX, f.VelY,
	)
	if err != nil {
		return fmt.Errorf("failed to record frame %d: %w", f.Seq, err)
	}
	return nil
}

// SessionEvents returns a session's events in sequence order.
func (db *DB) SessionEvents(sessionID string) ([]EventRecord, error) {
	if _, err := db.GetSession(sessionID); err != nil {
		return nil, err
	}
	rows, err := db.Query(
		`SELECT seq, action, pointer_id, x, y, offset_x, offset_y, time_ns
		FROM pointer_events WHERE session_id = ? ORDER BY seq`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []EventRecord
	for rows.Next() {
		var (
			e      EventRecord
			timeNs int64
		)
		if err := rows.Scan(&e.Seq, &e.Action, &e.PointerID, &e.X, &e.Y, &e.OffsetX, &e.OffsetY, &timeNs); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Time = time.Unix(0, timeNs).UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}

// SessionFrames returns a session's tracker frames in sequence order.
func (db *DB) SessionFrames(sessionID string) ([]FrameRecord, error) {
	if _, err := db.GetSession(sessionID); err != nil {
		return nil, err
	}
	rows, err := db.Query(
		`SELECT seq, tracked_count, last_pointer_id, stable_index,
			avg_abs_x, avg_abs_y, avg_rel_x, avg_rel_y, vel_x, vel_y
		FROM tracker_frames WHERE session_id = ? ORDER BY seq`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query frames: %w", err)
	}
	defer rows.Close()

	var frames []FrameRecord
	for rows.Next() {
		var (
			f                FrameRecord
			lastID, stableIx sql.NullInt64
		)
		if err := rows.Scan(&f.Seq, &f.TrackedCount, &lastID, &stableIx,
			&f.AvgAbsX, &f.AvgAbsY, &f.AvgRelX, &f.AvgRelY, &f.VelX, &f.VelY); err != nil {
			return nil, fmt.Errorf("failed to scan frame: %w", err)
		}
		f.LastPointerID = intPtr(lastID)
		f.StableIndex = intPtr(stableIx)
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
