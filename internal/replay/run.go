package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/banshee-data/pointertrack/internal/monitoring"
	"github.com/banshee-data/pointertrack/internal/pointer"
)

// Frame is the tracker state observed right after applying Op.
type Frame struct {
	Seq int
	Op  Op

	TrackedCount int

	// LastPointerID is the tracker's last added or moved pointer, nil before
	// any.
	LastPointerID *int

	// StableIndex and Velocity describe the op's own pointer. Both are empty
	// once the pointer has been removed.
	StableIndex *int
	Velocity    pointer.Point

	AverageAbsolute pointer.Point
	AverageRelative pointer.Point
}

// Sink receives frames in sequence order.
type Sink interface {
	Record(f Frame) error
}

// SliceSink collects frames in memory.
type SliceSink struct {
	Frames []Frame
}

// Record appends f.
func (s *SliceSink) Record(f Frame) error {
	s.Frames = append(s.Frames, f)
	return nil
}

// MultiSink fans each frame out to every sink in order, stopping at the
// first error.
type MultiSink []Sink

// Record hands f to each sink.
func (m MultiSink) Record(f Frame) error {
	for _, s := range m {
		if err := s.Record(f); err != nil {
			return err
		}
	}
	return nil
}

// Summary describes a completed replay.
type Summary struct {
	Ops        int
	Pointers   int
	MaxTracked int
	Duration   time.Duration
}

// Run applies ops to t in order and hands a Frame for each to sink. A nil
// sink discards frames. Cancellation is checked before every op; on
// cancellation Run returns the summary so far and ctx.Err().
func Run(ctx context.Context, t *pointer.Tracker, ops []Op, sink Sink) (Summary, error) {
	var sum Summary
	seen := make(map[int]struct{})
	var first, last time.Time

	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		op.Apply(t)
		f := Capture(t, i, op)
		if sink != nil {
			if err := sink.Record(f); err != nil {
				return sum, fmt.Errorf("op %d: %w", i, err)
			}
		}

		sum.Ops++
		if op.Action != ActionReset {
			seen[op.Event.PointerID] = struct{}{}
		}
		sum.MaxTracked = max(sum.MaxTracked, f.TrackedCount)
		if i == 0 {
			first = op.Event.Time
		}
		last = op.Event.Time
	}
	sum.Pointers = len(seen)
	if sum.Ops > 0 {
		sum.Duration = last.Sub(first)
	}

	monitoring.Logf("replay: %d ops, %d pointers, max %d tracked over %s",
		sum.Ops, sum.Pointers, sum.MaxTracked, sum.Duration)
	return sum, nil
}

// Capture reads the tracker state relevant to op.
func Capture(t *pointer.Tracker, seq int, op Op) Frame {
	f := Frame{
		Seq:             seq,
		Op:              op,
		TrackedCount:    t.Count(),
		AverageAbsolute: t.Average(pointer.Absolute),
		AverageRelative: t.Average(pointer.Relative),
	}
	if id, ok := t.LastMovedPointer(); ok {
		f.LastPointerID = &id
	}
	if idx, ok := t.StableIndex(op.Event.PointerID); ok {
		f.StableIndex = &idx
	}
	if v, ok := t.Velocity(op.Event.PointerID); ok {
		f.Velocity = v
	}
	return f
}
