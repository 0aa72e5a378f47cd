package replay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/banshee-data/pointertrack/internal/pointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func op(action Action, id int, x, y float64, ms int) Op {
	return Op{
		Action: action,
		Event: pointer.Event{
			PointerID: id,
			X:         x,
			Y:         y,
			OffsetX:   x / 2,
			OffsetY:   y / 2,
			Time:      time.Unix(0, 0).Add(time.Duration(ms) * time.Millisecond).UTC(),
		},
	}
}

func twoFingerStream() []Op {
	return []Op{
		op(ActionDown, 1, 10, 10, 0),
		op(ActionDown, 2, 20, 20, 5),
		op(ActionMove, 1, 12, 10, 10),
		op(ActionMove, 1, 14, 10, 20),
		op(ActionMove, 1, 16, 10, 30),
		op(ActionUp, 1, 16, 10, 40),
		op(ActionCancel, 2, 20, 20, 45),
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	tr := pointer.NewTracker(pointer.DefaultTrackerConfig())
	sink := &SliceSink{}
	sum, err := Run(context.Background(), tr, twoFingerStream(), sink)
	require.NoError(t, err)

	assert.Equal(t, Summary{Ops: 7, Pointers: 2, MaxTracked: 2, Duration: 45 * time.Millisecond}, sum)
	require.Len(t, sink.Frames, 7)

	for i, f := range sink.Frames {
		assert.Equal(t, i, f.Seq)
	}

	second := sink.Frames[1]
	assert.Equal(t, 2, second.TrackedCount)
	require.NotNil(t, second.StableIndex)
	assert.Equal(t, 1, *second.StableIndex)
	assert.Equal(t, pointer.Point{X: 15, Y: 15}, second.AverageAbsolute)
	assert.Equal(t, pointer.Point{X: 7.5, Y: 7.5}, second.AverageRelative)

	// Pointer 1 moves 2px every 10ms: 200 px/s once the fit has 3 samples.
	moved := sink.Frames[4]
	assert.InDelta(t, 200.0, moved.Velocity.X, 1e-6)
	assert.InDelta(t, 0.0, moved.Velocity.Y, 1e-6)
	require.NotNil(t, moved.LastPointerID)
	assert.Equal(t, 1, *moved.LastPointerID)

	lifted := sink.Frames[5]
	assert.Nil(t, lifted.StableIndex)
	assert.Equal(t, pointer.Point{}, lifted.Velocity)
	assert.Equal(t, 1, lifted.TrackedCount)
	assert.Equal(t, 1, *lifted.LastPointerID)

	// With every pointer gone the average holds the last cached value.
	last := sink.Frames[6]
	assert.Equal(t, 0, last.TrackedCount)
	assert.Equal(t, pointer.Point{X: 18, Y: 15}, last.AverageAbsolute)
}

func TestRunNilSink(t *testing.T) {
	t.Parallel()

	tr := pointer.NewTracker(pointer.DefaultTrackerConfig())
	sum, err := Run(context.Background(), tr, twoFingerStream(), nil)
	require.NoError(t, err)
	assert.Equal(t, 7, sum.Ops)
	assert.Equal(t, 0, tr.Count())
}

func TestRunEmpty(t *testing.T) {
	t.Parallel()

	tr := pointer.NewTracker(pointer.DefaultTrackerConfig())
	sum, err := Run(context.Background(), tr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	tr := pointer.NewTracker(pointer.DefaultTrackerConfig())
	sink := &cancelAfter{n: 2, cancel: cancel}

	sum, err := Run(ctx, tr, twoFingerStream(), sink)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, sum.Ops)
	assert.Equal(t, 2, sink.seen)
}

type cancelAfter struct {
	n      int
	seen   int
	cancel context.CancelFunc
}

func (c *cancelAfter) Record(Frame) error {
	c.seen++
	if c.seen == c.n {
		c.cancel()
	}
	return nil
}

type failingSink struct{}

var errSinkFull = errors.New("sink full")

func (failingSink) Record(Frame) error { return errSinkFull }

func TestRunSinkError(t *testing.T) {
	t.Parallel()

	tr := pointer.NewTracker(pointer.DefaultTrackerConfig())
	_, err := Run(context.Background(), tr, twoFingerStream(), failingSink{})
	require.ErrorIs(t, err, errSinkFull)
	assert.Contains(t, err.Error(), "op 0")
}

func TestOpApplyIgnoresStrayEvents(t *testing.T) {
	t.Parallel()

	tr := pointer.NewTracker(pointer.DefaultTrackerConfig())
	op(ActionMove, 9, 1, 1, 0).Apply(tr)
	op(ActionUp, 9, 1, 1, 0).Apply(tr)
	assert.Equal(t, 0, tr.Count())

	op(ActionDown, 9, 1, 1, 0).Apply(tr)
	op(ActionDown, 9, 5, 5, 1).Apply(tr)
	p, ok := tr.AbsoluteCoords(9)
	require.True(t, ok)
	assert.Equal(t, pointer.Point{X: 1, Y: 1}, p)
}

func TestRunReset(t *testing.T) {
	t.Parallel()

	ops := []Op{
		op(ActionDown, 1, 10, 10, 0),
		op(ActionDown, 2, 20, 20, 5),
		op(ActionReset, 0, 0, 0, 10),
		op(ActionDown, 3, 40, 40, 15),
	}
	tr := pointer.NewTracker(pointer.DefaultTrackerConfig())
	sink := &SliceSink{}
	sum, err := Run(context.Background(), tr, ops, sink)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Pointers, "reset ops do not count as a pointer")
	require.Len(t, sink.Frames, 4)

	reset := sink.Frames[2]
	assert.Equal(t, 0, reset.TrackedCount)
	assert.Nil(t, reset.LastPointerID)
	assert.Nil(t, reset.StableIndex)
	assert.Equal(t, pointer.Point{X: 15, Y: 15}, reset.AverageAbsolute, "cached average survives reset")

	after := sink.Frames[3]
	require.NotNil(t, after.StableIndex)
	assert.Equal(t, 0, *after.StableIndex)
}
