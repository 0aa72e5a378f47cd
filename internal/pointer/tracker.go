package pointer

import (
	"math"
	"slices"

	"github.com/banshee-data/pointertrack/internal/velocity"
)

// Tracker maintains the state of every active pointer.
type Tracker struct {
	config    TrackerConfig
	estimator VelocityEstimator

	pointers map[int]*TrackedPointer
	// order holds tracked IDs in insertion order so iteration, and with it
	// floating point summation, is deterministic.
	order []int

	indices indexTable

	lastMoved    int
	hasLastMoved bool

	// Last well-defined averages, reported while no pointer is tracked.
	cachedAbsolute Point
	cachedRelative Point
}

// NewTracker creates a tracker that estimates velocity with the least-squares
// estimator configured by config.Velocity.
func NewTracker(config TrackerConfig) *Tracker {
	return NewTrackerWithEstimator(config, velocity.NewEstimator(config.Velocity))
}

// NewTrackerWithEstimator creates a tracker that delegates velocity
// estimation to est. A nil est falls back to the default estimator.
func NewTrackerWithEstimator(config TrackerConfig, est VelocityEstimator) *Tracker {
	if est == nil {
		est = velocity.NewEstimator(config.Velocity)
	}
	return &Tracker{
		config:    config,
		estimator: est,
		pointers:  make(map[int]*TrackedPointer),
	}
}

// Add starts tracking the pointer in e. It is a no-op if the pointer is
// already tracked.
func (t *Tracker) Add(e Event) {
	if _, ok := t.pointers[e.PointerID]; ok {
		return
	}

	t.lastMoved = e.PointerID
	t.hasLastMoved = true

	t.pointers[e.PointerID] = &TrackedPointer{
		Absolute:  e.Absolute(),
		Relative:  e.Relative(),
		Timestamp: e.Time,
	}
	t.order = append(t.order, e.PointerID)

	if slot, ok := t.indices.assign(e.PointerID); ok {
		Tracef("add pointer=%d index=%d tracked=%d", e.PointerID, slot, len(t.pointers))
	} else {
		Diagf("no free stable index for pointer=%d (%d slots, %d tracked)", e.PointerID, MaxPointers, len(t.pointers))
		Tracef("add pointer=%d index=none tracked=%d", e.PointerID, len(t.pointers))
	}

	t.updateAverages()
}

// Move updates the position and velocity of a tracked pointer. Events for
// pointers that are not tracked are ignored.
func (t *Tracker) Move(e Event) {
	p, ok := t.pointers[e.PointerID]
	if !ok {
		return
	}

	t.lastMoved = e.PointerID
	t.hasLastMoved = true

	t.estimator.Add(velocity.Sample{X: e.X, Y: e.Y, Time: e.Time})
	vx, vy := t.estimator.Velocity()

	p.Velocity = Point{X: vx, Y: vy}
	p.Absolute = e.Absolute()
	p.Relative = e.Relative()
	p.Timestamp = e.Time

	t.updateAverages()
}

// Remove stops tracking pointerID and frees its stable index. Removing an
// unknown pointer is a no-op. The last moved pointer is left unchanged, so
// LastAbsoluteCoords reports absence after its pointer is removed.
func (t *Tracker) Remove(pointerID int) {
	if _, ok := t.pointers[pointerID]; ok {
		delete(t.pointers, pointerID)
		if i := slices.Index(t.order, pointerID); i >= 0 {
			t.order = slices.Delete(t.order, i, i+1)
		}
		Tracef("remove pointer=%d tracked=%d", pointerID, len(t.pointers))
	}
	t.indices.release(pointerID)
}

// Reset forgets all pointers, the velocity history, the last moved pointer
// and every stable index. Cached averages survive unless
// TrackerConfig.ResetClearsAverages is set.
func (t *Tracker) Reset() {
	if n := len(t.pointers); n > 0 {
		Opsf("reset dropped %d tracked pointers %v", n, t.order)
	}
	t.estimator.Reset()
	t.pointers = make(map[int]*TrackedPointer)
	t.order = nil
	t.hasLastMoved = false
	t.lastMoved = 0
	t.indices.clear()
	if t.config.ResetClearsAverages {
		t.cachedAbsolute = Point{}
		t.cachedRelative = Point{}
	}
	Tracef("reset")
}

// Count returns the number of tracked pointers.
func (t *Tracker) Count() int {
	return len(t.pointers)
}

// IDs returns the tracked pointer IDs in the order they were added.
func (t *Tracker) IDs() []int {
	return slices.Clone(t.order)
}

// Pointer returns a copy of the state held for pointerID.
func (t *Tracker) Pointer(pointerID int) (TrackedPointer, bool) {
	p, ok := t.pointers[pointerID]
	if !ok {
		return TrackedPointer{}, false
	}
	return *p, true
}

// StableIndex returns the stable index assigned to pointerID. It reports
// false for untracked pointers and for pointers added while every slot was
// taken.
func (t *Tracker) StableIndex(pointerID int) (int, bool) {
	return t.indices.lookup(pointerID)
}

// Velocity returns the last velocity estimate for pointerID in px/s.
func (t *Tracker) Velocity(pointerID int) (Point, bool) {
	p, ok := t.pointers[pointerID]
	if !ok {
		return Point{}, false
	}
	return p.Velocity, true
}

// LastMovedPointer returns the pointer most recently added or moved.
func (t *Tracker) LastMovedPointer() (int, bool) {
	return t.lastMoved, t.hasLastMoved
}

// Coords returns the last reported position of pointerID.
func (t *Tracker) Coords(pointerID int, kind CoordsKind) (Point, bool) {
	p, ok := t.pointers[pointerID]
	if !ok {
		return Point{}, false
	}
	return p.coords(kind), true
}

// AbsoluteCoords returns the last absolute position of pointerID.
func (t *Tracker) AbsoluteCoords(pointerID int) (Point, bool) {
	return t.Coords(pointerID, Absolute)
}

// RelativeCoords returns the last target-relative position of pointerID.
func (t *Tracker) RelativeCoords(pointerID int) (Point, bool) {
	return t.Coords(pointerID, Relative)
}

// LastCoords returns the position of the last moved pointer. It reports false
// if no pointer has been added or moved since construction or Reset, or if
// that pointer has since been removed.
func (t *Tracker) LastCoords(kind CoordsKind) (Point, bool) {
	if !t.hasLastMoved {
		return Point{}, false
	}
	return t.Coords(t.lastMoved, kind)
}

// LastAbsoluteCoords returns the absolute position of the last moved pointer.
func (t *Tracker) LastAbsoluteCoords() (Point, bool) {
	return t.LastCoords(Absolute)
}

// LastRelativeCoords returns the relative position of the last moved pointer.
func (t *Tracker) LastRelativeCoords() (Point, bool) {
	return t.LastCoords(Relative)
}

// Sum returns the coordinate-wise sum of positions over tracked pointers,
// skipping any IDs in ignored.
func (t *Tracker) Sum(kind CoordsKind, ignored ...int) Point {
	var sum Point
	for _, id := range t.order {
		if slices.Contains(ignored, id) {
			continue
		}
		c := t.pointers[id].coords(kind)
		sum.X += c.X
		sum.Y += c.Y
	}
	return sum
}

// Average returns the mean position over all tracked pointers. With no
// pointers tracked the mean is undefined and the last well-defined average of
// the same kind is returned instead ({0,0} if there never was one).
func (t *Tracker) Average(kind CoordsKind) Point {
	return t.mean(kind, t.Sum(kind), len(t.pointers))
}

// AverageExcluding returns the mean position over tracked pointers other than
// pointerID, falling back to the cached average like Average when no other
// pointer is tracked.
func (t *Tracker) AverageExcluding(kind CoordsKind, pointerID int) Point {
	n := len(t.pointers)
	if _, ok := t.pointers[pointerID]; ok {
		n--
	}
	return t.mean(kind, t.Sum(kind, pointerID), n)
}

// mean divides sum by n, substituting the cached average on any axis whose
// result is not a number.
func (t *Tracker) mean(kind CoordsKind, sum Point, n int) Point {
	cached := t.cachedAverage(kind)
	if n <= 0 {
		return cached
	}
	avg := Point{X: sum.X / float64(n), Y: sum.Y / float64(n)}
	if math.IsNaN(avg.X) {
		avg.X = cached.X
	}
	if math.IsNaN(avg.Y) {
		avg.Y = cached.Y
	}
	return avg
}

func (t *Tracker) cachedAverage(kind CoordsKind) Point {
	if kind == Relative {
		return t.cachedRelative
	}
	return t.cachedAbsolute
}

// updateAverages refreshes both caches from the same tracker state.
func (t *Tracker) updateAverages() {
	t.cachedAbsolute = t.Average(Absolute)
	t.cachedRelative = t.Average(Relative)
}
