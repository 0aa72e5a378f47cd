package pointer

import (
	"time"

	"github.com/banshee-data/pointertrack/internal/velocity"
)

// MaxPointers is the number of stable index slots.
const MaxPointers = 20

// Point is a 2D coordinate or vector.
type Point struct {
	X float64
	Y float64
}

// CoordsKind selects which coordinate space a query refers to.
type CoordsKind uint8

const (
	// Absolute is the outer, global coordinate space of the receiving surface.
	Absolute CoordsKind = iota
	// Relative is the space of the event target element.
	Relative
)

// String returns a string representation of the kind.
func (k CoordsKind) String() string {
	switch k {
	case Absolute:
		return "absolute"
	case Relative:
		return "relative"
	default:
		return "unknown"
	}
}

// Event is a normalized pointer event.
type Event struct {
	// PointerID is stable for one physical contact while it is down.
	PointerID int

	// X and Y are absolute coordinates.
	X float64
	Y float64

	// OffsetX and OffsetY are coordinates relative to the event target.
	OffsetX float64
	OffsetY float64

	// Time is when the event occurred.
	Time time.Time
}

// Absolute returns the event's absolute coordinates.
func (e Event) Absolute() Point { return Point{X: e.X, Y: e.Y} }

// Relative returns the event's target-relative coordinates.
func (e Event) Relative() Point { return Point{X: e.OffsetX, Y: e.OffsetY} }

// TrackedPointer is the state held for one active pointer.
type TrackedPointer struct {
	Absolute  Point
	Relative  Point
	Timestamp time.Time
	Velocity  Point
}

// coords returns the position of the requested kind.
func (p *TrackedPointer) coords(kind CoordsKind) Point {
	if kind == Relative {
		return p.Relative
	}
	return p.Absolute
}

// VelocityEstimator turns a stream of samples into a smoothed velocity.
// *velocity.Estimator satisfies it.
type VelocityEstimator interface {
	Add(s velocity.Sample)
	Velocity() (float64, float64)
	Reset()
}
