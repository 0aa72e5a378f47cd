// Package pointer tracks the state of concurrently active pointer contacts
// (touches, pens, mice) for gesture recognition.
//
// Responsibilities: per-pointer position and velocity, a stable small index
// for each live pointer, cached average positions that survive the moment
// all pointers lift, and the identity of the most recently moved pointer.
// Key types: Tracker, Event, TrackedPointer.
//
// The Tracker consumes already-normalized events and never returns errors:
// duplicate downs and stray moves or ups are ignored, and queries about an
// unknown pointer report absence through a boolean. Velocity estimation is
// delegated to a VelocityEstimator; NewTracker wires the least-squares
// estimator from the velocity package.
//
// A Tracker is driven by a single event source and is not safe for
// concurrent use.
package pointer
