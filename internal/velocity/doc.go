// Package velocity estimates the instantaneous velocity of pointer input from
// a short history of position samples.
//
// The Estimator keeps the most recent samples in a ring buffer and fits a
// low-order polynomial in time to each axis by least squares. The linear
// coefficient of that fit is the velocity at the newest sample. Samples older
// than the configured horizon, or separated by a gap long enough to assume the
// pointer had stopped, are excluded from the fit.
//
// Velocities are reported in pixels per second.
package velocity
