package velocity

import (
	"time"

	"github.com/banshee-data/pointertrack/internal/config"
	"gonum.org/v1/gonum/mat"
)

// Sample is a single timestamped position fed to the estimator.
type Sample struct {
	X    float64
	Y    float64
	Time time.Time
}

// Config holds configuration for velocity estimation.
type Config struct {
	// HistorySize is the number of most recent samples retained.
	HistorySize int

	// Horizon is the maximum age, relative to the newest sample, of samples
	// included in the fit.
	Horizon time.Duration

	// StoppedAfter is the gap between consecutive samples beyond which the
	// pointer is assumed to have stopped; older samples are excluded.
	StoppedAfter time.Duration

	// MinSamples is the minimum number of usable samples for an estimate.
	MinSamples int

	// FitDegree is the degree of the polynomial fitted to each axis.
	FitDegree int
}

// DefaultConfig returns the estimator defaults.
func DefaultConfig() Config {
	return Config{
		HistorySize:  config.DefaultVelocityHistorySize,
		Horizon:      config.DefaultVelocityHorizon,
		StoppedAfter: config.DefaultVelocityStoppedAfter,
		MinSamples:   config.DefaultVelocityMinSamples,
		FitDegree:    config.DefaultVelocityFitDegree,
	}
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		HistorySize:  cfg.GetVelocityHistorySize(),
		Horizon:      cfg.GetVelocityHorizon(),
		StoppedAfter: cfg.GetVelocityStoppedAfter(),
		MinSamples:   cfg.GetVelocityMinSamples(),
		FitDegree:    cfg.GetVelocityFitDegree(),
	}
}

// withDefaults replaces zero or unusable fields with the defaults.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.HistorySize <= 0 {
		c.HistorySize = d.HistorySize
	}
	if c.Horizon <= 0 {
		c.Horizon = d.Horizon
	}
	if c.StoppedAfter <= 0 {
		c.StoppedAfter = d.StoppedAfter
	}
	if c.FitDegree <= 0 {
		c.FitDegree = d.FitDegree
	}
	if c.MinSamples <= c.FitDegree {
		c.MinSamples = c.FitDegree + 1
	}
	return c
}

// Estimator produces a smoothed 2D velocity from recent samples.
// It is not safe for concurrent use.
type Estimator struct {
	cfg     Config
	samples *sampleRing
}

// NewEstimator creates an estimator with the given configuration. Zero-valued
// fields take their defaults.
func NewEstimator(cfg Config) *Estimator {
	cfg = cfg.withDefaults()
	return &Estimator{
		cfg:     cfg,
		samples: newSampleRing(cfg.HistorySize),
	}
}

// Config returns the effective configuration.
func (e *Estimator) Config() Config {
	return e.cfg
}

// Add records a sample.
func (e *Estimator) Add(s Sample) {
	e.samples.Push(s)
}

// sampleCount returns the number of samples currently retained.
func (e *Estimator) sampleCount() int {
	return e.samples.Len()
}

// Reset drops all retained samples.
func (e *Estimator) Reset() {
	e.samples.Clear()
}

// Velocity returns the current velocity estimate in px/s, or (0, 0) when
// there are too few usable samples or the fit is degenerate.
func (e *Estimator) Velocity() (float64, float64) {
	vx, vy, ok := e.estimate()
	if !ok {
		return 0, 0
	}
	return vx, vy
}

func (e *Estimator) estimate() (float64, float64, bool) {
	n := e.samples.Len()
	if n == 0 {
		return 0, 0, false
	}

	newest := e.samples.At(n - 1)
	previous := newest

	ts := make([]float64, 0, n)
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)

	// Walk from newest to oldest until the horizon or a stop gap is reached.
	for i := n - 1; i >= 0; i-- {
		s := e.samples.At(i)
		age := newest.Time.Sub(s.Time)
		gap := previous.Time.Sub(s.Time)
		if gap < 0 {
			gap = -gap
		}
		previous = s
		if age > e.cfg.Horizon || gap > e.cfg.StoppedAfter {
			break
		}
		ts = append(ts, -milliseconds(age))
		xs = append(xs, s.X)
		ys = append(ys, s.Y)
	}

	if len(ts) < e.cfg.MinSamples {
		return 0, 0, false
	}

	vx, ok := fitSlope(ts, xs, e.cfg.FitDegree)
	if !ok {
		return 0, 0, false
	}
	vy, ok := fitSlope(ts, ys, e.cfg.FitDegree)
	if !ok {
		return 0, 0, false
	}

	// Fit is in px/ms; report px/s.
	return vx * 1000, vy * 1000, true
}

// fitSlope fits values(t) with a polynomial of the given degree by least
// squares and returns its linear coefficient, i.e. the derivative at t = 0.
func fitSlope(ts, values []float64, degree int) (float64, bool) {
	rows := len(ts)
	cols := degree + 1
	if rows < cols {
		return 0, false
	}

	a := mat.NewDense(rows, cols, nil)
	for i, t := range ts {
		p := 1.0
		for j := 0; j < cols; j++ {
			a.Set(i, j, p)
			p *= t
		}
	}
	b := mat.NewVecDense(rows, append([]float64(nil), values...))

	var coef mat.VecDense
	if err := coef.SolveVec(a, b); err != nil {
		return 0, false
	}
	return coef.AtVec(1), true
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
