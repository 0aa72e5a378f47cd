// Package report renders replayed tracker frames as static PNG plots and
// interactive HTML charts.
package report

import (
	"errors"
	"fmt"
	"image/color"
	"sort"

	"github.com/banshee-data/pointertrack/internal/replay"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no frames to plot")

// stroke is the path of one pointer between its down and its up.
type stroke struct {
	pointerID int
	n         int // nth stroke of this pointer, from 1
	pts       plotter.XYs
}

// strokes splits the positional ops in frames into per-pointer strokes, in
// order of first appearance.
func strokes(frames []replay.Frame) []*stroke {
	var out []*stroke
	open := make(map[int]*stroke)
	count := make(map[int]int)

	for _, f := range frames {
		e := f.Op.Event
		switch f.Op.Action {
		case replay.ActionDown:
			if _, ok := open[e.PointerID]; ok {
				continue
			}
			count[e.PointerID]++
			s := &stroke{pointerID: e.PointerID, n: count[e.PointerID]}
			s.pts = append(s.pts, plotter.XY{X: e.X, Y: e.Y})
			open[e.PointerID] = s
			out = append(out, s)
		case replay.ActionMove:
			if s, ok := open[e.PointerID]; ok {
				s.pts = append(s.pts, plotter.XY{X: e.X, Y: e.Y})
			}
		case replay.ActionUp, replay.ActionCancel:
			delete(open, e.PointerID)
		case replay.ActionReset:
			clear(open)
		}
	}
	return out
}

// SavePathPlot writes a PNG of every pointer's absolute path. The Y axis is
// inverted to match screen coordinates.
func SavePathPlot(frames []replay.Frame, path string) error {
	paths := strokes(frames)
	if len(paths) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Pointer Paths (%d strokes)", len(paths))
	p.X.Label.Text = "X (px)"
	p.Y.Label.Text = "Y (px)"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Add(plotter.NewGrid())

	// Legend entries are sorted by pointer so repeated runs are stable.
	sort.SliceStable(paths, func(i, j int) bool { return paths[i].pointerID < paths[j].pointerID })
	colors := generateColors(len(paths))

	for i, s := range paths {
		line, err := plotter.NewLine(s.pts)
		if err != nil {
			return err
		}
		line.Color = colors[i]
		line.Width = vg.Points(1.5)

		start, err := plotter.NewScatter(s.pts[:1])
		if err != nil {
			return err
		}
		start.Color = colors[i]
		start.Shape = draw.CircleGlyph{}
		start.Radius = vg.Points(3)

		p.Add(line, start)
		label := fmt.Sprintf("pointer %d", s.pointerID)
		if s.n > 1 {
			label = fmt.Sprintf("pointer %d #%d", s.pointerID, s.n)
		}
		p.Legend.Add(label, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(10*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save path plot: %w", err)
	}
	return nil
}

// generateColors creates a palette of distinct colors for stroke lines
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}
	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q
	return uint8(hueToRGB(p, q, h+1.0/3.0) * 255),
		uint8(hueToRGB(p, q, h) * 255),
		uint8(hueToRGB(p, q, h-1.0/3.0) * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
