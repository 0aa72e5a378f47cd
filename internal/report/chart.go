package report

import (
	"fmt"
	"io"
	"math"

	"github.com/banshee-data/pointertrack/internal/replay"
	"github.com/banshee-data/pointertrack/internal/units"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// AssetsHost is where rendered pages load the echarts scripts from.
var AssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// RenderVelocityChart writes an HTML page charting, per replayed op, the
// speed of the op's pointer in velocityUnits, the average absolute position
// and the number of tracked pointers.
func RenderVelocityChart(w io.Writer, frames []replay.Frame, velocityUnits string) error {
	if len(frames) == 0 {
		return ErrNoData
	}
	if !units.IsValid(velocityUnits) {
		return fmt.Errorf("invalid velocity units %q, must be one of: %s", velocityUnits, units.GetValidUnitsString())
	}

	t0 := frames[0].Op.Event.Time
	xs := make([]string, len(frames))
	speed := make([]opts.LineData, len(frames))
	avgX := make([]opts.LineData, len(frames))
	avgY := make([]opts.LineData, len(frames))
	tracked := make([]opts.BarData, len(frames))

	for i, f := range frames {
		ms := float64(f.Op.Event.Time.Sub(t0).Microseconds()) / 1000
		xs[i] = fmt.Sprintf("%.1f", ms)
		v := math.Hypot(f.Velocity.X, f.Velocity.Y)
		speed[i] = opts.LineData{Value: units.ConvertVelocity(v, velocityUnits)}
		avgX[i] = opts.LineData{Value: f.AverageAbsolute.X}
		avgY[i] = opts.LineData{Value: f.AverageAbsolute.Y}
		tracked[i] = opts.BarData{Value: f.TrackedCount}
	}

	speedChart := charts.NewLine()
	speedChart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Pointer Replay", Width: "1200px", Height: "420px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Pointer Speed", Subtitle: fmt.Sprintf("ops=%d units=%s", len(frames), velocityUnits)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (ms)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: velocityUnits}),
	)
	speedChart.SetXAxis(xs).
		AddSeries("speed", speed, charts.WithLineChartOpts(opts.LineChart{Step: "end"}))

	avgChart := charts.NewLine()
	avgChart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "420px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Average Absolute Position"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (ms)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "px"}),
	)
	avgChart.SetXAxis(xs).
		AddSeries("avg x", avgX).
		AddSeries("avg y", avgY)

	countChart := charts.NewBar()
	countChart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "300px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Tracked Pointers"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	countChart.SetXAxis(xs).AddSeries("tracked", tracked)

	page := components.NewPage()
	page.SetAssetsHost(AssetsHost)
	page.PageTitle = "Pointer Replay"
	page.AddCharts(speedChart, avgChart, countChart)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render velocity chart: %w", err)
	}
	return nil
}
