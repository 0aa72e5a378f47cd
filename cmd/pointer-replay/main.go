// Command pointer-replay feeds a recorded pointer event stream through the
// tracker, prints a summary and optionally records the session to SQLite and
// renders path and velocity charts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/pointertrack/internal/config"
	"github.com/banshee-data/pointertrack/internal/db"
	"github.com/banshee-data/pointertrack/internal/monitoring"
	"github.com/banshee-data/pointertrack/internal/pointer"
	"github.com/banshee-data/pointertrack/internal/replay"
	"github.com/banshee-data/pointertrack/internal/report"
	"github.com/banshee-data/pointertrack/internal/timeutil"
	"github.com/banshee-data/pointertrack/internal/units"
	"github.com/banshee-data/pointertrack/internal/velocity"
	"github.com/banshee-data/pointertrack/internal/version"
)

// Config holds command line options.
type Config struct {
	Input        string
	Format       string
	TuningFile   string
	DBPath       string
	Label        string
	Session      string
	ListSessions bool
	PlotFile     string
	ChartFile    string
	Units        string
	Verbose      bool
	ShowVersion  bool
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("Invalid arguments: %v", err)
	}

	if cfg.ShowVersion {
		fmt.Println(version.String("pointer-replay"))
		return
	}

	monitoring.SetLogger(monitoring.WriterLogger(os.Stderr, "[pointer-replay] "))
	logs := pointer.LogWriters{Ops: os.Stderr, Diag: os.Stderr}
	if cfg.Verbose {
		logs.Trace = os.Stderr
	}
	pointer.SetLogWriters(logs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout, timeutil.RealClock{}); err != nil {
		log.Fatalf("pointer-replay: %v", err)
	}
}

func parseFlags(args []string) (Config, error) {
	cfg := Config{}
	fs := flag.NewFlagSet("pointer-replay", flag.ContinueOnError)

	fs.StringVar(&cfg.Input, "input", "", "Event stream to replay (.jsonl or .csv)")
	fs.StringVar(&cfg.Format, "format", "", "Input format: jsonl or csv (default: from file extension)")
	fs.StringVar(&cfg.TuningFile, "config", "", "Tuning config file (.json, .yaml or .yml)")
	fs.StringVar(&cfg.DBPath, "db", "", "SQLite database to record the session into")
	fs.StringVar(&cfg.Label, "label", "", "Session label (default: input file name)")
	fs.StringVar(&cfg.Session, "session", "", "Render a recorded session from -db instead of replaying -input")
	fs.BoolVar(&cfg.ListSessions, "list", false, "List sessions recorded in -db and exit")
	fs.StringVar(&cfg.PlotFile, "plot", "", "Write a PNG of pointer paths to this file")
	fs.StringVar(&cfg.ChartFile, "chart", "", "Write an HTML velocity chart to this file")
	fs.StringVar(&cfg.Units, "units", "", "Velocity units for reports: "+units.GetValidUnitsString()+" (default: from config)")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Enable per-event trace logging")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if cfg.ShowVersion {
		return cfg, nil
	}

	if cfg.Units != "" && !units.IsValid(cfg.Units) {
		return cfg, fmt.Errorf("invalid -units %q, must be one of: %s", cfg.Units, units.GetValidUnitsString())
	}
	if (cfg.Session != "" || cfg.ListSessions) && cfg.DBPath == "" {
		return cfg, errors.New("-session and -list require -db")
	}
	if cfg.Session != "" && cfg.Input != "" {
		return cfg, errors.New("-session and -input are mutually exclusive")
	}
	if cfg.Input == "" && cfg.Session == "" && !cfg.ListSessions {
		return cfg, errors.New("-input is required")
	}
	return cfg, nil
}

func run(ctx context.Context, cfg Config, out io.Writer, clock timeutil.Clock) error {
	tuning := config.MustLoadDefaultConfig()
	if cfg.TuningFile != "" {
		var err error
		if tuning, err = config.LoadTuningConfig(cfg.TuningFile); err != nil {
			return err
		}
	}
	velocityUnits := cfg.Units
	if velocityUnits == "" {
		velocityUnits = tuning.GetReportVelocityUnits()
	}

	var store *db.DB
	if cfg.DBPath != "" {
		var err error
		if store, err = db.NewDB(cfg.DBPath); err != nil {
			return err
		}
		defer store.Close()
	}

	if cfg.ListSessions {
		return listSessions(store, out)
	}

	var frames []replay.Frame
	if cfg.Session != "" {
		var err error
		if frames, err = replay.LoadFrames(store, cfg.Session); err != nil {
			return err
		}
		fmt.Fprintf(out, "session %s: %d frames\n", cfg.Session, len(frames))
	} else {
		var err error
		if frames, err = replayInput(ctx, cfg, tuning, store, out, clock, velocityUnits); err != nil {
			return err
		}
	}

	if cfg.PlotFile != "" {
		if err := report.SavePathPlot(frames, cfg.PlotFile); err != nil {
			return err
		}
		monitoring.Logf("path plot written to %s", cfg.PlotFile)
	}
	if cfg.ChartFile != "" {
		if err := writeChart(cfg.ChartFile, frames, velocityUnits); err != nil {
			return err
		}
		monitoring.Logf("velocity chart written to %s", cfg.ChartFile)
	}
	return nil
}

func replayInput(ctx context.Context, cfg Config, tuning *config.TuningConfig, store *db.DB, out io.Writer, clock timeutil.Clock, velocityUnits string) ([]replay.Frame, error) {
	format := replay.Format(cfg.Format)
	if format == "" {
		var err error
		if format, err = replay.FormatFromPath(cfg.Input); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	ops, err := replay.Decode(f, format)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", cfg.Input, err)
	}

	mem := &replay.SliceSink{}
	sinks := replay.MultiSink{mem}
	var dbSink *replay.DBSink
	if store != nil {
		label := cfg.Label
		if label == "" {
			label = cfg.Input
		}
		if dbSink, err = replay.NewDBSink(store, label, clock); err != nil {
			return nil, err
		}
		sinks = append(sinks, dbSink)
	}

	trackerCfg := pointer.TrackerConfigFromTuning(tuning)
	est := velocity.NewEstimator(trackerCfg.Velocity)
	if cfg.Verbose {
		vc := est.Config()
		monitoring.Logf("velocity estimator: history=%d horizon=%s stopped_after=%s min_samples=%d degree=%d",
			vc.HistorySize, vc.Horizon, vc.StoppedAfter, vc.MinSamples, vc.FitDegree)
	}
	tracker := pointer.NewTrackerWithEstimator(trackerCfg, est)
	sum, err := replay.Run(ctx, tracker, ops, sinks)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(out, "ops:         %d\n", sum.Ops)
	fmt.Fprintf(out, "pointers:    %d\n", sum.Pointers)
	fmt.Fprintf(out, "max tracked: %d\n", sum.MaxTracked)
	fmt.Fprintf(out, "duration:    %s\n", sum.Duration)
	if n := len(mem.Frames); n > 0 {
		last := mem.Frames[n-1]
		fmt.Fprintf(out, "average:     (%.2f, %.2f)\n", last.AverageAbsolute.X, last.AverageAbsolute.Y)
		var peak float64
		for _, fr := range mem.Frames {
			peak = max(peak, units.ConvertVelocity(math.Hypot(fr.Velocity.X, fr.Velocity.Y), velocityUnits))
		}
		fmt.Fprintf(out, "peak speed:  %.2f %s\n", peak, velocityUnits)
	}
	if dbSink != nil {
		fmt.Fprintf(out, "session:     %s\n", dbSink.Session().ID)
	}
	return mem.Frames, nil
}

func listSessions(store *db.DB, out io.Writer) error {
	sessions, err := store.Sessions()
	if err != nil {
		return err
	}
	for _, s := range sessions {
		fmt.Fprintf(out, "%s\t%s\t%s\n", s.ID, s.StartedAt.Format(time.RFC3339), s.Label)
	}
	return nil
}

func writeChart(path string, frames []replay.Frame, velocityUnits string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	if err := report.RenderVelocityChart(f, frames, velocityUnits); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
