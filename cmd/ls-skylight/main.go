// Command ls-skylight is a terminal sky view and headless ephemeris tool for
// the Sun and Moon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/litescript/ls-skylight/internal/astro"
	"github.com/litescript/ls-skylight/internal/ephem"
	"github.com/litescript/ls-skylight/internal/ephemeris"
	"github.com/litescript/ls-skylight/internal/logging"
	"github.com/litescript/ls-skylight/internal/metrics"
	"github.com/litescript/ls-skylight/internal/state"
	"github.com/litescript/ls-skylight/internal/ui"
	"github.com/litescript/ls-skylight/internal/validate"
)

// CLI flags for headless mode
var (
	summaryMode   bool
	watchInterval time.Duration
	snapshotPath  string
	validateMode  bool
	workers       int
)

const (
	defaultRefresh = 5 * time.Second
	minRefresh     = 1 * time.Second
	maxRefresh     = 5 * time.Minute
)

// skyConfig is the resolved sky query shared by every mode.
type skyConfig struct {
	observer astro.Observer
	birth    astro.Observer
	start    time.Time // zero follows the wall clock
}

func main() {
	// Parse flags
	refresh := flag.Duration("refresh", defaultRefresh, "TUI recompute interval (e.g., 5s, 1m)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFile := flag.String("log-file", "", "Append logs to this file (TUI logs are discarded otherwise)")
	timeFlag := flag.String("time", "", "UTC instant to evaluate, RFC3339 (default: now)")
	localFlag := flag.String("local", "", "Local wall time YYYY-MM-DDTHH:mm, offset derived from -lon")
	lat := flag.Float64("lat", 0, "Observer latitude in degrees, north positive")
	lon := flag.Float64("lon", 0, "Observer longitude in degrees, east positive")
	name := flag.String("name", "", "Observer label")
	birthLat := flag.Float64("birth-lat", 0, "Latitude used for the terminator (default: -lat)")
	birthLon := flag.Float64("birth-lon", 0, "Longitude used for the terminator (default: -lon)")
	solar := flag.String("solar", "low", "Solar model (low, meeus)")
	lunar := flag.String("lunar", "meeus", "Lunar provider (meeus, fixed, horizons)")
	sidereal := flag.String("sidereal", "mean", "Sidereal time for the terminator (mean, apparent, none)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g., :9090)")
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.DurationVar(&watchInterval, "watch", 0, "Repeat headless output at interval (e.g., 30s)")
	flag.StringVar(&snapshotPath, "snapshot-path", "", "Export JSON snapshot to file (use - for stdout)")
	flag.BoolVar(&validateMode, "validate", false, "Run the built-in validation cases and exit")
	flag.IntVar(&workers, "workers", 0, "Validation worker count (default: NumCPU)")
	flag.Parse()

	// Validate refresh interval
	if *refresh < minRefresh {
		*refresh = minRefresh
	} else if *refresh > maxRefresh {
		*refresh = maxRefresh
	}

	// Set up logging
	logger := logging.New(logging.ParseLevel(*logLevel))
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	setFlags := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	cfg := skyConfig{observer: astro.Observer{LatDeg: *lat, LonDeg: *lon, Name: *name}}
	cfg.birth = cfg.observer
	if setFlags["birth-lat"] {
		cfg.birth.LatDeg = *birthLat
	}
	if setFlags["birth-lon"] {
		cfg.birth.LonDeg = *birthLon
	}

	start, err := resolveTime(*timeFlag, *localFlag, *lon)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	cfg.start = start

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Initialize components
	provider, err := ephem.NewProvider(ephem.ParseMode(*lunar))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	opts := []ephemeris.Option{
		ephemeris.WithSolarModel(ephem.ParseSolarModel(*solar)),
		ephemeris.WithLunarProvider(provider),
		ephemeris.WithSidereal(parseSidereal(*sidereal)),
		ephemeris.WithLogger(logger),
	}

	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		collector, err := metrics.NewCollector(reg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, ephemeris.WithRecorder(collector))
		go serveMetrics(ctx, *metricsAddr, collector.Handler(), logger)
	}

	engine := ephemeris.New(opts...)
	logger.Debug("engine ready: solar=%s lunar=%s", engine.SolarModel(), engine.LunarProvider())

	if validateMode {
		os.Exit(runValidate(ctx, engine, logger))
	}

	stateCfg := state.DefaultConfig()
	stateCfg.RefreshInterval = *refresh
	stateMgr := state.NewManager(stateCfg)

	// Headless mode: no TUI
	headless := summaryMode || snapshotPath != ""
	if headless {
		runHeadless(ctx, engine, stateMgr, cfg, logger)
		return
	}

	// The alt screen owns the terminal; only a log file keeps log output.
	if *logFile == "" {
		logger.SetOutput(io.Discard)
	}

	model := ui.New(engine, stateMgr, ui.Config{
		Observer: cfg.observer,
		Birth:    &cfg.birth,
		Start:    cfg.start,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// Run TUI (blocks until quit)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// resolveTime picks the evaluation instant from -time or -local. Both empty
// yields the zero time, meaning "follow the wall clock".
func resolveTime(rfc3339, local string, refLonDeg float64) (time.Time, error) {
	switch {
	case rfc3339 != "" && local != "":
		return time.Time{}, errors.New("-time and -local are mutually exclusive")
	case local != "":
		return astro.ToUTC(local, refLonDeg)
	case rfc3339 != "":
		t, err := time.Parse(time.RFC3339, rfc3339)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse -time: %w", err)
		}
		return t.UTC(), nil
	default:
		return time.Time{}, nil
	}
}

// parseSidereal maps the -sidereal flag to a source. "none" forces the
// time-of-day terminator estimate.
func parseSidereal(s string) astro.SiderealSource {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "apparent":
		return ephem.MeeusSidereal
	case "none":
		return nil
	default:
		return astro.MeanSidereal
	}
}

func serveMetrics(ctx context.Context, addr string, handler http.Handler, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server: %v", err)
	}
}

func runValidate(ctx context.Context, engine *ephemeris.Engine, logger *logging.Logger) int {
	cases := validate.DefaultCases()
	logger.Debug("validating %d cases", len(cases))

	results, err := validate.Run(ctx, engine, cases, workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	validate.Report(os.Stdout, results, term.IsTerminal(int(os.Stdout.Fd())))
	if failed := validate.Failed(results); failed > 0 {
		logger.Warn("%d of %d validation cases failed", failed, len(results))
		return 1
	}
	return 0
}

// runHeadless handles all headless modes without starting TUI.
func runHeadless(ctx context.Context, engine *ephemeris.Engine, stateMgr *state.Manager, cfg skyConfig, logger *logging.Logger) {
	began := time.Now()
	var lastEvent time.Time

	// A pinned start advances with the wall clock between watch ticks.
	skyTime := func() time.Time {
		if cfg.start.IsZero() {
			return time.Now().UTC()
		}
		return cfg.start.Add(time.Since(began))
	}

	outputOnce := func() error {
		t := skyTime()
		computeStart := time.Now()
		e := engine.Compute(t, cfg.observer.LatDeg, cfg.observer.LonDeg)
		e.Observer.Name = cfg.observer.Name
		termLon := engine.TerminatorLongitude(t, cfg.birth.LatDeg, cfg.birth.LonDeg)
		stateMgr.Update(e, termLon, time.Since(computeStart))
		snap := stateMgr.Snapshot()

		logger.Debug("computed %s in %v", e.Time.Format(time.RFC3339), snap.ComputeDuration)

		// Export JSON if requested
		if snapshotPath != "" {
			export := ephemeris.NewExport(e, termLon)
			if snapshotPath == "-" {
				if err := export.WriteJSON(os.Stdout); err != nil {
					return fmt.Errorf("write JSON to stdout: %w", err)
				}
			} else {
				f, err := os.Create(snapshotPath)
				if err != nil {
					return fmt.Errorf("create snapshot file: %w", err)
				}
				defer f.Close()
				if err := export.WriteJSON(f); err != nil {
					return fmt.Errorf("write JSON to file: %w", err)
				}
			}
		}

		// Print summary table if requested
		if summaryMode {
			ephemeris.WriteSummary(os.Stdout, e, termLon)
			for _, ev := range snap.Events {
				if !ev.Timestamp.After(lastEvent) {
					continue
				}
				fmt.Printf("Event: %-16s %s  %s\n", ev.Type, ev.Timestamp.Format(time.RFC3339), describeEvent(ev))
				lastEvent = ev.Timestamp
			}
		}

		return nil
	}

	// Single run
	if watchInterval == 0 {
		if err := outputOnce(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Watch mode: repeat at interval
	if err := outputOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("watch loop shutting down")
			return
		case <-ticker.C:
			if summaryMode {
				fmt.Println() // Blank line between summaries
			}
			if err := outputOnce(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}

func describeEvent(ev state.Event) string {
	if ev.Provider != "" {
		return "provider " + ev.Provider
	}
	return ev.From + " → " + ev.To
}
