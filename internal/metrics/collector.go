// Package metrics provides Prometheus metrics for go-game-launcher.
//
// A Collector owns one set of game_launcher_* series registered on the
// registry it was created with, so several collectors can coexist in tests.
// Percentile summaries for the exit report come from t-digests rather than
// the Prometheus histograms.
package metrics

import (
	"sync"
	"time"

	"github.com/influxdata/tdigest"
	"github.com/prometheus/client_golang/prometheus"
)

// digestCompression trades accuracy for memory in the uptime and readiness digests.
const digestCompression = 100

// Exit categories used as the "category" label of game_launcher_exits_total.
const (
	ExitCategorySuccess = "success"
	ExitCategoryError   = "error"
	ExitCategorySignal  = "signal"
)

// ExitCategory classifies an exit code: 0 is success, codes above 128 are
// signal terminations, everything else is an error.
func ExitCategory(exitCode int) string {
	switch {
	case exitCode == 0:
		return ExitCategorySuccess
	case exitCode > 128:
		return ExitCategorySignal
	default:
		return ExitCategoryError
	}
}

// CollectorConfig holds configuration for the collector.
type CollectorConfig struct {
	Version string
	GameDir string
	Marker  string
}

// Collector records game lifecycle metrics and keeps the figures needed for
// the exit summary. All methods are safe for concurrent use.
type Collector struct {
	// --- Overview ---
	info    *prometheus.GaugeVec
	running prometheus.Gauge
	ready   prometheus.Gauge

	// --- Lifecycle ---
	launchesTotal   prometheus.Counter
	relaunchesTotal prometheus.Counter
	outcomesTotal   *prometheus.CounterVec
	exitsTotal      *prometheus.CounterVec

	// --- Timing ---
	timeToReady   prometheus.Histogram
	uptimeSeconds prometheus.Histogram

	// --- Output ---
	outputLinesTotal prometheus.Counter

	mu            sync.Mutex
	startTime     time.Time
	totalLaunches int64
	relaunches    int64
	outputLines   int64
	isReady       bool
	exitCodes     map[int]int64
	outcomes      map[string]int64
	uptimes       *tdigest.TDigest
	readyTimes    *tdigest.TDigest
	lastReady     time.Duration
}

// NewCollector creates a new metrics collector on the default registry.
func NewCollector(cfg CollectorConfig) *Collector {
	return NewCollectorWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector with a custom registry.
// Useful for testing.
func NewCollectorWithRegistry(cfg CollectorConfig, registry prometheus.Registerer) *Collector {
	c := &Collector{
		info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "game_launcher_info",
				Help: "Information about the launcher (value always 1)",
			},
			[]string{"version", "game_dir", "marker"},
		),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "game_launcher_game_running",
			Help: "1 while a game process is alive",
		}),
		ready: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "game_launcher_game_ready",
			Help: "1 once the current game printed its success marker",
		}),
		launchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "game_launcher_launches_total",
			Help: "Game processes started",
		}),
		relaunchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "game_launcher_relaunches_total",
			Help: "Game processes started again after a failed run",
		}),
		outcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "game_launcher_outcomes_total",
				Help: "Finished runs by outcome (completed, start_error, exit_error, cancelled)",
			},
			[]string{"outcome"},
		),
		exitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "game_launcher_exits_total",
				Help: "Game process exits by category (success, error, signal)",
			},
			[]string{"category"},
		),
		timeToReady: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "game_launcher_time_to_ready_seconds",
			Help:    "Time from process start to the success marker",
			Buckets: []float64{1, 2, 5, 10, 15, 30, 60, 120, 300},
		}),
		uptimeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "game_launcher_game_uptime_seconds",
			Help:    "How long each game process ran before exiting",
			Buckets: []float64{1, 10, 60, 300, 900, 3600, 14400, 43200},
		}),
		outputLinesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "game_launcher_output_lines_total",
			Help: "Lines read from the game's combined output",
		}),
		startTime:  time.Now(),
		exitCodes:  make(map[int]int64),
		outcomes:   make(map[string]int64),
		uptimes:    tdigest.NewWithCompression(digestCompression),
		readyTimes: tdigest.NewWithCompression(digestCompression),
	}

	registry.MustRegister(
		c.info,
		c.running,
		c.ready,
		c.launchesTotal,
		c.relaunchesTotal,
		c.outcomesTotal,
		c.exitsTotal,
		c.timeToReady,
		c.uptimeSeconds,
		c.outputLinesTotal,
	)

	c.info.WithLabelValues(cfg.Version, cfg.GameDir, cfg.Marker).Set(1)

	return c
}

// =============================================================================
// Event Recording Methods
// =============================================================================

// GameStarted records a new game process.
func (c *Collector) GameStarted() {
	c.launchesTotal.Inc()
	c.running.Set(1)
	c.ready.Set(0)

	c.mu.Lock()
	c.totalLaunches++
	c.isReady = false
	c.mu.Unlock()
}

// GameRelaunched records that the launcher is about to start the game again.
func (c *Collector) GameRelaunched() {
	c.relaunchesTotal.Inc()

	c.mu.Lock()
	c.relaunches++
	c.mu.Unlock()
}

// GameReady records the success marker, observed after the given time.
func (c *Collector) GameReady(after time.Duration) {
	c.ready.Set(1)
	c.timeToReady.Observe(after.Seconds())

	c.mu.Lock()
	c.isReady = true
	c.lastReady = after
	c.readyTimes.Add(after.Seconds(), 1)
	c.mu.Unlock()
}

// OutputLine counts one line of game output.
func (c *Collector) OutputLine() {
	c.outputLinesTotal.Inc()

	c.mu.Lock()
	c.outputLines++
	c.mu.Unlock()
}

// RecordExit records a process exit event.
func (c *Collector) RecordExit(exitCode int, uptime time.Duration) {
	c.exitsTotal.WithLabelValues(ExitCategory(exitCode)).Inc()
	c.uptimeSeconds.Observe(uptime.Seconds())

	c.mu.Lock()
	c.exitCodes[exitCode]++
	c.uptimes.Add(uptime.Seconds(), 1)
	c.mu.Unlock()
}

// RecordOutcome records how a run ended. kind is an outcome label such as
// "completed" or "cancelled". The game is no longer running or ready.
func (c *Collector) RecordOutcome(kind string) {
	c.outcomesTotal.WithLabelValues(kind).Inc()
	c.running.Set(0)
	c.ready.Set(0)

	c.mu.Lock()
	c.outcomes[kind]++
	c.isReady = false
	c.mu.Unlock()
}

// Ready reports whether the current game has printed its success marker.
func (c *Collector) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isReady
}

// =============================================================================
// Summary Generation
// =============================================================================

// Summary holds the data for generating an exit summary.
type Summary struct {
	Duration        time.Duration
	TotalLaunches   int64
	TotalRelaunches int64
	OutputLines     int64
	ExitCodes       map[int]int64
	Outcomes        map[string]int64
	ReadyCount      int64
	LastReadyAfter  time.Duration
	ReadyP50        time.Duration
	ReadyP95        time.Duration
	UptimeP50       time.Duration
	UptimeP95       time.Duration
	UptimeP99       time.Duration
}

// GenerateSummary creates a summary of the run.
func (c *Collector) GenerateSummary() *Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &Summary{
		Duration:        time.Since(c.startTime),
		TotalLaunches:   c.totalLaunches,
		TotalRelaunches: c.relaunches,
		OutputLines:     c.outputLines,
		ExitCodes:       make(map[int]int64, len(c.exitCodes)),
		Outcomes:        make(map[string]int64, len(c.outcomes)),
		ReadyCount:      int64(c.readyTimes.Count()),
		LastReadyAfter:  c.lastReady,
	}

	for code, count := range c.exitCodes {
		s.ExitCodes[code] = count
	}
	for kind, count := range c.outcomes {
		s.Outcomes[kind] = count
	}

	if c.readyTimes.Count() > 0 {
		s.ReadyP50 = quantile(c.readyTimes, 0.50)
		s.ReadyP95 = quantile(c.readyTimes, 0.95)
	}
	if c.uptimes.Count() > 0 {
		s.UptimeP50 = quantile(c.uptimes, 0.50)
		s.UptimeP95 = quantile(c.uptimes, 0.95)
		s.UptimeP99 = quantile(c.uptimes, 0.99)
	}

	return s
}

// TotalLaunches returns the total number of game starts.
func (c *Collector) TotalLaunches() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalLaunches
}

// TotalRelaunches returns the total number of relaunches.
func (c *Collector) TotalRelaunches() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.relaunches
}

// quantile reads q from a digest of seconds.
func quantile(td *tdigest.TDigest, q float64) time.Duration {
	return time.Duration(td.Quantile(q) * float64(time.Second))
}
