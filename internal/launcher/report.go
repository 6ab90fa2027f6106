package launcher

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/randomizedcoder/go-game-launcher/internal/metrics"
	"github.com/randomizedcoder/go-game-launcher/internal/process"
	"github.com/randomizedcoder/go-game-launcher/internal/supervisor"
)

// crashTailLines is how much game output the summary shows after a failure.
const crashTailLines = 15

// bannerInfo is what the startup banner shows.
type bannerInfo struct {
	Version     string
	Spec        process.LaunchSpec
	Marker      string
	MetricsAddr string
	Relaunch    int
	GameLog     string
}

// printBanner prints the startup banner.
func printBanner(w io.Writer, info bannerInfo) {
	dataDir := info.Spec.DataDir
	if dataDir == "" {
		dataDir = "(game default)"
	}
	metricsAddr := "disabled"
	if info.MetricsAddr != "" {
		metricsAddr = "http://" + info.MetricsAddr + "/metrics"
	}
	relaunch := "off"
	if info.Relaunch > 0 {
		relaunch = fmt.Sprintf("up to %d times", info.Relaunch)
	}

	rows := []string{
		titleStyle.Render("go-game-launcher " + info.Version),
		mutedStyle.Render("Terasology process supervisor"),
		"",
		renderKeyValue("Game", info.Spec.WorkDir),
		renderKeyValue("Data", dataDir),
		renderKeyValue("Java", info.Spec.Runtime),
		renderKeyValue("Heap", heapRange(info.Spec)),
		renderKeyValue("Ready marker", info.Marker),
		renderKeyValue("Game log", info.GameLog),
		renderKeyValue("Metrics", metricsAddr),
		renderKeyValue("Relaunch", relaunch),
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	fmt.Fprintln(w, mutedStyle.Render("Press Ctrl+C to stop."))
	fmt.Fprintln(w)
}

func heapRange(spec process.LaunchSpec) string {
	lo, hi := "default", "default"
	if spec.HeapMin.IsUsed() {
		lo = spec.HeapMin.Param()
	}
	if spec.HeapMax.IsUsed() {
		hi = spec.HeapMax.Param()
	}
	return lo + " .. " + hi
}

// summaryInfo is what the exit summary shows.
type summaryInfo struct {
	Outcome     supervisor.Outcome
	Metrics     *metrics.Summary
	RecentLines []string
	ErrorCounts map[string]int
	MetricsAddr string
}

// printSummary prints the exit summary.
func printSummary(w io.Writer, info summaryInfo) {
	s := info.Metrics
	kind := info.Outcome.Kind()

	rows := []string{
		titleStyle.Render("go-game-launcher Exit Summary"),
		"",
		renderKeyValue("Result", outcomeStyle(kind).Render(kind)),
		renderKeyValue("Run duration", formatDuration(s.Duration)),
		renderKeyValue("Game ready", readiness(info.Outcome, s)),
		renderKeyValue("Launches", fmt.Sprintf("%d (%d relaunches)", s.TotalLaunches, s.TotalRelaunches)),
		renderKeyValue("Output lines", fmt.Sprintf("%d", s.OutputLines)),
	}
	if info.Outcome.Err != nil {
		rows = append(rows, renderKeyValue("Error", info.Outcome.Err.Error()))
	}

	if s.UptimeP50 > 0 || s.UptimeP95 > 0 {
		rows = append(rows, "", subtitleStyle.Render("Uptime Distribution"),
			renderKeyValue("  P50 (median)", formatDuration(s.UptimeP50)),
			renderKeyValue("  P95", formatDuration(s.UptimeP95)),
			renderKeyValue("  P99", formatDuration(s.UptimeP99)),
		)
	}

	if len(s.ExitCodes) > 0 {
		rows = append(rows, "", subtitleStyle.Render("Exit Codes"))
		codes := make([]int, 0, len(s.ExitCodes))
		for code := range s.ExitCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			rows = append(rows, fmt.Sprintf("  %3d %-16s %d", code, process.ExitCodeLabel(code), s.ExitCodes[code]))
		}
	}

	if len(info.ErrorCounts) > 0 {
		rows = append(rows, "", subtitleStyle.Render("Errors in recent output"))
		patterns := make([]string, 0, len(info.ErrorCounts))
		for p := range info.ErrorCounts {
			patterns = append(patterns, p)
		}
		sort.Strings(patterns)
		for _, p := range patterns {
			rows = append(rows, fmt.Sprintf("  %-20s %d", p, info.ErrorCounts[p]))
		}
	}

	if info.MetricsAddr != "" {
		rows = append(rows, "", mutedStyle.Render("Metrics endpoint was: http://"+info.MetricsAddr+"/metrics"))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))

	if !info.Outcome.Success() && !info.Outcome.Cancelled() && len(info.RecentLines) > 0 {
		fmt.Fprintln(w, subtitleStyle.Render("Last game output:"))
		fmt.Fprintln(w, mutedStyle.Render(strings.Join(info.RecentLines, "\n")))
	}
	fmt.Fprintln(w)
}

func readiness(o supervisor.Outcome, s *metrics.Summary) string {
	if !o.MarkerObserved && s.ReadyCount == 0 {
		return "never"
	}
	if s.LastReadyAfter > 0 {
		return "after " + s.LastReadyAfter.Round(time.Millisecond).String()
	}
	return "yes"
}

// formatDuration formats a duration as HH:MM:SS.
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
