package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/rails/components"
	"github.com/pthm-cable/rails/sim"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int `csv:"-"`
	WindowEndTick   int `csv:"window_end"`

	// Fleet at window end
	Pending  int `csv:"pending"`
	Active   int `csv:"active"`
	Finished int `csv:"finished"`

	// Events during window
	Spawns    int `csv:"spawns"`
	Waits     int `csv:"waits"`
	Conflicts int `csv:"conflicts"`
	Holds     int `csv:"holds"`
	Moves     int `csv:"moves"`
	Flips     int `csv:"flips"`
	Arrivals  int `csv:"arrivals"`
	Derails   int `csv:"derails"`

	Throughput float64 `csv:"throughput"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("window_end", s.WindowEndTick),
		slog.Int("pending", s.Pending),
		slog.Int("active", s.Active),
		slog.Int("finished", s.Finished),
		slog.Int("spawns", s.Spawns),
		slog.Int("waits", s.Waits),
		slog.Int("conflicts", s.Conflicts),
		slog.Int("holds", s.Holds),
		slog.Int("moves", s.Moves),
		slog.Int("flips", s.Flips),
		slog.Int("arrivals", s.Arrivals),
		slog.Int("derails", s.Derails),
		slog.Float64("throughput", s.Throughput),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"pending", s.Pending,
		"active", s.Active,
		"finished", s.Finished,
		"conflicts", s.Conflicts,
		"holds", s.Holds,
		"flips", s.Flips,
		"arrivals", s.Arrivals,
		"derails", s.Derails,
		"throughput", s.Throughput,
	)
}

// RunStats summarizes a finished (or stopped) run. Written once to metrics.csv.
type RunStats struct {
	RunID     string `csv:"run_id"`
	Level     string `csv:"level"`
	FinalTick int    `csv:"final_tick"`
	Complete  bool   `csv:"complete"`

	Trains     int `csv:"trains"`
	Arrived    int `csv:"arrived"`
	Derailed   int `csv:"derailed"`
	Unfinished int `csv:"unfinished"`

	// Ticks from spawn to arrival, arrived trains only
	TravelMean float64 `csv:"travel_mean"`
	TravelP50  float64 `csv:"travel_p50"`
	TravelP90  float64 `csv:"travel_p90"`

	// Ticks spent blocked at the spawn tile, every spawned train
	WaitMean float64 `csv:"wait_mean"`
	WaitP90  float64 `csv:"wait_p90"`

	Conflicts int `csv:"conflicts"`
	Holds     int `csv:"holds"`
	Flips     int `csv:"flips"`
}

// ComputeRunStats derives the run summary from the final snapshot and the
// collector's totals.
func ComputeRunStats(runID, levelName string, snap sim.Snapshot, totals Totals) RunStats {
	rs := RunStats{
		RunID:     runID,
		Level:     levelName,
		FinalTick: snap.Tick,
		Complete:  snap.Complete,
		Trains:    len(snap.Trains),
		Conflicts: totals.Conflicts,
		Holds:     totals.Holds,
		Flips:     totals.Flips,
	}

	var travel, wait []float64
	for _, tr := range snap.Trains {
		switch {
		case tr.State != components.StateFinished:
			rs.Unfinished++
		case tr.Outcome == components.OutcomeArrived:
			rs.Arrived++
			travel = append(travel, float64(tr.FinishTick-tr.SpawnedTick))
		case tr.Outcome == components.OutcomeDerailed:
			rs.Derailed++
		}
		if tr.SpawnedTick >= 0 {
			wait = append(wait, float64(tr.WaitTicks))
		}
	}

	rs.TravelMean, rs.TravelP50, rs.TravelP90 = Summarize(travel)
	rs.WaitMean, _, rs.WaitP90 = Summarize(wait)
	return rs
}

// Summarize returns the mean, median and 90th percentile of values.
// Returns zeros for an empty slice.
func Summarize(values []float64) (mean, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	return mean, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (r RunStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", r.RunID),
		slog.String("level", r.Level),
		slog.Int("final_tick", r.FinalTick),
		slog.Bool("complete", r.Complete),
		slog.Int("trains", r.Trains),
		slog.Int("arrived", r.Arrived),
		slog.Int("derailed", r.Derailed),
		slog.Int("unfinished", r.Unfinished),
		slog.Float64("travel_mean", r.TravelMean),
		slog.Float64("travel_p50", r.TravelP50),
		slog.Float64("travel_p90", r.TravelP90),
		slog.Float64("wait_mean", r.WaitMean),
		slog.Float64("wait_p90", r.WaitP90),
		slog.Int("conflicts", r.Conflicts),
		slog.Int("holds", r.Holds),
		slog.Int("flips", r.Flips),
	)
}
