package telemetry

import (
	"log/slog"
	"path/filepath"

	"github.com/pthm-cable/rails/sim"
)

// Recorder feeds every tick into the collector and output files. Its OnTick
// method is meant for sim.Options.OnTick.
type Recorder struct {
	runID  string
	window int // ticks per stats window, 0 disables window logging

	out       *OutputManager
	coll      *Collector
	perf      *PerfCollector
	detector  *BookmarkDetector
	bookmarks []Bookmark

	err error
}

// NewRecorder creates a recorder. out and perf may be nil.
func NewRecorder(runID string, window int, out *OutputManager, perf *PerfCollector) *Recorder {
	return &Recorder{
		runID:    runID,
		window:   window,
		out:      out,
		coll:     NewCollector(window),
		perf:     perf,
		detector: NewBookmarkDetector(10),
	}
}

// OnTick records one tick. Output errors are kept and reported by Finish;
// the run itself continues.
func (r *Recorder) OnTick(s *sim.Simulation, rep sim.Report) {
	r.coll.Record(rep)

	if r.out != nil {
		r.keep(r.out.WriteTick(s.Snapshot(), rep))
	}

	if r.window <= 0 || !r.coll.ShouldFlush(rep.Tick) {
		return
	}
	stats := r.coll.Flush(rep.Tick, s.Trains().Counts())
	stats.LogStats()
	r.keep(r.out.WriteTelemetry(stats))
	for _, b := range r.detector.Check(stats) {
		b.LogBookmark()
		r.bookmarks = append(r.bookmarks, b)
		r.saveSnapshot(s, &b)
	}
	if r.perf != nil {
		ps := r.perf.Stats()
		ps.LogStats()
		r.keep(r.out.WritePerf(ps, rep.Tick))
	}
}

// Finish computes, logs and writes the run summary.
func (r *Recorder) Finish(s *sim.Simulation) (RunStats, error) {
	rs := ComputeRunStats(r.runID, s.Name(), s.Snapshot(), r.coll.Totals())
	slog.Info("run finished", "stats", rs)
	r.keep(r.out.WriteRunStats(rs))
	r.saveSnapshot(s, nil)
	return rs, r.err
}

// saveSnapshot dumps the current state next to the CSV files.
func (r *Recorder) saveSnapshot(s *sim.Simulation, bm *Bookmark) {
	if r.out == nil {
		return
	}
	_, err := SaveSnapshot(NewRunSnapshot(r.runID, s, bm), filepath.Join(r.out.Dir(), "snapshots"))
	r.keep(err)
}

// Reset discards collected counts after a simulation reset.
func (r *Recorder) Reset() {
	r.coll.Reset()
	r.detector.Reset()
	r.bookmarks = nil
}

// Bookmarks returns the bookmarks raised so far.
func (r *Recorder) Bookmarks() []Bookmark {
	return r.bookmarks
}

// Totals returns the run-wide counts so far.
func (r *Recorder) Totals() Totals {
	return r.coll.Totals()
}

func (r *Recorder) keep(err error) {
	if err == nil {
		return
	}
	if r.err == nil {
		slog.Error("telemetry output failed", "error", err)
		r.err = err
	}
}
