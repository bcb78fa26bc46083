package telemetry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/rails/config"
	"github.com/pthm-cable/rails/level"
	"github.com/pthm-cable/rails/sim"
)

func readCSV[T any](t *testing.T, path string) []*T {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	var rows []*T
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		t.Fatalf("unmarshal %s: %v", path, err)
	}
	return rows
}

func TestNilOutputManagerIsNoop(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v", om, err)
	}
	if err := om.WriteTick(sim.Snapshot{}, sim.Report{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteRunStats(RunStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("nil manager has a directory")
	}
}

func TestRecordedRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	lvl, err := level.Load(filepath.Join("..", "levels", "junction.lvl"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	perf := NewPerfCollector(8)
	rec := NewRecorder("test-run", 4, om, perf)
	s, err := sim.New(lvl, sim.Options{Timer: perf, OnTick: rec.OnTick})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(context.Background(), 200); err != nil {
		t.Fatalf("Run: %v", err)
	}
	rs, err := rec.Finish(s)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if rs.Arrived != 5 || !rs.Complete || rs.FinalTick != s.Tick() {
		t.Errorf("run stats = %+v", rs)
	}

	trace := readCSV[TraceRecord](t, filepath.Join(dir, "trace.csv"))
	if len(trace) == 0 {
		t.Fatal("empty trace")
	}
	if first := trace[0]; first.Tick != 1 || first.Train != 0 || first.X != 1 || first.Y != 0 || first.Direction != "right" {
		t.Errorf("first trace row = %+v", *first)
	}
	for _, row := range trace {
		if row.State != "active" {
			t.Fatalf("trace row for non-active train: %+v", *row)
		}
	}

	switches := readCSV[SwitchRecord](t, filepath.Join(dir, "switches.csv"))
	if len(switches) != s.Tick() {
		t.Errorf("switch rows = %d, want one per tick (%d)", len(switches), s.Tick())
	}

	events := readCSV[Event](t, filepath.Join(dir, "events.csv"))
	counts := make(map[EventType]int)
	for _, ev := range events {
		counts[ev.Type]++
	}
	if counts[EventSpawn] != 5 || counts[EventArrive] != 5 || counts[EventFlip] != 2 {
		t.Errorf("event counts = %v", counts)
	}

	metrics := readCSV[RunStats](t, filepath.Join(dir, "metrics.csv"))
	if len(metrics) != 1 || metrics[0].RunID != "test-run" || metrics[0].Level != "junction" {
		t.Errorf("metrics = %+v", metrics)
	}

	windows := readCSV[WindowStats](t, filepath.Join(dir, "telemetry.csv"))
	if want := s.Tick() / 4; len(windows) != want {
		t.Errorf("window rows = %d, want %d", len(windows), want)
	}
	if perfRows := readCSV[PerfStatsCSV](t, filepath.Join(dir, "perf.csv")); len(perfRows) != len(windows) {
		t.Errorf("perf rows = %d, want %d", len(perfRows), len(windows))
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot does not load: %v", err)
	}

	final, err := LoadSnapshot(filepath.Join(dir, "snapshots", fmt.Sprintf("snapshot_%d.json", s.Tick())))
	if err != nil {
		t.Fatalf("final snapshot: %v", err)
	}
	if final.RunID != "test-run" || final.Bookmark != nil {
		t.Errorf("final snapshot header = %q, %+v", final.RunID, final.Bookmark)
	}
}
