package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/rails/components"
	"github.com/pthm-cable/rails/config"
	"github.com/pthm-cable/rails/sim"
)

// TraceRecord is one Active train at the end of a tick.
type TraceRecord struct {
	Tick      int    `csv:"tick"`
	Train     int    `csv:"train"`
	X         int    `csv:"x"`
	Y         int    `csv:"y"`
	Direction string `csv:"direction"`
	State     string `csv:"state"`
}

// SwitchRecord is one switch at the end of a tick.
type SwitchRecord struct {
	Tick    int    `csv:"tick"`
	Switch  string `csv:"switch"`
	X       int    `csv:"x"`
	Y       int    `csv:"y"`
	State   int    `csv:"state"`
	Pending bool   `csv:"pending"`
}

// csvFile is an output file whose header is written with the first batch.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func openCSV(dir, name string) (*csvFile, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvFile{f: f}, nil
}

// writeRecords appends records, writing the header only once.
func writeRecords[T any](c *csvFile, records []T) error {
	if len(records) == 0 {
		return nil
	}
	if !c.headerWritten {
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager handles run output: CSV traces and a config snapshot.
type OutputManager struct {
	dir string

	trace    *csvFile
	switches *csvFile
	events   *csvFile
	windows  *csvFile
	perf     *csvFile
	metrics  *csvFile
}

// NewOutputManager creates the output directory and its files.
// Returns nil if dir is empty (output disabled); every method is nil-safe.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		dst  **csvFile
		name string
	}{
		{&om.trace, "trace.csv"},
		{&om.switches, "switches.csv"},
		{&om.events, "events.csv"},
		{&om.windows, "telemetry.csv"},
		{&om.perf, "perf.csv"},
		{&om.metrics, "metrics.csv"},
	}
	for _, spec := range files {
		c, err := openCSV(dir, spec.name)
		if err != nil {
			om.Close()
			return nil, err
		}
		*spec.dst = c
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTick appends the tick's trace, switch states and events.
func (om *OutputManager) WriteTick(snap sim.Snapshot, rep sim.Report) error {
	if om == nil {
		return nil
	}

	var trace []TraceRecord
	for _, tr := range snap.Trains {
		if tr.State != components.StateActive {
			continue
		}
		trace = append(trace, TraceRecord{
			Tick:      snap.Tick,
			Train:     tr.ID,
			X:         tr.Pos.X,
			Y:         tr.Pos.Y,
			Direction: tr.Heading.String(),
			State:     tr.State.String(),
		})
	}
	if err := writeRecords(om.trace, trace); err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}

	switches := make([]SwitchRecord, 0, len(snap.Switches))
	for _, sw := range snap.Switches {
		switches = append(switches, SwitchRecord{
			Tick:    snap.Tick,
			Switch:  string(sw.Letter),
			X:       sw.Pos.X,
			Y:       sw.Pos.Y,
			State:   int(sw.State),
			Pending: sw.FlipPending,
		})
	}
	if err := writeRecords(om.switches, switches); err != nil {
		return fmt.Errorf("writing switches: %w", err)
	}

	if err := writeRecords(om.events, EventsFromReport(rep, snap)); err != nil {
		return fmt.Errorf("writing events: %w", err)
	}
	return nil
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(om.windows, []WindowStats{stats}); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(om.perf, []PerfStatsCSV{stats.ToCSV(windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteRunStats writes the run summary to metrics.csv.
func (om *OutputManager) WriteRunStats(rs RunStats) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(om.metrics, []RunStats{rs}); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{om.trace, om.switches, om.events, om.windows, om.perf, om.metrics} {
		if c == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
