package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/rails/grid"
	"github.com/pthm-cable/rails/sim"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// RunSnapshot is a JSON dump of the state between two ticks, for post-mortem
// inspection of bookmarked moments.
type RunSnapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	Level   string `json:"level"`
	Tick    int    `json:"tick"`

	// Map rows in level glyphs, including safety toggles made during the run
	Map []string `json:"map"`

	Trains   []TrainState  `json:"trains"`
	Switches []SwitchState `json:"switches"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// TrainState holds one train's state.
type TrainState struct {
	ID          int            `json:"id"`
	Color       int            `json:"color"`
	State       string         `json:"state"`
	Outcome     string         `json:"outcome"`
	X           int            `json:"x"`
	Y           int            `json:"y"`
	Heading     grid.Direction `json:"heading"`
	DestX       int            `json:"dest_x"`
	DestY       int            `json:"dest_y"`
	SpawnTick   int            `json:"spawn_tick"`
	SpawnedTick int            `json:"spawned_tick"`
	FinishTick  int            `json:"finish_tick"`
	WaitTicks   int            `json:"wait_ticks"`
}

// SwitchState holds one switch's state.
type SwitchState struct {
	Letter      string                  `json:"letter"`
	X           int                     `json:"x"`
	Y           int                     `json:"y"`
	State       string                  `json:"state"`
	K           [grid.NumDirections]int `json:"k"`
	Counter     [grid.NumDirections]int `json:"counter"`
	FlipPending bool                    `json:"flip_pending"`
}

// NewRunSnapshot captures s. bm may be nil.
func NewRunSnapshot(runID string, s *sim.Simulation, bm *Bookmark) *RunSnapshot {
	snap := s.Snapshot()
	rs := &RunSnapshot{
		Version:  SnapshotVersion,
		RunID:    runID,
		Level:    s.Name(),
		Tick:     snap.Tick,
		Map:      strings.Split(strings.TrimSuffix(s.Grid().String(), "\n"), "\n"),
		Trains:   make([]TrainState, 0, len(snap.Trains)),
		Switches: make([]SwitchState, 0, len(snap.Switches)),
		Bookmark: bm,
	}
	for _, t := range snap.Trains {
		rs.Trains = append(rs.Trains, TrainState{
			ID:          t.ID,
			Color:       t.Color,
			State:       t.State.String(),
			Outcome:     t.Outcome.String(),
			X:           t.Pos.X,
			Y:           t.Pos.Y,
			Heading:     t.Heading,
			DestX:       t.Destination.X,
			DestY:       t.Destination.Y,
			SpawnTick:   t.SpawnTick,
			SpawnedTick: t.SpawnedTick,
			FinishTick:  t.FinishTick,
			WaitTicks:   t.WaitTicks,
		})
	}
	for _, sw := range snap.Switches {
		rs.Switches = append(rs.Switches, SwitchState{
			Letter:      string(sw.Letter),
			X:           sw.Pos.X,
			Y:           sw.Pos.Y,
			State:       sw.State.String(),
			K:           sw.K,
			Counter:     sw.Counter,
			FlipPending: sw.FlipPending,
		})
	}
	return rs
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *RunSnapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*RunSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot RunSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
