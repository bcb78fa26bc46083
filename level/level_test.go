package level

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pthm-cable/rails/config"
	"github.com/pthm-cable/rails/grid"
	"github.com/pthm-cable/rails/systems"
)

const junction = `
# comment line
ROWS: 5
COLS: 12
MAP:
S---A-----D.
....|.......
....|.......
....\-----D.
............
SWITCHES:
A PER_DIR 0 99 2 2 99
TRAINS:
0 0 0 R 10 0 0   # explicit destination
2 0 0 R 10 3 1
4 0 0 R 1        # nearest destination
`

func defaultLimits() config.LimitsConfig {
	return config.LimitsConfig{MaxRows: 20, MaxCols: 30, MaxTrains: 50, MaxSwitches: 26}
}

func TestParseText(t *testing.T) {
	lvl, err := Parse(strings.NewReader(junction))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if lvl.Grid.Rows() != 5 || lvl.Grid.Cols() != 12 {
		t.Fatalf("grid = %dx%d, want 5x12", lvl.Grid.Rows(), lvl.Grid.Cols())
	}

	wantSwitches := []systems.SwitchSpec{
		{Letter: 'A', Pos: grid.Pt(4, 0), State: systems.SwitchStraight, K: [4]int{99, 2, 2, 99}},
	}
	if diff := cmp.Diff(wantSwitches, lvl.Switches); diff != "" {
		t.Errorf("switches mismatch (-want +got):\n%s", diff)
	}

	wantTrains := []systems.TrainSpec{
		{SpawnTick: 0, Spawn: grid.Pt(0, 0), Heading: grid.Right, Destination: grid.Pt(10, 0), Color: 0},
		{SpawnTick: 2, Spawn: grid.Pt(0, 0), Heading: grid.Right, Destination: grid.Pt(10, 3), Color: 1},
		{SpawnTick: 4, Spawn: grid.Pt(0, 0), Heading: grid.Right, Destination: grid.Pt(10, 0), Color: 1},
	}
	if diff := cmp.Diff(wantTrains, lvl.Trains); diff != "" {
		t.Errorf("trains mismatch (-want +got):\n%s", diff)
	}

	if err := lvl.Validate(defaultLimits()); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParseWithoutDimensions(t *testing.T) {
	src := "MAP:\nS--D\n\nTRAINS:\n0 0 0 1\n"
	lvl, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if lvl.Grid.Rows() != 1 || lvl.Grid.Cols() != 4 {
		t.Errorf("grid = %dx%d, want 1x4", lvl.Grid.Rows(), lvl.Grid.Cols())
	}
	if got := lvl.Trains[0].Destination; got != grid.Pt(3, 0) {
		t.Errorf("destination = %v, want (3,0)", got)
	}
}

func TestParseWidensToDeclaredCols(t *testing.T) {
	lvl, err := Parse(strings.NewReader("ROWS: 2\nCOLS: 6\nMAP:\nS-D\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if lvl.Grid.Rows() != 2 || lvl.Grid.Cols() != 6 {
		t.Errorf("grid = %dx%d, want 2x6", lvl.Grid.Rows(), lvl.Grid.Cols())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"rows exceeded", "ROWS: 1\nMAP:\nS-D\nS-D\n"},
		{"cols exceeded", "COLS: 2\nMAP:\nS-D\n"},
		{"bad rows", "ROWS: x\nMAP:\nS-D\n"},
		{"unknown header", "SPEED: 3\nMAP:\nS-D\n"},
		{"bad glyph", "MAP:\nS-?-D\n"},
		{"switch not on map", "MAP:\nS-D\nSWITCHES:\nB 0 1 1 1 1\n"},
		{"switch twice on map", "MAP:\nSA-AD\nSWITCHES:\nA 0 1 1 1 1\n"},
		{"switch bad mode", "MAP:\nSA-D\nSWITCHES:\nA GLOBAL 0 1 1 1 1\n"},
		{"switch bad state", "MAP:\nSA-D\nSWITCHES:\nA 2 1 1 1 1\n"},
		{"switch negative k", "MAP:\nSA-D\nSWITCHES:\nA 0 1 -1 1 1\n"},
		{"switch short", "MAP:\nSA-D\nSWITCHES:\nA 0 1 1\n"},
		{"train short", "MAP:\nS-D\nTRAINS:\n0 0 0\n"},
		{"train bad direction", "MAP:\nS-D\nTRAINS:\n0 0 0 Q\n"},
		{"train bad number", "MAP:\nS-D\nTRAINS:\n0 a 0 R\n"},
		{"no destination anywhere", "MAP:\nS--\nTRAINS:\n0 0 0 R\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidLevel) {
				t.Errorf("error %v does not wrap ErrInvalidLevel", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	base := func() *Level {
		lvl, err := Parse(strings.NewReader(junction))
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		return lvl
	}

	tests := []struct {
		name   string
		mutate func(l *Level, lim *config.LimitsConfig)
		want   error
	}{
		{"too many rows", func(l *Level, lim *config.LimitsConfig) { lim.MaxRows = 4 }, ErrCapacityExceeded},
		{"too many trains", func(l *Level, lim *config.LimitsConfig) { lim.MaxTrains = 2 }, ErrCapacityExceeded},
		{"too many switches", func(l *Level, lim *config.LimitsConfig) { lim.MaxSwitches = 0 }, ErrCapacityExceeded},
		{"glyph without record", func(l *Level, _ *config.LimitsConfig) { l.Switches = nil }, ErrInvalidLevel},
		{"duplicate record", func(l *Level, _ *config.LimitsConfig) {
			l.Switches = append(l.Switches, l.Switches[0])
		}, ErrInvalidLevel},
		{"spawn off track", func(l *Level, _ *config.LimitsConfig) { l.Trains[0].Spawn = grid.Pt(1, 1) }, ErrInvalidLevel},
		{"spawn off grid", func(l *Level, _ *config.LimitsConfig) { l.Trains[0].Spawn = grid.Pt(-1, 0) }, ErrInvalidLevel},
		{"negative spawn tick", func(l *Level, _ *config.LimitsConfig) { l.Trains[1].SpawnTick = -1 }, ErrInvalidLevel},
		{"bad direction", func(l *Level, _ *config.LimitsConfig) { l.Trains[2].Heading = 7 }, ErrInvalidLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lvl := base()
			lim := defaultLimits()
			tt.mutate(lvl, &lim)
			err := lvl.Validate(lim)
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseYAMLMatchesText(t *testing.T) {
	src := `
name: junction
rows: 5
cols: 12
map:
  - "S---A-----D."
  - "....|......."
  - "....|......."
  - "....\\-----D."
  - "............"
switches:
  - letter: A
    mode: PER_DIR
    state: straight
    trigger: {up: 99, right: 2, down: 2, left: 99}
trains:
  - {spawn_tick: 0, x: 0, y: 0, direction: R, dest: {x: 10, y: 0}}
  - {spawn_tick: 2, x: 0, y: 0, direction: right, dest: {x: 10, y: 3}, color: 1}
  - {spawn_tick: 4, x: 0, y: 0, direction: "1", color: 1}
`
	fromYAML, err := ParseYAML([]byte(src))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	fromText, err := Parse(strings.NewReader(junction))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if fromYAML.Name != "junction" {
		t.Errorf("name = %q", fromYAML.Name)
	}
	if diff := cmp.Diff(fromText.Switches, fromYAML.Switches); diff != "" {
		t.Errorf("switches mismatch (-text +yaml):\n%s", diff)
	}
	if diff := cmp.Diff(fromText.Trains, fromYAML.Trains); diff != "" {
		t.Errorf("trains mismatch (-text +yaml):\n%s", diff)
	}
	if fromText.Grid.String() != fromYAML.Grid.String() {
		t.Errorf("grids differ:\n%s\nvs\n%s", fromText.Grid, fromYAML.Grid)
	}
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad yaml", "map: [\n"},
		{"bad letter", "map: [\"SA-D\"]\nswitches: [{letter: AB}]\n"},
		{"bad state", "map: [\"SA-D\"]\nswitches: [{letter: A, state: sideways}]\n"},
		{"bad direction", "map: [\"S-D\"]\ntrains: [{x: 0, y: 0, direction: sideways}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseYAML([]byte(tt.src)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	lvlPath := filepath.Join(dir, "line.lvl")
	if err := os.WriteFile(lvlPath, []byte("MAP:\nS--D\nTRAINS:\n0 0 0 R\n"), 0644); err != nil {
		t.Fatal(err)
	}
	yamlPath := filepath.Join(dir, "line.yaml")
	if err := os.WriteFile(yamlPath, []byte("map: [\"S--D\"]\ntrains: [{x: 0, y: 0, direction: right}]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{lvlPath, yamlPath} {
		lvl, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", path, err)
		}
		if lvl.Name != "line" {
			t.Errorf("Load(%s) name = %q, want line", path, lvl.Name)
		}
		if len(lvl.Trains) != 1 || lvl.Trains[0].Destination != grid.Pt(3, 0) {
			t.Errorf("Load(%s) trains = %+v", path, lvl.Trains)
		}
	}

	if _, err := Load(filepath.Join(dir, "missing.lvl")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestShippedLevelsValidate(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "levels", "*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Skip("no shipped levels")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			lvl, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if err := lvl.Validate(defaultLimits()); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}
