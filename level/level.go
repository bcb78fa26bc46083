// Package level loads and validates level files: the grid, switch records and
// the train schedule handed to the simulation core.
package level

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/rails/config"
	"github.com/pthm-cable/rails/grid"
	"github.com/pthm-cable/rails/systems"
)

var (
	// ErrInvalidLevel wraps every structural problem with a level.
	ErrInvalidLevel = errors.New("invalid level")
	// ErrCapacityExceeded is returned when a level needs more trains,
	// switches or cells than the configured limits allow.
	ErrCapacityExceeded = errors.New("capacity exceeded")
)

// Level is a fully populated initial state.
type Level struct {
	Name     string
	Grid     *grid.Grid
	Switches []systems.SwitchSpec
	Trains   []systems.TrainSpec
}

// Load reads a level from disk. Files ending in .yaml or .yml use the YAML
// layout; anything else is parsed as the text .lvl layout.
func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level file: %w", err)
	}

	var lvl *Level
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		lvl, err = ParseYAML(data)
	default:
		lvl, err = Parse(strings.NewReader(string(data)))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if lvl.Name == "" {
		lvl.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return lvl, nil
}

// Validate checks the level against the configured limits and its own
// internal consistency. The simulation assumes a validated level.
func (l *Level) Validate(limits config.LimitsConfig) error {
	g := l.Grid
	if g == nil || g.Rows() == 0 || g.Cols() == 0 {
		return fmt.Errorf("empty map: %w", ErrInvalidLevel)
	}
	if g.Rows() > limits.MaxRows || g.Cols() > limits.MaxCols {
		return fmt.Errorf("grid %dx%d exceeds %dx%d: %w",
			g.Rows(), g.Cols(), limits.MaxRows, limits.MaxCols, ErrCapacityExceeded)
	}
	if len(l.Trains) > limits.MaxTrains {
		return fmt.Errorf("%d trains, limit %d: %w", len(l.Trains), limits.MaxTrains, ErrCapacityExceeded)
	}
	if len(l.Switches) > limits.MaxSwitches {
		return fmt.Errorf("%d switches, limit %d: %w", len(l.Switches), limits.MaxSwitches, ErrCapacityExceeded)
	}

	cells := g.SwitchCells()
	seen := make(map[byte]bool, len(l.Switches))
	for _, sw := range l.Switches {
		if seen[sw.Letter] {
			return fmt.Errorf("switch %c defined twice: %w", sw.Letter, ErrInvalidLevel)
		}
		seen[sw.Letter] = true
		if len(cells[sw.Letter]) != 1 || cells[sw.Letter][0] != sw.Pos {
			return fmt.Errorf("switch %c must appear exactly once on the map at %v: %w", sw.Letter, sw.Pos, ErrInvalidLevel)
		}
		if sw.State != systems.SwitchStraight && sw.State != systems.SwitchDiverging {
			return fmt.Errorf("switch %c: state %d: %w", sw.Letter, sw.State, ErrInvalidLevel)
		}
	}
	for letter := range cells {
		if !seen[letter] {
			return fmt.Errorf("switch %c on map has no record: %w", letter, ErrInvalidLevel)
		}
	}

	for i, tr := range l.Trains {
		if tr.SpawnTick < 0 {
			return fmt.Errorf("train %d: negative spawn tick: %w", i, ErrInvalidLevel)
		}
		if !tr.Heading.Valid() {
			return fmt.Errorf("train %d: bad direction %d: %w", i, tr.Heading, ErrInvalidLevel)
		}
		if !g.IsTrack(tr.Spawn.X, tr.Spawn.Y) {
			return fmt.Errorf("train %d: spawn %v is not on track: %w", i, tr.Spawn, ErrInvalidLevel)
		}
		if !g.Contains(tr.Destination) {
			return fmt.Errorf("train %d: destination %v off grid: %w", i, tr.Destination, ErrInvalidLevel)
		}
	}
	return nil
}

// resolveSwitches fills in each switch position from the map.
func resolveSwitches(g *grid.Grid, specs []systems.SwitchSpec) error {
	cells := g.SwitchCells()
	for i := range specs {
		pts := cells[specs[i].Letter]
		switch len(pts) {
		case 0:
			return fmt.Errorf("switch %c not on map: %w", specs[i].Letter, ErrInvalidLevel)
		case 1:
			specs[i].Pos = pts[0]
		default:
			return fmt.Errorf("switch %c appears %d times on map: %w", specs[i].Letter, len(pts), ErrInvalidLevel)
		}
	}
	return nil
}

// nearestDestination picks the destination tile closest to from, first in
// row-major order on ties.
func nearestDestination(g *grid.Grid, from grid.Point) (grid.Point, bool) {
	best, bestDist, found := grid.Point{}, 0, false
	for _, p := range g.Find(grid.KindDestination) {
		d := p.Manhattan(from)
		if !found || d < bestDist {
			best, bestDist, found = p, d, true
		}
	}
	return best, found
}
