package level

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pthm-cable/rails/grid"
	"github.com/pthm-cable/rails/systems"
)

type section int

const (
	sectionHeader section = iota
	sectionMap
	sectionSwitches
	sectionTrains
)

// pendingTrain is a parsed train line whose destination may still need the
// grid to resolve.
type pendingTrain struct {
	line    int
	spec    systems.TrainSpec
	hasDest bool
}

// Parse reads the text level layout:
//
//	ROWS: 3
//	COLS: 8
//	MAP:
//	S--A--D.
//	...|....
//	...D....
//	SWITCHES:
//	A PER_DIR 0 2 2 2 2
//	TRAINS:
//	0 0 0 R 6 0 1
//
// Switch lines are letter, optional mode (PER_DIR), state, then trigger
// counts for up, right, down, left. Train lines are spawn tick, x, y,
// direction, optional destination x y, optional color. Without a destination
// the train heads for the destination tile nearest its spawn. Text after '#'
// is a comment; blank lines are skipped.
func Parse(r io.Reader) (*Level, error) {
	var (
		sec        = sectionHeader
		rows, cols = -1, -1
		name       string
		mapLines   []string
		switches   []systems.SwitchSpec
		trains     []pendingTrain
		lineNo     int
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		raw := strings.TrimRight(sc.Text(), "\r")
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			raw = raw[:i]
		}
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}

		switch strings.ToUpper(trimmed) {
		case "MAP:":
			sec = sectionMap
			continue
		case "SWITCHES:":
			sec = sectionSwitches
			continue
		case "TRAINS:":
			sec = sectionTrains
			continue
		}

		switch sec {
		case sectionHeader:
			key, val, ok := strings.Cut(trimmed, ":")
			if !ok {
				return nil, fmt.Errorf("line %d: expected KEY: value: %w", lineNo, ErrInvalidLevel)
			}
			val = strings.TrimSpace(val)
			switch strings.ToUpper(strings.TrimSpace(key)) {
			case "ROWS":
				n, err := strconv.Atoi(val)
				if err != nil || n <= 0 {
					return nil, fmt.Errorf("line %d: bad ROWS %q: %w", lineNo, val, ErrInvalidLevel)
				}
				rows = n
			case "COLS":
				n, err := strconv.Atoi(val)
				if err != nil || n <= 0 {
					return nil, fmt.Errorf("line %d: bad COLS %q: %w", lineNo, val, ErrInvalidLevel)
				}
				cols = n
			case "NAME":
				name = val
			default:
				return nil, fmt.Errorf("line %d: unknown header %q: %w", lineNo, key, ErrInvalidLevel)
			}

		case sectionMap:
			// Leading spaces are empty tiles; trailing ones carry no information.
			mapLines = append(mapLines, strings.TrimRight(raw, " \t"))

		case sectionSwitches:
			sw, err := parseSwitch(strings.Fields(trimmed))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			switches = append(switches, sw)

		case sectionTrains:
			tr, hasDest, err := parseTrain(strings.Fields(trimmed))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			trains = append(trains, pendingTrain{line: lineNo, spec: tr, hasDest: hasDest})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading level: %w", err)
	}

	g, err := buildGrid(mapLines, rows, cols)
	if err != nil {
		return nil, err
	}
	return assemble(name, g, switches, trains)
}

// buildGrid parses the map lines, honoring declared dimensions when present.
func buildGrid(lines []string, rows, cols int) (*grid.Grid, error) {
	if rows >= 0 && len(lines) > rows {
		return nil, fmt.Errorf("map has %d rows, ROWS is %d: %w", len(lines), rows, ErrInvalidLevel)
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	if cols >= 0 {
		for i, l := range lines {
			if len(l) > cols {
				return nil, fmt.Errorf("map row %d has %d columns, COLS is %d: %w", i, len(l), cols, ErrInvalidLevel)
			}
		}
	}

	parsed, err := grid.FromRows(lines)
	if err != nil {
		return nil, fmt.Errorf("map: %v: %w", err, ErrInvalidLevel)
	}
	if cols < 0 || parsed.Cols() == cols {
		return parsed, nil
	}

	// Widen to the declared column count.
	g := grid.New(parsed.Rows(), cols)
	for y := 0; y < parsed.Rows(); y++ {
		for x := 0; x < parsed.Cols(); x++ {
			t, _ := parsed.TileAt(x, y)
			_ = g.Set(x, y, t)
		}
	}
	return g, nil
}

// assemble resolves switch positions and default destinations.
func assemble(name string, g *grid.Grid, switches []systems.SwitchSpec, trains []pendingTrain) (*Level, error) {
	if err := resolveSwitches(g, switches); err != nil {
		return nil, err
	}
	specs := make([]systems.TrainSpec, len(trains))
	for i, pt := range trains {
		specs[i] = pt.spec
		if pt.hasDest {
			continue
		}
		dest, ok := nearestDestination(g, pt.spec.Spawn)
		if !ok {
			return nil, fmt.Errorf("line %d: train has no destination and the map has none: %w", pt.line, ErrInvalidLevel)
		}
		specs[i].Destination = dest
	}
	return &Level{Name: name, Grid: g, Switches: switches, Trains: specs}, nil
}

func parseSwitch(f []string) (systems.SwitchSpec, error) {
	var sw systems.SwitchSpec
	if len(f) == 0 || len(f[0]) != 1 || f[0][0] < 'A' || f[0][0] > 'Z' {
		return sw, fmt.Errorf("switch line must start with a letter A-Z: %w", ErrInvalidLevel)
	}
	sw.Letter = f[0][0]
	f = f[1:]

	// Optional mode token.
	if len(f) > 0 {
		if _, err := strconv.Atoi(f[0]); err != nil {
			if !strings.EqualFold(f[0], "PER_DIR") {
				return sw, fmt.Errorf("switch %c: unsupported mode %q: %w", sw.Letter, f[0], ErrInvalidLevel)
			}
			f = f[1:]
		}
	}
	if len(f) != 1+grid.NumDirections {
		return sw, fmt.Errorf("switch %c: want state and %d trigger counts, got %d fields: %w",
			sw.Letter, grid.NumDirections, len(f), ErrInvalidLevel)
	}

	state, err := parseSwitchState(f[0])
	if err != nil {
		return sw, fmt.Errorf("switch %c: %w", sw.Letter, err)
	}
	sw.State = state
	for d := 0; d < grid.NumDirections; d++ {
		k, err := strconv.Atoi(f[1+d])
		if err != nil || k < 0 {
			return sw, fmt.Errorf("switch %c: bad trigger count %q: %w", sw.Letter, f[1+d], ErrInvalidLevel)
		}
		sw.K[d] = k
	}
	return sw, nil
}

func parseSwitchState(s string) (systems.SwitchState, error) {
	switch strings.ToUpper(s) {
	case "0", "STRAIGHT":
		return systems.SwitchStraight, nil
	case "1", "DIVERGING", "TURN":
		return systems.SwitchDiverging, nil
	}
	return 0, fmt.Errorf("bad switch state %q: %w", s, ErrInvalidLevel)
}

func parseTrain(f []string) (systems.TrainSpec, bool, error) {
	var tr systems.TrainSpec
	if len(f) < 4 || len(f) > 7 {
		return tr, false, fmt.Errorf("train line wants 4 to 7 fields, got %d: %w", len(f), ErrInvalidLevel)
	}
	ints := func(fields []string) ([]int, error) {
		out := make([]int, len(fields))
		for i, s := range fields {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("bad number %q: %w", s, ErrInvalidLevel)
			}
			out[i] = v
		}
		return out, nil
	}

	head, err := ints(f[:3])
	if err != nil {
		return tr, false, err
	}
	dir, err := grid.ParseDirection(f[3])
	if err != nil {
		return tr, false, fmt.Errorf("%v: %w", err, ErrInvalidLevel)
	}
	tail, err := ints(f[4:])
	if err != nil {
		return tr, false, err
	}

	tr.SpawnTick = head[0]
	tr.Spawn = grid.Pt(head[1], head[2])
	tr.Heading = dir

	hasDest := false
	switch len(tail) {
	case 1:
		tr.Color = tail[0]
	case 2:
		tr.Destination = grid.Pt(tail[0], tail[1])
		hasDest = true
	case 3:
		tr.Destination = grid.Pt(tail[0], tail[1])
		tr.Color = tail[2]
		hasDest = true
	}
	return tr, hasDest, nil
}
