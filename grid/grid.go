// Package grid holds the static track geometry of a level.
package grid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOutOfBounds is returned when a coordinate falls outside the grid.
var ErrOutOfBounds = errors.New("coordinate out of bounds")

// Grid is a rows × cols array of tiles. It is immutable after load apart
// from ToggleSafety.
type Grid struct {
	rows, cols int
	tiles      []Tile // row-major
}

// New creates an empty grid.
func New(rows, cols int) *Grid {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &Grid{
		rows:  rows,
		cols:  cols,
		tiles: make([]Tile, rows*cols),
	}
}

// FromRows builds a grid from level map lines. Short lines are padded with
// empty tiles; the width is the longest line.
func FromRows(lines []string) (*Grid, error) {
	cols := 0
	for _, l := range lines {
		if len(l) > cols {
			cols = len(l)
		}
	}
	g := New(len(lines), cols)
	for y, l := range lines {
		for x := 0; x < len(l); x++ {
			t, err := ParseTile(l[x])
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", y, x, err)
			}
			g.tiles[y*cols+x] = t
		}
	}
	return g, nil
}

// Rows returns the grid height.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the grid width.
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether (x, y) addresses a cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.cols && y >= 0 && y < g.rows
}

// Contains is InBounds for a Point.
func (g *Grid) Contains(p Point) bool {
	return g.InBounds(p.X, p.Y)
}

// TileAt returns the tile at (x, y). Callers must bounds-check first; there is
// no fallback value for coordinates outside the grid.
func (g *Grid) TileAt(x, y int) (Tile, error) {
	if !g.InBounds(x, y) {
		return Tile{}, fmt.Errorf("tile (%d,%d) in %dx%d grid: %w", x, y, g.cols, g.rows, ErrOutOfBounds)
	}
	return g.tiles[y*g.cols+x], nil
}

// Set writes a tile. Used by level loaders only.
func (g *Grid) Set(x, y int, t Tile) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("set (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	g.tiles[y*g.cols+x] = t
	return nil
}

// kindAt returns the tile kind, or false when off-grid.
func (g *Grid) kindAt(x, y int) (Tile, bool) {
	if !g.InBounds(x, y) {
		return Tile{}, false
	}
	return g.tiles[y*g.cols+x], true
}

// IsTrack reports whether a train may occupy (x, y).
func (g *Grid) IsTrack(x, y int) bool {
	t, ok := g.kindAt(x, y)
	return ok && t.IsTrack()
}

// IsSwitch reports whether (x, y) holds a switch glyph.
func (g *Grid) IsSwitch(x, y int) bool {
	t, ok := g.kindAt(x, y)
	return ok && t.Kind == KindSwitch
}

// IsSpawn reports whether (x, y) is a spawn point.
func (g *Grid) IsSpawn(x, y int) bool {
	t, ok := g.kindAt(x, y)
	return ok && t.Kind == KindSpawn
}

// IsDestination reports whether (x, y) is a destination point.
func (g *Grid) IsDestination(x, y int) bool {
	t, ok := g.kindAt(x, y)
	return ok && t.Kind == KindDestination
}

// ToggleSafety flips a horizontal straight to its safety-marked variant and
// back. Any other tile, or an off-grid coordinate, is left alone and false is
// returned.
func (g *Grid) ToggleSafety(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	i := y*g.cols + x
	switch g.tiles[i].Kind {
	case KindHorizontal:
		g.tiles[i] = Tile{Kind: KindSafety}
	case KindSafety:
		g.tiles[i] = Tile{Kind: KindHorizontal}
	default:
		return false
	}
	return true
}

// Find returns every cell of the given kind in row-major order.
func (g *Grid) Find(kind Kind) []Point {
	var pts []Point
	for i, t := range g.tiles {
		if t.Kind == kind {
			pts = append(pts, Point{X: i % g.cols, Y: i / g.cols})
		}
	}
	return pts
}

// SwitchCells maps each switch letter on the map to its cells.
func (g *Grid) SwitchCells() map[byte][]Point {
	cells := make(map[byte][]Point)
	for i, t := range g.tiles {
		if t.Kind == KindSwitch {
			cells[t.Letter] = append(cells[t.Letter], Point{X: i % g.cols, Y: i / g.cols})
		}
	}
	return cells
}

// Clone returns an independent copy, used to restore the map on reset.
func (g *Grid) Clone() *Grid {
	c := &Grid{rows: g.rows, cols: g.cols, tiles: make([]Tile, len(g.tiles))}
	copy(c.tiles, g.tiles)
	return c
}

// String renders the grid with level glyphs, one row per line.
func (g *Grid) String() string {
	var b strings.Builder
	b.Grow(g.rows * (g.cols + 1))
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			b.WriteByte(g.tiles[y*g.cols+x].Glyph())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
