package systems

import (
	"github.com/pthm-cable/rails/components"
	"github.com/pthm-cable/rails/grid"
)

// reflectUp maps a heading across a '/' curve.
func reflectUp(d grid.Direction) grid.Direction {
	switch d {
	case grid.Right:
		return grid.Up
	case grid.Down:
		return grid.Left
	case grid.Left:
		return grid.Down
	case grid.Up:
		return grid.Right
	}
	return d
}

// reflectDown maps a heading across a '\' curve.
func reflectDown(d grid.Direction) grid.Direction {
	switch d {
	case grid.Right:
		return grid.Down
	case grid.Up:
		return grid.Left
	case grid.Left:
		return grid.Up
	case grid.Down:
		return grid.Right
	}
	return d
}

// NextDirection returns the heading a train leaves pos with, given the heading
// it entered with. Rules, in order: diverging switch deflection, '/' and '\'
// reflection, otherwise unchanged. A switch glyph with no registered switch
// routes as plain track.
func NextDirection(g *grid.Grid, switches *SwitchBank, pos grid.Point, heading grid.Direction) grid.Direction {
	tile, err := g.TileAt(pos.X, pos.Y)
	if err != nil {
		return heading
	}

	if tile.Kind == grid.KindSwitch && switches != nil {
		if sw, err := switches.At(pos); err == nil && sw.State == SwitchDiverging {
			return Deflect(heading)
		}
	}

	switch tile.Kind {
	case grid.KindDiagonalUp:
		return reflectUp(heading)
	case grid.KindDiagonalDown:
		return reflectDown(heading)
	}
	return heading
}

// Route writes the train's routed direction and candidate cell. The candidate
// is not clamped; off-grid candidates are resolved at commit.
func Route(g *grid.Grid, switches *SwitchBank, m *components.Motion) {
	m.Next = NextDirection(g, switches, m.Pos, m.Heading)
	m.Candidate = m.Pos.Step(m.Next)
}
