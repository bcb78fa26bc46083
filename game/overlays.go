package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/rails/components"
	"github.com/pthm-cable/rails/grid"
	"github.com/pthm-cable/rails/ui"
)

// drawActiveOverlays renders all currently enabled overlays.
func (g *Game) drawActiveOverlays() {
	if g.overlays.IsEnabled(ui.OverlayGrid) {
		g.drawGridLines()
	}
	if g.overlays.IsEnabled(ui.OverlayCounters) {
		g.drawCounters()
	}
	if g.overlays.IsEnabled(ui.OverlayPaths) {
		g.drawCandidates()
	}
	if g.overlays.IsEnabled(ui.OverlayDestinations) {
		g.drawDestinations()
	}
	if g.overlays.IsEnabled(ui.OverlayTrainIDs) {
		g.drawTrainIDs()
	}
}

func (g *Game) drawGridLines() {
	gr := g.sim.Grid()
	for y := 0; y < gr.Rows(); y++ {
		for x := 0; x < gr.Cols(); x++ {
			rl.DrawRectangleLinesEx(g.cellRect(x, y), 1, colorGridLine)
		}
	}
}

// drawCounters prints the remaining passes next to each switch edge, on the
// side a train routed in that direction leaves by.
func (g *Game) drawCounters() {
	for _, sw := range g.snap.Switches {
		r := g.cellRect(sw.Pos.X, sw.Pos.Y)
		size := int32(r.Height * 0.25)
		if size < 8 {
			size = 8
		}
		for d := grid.Direction(0); d < grid.NumDirections; d++ {
			edge := d.Delta()
			x := r.X + r.Width/2 + float32(edge.X)*r.Width*0.35
			y := r.Y + r.Height/2 + float32(edge.Y)*r.Height*0.35
			rl.DrawText(fmt.Sprintf("%d", sw.Counter[d]), int32(x)-size/4, int32(y)-size/2, size, rl.White)
		}
	}
}

// drawCandidates links each Active train to the cell it will try next.
func (g *Game) drawCandidates() {
	for _, tv := range g.snap.Trains {
		if tv.State != components.StateActive || tv.Candidate == tv.Pos {
			continue
		}
		from := g.cellCenter(tv.Pos)
		to := g.cellCenter(tv.Candidate)
		color := ui.TrainColor(tv.Color)
		color.A = 160
		rl.DrawLineEx(from, to, 2, color)
		rl.DrawCircleV(to, 3, color)
	}
}

// drawDestinations links each unfinished train to its destination.
func (g *Game) drawDestinations() {
	for _, tv := range g.snap.Trains {
		if tv.State == components.StateFinished {
			continue
		}
		from := tv.Pos
		if tv.State == components.StatePending {
			from = tv.Spawn
		}
		color := ui.TrainColor(tv.Color)
		color.A = 90
		rl.DrawLineEx(g.cellCenter(from), g.cellCenter(tv.Destination), 1, color)
	}
}

func (g *Game) drawTrainIDs() {
	for _, tv := range g.snap.Trains {
		if tv.State != components.StateActive {
			continue
		}
		c := g.cellCenter(tv.Pos)
		rl.DrawText(fmt.Sprintf("%d", tv.ID), int32(c.X)+4, int32(c.Y)-16, 12, rl.White)
	}
}
