package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/rails/camera"
	"github.com/pthm-cable/rails/components"
	"github.com/pthm-cable/rails/grid"
	"github.com/pthm-cable/rails/systems"
	"github.com/pthm-cable/rails/ui"
)

var (
	colorBackground = rl.Color{R: 18, G: 22, B: 26, A: 255}
	colorEmpty      = rl.Color{R: 28, G: 33, B: 38, A: 255}
	colorRail       = rl.Color{R: 170, G: 170, B: 160, A: 255}
	colorSafety     = rl.Color{R: 240, G: 200, B: 60, A: 255}
	colorSpawn      = rl.Color{R: 60, G: 140, B: 80, A: 255}
	colorDest       = rl.Color{R: 60, G: 100, B: 170, A: 255}
	colorStraight   = rl.Color{R: 120, G: 120, B: 130, A: 255}
	colorDiverging  = rl.Color{R: 220, G: 130, B: 50, A: 255}
	colorGridLine   = rl.Color{R: 50, G: 56, B: 62, A: 255}
	colorSelected   = rl.Color{R: 255, G: 255, B: 255, A: 200}
)

// Draw renders the grid, trains, overlays and UI.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(colorBackground)

	g.drawTiles()
	g.drawActiveOverlays()
	g.drawTrains()
	g.drawSelection()
	g.drawUI()

	rl.EndDrawing()
}

// cellRect returns the on-screen rectangle of a grid cell.
func (g *Game) cellRect(x, y int) rl.Rectangle {
	sx, sy := g.camera.WorldToScreen(float32(x)*g.tileSize, float32(y)*g.tileSize)
	size := g.tileSize * g.camera.Zoom
	return rl.Rectangle{X: camera.Round(sx), Y: camera.Round(sy), Width: camera.Round(size), Height: camera.Round(size)}
}

// cellCenter returns the on-screen center of a grid cell.
func (g *Game) cellCenter(p grid.Point) rl.Vector2 {
	sx, sy := g.camera.WorldToScreen((float32(p.X)+0.5)*g.tileSize, (float32(p.Y)+0.5)*g.tileSize)
	return rl.Vector2{X: sx, Y: sy}
}

func (g *Game) drawTiles() {
	gr := g.sim.Grid()
	switches := make(map[grid.Point]systems.SwitchState, len(g.snap.Switches))
	for _, sw := range g.snap.Switches {
		switches[sw.Pos] = sw.State
	}

	for y := 0; y < gr.Rows(); y++ {
		for x := 0; x < gr.Cols(); x++ {
			wx, wy := float32(x)*g.tileSize, float32(y)*g.tileSize
			if !g.camera.IsVisible(wx, wy, g.tileSize, g.tileSize) {
				continue
			}
			t, err := gr.TileAt(x, y)
			if err != nil {
				continue
			}
			g.drawTile(g.cellRect(x, y), t, switches[grid.Pt(x, y)])
		}
	}
}

// drawTile draws one cell's track.
func (g *Game) drawTile(r rl.Rectangle, t grid.Tile, state systems.SwitchState) {
	rl.DrawRectangleRec(r, colorEmpty)

	thick := r.Width / 8
	if thick < 1 {
		thick = 1
	}
	left := rl.Vector2{X: r.X, Y: r.Y + r.Height/2}
	right := rl.Vector2{X: r.X + r.Width, Y: r.Y + r.Height/2}
	top := rl.Vector2{X: r.X + r.Width/2, Y: r.Y}
	bottom := rl.Vector2{X: r.X + r.Width/2, Y: r.Y + r.Height}

	switch t.Kind {
	case grid.KindHorizontal:
		rl.DrawLineEx(left, right, thick, colorRail)
	case grid.KindSafety:
		rl.DrawLineEx(left, right, thick*1.8, colorSafety)
	case grid.KindVertical:
		rl.DrawLineEx(top, bottom, thick, colorRail)
	case grid.KindDiagonalUp:
		rl.DrawLineEx(rl.Vector2{X: r.X, Y: r.Y + r.Height}, rl.Vector2{X: r.X + r.Width, Y: r.Y}, thick, colorRail)
	case grid.KindDiagonalDown:
		rl.DrawLineEx(rl.Vector2{X: r.X, Y: r.Y}, rl.Vector2{X: r.X + r.Width, Y: r.Y + r.Height}, thick, colorRail)
	case grid.KindIntersection:
		rl.DrawLineEx(left, right, thick, colorRail)
		rl.DrawLineEx(top, bottom, thick, colorRail)
	case grid.KindSpawn:
		rl.DrawRectangleRec(inset(r, 0.15), colorSpawn)
		drawGlyph(r, "S", rl.White)
	case grid.KindDestination:
		rl.DrawRectangleRec(inset(r, 0.15), colorDest)
		drawGlyph(r, "D", rl.White)
	case grid.KindSwitch:
		c := colorStraight
		if state == systems.SwitchDiverging {
			c = colorDiverging
		}
		rl.DrawRectangleRec(inset(r, 0.1), c)
		drawGlyph(r, string(t.Letter), rl.Black)
	}
}

// drawTrains draws every Active train as a disc with a heading marker.
func (g *Game) drawTrains() {
	for _, tv := range g.snap.Trains {
		if tv.State != components.StateActive {
			continue
		}
		c := g.cellCenter(tv.Pos)
		radius := g.tileSize * g.camera.Zoom * 0.32
		color := ui.TrainColor(tv.Color)
		rl.DrawCircleV(c, radius, color)
		rl.DrawCircleLinesV(c, radius, rl.Black)

		d := tv.Heading.Delta()
		tip := rl.Vector2{X: c.X + float32(d.X)*radius, Y: c.Y + float32(d.Y)*radius}
		rl.DrawLineEx(c, tip, radius/3, rl.Black)
	}
}

func (g *Game) drawSelection() {
	if g.selected == nil {
		return
	}
	r := g.cellRect(g.selected.X, g.selected.Y)
	rl.DrawRectangleLinesEx(r, 2, colorSelected)
}

// drawUI draws the HUD, side panels and control bar, and applies any
// control bar action.
func (g *Game) drawUI() {
	g.hud.Draw(ui.HUDData{
		Title:    "Rails",
		Level:    g.sim.Name(),
		Tick:     g.snap.Tick,
		Counts:   g.snap.Counts,
		Arrived:  g.countOutcome(components.OutcomeArrived),
		Derailed: g.countOutcome(components.OutcomeDerailed),
		Held:     len(g.last.Held),
		Waiting:  len(g.last.Waiting),
		Speed:    g.pacer.Speed(),
		FPS:      rl.GetFPS(),
		Paused:   g.paused,
		Complete: g.snap.Complete,
		Stalled:  g.sim.Stalled(),
	})

	panelY := int32(100)
	if g.controls.IsVisible() {
		g.controls.SetPosition(10, panelY)
		panelY = g.controls.Draw(g.overlays) + 10
	}
	if g.selected != nil {
		g.inspector.SetPosition(10, panelY)
		g.inspector.Draw(ui.NewInspectorData(g.sim.Grid(), g.snap, *g.selected))
	}

	g.switchPanel.Draw(g.snap.Switches)

	if g.showPerf && g.perf != nil {
		stats := g.perf.Stats()
		y := int32(10)
		if n := len(g.snap.Switches); n > 0 {
			y += g.switchPanel.Height(n) + 10
		}
		g.perfPanel.SetPosition(int32(g.screenWidth)-260, y)
		g.perfPanel.Draw(ui.PerfPanelData{
			PhaseTimes: stats.PhaseAvg,
			Total:      stats.AvgTickDuration,
			Registry:   g.phases,
		})
	}

	action, speed := g.simControls.Draw(ui.SimControlsData{
		Paused:   g.paused,
		Complete: g.Halted(),
		Speed:    g.pacer.Speed(),
		MaxSpeed: g.pacer.MaxSpeed(),
	})
	g.pacer.SetSpeed(speed)
	switch action {
	case ui.ActionTogglePause:
		g.paused = !g.paused
	case ui.ActionStep:
		g.paused = true
		g.step()
	case ui.ActionReset:
		g.Reset()
	}

	g.hud.DrawControls(int32(g.screenWidth), int32(g.screenHeight),
		"SPACE: Run/Pause | N: Step | R: Reset | < >: Speed | LMB: Inspect | RMB: Flip switch / safety | O: Overlays | F: Perf")
}

func (g *Game) countOutcome(o components.Outcome) int {
	n := 0
	for _, tv := range g.snap.Trains {
		if tv.State == components.StateFinished && tv.Outcome == o {
			n++
		}
	}
	return n
}

// inset shrinks r by frac of its size on every side.
func inset(r rl.Rectangle, frac float32) rl.Rectangle {
	dx := r.Width * frac
	dy := r.Height * frac
	return rl.Rectangle{X: r.X + dx, Y: r.Y + dy, Width: r.Width - 2*dx, Height: r.Height - 2*dy}
}

// drawGlyph centers text in r, sized to the cell.
func drawGlyph(r rl.Rectangle, text string, color rl.Color) {
	size := int32(r.Height * 0.6)
	if size < 6 {
		return
	}
	w := rl.MeasureText(text, size)
	rl.DrawText(text, int32(r.X+r.Width/2)-w/2, int32(r.Y+r.Height/2)-size/2, size, color)
}
