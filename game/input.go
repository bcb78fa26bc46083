package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/rails/grid"
	"github.com/pthm-cable/rails/ui"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Single step while paused
	if rl.IsKeyPressed(rl.KeyN) && g.paused && !g.Halted() {
		g.step()
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.Reset()
	}

	// Speed control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		g.pacer.SetSpeed(g.pacer.Speed() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		g.pacer.SetSpeed(g.pacer.Speed() + 1)
	}

	if rl.IsKeyPressed(rl.KeyO) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyB) {
		g.SaveSnapshot()
	}
	if rl.IsKeyPressed(rl.KeyEscape) {
		g.selected = nil
	}

	if key := rl.GetKeyPressed(); key != 0 {
		g.overlays.HandleKeyPress(key)
	}

	g.handleCameraInput()
	g.handleMouse()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.simControls.SetPosition(10, int32(h)-40-ui.SimControlsHeight)
	g.switchPanel.SetPosition(int32(w)-330, 10)
	g.perfPanel.SetPosition(int32(w)-260, 10)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / g.camera.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	// Middle-drag pans
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		g.camera.Pan(-d.X, -d.Y)
	}

	// Zoom toward the cursor
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		m := rl.GetMousePosition()
		g.camera.ZoomAt(1+wheel*0.1, m.X, m.Y)
	}

	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handleMouse selects cells with the left button and edits them with the
// right one: switches flip, horizontal straights toggle their safety mark.
// Edits land between ticks.
func (g *Game) handleMouse() {
	m := rl.GetMousePosition()
	if g.simControls.Contains(m.X, m.Y) {
		return
	}

	left := rl.IsMouseButtonPressed(rl.MouseButtonLeft)
	right := rl.IsMouseButtonPressed(rl.MouseButtonRight)
	if !left && !right {
		return
	}

	x, y, ok := g.camera.ScreenToTile(m.X, m.Y, g.tileSize)
	if !ok {
		if left {
			g.selected = nil
		}
		return
	}
	cell := grid.Pt(x, y)

	if left {
		g.selected = &cell
		return
	}

	t, err := g.sim.Grid().TileAt(x, y)
	if err != nil {
		return
	}
	switch t.Kind {
	case grid.KindSwitch:
		g.sim.ToggleSwitch(t.Letter)
	case grid.KindHorizontal, grid.KindSafety:
		g.sim.ToggleSafetyTile(x, y)
	default:
		return
	}
	g.refresh()
}
