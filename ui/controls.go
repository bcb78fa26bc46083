package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsPanel renders the overlay toggles list.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the overlay list and returns the Y below it.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	totalItems := 0
	for _, cat := range categories {
		totalItems += len(overlays.ByCategory(cat)) + 1 // +1 for category header
	}
	panelHeight := int32(totalItems)*lineHeight + padding*3 + lineHeight

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding
	rl.DrawText("Overlays", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range categories {
		rl.DrawText(categoryLabel(category), c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}
		y += 4
	}

	return y
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

func categoryLabel(cat string) string {
	switch cat {
	case "track":
		return "Track"
	case "trains":
		return "Trains"
	default:
		return cat
	}
}

// SimAction is a request raised by the simulation control bar.
type SimAction int

const (
	ActionNone SimAction = iota
	ActionTogglePause
	ActionStep
	ActionReset
)

// SimControlsData is the state the control bar reflects.
type SimControlsData struct {
	Paused   bool
	Complete bool
	Speed    int
	MaxSpeed int
}

// SimControls is the raygui button and slider bar for run control.
type SimControls struct {
	renderer *Renderer
	x, y     int32
}

// NewSimControls creates the control bar.
func NewSimControls(x, y int32) *SimControls {
	return &SimControls{renderer: NewRenderer(), x: x, y: y}
}

// SimControlsHeight is the bar's height in pixels.
const SimControlsHeight = 44

// SetPosition updates the bar position.
func (s *SimControls) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Contains reports whether a screen point lies on the bar, so the caller can
// keep clicks on it away from the grid.
func (s *SimControls) Contains(px, py float32) bool {
	return px >= float32(s.x) && px < float32(s.x+s.width()) &&
		py >= float32(s.y) && py < float32(s.y+SimControlsHeight)
}

func (s *SimControls) width() int32 { return 470 }

// Draw renders the bar and returns the clicked action and the slider speed.
func (s *SimControls) Draw(data SimControlsData) (SimAction, int) {
	r := s.renderer
	r.DrawPanel(s.x, s.y, s.width(), SimControlsHeight)

	x := float32(s.x + r.Theme.Padding)
	y := float32(s.y + 7)
	action := ActionNone

	label := "Pause"
	if data.Paused {
		label = "Run"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 70, Height: 30}, label) {
		action = ActionTogglePause
	}
	x += 80

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 70, Height: 30}, "Step") && !data.Complete {
		action = ActionStep
	}
	x += 80

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 70, Height: 30}, "Reset") {
		action = ActionReset
	}
	x += 110

	maxSpeed := data.MaxSpeed
	if maxSpeed < 1 {
		maxSpeed = 1
	}
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: y + 5, Width: 120, Height: 20},
		"Speed", fmt.Sprintf("%dx", data.Speed),
		float32(data.Speed), 1, float32(maxSpeed),
	)
	speed := int(v + 0.5)
	if speed < 1 {
		speed = 1
	}
	return action, speed
}
