package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/rails/grid"
	"github.com/pthm-cable/rails/sim"
	"github.com/pthm-cable/rails/systems"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title    string
	Level    string
	Tick     int
	Counts   systems.Counts
	Arrived  int
	Derailed int
	Held     int // trains held in the last tick
	Waiting  int // trains blocked at their spawn in the last tick
	Speed    int
	FPS      int32
	Paused   bool
	Complete bool
	Stalled  bool
}

// HUD renders the main heads-up display.
type HUD struct{}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(fmt.Sprintf("%s - %s", data.Title, data.Level), 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Pending: %d | Active: %d | Arrived: %d | Derailed: %d",
			data.Counts.Pending, data.Counts.Active, data.Arrived, data.Derailed),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | Held: %d | Waiting: %d | Speed: %dx | FPS: %d",
			data.Tick, data.Held, data.Waiting, data.Speed, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	statusText, statusColor := "Running", rl.Yellow
	switch {
	case data.Complete:
		statusText, statusColor = "COMPLETE", rl.Green
	case data.Stalled:
		statusText, statusColor = "DEADLOCKED", rl.Red
	case data.Paused:
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, statusColor)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	PhaseTimes map[string]time.Duration
	Total      time.Duration
	Registry   *systems.PhaseRegistry
}

// PerfPanel renders the tick phase timing panel.
type PerfPanel struct {
	x, y int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel with phases in execution order.
func (p *PerfPanel) Draw(data PerfPanelData) {
	x := p.x
	y := p.y

	rl.DrawText("Tick Phases", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Total: %s", data.Total.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, info := range data.Registry.All() {
		avg := data.PhaseTimes[info.ID]
		pct := float64(0)
		if data.Total > 0 {
			pct = float64(avg) / float64(data.Total) * 100
		}

		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-12s %8s %5.1f%%", info.Name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}

// SwitchPanel lists every switch with its state and counters.
type SwitchPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewSwitchPanel creates a switch list panel.
func NewSwitchPanel(x, y, width int32) *SwitchPanel {
	return &SwitchPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (s *SwitchPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Height returns the panel height for n switches.
func (s *SwitchPanel) Height(n int) int32 {
	t := s.renderer.Theme
	return t.Padding*2 + t.LineHeight + 4 + int32(n)*t.LineHeight
}

// Draw renders one line per switch.
func (s *SwitchPanel) Draw(switches []sim.SwitchView) {
	if len(switches) == 0 {
		return
	}
	r := s.renderer
	r.DrawPanel(s.x, s.y, s.width, s.Height(len(switches)))

	y := s.y + r.Theme.Padding
	y = r.DrawSectionHeader(s.x+r.Theme.Padding, y, "Switches") + 4

	for _, sw := range switches {
		color := r.Theme.ValueColor
		if sw.FlipPending {
			color = rl.Orange
		}
		text := fmt.Sprintf("%c %-9s %s", sw.Letter, sw.State, counterSummary(sw))
		rl.DrawText(text, s.x+r.Theme.Padding, y, r.Theme.FontSize, color)
		y += r.Theme.LineHeight
	}
}

// counterSummary renders the counters as "up:1/2 right:2/2 ...".
func counterSummary(sw sim.SwitchView) string {
	out := ""
	for d := grid.Direction(0); d < grid.NumDirections; d++ {
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%s:%d/%d", d, sw.Counter[d], sw.K[d])
	}
	return out
}
