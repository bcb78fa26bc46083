package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/rails/components"
	"github.com/pthm-cable/rails/grid"
	"github.com/pthm-cable/rails/sim"
)

// InspectorData holds all the data needed to render the inspector panel.
type InspectorData struct {
	Cell   grid.Point
	Tile   grid.Tile
	Switch *sim.SwitchView // nil unless the cell is a switch
	Trains []sim.TrainView // trains standing on, spawning at or bound for the cell
}

// NewInspectorData collects what the snapshot knows about one cell.
func NewInspectorData(g *grid.Grid, snap sim.Snapshot, cell grid.Point) InspectorData {
	data := InspectorData{Cell: cell}
	if t, err := g.TileAt(cell.X, cell.Y); err == nil {
		data.Tile = t
	}
	for i := range snap.Switches {
		if snap.Switches[i].Pos == cell {
			sw := snap.Switches[i]
			data.Switch = &sw
			break
		}
	}
	for _, tv := range snap.Trains {
		onCell := tv.State == components.StateActive && tv.Pos == cell
		waiting := tv.State == components.StatePending && tv.Spawn == cell
		if onCell || waiting || tv.Destination == cell {
			data.Trains = append(data.Trains, tv)
		}
	}
	return data
}

// Inspector renders the selected cell's details.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Height returns the panel height needed for data.
func (ins *Inspector) Height(data InspectorData) int32 {
	t := ins.renderer.Theme
	lines := int32(3)
	if data.Switch != nil {
		lines += 2 + grid.NumDirections
	}
	lines += int32(len(data.Trains)) * 3
	return t.Padding*2 + lines*(t.LineHeight+2)
}

// Draw renders the inspector panel for the given data.
func (ins *Inspector) Draw(data InspectorData) int32 {
	r := ins.renderer
	padding := r.Theme.Padding
	x := ins.x + padding
	contentWidth := ins.width - padding*2

	r.DrawPanel(ins.x, ins.y, ins.width, ins.Height(data))
	y := ins.y + padding

	rl.DrawText(fmt.Sprintf("Cell %s", data.Cell), x, y, 16, rl.White)
	y += r.Theme.LineHeight + 4
	y = r.DrawLabelValue(x, y, "Tile", fmt.Sprintf("%s '%c'", data.Tile.Kind, data.Tile.Glyph()))

	if sw := data.Switch; sw != nil {
		y = r.DrawSectionHeader(x, y+4, fmt.Sprintf("Switch %c", sw.Letter))
		state := sw.State.String()
		if sw.FlipPending {
			state += " (flip pending)"
		}
		y = r.DrawLabelValue(x, y, "State", state)
		for d := grid.Direction(0); d < grid.NumDirections; d++ {
			y = r.DrawCounterBar(x, y, "to "+d.String(), sw.Counter[d], sw.K[d], contentWidth)
		}
	}

	for _, tv := range data.Trains {
		y = r.DrawSectionHeader(x, y+4, fmt.Sprintf("Train %d", tv.ID))
		status := tv.State.String()
		if tv.Outcome != components.OutcomeNone {
			status += ", " + tv.Outcome.String()
		}
		y = r.DrawLabelValue(x, y, "State", status)
		y = r.DrawLabelValue(x, y, "Route", fmt.Sprintf("%s -> %s heading %s", tv.Pos, tv.Destination, tv.Heading))
	}

	return y
}
