// Package ui draws the panels of the graphical frontend: HUD, controls,
// overlay toggles and the cell inspector.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// PanelAnchor specifies where a panel is anchored on screen.
type PanelAnchor int

const (
	AnchorTopLeft PanelAnchor = iota
	AnchorTopRight
	AnchorBottomLeft
	AnchorBottomRight
)

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	BarFillLow     rl.Color
	BarFillMedium  rl.Color
	BarFillHigh    rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.LightGray,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		BarFillLow:     rl.Color{R: 200, G: 100, B: 100, A: 255},
		BarFillMedium:  rl.Color{R: 200, G: 180, B: 100, A: 255},
		BarFillHigh:    rl.Color{R: 100, G: 200, B: 100, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     80,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}

// Anchor returns the top-left corner of a w×h panel placed at anchor with a
// margin from the screen edges.
func Anchor(anchor PanelAnchor, w, h, screenW, screenH, margin int32) (x, y int32) {
	switch anchor {
	case AnchorTopRight:
		return screenW - w - margin, margin
	case AnchorBottomLeft:
		return margin, screenH - h - margin
	case AnchorBottomRight:
		return screenW - w - margin, screenH - h - margin
	}
	return margin, margin
}

// trainPalette holds the colors a level's color index selects from.
var trainPalette = []rl.Color{
	{R: 230, G: 80, B: 70, A: 255},
	{R: 80, G: 160, B: 230, A: 255},
	{R: 240, G: 200, B: 60, A: 255},
	{R: 110, G: 200, B: 110, A: 255},
	{R: 200, G: 110, B: 220, A: 255},
	{R: 240, G: 140, B: 50, A: 255},
	{R: 90, G: 210, B: 200, A: 255},
	{R: 220, G: 220, B: 220, A: 255},
}

// TrainColor maps a train's color index onto the palette.
func TrainColor(index int) rl.Color {
	if index < 0 {
		index = -index
	}
	return trainPalette[index%len(trainPalette)]
}
