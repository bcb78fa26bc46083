package systems

import (
	"testing"

	"github.com/pthm-cable/rails/components"
	"github.com/pthm-cable/rails/grid"
)

func TestNextDirection(t *testing.T) {
	g, err := grid.FromRows([]string{
		"-/\\+A",
		"SD=|B",
	})
	if err != nil {
		t.Fatal(err)
	}
	b := newBank(t,
		SwitchSpec{Letter: 'A', Pos: grid.Pt(4, 0), State: SwitchDiverging},
		SwitchSpec{Letter: 'B', Pos: grid.Pt(4, 1), State: SwitchStraight},
	)

	tests := []struct {
		name    string
		pos     grid.Point
		heading grid.Direction
		want    grid.Direction
	}{
		{"straight keeps heading", grid.Pt(0, 0), grid.Right, grid.Right},
		{"slash right->up", grid.Pt(1, 0), grid.Right, grid.Up},
		{"slash down->left", grid.Pt(1, 0), grid.Down, grid.Left},
		{"slash left->down", grid.Pt(1, 0), grid.Left, grid.Down},
		{"slash up->right", grid.Pt(1, 0), grid.Up, grid.Right},
		{"backslash right->down", grid.Pt(2, 0), grid.Right, grid.Down},
		{"backslash up->left", grid.Pt(2, 0), grid.Up, grid.Left},
		{"backslash left->up", grid.Pt(2, 0), grid.Left, grid.Up},
		{"backslash down->right", grid.Pt(2, 0), grid.Down, grid.Right},
		{"intersection keeps heading", grid.Pt(3, 0), grid.Down, grid.Down},
		{"diverging switch deflects", grid.Pt(4, 0), grid.Right, grid.Down},
		{"diverging switch deflects up", grid.Pt(4, 0), grid.Up, grid.Left},
		{"straight switch keeps heading", grid.Pt(4, 1), grid.Right, grid.Right},
		{"spawn keeps heading", grid.Pt(0, 1), grid.Left, grid.Left},
		{"destination keeps heading", grid.Pt(1, 1), grid.Up, grid.Up},
		{"safety keeps heading", grid.Pt(2, 1), grid.Right, grid.Right},
		{"vertical keeps heading", grid.Pt(3, 1), grid.Down, grid.Down},
		{"off grid keeps heading", grid.Pt(-1, 0), grid.Left, grid.Left},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextDirection(g, b, tt.pos, tt.heading); got != tt.want {
				t.Errorf("NextDirection(%v, %v) = %v, want %v", tt.pos, tt.heading, got, tt.want)
			}
		})
	}
}

func TestNextDirectionUnknownSwitchIsPlainTrack(t *testing.T) {
	g, err := grid.FromRows([]string{"-Q-"})
	if err != nil {
		t.Fatal(err)
	}
	b := newBank(t)
	if got := NextDirection(g, b, grid.Pt(1, 0), grid.Right); got != grid.Right {
		t.Errorf("unregistered switch deflected to %v", got)
	}
}

func TestRouteWritesCandidateOnly(t *testing.T) {
	g, err := grid.FromRows([]string{"--/", "---"})
	if err != nil {
		t.Fatal(err)
	}
	m := components.Motion{Pos: grid.Pt(2, 0), Prev: grid.Pt(1, 0), Heading: grid.Right}
	Route(g, nil, &m)

	if m.Next != grid.Up {
		t.Errorf("Next = %v, want up", m.Next)
	}
	// Off-grid candidates are not clamped.
	if m.Candidate != grid.Pt(2, -1) {
		t.Errorf("Candidate = %v, want (2,-1)", m.Candidate)
	}
	if m.Pos != grid.Pt(2, 0) || m.Heading != grid.Right || m.Prev != grid.Pt(1, 0) {
		t.Errorf("Route mutated position state: %+v", m)
	}
}
