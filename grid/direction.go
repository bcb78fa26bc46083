package grid

import (
	"fmt"
	"strings"
)

// Direction is one of the four cardinal headings.
// Values match the level file encoding (clockwise from up).
type Direction uint8

const (
	Up Direction = iota
	Right
	Down
	Left

	NumDirections = 4
)

var directionNames = [NumDirections]string{"up", "right", "down", "left"}

func (d Direction) String() string {
	if d < NumDirections {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", d)
}

// Valid reports whether d is one of the four cardinal headings.
func (d Direction) Valid() bool {
	return d < NumDirections
}

// Delta returns the one-cell offset for the direction. Y grows downward.
func (d Direction) Delta() Point {
	switch d {
	case Up:
		return Point{0, -1}
	case Right:
		return Point{1, 0}
	case Down:
		return Point{0, 1}
	case Left:
		return Point{-1, 0}
	}
	return Point{}
}

// Opposite returns the reverse heading.
func (d Direction) Opposite() Direction {
	return (d + 2) % NumDirections
}

// ParseDirection accepts 0-3, U/R/D/L, N/E/S/W or the full lowercase names.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "u", "n", "up", "north":
		return Up, nil
	case "1", "r", "e", "right", "east":
		return Right, nil
	case "2", "d", "s", "down", "south":
		return Down, nil
	case "3", "l", "w", "left", "west":
		return Left, nil
	}
	return 0, fmt.Errorf("invalid direction %q", s)
}

// MarshalText encodes the direction as its name (used by CSV and YAML output).
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes anything ParseDirection accepts.
func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Point is a grid coordinate: X is the column, Y the row.
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add returns p offset by q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Step returns the neighbouring cell in direction d.
func (p Point) Step(d Direction) Point {
	return p.Add(d.Delta())
}

// Manhattan returns |dx| + |dy| between p and q.
func (p Point) Manhattan(q Point) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
