package grid

import "fmt"

// Kind classifies a grid cell.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindHorizontal
	KindVertical
	KindDiagonalUp   // '/'
	KindDiagonalDown // '\'
	KindIntersection
	KindSwitch
	KindSpawn
	KindDestination
	KindSafety // safety-marked horizontal straight
)

var kindNames = [...]string{
	KindEmpty:        "empty",
	KindHorizontal:   "horizontal",
	KindVertical:     "vertical",
	KindDiagonalUp:   "diagonal-up",
	KindDiagonalDown: "diagonal-down",
	KindIntersection: "intersection",
	KindSwitch:       "switch",
	KindSpawn:        "spawn",
	KindDestination:  "destination",
	KindSafety:       "safety",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Tile is the content of one grid cell.
// Letter is only meaningful for KindSwitch.
type Tile struct {
	Kind   Kind
	Letter byte
}

// Glyphs used by level files and the ASCII dump.
const (
	GlyphEmpty        = '.'
	GlyphHorizontal   = '-'
	GlyphVertical     = '|'
	GlyphDiagonalUp   = '/'
	GlyphDiagonalDown = '\\'
	GlyphIntersection = '+'
	GlyphSpawn        = 'S'
	GlyphDestination  = 'D'
	GlyphSafety       = '='
)

// ParseTile converts a level glyph into a Tile.
// 'S' and 'D' are reserved for spawn and destination, so they never name a switch.
func ParseTile(c byte) (Tile, error) {
	switch c {
	case GlyphEmpty, ' ':
		return Tile{Kind: KindEmpty}, nil
	case GlyphHorizontal:
		return Tile{Kind: KindHorizontal}, nil
	case GlyphVertical:
		return Tile{Kind: KindVertical}, nil
	case GlyphDiagonalUp:
		return Tile{Kind: KindDiagonalUp}, nil
	case GlyphDiagonalDown:
		return Tile{Kind: KindDiagonalDown}, nil
	case GlyphIntersection:
		return Tile{Kind: KindIntersection}, nil
	case GlyphSpawn:
		return Tile{Kind: KindSpawn}, nil
	case GlyphDestination:
		return Tile{Kind: KindDestination}, nil
	case GlyphSafety:
		return Tile{Kind: KindSafety}, nil
	}
	if c >= 'A' && c <= 'Z' {
		return Tile{Kind: KindSwitch, Letter: c}, nil
	}
	return Tile{}, fmt.Errorf("unknown tile glyph %q", c)
}

// Glyph returns the level-file character for the tile.
func (t Tile) Glyph() byte {
	switch t.Kind {
	case KindHorizontal:
		return GlyphHorizontal
	case KindVertical:
		return GlyphVertical
	case KindDiagonalUp:
		return GlyphDiagonalUp
	case KindDiagonalDown:
		return GlyphDiagonalDown
	case KindIntersection:
		return GlyphIntersection
	case KindSwitch:
		return t.Letter
	case KindSpawn:
		return GlyphSpawn
	case KindDestination:
		return GlyphDestination
	case KindSafety:
		return GlyphSafety
	}
	return GlyphEmpty
}

// IsTrack reports whether a train can stand on the tile.
func (t Tile) IsTrack() bool {
	return t.Kind != KindEmpty
}
