package systems

import "github.com/pthm-cable/rails/grid"

// ConflictKind classifies a contested move.
type ConflictKind uint8

const (
	ConflictSameTarget ConflictKind = iota // both trains want the same cell
	ConflictSwap                           // head-on exchange of cells
)

func (k ConflictKind) String() string {
	if k == ConflictSwap {
		return "swap"
	}
	return "same_target"
}

// Claim is one Active train's bid for its next cell.
type Claim struct {
	ID          int
	Current     grid.Point
	Candidate   grid.Point
	Destination grid.Point
}

// Holding reports whether the claim keeps the train in place.
func (c *Claim) Holding() bool {
	return c.Candidate == c.Current
}

// remaining is the Manhattan distance from the train's current cell to its
// destination. Current positions are never rewritten during arbitration.
func (c *Claim) remaining() int {
	return c.Current.Manhattan(c.Destination)
}

// Conflict records one resolved pair.
type Conflict struct {
	Kind       ConflictKind
	Winner     int // train id granted the move
	Loser      int // train id held in place
	WinnerDist int
	LoserDist  int
	Cell       grid.Point // contested cell (the winner's candidate)
}

// Arbitrate resolves every conflicting pair in a single pass over i<j.
// claims must be ordered by ascending train id. The train farther from its
// destination is granted the move; ties go to the lower index. The loser's
// candidate is overwritten with its current cell.
func Arbitrate(claims []Claim) []Conflict {
	var conflicts []Conflict
	for i := 0; i < len(claims); i++ {
		for j := i + 1; j < len(claims); j++ {
			a, b := &claims[i], &claims[j]

			var kind ConflictKind
			switch {
			case a.Candidate == b.Candidate:
				kind = ConflictSameTarget
			case a.Candidate == b.Current && b.Candidate == a.Current:
				kind = ConflictSwap
			default:
				continue
			}

			distA, distB := a.remaining(), b.remaining()
			winner, loser := a, b
			winDist, loseDist := distA, distB
			if distB > distA {
				winner, loser = b, a
				winDist, loseDist = distB, distA
			}

			loser.Candidate = loser.Current
			conflicts = append(conflicts, Conflict{
				Kind:       kind,
				Winner:     winner.ID,
				Loser:      loser.ID,
				WinnerDist: winDist,
				LoserDist:  loseDist,
				Cell:       winner.Candidate,
			})
		}
	}
	return conflicts
}

// Settle enforces single occupancy after arbitration. A holding train keeps
// its cell unconditionally; any mover whose candidate is such a cell is held
// as well, repeated until nothing changes. Returns the ids held here.
func Settle(claims []Claim) []int {
	held := make(map[grid.Point]bool, len(claims))
	for i := range claims {
		if claims[i].Holding() {
			held[claims[i].Current] = true
		}
	}

	var stopped []int
	for changed := true; changed; {
		changed = false
		for i := range claims {
			c := &claims[i]
			if c.Holding() || !held[c.Candidate] {
				continue
			}
			c.Candidate = c.Current
			held[c.Current] = true
			stopped = append(stopped, c.ID)
			changed = true
		}
	}
	return stopped
}
