package systems

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pthm-cable/rails/grid"
)

// TestArbitrate verifies priority resolution of contested cells.
func TestArbitrate(t *testing.T) {
	tests := []struct {
		name          string
		claims        []Claim
		wantCandidate []grid.Point
		wantKinds     []ConflictKind
		wantWinners   []int
	}{
		{
			name: "no conflict",
			claims: []Claim{
				{ID: 0, Current: grid.Pt(0, 0), Candidate: grid.Pt(1, 0), Destination: grid.Pt(9, 0)},
				{ID: 1, Current: grid.Pt(0, 2), Candidate: grid.Pt(1, 2), Destination: grid.Pt(9, 2)},
			},
			wantCandidate: []grid.Point{grid.Pt(1, 0), grid.Pt(1, 2)},
		},
		{
			// X is 3 from its destination, Y is 7: Y falls behind and gets the cell.
			name: "same target farther train wins",
			claims: []Claim{
				{ID: 0, Current: grid.Pt(4, 5), Candidate: grid.Pt(5, 5), Destination: grid.Pt(7, 5)},
				{ID: 1, Current: grid.Pt(5, 4), Candidate: grid.Pt(5, 5), Destination: grid.Pt(5, 11)},
			},
			wantCandidate: []grid.Point{grid.Pt(4, 5), grid.Pt(5, 5)},
			wantKinds:     []ConflictKind{ConflictSameTarget},
			wantWinners:   []int{1},
		},
		{
			name: "same target tie favors lower index",
			claims: []Claim{
				{ID: 0, Current: grid.Pt(4, 5), Candidate: grid.Pt(5, 5), Destination: grid.Pt(8, 5)},
				{ID: 1, Current: grid.Pt(6, 5), Candidate: grid.Pt(5, 5), Destination: grid.Pt(2, 5)},
			},
			wantCandidate: []grid.Point{grid.Pt(5, 5), grid.Pt(6, 5)},
			wantKinds:     []ConflictKind{ConflictSameTarget},
			wantWinners:   []int{0},
		},
		{
			name: "swap",
			claims: []Claim{
				{ID: 0, Current: grid.Pt(2, 0), Candidate: grid.Pt(3, 0), Destination: grid.Pt(4, 0)},
				{ID: 1, Current: grid.Pt(3, 0), Candidate: grid.Pt(2, 0), Destination: grid.Pt(0, 0)},
			},
			wantCandidate: []grid.Point{grid.Pt(2, 0), grid.Pt(2, 0)},
			wantKinds:     []ConflictKind{ConflictSwap},
			wantWinners:   []int{1},
		},
		{
			name: "three way same target",
			claims: []Claim{
				{ID: 0, Current: grid.Pt(1, 2), Candidate: grid.Pt(2, 2), Destination: grid.Pt(3, 2)},
				{ID: 1, Current: grid.Pt(2, 1), Candidate: grid.Pt(2, 2), Destination: grid.Pt(2, 9)},
				{ID: 2, Current: grid.Pt(3, 2), Candidate: grid.Pt(2, 2), Destination: grid.Pt(0, 2)},
			},
			// (0,1): 1 wins. (0,2): 0 already holds, no conflict left.
			// (1,2): 1 (dist 8) beats 2 (dist 3).
			wantCandidate: []grid.Point{grid.Pt(1, 2), grid.Pt(2, 2), grid.Pt(3, 2)},
			wantKinds:     []ConflictKind{ConflictSameTarget, ConflictSameTarget},
			wantWinners:   []int{1, 1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conflicts := Arbitrate(tc.claims)

			got := make([]grid.Point, len(tc.claims))
			for i, c := range tc.claims {
				got[i] = c.Candidate
			}
			if diff := cmp.Diff(tc.wantCandidate, got); diff != "" {
				t.Errorf("candidates (-want +got):\n%s", diff)
			}

			var kinds []ConflictKind
			var winners []int
			for _, c := range conflicts {
				kinds = append(kinds, c.Kind)
				winners = append(winners, c.Winner)
			}
			if diff := cmp.Diff(tc.wantKinds, kinds); diff != "" {
				t.Errorf("kinds (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantWinners, winners); diff != "" {
				t.Errorf("winners (-want +got):\n%s", diff)
			}
		})
	}
}

func TestArbitrateDeterministic(t *testing.T) {
	base := []Claim{
		{ID: 0, Current: grid.Pt(0, 1), Candidate: grid.Pt(1, 1), Destination: grid.Pt(5, 1)},
		{ID: 1, Current: grid.Pt(1, 0), Candidate: grid.Pt(1, 1), Destination: grid.Pt(1, 5)},
		{ID: 2, Current: grid.Pt(2, 1), Candidate: grid.Pt(1, 1), Destination: grid.Pt(-3, 1)},
	}
	run := func() []Claim {
		c := append([]Claim(nil), base...)
		Arbitrate(c)
		return c
	}
	first := run()
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(first, run()); diff != "" {
			t.Fatalf("run %d differs (-first +got):\n%s", i, diff)
		}
	}
}

func TestSettle(t *testing.T) {
	t.Run("mover into held cell is stopped", func(t *testing.T) {
		claims := []Claim{
			{ID: 0, Current: grid.Pt(2, 0), Candidate: grid.Pt(2, 0)},
			{ID: 1, Current: grid.Pt(1, 0), Candidate: grid.Pt(2, 0)},
		}
		stopped := Settle(claims)
		if diff := cmp.Diff([]int{1}, stopped); diff != "" {
			t.Errorf("stopped (-want +got):\n%s", diff)
		}
		if !claims[1].Holding() {
			t.Error("train 1 still moving into occupied cell")
		}
	})

	t.Run("cascade down a queue", func(t *testing.T) {
		// Ids ordered so a single sweep is not enough.
		claims := []Claim{
			{ID: 0, Current: grid.Pt(0, 0), Candidate: grid.Pt(1, 0)},
			{ID: 1, Current: grid.Pt(1, 0), Candidate: grid.Pt(2, 0)},
			{ID: 2, Current: grid.Pt(2, 0), Candidate: grid.Pt(2, 0)},
		}
		Settle(claims)
		for _, c := range claims {
			if !c.Holding() {
				t.Errorf("train %d moving, want held", c.ID)
			}
		}
	})

	t.Run("following trains both move", func(t *testing.T) {
		claims := []Claim{
			{ID: 0, Current: grid.Pt(0, 0), Candidate: grid.Pt(1, 0)},
			{ID: 1, Current: grid.Pt(1, 0), Candidate: grid.Pt(2, 0)},
		}
		if stopped := Settle(claims); len(stopped) != 0 {
			t.Errorf("stopped %v, want none", stopped)
		}
	})

	t.Run("swap winner facing held loser", func(t *testing.T) {
		claims := []Claim{
			{ID: 0, Current: grid.Pt(2, 0), Candidate: grid.Pt(3, 0), Destination: grid.Pt(4, 0)},
			{ID: 1, Current: grid.Pt(3, 0), Candidate: grid.Pt(2, 0), Destination: grid.Pt(0, 0)},
		}
		Arbitrate(claims)
		Settle(claims)
		if claims[0].Candidate == claims[1].Candidate {
			t.Errorf("both trains end on %v", claims[0].Candidate)
		}
	})
}
