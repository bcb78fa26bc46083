package telemetry

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pthm-cable/rails/components"
	"github.com/pthm-cable/rails/sim"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name          string
		values        []float64
		mean, p50, p9 float64
	}{
		{"empty slice", nil, 0, 0, 0},
		{"single element", []float64{5}, 5, 5, 5},
		{"unsorted input", []float64{4, 1, 3, 2}, 2.5, 2, 4},
		{"ten values", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 5.5, 5, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, p50, p90 := Summarize(tt.values)
			if math.Abs(mean-tt.mean) > 1e-9 || p50 != tt.p50 || p90 != tt.p9 {
				t.Errorf("Summarize(%v) = %v, %v, %v; want %v, %v, %v",
					tt.values, mean, p50, p90, tt.mean, tt.p50, tt.p9)
			}
		})
	}
}

func TestSummarizeLeavesInputUnsorted(t *testing.T) {
	values := []float64{3, 1, 2}
	Summarize(values)
	if diff := cmp.Diff([]float64{3, 1, 2}, values); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestComputeRunStats(t *testing.T) {
	snap := sim.Snapshot{
		Tick:     12,
		Complete: false,
		Trains: []sim.TrainView{
			{ID: 0, State: components.StateFinished, Outcome: components.OutcomeArrived, SpawnedTick: 1, FinishTick: 5},
			{ID: 1, State: components.StateFinished, Outcome: components.OutcomeArrived, SpawnedTick: 3, FinishTick: 11, WaitTicks: 2},
			{ID: 2, State: components.StateFinished, Outcome: components.OutcomeDerailed, SpawnedTick: 4, FinishTick: 6},
			{ID: 3, State: components.StateActive, SpawnedTick: 10, FinishTick: -1},
			{ID: 4, State: components.StatePending, SpawnedTick: -1, FinishTick: -1},
		},
	}
	totals := Totals{Conflicts: 3, Holds: 4, Flips: 1}

	got := ComputeRunStats("run-1", "junction", snap, totals)
	want := RunStats{
		RunID:      "run-1",
		Level:      "junction",
		FinalTick:  12,
		Complete:   false,
		Trains:     5,
		Arrived:    2,
		Derailed:   1,
		Unfinished: 2,
		TravelMean: 6,
		TravelP50:  4,
		TravelP90:  8,
		WaitMean:   0.5,
		WaitP90:    2,
		Conflicts:  3,
		Holds:      4,
		Flips:      1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("run stats mismatch (-want +got):\n%s", diff)
	}
}
