package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/rails/systems"
)

// phaseOrder is the order phases appear in logs.
var phaseOrder = systems.NewPhaseRegistry().IDs()

// PerfCollector times the tick phases. Averages are exponentially weighted
// so they follow roughly the last window ticks. It satisfies sim.PhaseTimer.
type PerfCollector struct {
	alpha float64
	now   func() time.Time

	ticks    int
	avgTick  float64 // ns
	peakTick time.Duration
	phaseAvg map[string]float64 // ns

	tickStart  time.Time
	phaseStart time.Time
	phase      string
	current    map[string]time.Duration
}

// NewPerfCollector creates a collector averaging over about window ticks.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{
		alpha:    2 / float64(window+1),
		now:      time.Now,
		phaseAvg: make(map[string]float64),
		current:  make(map[string]time.Duration),
	}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.phase = ""
	clear(p.current)
}

// StartPhase closes the running phase and starts timing the next one.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = phase
}

// EndTick closes the last phase and folds the tick into the averages.
func (p *PerfCollector) EndTick() {
	now := p.now()
	p.closePhase(now)
	p.phase = ""

	d := now.Sub(p.tickStart)
	if d > p.peakTick {
		p.peakTick = d
	}
	p.ticks++
	if p.ticks == 1 {
		p.avgTick = float64(d)
		for phase, v := range p.current {
			p.phaseAvg[phase] = float64(v)
		}
		return
	}

	p.avgTick = p.smooth(p.avgTick, float64(d))
	for phase, avg := range p.phaseAvg {
		if _, ok := p.current[phase]; !ok {
			p.phaseAvg[phase] = p.smooth(avg, 0)
		}
	}
	for phase, v := range p.current {
		p.phaseAvg[phase] = p.smooth(p.phaseAvg[phase], float64(v))
	}
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase != "" {
		p.current[p.phase] += now.Sub(p.phaseStart)
	}
}

func (p *PerfCollector) smooth(avg, sample float64) float64 {
	return avg + p.alpha*(sample-avg)
}

// PerfStats is a point-in-time view of the collector.
type PerfStats struct {
	Ticks            int
	AvgTickDuration  time.Duration
	PeakTickDuration time.Duration
	PhaseAvg         map[string]time.Duration
	PhasePct         map[string]float64 // share of the average tick
	TicksPerSecond   float64
}

// Stats returns the current averages.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		Ticks:            p.ticks,
		AvgTickDuration:  time.Duration(p.avgTick),
		PeakTickDuration: p.peakTick,
		PhaseAvg:         make(map[string]time.Duration, len(p.phaseAvg)),
		PhasePct:         make(map[string]float64, len(p.phaseAvg)),
	}
	for phase, avg := range p.phaseAvg {
		s.PhaseAvg[phase] = time.Duration(avg)
		if p.avgTick > 0 {
			s.PhasePct[phase] = avg / p.avgTick * 100
		}
	}
	if p.avgTick > 0 {
		s.TicksPerSecond = float64(time.Second) / p.avgTick
	}
	return s
}

// LogStats logs the stats at Info level.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("ticks", s.Ticks),
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("peak_tick_us", s.PeakTickDuration.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	for _, phase := range phaseOrder {
		if pct := s.PhasePct[phase]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is the perf.csv row.
type PerfStatsCSV struct {
	WindowEnd     int     `csv:"window_end"`
	Ticks         int     `csv:"ticks"`
	AvgTickUS     int64   `csv:"avg_tick_us"`
	PeakTickUS    int64   `csv:"peak_tick_us"`
	TicksPerSec   float64 `csv:"ticks_per_sec"`
	SpawnPct      float64 `csv:"spawn_pct"`
	RoutePct      float64 `csv:"route_pct"`
	CountersPct   float64 `csv:"counters_pct"`
	QueueFlipsPct float64 `csv:"queue_flips_pct"`
	ArbitratePct  float64 `csv:"arbitrate_pct"`
	CommitPct     float64 `csv:"commit_pct"`
	ApplyFlipsPct float64 `csv:"apply_flips_pct"`
	ArrivalsPct   float64 `csv:"arrivals_pct"`
}

// ToCSV flattens the stats into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:     windowEnd,
		Ticks:         s.Ticks,
		AvgTickUS:     s.AvgTickDuration.Microseconds(),
		PeakTickUS:    s.PeakTickDuration.Microseconds(),
		TicksPerSec:   s.TicksPerSecond,
		SpawnPct:      s.PhasePct[systems.PhaseSpawn],
		RoutePct:      s.PhasePct[systems.PhaseRoute],
		CountersPct:   s.PhasePct[systems.PhaseCounters],
		QueueFlipsPct: s.PhasePct[systems.PhaseQueueFlips],
		ArbitratePct:  s.PhasePct[systems.PhaseArbitrate],
		CommitPct:     s.PhasePct[systems.PhaseCommit],
		ApplyFlipsPct: s.PhasePct[systems.PhaseApplyFlips],
		ArrivalsPct:   s.PhasePct[systems.PhaseArrivals],
	}
}
