package sim

import "time"

// Pacer converts wall-clock frame time into a number of ticks to run.
// One tick is due every interval at speed 1; speed multiplies the rate.
type Pacer struct {
	interval time.Duration
	acc      time.Duration
	speed    int
	maxSpeed int
}

// NewPacer creates a pacer at speed 1. maxSpeed below 1 is treated as 1.
func NewPacer(interval time.Duration, maxSpeed int) *Pacer {
	if maxSpeed < 1 {
		maxSpeed = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Pacer{interval: interval, speed: 1, maxSpeed: maxSpeed}
}

// Speed returns the current multiplier.
func (p *Pacer) Speed() int { return p.speed }

// MaxSpeed returns the largest allowed multiplier.
func (p *Pacer) MaxSpeed() int { return p.maxSpeed }

// SetSpeed sets the multiplier, clamped to [1, MaxSpeed].
func (p *Pacer) SetSpeed(n int) {
	switch {
	case n < 1:
		n = 1
	case n > p.maxSpeed:
		n = p.maxSpeed
	}
	p.speed = n
}

// Advance adds elapsed time and returns how many ticks are now due. At most
// speed ticks are released per call; backlog beyond one interval is dropped
// so a long frame does not cause a burst.
func (p *Pacer) Advance(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	p.acc += elapsed * time.Duration(p.speed)
	n := int(p.acc / p.interval)
	p.acc -= time.Duration(n) * p.interval
	if n > p.speed {
		n = p.speed
		p.acc = 0
	}
	return n
}

// Reset discards accumulated time.
func (p *Pacer) Reset() {
	p.acc = 0
}
