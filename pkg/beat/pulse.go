// ABOUTME: Beat pulse indicator
// ABOUTME: Jumps to full size on a beat and shrinks with frame time
package beat

// Pulse is a beat indicator that jumps to full size on a beat and shrinks by
// the frame delta every frame.
type Pulse struct {
	size float64
}

// Trigger resets the pulse to full size
func (p *Pulse) Trigger() {
	p.size = 1
}

// Decay shrinks the pulse by dt seconds worth of size
func (p *Pulse) Decay(dt float64) {
	if dt <= 0 {
		return
	}
	p.size -= dt
	if p.size < 0 {
		p.size = 0
	}
}

// Size returns the current size in [0, 1]
func (p *Pulse) Size() float64 {
	return p.size
}
