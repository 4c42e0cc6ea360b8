package liveness

// FrameGate drops frames whose presentation timestamp has not advanced, so the same
// source frame is never evaluated twice.
type FrameGate struct {
	last float64
	seen bool
}

func (g *FrameGate) Admit(timestamp float64) bool {
	if g.seen && timestamp <= g.last {
		return false
	}

	g.last = timestamp
	g.seen = true
	return true
}

func (g *FrameGate) Last() (float64, bool) {
	return g.last, g.seen
}
