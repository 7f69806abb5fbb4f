package ecs

// DefaultFixedDelta is the physics step, 64 Hz.
const DefaultFixedDelta = 1.0 / 64.0

// Time is the per-frame clock resource.
type Time struct {
	// Delta is the time since the previous frame in seconds.
	Delta float64
	// Elapsed is the total time advanced since the world was created.
	Elapsed float64
	// FixedDelta is the physics step length.
	FixedDelta float64
	Frame      uint64
}

// Advance starts a new frame lasting dt seconds. Negative values are clamped.
func (t *Time) Advance(dt float64) {
	if t == nil {
		return
	}
	if dt < 0 {
		dt = 0
	}
	t.Delta = dt
	t.Elapsed += dt
	t.Frame++
	if t.FixedDelta <= 0 {
		t.FixedDelta = DefaultFixedDelta
	}
}
