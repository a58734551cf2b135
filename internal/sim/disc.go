package sim

// Disc is one bouncing body. Radius, team and base speed are fixed at spawn;
// position, velocity and the bounce timestamp mutate every tick.
type Disc struct {
	Pos    Vec2    `json:"pos"`
	Vel    Vec2    `json:"vel"`
	Team   Team    `json:"team"`
	Radius float64 `json:"radius"`

	// BaseSpeed is the target velocity magnitude, re-asserted after every
	// velocity-altering event except wall clamps.
	BaseSpeed float64 `json:"base_speed"`

	// LastBounceTS is the tick timestamp of the most recent territory
	// bounce, -1 if the disc has never bounced.
	LastBounceTS float64 `json:"-"`
}

// maintainSpeed rescales velocity back to BaseSpeed. A near-zero velocity is
// left alone rather than amplified from numeric noise.
func (d *Disc) maintainSpeed() {
	mag := d.Vel.Magnitude()
	if mag > speedEpsilon {
		d.Vel = d.Vel.Times(d.BaseSpeed / mag)
	}
}
