package sim

import (
	"math"
	"math/rand"
)

// resolveCollisions runs one pairwise pass over the roster: equal-mass
// near-elastic impulses with positional separation. Pairs are visited in
// fixed (i,j) order and each resolution sees the updates of earlier pairs in
// the same pass. Disc counts are small, so O(n^2) is fine.
func resolveCollisions(discs []Disc, rng *rand.Rand) {
	n := len(discs)
	if n < 2 {
		return
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a := &discs[i]
			b := &discs[j]

			dx := b.Pos.X - a.Pos.X
			dy := b.Pos.Y - a.Pos.Y
			rsum := a.Radius + b.Radius
			dist2 := dx*dx + dy*dy
			if dist2 > rsum*rsum {
				continue
			}

			dist := math.Sqrt(dist2)
			if dist == 0 {
				// Rare exact overlap: poke one disc in a random direction
				// so the pair separates by the next pass.
				ang := rng.Float64() * 2 * math.Pi
				dist = 1e-6
				a.Pos.X -= math.Cos(ang) * 0.001
				a.Pos.Y -= math.Sin(ang) * 0.001
			}

			// Contact normal from a toward b.
			nx := dx / dist
			ny := dy / dist

			// Positional correction: split the penetration plus a small
			// bias so floating-point rounding never leaves residual overlap.
			penetration := rsum - dist
			corr := penetration/2 + 1e-4
			a.Pos.X -= nx * corr
			a.Pos.Y -= ny * corr
			b.Pos.X += nx * corr
			b.Pos.Y += ny * corr

			// Velocity response only when approaching.
			rvx := b.Vel.X - a.Vel.X
			rvy := b.Vel.Y - a.Vel.Y
			vn := rvx*nx + rvy*ny
			if vn >= 0 {
				continue
			}

			// Equal unit masses: j = -(1+e)*vn / (1/m1+1/m2) = -(1+e)*vn/2.
			imp := -(1 + Restitution) * vn * 0.5
			jx := imp * nx
			jy := imp * ny

			a.Vel.X -= jx
			a.Vel.Y -= jy
			b.Vel.X += jx
			b.Vel.Y += jy

			a.maintainSpeed()
			b.maintainSpeed()

			if a.Team == b.Team {
				a.BaseSpeed = math.Min(a.BaseSpeed*TeamBoost, MaxBaseSpeed)
				b.BaseSpeed = math.Min(b.BaseSpeed*TeamBoost, MaxBaseSpeed)
				a.maintainSpeed()
				b.maintainSpeed()
			}
		}
	}
}
