package sim

import (
	"math"
	"math/rand"
	"time"
)

// Config holds the initial parameters for a Simulation. Out-of-range values
// are clamped, never rejected.
type Config struct {
	Width      float64
	Height     float64
	RosterSize int     // discs per team, clamped to [0, MaxRosterSize]
	TimeScale  float64 // clamped to [0, MaxTimeScale]
	Seed       int64   // 0 derives a seed from the wall clock
}

// Simulation owns the board, the roster and the score. It is not safe for
// concurrent use: the embedding shell must serialize all access, including
// Tick.
type Simulation struct {
	grid  *Grid
	discs []Disc

	width  float64
	height float64
	hexR   float64

	rosterSize int
	timeScale  float64
	running    bool

	pointsWhite int
	pointsBlack int
	pointsDirty bool

	lastTS     float64
	resetClock bool

	rng *rand.Rand

	renderer   Renderer
	scoreboard Scoreboard
}

// New builds a simulation: derives the hex radius from the short board
// dimension, lays out the grid and spawns the initial roster.
func New(cfg Config) *Simulation {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	short := math.Min(cfg.Width, cfg.Height)
	hexR := clamp(short/HexRadiusDivisor, HexRadiusMin, HexRadiusMax)

	s := &Simulation{
		width:       cfg.Width,
		height:      cfg.Height,
		hexR:        hexR,
		grid:        NewGrid(cfg.Width, cfg.Height, hexR),
		timeScale:   clamp(cfg.TimeScale, 0, MaxTimeScale),
		pointsDirty: true,
		rng:         rand.New(rand.NewSource(seed)),
	}
	s.SetRosterSize(cfg.RosterSize)
	return s
}

// SetRenderer installs the per-tick frame consumer. Passing nil detaches it.
func (s *Simulation) SetRenderer(r Renderer) {
	s.renderer = r
}

// SetScoreboard installs the score consumer and immediately pushes the
// current totals to it.
func (s *Simulation) SetScoreboard(sb Scoreboard) {
	s.scoreboard = sb
	if sb != nil {
		sb.UpdateScore(s.pointsWhite, s.pointsBlack)
		s.pointsDirty = false
	}
}

// Start marks the simulation running. The next Tick advances zero simulated
// time so a pause never turns into a burst of motion. No-op when already
// running.
func (s *Simulation) Start() {
	if s.running {
		return
	}
	s.running = true
	s.resetClock = true
}

// Stop halts stepping. The flag is checked at the top of Tick, so an
// in-flight tick always completes. No-op when already stopped.
func (s *Simulation) Stop() {
	s.running = false
}

// Running reports whether Tick currently advances the simulation.
func (s *Simulation) Running() bool {
	return s.running
}

// Tick advances the simulation to the wall-clock timestamp now (milliseconds,
// monotonically non-decreasing, arbitrary epoch). The external driver calls
// this once per frame while the simulation is running.
func (s *Simulation) Tick(now float64) {
	if !s.running {
		return
	}
	if s.resetClock {
		s.lastTS = now
		s.resetClock = false
	}

	dt := clamp((now-s.lastTS)/1000, 0, MaxTickSeconds)
	s.lastTS = now
	step := dt * s.timeScale

	// Integrate and clamp against the four walls. A wall hit snaps the disc
	// tangent and forces the velocity component's sign outward; it is not a
	// full reflection and does not re-assert base speed.
	for i := range s.discs {
		d := &s.discs[i]
		d.Pos.X += d.Vel.X * step
		d.Pos.Y += d.Vel.Y * step

		if d.Pos.X-d.Radius <= 0 {
			d.Pos.X = d.Radius
			d.Vel.X = math.Abs(d.Vel.X)
		} else if d.Pos.X+d.Radius >= s.width {
			d.Pos.X = s.width - d.Radius
			d.Vel.X = -math.Abs(d.Vel.X)
		}
		if d.Pos.Y-d.Radius <= 0 {
			d.Pos.Y = d.Radius
			d.Vel.Y = math.Abs(d.Vel.Y)
		} else if d.Pos.Y+d.Radius >= s.height {
			d.Pos.Y = s.height - d.Radius
			d.Vel.Y = -math.Abs(d.Vel.Y)
		}
	}

	resolveCollisions(s.discs, s.rng)

	// Claim territory in roster order. Each disc flips enemy hexes within
	// its radius, scores them, and bounces off the claimed cluster when it
	// is still moving into it and the debounce window has passed.
	pointsChanged := false
	for i := range s.discs {
		d := &s.discs[i]
		addWhite, addBlack, normal, bounced := s.grid.FlipDisc(d.Pos.X, d.Pos.Y, d.Radius, d.Team)
		if addWhite > 0 {
			s.pointsWhite += addWhite
			pointsChanged = true
		}
		if addBlack > 0 {
			s.pointsBlack += addBlack
			pointsChanged = true
		}
		if bounced && (d.LastBounceTS < 0 || now-d.LastBounceTS > BounceDebounceMillis) {
			if d.Vel.Dot(normal) < 0 {
				d.Vel = d.Vel.Reflect(normal)
				d.maintainSpeed()
				d.LastBounceTS = now
			}
		}
	}
	if pointsChanged {
		s.pointsDirty = true
	}
	s.flushScore()

	// Drain recolors even with no renderer attached so the record never
	// grows across idle broadcast periods.
	deltas := s.drainDeltas()
	if s.renderer != nil {
		s.renderer.RenderFrame(s.buildFrame(now, deltas))
	}
}

// flushScore pushes the totals to the scoreboard when dirty. Idempotent.
func (s *Simulation) flushScore() {
	if !s.pointsDirty {
		return
	}
	if s.scoreboard != nil {
		s.scoreboard.UpdateScore(s.pointsWhite, s.pointsBlack)
	}
	s.pointsDirty = false
}

// ResetBoard rebuilds the grid at the current dimensions, restoring the
// half-split coloring, and zeroes both point totals. The roster is untouched.
func (s *Simulation) ResetBoard() {
	short := math.Min(s.width, s.height)
	s.hexR = clamp(short/HexRadiusDivisor, HexRadiusMin, HexRadiusMax)
	s.grid = NewGrid(s.width, s.height, s.hexR)
	s.pointsWhite = 0
	s.pointsBlack = 0
	s.pointsDirty = true
	s.flushScore()
}

// Resize rebuilds the grid for the new board dimensions and clamps every
// disc back inside the bounds. Velocities are untouched.
func (s *Simulation) Resize(width, height float64) {
	s.width = width
	s.height = height
	short := math.Min(width, height)
	s.hexR = clamp(short/HexRadiusDivisor, HexRadiusMin, HexRadiusMax)
	s.grid = NewGrid(width, height, s.hexR)

	for i := range s.discs {
		d := &s.discs[i]
		d.Pos.X = clamp(d.Pos.X, d.Radius, s.width-d.Radius)
		d.Pos.Y = clamp(d.Pos.Y, d.Radius, s.height-d.Radius)
	}
}

// SetTimeScale sets the simulation speed multiplier, clamped to
// [0, MaxTimeScale]. Zero freezes motion without stopping the tick path.
func (s *Simulation) SetTimeScale(mul float64) {
	s.timeScale = clamp(mul, 0, MaxTimeScale)
}

// SetRosterSize discards all discs and spawns n per team, n clamped to
// [0, MaxRosterSize]. Each team spawns in its home quarter of the board,
// aimed at the opposing half within a random cone.
func (s *Simulation) SetRosterSize(n int) {
	if n < 0 {
		n = 0
	}
	if n > MaxRosterSize {
		n = MaxRosterSize
	}
	s.rosterSize = n

	s.discs = s.discs[:0]
	if n == 0 {
		return
	}

	radius := clamp(s.hexR*DiscRadiusScale, DiscRadiusMin, DiscRadiusMax)
	speed := clamp(s.hexR*BaseSpeedScale, BaseSpeedMin, BaseSpeedMax)

	for i := 0; i < n; i++ {
		s.discs = append(s.discs, s.spawnDisc(TeamWhite, radius, speed))
	}
	for i := 0; i < n; i++ {
		s.discs = append(s.discs, s.spawnDisc(TeamBlack, radius, speed))
	}
}

// SetNumDiscs is an alias for SetRosterSize, where n counts discs per team.
func (s *Simulation) SetNumDiscs(n int) {
	s.SetRosterSize(n)
}

func (s *Simulation) spawnDisc(team Team, radius, speed float64) Disc {
	var x, ang float64
	if team == TeamWhite {
		x = s.randRange(radius+1, s.width*0.25)
		ang = s.randRange(-SpawnConeFraction*math.Pi, SpawnConeFraction*math.Pi)
	} else {
		x = s.randRange(s.width*0.75, s.width-radius-1)
		ang = math.Pi + s.randRange(-SpawnConeFraction*math.Pi, SpawnConeFraction*math.Pi)
	}
	y := s.randRange(radius+1, s.height-radius-1)

	return Disc{
		Pos:          Vec2{X: x, Y: y},
		Vel:          Vec2{X: math.Cos(ang) * speed, Y: math.Sin(ang) * speed},
		Team:         team,
		Radius:       radius,
		BaseSpeed:    speed,
		LastBounceTS: -1,
	}
}

func (s *Simulation) randRange(min, max float64) float64 {
	return min + (max-min)*s.rng.Float64()
}

// Points returns the cumulative totals.
func (s *Simulation) Points() (white, black int) {
	return s.pointsWhite, s.pointsBlack
}

// TimeScale returns the current speed multiplier.
func (s *Simulation) TimeScale() float64 {
	return s.timeScale
}

// RosterSize returns the disc count per team.
func (s *Simulation) RosterSize() int {
	return s.rosterSize
}

// Bounds returns the board dimensions.
func (s *Simulation) Bounds() (width, height float64) {
	return s.width, s.height
}

// HexRadius returns the derived hex circumradius.
func (s *Simulation) HexRadius() float64 {
	return s.hexR
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
