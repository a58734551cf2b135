package sim

// Board and physics tuning for the territory simulation.

const (
	// Hex circumradius derives from the short board dimension.
	HexRadiusDivisor = 50.0
	HexRadiusMin     = 3.0
	HexRadiusMax     = 14.0

	// Disc radius and base speed derive from the hex circumradius.
	DiscRadiusScale = 1.8
	DiscRadiusMin   = 6.0
	DiscRadiusMax   = 22.0
	BaseSpeedScale  = 20.0
	BaseSpeedMin    = 200.0
	BaseSpeedMax    = 480.0

	// Restitution shapes the collision impulse; each disc's speed is
	// re-asserted to its base value right after.
	Restitution = 0.98

	// Same-team collisions compound base speed up to a hard ceiling.
	TeamBoost    = 1.12
	MaxBaseSpeed = 520.0

	// A single tick never advances more than 50ms of simulated time.
	MaxTickSeconds = 0.050

	// Minimum wall-clock gap between territory bounces of one disc.
	BounceDebounceMillis = 15.0

	MaxTimeScale  = 6.25
	MaxRosterSize = 5

	// Spawn heading cone half-width, as a fraction of pi.
	SpawnConeFraction = 0.35

	speedEpsilon = 1e-6
)
