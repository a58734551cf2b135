package sim

// Renderer consumes per-tick draw state. Implementations must not call back
// into the Simulation.
type Renderer interface {
	RenderFrame(f Frame)
}

// Scoreboard consumes point totals whenever they change.
type Scoreboard interface {
	UpdateScore(white, black int)
}

// DiscState is a disc's render state.
type DiscState struct {
	Pos    Vec2    `json:"pos"`
	Vel    Vec2    `json:"vel"`
	Team   Team    `json:"team"`
	Radius float64 `json:"radius"`
}

// CellDelta is a hex recolor event: the cell index and its new color.
type CellDelta struct {
	Index int      `json:"index"`
	Color HexColor `json:"color"`
}

// Frame is the per-tick render payload: disc states, the hexes recolored
// since the previous frame, and the point totals.
type Frame struct {
	TS          float64     `json:"ts"`
	Discs       []DiscState `json:"discs"`
	Flipped     []CellDelta `json:"flipped,omitempty"`
	PointsWhite int         `json:"points_white"`
	PointsBlack int         `json:"points_black"`
}

// Snapshot is the complete world state, used to bring a late joiner up to
// date before it starts consuming frames.
type Snapshot struct {
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	HexR        float64     `json:"hex_r"`
	HexH        float64     `json:"hex_h"`
	Cols        int         `json:"cols"`
	Rows        int         `json:"rows"`
	Cells       []Cell      `json:"cells"`
	Discs       []DiscState `json:"discs"`
	PointsWhite int         `json:"points_white"`
	PointsBlack int         `json:"points_black"`
	TimeScale   float64     `json:"time_scale"`
	RosterSize  int         `json:"roster_size"`
	Running     bool        `json:"running"`
}

func (s *Simulation) discStates() []DiscState {
	out := make([]DiscState, len(s.discs))
	for i := range s.discs {
		d := &s.discs[i]
		out[i] = DiscState{Pos: d.Pos, Vel: d.Vel, Team: d.Team, Radius: d.Radius}
	}
	return out
}

// drainDeltas collects the recolors since the last tick, deduplicated, each
// carrying the cell's current color.
func (s *Simulation) drainDeltas() []CellDelta {
	indices := s.grid.DrainFlipped()
	if len(indices) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(indices))
	deltas := make([]CellDelta, 0, len(indices))
	for _, i := range indices {
		if seen[i] {
			continue
		}
		seen[i] = true
		deltas = append(deltas, CellDelta{Index: i, Color: s.grid.Cells[i].Color})
	}
	return deltas
}

func (s *Simulation) buildFrame(ts float64, deltas []CellDelta) Frame {
	return Frame{
		TS:          ts,
		Discs:       s.discStates(),
		Flipped:     deltas,
		PointsWhite: s.pointsWhite,
		PointsBlack: s.pointsBlack,
	}
}

// Snapshot copies the full world state.
func (s *Simulation) Snapshot() Snapshot {
	cells := make([]Cell, len(s.grid.Cells))
	copy(cells, s.grid.Cells)
	return Snapshot{
		Width:       s.width,
		Height:      s.height,
		HexR:        s.grid.R,
		HexH:        s.grid.HexH,
		Cols:        s.grid.Cols,
		Rows:        s.grid.Rows,
		Cells:       cells,
		Discs:       s.discStates(),
		PointsWhite: s.pointsWhite,
		PointsBlack: s.pointsBlack,
		TimeScale:   s.timeScale,
		RosterSize:  s.rosterSize,
		Running:     s.running,
	}
}
