package sim

import "math"

// Team identifies one of the two sides.
type Team string

const (
	TeamWhite Team = "WHITE"
	TeamBlack Team = "BLACK"
)

// HexColor is the claimed state of a hex. It mirrors Team but is a separate
// concept: a hex's paint, not a participant.
type HexColor string

const (
	HexWhite HexColor = "WHITE"
	HexBlack HexColor = "BLACK"
)

// Hex returns the color a team paints.
func (t Team) Hex() HexColor {
	if t == TeamBlack {
		return HexBlack
	}
	return HexWhite
}

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == TeamBlack {
		return TeamWhite
	}
	return TeamBlack
}

// Cell is one hex of the board. Position is fixed once the grid is built;
// only Color mutates during play.
type Cell struct {
	Col   int      `json:"col"`
	Row   int      `json:"row"`
	CX    float64  `json:"cx"`
	CY    float64  `json:"cy"`
	Color HexColor `json:"color"`
}

// Grid is a flat-top hexagonal tessellation covering a rectangular board.
// Cells are stored column-major: index = col*rows + row.
type Grid struct {
	Cells []Cell
	Cols  int
	Rows  int
	R     float64 // hex circumradius
	HexH  float64 // vertical step: r * sqrt(3)

	// Indices recolored since the last DrainFlipped call.
	flipped []int
}

// NewGrid builds the lattice for a width x height board with circumradius r.
// Columns pitch 1.5r horizontally; odd columns shift down half a hex height.
// The row count is the minimum of what fits in even and odd columns so every
// column has the same number of rows. Colors start split at the board midline.
func NewGrid(width, height, r float64) *Grid {
	hexH := math.Sqrt(3) * r
	stepX := 1.5 * r

	cols := 0
	for x := r; x+r <= width-1; x += stepX {
		cols++
	}
	if cols == 0 {
		cols = 1
	}

	rowsEven := 0
	for y := hexH / 2; y+hexH/2 <= height-1; y += hexH {
		rowsEven++
	}
	rowsOdd := 0
	for y := hexH; y+hexH/2 <= height-1; y += hexH {
		rowsOdd++
	}
	rows := rowsEven
	if rowsOdd < rows {
		rows = rowsOdd
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([]Cell, 0, cols*rows)
	midX := width * 0.5
	for col := 0; col < cols; col++ {
		cx := r + float64(col)*stepX
		offsetY := 0.0
		if col%2 == 1 {
			offsetY = hexH / 2
		}
		for row := 0; row < rows; row++ {
			cy := hexH/2 + offsetY + float64(row)*hexH
			color := HexBlack
			if cx < midX {
				color = HexWhite
			}
			cells = append(cells, Cell{Col: col, Row: row, CX: cx, CY: cy, Color: color})
		}
	}
	return &Grid{Cells: cells, Cols: cols, Rows: rows, R: r, HexH: hexH}
}

// Locate inverts the layout: the nearest cell index for a board point,
// or false when the rounded coordinates fall outside the grid.
func (g *Grid) Locate(x, y float64) (int, bool) {
	stepX := 1.5 * g.R

	col := int(math.Round((x - g.R) / stepX))
	if col < 0 || col >= g.Cols {
		return 0, false
	}

	offset := 0.0
	if col%2 == 1 {
		offset = g.HexH / 2
	}
	row := int(math.Round((y - g.HexH/2 - offset) / g.HexH))
	if row < 0 || row >= g.Rows {
		return 0, false
	}

	return col*g.Rows + row, true
}

// FlipAt recolors the single hex under (x,y) to the team's color.
// Returns the old and new colors when a cell actually changed.
func (g *Grid) FlipAt(x, y float64, team Team) (HexColor, HexColor, bool) {
	i, ok := g.Locate(x, y)
	if !ok {
		return "", "", false
	}
	c := &g.Cells[i]
	target := team.Hex()
	if c.Color == target {
		return "", "", false
	}
	old := c.Color
	c.Color = target
	g.flipped = append(g.flipped, i)
	return old, target, true
}

// FlipDisc claims every hex whose center lies within radius of (x,y) for the
// team, awarding one point per recolored cell to the claiming side. The
// returned normal is the renormalized sum of unit vectors from each recolored
// cell toward (x,y), pointing the way the disc should be pushed. ok is false
// when nothing flipped or the sum degenerates.
func (g *Grid) FlipDisc(x, y, radius float64, team Team) (whitePts, blackPts int, normal Vec2, ok bool) {
	target := team.Hex()
	r2 := radius * radius
	var nx, ny float64
	hits := 0

	for i := range g.Cells {
		cell := &g.Cells[i]
		dx := cell.CX - x
		dy := cell.CY - y
		if dx*dx+dy*dy > r2 {
			continue
		}
		if cell.Color == target {
			continue
		}

		cell.Color = target
		if target == HexWhite {
			whitePts++
		} else {
			blackPts++
		}
		g.flipped = append(g.flipped, i)

		vx := x - cell.CX
		vy := y - cell.CY
		length := math.Sqrt(vx*vx + vy*vy)
		if length > 1e-6 {
			nx += vx / length
			ny += vy / length
			hits++
		}
	}

	if hits == 0 {
		return whitePts, blackPts, Vec2{}, false
	}
	length := math.Sqrt(nx*nx + ny*ny)
	if length <= 1e-6 {
		return whitePts, blackPts, Vec2{}, false
	}
	return whitePts, blackPts, Vec2{X: nx / length, Y: ny / length}, true
}

// DrainFlipped returns the indices recolored since the previous drain and
// resets the record. Indices may repeat if a cell flipped more than once.
func (g *Grid) DrainFlipped() []int {
	if len(g.flipped) == 0 {
		return nil
	}
	out := g.flipped
	g.flipped = nil
	return out
}

// CellCount returns the total number of cells.
func (g *Grid) CellCount() int {
	return len(g.Cells)
}

// ColorCounts tallies cells by current color.
func (g *Grid) ColorCounts() (white, black int) {
	for i := range g.Cells {
		if g.Cells[i].Color == HexWhite {
			white++
		} else {
			black++
		}
	}
	return white, black
}
