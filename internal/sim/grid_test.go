package sim

import (
	"math"
	"testing"
)

// paintAll recolors every cell, bypassing scoring, to set up territory tests.
func paintAll(g *Grid, color HexColor) {
	for i := range g.Cells {
		g.Cells[i].Color = color
	}
	g.flipped = nil
}

func TestGridLayoutForMidSizeBoard(t *testing.T) {
	// 500x300 board with r=10: columns pitch 15px starting at x=10.
	g := NewGrid(500, 300, 10)

	if g.Cols < 1 {
		t.Fatalf("expected at least one column, got %d", g.Cols)
	}
	if g.Rows < 1 {
		t.Fatalf("expected at least one row, got %d", g.Rows)
	}
	if len(g.Cells) != g.Cols*g.Rows {
		t.Errorf("cell count %d does not match cols*rows = %d*%d", len(g.Cells), g.Cols, g.Rows)
	}

	// Every column carries the same row count, even and odd alike.
	perCol := make(map[int]int)
	for _, c := range g.Cells {
		perCol[c.Col]++
	}
	for col, n := range perCol {
		if n != g.Rows {
			t.Errorf("column %d has %d rows, want %d", col, n, g.Rows)
		}
	}

	// Initial colors split at the board midline.
	for _, c := range g.Cells {
		want := HexBlack
		if c.CX < 250 {
			want = HexWhite
		}
		if c.Color != want {
			t.Errorf("cell (%d,%d) at cx=%.1f: color %s, want %s", c.Col, c.Row, c.CX, c.Color, want)
		}
	}
}

func TestGridCentersStayOnBoard(t *testing.T) {
	for _, dims := range [][3]float64{{500, 300, 10}, {1200, 800, 14}, {200, 150, 3}} {
		g := NewGrid(dims[0], dims[1], dims[2])
		for _, c := range g.Cells {
			if c.CX < 0 || c.CX > dims[0] || c.CY < 0 || c.CY > dims[1] {
				t.Errorf("grid %vx%v r=%v: cell (%d,%d) center (%.1f,%.1f) off board",
					dims[0], dims[1], dims[2], c.Col, c.Row, c.CX, c.CY)
			}
		}
	}
}

func TestGridTinyBoardStillHasOneCell(t *testing.T) {
	g := NewGrid(10, 10, 14)
	if g.Cols != 1 || g.Rows != 1 {
		t.Errorf("degenerate board should floor to 1x1, got %dx%d", g.Cols, g.Rows)
	}
}

func TestLocateRoundTripsEveryCellCenter(t *testing.T) {
	g := NewGrid(640, 480, 9)
	for i, c := range g.Cells {
		got, ok := g.Locate(c.CX, c.CY)
		if !ok {
			t.Fatalf("cell %d (%d,%d): Locate missed its own center", i, c.Col, c.Row)
		}
		if got != i {
			t.Errorf("cell %d (%d,%d): Locate returned index %d", i, c.Col, c.Row, got)
		}
	}
}

func TestLocateRoundTripsNearbyPoints(t *testing.T) {
	// Points within a quarter step of a center still resolve to that cell.
	g := NewGrid(640, 480, 9)
	dx := 1.5 * g.R / 4
	dy := g.HexH / 4
	for i, c := range g.Cells {
		for _, off := range [][2]float64{{dx, 0}, {-dx, 0}, {0, dy}, {0, -dy}} {
			got, ok := g.Locate(c.CX+off[0], c.CY+off[1])
			if !ok || got != i {
				t.Errorf("cell %d: point offset (%.1f,%.1f) resolved to %d, ok=%v", i, off[0], off[1], got, ok)
			}
		}
	}
}

func TestLocateRejectsOffBoardPoints(t *testing.T) {
	g := NewGrid(500, 300, 10)
	for _, p := range [][2]float64{{-40, 50}, {5000, 50}, {50, -40}, {50, 5000}} {
		if idx, ok := g.Locate(p[0], p[1]); ok {
			t.Errorf("point (%.0f,%.0f) should be off-grid, got index %d", p[0], p[1], idx)
		}
	}
}

func TestFlipDiscClaimsEnemyCluster(t *testing.T) {
	// A White disc deep inside Black territory claims every Black hex in
	// range and is pushed back out along the returned normal.
	g := NewGrid(400, 400, 10)
	paintAll(g, HexBlack)

	x, y, radius := 150.7, 160.3, 50.0
	white, black, normal, ok := g.FlipDisc(x, y, radius, TeamWhite)

	if black != 0 {
		t.Errorf("black awarded %d points on a white claim", black)
	}
	if white == 0 {
		t.Fatal("expected white to claim at least one hex")
	}

	// Every cell within the radius is now White, and the count matches the
	// points awarded.
	claimed := 0
	var cx, cy float64
	for _, c := range g.Cells {
		dx := c.CX - x
		dy := c.CY - y
		if dx*dx+dy*dy <= radius*radius {
			claimed++
			cx += c.CX
			cy += c.CY
			if c.Color != HexWhite {
				t.Errorf("cell (%d,%d) inside claim radius still %s", c.Col, c.Row, c.Color)
			}
		}
	}
	if white != claimed {
		t.Errorf("white awarded %d points, but %d cells lie in radius", white, claimed)
	}

	if !ok {
		t.Fatal("expected a bounce normal from a non-empty claim")
	}
	if mag := normal.Magnitude(); math.Abs(mag-1) > 1e-9 {
		t.Errorf("bounce normal not unit length: %.12f", mag)
	}
	// The normal points from the claimed cluster's centroid toward the disc.
	cx /= float64(claimed)
	cy /= float64(claimed)
	if normal.Dot(Vec2{X: x - cx, Y: y - cy}) <= 0 {
		t.Errorf("normal (%.3f,%.3f) does not point away from centroid (%.1f,%.1f)", normal.X, normal.Y, cx, cy)
	}
}

func TestFlipDiscSecondCallIsNoOp(t *testing.T) {
	g := NewGrid(400, 400, 10)
	paintAll(g, HexBlack)

	w1, _, _, ok1 := g.FlipDisc(200, 200, 40, TeamWhite)
	if w1 == 0 || !ok1 {
		t.Fatalf("first claim should flip cells: white=%d ok=%v", w1, ok1)
	}

	w2, b2, _, ok2 := g.FlipDisc(200, 200, 40, TeamWhite)
	if w2 != 0 || b2 != 0 {
		t.Errorf("second identical claim awarded points: white=%d black=%d", w2, b2)
	}
	if ok2 {
		t.Error("second identical claim returned a bounce normal")
	}
}

func TestFlipDiscAwardsOneSidePerCall(t *testing.T) {
	g := NewGrid(500, 300, 10)
	total := g.CellCount()

	// One team claiming repeatedly can never bank more points than there
	// are cells, and a single call never pays both sides.
	sumWhite := 0
	for _, p := range [][2]float64{{300, 80}, {350, 150}, {420, 220}, {260, 60}, {470, 260}, {300, 80}} {
		w, b, _, _ := g.FlipDisc(p[0], p[1], 45, TeamWhite)
		if w > 0 && b > 0 {
			t.Errorf("claim at (%.0f,%.0f) paid both teams: white=%d black=%d", p[0], p[1], w, b)
		}
		if b != 0 {
			t.Errorf("white claim at (%.0f,%.0f) paid black %d points", p[0], p[1], b)
		}
		sumWhite += w
	}
	if sumWhite > total {
		t.Errorf("white banked %d points with only %d cells on the board", sumWhite, total)
	}

	w, b, _, _ := g.FlipDisc(100, 100, 45, TeamBlack)
	if w > 0 && b > 0 {
		t.Errorf("black claim paid both teams: white=%d black=%d", w, b)
	}
}

func TestFlipAtRecolorsSingleCell(t *testing.T) {
	g := NewGrid(500, 300, 10)

	// Pick a White cell and flip it Black.
	var target *Cell
	for i := range g.Cells {
		if g.Cells[i].Color == HexWhite {
			target = &g.Cells[i]
			break
		}
	}
	if target == nil {
		t.Fatal("no white cell on a fresh board")
	}

	old, now, changed := g.FlipAt(target.CX, target.CY, TeamBlack)
	if !changed || old != HexWhite || now != HexBlack {
		t.Errorf("flip (%s -> %s, changed=%v), want WHITE -> BLACK", old, now, changed)
	}
	if target.Color != HexBlack {
		t.Errorf("cell color is %s after flip", target.Color)
	}

	// Same team again: nothing to do.
	if _, _, changed := g.FlipAt(target.CX, target.CY, TeamBlack); changed {
		t.Error("second same-color flip reported a change")
	}

	// Off-board points never flip.
	if _, _, changed := g.FlipAt(-100, -100, TeamWhite); changed {
		t.Error("off-board flip reported a change")
	}
}

func TestDrainFlippedTracksRecolors(t *testing.T) {
	g := NewGrid(400, 400, 10)
	paintAll(g, HexBlack)

	white, _, _, _ := g.FlipDisc(200, 200, 35, TeamWhite)
	flipped := g.DrainFlipped()
	if len(flipped) != white {
		t.Errorf("drained %d indices, awarded %d points", len(flipped), white)
	}
	for _, i := range flipped {
		if g.Cells[i].Color != HexWhite {
			t.Errorf("drained index %d not white", i)
		}
	}

	if again := g.DrainFlipped(); again != nil {
		t.Errorf("second drain should be empty, got %d entries", len(again))
	}
}
