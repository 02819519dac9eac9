package world

import "fmt"

// Tripoint is a tile coordinate. Z is carried through every index but only
// X and Y take part in cell partitioning.
type Tripoint struct {
	X, Y, Z int32
}

// Point is the horizontal part of a Tripoint.
type Point struct {
	X, Y int32
}

func (p Tripoint) XY() Point { return Point{X: p.X, Y: p.Y} }

// Add offsets p horizontally.
func (p Tripoint) Add(dx, dy int32) Tripoint {
	return Tripoint{X: p.X + dx, Y: p.Y + dy, Z: p.Z}
}

func (p Tripoint) String() string {
	return fmt.Sprintf("%d,%d,%d", p.X, p.Y, p.Z)
}

// Grid partition constants. The simulated area is MapSubmaps×MapSubmaps cells;
// the grid overlay is GridCells wide and must cover it.
const (
	CellSize   = 12
	MapSubmaps = 11
	GridCells  = 16

	MapSize  = MapSubmaps * CellSize
	GridSize = GridCells * CellSize
)

// Compile-time check: a negative constant does not convert to uint.
const _ uint = GridCells - MapSubmaps

// CellIndex maps a horizontal position to its cell. Total for positions
// inside the grid; callers bounds-check before range queries.
func CellIndex(p Point) int {
	return int(p.X/CellSize) + GridCells*int(p.Y/CellSize)
}

// inGrid reports whether a single coordinate lies inside the grid overlay.
func inGrid(v int32) bool {
	return v >= 0 && v < GridSize
}

// InGrid reports whether the horizontal position (x, y) lies inside the
// grid overlay.
func InGrid(x, y int32) bool { return inGrid(x) && inGrid(y) }

// InMap reports whether p lies inside the simulated area.
func InMap(p Tripoint) bool {
	return p.X >= 0 && p.X < MapSize && p.Y >= 0 && p.Y < MapSize
}
