package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellIndex(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		want int
	}{
		{"origin", Point{0, 0}, 0},
		{"last tile of first cell", Point{11, 11}, 0},
		{"next cell east", Point{12, 0}, 1},
		{"next row", Point{0, 12}, GridCells},
		{"diagonal", Point{100, 100}, 8 + 8*GridCells},
		{"far corner", Point{GridSize - 1, GridSize - 1}, GridCells*GridCells - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CellIndex(tt.p))
		})
	}
}

func TestGridCoversMap(t *testing.T) {
	assert.GreaterOrEqual(t, GridCells, MapSubmaps)
	assert.Equal(t, 132, MapSize)
	assert.True(t, InMap(Tripoint{X: MapSize - 1, Y: 0}))
	assert.False(t, InMap(Tripoint{X: MapSize, Y: 0}))
	assert.False(t, InMap(Tripoint{X: -1, Y: 5}))

	assert.True(t, InGrid(GridSize-1, 0))
	assert.False(t, InGrid(0, GridSize))
	assert.False(t, InGrid(-1, 0))
}

func TestTripoint(t *testing.T) {
	p := Tripoint{X: 3, Y: 4, Z: -1}
	assert.Equal(t, Point{3, 4}, p.XY())
	assert.Equal(t, Tripoint{X: 4, Y: 2, Z: -1}, p.Add(1, -2))
	assert.Equal(t, "3,4,-1", p.String())
}
