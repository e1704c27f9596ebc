// Package spatial provides a uniform bucket grid for neighbor queries over
// the bounded plane, replacing full O(n²) pair scans in the hot path.
package spatial

import "math"

// Neighbor holds a nearby entry with its precomputed squared distance.
type Neighbor struct {
	ID     int
	DistSq float64
}

// Grid is a cell-bucketed index over entry positions. Entries are rebuilt
// each tick: Reset, Insert all agents, then query.
type Grid struct {
	cellSize float64
	cols     int
	rows     int
	size     float64

	cells [][]entry
}

type entry struct {
	id   int
	x, y float64
}

// NewGrid creates a grid covering a size×size world.
func NewGrid(size, cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(size/cellSize) + 1
	g := &Grid{
		cellSize: cellSize,
		cols:     cols,
		rows:     cols,
		size:     size,
		cells:    make([][]entry, cols*cols),
	}
	for i := range g.cells {
		g.cells[i] = make([]entry, 0, 8)
	}
	return g
}

// Reset removes all entries, keeping bucket capacity.
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entry at a position. Positions outside the world are
// clamped into the edge cells.
func (g *Grid) Insert(id int, x, y float64) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], entry{id: id, x: x, y: y})
}

// NeighborsInto appends every entry within radius of (x, y) to dst, skipping
// exclude. Returns the updated slice; reuse dst across calls to avoid
// allocation.
func (g *Grid) NeighborsInto(dst []Neighbor, x, y, radius float64, exclude int) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1
	centerCol := g.clampCol(int(x / g.cellSize))
	centerRow := g.clampCol(int(y / g.cellSize))
	radiusSq := radius * radius

	for dc := -cellRadius; dc <= cellRadius; dc++ {
		col := centerCol + dc
		if col < 0 || col >= g.cols {
			continue
		}
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			row := centerRow + dr
			if row < 0 || row >= g.rows {
				continue
			}
			for _, e := range g.cells[row*g.cols+col] {
				if e.id == exclude {
					continue
				}
				dx := e.x - x
				dy := e.y - y
				d := dx*dx + dy*dy
				if d <= radiusSq {
					dst = append(dst, Neighbor{ID: e.id, DistSq: d})
				}
			}
		}
	}
	return dst
}

func (g *Grid) cellIndex(x, y float64) int {
	col := g.clampCol(int(x / g.cellSize))
	row := g.clampCol(int(y / g.cellSize))
	return row*g.cols + col
}

func (g *Grid) clampCol(c int) int {
	if c < 0 {
		return 0
	}
	if c >= g.cols {
		return g.cols - 1
	}
	return c
}

// Distance converts a Neighbor's squared distance back to a distance.
func (n Neighbor) Distance() float64 {
	return math.Sqrt(n.DistSq)
}
