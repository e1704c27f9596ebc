package spatial

import (
	"math/rand"
	"sort"
	"testing"
)

func TestNeighborsMatchBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const (
		worldSize = 100.0
		radius    = 7.5
		n         = 200
	)

	type point struct{ x, y float64 }
	points := make([]point, n)
	g := NewGrid(worldSize, 5)
	for i := range points {
		points[i] = point{x: rng.Float64() * worldSize, y: rng.Float64() * worldSize}
		g.Insert(i, points[i].x, points[i].y)
	}

	var buf []Neighbor
	for i, p := range points {
		buf = g.NeighborsInto(buf[:0], p.x, p.y, radius, i)

		got := make([]int, 0, len(buf))
		for _, nb := range buf {
			got = append(got, nb.ID)
		}
		sort.Ints(got)

		var want []int
		for j, q := range points {
			if j == i {
				continue
			}
			dx, dy := q.x-p.x, q.y-p.y
			if dx*dx+dy*dy <= radius*radius {
				want = append(want, j)
			}
		}

		if len(got) != len(want) {
			t.Fatalf("point %d: got %d neighbors, want %d", i, len(got), len(want))
		}
		for k := range got {
			if got[k] != want[k] {
				t.Fatalf("point %d: neighbor sets differ: got %v want %v", i, got, want)
			}
		}
	}
}

func TestInsertOutOfBoundsClamped(t *testing.T) {
	g := NewGrid(10, 2)
	g.Insert(1, -5, -5)
	g.Insert(2, 50, 50)

	// Both entries must still be findable from inside the world.
	nb := g.NeighborsInto(nil, 0, 0, 8, -1)
	found := false
	for _, n := range nb {
		if n.ID == 1 {
			found = true
		}
	}
	if !found {
		t.Error("clamped low entry not found near origin")
	}
}

func TestResetEmpties(t *testing.T) {
	g := NewGrid(10, 2)
	g.Insert(1, 5, 5)
	g.Reset()
	if nb := g.NeighborsInto(nil, 5, 5, 10, -1); len(nb) != 0 {
		t.Errorf("neighbors after reset = %d, want 0", len(nb))
	}
}
