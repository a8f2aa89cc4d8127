package voxel

import (
	"math"
	"testing"
)

func TestNewGridRejectsBadExtents(t *testing.T) {
	if _, err := NewGrid(0, 16, 16); err == nil {
		t.Fatalf("expected error for zero width")
	}
	if _, err := NewGrid(16, -1, 16); err == nil {
		t.Fatalf("expected error for negative depth")
	}
	if _, err := NewGrid(4096, 4096, 1024); err == nil {
		t.Fatalf("expected error for allocation above cell cap")
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	g, err := NewGrid(8, 8, 8)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}

	if got := g.Get(3, 4, 5); got != Air {
		t.Fatalf("fresh grid should be air, got %v", got)
	}
	g.Set(3, 4, 5, Stone)
	if got := g.Get(3, 4, 5); got != Stone {
		t.Fatalf("get after set: got %v want %v", got, Stone)
	}

	// Out-of-bounds writes are dropped, reads come back as air.
	g.Set(-1, 0, 0, Stone)
	g.Set(0, 0, 8, Stone)
	if got := g.Get(-1, 0, 0); got != Air {
		t.Fatalf("out of bounds read should be air, got %v", got)
	}
	if got := g.CountMaterial(Stone); got != 1 {
		t.Fatalf("clipped writes leaked into the grid: %d stone voxels", got)
	}
}

func TestWrappedAccess(t *testing.T) {
	g, _ := NewGrid(8, 8, 8)
	g.SetWrapped(-1, 9, 2, Dirt)
	if got := g.Get(7, 1, 2); got != Dirt {
		t.Fatalf("wrapped write landed wrong: got %v at (7,1,2)", got)
	}
	if got := g.GetWrapped(15, -7, 2); got != Dirt {
		t.Fatalf("wrapped read mismatch: got %v", got)
	}
	// Z does not wrap.
	if got := g.GetWrapped(0, 0, -1); got != Air {
		t.Fatalf("negative z should read air, got %v", got)
	}
}

func TestSurfaceHeightAndMaterial(t *testing.T) {
	g, _ := NewGrid(4, 4, 16)
	g.FillColumn(1, 1, 0, 5, Stone)
	g.Set(1, 1, 6, Grass)
	// Water above the surface must not count as surface.
	g.Set(1, 1, 7, Water)

	if got := g.SurfaceHeight(1, 1); got != 6 {
		t.Fatalf("surface height: got %d want 6", got)
	}
	if got := g.SurfaceMaterial(1, 1); got != Grass {
		t.Fatalf("surface material: got %v want %v", got, Grass)
	}
	if got := g.SurfaceHeight(0, 0); got != -1 {
		t.Fatalf("empty column surface: got %d want -1", got)
	}

	// The cache must agree with the direct scan and reflect later writes.
	g.BuildSurfaceCache()
	if got := g.SurfaceHeight(1, 1); got != 6 {
		t.Fatalf("cached surface height: got %d want 6", got)
	}
	g.Set(1, 1, 10, Stone)
	if got := g.SurfaceHeight(1, 1); got != 10 {
		t.Fatalf("surface height after invalidation: got %d want 10", got)
	}
}

func TestWriteColumn(t *testing.T) {
	g, _ := NewGrid(4, 4, 8)
	column := []Material{Stone, Stone, Dirt, Grass}
	g.WriteColumn(2, 3, column)

	for z, want := range column {
		if got := g.Get(2, 3, z); got != want {
			t.Fatalf("column voxel %d: got %v want %v", z, got, want)
		}
	}
	if got := g.Get(2, 3, 4); got != Air {
		t.Fatalf("cells above the column should stay air, got %v", got)
	}
	// Clipped column coordinates are ignored.
	g.WriteColumn(-1, 0, column)
	g.WriteColumn(4, 0, column)
	if got := g.CountMaterial(Stone); got != 2 {
		t.Fatalf("clipped column writes leaked: %d stone voxels", got)
	}
}

func TestSlopeAt(t *testing.T) {
	g, _ := NewGrid(8, 8, 32)
	// Flat plateau at z=10.
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			g.FillColumn(x, y, 0, 10, Stone)
		}
	}
	if got := g.SlopeAt(4, 4); got != 0 {
		t.Fatalf("flat terrain slope: got %f want 0", got)
	}

	// Constant gradient of 1 voxel per step in x: slope = atan(1) = 45 deg.
	g2, _ := NewGrid(8, 8, 32)
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			g2.FillColumn(x, y, 0, 10+x, Stone)
		}
	}
	got := g2.SlopeAt(4, 4)
	if math.Abs(got-45) > 0.01 {
		t.Fatalf("ramp slope: got %f want 45", got)
	}
}

func TestHistogramAndCounts(t *testing.T) {
	g, _ := NewGrid(4, 4, 4)
	g.Set(0, 0, 0, Stone)
	g.Set(0, 0, 1, Stone)
	g.Set(1, 1, 0, Water)

	hist := g.Histogram()
	if hist[Stone] != 2 {
		t.Fatalf("histogram stone: got %d want 2", hist[Stone])
	}
	if hist[Water] != 1 {
		t.Fatalf("histogram water: got %d want 1", hist[Water])
	}
	if hist[Air] != 4*4*4-3 {
		t.Fatalf("histogram air: got %d want %d", hist[Air], 4*4*4-3)
	}
	// Water is not solid.
	if got := g.SolidCount(); got != 2 {
		t.Fatalf("solid count: got %d want 2", got)
	}
}

func TestForEachOrderAndEarlyStop(t *testing.T) {
	g, _ := NewGrid(2, 2, 2)
	var order [][3]int
	g.ForEach(func(x, y, z int, m Material) bool {
		order = append(order, [3]int{x, y, z})
		return true
	})
	want := [][3]int{
		{0, 0, 0}, {0, 0, 1}, {0, 1, 0}, {0, 1, 1},
		{1, 0, 0}, {1, 0, 1}, {1, 1, 0}, {1, 1, 1},
	}
	if len(order) != len(want) {
		t.Fatalf("visited %d voxels, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("visit %d: got %v want %v", i, order[i], want[i])
		}
	}

	visited := 0
	g.ForEach(func(x, y, z int, m Material) bool {
		visited++
		return visited < 3
	})
	if visited != 3 {
		t.Fatalf("early stop visited %d voxels, want 3", visited)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g, _ := NewGrid(4, 4, 4)
	g.Set(1, 1, 1, Stone)
	dup := g.Clone()
	dup.Set(1, 1, 1, Air)
	if got := g.Get(1, 1, 1); got != Stone {
		t.Fatalf("clone mutation leaked into original: got %v", got)
	}
}
