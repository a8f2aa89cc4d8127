package pipeline

import (
	"context"
	"testing"
	"time"

	"landgen/internal/config"
	"landgen/internal/voxel"
)

func testConfig() config.Config {
	cfg := *config.Default()
	cfg.Grid = config.GridConfig{Width: 48, Depth: 48, Height: 64}
	cfg.Terrain.Workers = 2
	cfg.Terrain.SnowLine = 58
	return cfg
}

func TestRunProducesWaterAndStone(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 42

	result, err := New(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	hist := result.Grid.Histogram()
	if hist[voxel.Water] == 0 {
		t.Fatalf("no standing water with water level %d", cfg.Terrain.WaterLevel)
	}
	if hist[voxel.Stone] == 0 {
		t.Fatalf("no stone in generated terrain")
	}
	if result.Mesh.Empty() {
		t.Fatalf("generated terrain produced an empty mesh")
	}
}

func TestRunDefaultOptionsProduceWater(t *testing.T) {
	// Default options at full grid height; only the footprint shrinks to
	// keep the test fast. The band amplitudes scale with height, so a
	// shorter grid would not catch a mountain band that drowns the lowlands.
	cfg := *config.Default()
	cfg.Seed = 42
	cfg.Grid = config.GridConfig{Width: 64, Depth: 64, Height: 128}
	cfg.Terrain.Workers = 2

	result, err := New(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	hist := result.Grid.Histogram()
	if hist[voxel.Water] == 0 {
		t.Fatalf("no standing water at default options, water level %d", cfg.Terrain.WaterLevel)
	}
	if hist[voxel.Stone] == 0 {
		t.Fatalf("no stone at default options")
	}
}

func TestRunIsReproducible(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 777

	run := func() *Result {
		result, err := New(cfg).Run(context.Background())
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return result
	}

	a, b := run(), run()
	for i, m := range a.Grid.Raw() {
		if m != b.Grid.Raw()[i] {
			t.Fatalf("grids diverged at cell %d: %v vs %v", i, m, b.Grid.Raw()[i])
		}
	}
	if a.Mesh.VertexCount() != b.Mesh.VertexCount() ||
		a.Mesh.TriangleCount() != b.Mesh.TriangleCount() {
		t.Fatalf("meshes diverged: %d/%d vs %d/%d vertices/triangles",
			a.Mesh.VertexCount(), a.Mesh.TriangleCount(),
			b.Mesh.VertexCount(), b.Mesh.TriangleCount())
	}
	if a.PlaceStats != b.PlaceStats {
		t.Fatalf("placement stats diverged: %+v vs %+v", a.PlaceStats, b.PlaceStats)
	}
}

func TestRunWithoutPlacementLeavesNoFlora(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 9
	cfg.Placement.Plants = false
	cfg.Placement.Decorations = false

	result, err := New(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	hist := result.Grid.Histogram()
	for _, m := range []voxel.Material{voxel.Wood, voxel.Leaves, voxel.Decoration} {
		if hist[m] != 0 {
			t.Fatalf("%v present with placement disabled: %d voxels", m, hist[m])
		}
	}
}

func TestRunDisablingLaterPhasesKeepsTerrain(t *testing.T) {
	base := testConfig()
	base.Seed = 31
	base.Caves.Enabled = false
	base.Placement.Plants = false
	base.Placement.Decorations = false

	full := testConfig()
	full.Seed = 31
	full.Caves.Enabled = false

	a, err := New(base).Run(context.Background())
	if err != nil {
		t.Fatalf("run base: %v", err)
	}
	b, err := New(full).Run(context.Background())
	if err != nil {
		t.Fatalf("run full: %v", err)
	}

	// The full run only adds flora: changed cells become solid stamp
	// material, and water is never overwritten.
	diff := 0
	for i, m := range a.Grid.Raw() {
		other := b.Grid.Raw()[i]
		if m != other {
			if m == voxel.Water || !other.Solid() {
				t.Fatalf("cell %d changed from %v to %v, placement must not erase terrain", i, m, other)
			}
			diff++
		}
	}
	if diff == 0 {
		t.Fatalf("full run placed nothing, comparison is vacuous")
	}
}

func TestRunTerrainDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 5
	cfg.Terrain.Enabled = false

	result, err := New(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Grid.SolidCount() != 0 {
		t.Fatalf("disabled terrain still produced %d solid voxels", result.Grid.SolidCount())
	}
	if !result.Mesh.Empty() {
		t.Fatalf("empty grid produced %d triangles", result.Mesh.TriangleCount())
	}
}

func TestRunReportsPhases(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 12

	p := New(cfg)
	var phases []Phase
	p.Progress = func(ph Phase, _ time.Duration) {
		phases = append(phases, ph)
	}
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []Phase{PhaseTerrain, PhaseCaves, PhasePlacement, PhaseExtraction}
	if len(phases) != len(want) {
		t.Fatalf("got phases %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("phase %d: got %v want %v", i, phases[i], want[i])
		}
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 3

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(cfg).Run(ctx); err == nil {
		t.Fatalf("expected error from cancelled run")
	}
}
