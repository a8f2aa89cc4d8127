package terrain

import (
	"context"
	"testing"

	"landgen/internal/config"
	"landgen/internal/noise"
	"landgen/internal/voxel"
)

func testTerrainConfig() config.TerrainConfig {
	cfg := config.Default().Terrain
	cfg.Workers = 2
	return cfg
}

func newTestGrid(t *testing.T, w, d, h int) *voxel.Grid {
	t.Helper()
	grid, err := voxel.NewGrid(w, d, h)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	return grid
}

func TestGenerateFillsEveryColumn(t *testing.T) {
	cfg := testTerrainConfig()
	grid := newTestGrid(t, 48, 48, 64)

	synth := NewSynthesizer(cfg, noise.NewField(42))
	if err := synth.Generate(context.Background(), grid); err != nil {
		t.Fatalf("generate: %v", err)
	}

	for x := 0; x < grid.Width(); x++ {
		for y := 0; y < grid.Depth(); y++ {
			surface := grid.SurfaceHeight(x, y)
			if surface < 1 || surface >= grid.Height() {
				t.Fatalf("column (%d,%d) surface %d outside [1,%d)", x, y, surface, grid.Height())
			}
			for z := 0; z <= surface; z++ {
				if m := grid.Get(x, y, z); !m.Solid() {
					t.Fatalf("hole in column (%d,%d) at z=%d: %v", x, y, z, m)
				}
			}
		}
	}
}

func TestGenerateStandingWaterInvariant(t *testing.T) {
	cfg := testTerrainConfig()
	cfg.WaterLevel = 26
	grid := newTestGrid(t, 48, 48, 64)

	synth := NewSynthesizer(cfg, noise.NewField(7))
	if err := synth.Generate(context.Background(), grid); err != nil {
		t.Fatalf("generate: %v", err)
	}

	for x := 0; x < grid.Width(); x++ {
		for y := 0; y < grid.Depth(); y++ {
			for z := 0; z <= cfg.WaterLevel; z++ {
				if m := grid.Get(x, y, z); m == voxel.Air {
					t.Fatalf("air below water level at (%d,%d,%d)", x, y, z)
				}
			}
			// No water above the water line after synthesis.
			for z := cfg.WaterLevel + 1; z < grid.Height(); z++ {
				if m := grid.Get(x, y, z); m == voxel.Water {
					t.Fatalf("water above water level at (%d,%d,%d)", x, y, z)
				}
			}
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := testTerrainConfig()

	run := func() *voxel.Grid {
		grid := newTestGrid(t, 40, 40, 64)
		synth := NewSynthesizer(cfg, noise.NewField(1234))
		if err := synth.Generate(context.Background(), grid); err != nil {
			t.Fatalf("generate: %v", err)
		}
		return grid
	}

	a, b := run(), run()
	for i, m := range a.Raw() {
		if m != b.Raw()[i] {
			t.Fatalf("runs diverged at cell %d: %v vs %v", i, m, b.Raw()[i])
		}
	}
}

func TestGenerateSeedChangesTerrain(t *testing.T) {
	cfg := testTerrainConfig()

	run := func(seed int64) *voxel.Grid {
		grid := newTestGrid(t, 40, 40, 64)
		synth := NewSynthesizer(cfg, noise.NewField(seed))
		if err := synth.Generate(context.Background(), grid); err != nil {
			t.Fatalf("generate: %v", err)
		}
		return grid
	}

	a, b := run(1), run(2)
	diff := 0
	for i, m := range a.Raw() {
		if m != b.Raw()[i] {
			diff++
		}
	}
	if diff == 0 {
		t.Fatalf("different seeds produced identical grids")
	}
}

func TestHeightmapLeavesLowlandsForWater(t *testing.T) {
	cfg := testTerrainConfig()
	synth := NewSynthesizer(cfg, noise.NewField(42))

	// Full default height: the mountain band must raise only part of the
	// map, leaving columns below the water level for lakes and shoreline.
	hm, err := synth.BuildHeightmap(context.Background(), 64, 64, 128)
	if err != nil {
		t.Fatalf("heightmap: %v", err)
	}

	lowest := hm.At(0, 0)
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			if h := hm.At(x, y); h < lowest {
				lowest = h
			}
		}
	}
	if lowest >= float64(cfg.WaterLevel) {
		t.Fatalf("lowest column %f never drops below water level %d, map has no basins",
			lowest, cfg.WaterLevel)
	}
}

func TestHeightmapTilesSeamlessly(t *testing.T) {
	cfg := testTerrainConfig()
	synth := NewSynthesizer(cfg, noise.NewField(555))

	hm, err := synth.BuildHeightmap(context.Background(), 64, 64, 64)
	if err != nil {
		t.Fatalf("heightmap: %v", err)
	}

	// A wrapped copy shifted by one period must match exactly, which the
	// composed bands guarantee through the periodic basis. Here we check
	// the boundary gradient instead: the jump across the seam must be no
	// larger than jumps in the interior.
	maxSeamJump := 0.0
	maxInnerJump := 0.0
	for y := 0; y < 64; y++ {
		seam := abs64(hm.At(0, y) - hm.At(63, y))
		if seam > maxSeamJump {
			maxSeamJump = seam
		}
		for x := 1; x < 63; x++ {
			jump := abs64(hm.At(x, y) - hm.At(x-1, y))
			if jump > maxInnerJump {
				maxInnerJump = jump
			}
		}
	}
	if maxSeamJump > maxInnerJump*1.5+1 {
		t.Fatalf("seam jump %f exceeds interior jumps %f", maxSeamJump, maxInnerJump)
	}
}

func TestMaterialLayering(t *testing.T) {
	cfg := testTerrainConfig()
	cfg.SnowLine = 50
	cfg.WaterLevel = 10
	cfg.BeachMargin = 3
	cfg.BeachMaxSlope = 30
	cfg.CliffSlope = 70
	synth := NewSynthesizer(cfg, noise.NewField(1))

	tests := []struct {
		name    string
		z       int
		surface int
		slope   float64
		want    voxel.Material
	}{
		{"snow cap", 55, 55, 0, voxel.Snow},
		{"snow below cap stays", 54, 55, 0, voxel.Snow},
		{"cliff face", 30, 30, 80, voxel.Stone},
		{"grass surface", 30, 30, 10, voxel.Grass},
		{"beach surface", 12, 12, 5, voxel.Sand},
		{"steep shore keeps grass", 12, 12, 45, voxel.Grass},
		{"dirt under grass", 29, 30, 10, voxel.Dirt},
		{"stone core", 10, 30, 10, voxel.Stone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := synth.materialAt(tt.z, tt.surface, tt.slope); got != tt.want {
				t.Fatalf("materialAt(z=%d, surface=%d, slope=%f): got %v want %v",
					tt.z, tt.surface, tt.slope, got, tt.want)
			}
		})
	}
}

func TestGenerateHonorsCancellation(t *testing.T) {
	cfg := testTerrainConfig()
	grid := newTestGrid(t, 64, 64, 64)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	synth := NewSynthesizer(cfg, noise.NewField(9))
	if err := synth.Generate(ctx, grid); err == nil {
		t.Fatalf("expected context error from cancelled generate")
	}
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
