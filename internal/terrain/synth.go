// Package terrain builds the voxel landscape: a tileable heightmap composed
// from warped noise bands, material layering, standing water, and the cave
// carving pass.
package terrain

import (
	"context"
	"log"
	"math"
	"runtime"
	"sync"

	"landgen/internal/config"
	"landgen/internal/noise"
	"landgen/internal/voxel"
)

// Synthesizer fills a grid from composed noise bands.
type Synthesizer struct {
	cfg   config.TerrainConfig
	field *noise.Field
}

func NewSynthesizer(cfg config.TerrainConfig, field *noise.Field) *Synthesizer {
	return &Synthesizer{cfg: cfg, field: field}
}

// Generate writes the full terrain volume into the grid: heightmap, layered
// materials, and standing water. The grid must be all-AIR on entry.
func (s *Synthesizer) Generate(ctx context.Context, grid *voxel.Grid) error {
	heights, err := s.BuildHeightmap(ctx, grid.Width(), grid.Depth(), grid.Height())
	if err != nil {
		return err
	}
	if err := s.fillColumns(ctx, grid, heights); err != nil {
		return err
	}
	s.fillWater(grid)
	return nil
}

// Heightmap is a transient per-column elevation field. It is recomputed on
// every run and never persisted.
type Heightmap struct {
	Width  int
	Depth  int
	Values []float64
}

func (h *Heightmap) At(x, y int) float64 {
	return h.Values[x*h.Depth+y]
}

// SlopeAt returns the surface slope in degrees derived from the
// finite-difference gradient, with wrapped neighbors so the slope field has
// no seam at the tiling boundary.
func (h *Heightmap) SlopeAt(x, y int) float64 {
	xl := x - 1
	if xl < 0 {
		xl = h.Width - 1
	}
	xr := x + 1
	if xr >= h.Width {
		xr = 0
	}
	yf := y - 1
	if yf < 0 {
		yf = h.Depth - 1
	}
	yb := y + 1
	if yb >= h.Depth {
		yb = 0
	}
	dx := (h.At(xr, y) - h.At(xl, y)) / 2
	dy := (h.At(x, yb) - h.At(x, yf)) / 2
	return math.Atan(math.Hypot(dx, dy)) * 180 / math.Pi
}

// BuildHeightmap composes the continental, mountain and detail bands into an
// elevation field clamped to [1, maxHeight-1]. Every band samples the
// periodic basis, so the map tiles seamlessly in X and Y.
func (s *Synthesizer) BuildHeightmap(ctx context.Context, width, depth, maxHeight int) (*Heightmap, error) {
	hm := &Heightmap{
		Width:  width,
		Depth:  depth,
		Values: make([]float64, width*depth),
	}

	workers := s.workerCount(width)
	rows := make(chan int, workers)
	var wg sync.WaitGroup
	errOnce := makeErrOnce()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for x := range rows {
				// Keep draining on error so the producer never blocks.
				if err := ctx.Err(); err != nil {
					errOnce.set(err)
					continue
				}
				for y := 0; y < depth; y++ {
					hm.Values[x*depth+y] = s.heightAt(float64(x), float64(y), width, depth, maxHeight)
				}
			}
		}()
	}

	for x := 0; x < width; x++ {
		rows <- x
	}
	close(rows)
	wg.Wait()

	if err := errOnce.get(); err != nil {
		return nil, err
	}
	return hm, nil
}

func (s *Synthesizer) heightAt(x, y float64, width, depth, maxHeight int) float64 {
	w := float64(width)
	d := float64(depth)
	h := float64(maxHeight)

	continental := s.field.WarpTileable2(x, y, w, d, s.cfg.WarpStrength, noise.Octaves{
		Count:       2,
		Persistence: s.cfg.Persistence,
		Lacunarity:  s.cfg.Lacunarity,
		Scale:       s.cfg.ContinentalScale,
	})

	mountainBase := s.field.Tileable2(x, y, w, d, noise.Octaves{
		Count:       s.cfg.Octaves,
		Persistence: s.cfg.Persistence,
		Lacunarity:  s.cfg.Lacunarity,
		Scale:       s.cfg.MountainScale,
	})
	// Only the positive half of the noise raises mountains; squaring
	// sharpens the peaks and leaves the other half of the map as lowland,
	// which is where standing water collects.
	mountain := math.Max(0, mountainBase)
	mountain *= mountain

	detail := s.field.Tileable2(x, y, w, d, noise.Octaves{
		Count:       s.cfg.Octaves + 2,
		Persistence: s.cfg.Persistence,
		Lacunarity:  s.cfg.Lacunarity,
		Scale:       s.cfg.DetailScale,
	})

	valleyBase := s.field.Tileable2(x, y, w, d, noise.Octaves{
		Count:       2,
		Persistence: s.cfg.Persistence,
		Lacunarity:  s.cfg.Lacunarity,
		Scale:       s.cfg.ValleyScale,
	})
	valley := math.Max(0, -valleyBase) * s.cfg.ValleyDepth

	// Band weights relative to grid height: 40% base terrain, ~47%
	// mountain amplitude, 8% detail.
	height := (continental*0.4+0.5)*(h*0.40) +
		mountain*(h*0.47) +
		detail*(h*0.08) -
		valley

	return clampFloat(height, 1, h-1)
}

func (s *Synthesizer) fillColumns(ctx context.Context, grid *voxel.Grid, hm *Heightmap) error {
	width := grid.Width()
	depth := grid.Depth()
	totalColumns := width * depth

	type columnResult struct {
		x, y   int
		column []voxel.Material
	}

	workers := s.workerCount(totalColumns)
	tasks := make(chan [2]int, workers)
	results := make(chan columnResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				x, y := task[0], task[1]
				surface := int(hm.At(x, y))
				slope := hm.SlopeAt(x, y)
				column := make([]voxel.Material, surface+1)
				for z := 0; z <= surface; z++ {
					column[z] = s.materialAt(z, surface, slope)
				}
				results <- columnResult{x: x, y: y, column: column}
			}
		}()
	}

	go func() {
		defer close(tasks)
		for x := 0; x < width; x++ {
			for y := 0; y < depth; y++ {
				select {
				case <-ctx.Done():
					return
				case tasks <- [2]int{x, y}:
				}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	filled := 0
	nextLogPercent := 10
	for result := range results {
		grid.WriteColumn(result.x, result.y, result.column)
		filled++
		progress := filled * 100 / totalColumns
		if progress >= nextLogPercent {
			log.Printf("terrain fill progress: %d%%", progress)
			nextLogPercent = ((progress / 10) + 1) * 10
		}
	}

	return ctx.Err()
}

// materialAt decides the material for one voxel from its height band, depth
// below the surface, and the column's slope.
func (s *Synthesizer) materialAt(z, surface int, slope float64) voxel.Material {
	depthBelow := surface - z

	if z >= s.cfg.SnowLine && depthBelow < 2 {
		return voxel.Snow
	}

	// Cliffs shed their soil cover and expose bare stone.
	if slope >= s.cfg.CliffSlope {
		return voxel.Stone
	}

	beach := z <= s.cfg.WaterLevel+s.cfg.BeachMargin && slope <= s.cfg.BeachMaxSlope

	if depthBelow == 0 {
		if beach {
			return voxel.Sand
		}
		return voxel.Grass
	}
	if depthBelow < s.dirtDepthAt(surface) {
		if beach {
			return voxel.Sand
		}
		return voxel.Dirt
	}
	return voxel.Stone
}

// dirtDepthAt thins the soil layer at high elevations and thickens it in the
// lowlands, staying within [1, 4].
func (s *Synthesizer) dirtDepthAt(surface int) int {
	d := s.cfg.DirtDepth
	if surface >= s.cfg.SnowLine {
		d--
	} else if surface <= s.cfg.WaterLevel*2 {
		d++
	}
	if d < 1 {
		d = 1
	}
	if d > 4 {
		d = 4
	}
	return d
}

// fillWater floods every air voxel at or below the water level, which keeps
// the standing-water invariant: columns lower than the water level carry
// WATER from their surface up to the water line.
func (s *Synthesizer) fillWater(grid *voxel.Grid) {
	level := s.cfg.WaterLevel
	for x := 0; x < grid.Width(); x++ {
		for y := 0; y < grid.Depth(); y++ {
			for z := 0; z <= level && z < grid.Height(); z++ {
				if grid.Get(x, y, z) == voxel.Air {
					grid.Set(x, y, z, voxel.Water)
				}
			}
		}
	}
}

func (s *Synthesizer) workerCount(totalTasks int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > totalTasks {
		workers = totalTasks
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

type errOnce struct {
	mu  sync.Mutex
	err error
}

func makeErrOnce() *errOnce { return &errOnce{} }

func (e *errOnce) set(err error) {
	e.mu.Lock()
	if e.err == nil {
		e.err = err
	}
	e.mu.Unlock()
}

func (e *errOnce) get() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}
