package terrain

import (
	"context"
	"log"

	"landgen/internal/config"
	"landgen/internal/noise"
	"landgen/internal/voxel"
)

// Carver hollows cave volumes out of the subsurface using thresholded 3D
// noise, then runs a connectivity pass that refills any carve which would
// leave solid terrain floating.
type Carver struct {
	cfg        config.CaveConfig
	waterLevel int
	field      *noise.Field
}

func NewCarver(cfg config.CaveConfig, waterLevel int, field *noise.Field) *Carver {
	return &Carver{cfg: cfg, waterLevel: waterLevel, field: field}
}

// CarveStats summarizes a carving pass.
type CarveStats struct {
	Eligible     int // voxels inside the depth band that were considered
	Carved       int // voxels hollowed to AIR
	Refilled     int // carved voxels restored by the stability pass
	StablePasses int // flood-fill iterations until a fixed point
}

// Carve mutates the grid in place. Carving is restricted to a depth band
// below each column's surface and never opens voids at or below the water
// level, so lakes keep their beds.
func (c *Carver) Carve(ctx context.Context, grid *voxel.Grid) (CarveStats, error) {
	var stats CarveStats
	if !c.cfg.Enabled {
		return stats, nil
	}

	grid.BuildSurfaceCache()

	height := grid.Height()
	minZ := int(c.cfg.MinDepthRatio * float64(height))
	bandCap := int(c.cfg.MaxDepthRatio * float64(height))

	oct := noise.Octaves{
		Count:       c.cfg.Octaves,
		Persistence: 0.5,
		Lacunarity:  2.0,
		Scale:       c.cfg.Scale,
	}

	// Original material per carved cell, so instability recovery can put
	// back exactly what was removed.
	carved := make(map[int]voxel.Material)

	for x := 0; x < grid.Width(); x++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		for y := 0; y < grid.Depth(); y++ {
			surface := grid.SurfaceHeight(x, y)
			maxZ := surface - c.cfg.SurfaceMargin
			if maxZ > bandCap {
				maxZ = bandCap
			}
			for z := minZ; z < maxZ; z++ {
				if z <= c.waterLevel {
					continue
				}
				m := grid.Get(x, y, z)
				if !m.Solid() {
					continue
				}
				stats.Eligible++
				sample := c.field.Sample3(float64(x), float64(y), float64(z), oct, grid.Width(), grid.Depth())
				if sample > c.cfg.Threshold {
					carved[grid.Index(x, y, z)] = m
					grid.Set(x, y, z, voxel.Air)
					stats.Carved++
				}
			}
		}
	}

	if stats.Carved == 0 {
		return stats, nil
	}

	refilled := c.enforceStability(grid, carved, &stats)
	if refilled > 0 {
		log.Printf("cave carve: refilled %d voxels to keep terrain grounded", refilled)
	}
	return stats, nil
}

// enforceStability flood-fills the solid volume from the ground plane and
// the grid's lateral boundary. Solid voxels the fill cannot reach were
// disconnected by carving; the carved voxels around them are restored and
// the fill repeats until every solid voxel is anchored.
func (c *Carver) enforceStability(grid *voxel.Grid, carved map[int]voxel.Material, stats *CarveStats) int {
	totalRefilled := 0
	for {
		stats.StablePasses++
		orphans := c.orphanedSolids(grid)
		if len(orphans) == 0 {
			return totalRefilled
		}

		refilled := 0
		for _, idx := range orphans {
			for _, nIdx := range c.neighborIndices(grid, idx) {
				if original, ok := carved[nIdx]; ok {
					x, y, z := c.coords(grid, nIdx)
					grid.Set(x, y, z, original)
					delete(carved, nIdx)
					refilled++
				}
			}
		}

		if refilled == 0 {
			// No carved voxel borders the orphan region; nothing left to
			// restore. Does not occur for column-built terrain.
			log.Printf("cave carve: %d solid voxels remain unanchored", len(orphans))
			return totalRefilled
		}
		totalRefilled += refilled
		stats.Refilled += refilled
	}
}

// orphanedSolids returns the flat indices of solid voxels with no 6-connected
// solid path to the ground plane or the grid boundary. The fill uses an
// explicit queue over flat indices; no recursion.
func (c *Carver) orphanedSolids(grid *voxel.Grid) []int {
	width, depth, height := grid.Width(), grid.Depth(), grid.Height()
	data := grid.Raw()
	visited := make([]bool, len(data))
	queue := make([]int, 0, width*depth)

	push := func(idx int) {
		if !visited[idx] && data[idx].Solid() {
			visited[idx] = true
			queue = append(queue, idx)
		}
	}

	// Anchors: the ground plane plus the four lateral boundary faces.
	for x := 0; x < width; x++ {
		for y := 0; y < depth; y++ {
			base := (x*depth + y) * height
			push(base)
			if x == 0 || x == width-1 || y == 0 || y == depth-1 {
				for z := 1; z < height; z++ {
					push(base + z)
				}
			}
		}
	}

	for len(queue) > 0 {
		idx := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		for _, nIdx := range c.neighborIndices(grid, idx) {
			push(nIdx)
		}
	}

	var orphans []int
	for idx, m := range data {
		if m.Solid() && !visited[idx] {
			orphans = append(orphans, idx)
		}
	}
	return orphans
}

func (c *Carver) coords(grid *voxel.Grid, idx int) (int, int, int) {
	height := grid.Height()
	depth := grid.Depth()
	z := idx % height
	rest := idx / height
	y := rest % depth
	x := rest / depth
	return x, y, z
}

func (c *Carver) neighborIndices(grid *voxel.Grid, idx int) []int {
	width, depth, height := grid.Width(), grid.Depth(), grid.Height()
	x, y, z := c.coords(grid, idx)

	neighbors := make([]int, 0, 6)
	if z > 0 {
		neighbors = append(neighbors, idx-1)
	}
	if z < height-1 {
		neighbors = append(neighbors, idx+1)
	}
	if y > 0 {
		neighbors = append(neighbors, idx-height)
	}
	if y < depth-1 {
		neighbors = append(neighbors, idx+height)
	}
	if x > 0 {
		neighbors = append(neighbors, idx-depth*height)
	}
	if x < width-1 {
		neighbors = append(neighbors, idx+depth*height)
	}
	return neighbors
}
