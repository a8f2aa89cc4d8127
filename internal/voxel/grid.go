package voxel

import (
	"fmt"
	"math"
)

// Default grid extents. The generator targets a fixed 256x256x128 volume;
// smaller grids are allowed for tests and previews.
const (
	DefaultWidth  = 256
	DefaultDepth  = 256
	DefaultHeight = 128

	// maxCells bounds a single allocation so a bad config fails with an
	// error instead of exhausting memory.
	maxCells = 1 << 28
)

// Grid is a dense 3D volume of materials. It is owned by the generation
// pipeline: phases mutate it in place, strictly one at a time, and it is
// treated as read-only once surface extraction begins.
type Grid struct {
	width  int
	depth  int
	height int
	data   []Material

	surface      []int16
	surfaceValid bool
}

// NewGrid allocates an all-AIR grid with the given extents.
func NewGrid(width, depth, height int) (*Grid, error) {
	if width <= 0 || depth <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid extents must be positive, got %dx%dx%d", width, depth, height)
	}
	cells := width * depth * height
	if cells > maxCells {
		return nil, fmt.Errorf("grid %dx%dx%d exceeds %d cells", width, depth, height, maxCells)
	}
	return &Grid{
		width:  width,
		depth:  depth,
		height: height,
		data:   make([]Material, cells),
	}, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Depth() int  { return g.depth }
func (g *Grid) Height() int { return g.height }

// TotalCells returns the number of voxels in the grid.
func (g *Grid) TotalCells() int { return len(g.data) }

// Index converts coordinates to the flat data index. Columns are contiguous
// so vertical scans stay cache-friendly.
func (g *Grid) Index(x, y, z int) int {
	return (x*g.depth+y)*g.height + z
}

// InBounds reports whether the coordinates lie inside the grid.
func (g *Grid) InBounds(x, y, z int) bool {
	return x >= 0 && x < g.width &&
		y >= 0 && y < g.depth &&
		z >= 0 && z < g.height
}

// Get returns the material at the position, AIR when out of bounds.
func (g *Grid) Get(x, y, z int) Material {
	if !g.InBounds(x, y, z) {
		return Air
	}
	return g.data[g.Index(x, y, z)]
}

// Set writes the material at the position. Writes outside the grid are
// silently dropped, matching stamp clipping semantics.
func (g *Grid) Set(x, y, z int, m Material) {
	if !g.InBounds(x, y, z) {
		return
	}
	g.data[g.Index(x, y, z)] = m
	g.surfaceValid = false
}

// GetWrapped reads with X/Y wrapped modulo the grid extents so samples taken
// across the tiling boundary resolve to the same cells.
func (g *Grid) GetWrapped(x, y, z int) Material {
	x = wrap(x, g.width)
	y = wrap(y, g.depth)
	if z < 0 || z >= g.height {
		return Air
	}
	return g.data[g.Index(x, y, z)]
}

// SetWrapped writes with X/Y wrapped modulo the grid extents.
func (g *Grid) SetWrapped(x, y, z int, m Material) {
	x = wrap(x, g.width)
	y = wrap(y, g.depth)
	if z < 0 || z >= g.height {
		return
	}
	g.data[g.Index(x, y, z)] = m
	g.surfaceValid = false
}

func wrap(v, size int) int {
	v %= size
	if v < 0 {
		v += size
	}
	return v
}

// Solid reports whether the voxel at the position holds solid material.
func (g *Grid) Solid(x, y, z int) bool {
	return g.Get(x, y, z).Solid()
}

// FillColumn writes the material into [zStart, zEnd] of one column, clipped
// to the grid.
func (g *Grid) FillColumn(x, y, zStart, zEnd int, m Material) {
	if x < 0 || x >= g.width || y < 0 || y >= g.depth {
		return
	}
	if zStart < 0 {
		zStart = 0
	}
	if zEnd >= g.height {
		zEnd = g.height - 1
	}
	base := (x*g.depth + y) * g.height
	for z := zStart; z <= zEnd; z++ {
		g.data[base+z] = m
	}
	g.surfaceValid = false
}

// WriteColumn replaces a column's materials starting at z=0. The slice may
// be shorter than the grid height; remaining cells keep their value.
func (g *Grid) WriteColumn(x, y int, column []Material) {
	if x < 0 || x >= g.width || y < 0 || y >= g.depth {
		return
	}
	n := len(column)
	if n > g.height {
		n = g.height
	}
	base := (x*g.depth + y) * g.height
	copy(g.data[base:base+n], column[:n])
	g.surfaceValid = false
}

// SurfaceHeight returns the z of the topmost solid voxel in the column, or
// -1 when the column holds no solid material.
func (g *Grid) SurfaceHeight(x, y int) int {
	if x < 0 || x >= g.width || y < 0 || y >= g.depth {
		return -1
	}
	if g.surfaceValid {
		return int(g.surface[x*g.depth+y])
	}
	base := (x*g.depth + y) * g.height
	for z := g.height - 1; z >= 0; z-- {
		if g.data[base+z].Solid() {
			return z
		}
	}
	return -1
}

// SurfaceMaterial returns the material of the topmost solid voxel, AIR for
// an empty column.
func (g *Grid) SurfaceMaterial(x, y int) Material {
	z := g.SurfaceHeight(x, y)
	if z < 0 {
		return Air
	}
	return g.Get(x, y, z)
}

// BuildSurfaceCache computes the full heightmap once so subsequent
// SurfaceHeight calls are O(1). Any Set invalidates it.
func (g *Grid) BuildSurfaceCache() {
	if g.surfaceValid {
		return
	}
	if g.surface == nil {
		g.surface = make([]int16, g.width*g.depth)
	}
	for x := 0; x < g.width; x++ {
		for y := 0; y < g.depth; y++ {
			base := (x*g.depth + y) * g.height
			h := -1
			for z := g.height - 1; z >= 0; z-- {
				if g.data[base+z].Solid() {
					h = z
					break
				}
			}
			g.surface[x*g.depth+y] = int16(h)
		}
	}
	g.surfaceValid = true
}

// SlopeAt returns the surface slope angle in degrees at the column, derived
// from the finite-difference height gradient. Neighbor columns wrap so the
// slope field is seamless across the tiling boundary.
func (g *Grid) SlopeAt(x, y int) float64 {
	hl := g.SurfaceHeight(wrap(x-1, g.width), y)
	hr := g.SurfaceHeight(wrap(x+1, g.width), y)
	hf := g.SurfaceHeight(x, wrap(y-1, g.depth))
	hb := g.SurfaceHeight(x, wrap(y+1, g.depth))

	dx := float64(hr-hl) / 2
	dy := float64(hb-hf) / 2
	return math.Atan(math.Hypot(dx, dy)) * 180 / math.Pi
}

// CountMaterial counts voxels holding the material.
func (g *Grid) CountMaterial(m Material) int {
	n := 0
	for _, v := range g.data {
		if v == m {
			n++
		}
	}
	return n
}

// Histogram returns a per-material voxel count, indexed by Material value.
func (g *Grid) Histogram() map[Material]int {
	hist := make(map[Material]int, int(materialCount))
	for _, v := range g.data {
		hist[v]++
	}
	return hist
}

// SolidCount counts all solid voxels.
func (g *Grid) SolidCount() int {
	n := 0
	for _, v := range g.data {
		if v.Solid() {
			n++
		}
	}
	return n
}

// ForEach visits every voxel in row-major (x, y, z) order, the iteration
// order exporters rely on. Returning false from fn stops the walk.
func (g *Grid) ForEach(fn func(x, y, z int, m Material) bool) {
	for x := 0; x < g.width; x++ {
		for y := 0; y < g.depth; y++ {
			base := (x*g.depth + y) * g.height
			for z := 0; z < g.height; z++ {
				if !fn(x, y, z, g.data[base+z]) {
					return
				}
			}
		}
	}
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	dup := &Grid{
		width:  g.width,
		depth:  g.depth,
		height: g.height,
		data:   make([]Material, len(g.data)),
	}
	copy(dup.data, g.data)
	return dup
}

// Raw exposes the underlying material slice for read-only consumers such as
// the binary exporter. Callers must not retain it across mutations.
func (g *Grid) Raw() []Material {
	return g.data
}

func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%dx%d, %d/%d solid)", g.width, g.depth, g.height, g.SolidCount(), len(g.data))
}
