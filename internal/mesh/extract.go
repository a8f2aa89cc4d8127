package mesh

import (
	"context"
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"landgen/internal/config"
	"landgen/internal/voxel"
)

const isoLevel = 0.5

// edgeOwner maps a cube edge to the lattice corner that owns its vertex and
// the axis the edge runs along. Two cubes sharing an edge resolve to the
// same owner, which is what makes the mesh watertight across cube seams.
var edgeOwner = [12]struct {
	corner int
	axis   int
}{
	{0, 0}, {1, 1}, {3, 0}, {0, 1},
	{4, 0}, {5, 1}, {7, 0}, {4, 1},
	{0, 2}, {1, 2}, {2, 2}, {3, 2},
}

type vertexKey struct {
	x, y, z int
	axis    int
}

// Extractor runs marching cubes over a voxel grid, producing an indexed
// triangle mesh with per-vertex gradient normals and material colors.
type Extractor struct {
	cfg config.MeshConfig
}

func NewExtractor(cfg config.MeshConfig) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract walks every cube of the grid's lattice. Cubes whose eight corners
// agree are skipped before any table lookup, which is the common case by a
// wide margin on real terrain.
func (e *Extractor) Extract(ctx context.Context, grid *voxel.Grid) (*Mesh, error) {
	out := &Mesh{}
	lo, hiX, hiY, hiZ := 0, grid.Width()-1, grid.Depth()-1, grid.Height()-1
	if e.cfg.CapBoundary {
		// One extra cube layer on every face so the surface closes
		// against the implicit air outside the grid.
		lo = -1
		hiX, hiY, hiZ = grid.Width(), grid.Depth(), grid.Height()
	}
	if hiX <= lo || hiY <= lo || hiZ <= lo {
		return out, nil
	}

	cache := make(map[vertexKey]uint32)
	cubes := 0
	emitted := 0

	for x := lo; x < hiX; x++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for y := lo; y < hiY; y++ {
			for z := lo; z < hiZ; z++ {
				cubes++
				index := e.cubeIndex(grid, x, y, z)
				if edgeTable[index] == 0 {
					continue
				}
				emitted += e.emitCube(grid, out, cache, x, y, z, index)
			}
		}
	}

	log.Printf("mesh extraction: %d cubes scanned, %d triangles, %d vertices",
		cubes, emitted, len(out.Vertices))
	return out, nil
}

// cubeIndex packs the solidity of the eight corners into a table index,
// bit i set when corner i is below the isolevel.
func (e *Extractor) cubeIndex(grid *voxel.Grid, x, y, z int) int {
	index := 0
	for i, off := range cornerOffsets {
		if e.density(grid, x+off[0], y+off[1], z+off[2]) < isoLevel {
			index |= 1 << i
		}
	}
	return index
}

func (e *Extractor) emitCube(grid *voxel.Grid, out *Mesh, cache map[vertexKey]uint32, x, y, z, index int) int {
	var edgeVerts [12]uint32
	edges := edgeTable[index]
	for edge := 0; edge < 12; edge++ {
		if edges&(1<<edge) == 0 {
			continue
		}
		edgeVerts[edge] = e.vertexOnEdge(grid, out, cache, x, y, z, edge)
	}

	count := 0
	row := &triTable[index]
	for i := 0; row[i] != -1; i += 3 {
		out.Triangles = append(out.Triangles, [3]uint32{
			edgeVerts[row[i]],
			edgeVerts[row[i+1]],
			edgeVerts[row[i+2]],
		})
		count++
	}
	return count
}

// vertexOnEdge returns the mesh index of the vertex on the given cube edge,
// creating it on first use. The cache key is the edge's owning lattice
// corner plus axis, so neighbouring cubes reuse the same vertex.
func (e *Extractor) vertexOnEdge(grid *voxel.Grid, out *Mesh, cache map[vertexKey]uint32, x, y, z, edge int) uint32 {
	owner := edgeOwner[edge]
	off := cornerOffsets[owner.corner]
	key := vertexKey{x: x + off[0], y: y + off[1], z: z + off[2], axis: owner.axis}
	if idx, ok := cache[key]; ok {
		return idx
	}

	a, b := edgeCorners[edge][0], edgeCorners[edge][1]
	oa, ob := cornerOffsets[a], cornerOffsets[b]
	ax, ay, az := x+oa[0], y+oa[1], z+oa[2]
	bx, by, bz := x+ob[0], y+ob[1], z+ob[2]

	da := e.density(grid, ax, ay, az)
	db := e.density(grid, bx, by, bz)
	t := float32(0.5)
	if da != db {
		t = float32((isoLevel - da) / (db - da))
	}

	pos := mgl32.Vec3{
		float32(ax) + t*float32(bx-ax),
		float32(ay) + t*float32(by-ay),
		float32(az) + t*float32(bz-az),
	}
	normal := e.gradientNormal(grid, ax, ay, az).Mul(1 - t).
		Add(e.gradientNormal(grid, bx, by, bz).Mul(t))
	if normal.Len() > 0 {
		normal = normal.Normalize()
	} else {
		normal = mgl32.Vec3{0, 0, 1}
	}

	idx := uint32(len(out.Vertices))
	out.Vertices = append(out.Vertices, Vertex{
		Position: pos,
		Normal:   normal,
		Color:    e.edgeColor(grid, ax, ay, az, bx, by, bz),
	})
	cache[key] = idx
	return idx
}

// gradientNormal estimates the surface normal at a lattice point by central
// differences over the density field. Density falls toward air, so the
// negated gradient points out of the terrain.
func (e *Extractor) gradientNormal(grid *voxel.Grid, x, y, z int) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(e.density(grid, x-1, y, z) - e.density(grid, x+1, y, z)),
		float32(e.density(grid, x, y-1, z) - e.density(grid, x, y+1, z)),
		float32(e.density(grid, x, y, z-1) - e.density(grid, x, y, z+1)),
	}
}

// edgeColor takes the material color of whichever edge endpoint is solid.
func (e *Extractor) edgeColor(grid *voxel.Grid, ax, ay, az, bx, by, bz int) mgl32.Vec3 {
	m := voxel.Air
	if grid.InBounds(ax, ay, az) && grid.Get(ax, ay, az).Solid() {
		m = grid.Get(ax, ay, az)
	} else if grid.InBounds(bx, by, bz) && grid.Get(bx, by, bz).Solid() {
		m = grid.Get(bx, by, bz)
	}
	c := m.Color()
	return mgl32.Vec3{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
}

// density is 1 inside terrain and 0 in air, water, and everything outside
// the grid.
func (e *Extractor) density(grid *voxel.Grid, x, y, z int) float64 {
	if !grid.InBounds(x, y, z) {
		return 0
	}
	if grid.Get(x, y, z).Solid() {
		return 1
	}
	return 0
}
