package mesh

import "github.com/go-gl/mathgl/mgl32"

// Vertex is a single point on the extracted isosurface.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Color    mgl32.Vec3
}

// Mesh is an indexed triangle mesh. Vertices on shared cube edges are
// emitted once and referenced by every adjacent triangle.
type Mesh struct {
	Vertices  []Vertex
	Triangles [][3]uint32
}

func (m *Mesh) Empty() bool { return len(m.Triangles) == 0 }

func (m *Mesh) VertexCount() int { return len(m.Vertices) }

func (m *Mesh) TriangleCount() int { return len(m.Triangles) }
