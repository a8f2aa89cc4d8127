// Package export serializes generated grids and meshes to interchange
// formats: Wavefront OBJ, ASCII PLY, JSON, a compact binary grid dump, and
// a top-down PNG preview.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"landgen/internal/mesh"
)

// WriteOBJ emits the mesh as Wavefront OBJ. Vertex colors use the common
// "v x y z r g b" extension so viewers that support it pick up the terrain
// palette without a separate texture.
func WriteOBJ(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# landgen terrain mesh: %d vertices, %d triangles\n",
		m.VertexCount(), m.TriangleCount())

	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %.4f %.4f %.4f %.4f %.4f %.4f\n",
			v.Position.X(), v.Position.Y(), v.Position.Z(),
			v.Color.X(), v.Color.Y(), v.Color.Z())
	}
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "vn %.4f %.4f %.4f\n",
			v.Normal.X(), v.Normal.Y(), v.Normal.Z())
	}
	// OBJ indices are 1-based.
	for _, t := range m.Triangles {
		fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n",
			t[0]+1, t[0]+1, t[1]+1, t[1]+1, t[2]+1, t[2]+1)
	}
	return bw.Flush()
}

// SaveOBJ writes the mesh to a file.
func SaveOBJ(path string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create obj: %w", err)
	}
	defer f.Close()
	if err := WriteOBJ(f, m); err != nil {
		return fmt.Errorf("write obj: %w", err)
	}
	return nil
}
