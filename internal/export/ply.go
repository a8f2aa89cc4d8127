package export

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"landgen/internal/mesh"
)

// WritePLY emits the mesh as ASCII PLY with per-vertex normals and colors.
func WritePLY(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "ply")
	fmt.Fprintln(bw, "format ascii 1.0")
	fmt.Fprintln(bw, "comment generated by landgen")
	fmt.Fprintf(bw, "element vertex %d\n", m.VertexCount())
	fmt.Fprintln(bw, "property float x")
	fmt.Fprintln(bw, "property float y")
	fmt.Fprintln(bw, "property float z")
	fmt.Fprintln(bw, "property float nx")
	fmt.Fprintln(bw, "property float ny")
	fmt.Fprintln(bw, "property float nz")
	fmt.Fprintln(bw, "property uchar red")
	fmt.Fprintln(bw, "property uchar green")
	fmt.Fprintln(bw, "property uchar blue")
	fmt.Fprintf(bw, "element face %d\n", m.TriangleCount())
	fmt.Fprintln(bw, "property list uchar uint vertex_indices")
	fmt.Fprintln(bw, "end_header")

	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "%.4f %.4f %.4f %.4f %.4f %.4f %d %d %d\n",
			v.Position.X(), v.Position.Y(), v.Position.Z(),
			v.Normal.X(), v.Normal.Y(), v.Normal.Z(),
			channelByte(v.Color.X()), channelByte(v.Color.Y()), channelByte(v.Color.Z()))
	}
	for _, t := range m.Triangles {
		fmt.Fprintf(bw, "3 %d %d %d\n", t[0], t[1], t[2])
	}
	return bw.Flush()
}

// SavePLY writes the mesh to a file.
func SavePLY(path string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create ply: %w", err)
	}
	defer f.Close()
	if err := WritePLY(f, m); err != nil {
		return fmt.Errorf("write ply: %w", err)
	}
	return nil
}

func channelByte(c float32) int {
	v := int(c*255 + 0.5)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
