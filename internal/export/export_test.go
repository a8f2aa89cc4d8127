package export

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"landgen/internal/config"
	"landgen/internal/mesh"
	"landgen/internal/voxel"
)

func sampleGrid(t *testing.T) *voxel.Grid {
	t.Helper()
	grid, err := voxel.NewGrid(8, 8, 16)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			grid.FillColumn(x, y, 0, 3, voxel.Stone)
			grid.Set(x, y, 4, voxel.Grass)
		}
	}
	grid.Set(3, 3, 5, voxel.Wood)
	grid.Set(0, 0, 4, voxel.Water)
	return grid
}

func sampleMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := mesh.NewExtractor(config.MeshConfig{}).Extract(context.Background(), sampleGrid(t))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if m.Empty() {
		t.Fatalf("sample mesh is empty")
	}
	return m
}

func TestBinaryRoundTrip(t *testing.T) {
	grid := sampleGrid(t)
	var buf bytes.Buffer

	if err := WriteBinary(&buf, grid, 42); err != nil {
		t.Fatalf("write binary: %v", err)
	}

	loaded, seed, err := ReadBinary(&buf)
	if err != nil {
		t.Fatalf("read binary: %v", err)
	}
	if seed != 42 {
		t.Fatalf("seed: got %d want 42", seed)
	}
	if loaded.Width() != grid.Width() || loaded.Depth() != grid.Depth() || loaded.Height() != grid.Height() {
		t.Fatalf("dimensions changed: %v vs %v", loaded, grid)
	}
	for i, m := range grid.Raw() {
		if loaded.Raw()[i] != m {
			t.Fatalf("cell %d changed: %v -> %v", i, m, loaded.Raw()[i])
		}
	}
}

func TestBinaryRejectsGarbage(t *testing.T) {
	if _, _, err := ReadBinary(strings.NewReader("not a grid dump")); err == nil {
		t.Fatalf("expected error for garbage input")
	}
}

func TestBinaryFileRoundTrip(t *testing.T) {
	grid := sampleGrid(t)
	path := filepath.Join(t.TempDir(), "terrain.voxel")

	if err := SaveBinary(path, grid, 7); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, seed, err := LoadBinary(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if seed != 7 || loaded.TotalCells() != grid.TotalCells() {
		t.Fatalf("file round trip mismatch: seed %d cells %d", seed, loaded.TotalCells())
	}
}

func TestJSONDocumentShape(t *testing.T) {
	grid := sampleGrid(t)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, grid, 99); err != nil {
		t.Fatalf("write json: %v", err)
	}

	var doc GridDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("parse exported json: %v", err)
	}
	if doc.Seed != 99 || doc.Width != 8 || doc.Depth != 8 || doc.Height != 16 {
		t.Fatalf("header mismatch: %+v", doc)
	}
	if len(doc.Palette) != len(voxel.Materials()) {
		t.Fatalf("palette has %d entries, want %d", len(doc.Palette), len(voxel.Materials()))
	}

	wantVoxels := grid.TotalCells() - grid.CountMaterial(voxel.Air)
	if len(doc.Voxels) != wantVoxels {
		t.Fatalf("voxel list has %d entries, want %d non-air", len(doc.Voxels), wantVoxels)
	}
	for _, v := range doc.Voxels {
		m, ok := voxel.ParseMaterial(v.Material)
		if !ok {
			t.Fatalf("unknown material name %q in export", v.Material)
		}
		if got := grid.Get(v.X, v.Y, v.Z); got != m {
			t.Fatalf("voxel (%d,%d,%d): exported %v, grid has %v", v.X, v.Y, v.Z, m, got)
		}
	}
}

func TestOBJOutput(t *testing.T) {
	m := sampleMesh(t)
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, m); err != nil {
		t.Fatalf("write obj: %v", err)
	}

	vertices, normals, faces := 0, 0, 0
	for _, line := range strings.Split(buf.String(), "\n") {
		switch {
		case strings.HasPrefix(line, "v "):
			vertices++
		case strings.HasPrefix(line, "vn "):
			normals++
		case strings.HasPrefix(line, "f "):
			faces++
		}
	}
	if vertices != m.VertexCount() || normals != m.VertexCount() {
		t.Fatalf("obj has %d vertices %d normals, want %d", vertices, normals, m.VertexCount())
	}
	if faces != m.TriangleCount() {
		t.Fatalf("obj has %d faces, want %d", faces, m.TriangleCount())
	}
}

func TestPLYOutput(t *testing.T) {
	m := sampleMesh(t)
	var buf bytes.Buffer
	if err := WritePLY(&buf, m); err != nil {
		t.Fatalf("write ply: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[0] != "ply" {
		t.Fatalf("missing ply magic, got %q", lines[0])
	}
	header := 0
	for i, line := range lines {
		if line == "end_header" {
			header = i
			break
		}
	}
	if header == 0 {
		t.Fatalf("header never terminated")
	}
	body := len(lines) - header - 1
	if want := m.VertexCount() + m.TriangleCount(); body != want {
		t.Fatalf("ply body has %d lines, want %d", body, want)
	}
}

func TestPreviewPNG(t *testing.T) {
	grid := sampleGrid(t)
	path := filepath.Join(t.TempDir(), "preview.png")
	if err := SavePreview(path, grid); err != nil {
		t.Fatalf("save preview: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open preview: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != grid.Width()*previewScale || bounds.Dy() != grid.Depth()*previewScale {
		t.Fatalf("preview is %dx%d, want %dx%d",
			bounds.Dx(), bounds.Dy(), grid.Width()*previewScale, grid.Depth()*previewScale)
	}
}
