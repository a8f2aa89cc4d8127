package export

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"landgen/internal/voxel"
)

// Binary grid dump layout, gzip-wrapped:
//
//	magic   [4]byte "VOXL"
//	version uint16
//	seed    int64
//	width, depth, height uint16
//	data    width*depth*height material bytes, x-major then y then z
const (
	gridMagic   = "VOXL"
	gridVersion = 1
)

// GridDocument is the JSON form of a generated grid. Only non-air voxels
// are listed, with symbolic material names so the file stays diffable.
type GridDocument struct {
	Seed    int64        `json:"seed"`
	Width   int          `json:"width"`
	Depth   int          `json:"depth"`
	Height  int          `json:"height"`
	Palette []RGBEntry   `json:"palette"`
	Voxels  []VoxelEntry `json:"voxels"`
}

type RGBEntry struct {
	Material string `json:"material"`
	R        uint8  `json:"r"`
	G        uint8  `json:"g"`
	B        uint8  `json:"b"`
}

type VoxelEntry struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Z        int    `json:"z"`
	Material string `json:"material"`
}

// WriteJSON emits the grid as an indented JSON document.
func WriteJSON(w io.Writer, grid *voxel.Grid, seed int64) error {
	doc := GridDocument{
		Seed:   seed,
		Width:  grid.Width(),
		Depth:  grid.Depth(),
		Height: grid.Height(),
	}
	for _, m := range voxel.Materials() {
		c := m.Color()
		doc.Palette = append(doc.Palette, RGBEntry{Material: m.String(), R: c.R, G: c.G, B: c.B})
	}
	grid.ForEach(func(x, y, z int, m voxel.Material) bool {
		if m != voxel.Air {
			doc.Voxels = append(doc.Voxels, VoxelEntry{X: x, Y: y, Z: z, Material: m.String()})
		}
		return true
	})

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// SaveJSON writes the grid document to a file.
func SaveJSON(path string, grid *voxel.Grid, seed int64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json: %w", err)
	}
	defer f.Close()
	if err := WriteJSON(f, grid, seed); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteBinary emits the compact gzip-compressed grid dump.
func WriteBinary(w io.Writer, grid *voxel.Grid, seed int64) error {
	zw, err := gzip.NewWriterLevel(w, gzip.BestSpeed)
	if err != nil {
		return err
	}

	header := make([]byte, 0, 20)
	header = append(header, gridMagic...)
	header = binary.LittleEndian.AppendUint16(header, gridVersion)
	header = binary.LittleEndian.AppendUint64(header, uint64(seed))
	header = binary.LittleEndian.AppendUint16(header, uint16(grid.Width()))
	header = binary.LittleEndian.AppendUint16(header, uint16(grid.Depth()))
	header = binary.LittleEndian.AppendUint16(header, uint16(grid.Height()))
	if _, err := zw.Write(header); err != nil {
		return err
	}

	raw := grid.Raw()
	buf := make([]byte, len(raw))
	for i, m := range raw {
		buf[i] = byte(m)
	}
	if _, err := zw.Write(buf); err != nil {
		return err
	}
	return zw.Close()
}

// ReadBinary parses a grid dump produced by WriteBinary.
func ReadBinary(r io.Reader) (*voxel.Grid, int64, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("open grid dump: %w", err)
	}
	defer zr.Close()

	header := make([]byte, 20)
	if _, err := io.ReadFull(zr, header); err != nil {
		return nil, 0, fmt.Errorf("read grid header: %w", err)
	}
	if string(header[:4]) != gridMagic {
		return nil, 0, fmt.Errorf("bad magic %q", header[:4])
	}
	if v := binary.LittleEndian.Uint16(header[4:6]); v != gridVersion {
		return nil, 0, fmt.Errorf("unsupported grid version %d", v)
	}
	seed := int64(binary.LittleEndian.Uint64(header[6:14]))
	width := int(binary.LittleEndian.Uint16(header[14:16]))
	depth := int(binary.LittleEndian.Uint16(header[16:18]))
	height := int(binary.LittleEndian.Uint16(header[18:20]))

	grid, err := voxel.NewGrid(width, depth, height)
	if err != nil {
		return nil, 0, fmt.Errorf("grid dump dimensions: %w", err)
	}
	buf := make([]byte, grid.TotalCells())
	if _, err := io.ReadFull(zr, buf); err != nil {
		return nil, 0, fmt.Errorf("read grid data: %w", err)
	}
	raw := grid.Raw()
	for i, b := range buf {
		m := voxel.Material(b)
		if !m.Valid() {
			return nil, 0, fmt.Errorf("invalid material byte %d at cell %d", b, i)
		}
		raw[i] = m
	}
	return grid, seed, nil
}

// SaveBinary writes the grid dump to a file.
func SaveBinary(path string, grid *voxel.Grid, seed int64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create grid dump: %w", err)
	}
	defer f.Close()
	if err := WriteBinary(f, grid, seed); err != nil {
		return fmt.Errorf("write grid dump: %w", err)
	}
	return nil
}

// LoadBinary reads a grid dump from a file.
func LoadBinary(path string) (*voxel.Grid, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open grid dump: %w", err)
	}
	defer f.Close()
	return ReadBinary(f)
}
