package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"landgen/internal/voxel"
)

const (
	previewAmbient = 0.35
	previewScale   = 2
)

// WritePreview renders a top-down PNG of the grid. Each column shows its
// surface material shaded by elevation, with water drawn over submerged
// terrain.
func WritePreview(w io.Writer, grid *voxel.Grid) error {
	return png.Encode(w, renderPreview(grid))
}

// SavePreview renders the preview to a file.
func SavePreview(path string, grid *voxel.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	defer f.Close()
	if err := WritePreview(f, grid); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return nil
}

func renderPreview(grid *voxel.Grid) *image.NRGBA {
	grid.BuildSurfaceCache()
	img := image.NewNRGBA(image.Rect(0, 0, grid.Width()*previewScale, grid.Depth()*previewScale))

	maxZ := float64(grid.Height() - 1)
	for x := 0; x < grid.Width(); x++ {
		for y := 0; y < grid.Depth(); y++ {
			c := columnColor(grid, x, y, maxZ)
			for dx := 0; dx < previewScale; dx++ {
				for dy := 0; dy < previewScale; dy++ {
					// Flip y so north is up.
					img.SetNRGBA(x*previewScale+dx, (grid.Depth()-1-y)*previewScale+dy, c)
				}
			}
		}
	}
	return img
}

func columnColor(grid *voxel.Grid, x, y int, maxZ float64) color.NRGBA {
	// Topmost non-air voxel, water included.
	top := -1
	var m voxel.Material
	for z := grid.Height() - 1; z >= 0; z-- {
		if v := grid.Get(x, y, z); v != voxel.Air {
			top, m = z, v
			break
		}
	}
	if top < 0 {
		return color.NRGBA{A: 255}
	}

	shade := previewAmbient + (1-previewAmbient)*float64(top)/maxZ
	rgb := m.Color()
	return color.NRGBA{
		R: uint8(float64(rgb.R) * shade),
		G: uint8(float64(rgb.G) * shade),
		B: uint8(float64(rgb.B) * shade),
		A: 255,
	}
}
