package flora

import (
	"math"

	"landgen/internal/noise"
	"landgen/internal/voxel"
)

// write is one voxel a stamp wants to place.
type write struct {
	x, y, z int
	m       voxel.Material
}

// buildStamp expands a species into its voxel template at the given base.
// The base is the first voxel above the surface. Size variation draws from
// the cell's stream, so the template is as deterministic as the placement.
func buildStamp(s Species, x, y, z int, rng *noise.Stream) []write {
	switch s {
	case Pine:
		return pineStamp(x, y, z, rng)
	case Oak:
		return oakStamp(x, y, z, rng)
	case Palm:
		return palmStamp(x, y, z, rng)
	case BushSmall:
		return bushStamp(x, y, z, 1, 2)
	case BushLarge:
		return bushStamp(x, y, z, 2, 3)
	case GrassTuft:
		return grassStamp(x, y, z, rng)
	case RockCluster:
		return rockStamp(x, y, z, rng)
	case Mushroom:
		return mushroomStamp(x, y, z, rng)
	case Flower:
		return flowerStamp(x, y, z, rng)
	}
	return nil
}

// pineStamp builds a conical tree: a full-height trunk with shrinking
// cross-shaped foliage rings from the top down.
func pineStamp(x, y, z int, rng *noise.Stream) []write {
	height := rng.IntRange(8, 15)
	out := make([]write, 0, height*8)

	for h := 0; h < height; h++ {
		out = append(out, write{x, y, z + h, voxel.Wood})
	}

	foliageStart := height / 3
	layerSize := 1.0
	for h := height - 1; h > foliageStart; h-- {
		radius := int(layerSize)
		if radius > 3 {
			radius = 3
		}
		for dx := -radius; dx <= radius; dx++ {
			for dy := -radius; dy <= radius; dy++ {
				if dx == 0 && dy == 0 {
					continue
				}
				if abs(dx)+abs(dy) <= radius+1 {
					out = append(out, write{x + dx, y + dy, z + h, voxel.Leaves})
				}
			}
		}
		layerSize += 0.5
	}
	return out
}

// oakStamp builds a short trunk topped by a randomized near-spherical
// foliage blob.
func oakStamp(x, y, z int, rng *noise.Stream) []write {
	height := rng.IntRange(6, 12)
	trunkHeight := height / 2
	radius := rng.IntRange(2, 3)

	out := make([]write, 0, trunkHeight+radius*radius*radius*8)
	for h := 0; h < trunkHeight; h++ {
		out = append(out, write{x, y, z + h, voxel.Wood})
	}

	centerZ := z + trunkHeight + radius - 1
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			for dz := -radius; dz <= radius; dz++ {
				dist := math.Sqrt(float64(dx*dx + dy*dy + dz*dz))
				if dist > float64(radius)+rng.Float64()*0.5 {
					continue
				}
				fz := centerZ + dz
				if fz < z+trunkHeight {
					continue
				}
				out = append(out, write{x + dx, y + dy, fz, voxel.Leaves})
			}
		}
	}
	return out
}

// palmStamp builds a tall bare trunk with a single drooping cross crown.
func palmStamp(x, y, z int, rng *noise.Stream) []write {
	height := rng.IntRange(10, 18)
	out := make([]write, 0, height+16)

	for h := 0; h < height; h++ {
		out = append(out, write{x, y, z + h, voxel.Wood})
	}

	topZ := z + height
	out = append(out, write{x, y, topZ, voxel.Leaves})
	for _, dir := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		for dist := 1; dist <= 3; dist++ {
			droop := dist / 2
			out = append(out, write{
				x + dir[0]*dist,
				y + dir[1]*dist,
				topZ - droop,
				voxel.Leaves,
			})
		}
	}
	return out
}

func bushStamp(x, y, z, radius, height int) []write {
	out := make([]write, 0, (2*radius+1)*(2*radius+1)*height)
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			for dz := 0; dz < height; dz++ {
				if abs(dx)+abs(dy)+dz <= radius+height-1 {
					out = append(out, write{x + dx, y + dy, z + dz, voxel.Leaves})
				}
			}
		}
	}
	return out
}

func grassStamp(x, y, z int, rng *noise.Stream) []write {
	height := 1
	if rng.Float64() < 0.2 {
		height = rng.IntRange(2, 3)
	}
	out := make([]write, 0, height)
	for h := 0; h < height; h++ {
		out = append(out, write{x, y, z + h, voxel.Grass})
	}
	return out
}

func rockStamp(x, y, z int, rng *noise.Stream) []write {
	size := rng.IntRange(1, 3)
	out := make([]write, 0, size*size*size)
	for dx := 0; dx < size; dx++ {
		for dy := 0; dy < size; dy++ {
			for dz := 0; dz < size; dz++ {
				// The base voxel is always present so the stamp is never empty.
				if (dx == 0 && dy == 0 && dz == 0) || rng.Float64() > 0.4 {
					out = append(out, write{x + dx, y + dy, z + dz, voxel.Stone})
				}
			}
		}
	}
	return out
}

func mushroomStamp(x, y, z int, rng *noise.Stream) []write {
	height := rng.IntRange(2, 4)
	out := make([]write, 0, height+5)
	for h := 0; h < height-1; h++ {
		out = append(out, write{x, y, z + h, voxel.Decoration})
	}
	capZ := z + height - 1
	out = append(out, write{x, y, capZ, voxel.Decoration})
	for _, dir := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		out = append(out, write{x + dir[0], y + dir[1], capZ, voxel.Decoration})
	}
	return out
}

func flowerStamp(x, y, z int, rng *noise.Stream) []write {
	height := rng.IntRange(1, 2)
	out := make([]write, 0, height)
	for h := 0; h < height; h++ {
		out = append(out, write{x, y, z + h, voxel.Decoration})
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
