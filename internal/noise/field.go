// Package noise provides the seeded, stateless samplers used by terrain
// synthesis, cave carving and placement jitter. All samplers are pure: the
// same seed and coordinates always produce the same scalar.
package noise

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Octaves describes a fractal composition of a base noise channel.
type Octaves struct {
	Count       int
	Persistence float64
	Lacunarity  float64
	Scale       float64 // feature size in voxels at the first octave
}

// DefaultOctaves mirrors the generator's terrain detail band.
func DefaultOctaves() Octaves {
	return Octaves{Count: 4, Persistence: 0.5, Lacunarity: 2.0, Scale: 64}
}

// Field is a seeded multi-octave sampler. The primary channel feeds the
// terrain bands; two secondary channels drive domain warping.
type Field struct {
	seed    int64
	simplex opensimplex.Noise
	warpA   opensimplex.Noise
	warpB   opensimplex.Noise
}

// NewField creates a sampler for the seed.
func NewField(seed int64) *Field {
	return &Field{
		seed:    seed,
		simplex: opensimplex.New(seed),
		warpA:   opensimplex.New(seed ^ 0x5f17a9),
		warpB:   opensimplex.New(seed ^ 0x2c9d41),
	}
}

// Sample2 returns fractal 2D noise in [-1, 1].
func (f *Field) Sample2(x, y float64, oct Octaves) float64 {
	frequency := 1.0 / oct.Scale
	amplitude := 1.0
	sum := 0.0
	maxAmplitude := 0.0
	for i := 0; i < oct.Count; i++ {
		sum += f.simplex.Eval2(x*frequency, y*frequency) * amplitude
		maxAmplitude += amplitude
		amplitude *= oct.Persistence
		frequency *= oct.Lacunarity
	}
	if maxAmplitude == 0 {
		return 0
	}
	return sum / maxAmplitude
}

// Tileable2 returns fractal 2D noise that is exactly periodic in x over
// periodX and in y over periodY. Coordinates are mapped onto a torus and
// wrapped before sampling, so x and x+periodX resolve to bit-identical
// inputs.
func (f *Field) Tileable2(x, y, periodX, periodY float64, oct Octaves) float64 {
	u := math.Mod(x, periodX)
	if u < 0 {
		u += periodX
	}
	v := math.Mod(y, periodY)
	if v < 0 {
		v += periodY
	}
	angleX := u / periodX * 2 * math.Pi
	angleY := v / periodY * 2 * math.Pi

	// Circle radius picks the feature size: one noise unit per oct.Scale
	// voxels of circumference.
	radius := periodX / (2 * math.Pi * oct.Scale)
	radiusY := periodY / (2 * math.Pi * oct.Scale)

	amplitude := 1.0
	sum := 0.0
	maxAmplitude := 0.0
	for i := 0; i < oct.Count; i++ {
		sum += f.simplex.Eval4(
			math.Cos(angleX)*radius,
			math.Sin(angleX)*radius,
			math.Cos(angleY)*radiusY,
			math.Sin(angleY)*radiusY,
		) * amplitude
		maxAmplitude += amplitude
		amplitude *= oct.Persistence
		radius *= oct.Lacunarity
		radiusY *= oct.Lacunarity
	}
	if maxAmplitude == 0 {
		return 0
	}
	return sum / maxAmplitude
}

// WarpTileable2 perturbs the coordinates by the secondary channels before
// sampling, keeping the result periodic. strength is the maximum offset in
// voxels.
func (f *Field) WarpTileable2(x, y, periodX, periodY float64, strength float64, oct Octaves) float64 {
	// Wrap before warping so x and x+periodX run through identical
	// arithmetic and the warped field stays exactly periodic.
	u := math.Mod(x, periodX)
	if u < 0 {
		u += periodX
	}
	v := math.Mod(y, periodY)
	if v < 0 {
		v += periodY
	}
	warpOct := oct
	warpOct.Count = 2
	wx := warpChannel(f.warpA, u, v, periodX, periodY, warpOct)
	wy := warpChannel(f.warpB, u, v, periodX, periodY, warpOct)
	return f.Tileable2(u+wx*strength, v+wy*strength, periodX, periodY, oct)
}

func warpChannel(n opensimplex.Noise, x, y, periodX, periodY float64, oct Octaves) float64 {
	u := math.Mod(x, periodX)
	if u < 0 {
		u += periodX
	}
	v := math.Mod(y, periodY)
	if v < 0 {
		v += periodY
	}
	angleX := u / periodX * 2 * math.Pi
	angleY := v / periodY * 2 * math.Pi
	radius := periodX / (2 * math.Pi * oct.Scale)
	radiusY := periodY / (2 * math.Pi * oct.Scale)

	amplitude := 1.0
	sum := 0.0
	maxAmplitude := 0.0
	for i := 0; i < oct.Count; i++ {
		sum += n.Eval4(
			math.Cos(angleX)*radius,
			math.Sin(angleX)*radius,
			math.Cos(angleY)*radiusY,
			math.Sin(angleY)*radiusY,
		) * amplitude
		maxAmplitude += amplitude
		amplitude *= oct.Persistence
		radius *= oct.Lacunarity
		radiusY *= oct.Lacunarity
	}
	if maxAmplitude == 0 {
		return 0
	}
	return sum / maxAmplitude
}

// Sample3 returns fractal 3D value noise in [-1, 1] over a hashed integer
// lattice. When periodX/periodY are positive the lattice wraps so the field
// is exactly periodic (and seam-free) over those horizontal extents; the
// per-octave frequency is snapped to a whole number of lattice cells per
// period to keep the wrap continuous.
func (f *Field) Sample3(x, y, z float64, oct Octaves, periodX, periodY int) float64 {
	amplitude := 1.0
	sum := 0.0
	maxAmplitude := 0.0
	frequency := 1.0 / oct.Scale
	for i := 0; i < oct.Count; i++ {
		fx, px := snapFrequency(frequency, periodX)
		fy, py := snapFrequency(frequency, periodY)
		sum += f.valueNoise3(x*fx, y*fy, z*frequency, px, py) * amplitude
		maxAmplitude += amplitude
		amplitude *= oct.Persistence
		frequency *= oct.Lacunarity
	}
	if maxAmplitude == 0 {
		return 0
	}
	return sum / maxAmplitude
}

// snapFrequency adjusts a frequency so an integer count of lattice cells
// spans the period. A zero period disables wrapping.
func snapFrequency(freq float64, period int) (float64, int) {
	if period <= 0 {
		return freq, 0
	}
	cells := int(math.Round(float64(period) * freq))
	if cells < 1 {
		cells = 1
	}
	return float64(cells) / float64(period), cells
}

func (f *Field) valueNoise3(x, y, z float64, perX, perY int) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	z0 := int(math.Floor(z))

	sx := smooth(x - float64(x0))
	sy := smooth(y - float64(y0))
	sz := smooth(z - float64(z0))

	c000 := f.lattice(x0, y0, z0, perX, perY)
	c100 := f.lattice(x0+1, y0, z0, perX, perY)
	c010 := f.lattice(x0, y0+1, z0, perX, perY)
	c110 := f.lattice(x0+1, y0+1, z0, perX, perY)
	c001 := f.lattice(x0, y0, z0+1, perX, perY)
	c101 := f.lattice(x0+1, y0, z0+1, perX, perY)
	c011 := f.lattice(x0, y0+1, z0+1, perX, perY)
	c111 := f.lattice(x0+1, y0+1, z0+1, perX, perY)

	ix00 := lerp(c000, c100, sx)
	ix10 := lerp(c010, c110, sx)
	ix01 := lerp(c001, c101, sx)
	ix11 := lerp(c011, c111, sx)

	iy0 := lerp(ix00, ix10, sy)
	iy1 := lerp(ix01, ix11, sy)
	return lerp(iy0, iy1, sz)
}

func (f *Field) lattice(x, y, z, perX, perY int) float64 {
	if perX > 0 {
		x = modInt(x, perX)
	}
	if perY > 0 {
		y = modInt(y, perY)
	}
	return float64(Hash3(x, y, z, f.seed)&0xFFFF)/0x8000 - 1
}

func modInt(v, period int) int {
	v %= period
	if v < 0 {
		v += period
	}
	return v
}

func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Hash3 mixes 3D integer coordinates and a seed into a well-distributed
// 32-bit value. Stable across runs and platforms.
func Hash3(x, y, z int, seed int64) uint32 {
	h := uint32(seed) ^ uint32(seed>>32)
	h ^= uint32(x) * 0x9e3779b1
	h ^= uint32(y) * 0x85ebca6b
	h ^= uint32(z) * 0xc2b2ae35
	h ^= h >> 16
	h *= 0x7feb352d
	h ^= h >> 15
	h *= 0x846ca68b
	h ^= h >> 16
	return h
}
