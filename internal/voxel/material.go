package voxel

// Material enumerates the voxel material types. The zero value is AIR so a
// freshly allocated grid is entirely empty.
type Material uint8

const (
	Air Material = iota
	Stone
	Dirt
	Sand
	Water
	Grass
	Wood
	Leaves
	Snow
	Decoration

	materialCount
)

var materialNames = [materialCount]string{
	Air:        "AIR",
	Stone:      "STONE",
	Dirt:       "DIRT",
	Sand:       "SAND",
	Water:      "WATER",
	Grass:      "GRASS",
	Wood:       "WOOD",
	Leaves:     "LEAVES",
	Snow:       "SNOW",
	Decoration: "DECORATION",
}

// RGB is an 8-bit color triple used for mesh vertex colors and previews.
type RGB struct {
	R, G, B uint8
}

// Display palette shared by the mesh exporter and the preview renderer.
var materialColors = [materialCount]RGB{
	Air:        {0, 0, 0},
	Stone:      {128, 128, 128},
	Dirt:       {139, 90, 43},
	Sand:       {194, 178, 128},
	Water:      {65, 105, 225},
	Grass:      {34, 139, 34},
	Wood:       {101, 67, 33},
	Leaves:     {50, 205, 50},
	Snow:       {255, 250, 250},
	Decoration: {255, 105, 180},
}

// Valid reports whether m is a known material value.
func (m Material) Valid() bool {
	return m < materialCount
}

// String returns the fixed symbolic name used by the JSON exporter.
func (m Material) String() string {
	if !m.Valid() {
		return "UNKNOWN"
	}
	return materialNames[m]
}

// Color returns the display color for the material.
func (m Material) Color() RGB {
	if !m.Valid() {
		return RGB{255, 0, 255}
	}
	return materialColors[m]
}

// Solid reports whether the material supports terrain above it. Water is
// passable and does not count as solid.
func (m Material) Solid() bool {
	return m != Air && m != Water && m.Valid()
}

// ParseMaterial resolves a symbolic name back to its Material value.
func ParseMaterial(name string) (Material, bool) {
	for m := Material(0); m < materialCount; m++ {
		if materialNames[m] == name {
			return m, true
		}
	}
	return Air, false
}

// Materials returns every known material in enumeration order.
func Materials() []Material {
	out := make([]Material, materialCount)
	for m := Material(0); m < materialCount; m++ {
		out[m] = m
	}
	return out
}
