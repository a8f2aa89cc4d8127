// Package flora places vegetation and decorations onto generated terrain.
// Placement is cell-partitioned and every random draw comes from a stream
// keyed by (seed, cell, pass), so results do not depend on iteration order.
package flora

import "landgen/internal/voxel"

// Species enumerates every plant and decoration stamp the engine knows.
type Species uint8

const (
	Pine Species = iota
	Oak
	Palm
	BushSmall
	BushLarge
	GrassTuft
	RockCluster
	Mushroom
	Flower

	speciesCount
)

var speciesNames = [speciesCount]string{
	Pine:        "pine",
	Oak:         "oak",
	Palm:        "palm",
	BushSmall:   "bush_small",
	BushLarge:   "bush_large",
	GrassTuft:   "grass_tuft",
	RockCluster: "rock_cluster",
	Mushroom:    "mushroom",
	Flower:      "flower",
}

func (s Species) String() string {
	if s >= speciesCount {
		return "unknown"
	}
	return speciesNames[s]
}

// Tree reports whether the species stamps a trunk and is therefore subject
// to the trunk separation rule.
func (s Species) Tree() bool {
	return s == Pine || s == Oak || s == Palm
}

// spec holds the terrain constraints for one species. Elevation bounds are
// fractions of the grid height so they hold for any configured volume.
type spec struct {
	maxSlope float64
	minElev  float64
	maxElev  float64
	allowed  []voxel.Material
}

// Cliff faces, water, snow and bare stone never host plant life; the allowed
// material sets below encode that rule.
var speciesSpecs = [speciesCount]spec{
	Pine:        {maxSlope: 30, minElev: 0.55, maxElev: 0.90, allowed: []voxel.Material{voxel.Grass, voxel.Dirt}},
	Oak:         {maxSlope: 30, minElev: 0.10, maxElev: 0.70, allowed: []voxel.Material{voxel.Grass, voxel.Dirt, voxel.Sand}},
	Palm:        {maxSlope: 25, minElev: 0.10, maxElev: 0.40, allowed: []voxel.Material{voxel.Grass, voxel.Sand}},
	BushSmall:   {maxSlope: 35, minElev: 0.20, maxElev: 0.60, allowed: []voxel.Material{voxel.Grass, voxel.Dirt}},
	BushLarge:   {maxSlope: 35, minElev: 0.20, maxElev: 0.60, allowed: []voxel.Material{voxel.Grass, voxel.Dirt}},
	GrassTuft:   {maxSlope: 40, minElev: 0.10, maxElev: 0.80, allowed: []voxel.Material{voxel.Grass}},
	RockCluster: {maxSlope: 50, minElev: 0.05, maxElev: 0.95, allowed: []voxel.Material{voxel.Grass, voxel.Dirt, voxel.Sand, voxel.Stone, voxel.Snow}},
	Mushroom:    {maxSlope: 35, minElev: 0.20, maxElev: 0.70, allowed: []voxel.Material{voxel.Grass, voxel.Dirt}},
	Flower:      {maxSlope: 25, minElev: 0.20, maxElev: 0.60, allowed: []voxel.Material{voxel.Grass}},
}

func (sp spec) allows(m voxel.Material) bool {
	for _, a := range sp.allowed {
		if a == m {
			return true
		}
	}
	return false
}

// Placement pass identifiers. Each pass draws from its own per-cell stream
// so adding a pass never disturbs the draws of another.
const (
	passTrees = iota + 1
	passBushes
	passGrass
	passRocks
	passMushrooms
	passFlowers
)
