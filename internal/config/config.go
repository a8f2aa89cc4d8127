// Package config holds the tunable parameters for landscape generation.
// Invalid configuration is rejected before any grid memory is allocated.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config captures every recognized generation option.
type Config struct {
	Seed      int64           `json:"seed" yaml:"seed"`
	Grid      GridConfig      `json:"grid" yaml:"grid"`
	Terrain   TerrainConfig   `json:"terrain" yaml:"terrain"`
	Caves     CaveConfig      `json:"caves" yaml:"caves"`
	Placement PlacementConfig `json:"placement" yaml:"placement"`
	Mesh      MeshConfig      `json:"mesh" yaml:"mesh"`
}

// GridConfig fixes the voxel volume extents.
type GridConfig struct {
	Width  int `json:"width" yaml:"width"`
	Depth  int `json:"depth" yaml:"depth"`
	Height int `json:"height" yaml:"height"`
}

// TerrainConfig drives heightmap synthesis and material assignment.
type TerrainConfig struct {
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	WaterLevel  int     `json:"waterLevel" yaml:"waterLevel"`
	Octaves     int     `json:"octaves" yaml:"octaves"`
	Persistence float64 `json:"persistence" yaml:"persistence"`
	Lacunarity  float64 `json:"lacunarity" yaml:"lacunarity"`

	// Feature scales in voxels for the composed noise bands.
	ContinentalScale float64 `json:"continentalScale" yaml:"continentalScale"`
	MountainScale    float64 `json:"mountainScale" yaml:"mountainScale"`
	DetailScale      float64 `json:"detailScale" yaml:"detailScale"`
	ValleyScale      float64 `json:"valleyScale" yaml:"valleyScale"`
	ValleyDepth      float64 `json:"valleyDepth" yaml:"valleyDepth"`
	WarpStrength     float64 `json:"warpStrength" yaml:"warpStrength"`

	DirtDepth     int     `json:"dirtDepth" yaml:"dirtDepth"`
	BeachMargin   int     `json:"beachMargin" yaml:"beachMargin"`
	SnowLine      int     `json:"snowLine" yaml:"snowLine"`
	CliffSlope    float64 `json:"cliffSlope" yaml:"cliffSlope"`
	BeachMaxSlope float64 `json:"beachMaxSlope" yaml:"beachMaxSlope"`

	Workers int `json:"workers" yaml:"workers"`
}

// CaveConfig drives subsurface carving.
type CaveConfig struct {
	Enabled   bool    `json:"enabled" yaml:"enabled"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Octaves   int     `json:"octaves" yaml:"octaves"`
	Scale     float64 `json:"scale" yaml:"scale"`

	// Depth band expressed as fractions of the grid height.
	MinDepthRatio float64 `json:"minDepthRatio" yaml:"minDepthRatio"`
	MaxDepthRatio float64 `json:"maxDepthRatio" yaml:"maxDepthRatio"`

	// SurfaceMargin keeps carving at least this many voxels below the
	// local surface.
	SurfaceMargin int `json:"surfaceMargin" yaml:"surfaceMargin"`
}

// PlacementConfig drives vegetation and decoration stamping.
type PlacementConfig struct {
	Plants      bool `json:"plants" yaml:"plants"`
	Decorations bool `json:"decorations" yaml:"decorations"`
	CellSize    int  `json:"cellSize" yaml:"cellSize"`

	// TreeSeparation is the minimum base distance between trunks in voxels.
	TreeSeparation int `json:"treeSeparation" yaml:"treeSeparation"`

	// OverwriteTolerance is how many existing non-air voxels a stamp may
	// replace before it is rejected outright.
	OverwriteTolerance int `json:"overwriteTolerance" yaml:"overwriteTolerance"`
}

// MeshConfig drives surface extraction.
type MeshConfig struct {
	// CapBoundary closes the mesh against the grid's outer faces instead
	// of leaving the boundary open.
	CapBoundary bool `json:"capBoundary" yaml:"capBoundary"`
}

// Default returns the standard 256x256x128 landscape configuration.
func Default() *Config {
	return &Config{
		Seed: 12345,
		Grid: GridConfig{
			Width:  256,
			Depth:  256,
			Height: 128,
		},
		Terrain: TerrainConfig{
			Enabled:          true,
			WaterLevel:       26,
			Octaves:          4,
			Persistence:      0.5,
			Lacunarity:       2.0,
			ContinentalScale: 200,
			MountainScale:    80,
			DetailScale:      30,
			ValleyScale:      150,
			ValleyDepth:      12,
			WarpStrength:     18,
			DirtDepth:        3,
			BeachMargin:      3,
			SnowLine:         115,
			CliffSlope:       70,
			BeachMaxSlope:    30,
			Workers:          0, // 0 derives the count from GOMAXPROCS
		},
		Caves: CaveConfig{
			Enabled:       true,
			Threshold:     0.6,
			Octaves:       3,
			Scale:         20,
			MinDepthRatio: 0.10,
			MaxDepthRatio: 0.60,
			SurfaceMargin: 5,
		},
		Placement: PlacementConfig{
			Plants:             true,
			Decorations:        true,
			CellSize:           8,
			TreeSeparation:     3,
			OverwriteTolerance: 2,
		},
		Mesh: MeshConfig{
			CapBoundary: false,
		},
	}
}

// Load reads configuration from a JSON or YAML file (selected by extension).
// An empty path returns defaults. The result is validated before returning.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config json: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks every option range. It is the single fail-fast gate: the
// pipeline refuses to run on a config that has not passed it.
func (c *Config) Validate() error {
	if c.Seed == 0 {
		return errors.New("seed must be set and non-zero")
	}
	if c.Grid.Width <= 0 || c.Grid.Depth <= 0 || c.Grid.Height <= 0 {
		return errors.New("grid extents must be positive")
	}
	if c.Grid.Width > 4096 || c.Grid.Depth > 4096 || c.Grid.Height > 1024 {
		return errors.New("grid extents exceed supported maximum (4096x4096x1024)")
	}
	if c.Terrain.WaterLevel < 0 || c.Terrain.WaterLevel >= c.Grid.Height {
		return fmt.Errorf("terrain.waterLevel must be in [0, %d)", c.Grid.Height)
	}
	if c.Terrain.Octaves < 1 || c.Terrain.Octaves > 8 {
		return errors.New("terrain.octaves must be in [1, 8]")
	}
	if c.Terrain.Persistence <= 0 || c.Terrain.Persistence > 1 {
		return errors.New("terrain.persistence must be in (0, 1]")
	}
	if c.Terrain.Lacunarity < 1 {
		return errors.New("terrain.lacunarity must be >= 1")
	}
	if c.Terrain.ContinentalScale <= 0 || c.Terrain.MountainScale <= 0 || c.Terrain.DetailScale <= 0 {
		return errors.New("terrain band scales must be positive")
	}
	if c.Terrain.DirtDepth < 1 || c.Terrain.DirtDepth > 4 {
		return errors.New("terrain.dirtDepth must be in [1, 4]")
	}
	if c.Terrain.SnowLine < 0 || c.Terrain.SnowLine > c.Grid.Height {
		return errors.New("terrain.snowLine must be within the grid height")
	}
	if c.Terrain.CliffSlope <= 0 || c.Terrain.CliffSlope > 90 {
		return errors.New("terrain.cliffSlope must be in (0, 90]")
	}
	if c.Terrain.Workers < 0 {
		return errors.New("terrain.workers cannot be negative")
	}
	if c.Caves.Enabled {
		if c.Caves.Threshold <= 0 || c.Caves.Threshold >= 1 {
			return errors.New("caves.threshold must be in (0, 1)")
		}
		if c.Caves.Octaves < 1 || c.Caves.Octaves > 8 {
			return errors.New("caves.octaves must be in [1, 8]")
		}
		if c.Caves.Scale <= 0 {
			return errors.New("caves.scale must be positive")
		}
		if c.Caves.MinDepthRatio < 0 || c.Caves.MaxDepthRatio > 1 || c.Caves.MinDepthRatio >= c.Caves.MaxDepthRatio {
			return errors.New("caves depth ratios must satisfy 0 <= min < max <= 1")
		}
		if c.Caves.SurfaceMargin < 0 {
			return errors.New("caves.surfaceMargin cannot be negative")
		}
	}
	if c.Placement.CellSize < 1 || c.Placement.CellSize > c.Grid.Width || c.Placement.CellSize > c.Grid.Depth {
		return errors.New("placement.cellSize must be in [1, min(grid.width, grid.depth)]")
	}
	if c.Placement.TreeSeparation < 0 {
		return errors.New("placement.treeSeparation cannot be negative")
	}
	if c.Placement.OverwriteTolerance < 0 {
		return errors.New("placement.overwriteTolerance cannot be negative")
	}
	return nil
}
