// Package pipeline sequences the generation phases: terrain synthesis,
// cave carving, feature placement, and surface extraction.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"landgen/internal/config"
	"landgen/internal/flora"
	"landgen/internal/mesh"
	"landgen/internal/noise"
	"landgen/internal/terrain"
	"landgen/internal/voxel"
)

// Phase identifies a completed stage for progress reporting.
type Phase string

const (
	PhaseTerrain    Phase = "terrain"
	PhaseCaves      Phase = "caves"
	PhasePlacement  Phase = "placement"
	PhaseExtraction Phase = "extraction"
)

// Result carries everything a single run produces.
type Result struct {
	Grid       *voxel.Grid
	Mesh       *mesh.Mesh
	CarveStats terrain.CarveStats
	PlaceStats flora.Stats
	Elapsed    time.Duration
}

// Pipeline runs the full generation sequence for one configuration.
// Phase randomness is keyed so that disabling a later phase never changes
// the output of an earlier one: terrain and caves use the base seed,
// plants seed+1, decorations seed+2.
type Pipeline struct {
	cfg config.Config

	// Progress, when set, is called after each phase completes.
	Progress func(Phase, time.Duration)
}

func New(cfg config.Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Run executes every enabled phase in order and returns the populated grid
// and its extracted mesh.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	grid, err := voxel.NewGrid(p.cfg.Grid.Width, p.cfg.Grid.Depth, p.cfg.Grid.Height)
	if err != nil {
		return nil, fmt.Errorf("allocating grid: %w", err)
	}

	res := &Result{Grid: grid}
	field := noise.NewField(p.cfg.Seed)

	if p.cfg.Terrain.Enabled {
		phase := time.Now()
		synth := terrain.NewSynthesizer(p.cfg.Terrain, field)
		if err := synth.Generate(ctx, grid); err != nil {
			return nil, fmt.Errorf("terrain phase: %w", err)
		}
		p.report(PhaseTerrain, phase)

		if p.cfg.Caves.Enabled {
			phase = time.Now()
			carver := terrain.NewCarver(p.cfg.Caves, p.cfg.Terrain.WaterLevel, field)
			stats, err := carver.Carve(ctx, grid)
			if err != nil {
				return nil, fmt.Errorf("cave phase: %w", err)
			}
			res.CarveStats = stats
			p.report(PhaseCaves, phase)
		}

		if p.cfg.Placement.Plants || p.cfg.Placement.Decorations {
			phase = time.Now()
			placeCfg := p.cfg.Placement
			if placeCfg.Plants {
				eng := flora.NewEngine(plantsOnly(placeCfg), p.cfg.Seed+1)
				stats, err := eng.Place(ctx, grid)
				if err != nil {
					return nil, fmt.Errorf("plant phase: %w", err)
				}
				mergeStats(&res.PlaceStats, stats)
			}
			if placeCfg.Decorations {
				eng := flora.NewEngine(decorationsOnly(placeCfg), p.cfg.Seed+2)
				stats, err := eng.Place(ctx, grid)
				if err != nil {
					return nil, fmt.Errorf("decoration phase: %w", err)
				}
				mergeStats(&res.PlaceStats, stats)
			}
			p.report(PhasePlacement, phase)
		}
	} else {
		log.Printf("terrain disabled, grid left empty")
	}

	phase := time.Now()
	extractor := mesh.NewExtractor(p.cfg.Mesh)
	m, err := extractor.Extract(ctx, grid)
	if err != nil {
		return nil, fmt.Errorf("extraction phase: %w", err)
	}
	res.Mesh = m
	p.report(PhaseExtraction, phase)

	res.Elapsed = time.Since(start)
	return res, nil
}

func (p *Pipeline) report(phase Phase, started time.Time) {
	elapsed := time.Since(started)
	log.Printf("%s phase done in %s", phase, elapsed.Round(time.Millisecond))
	if p.Progress != nil {
		p.Progress(phase, elapsed)
	}
}

func plantsOnly(cfg config.PlacementConfig) config.PlacementConfig {
	cfg.Decorations = false
	return cfg
}

func decorationsOnly(cfg config.PlacementConfig) config.PlacementConfig {
	cfg.Plants = false
	return cfg
}

func mergeStats(dst *flora.Stats, src flora.Stats) {
	dst.Trees += src.Trees
	dst.Bushes += src.Bushes
	dst.GrassTufts += src.GrassTufts
	dst.Rocks += src.Rocks
	dst.Mushrooms += src.Mushrooms
	dst.Flowers += src.Flowers
	dst.Conflicts += src.Conflicts
}
