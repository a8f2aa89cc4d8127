package flora

import (
	"context"
	"log"
	"math"

	"landgen/internal/config"
	"landgen/internal/noise"
	"landgen/internal/voxel"
)

// Engine performs deterministic, cell-partitioned placement of vegetation
// and decoration stamps onto a finished terrain grid.
type Engine struct {
	cfg  config.PlacementConfig
	seed int64
}

func NewEngine(cfg config.PlacementConfig, seed int64) *Engine {
	return &Engine{cfg: cfg, seed: seed}
}

// Stats summarizes a placement run.
type Stats struct {
	Trees      int
	Bushes     int
	GrassTufts int
	Rocks      int
	Mushrooms  int
	Flowers    int

	// Conflicts counts stamps skipped because they would have overwritten
	// existing material beyond tolerance or violated separation.
	Conflicts int
}

// Candidate is the transient per-column record a pass evaluates before
// committing a stamp.
type Candidate struct {
	X, Y        int
	Elevation   int
	Slope       float64
	TopMaterial voxel.Material
	Occupied    bool
}

// surfaceSnapshot captures the terrain surface before any stamp mutates the
// grid, so every pass evaluates candidates against the same ground truth.
type surfaceSnapshot struct {
	width, depth int
	heights      []int
	slopes       []float64
	topMaterial  []voxel.Material
}

func takeSnapshot(grid *voxel.Grid) *surfaceSnapshot {
	grid.BuildSurfaceCache()
	w, d := grid.Width(), grid.Depth()
	snap := &surfaceSnapshot{
		width:       w,
		depth:       d,
		heights:     make([]int, w*d),
		slopes:      make([]float64, w*d),
		topMaterial: make([]voxel.Material, w*d),
	}
	for x := 0; x < w; x++ {
		for y := 0; y < d; y++ {
			i := x*d + y
			snap.heights[i] = grid.SurfaceHeight(x, y)
			snap.slopes[i] = grid.SlopeAt(x, y)
			snap.topMaterial[i] = grid.SurfaceMaterial(x, y)
		}
	}
	return snap
}

func (s *surfaceSnapshot) candidate(grid *voxel.Grid, x, y int) Candidate {
	i := x*s.depth + y
	elev := s.heights[i]
	return Candidate{
		X:           x,
		Y:           y,
		Elevation:   elev,
		Slope:       s.slopes[i],
		TopMaterial: s.topMaterial[i],
		// A column counts as occupied when something (water, a previous
		// stamp) already sits on its surface.
		Occupied: elev < 0 || grid.Get(x, y, elev+1) != voxel.Air,
	}
}

// Place runs every enabled placement pass. Each pass partitions the grid
// into cells and derives its randomness from (seed, cell, pass), never from
// call order.
func (e *Engine) Place(ctx context.Context, grid *voxel.Grid) (Stats, error) {
	var stats Stats
	if !e.cfg.Plants && !e.cfg.Decorations {
		return stats, nil
	}

	snap := takeSnapshot(grid)
	state := &placeState{
		occupied: make(map[[2]int]bool),
	}

	if e.cfg.Plants {
		if err := e.placeTrees(ctx, grid, snap, state, &stats); err != nil {
			return stats, err
		}
		if err := e.placeBushes(ctx, grid, snap, state, &stats); err != nil {
			return stats, err
		}
		if err := e.placeGrass(ctx, grid, snap, state, &stats); err != nil {
			return stats, err
		}
	}
	if e.cfg.Decorations {
		// Decorations can run in a separate pass (with its own seed) after
		// plants, so recover trunk positions from the grid rather than
		// trusting in-run bookkeeping.
		state.treeBases = findTrunkBases(grid)
		if err := e.placeRocks(ctx, grid, snap, state, &stats); err != nil {
			return stats, err
		}
		if err := e.placeMushrooms(ctx, grid, snap, state, &stats); err != nil {
			return stats, err
		}
		if err := e.placeFlowers(ctx, grid, snap, state, &stats); err != nil {
			return stats, err
		}
	}

	if stats.Conflicts > 0 {
		log.Printf("placement: skipped %d conflicting stamps", stats.Conflicts)
	}
	return stats, nil
}

type placeState struct {
	occupied  map[[2]int]bool
	treeBases [][2]int
}

// eligible checks the species constraints against a candidate.
func (e *Engine) eligible(s Species, c Candidate, gridHeight int) bool {
	sp := speciesSpecs[s]
	if c.Occupied || c.Elevation < 0 {
		return false
	}
	if c.Slope > sp.maxSlope {
		return false
	}
	elev := float64(c.Elevation) / float64(gridHeight)
	if elev < sp.minElev || elev > sp.maxElev {
		return false
	}
	return sp.allows(c.TopMaterial)
}

// forEachCell walks the cell partition in fixed row-major order, handing
// each cell its own keyed stream.
func (e *Engine) forEachCell(ctx context.Context, grid *voxel.Grid, pass int, fn func(cx, cy int, rng *noise.Stream)) error {
	cell := e.cfg.CellSize
	for cx := 0; cx < grid.Width(); cx += cell {
		if err := ctx.Err(); err != nil {
			return err
		}
		for cy := 0; cy < grid.Depth(); cy += cell {
			fn(cx, cy, noise.NewStream(e.seed, cx/cell, cy/cell, pass))
		}
	}
	return nil
}

func (e *Engine) placeTrees(ctx context.Context, grid *voxel.Grid, snap *surfaceSnapshot, state *placeState, stats *Stats) error {
	gridHeight := grid.Height()
	return e.forEachCell(ctx, grid, passTrees, func(cx, cy int, rng *noise.Stream) {
		x := cx + rng.Intn(e.cfg.CellSize)
		y := cy + rng.Intn(e.cfg.CellSize)
		if x >= grid.Width() || y >= grid.Depth() {
			return
		}
		c := snap.candidate(grid, x, y)

		species, ok := e.pickTree(c, gridHeight, rng)
		if !ok {
			return
		}

		// Sparser stands at altitude.
		chance := 0.3
		if float64(c.Elevation) >= float64(gridHeight)*0.6 {
			chance = 0.15
		}
		if rng.Float64() >= chance {
			return
		}

		if !e.separated(state, x, y) {
			stats.Conflicts++
			return
		}

		if e.applyStamp(grid, buildStamp(species, x, y, c.Elevation+1, rng)) {
			state.treeBases = append(state.treeBases, [2]int{x, y})
			state.occupied[[2]int{x, y}] = true
			stats.Trees++
		} else {
			stats.Conflicts++
		}
	})
}

// pickTree makes a weighted choice among the tree species eligible at the
// candidate's elevation and surface.
func (e *Engine) pickTree(c Candidate, gridHeight int, rng *noise.Stream) (Species, bool) {
	weights := map[Species]float64{Pine: 1.0, Oak: 0.6, Palm: 0.4}
	var total float64
	var options []Species
	for s := Species(0); s < speciesCount; s++ {
		if !s.Tree() {
			continue
		}
		if e.eligible(s, c, gridHeight) {
			options = append(options, s)
			total += weights[s]
		}
	}
	if len(options) == 0 {
		return 0, false
	}
	draw := rng.Float64() * total
	for _, s := range options {
		draw -= weights[s]
		if draw < 0 {
			return s, true
		}
	}
	return options[len(options)-1], true
}

func (e *Engine) separated(state *placeState, x, y int) bool {
	minSep := float64(e.cfg.TreeSeparation)
	for _, base := range state.treeBases {
		if math.Hypot(float64(x-base[0]), float64(y-base[1])) < minSep {
			return false
		}
	}
	return true
}

func (e *Engine) placeBushes(ctx context.Context, grid *voxel.Grid, snap *surfaceSnapshot, state *placeState, stats *Stats) error {
	gridHeight := grid.Height()
	return e.forEachCell(ctx, grid, passBushes, func(cx, cy int, rng *noise.Stream) {
		x := cx + rng.Intn(e.cfg.CellSize)
		y := cy + rng.Intn(e.cfg.CellSize)
		if x >= grid.Width() || y >= grid.Depth() {
			return
		}
		if rng.Float64() >= 0.3 {
			return
		}
		c := snap.candidate(grid, x, y)
		species := BushSmall
		if rng.Float64() > 0.6 {
			species = BushLarge
		}
		if !e.eligible(species, c, gridHeight) || state.occupied[[2]int{x, y}] {
			return
		}
		if e.applyStamp(grid, buildStamp(species, x, y, c.Elevation+1, rng)) {
			state.occupied[[2]int{x, y}] = true
			stats.Bushes++
		} else {
			stats.Conflicts++
		}
	})
}

func (e *Engine) placeGrass(ctx context.Context, grid *voxel.Grid, snap *surfaceSnapshot, state *placeState, stats *Stats) error {
	gridHeight := grid.Height()
	return e.forEachCell(ctx, grid, passGrass, func(cx, cy int, rng *noise.Stream) {
		for x := cx; x < cx+e.cfg.CellSize && x < grid.Width(); x++ {
			for y := cy; y < cy+e.cfg.CellSize && y < grid.Depth(); y++ {
				if rng.Float64() >= 0.4 {
					continue
				}
				c := snap.candidate(grid, x, y)
				if !e.eligible(GrassTuft, c, gridHeight) || state.occupied[[2]int{x, y}] {
					continue
				}
				if e.applyStamp(grid, buildStamp(GrassTuft, x, y, c.Elevation+1, rng)) {
					stats.GrassTufts++
				} else {
					stats.Conflicts++
				}
			}
		}
	})
}

func (e *Engine) placeRocks(ctx context.Context, grid *voxel.Grid, snap *surfaceSnapshot, state *placeState, stats *Stats) error {
	gridHeight := grid.Height()
	return e.forEachCell(ctx, grid, passRocks, func(cx, cy int, rng *noise.Stream) {
		if rng.Float64() >= 0.3 {
			return
		}
		x := cx + rng.Intn(e.cfg.CellSize)
		y := cy + rng.Intn(e.cfg.CellSize)
		if x >= grid.Width() || y >= grid.Depth() {
			return
		}
		c := snap.candidate(grid, x, y)
		if !e.eligible(RockCluster, c, gridHeight) {
			return
		}
		// Rocks keep their distance from planted trees.
		if e.nearTree(state, x, y, 2) {
			return
		}
		if e.applyStamp(grid, buildStamp(RockCluster, x, y, c.Elevation+1, rng)) {
			state.occupied[[2]int{x, y}] = true
			stats.Rocks++
		} else {
			stats.Conflicts++
		}
	})
}

func (e *Engine) placeMushrooms(ctx context.Context, grid *voxel.Grid, snap *surfaceSnapshot, state *placeState, stats *Stats) error {
	gridHeight := grid.Height()
	return e.forEachCell(ctx, grid, passMushrooms, func(cx, cy int, rng *noise.Stream) {
		if rng.Float64() >= 0.15 {
			return
		}
		x := cx + rng.Intn(e.cfg.CellSize)
		y := cy + rng.Intn(e.cfg.CellSize)
		if x >= grid.Width() || y >= grid.Depth() {
			return
		}
		c := snap.candidate(grid, x, y)
		if !e.eligible(Mushroom, c, gridHeight) || state.occupied[[2]int{x, y}] {
			return
		}
		// Mushrooms grow in the shade of trees.
		if !e.nearTree(state, x, y, 5) {
			return
		}
		if e.applyStamp(grid, buildStamp(Mushroom, x, y, c.Elevation+1, rng)) {
			stats.Mushrooms++
		} else {
			stats.Conflicts++
		}
	})
}

func (e *Engine) placeFlowers(ctx context.Context, grid *voxel.Grid, snap *surfaceSnapshot, state *placeState, stats *Stats) error {
	gridHeight := grid.Height()
	return e.forEachCell(ctx, grid, passFlowers, func(cx, cy int, rng *noise.Stream) {
		attempts := e.cfg.CellSize / 2
		if attempts < 1 {
			attempts = 1
		}
		for i := 0; i < attempts; i++ {
			x := cx + rng.Intn(e.cfg.CellSize)
			y := cy + rng.Intn(e.cfg.CellSize)
			if x >= grid.Width() || y >= grid.Depth() {
				continue
			}
			if rng.Float64() >= 0.3 {
				continue
			}
			c := snap.candidate(grid, x, y)
			if !e.eligible(Flower, c, gridHeight) || state.occupied[[2]int{x, y}] {
				continue
			}
			if e.applyStamp(grid, buildStamp(Flower, x, y, c.Elevation+1, rng)) {
				stats.Flowers++
			} else {
				stats.Conflicts++
			}
		}
	})
}

// findTrunkBases scans for the lowest wood voxel of each column that rests
// on ordinary ground, which marks a planted trunk.
func findTrunkBases(grid *voxel.Grid) [][2]int {
	var bases [][2]int
	for x := 0; x < grid.Width(); x++ {
		for y := 0; y < grid.Depth(); y++ {
			for z := 1; z < grid.Height(); z++ {
				if grid.Get(x, y, z) != voxel.Wood {
					continue
				}
				below := grid.Get(x, y, z-1)
				if below.Solid() && below != voxel.Wood && below != voxel.Leaves {
					bases = append(bases, [2]int{x, y})
				}
				break
			}
		}
	}
	return bases
}

func (e *Engine) nearTree(state *placeState, x, y, distance int) bool {
	for _, base := range state.treeBases {
		if abs(x-base[0]) <= distance && abs(y-base[1]) <= distance {
			return true
		}
	}
	return false
}

// applyStamp commits a stamp unless it would overwrite existing material
// beyond the configured tolerance. Writes outside the grid are clipped.
func (e *Engine) applyStamp(grid *voxel.Grid, writes []write) bool {
	if len(writes) == 0 {
		return false
	}
	conflicts := 0
	for _, w := range writes {
		if !grid.InBounds(w.x, w.y, w.z) {
			continue
		}
		if grid.Get(w.x, w.y, w.z) != voxel.Air {
			conflicts++
			if conflicts > e.cfg.OverwriteTolerance {
				return false
			}
		}
	}
	for _, w := range writes {
		grid.Set(w.x, w.y, w.z, w.m)
	}
	return true
}
