package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"landgen/internal/config"
	"landgen/internal/export"
	"landgen/internal/pipeline"
)

func main() {
	var (
		cfgPath string
		seed    int64
		outPath string
		preview bool
	)
	flag.StringVar(&cfgPath, "config", "", "path to generator configuration file (JSON or YAML)")
	flag.Int64Var(&seed, "seed", 0, "override the configured seed")
	flag.StringVar(&outPath, "out", "terrain.obj", "output path; format chosen by extension (.obj, .ply, .json, .voxel)")
	flag.BoolVar(&preview, "preview", false, "also write a top-down PNG next to the output")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if seed != 0 {
		cfg.Seed = seed
		if err := cfg.Validate(); err != nil {
			log.Fatalf("invalid config: %v", err)
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	log.Printf("generating %dx%dx%d landscape, seed %d",
		cfg.Grid.Width, cfg.Grid.Depth, cfg.Grid.Height, cfg.Seed)

	result, err := pipeline.New(*cfg).Run(ctx)
	if err != nil {
		log.Fatalf("generation failed: %v", err)
	}
	log.Printf("generated in %s: %d solid voxels, %d trees, %d triangles",
		result.Elapsed.Round(time.Millisecond),
		result.Grid.SolidCount(), result.PlaceStats.Trees, result.Mesh.TriangleCount())

	if err := writeOutput(outPath, cfg, result); err != nil {
		log.Fatalf("write output: %v", err)
	}
	log.Printf("wrote %s", outPath)

	if preview {
		previewPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".png"
		if err := export.SavePreview(previewPath, result.Grid); err != nil {
			log.Fatalf("write preview: %v", err)
		}
		log.Printf("wrote %s", previewPath)
	}
}

func writeOutput(path string, cfg *config.Config, result *pipeline.Result) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		return export.SaveOBJ(path, result.Mesh)
	case ".ply":
		return export.SavePLY(path, result.Mesh)
	case ".json":
		return export.SaveJSON(path, result.Grid, cfg.Seed)
	case ".voxel":
		return export.SaveBinary(path, result.Grid, cfg.Seed)
	default:
		return fmt.Errorf("unsupported output format %q", ext)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}

		// Ensure the process terminates if shutdown stalls.
		time.AfterFunc(10*time.Second, func() {
			log.Printf("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	return ctx, cancel
}
