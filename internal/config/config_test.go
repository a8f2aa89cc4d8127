package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestValidateDetectsInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "zero seed",
			mutate: func(cfg *Config) {
				cfg.Seed = 0
			},
			wantErr: "seed must be set and non-zero",
		},
		{
			name: "non positive grid extents",
			mutate: func(cfg *Config) {
				cfg.Grid.Width = 0
			},
			wantErr: "grid extents must be positive",
		},
		{
			name: "oversized grid",
			mutate: func(cfg *Config) {
				cfg.Grid.Width = 5000
			},
			wantErr: "grid extents exceed supported maximum (4096x4096x1024)",
		},
		{
			name: "water level above grid",
			mutate: func(cfg *Config) {
				cfg.Terrain.WaterLevel = cfg.Grid.Height
			},
			wantErr: "terrain.waterLevel must be in [0, 128)",
		},
		{
			name: "too many octaves",
			mutate: func(cfg *Config) {
				cfg.Terrain.Octaves = 9
			},
			wantErr: "terrain.octaves must be in [1, 8]",
		},
		{
			name: "persistence out of range",
			mutate: func(cfg *Config) {
				cfg.Terrain.Persistence = 1.5
			},
			wantErr: "terrain.persistence must be in (0, 1]",
		},
		{
			name: "negative terrain workers",
			mutate: func(cfg *Config) {
				cfg.Terrain.Workers = -1
			},
			wantErr: "terrain.workers cannot be negative",
		},
		{
			name: "cave threshold out of range",
			mutate: func(cfg *Config) {
				cfg.Caves.Threshold = 1.0
			},
			wantErr: "caves.threshold must be in (0, 1)",
		},
		{
			name: "inverted cave depth ratios",
			mutate: func(cfg *Config) {
				cfg.Caves.MinDepthRatio = 0.7
			},
			wantErr: "caves depth ratios must satisfy 0 <= min < max <= 1",
		},
		{
			name: "cell size larger than grid",
			mutate: func(cfg *Config) {
				cfg.Placement.CellSize = cfg.Grid.Width + 1
			},
			wantErr: "placement.cellSize must be in [1, min(grid.width, grid.depth)]",
		},
		{
			name: "negative overwrite tolerance",
			mutate: func(cfg *Config) {
				cfg.Placement.OverwriteTolerance = -1
			},
			wantErr: "placement.overwriteTolerance cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected an error, got nil")
			}
			if err.Error() != tt.wantErr {
				t.Fatalf("unexpected error: got %q want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateSkipsCaveChecksWhenDisabled(t *testing.T) {
	cfg := Default()
	cfg.Caves.Enabled = false
	cfg.Caves.Threshold = 5.0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled cave settings should not be validated: %v", err)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load default config: %v", err)
	}
	if want := Default(); !reflect.DeepEqual(cfg, want) {
		t.Fatalf("default configuration mismatch:\nwant: %#v\n got: %#v", want, cfg)
	}
}

func TestLoadReadsJSONAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Seed = 777
	cfg.Terrain.WaterLevel = 30

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("loaded configuration mismatch:\nwant: %#v\n got: %#v", cfg, got)
	}
}

func TestLoadReadsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	body := "seed: 99\nplacement:\n  plants: false\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if got.Seed != 99 {
		t.Fatalf("seed not applied from yaml: got %d", got.Seed)
	}
	if got.Placement.Plants {
		t.Fatalf("placement.plants should be overridden to false")
	}
	if got.Grid.Width != Default().Grid.Width {
		t.Fatalf("unset yaml fields should keep defaults: got width %d", got.Grid.Width)
	}
}

func TestLoadInvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Grid.Width = 0

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err = Load(path)
	if err == nil {
		t.Fatalf("expected load to fail")
	}
	if !strings.Contains(err.Error(), "validate config: grid extents must be positive") {
		t.Fatalf("unexpected error: %v", err)
	}
}
