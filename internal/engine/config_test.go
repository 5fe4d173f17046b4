package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewConfigIsValid(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.BoardWidth != 7 || cfg.TotalRows != 8 || cfg.PlayerRows != 4 || cfg.BenchSize != 9 {
		t.Errorf("unexpected default board: %dx%d player=%d bench=%d",
			cfg.BoardWidth, cfg.TotalRows, cfg.PlayerRows, cfg.BenchSize)
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	data := []byte("boardWidth: 8\ndragThresholdPx: 20\ntileSizePx: 96\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BoardWidth != 8 || cfg.DragThresholdPx != 20 || cfg.TileSizePx != 96 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	// Не указанные в файле поля остаются дефолтными.
	if cfg.BenchSize != 9 || cfg.MaxStars != 3 {
		t.Errorf("defaults lost: bench=%d maxStars=%d", cfg.BenchSize, cfg.MaxStars)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file must be an error")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("playerRows: 99\n"), 0o644)
	if _, err := LoadConfig(bad); err == nil {
		t.Error("playerRows > totalRows must fail validation")
	}
}

func TestConfigLayout(t *testing.T) {
	cfg := NewConfig()
	l := cfg.Layout()

	if l.Width != cfg.BoardWidth || l.BenchSize != cfg.BenchSize {
		t.Errorf("layout dims = %dx%d, want %dx%d", l.Width, l.BenchSize, cfg.BoardWidth, cfg.BenchSize)
	}
	wantBenchY := cfg.BoardOriginY + float64(cfg.TotalRows)*cfg.TileSizePx + cfg.BenchGapPx
	if l.BenchY != wantBenchY {
		t.Errorf("BenchY = %v, want %v", l.BenchY, wantBenchY)
	}
	if l.SellZone.W != cfg.SellZoneW {
		t.Errorf("sell zone width = %v, want %v", l.SellZone.W, cfg.SellZoneW)
	}
}
