package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HugeThreshold != 14000 || cfg.BandHeight != 1024 || cfg.Reduction != 2 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestSaveLoad_RoundTripAndClamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	c := DefaultConfig()
	c.ZoomDelta = 1.5
	c.MagnifierSize = 200
	if err := c.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ZoomDelta != 1.5 || got.MagnifierSize != 200 {
		t.Fatalf("values not persisted: %+v", got)
	}

	if err := os.WriteFile(path, []byte(`{"zoom_delta":0.5,"reduction":1,"band_height":-3}`), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ZoomDelta != 1.3 || got.Reduction != 2 || got.BandHeight != 1024 {
		t.Fatalf("validate did not clamp: %+v", got)
	}
}

func TestLoad_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if cfg == nil || cfg.HugeThreshold != 14000 {
		t.Fatalf("expected defaults alongside error")
	}
}
