package stages

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`
tier: medium
target_fps: 50
min_fps: 30
sample_window: 2s
history_size: 12
stage_width: 1600
stage_height: 900
heap_threshold: 2000000000
manual_adjust: true
rules:
  high: ["RTX"]
  mid: ["UHD"]
`)
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Tier != TierMid {
		t.Errorf("Tier = %v, want mid", cfg.Tier)
	}
	if cfg.TargetFPS != 50 || cfg.MinFPS != 30 {
		t.Errorf("fps = %v/%v, want 50/30", cfg.TargetFPS, cfg.MinFPS)
	}
	if cfg.SampleWindow != 2*time.Second {
		t.Errorf("SampleWindow = %v, want 2s", cfg.SampleWindow)
	}
	if cfg.HistorySize != 12 || cfg.StageWidth != 1600 || cfg.StageHeight != 900 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.HeapThreshold != 2_000_000_000 || !cfg.ManualAdjust {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Rules.High) != 1 || cfg.Rules.High[0] != "RTX" {
		t.Errorf("Rules = %+v", cfg.Rules)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("debug: true\n"))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	d := DefaultConfig()
	if cfg.TargetFPS != d.TargetFPS || cfg.MinFPS != d.MinFPS || cfg.SampleWindow != d.SampleWindow {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Tier != TierAuto || !cfg.Debug {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Rules.High) == 0 {
		t.Error("default rules not applied")
	}
}

func TestParseConfigErrors(t *testing.T) {
	cases := map[string]string{
		"bad tier":     "tier: ultra\n",
		"fps conflict": "target_fps: 40\nmin_fps: 45\n",
		"bad yaml":     "tier: [\n",
	}
	for name, data := range cases {
		if _, err := ParseConfig([]byte(data)); err == nil {
			t.Errorf("%s: expected error", name)
		} else if !strings.HasPrefix(err.Error(), "parse config") {
			t.Errorf("%s: error %q should be wrapped", name, err)
		}
	}
}

func TestLoadConfigCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stages.yaml")
	if err := os.WriteFile(path, []byte("tier: low\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Tier != TierLow {
		t.Errorf("Tier = %v, want low", cfg.Tier)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing explicit path should fail")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("tier: ultra\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil || !strings.Contains(err.Error(), bad) {
		t.Errorf("err = %v, want it to name %s", err, bad)
	}
}

func TestLoadConfigSearchOrder(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	work := t.TempDir()
	t.Chdir(work)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.TargetFPS != DefaultTargetFPS {
		t.Errorf("no files should give defaults, got %+v", cfg)
	}

	if err := os.WriteFile(filepath.Join(work, "stages.yaml"), []byte("tier: mid\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if cfg, _ := LoadConfig(""); cfg.Tier != TierMid {
		t.Errorf("local file: Tier = %v, want mid", cfg.Tier)
	}

	if err := os.MkdirAll(filepath.Join(home, ".stages"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(home, ".stages", "config.yaml"), []byte("tier: high\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if cfg, _ := LoadConfig(""); cfg.Tier != TierHigh {
		t.Errorf("user file: Tier = %v, want high", cfg.Tier)
	}
}

func TestTierYAMLRoundTrip(t *testing.T) {
	out, err := TierHigh.MarshalYAML()
	if err != nil || out != "high" {
		t.Errorf("MarshalYAML = %v, %v", out, err)
	}
}
