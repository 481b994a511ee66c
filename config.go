package stages

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// Config is the single configuration object an Engine is built from. Every
// field is optional; zero values select the defaults.
type Config struct {
	// Tier forces a device tier. TierAuto (the default) detects it.
	Tier Tier `yaml:"tier"`

	TargetFPS    float64       `yaml:"target_fps"`
	MinFPS       float64       `yaml:"min_fps"`
	SampleWindow time.Duration `yaml:"sample_window"`
	HistorySize  int           `yaml:"history_size"`

	StageWidth  float64 `yaml:"stage_width"`
	StageHeight float64 `yaml:"stage_height"`

	// Rules are the GPU name fragments used for classification.
	Rules         TierRules `yaml:"rules"`
	HeapThreshold uint64    `yaml:"heap_threshold"`

	// ManualAdjust stops the Engine from applying quality adjustments on its
	// own when a sampling window closes.
	ManualAdjust bool `yaml:"manual_adjust"`
	Debug        bool `yaml:"debug"`

	Capabilities CapabilityProvider `yaml:"-"`
	PixelRatio   PixelRatioSource   `yaml:"-"`
	Clock        func() time.Time   `yaml:"-"`
	Logger       *log.Logger        `yaml:"-"`
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	return Config{
		TargetFPS:     DefaultTargetFPS,
		MinFPS:        DefaultMinFPS,
		SampleWindow:  DefaultSampleWindow,
		HistorySize:   DefaultHistorySize,
		StageWidth:    StageWidth,
		StageHeight:   StageHeight,
		Rules:         DefaultTierRules(),
		HeapThreshold: DefaultHeapThreshold,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TargetFPS <= 0 {
		c.TargetFPS = d.TargetFPS
	}
	if c.MinFPS <= 0 {
		c.MinFPS = d.MinFPS
	}
	if c.SampleWindow <= 0 {
		c.SampleWindow = d.SampleWindow
	}
	if c.HistorySize <= 0 {
		c.HistorySize = d.HistorySize
	}
	if c.StageWidth <= 0 {
		c.StageWidth = d.StageWidth
	}
	if c.StageHeight <= 0 {
		c.StageHeight = d.StageHeight
	}
	if c.Rules.High == nil && c.Rules.Mid == nil {
		c.Rules = d.Rules
	}
	if c.HeapThreshold == 0 {
		c.HeapThreshold = d.HeapThreshold
	}
	return c
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	c = c.withDefaults()
	if c.MinFPS >= c.TargetFPS {
		return fmt.Errorf("min_fps %.1f must be below target_fps %.1f", c.MinFPS, c.TargetFPS)
	}
	if c.Tier > TierHigh {
		return fmt.Errorf("invalid tier %d", c.Tier)
	}
	return nil
}

// ParseConfig decodes YAML into a Config with defaults applied.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadConfig loads configuration.
// Search order: customPath -> ~/.stages/config.yaml -> ./stages.yaml -> defaults.
// Only an explicit customPath that cannot be read or parsed is an error.
func LoadConfig(customPath string) (Config, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := ParseConfig(data)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", customPath, err)
		}
		return cfg, nil
	}

	for _, path := range []string{userConfigPath("config.yaml"), "stages.yaml"} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cfg, err := ParseConfig(data)
		if err != nil {
			logger().Warn("ignoring invalid config", "path", path, "err", err)
			continue
		}
		return cfg, nil
	}
	return DefaultConfig(), nil
}

// userConfigPath returns the path to a user config file, or empty if home is
// unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".stages", filename)
}
