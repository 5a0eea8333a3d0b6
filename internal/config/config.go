package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Output controls where artifacts land and how they are named.
type Output struct {
	BaseDir        string `toml:"base_dir"`
	FilenamePrefix string `toml:"filename_prefix"`
}

// Timeline holds the editorial defaults applied when no media file can be
// probed.
type Timeline struct {
	FrameRate string `toml:"frame_rate"`
	EDLTitle  string `toml:"edl_title"`
	EDLReel   string `toml:"edl_reel"`
	EDLTrack  string `toml:"edl_track"`
}

// Config is the full sparkpack configuration.
type Config struct {
	Output   Output   `toml:"output"`
	Timeline Timeline `toml:"timeline"`
}

// Default returns the configuration used when no config file is given.
func Default() Config {
	return Config{
		Output: Output{
			BaseDir:        "exports",
			FilenamePrefix: "sdna_ai_spark",
		},
		Timeline: Timeline{
			FrameRate: "25/1",
			EDLTitle:  "AI Spark Events",
			EDLReel:   "AX",
			EDLTrack:  "V",
		},
	}
}

// Load reads a TOML config file over the defaults, so a partial file only
// overrides what it names.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Output.BaseDir == "" {
		return cfg, fmt.Errorf("config %s: output.base_dir must not be empty", path)
	}
	if cfg.Timeline.FrameRate == "" {
		return cfg, fmt.Errorf("config %s: timeline.frame_rate must not be empty", path)
	}

	return cfg, nil
}
