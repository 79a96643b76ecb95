package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Index IndexConfig `yaml:"index"`
}

// IndexConfig carries the learned index's tuning knobs, exposed as a config
// section rather than hardcoded constructor arguments so a deployment can
// tune fit strategy and pool size without a recompile.
type IndexConfig struct {
	BuildLRRemain      float64 `yaml:"build_lr_remain"`
	UseFMCD            bool    `yaml:"use_fmcd"`
	Quiet              bool    `yaml:"quiet"`
	PendingTwoPoolSize int     `yaml:"pending_two_pool_size"`
}

func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Index: IndexConfig{
			BuildLRRemain:      0,
			UseFMCD:            true,
			Quiet:              true,
			PendingTwoPoolSize: 1024,
		},
	}

	if configPath == "" {
		for _, p := range []string{"configs/lipp.yaml", "lipp.yaml"} {
			data, err := os.ReadFile(p)
			if err == nil {
				if err := yaml.Unmarshal(data, cfg); err != nil {
					return cfg, err
				}
				applyIndexDefaults(cfg)
				return cfg, nil
			}
		}
		applyIndexDefaults(cfg)
		return cfg, nil // no file found: use defaults
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, err
	}

	applyIndexDefaults(cfg)
	return cfg, nil
}

func applyIndexDefaults(cfg *Config) {
	if cfg.Index.PendingTwoPoolSize <= 0 {
		cfg.Index.PendingTwoPoolSize = 1024
	}
	if cfg.Index.BuildLRRemain < 0 || cfg.Index.BuildLRRemain >= 0.5 {
		cfg.Index.BuildLRRemain = 0
	}
}
