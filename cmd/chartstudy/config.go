package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the app-shell settings. Flags override file values; a missing
// config file just means defaults.
type Config struct {
	Listen      string `yaml:"listen"`
	DataDir     string `yaml:"data_dir"`  // watched for dropped-in datasets; empty disables the watcher
	StoreDir    string `yaml:"store_dir"` // document store location; empty uses ~/.chartstudy/data
	ChartWidth  int    `yaml:"chart_width"`
	ChartHeight int    `yaml:"chart_height"`
	DefaultMode string `yaml:"default_mode"`
	Fixtures    bool   `yaml:"fixtures"` // preload the predefined datasets on startup
}

const defaultConfigFile = "chartstudy.yaml"

func defaultConfig() Config {
	return Config{
		Listen:      ":8780",
		ChartWidth:  1100,
		ChartHeight: 340,
		DefaultMode: "separate",
		Fixtures:    true,
	}
}

// loadConfig reads the YAML config over the defaults. An explicit path must
// exist; the implicit ./chartstudy.yaml is optional.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if path == "" {
		path = defaultConfigFile
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
