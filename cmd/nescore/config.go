package main

import (
	"github.com/BurntSushi/toml"
)

// Config holds the persistent settings read from the optional TOML file.
// Only General.SampleRate is applied, as the default that --sample-rate
// overrides; the [log] section is parsed but not applied (debug logging is
// enabled through the --log flag alone).
type Config struct {
	General GeneralConfig `toml:"general"`
	Log     LogConfig     `toml:"log"`
}

type GeneralConfig struct {
	SampleRate int `toml:"sample_rate"`
}

type LogConfig struct {
	Level   string   `toml:"level"`
	Modules []string `toml:"modules"`
}

func defaultConfig() Config {
	return Config{General: GeneralConfig{SampleRate: 44100}}
}

// loadConfig reads a TOML config file at path, falling back to defaults if
// path is empty. A path that's explicitly given but unreadable is an error;
// an absent default is not.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	_, err := toml.DecodeFile(path, &cfg)
	return cfg, err
}
