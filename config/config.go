package config

import (
	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// Config holds the engine settings read from an INI file. Page size is a
// compile-time constant (it shapes on-disk layouts), so it is validated
// against the file header rather than configured here.
type Config struct {
	DataDir  string
	PoolSize int // buffer pool capacity in pages
	LogLevel string
}

// Default returns the settings used when no config file is given.
func Default() Config {
	return Config{
		DataDir:  "./data",
		PoolSize: 64,
		LogLevel: "info",
	}
}

// Load reads cfg from an INI file, e.g.:
//
//	[engine]
//	data_dir  = ./data
//	pool_size = 64
//	log_level = debug
//
// Missing keys fall back to Default values.
func Load(path string) (Config, error) {
	cfg := Default()

	file, err := ini.Load(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "load config %s", path)
	}

	section := file.Section("engine")
	cfg.DataDir = section.Key("data_dir").MustString(cfg.DataDir)
	cfg.PoolSize = section.Key("pool_size").MustInt(cfg.PoolSize)
	cfg.LogLevel = section.Key("log_level").MustString(cfg.LogLevel)

	if cfg.PoolSize < 1 {
		return cfg, errors.Errorf("pool_size must be at least 1, got %d", cfg.PoolSize)
	}
	return cfg, nil
}
