package config

import (
	"os"

	"github.com/cuemby/quill/pkg/dberrors"
	"github.com/cuemby/quill/pkg/log"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk engine configuration cmd/quill loads at startup.
type Config struct {
	DataDir string `yaml:"data_dir"`

	PageCacheCapacity int `yaml:"page_cache_capacity"` // 0 = unbounded
	ItemCacheCapacity int `yaml:"item_cache_capacity"` // 0 = unbounded

	LogLevel    log.Level `yaml:"log_level"`
	LogJSON     bool      `yaml:"log_json"`
	MetricsOn   bool      `yaml:"metrics_enabled"`
	MetricsAddr string    `yaml:"metrics_addr"` // empty disables the HTTP metrics/health server
}

// Default returns the configuration cmd/quill uses when no file is
// given: an unbounded cache and info-level console logging.
func Default(dataDir string) Config {
	return Config{
		DataDir:           dataDir,
		PageCacheCapacity: 0,
		ItemCacheCapacity: 0,
		LogLevel:          log.InfoLevel,
		LogJSON:           false,
		MetricsOn:         true,
		MetricsAddr:       "127.0.0.1:9090",
	}
}

// Load reads and parses a YAML configuration file at path.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, dberrors.Storage(dberrors.ErrFileCannotRW, "reading config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, dberrors.Logical(dberrors.ErrInvalidCommand, "parsing config file: "+err.Error())
	}
	return cfg, nil
}
