// Package config loads the optional driver/daemon configuration file: a
// plain struct decoded from TOML, filling the same ambient role tunaq's
// server/config.go fills for its own server, adapted here for fgrammar's
// build pipeline instead of a game server's persistence layer.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the top-level decoded shape of an fgrammar TOML config file.
type Config struct {
	// MaxDepth is the default recursion bound used by cmd/fgrammarc and
	// cmd/fgrammard when the caller does not supply one explicitly.
	MaxDepth int `toml:"max_depth"`

	// WarmupModules lists builtin module names to construct eagerly at
	// startup (rather than lazily on first <!module.rule> reference), so
	// the first real request doesn't pay the builder/optimizer cost.
	WarmupModules []string `toml:"warmup_modules"`

	// Server holds cmd/fgrammard-specific settings. Zero value is valid:
	// an unconfigured daemon binds to the package default address.
	Server ServerConfig `toml:"server"`

	// Cache holds internal/cache settings.
	Cache CacheConfig `toml:"cache"`
}

// ServerConfig configures cmd/fgrammard's HTTP listener and auth.
type ServerConfig struct {
	ListenAddress string `toml:"listen_address"`
	TokenSecret   string `toml:"token_secret"`
}

// CacheConfig configures internal/cache's on-disk build cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	DataDir string `toml:"data_dir"`
}

// DefaultMaxDepth is used when neither a config file nor a CLI argument
// supplies a max_depth, matching the original driver's default.
const DefaultMaxDepth = 256

// Default returns a Config with every ambient default filled in.
func Default() Config {
	return Config{
		MaxDepth: DefaultMaxDepth,
		Server: ServerConfig{
			ListenAddress: "localhost:8080",
		},
		Cache: CacheConfig{
			DataDir: "fgrammar-cache",
		},
	}
}

// Load reads and decodes the TOML config file at path, applying it on top
// of Default(). A missing path is not an error: the caller gets defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return cfg, nil
}
