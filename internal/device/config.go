package device

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds runtime-tunable settings for the byte source and node
// cache layers.
type Config struct {
	// NodeCacheSize is the maximum number of B-tree nodes the shared
	// cache (internal/cache.NodeCache) retains per volume.
	NodeCacheSize int `mapstructure:"node_cache_size"`

	// DefaultOffset is the byte offset used when -o is not given on the
	// CLI.
	DefaultOffset int64 `mapstructure:"default_offset"`

	// VerboseLogging mirrors the CLI's -v flag as a config default.
	VerboseLogging bool `mapstructure:"verbose_logging"`
}

// DefaultConfig returns the library's built-in defaults, used when no
// config file or environment override is present.
func DefaultConfig() Config {
	return Config{
		NodeCacheSize:  64,
		DefaultOffset:  0,
		VerboseLogging: false,
	}
}

// LoadConfig reads hfs-config.{yaml,...} from the usual search paths and
// the HFS_* environment namespace, falling back to DefaultConfig values
// for anything unset.
func LoadConfig() (Config, error) {
	viper.SetConfigName("hfs-config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("$HOME/.hfs")
	viper.AddConfigPath("/etc/hfs")

	defaults := DefaultConfig()
	viper.SetDefault("node_cache_size", defaults.NodeCacheSize)
	viper.SetDefault("default_offset", defaults.DefaultOffset)
	viper.SetDefault("verbose_logging", defaults.VerboseLogging)

	viper.SetEnvPrefix("HFS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return cfg, nil
}
