// Package config loads switchxts' optional config file via viper, the way
// deploymenttheory/go-apfs's internal/device.LoadDMGConfig loads its own:
// named config file searched across a few conventional paths, sane
// defaults, environment-variable overrides, and a typed struct via
// mapstructure.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the settings switchxts' flags can also set; flags passed
// explicitly on the command line always win over the config file.
type Config struct {
	KeysPath           string `mapstructure:"keys_path"`
	SectorSize         uint32 `mapstructure:"sector_size"`
	CompressionLevel   int    `mapstructure:"compression_level"`
	DisableExternalAES bool   `mapstructure:"disable_external_aes"`
}

// Load reads switchxts.yaml/switchxts.toml from the current directory or
// $HOME/.switchxts, falling back to defaults when no file is present.
func Load() (*Config, error) {
	viper.SetConfigName("switchxts")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.switchxts")

	viper.SetDefault("sector_size", 512)
	viper.SetDefault("compression_level", 19)
	viper.SetDefault("disable_external_aes", false)

	viper.SetEnvPrefix("SWITCHXTS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}
