package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "KDTREE"

// Config holds the settings shared by all commands.
type Config struct {
	DB    string `mapstructure:"db"`
	Table string `mapstructure:"table"`
	Dim   int    `mapstructure:"dim"`
}

func bindConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, name := range []string{"db", "table", "dim"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig resolves flags, KDTREE_* environment variables and the optional
// config file, in that order of precedence.
func loadConfig(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cli: read config %s: %w", file, err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("cli: decode config: %w", err)
	}
	if cfg.DB == "" {
		return nil, fmt.Errorf("cli: db path is empty")
	}
	if cfg.Dim <= 0 {
		return nil, fmt.Errorf("cli: dim must be positive, got %d", cfg.Dim)
	}
	return cfg, nil
}
