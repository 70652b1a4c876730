// Package config is used to load the configuration file
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type output struct {
	Dir string `mapstructure:"dir"`
}

type database struct {
	DSN       string `mapstructure:"dsn"`
	BatchSize int    `mapstructure:"batch-size"`
}

type table struct {
	Styled   bool `mapstructure:"styled"`
	MaxWidth int  `mapstructure:"max-width"`
}

// Config is the configuration struct
type Config struct {
	Output   output   `mapstructure:"output"`
	Database database `mapstructure:"db"`
	Table    table    `mapstructure:"table"`
}

func (c *Config) verify() error {
	if c.Output.Dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("config: failed to get working directory: %v", err)
		}
		c.Output.Dir = wd
	}
	if fi, err := os.Stat(c.Output.Dir); err != nil {
		return fmt.Errorf("config: output dir %s: %v", c.Output.Dir, err)
	} else if !fi.IsDir() {
		return fmt.Errorf("config: output dir %s is not a directory", c.Output.Dir)
	}
	if c.Database.BatchSize < 0 {
		return fmt.Errorf("config: db batch-size must be positive")
	} else if c.Database.BatchSize == 0 {
		c.Database.BatchSize = 1000
	}
	if c.Table.MaxWidth <= 0 {
		c.Table.MaxWidth = 60
	}
	return nil
}

// LoadConfig loads the configuration file
func LoadConfig() (*Config, error) {
	var c *Config

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %v", err)
	}
	if c == nil {
		c = &Config{}
	}

	if err := c.verify(); err != nil {
		return nil, fmt.Errorf("config: failed to verify: %v", err)
	}

	return c, nil
}
