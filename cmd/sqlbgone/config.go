// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package main

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the settings shared by all commands. Values come from the
// optional config file, overridden by SQLBGONE_ environment variables,
// overridden in turn by command line flags.
type Config struct {
	// Schema is the path of the file holding the CREATE TABLE statements.
	Schema   string `mapstructure:"schema"`
	Format   string `mapstructure:"format"`
	LogLevel string `mapstructure:"log_level"`
}

// LoadConfig reads the YAML config file at path. An empty path skips the
// file and only the environment and defaults are used.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SQLBGONE")
	v.AutomaticEnv()
	v.SetDefault("schema", "")
	v.SetDefault("format", "text")
	v.SetDefault("log_level", "WARNING")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
