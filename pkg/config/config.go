// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package config loads Rime configuration from config files, environment
// variables, and the OS keyring.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (SNOWFLAKE_ACCOUNT_URL, SNOWFLAKE_PAT, ...)
//  2. Config file (~/.rime/config.yaml by default)
//  3. OS keyring (secrets only)
//  4. Built-in defaults
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/teradata-labs/rime/pkg/cortex"
)

// ServiceName is the keyring service name used for storing secrets.
const ServiceName = "rime"

// Config holds the complete Rime configuration.
type Config struct {
	Snowflake SnowflakeConfig `mapstructure:"snowflake"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SnowflakeConfig holds the Snowflake account and Cortex resource settings.
type SnowflakeConfig struct {
	// AccountURL is the Snowflake account endpoint, e.g.
	// https://myorg-myaccount.snowflakecomputing.com
	AccountURL string `mapstructure:"account_url"`

	// PAT is the programmatic access token used as a bearer token.
	// Loaded from SNOWFLAKE_PAT or the OS keyring; keep it out of
	// config files.
	PAT string `mapstructure:"pat"`

	// SemanticModelFile is the stage path of the Cortex Analyst semantic
	// model, e.g. @db.schema.stage/model.yaml
	SemanticModelFile string `mapstructure:"semantic_model_file"`

	// CortexSearchService is the fully qualified Cortex Search service
	// name, e.g. db.schema.service_name
	CortexSearchService string `mapstructure:"cortex_search_service"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	Level string `mapstructure:"level"`

	// File is the log file path. Empty means stderr. Never stdout,
	// which the stdio transport owns.
	File string `mapstructure:"file"`
}

// envBindings maps viper keys to the environment variables that feed them.
// The Snowflake variables are unprefixed because they are shared with other
// Snowflake tooling.
var envBindings = map[string]string{
	"snowflake.account_url":           "SNOWFLAKE_ACCOUNT_URL",
	"snowflake.pat":                   "SNOWFLAKE_PAT",
	"snowflake.semantic_model_file":   "SEMANTIC_MODEL_FILE",
	"snowflake.cortex_search_service": "CORTEX_SEARCH_SERVICE",
	"logging.level":                   "RIME_LOG_LEVEL",
	"logging.file":                    "RIME_LOG_FILE",
}

// Load reads configuration from the config file, environment variables, and
// the OS keyring.
//
// If cfgFile is non-empty it must exist; otherwise Load searches the Rime
// data directory and the current directory for config.yaml and treats a
// missing file as "use defaults". Keyring errors are non-fatal: an absent or
// locked keyring leaves secrets to the environment.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(GetRimeDataDir())
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file found; proceed with env vars and defaults.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Best effort: a missing keyring backend must not block startup.
	_ = loadSecretsFromKeyring(&cfg)

	return &cfg, nil
}

// setDefaults registers built-in defaults on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
}

// Validate checks that the configuration is complete enough to reach
// Snowflake. Error messages name every way to supply the missing value.
func (c *Config) Validate() error {
	if c.Snowflake.AccountURL == "" {
		return fmt.Errorf("snowflake account URL is required (set SNOWFLAKE_ACCOUNT_URL or snowflake.account_url in the config file)")
	}
	if c.Snowflake.PAT == "" {
		return fmt.Errorf("snowflake programmatic access token is required (set SNOWFLAKE_PAT or store it with 'rime config set-key snowflake_pat')")
	}
	return nil
}

// CortexConfig maps the loaded configuration onto the Cortex client config.
func (c *Config) CortexConfig() cortex.Config {
	return cortex.Config{
		AccountURL:          c.Snowflake.AccountURL,
		PAT:                 c.Snowflake.PAT,
		SemanticModelFile:   c.Snowflake.SemanticModelFile,
		CortexSearchService: c.Snowflake.CortexSearchService,
	}
}

// GenerateExampleConfig returns a commented example config file.
func GenerateExampleConfig() string {
	return `# Rime configuration
# Default location: ~/.rime/config.yaml
#
# Priority: environment variables > this file > defaults.
# Secrets belong in the environment or the OS keyring, not here.

snowflake:
  # Snowflake account endpoint.
  # Env: SNOWFLAKE_ACCOUNT_URL
  account_url: https://myorg-myaccount.snowflakecomputing.com

  # Stage path of the Cortex Analyst semantic model.
  # Env: SEMANTIC_MODEL_FILE
  semantic_model_file: "@mydb.myschema.mystage/semantic_model.yaml"

  # Fully qualified Cortex Search service name.
  # Env: CORTEX_SEARCH_SERVICE
  cortex_search_service: mydb.myschema.my_search_service

  # The programmatic access token is read from SNOWFLAKE_PAT or the
  # OS keyring ('rime config set-key snowflake_pat').

logging:
  # Minimum log level: debug, info, warn, error.
  # Env: RIME_LOG_LEVEL
  level: info

  # Log file path. Empty logs to stderr.
  # Env: RIME_LOG_FILE
  file: ""
`
}
