// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

// Package config loads and validates Sentinel configuration from file and
// environment.
package config

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	sentinelerr "github.com/ojasavaparas/Sentinel/pkg/errors"
)

// Config is the top-level Sentinel configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Agents   AgentsConfig   `mapstructure:"agents"`
	Runbooks RunbooksConfig `mapstructure:"runbooks"`
}

// ServerConfig controls how the HTTP API listens for connections.
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

// LLMConfig selects and configures the model gateway.
type LLMConfig struct {
	Provider        string  `mapstructure:"provider"`
	Model           string  `mapstructure:"model"`
	APIKey          string  `mapstructure:"api_key"`
	MaxTokens       int     `mapstructure:"max_tokens"`
	InputPerMTokUSD float64 `mapstructure:"input_per_mtok_usd"`
	OutputPerMTok   float64 `mapstructure:"output_per_mtok_usd"`
}

// AgentsConfig bounds the analysis pipeline.
type AgentsConfig struct {
	AnalysisTimeoutSeconds int `mapstructure:"analysis_timeout_seconds"`
}

// RunbooksConfig locates the runbook corpus and its vector index.
type RunbooksConfig struct {
	Dir    string `mapstructure:"dir"`
	DBPath string `mapstructure:"db_path"`
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix SENTINEL_).
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.listen", "127.0.0.1:8000")
	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.model", "claude-sonnet-4-5")
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.input_per_mtok_usd", 3.0)
	v.SetDefault("llm.output_per_mtok_usd", 15.0)
	v.SetDefault("agents.analysis_timeout_seconds", 120)
	v.SetDefault("runbooks.dir", "runbooks")
	v.SetDefault("runbooks.db_path", "sentinel.db")

	// Environment
	v.SetEnvPrefix("SENTINEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, sentinelerr.Errorf(sentinelerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, sentinelerr.Errorf(sentinelerr.CodeConfigLoadReadFailure, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, sentinelerr.Errorf(sentinelerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors. It returns all
// validation errors found rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateLLM()...)
	errs = append(errs, c.validateAgents()...)
	errs = append(errs, c.validateRunbooks()...)

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, sentinelerr.Errorf(sentinelerr.CodeConfigValidateInvalidValue, "config: server.listen must not be empty"))
		return errs
	}

	_, portStr, err := net.SplitHostPort(c.Server.Listen)
	if err != nil {
		errs = append(errs, sentinelerr.Errorf(sentinelerr.CodeConfigValidateInvalidValue,
			"config: server.listen must be a valid host:port address, got %q: %w",
			c.Server.Listen, err,
		))
		return errs
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		errs = append(errs, sentinelerr.Errorf(sentinelerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be a number, got %q", portStr))
	} else if port < 1 || port > 65535 {
		errs = append(errs, sentinelerr.Errorf(sentinelerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be between 1 and 65535, got %d", port))
	}

	return errs
}

func (c *Config) validateLLM() []error {
	var errs []error

	validProviders := map[string]bool{"anthropic": true, "openai": true, "scripted": true}
	if !validProviders[c.LLM.Provider] {
		errs = append(errs, sentinelerr.Errorf(sentinelerr.CodeConfigValidateInvalidValue,
			"config: llm.provider must be one of [anthropic, openai, scripted], got %q",
			c.LLM.Provider,
		))
	}

	if c.LLM.MaxTokens < 1 {
		errs = append(errs, sentinelerr.Errorf(sentinelerr.CodeConfigValidateInvalidValue,
			"config: llm.max_tokens must be positive, got %d", c.LLM.MaxTokens))
	}
	if c.LLM.InputPerMTokUSD < 0 || c.LLM.OutputPerMTok < 0 {
		errs = append(errs, sentinelerr.Errorf(sentinelerr.CodeConfigValidateInvalidValue,
			"config: llm pricing must not be negative"))
	}

	return errs
}

func (c *Config) validateAgents() []error {
	var errs []error

	if c.Agents.AnalysisTimeoutSeconds < 1 {
		errs = append(errs, sentinelerr.Errorf(sentinelerr.CodeConfigValidateInvalidValue,
			"config: agents.analysis_timeout_seconds must be positive, got %d",
			c.Agents.AnalysisTimeoutSeconds,
		))
	}

	return errs
}

func (c *Config) validateRunbooks() []error {
	var errs []error

	if c.Runbooks.Dir == "" {
		errs = append(errs, sentinelerr.Errorf(sentinelerr.CodeConfigValidateInvalidValue, "config: runbooks.dir must not be empty"))
	}
	if c.Runbooks.DBPath == "" {
		errs = append(errs, sentinelerr.Errorf(sentinelerr.CodeConfigValidateInvalidValue, "config: runbooks.db_path must not be empty"))
	}

	return errs
}
