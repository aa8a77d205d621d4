// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package llm

import (
	"errors"
	"strings"
)

// Config holds the connection settings for an OpenAI-compatible chat API.
type Config struct {
	// Host is the base URL of the API.
	// Example: "http://localhost:11434/v1" for a local server
	Host string

	// Model is the chat model identifier.
	// Example: "qwen2.5:7b", "gpt-4o-mini"
	Model string

	// Token authenticates against the API. Local servers accept any value.
	Token string

	// MaxEntries caps the entries requested per lookup.
	// Default: 3
	MaxEntries int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the API base URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithToken sets the API token.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithMaxEntries sets how many entries the model is asked for.
func WithMaxEntries(n int) ConfigOption {
	return func(c *Config) {
		c.MaxEntries = n
	}
}

// DefaultConfig returns a Config for a local OpenAI-compatible server.
func DefaultConfig() *Config {
	return &Config{
		Host:       "http://localhost:11434/v1",
		Model:      "qwen2.5:7b",
		Token:      "none",
		MaxEntries: 3,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//   cfg := NewConfig(
//       WithHost("http://localhost:11434"),
//       WithModel("gpt-4o-mini"),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize adds the /v1 suffix OpenAI-compatible servers expect and
// fills in the placeholder token.
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
	if c.Token == "" {
		c.Token = "none"
	}
}

// Validate normalizes the configuration and checks that it is complete.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("llm config: Host is required")
	}
	if c.Model == "" {
		return errors.New("llm config: Model is required")
	}
	if c.MaxEntries < 1 || c.MaxEntries > 10 {
		return errors.New("llm config: MaxEntries must be between 1 and 10")
	}
	return nil
}
