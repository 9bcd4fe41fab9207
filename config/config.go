// Copyright 2025 Udyog Labs
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


// Package config loads service configuration from YAML, layered over
// defaults so a minimal file only names the dataset.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	// Dataset is the path to the occupation dataset JSON file.
	Dataset string `yaml:"dataset"`

	// CacheDir holds the persisted index snapshot. Empty disables
	// snapshot persistence and every start re-embeds the corpus.
	CacheDir string `yaml:"cache_dir"`

	// SaveBack writes synonym edits back to the dataset file.
	SaveBack bool `yaml:"save_back"`

	// EventLog appends one JSON search event per line. Empty disables it.
	EventLog string `yaml:"event_log"`

	Embedding Embedding `yaml:"embedding"`
	Search    Search    `yaml:"search"`
	Reindex   Reindex   `yaml:"reindex"`
}

// Embedding configures the embedding service client.
type Embedding struct {
	Host         string `yaml:"host"`
	Model        string `yaml:"model"`
	MaxTextRunes int    `yaml:"max_text_runes"`
}

// Search configures scoring.
type Search struct {
	// LowConfidenceThreshold flags responses whose best confidence
	// falls below it.
	LowConfidenceThreshold float64 `yaml:"low_confidence_threshold"`

	// AnchorLow and AnchorHigh are the fallback calibration used when
	// build-time measurement fails.
	AnchorLow  float32 `yaml:"anchor_low"`
	AnchorHigh float32 `yaml:"anchor_high"`
}

// Reindex configures the index build pipeline.
type Reindex struct {
	BatchSize      int           `yaml:"batch_size"`
	PoolSize       int           `yaml:"pool_size"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	ReportInterval int           `yaml:"report_interval"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Dataset: "nco_data.json",
		Embedding: Embedding{
			Host:         "http://localhost:11434/v1",
			Model:        "multilingual-e5-small",
			MaxTextRunes: 2000,
		},
		Search: Search{
			LowConfidenceThreshold: 0.45,
			AnchorLow:              0.70,
			AnchorHigh:             0.95,
		},
		Reindex: Reindex{
			BatchSize:      64,
			MaxRetries:     3,
			RetryDelay:     time.Second,
			ReportInterval: 100,
		},
	}
}

// Load reads a YAML file over the defaults. A missing path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.Dataset == "" {
		return fmt.Errorf("dataset path is required")
	}
	if c.Embedding.Host == "" {
		return fmt.Errorf("embedding host is required")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding model is required")
	}
	if c.Search.LowConfidenceThreshold < 0 || c.Search.LowConfidenceThreshold > 1 {
		return fmt.Errorf("low_confidence_threshold must be in [0,1], got %v", c.Search.LowConfidenceThreshold)
	}
	if c.Search.AnchorHigh <= c.Search.AnchorLow {
		return fmt.Errorf("anchor_high (%v) must exceed anchor_low (%v)", c.Search.AnchorHigh, c.Search.AnchorLow)
	}
	if c.Reindex.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be greater than 0")
	}
	if c.Reindex.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be greater than 0")
	}
	return nil
}
