// Copyright 2026 Civita Labs
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


package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the optional YAML configuration file. Every field
// has a working default; command-line flags override file values.
type fileConfig struct {
	DB   string `yaml:"db"`
	Data struct {
		Dir       string `yaml:"dir"`
		Cases     string `yaml:"cases"`
		Personnel string `yaml:"personnel"`
		Vehicles  string `yaml:"vehicles"`
		Zones     string `yaml:"zones"`
	} `yaml:"data"`
	AI struct {
		EmbeddingHost  string  `yaml:"embedding_host"`
		EmbeddingModel string  `yaml:"embedding_model"`
		OracleHost     string  `yaml:"oracle_host"`
		OracleModel    string  `yaml:"oracle_model"`
		Temperature    float64 `yaml:"temperature"`
	} `yaml:"ai"`
}

func defaultFileConfig() *fileConfig {
	cfg := &fileConfig{DB: "./caseflow_db"}
	cfg.Data.Dir = "./data"
	return cfg
}

// loadFileConfig reads the YAML file at path. An empty path returns the
// defaults; a named file that does not exist is an error.
func loadFileConfig(path string) (*fileConfig, error) {
	cfg := defaultFileConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}
