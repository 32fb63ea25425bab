// Copyright 2025 walteh LLC
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

// Package config holds the optional run configuration for fr. Everything has
// a sensible default; a config file only tunes behavior, it is never required.
package config

import (
	"fmt"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 📚 Config represents the complete run configuration
type Config struct {
	// Workers bounds the parallel file-processing pool. 0 means auto.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty" hcl:"workers,optional"`

	// DryRun counts occurrences without writing any file
	DryRun bool `json:"dry_run,omitempty" yaml:"dry_run,omitempty" hcl:"dry_run,optional"`

	// Verbose prints a per-file line for every scanned file
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty" hcl:"verbose,optional"`

	// Skip is a list of doublestar globs (matched against root-relative
	// paths) excluded on top of gitignore rules
	Skip []string `json:"skip,omitempty" yaml:"skip,omitempty" hcl:"skip,optional"`

	// Only restricts processing to files matching at least one glob
	Only []string `json:"only,omitempty" yaml:"only,omitempty" hcl:"only,optional"`

	// Binary tunes the binary-detection heuristic
	Binary *BinaryConfig `json:"binary,omitempty" yaml:"binary,omitempty" hcl:"binary,block"`
}

// 🔬 BinaryConfig tunes content sniffing
type BinaryConfig struct {
	// PrefixBytes is how much of each file is sniffed. 0 means default.
	PrefixBytes int `json:"prefix_bytes,omitempty" yaml:"prefix_bytes,omitempty" hcl:"prefix_bytes,optional"`

	// ControlThreshold is the control-byte fraction above which a file is
	// treated as binary. 0 means default.
	ControlThreshold float64 `json:"control_threshold,omitempty" yaml:"control_threshold,omitempty" hcl:"control_threshold,optional"`
}

// 🏭 Default returns the configuration used when no config file exists.
// The worker count follows the usual I/O-bound sizing: twice the CPU count,
// clamped to keep small machines responsive and big ones from thrashing.
func Default() *Config {
	return &Config{
		Workers: min(max(runtime.NumCPU()*2, 4), 32),
	}
}

// 🔍 Validate checks the configuration is usable
func (cfg *Config) Validate() error {
	if cfg.Workers < 0 {
		return errors.Errorf("workers must be >= 0, got %d", cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = Default().Workers
	}

	if cfg.Binary != nil {
		if cfg.Binary.PrefixBytes < 0 {
			return errors.Errorf("binary.prefix_bytes must be >= 0, got %d", cfg.Binary.PrefixBytes)
		}
		if cfg.Binary.ControlThreshold < 0 || cfg.Binary.ControlThreshold > 1 {
			return errors.Errorf("binary.control_threshold must be in [0, 1], got %v", cfg.Binary.ControlThreshold)
		}
	}

	for _, pattern := range cfg.Skip {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid skip glob %q", pattern)
		}
	}
	for _, pattern := range cfg.Only {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid only glob %q", pattern)
		}
	}

	return nil
}

// 📝 String returns a short description of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("workers=%d dry_run=%v skip=%d only=%d",
		cfg.Workers, cfg.DryRun, len(cfg.Skip), len(cfg.Only))
}
