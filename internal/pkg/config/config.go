// Copyright 2022 GearnsC
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

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CONVERTMDINFO"

//go:embed default.yaml
var defaultConfig []byte

type MDConfig struct {
	FfprobePath  *string        `yaml:"ffprobe_path,omitempty" envconfig:"FFPROBE_PATH"`
	FrameLimit   *int           `yaml:"frame_limit,omitempty" envconfig:"FRAME_LIMIT"`
	ProbeTimeout *time.Duration `yaml:"probe_timeout,omitempty" envconfig:"PROBE_TIMEOUT"`
	CachePath    *string        `yaml:"cache_path,omitempty" envconfig:"CACHE_PATH"`
	LogFile      *string        `yaml:"log_file,omitempty" envconfig:"LOG_FILE"`
	Verbose      *bool          `yaml:"verbose,omitempty" envconfig:"VERBOSE"`
	LowPriority  *bool          `yaml:"low_priority,omitempty" envconfig:"LOW_PRIORITY"`
}

type locator struct {
	Config string `envconfig:"CONFIG"`
}

// Path returns the configuration file location: $CONVERTMDINFO_CONFIG when
// set, DefaultConfigPath otherwise.
func Path() string {
	var l locator
	if err := envconfig.Process(EnvPrefix, &l); err != nil || l.Config == "" {
		return DefaultConfigPath
	}
	return l.Config
}

// DefaultConfiguration returns the built in configuration.
func DefaultConfiguration() *MDConfig {
	config := &MDConfig{}
	if err := yaml.Unmarshal(defaultConfig, config); err != nil {
		panic(fmt.Sprintf("embedded default.yaml is invalid: %v", err))
	}
	fillDefaults(config)
	return config
}

// fillDefaults sets every field the file left empty.
func fillDefaults(config *MDConfig) {
	if config.FfprobePath == nil {
		config.FfprobePath = new(string)
		*config.FfprobePath = defaultFfprobePath
	}
	if config.FrameLimit == nil {
		config.FrameLimit = new(int)
		*config.FrameLimit = 24
	}
	if config.ProbeTimeout == nil {
		config.ProbeTimeout = new(time.Duration)
		*config.ProbeTimeout = 2 * time.Minute
	}
	if config.CachePath == nil {
		config.CachePath = new(string)
		*config.CachePath = defaultCachePath
	}
	if config.LogFile == nil {
		config.LogFile = new(string)
		*config.LogFile = defaultLogFile
	}
	if config.Verbose == nil {
		config.Verbose = new(bool)
	}
	if config.LowPriority == nil {
		config.LowPriority = new(bool)
	}
}

// ParseConfig reads the YAML file at path, fills unset keys from the
// built in defaults and applies environment overrides. A missing file is
// not an error.
func ParseConfig(path string) (*MDConfig, error) {
	config := &MDConfig{}

	f, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		config = DefaultConfiguration()
	case err != nil:
		return nil, fmt.Errorf("read config %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(f, config); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
		fillDefaults(config)
	}

	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return nil, fmt.Errorf("environment override: %w", err)
	}
	if *config.FrameLimit <= 0 {
		return nil, fmt.Errorf("frame_limit must be positive, got %d", *config.FrameLimit)
	}
	if *config.ProbeTimeout <= 0 {
		return nil, fmt.Errorf("probe_timeout must be positive, got %v", *config.ProbeTimeout)
	}
	return config, nil
}
