/*
NAME
  config.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for the SPS prober.
package config

import (
	"fmt"
	"os"

	"github.com/ausocean/utils/logging"
	"gopkg.in/yaml.v3"
)

// Config provides parameters relevant to a probe instance. A new config must
// be passed to the constructor. Default values for these fields are defined
// as consts in variables.go.
type Config struct {
	// Codec defines the codec of raw elementary stream input. Valid values
	// are the codecutil names "h264" and "h265". For MPEG-TS input the codec
	// found in the PMT takes precedence.
	Codec string

	// Container defines how the elementary stream is carried, either "raw"
	// for an Annex B byte stream or "ts" for MPEG-TS.
	Container string

	InputPath string // InputPath defines the input file location for file probing.
	WatchDir  string // WatchDir is a directory whose new files are probed.

	// Logger holds an implementation of the Logger interface as defined in
	// github.com/ausocean/utils/logging. This must be set for the prober to
	// work correctly.
	Logger logging.Logger

	// LogLevel is the prober logging verbosity level.
	// Valid values are defined by enums from the logger package: logging.Debug,
	// logging.Info, logging.Warning logging.Error, logging.Fatal. The zero
	// value is logging.Info; configs from New default to logging.Error.
	LogLevel int8

	MaxNALSize uint // Largest NAL unit kept whole by the stream lexer, in bytes.
	Window     uint // Number of leading bytes of a raw file searched for the SPS.
}

// New returns a Config using log with the default logging verbosity. Other
// fields are left for Validate to default.
func New(log logging.Logger) Config {
	return Config{Logger: log, LogLevel: defaultVerbosity}
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values and converting into correct type, and then
// sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

// Load reads the YAML file at path, a flat mapping of variable names to
// values, and applies it to the config using Update.
func (c *Config) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}
	vars, err := parseYAML(data)
	if err != nil {
		return fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	c.Update(vars)
	return nil
}

// parseYAML converts a YAML mapping into variable values. Scalars of any
// type are accepted and kept in their textual form.
func parseYAML(data []byte) (map[string]string, error) {
	var raw map[string]yaml.Node
	err := yaml.Unmarshal(data, &raw)
	if err != nil {
		return nil, err
	}
	vars := make(map[string]string, len(raw))
	for k, n := range raw {
		if n.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("value of %s is not a scalar", k)
		}
		vars[k] = n.Value
	}
	return vars, nil
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
