/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, and finally, a validation function to check the validity of the
  corresponding field value in the Config.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"fmt"
	"strconv"

	"github.com/ausocean/spsprobe/codec/codecutil"
	"github.com/ausocean/utils/logging"
)

// Config map Keys.
const (
	KeyCodec      = "Codec"
	KeyContainer  = "Container"
	KeyInputPath  = "InputPath"
	KeyLogging    = "logging"
	KeyMaxNALSize = "MaxNALSize"
	KeyWatchDir   = "WatchDir"
	KeyWindow     = "Window"
)

// Config map parameter types.
const (
	typeString = "string"
	typeUint   = "uint"
)

// Default variable values.
const (
	defaultCodec      = codecutil.H264
	defaultContainer  = codecutil.Raw
	defaultVerbosity  = logging.Error
	defaultWindow     = 1024 // Bytes.
	defaultMaxNALSize = codecutil.DefaultMaxNALSize

	// maxWindow bounds the bytes read by a file probe.
	maxWindow = 1 << 20
)

// Variables describes the variables that can be used for probe control.
// These structs provide the name and type of variable, a function for updating
// this variable in a Config, and a function for validating the value of the variable.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyCodec,
		Type:   "enum:h264,h265",
		Update: func(c *Config, v string) { c.Codec = v },
		Validate: func(c *Config) {
			if !codecutil.IsValid(c.Codec) {
				c.LogInvalidField(KeyCodec, defaultCodec)
				c.Codec = defaultCodec
			}
		},
	},
	{
		Name:   KeyContainer,
		Type:   "enum:raw,ts",
		Update: func(c *Config, v string) { c.Container = v },
		Validate: func(c *Config) {
			if !codecutil.IsValidContainer(c.Container) {
				c.LogInvalidField(KeyContainer, defaultContainer)
				c.Container = defaultContainer
			}
		},
	},
	{
		Name:   KeyInputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.InputPath = v },
	},
	{
		Name: KeyLogging,
		Type: "enum:Debug,Info,Warning,Error,Fatal",
		Update: func(c *Config, v string) {
			switch v {
			case "Debug":
				c.LogLevel = logging.Debug
			case "Info":
				c.LogLevel = logging.Info
			case "Warning":
				c.LogLevel = logging.Warning
			case "Error":
				c.LogLevel = logging.Error
			case "Fatal":
				c.LogLevel = logging.Fatal
			default:
				c.Logger.Warning("invalid Logging param", "value", v)
			}
		},
		Validate: func(c *Config) {
			switch c.LogLevel {
			case logging.Debug, logging.Info, logging.Warning, logging.Error, logging.Fatal:
			default:
				c.LogInvalidField("LogLevel", defaultVerbosity)
				c.LogLevel = defaultVerbosity
			}
		},
	},
	{
		Name:   KeyMaxNALSize,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MaxNALSize = parseUint(KeyMaxNALSize, v, c) },
		Validate: func(c *Config) {
			c.MaxNALSize = lessThanOrEqual(KeyMaxNALSize, c.MaxNALSize, 0, c, defaultMaxNALSize)
		},
	},
	{
		Name:   KeyWatchDir,
		Type:   typeString,
		Update: func(c *Config, v string) { c.WatchDir = v },
	},
	{
		Name:   KeyWindow,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Window = parseUint(KeyWindow, v, c) },
		Validate: func(c *Config) {
			if c.Window == 0 || c.Window > maxWindow {
				c.LogInvalidField(KeyWindow, defaultWindow)
				c.Window = defaultWindow
			}
		},
	},
}

func parseUint(n, v string, c *Config) uint {
	_v, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected unsigned int for param %s", n), "value", v)
	}
	return uint(_v)
}

func lessThanOrEqual(n string, v, cmp uint, c *Config, def uint) uint {
	if v <= cmp {
		c.LogInvalidField(n, def)
		return def
	}
	return v
}
