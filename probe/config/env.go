/*
NAME
  env.go

DESCRIPTION
  env.go provides loading of config variables from the environment.

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

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes the names of environment variables read by LoadEnv,
// e.g. SPSPROBE_CODEC.
const EnvPrefix = "spsprobe"

// env holds the config variables that may be set from the environment.
// Values are kept as strings so they are parsed and logged by Update.
type env struct {
	Codec      string `split_words:"true"`
	Container  string `split_words:"true"`
	InputPath  string `split_words:"true"`
	Logging    string `split_words:"true"`
	MaxNALSize string `split_words:"true"`
	WatchDir   string `split_words:"true"`
	Window     string `split_words:"true"`
}

// LoadEnv applies config variables set in the environment. Unset and empty
// variables leave the config unchanged.
func (c *Config) LoadEnv() error {
	var e env
	err := envconfig.Process(EnvPrefix, &e)
	if err != nil {
		return fmt.Errorf("could not process environment: %w", err)
	}

	vars := make(map[string]string)
	for k, v := range map[string]string{
		KeyCodec:      e.Codec,
		KeyContainer:  e.Container,
		KeyInputPath:  e.InputPath,
		KeyLogging:    e.Logging,
		KeyMaxNALSize: e.MaxNALSize,
		KeyWatchDir:   e.WatchDir,
		KeyWindow:     e.Window,
	} {
		if v != "" {
			vars[k] = v
		}
	}
	c.Update(vars)
	return nil
}
