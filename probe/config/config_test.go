/*
DESCRIPTION
  config_test.go provides testing for the Config struct methods (Validate,
  Update and Load).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ausocean/spsprobe/codec/codecutil"
	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
)

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

func TestValidate(t *testing.T) {
	dl := &dumbLogger{}

	want := Config{
		Logger:     dl,
		Codec:      defaultCodec,
		Container:  defaultContainer,
		Window:     defaultWindow,
		MaxNALSize: defaultMaxNALSize,
	}

	got := Config{Logger: dl}
	err := (&got).Validate()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if !cmp.Equal(got, want) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestNew(t *testing.T) {
	dl := &dumbLogger{}

	got := New(dl)
	err := (&got).Validate()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	want := Config{
		Logger:     dl,
		Codec:      defaultCodec,
		Container:  defaultContainer,
		Window:     defaultWindow,
		MaxNALSize: defaultMaxNALSize,
		LogLevel:   logging.Error,
	}
	if !cmp.Equal(got, want) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}

	// A logging variable still overrides the default.
	got.Update(map[string]string{KeyLogging: "Debug"})
	if got.LogLevel != logging.Debug {
		t.Errorf("unexpected log level after update, got: %d, want: %d", got.LogLevel, logging.Debug)
	}
}

func TestValidateBadFields(t *testing.T) {
	dl := &dumbLogger{}

	got := Config{
		Logger:    dl,
		Codec:     "mjpeg",
		Container: "mp4",
		Window:    maxWindow + 1,
		LogLevel:  42,
	}
	err := (&got).Validate()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	want := Config{
		Logger:     dl,
		Codec:      defaultCodec,
		Container:  defaultContainer,
		Window:     defaultWindow,
		MaxNALSize: defaultMaxNALSize,
		LogLevel:   defaultVerbosity,
	}
	if !cmp.Equal(got, want) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestUpdate(t *testing.T) {
	updateMap := map[string]string{
		"Codec":      "h265",
		"Container":  "ts",
		"InputPath":  "/inputpath",
		"logging":    "Warning",
		"MaxNALSize": "4096",
		"WatchDir":   "/watchdir",
		"Window":     "2048",
	}

	dl := &dumbLogger{}
	want := Config{
		Logger:     dl,
		Codec:      codecutil.H265,
		Container:  codecutil.MPEG,
		InputPath:  "/inputpath",
		LogLevel:   logging.Warning,
		MaxNALSize: 4096,
		WatchDir:   "/watchdir",
		Window:     2048,
	}

	got := Config{Logger: dl}
	got.Update(updateMap)
	if !cmp.Equal(want, got) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestLoad(t *testing.T) {
	const file = `
Codec: h265
Container: ts
Window: 512
logging: Debug
`
	path := filepath.Join(t.TempDir(), "spsprobe.yaml")
	err := os.WriteFile(path, []byte(file), 0644)
	if err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	dl := &dumbLogger{}
	got := Config{Logger: dl}
	err = got.Load(path)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	want := Config{
		Logger:    dl,
		Codec:     codecutil.H265,
		Container: codecutil.MPEG,
		Window:    512,
		LogLevel:  logging.Debug,
	}
	if !cmp.Equal(want, got) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	nested := filepath.Join(dir, "nested.yaml")
	err := os.WriteFile(nested, []byte("Codec:\n  name: h264\n"), 0644)
	if err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.yaml")},
		{name: "non-scalar value", path: nested},
	}
	for _, test := range tests {
		c := Config{Logger: &dumbLogger{}}
		err := c.Load(test.path)
		if err == nil {
			t.Errorf("expected error for %s", test.name)
		}
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("SPSPROBE_CODEC", "h265")
	t.Setenv("SPSPROBE_WINDOW", "4096")
	t.Setenv("SPSPROBE_WATCH_DIR", "/watchdir")
	t.Setenv("SPSPROBE_CONTAINER", "")

	dl := &dumbLogger{}
	got := Config{Logger: dl, Container: codecutil.MPEG}
	err := got.LoadEnv()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	want := Config{
		Logger:    dl,
		Codec:     codecutil.H265,
		Container: codecutil.MPEG,
		WatchDir:  "/watchdir",
		Window:    4096,
	}
	if !cmp.Equal(want, got) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}
