/*
DESCRIPTION
  spsprobe reports the picture width, height and frame rate of H.264 and
  H.265 video by decoding its sequence parameter set. Video may be read from
  raw elementary stream files, MPEG-TS clips, a live stream on stdin or files
  appearing in a watched directory.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package spsprobe is a command line tool for probing the geometry of H.264
// and H.265 video.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/spsprobe/codec/h26x"
	"github.com/ausocean/spsprobe/probe"
	"github.com/ausocean/spsprobe/probe/config"
)

// Logging related constants.
const (
	defaultLogPath = "/var/log/spsprobe/spsprobe.log"
	logMaxSize     = 100 // MB
	logMaxBackup   = 5
	logMaxAge      = 28 // days
	logVerbosity   = logging.Info
	logSuppress    = true
)

// flagKeys maps command line flags to the config variables they set.
var flagKeys = map[string]string{
	"path":      config.KeyInputPath,
	"codec":     config.KeyCodec,
	"container": config.KeyContainer,
	"window":    config.KeyWindow,
	"watch":     config.KeyWatchDir,
	"verbosity": config.KeyLogging,
}

func main() {
	var (
		_          = flag.String("path", "", "Path of the H.264/H.265 file or MPEG-TS clip to probe.")
		_          = flag.String("codec", "h264", "Codec of raw input: h264 or h265.")
		_          = flag.String("container", "raw", "Container of file input: raw or ts.")
		_          = flag.Uint("window", 1024, "Number of leading bytes of a raw file searched for the SPS.")
		_          = flag.String("watch", "", "Directory to watch for new video files.")
		_          = flag.String("verbosity", "Error", "Log level: Debug, Info, Warning, Error or Fatal.")
		stdinPtr   = flag.Bool("stdin", false, "Probe a live Annex B stream read from stdin.")
		configPtr  = flag.String("config", "", "Path of a YAML config file.")
		logPathPtr = flag.String("log-path", defaultLogPath, "Path of the log file.")
		muxPtr     = flag.String("mux", "", "Write the raw input file as an MPEG-TS clip to this path instead of probing.")
	)
	flag.Parse()

	// Create lumberjack logger to handle logging to file.
	fileLog := &lumberjack.Logger{
		Filename:   *logPathPtr,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)

	cfg := config.New(log)
	if *configPtr != "" {
		err := cfg.Load(*configPtr)
		if err != nil {
			log.Fatal("could not load config", "error", err.Error())
		}
	}

	err := cfg.LoadEnv()
	if err != nil {
		log.Fatal("could not load config from environment", "error", err.Error())
	}

	// Flags given on the command line override the config file and environment.
	vars := make(map[string]string)
	flag.Visit(func(f *flag.Flag) {
		if k, ok := flagKeys[f.Name]; ok {
			vars[k] = f.Value.String()
		}
	})
	cfg.Update(vars)

	p, err := probe.New(cfg)
	if err != nil {
		log.Fatal("could not create prober", "error", err.Error())
	}
	cfg = p.Config()
	log.SetLevel(cfg.LogLevel)
	log.Debug("config", "codec", cfg.Codec, "container", cfg.Container, "window", cfg.Window)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case *muxPtr != "":
		err = muxFile(*muxPtr, cfg.InputPath, cfg.Codec, log)
	case cfg.WatchDir != "":
		err = p.Watch(ctx, cfg.WatchDir, func(path string, res h26x.Result, err error) {
			if err != nil {
				log.Warning("could not probe file", "file", path, "error", err.Error())
				return
			}
			fmt.Printf("%s: %v\n", path, res)
		})
	case *stdinPtr:
		err = probeStdin(ctx, p, cfg.Codec)
	case cfg.InputPath != "":
		var res h26x.Result
		res, err = p.File(cfg.InputPath)
		if err == nil {
			fmt.Println(res)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil && ctx.Err() == nil {
		log.Fatal("probe failed", "error", err.Error())
	}
}

// probeStdin prints a report for each coded video sequence read from stdin.
func probeStdin(ctx context.Context, p *probe.Prober, codec string) error {
	c, err := h26x.ParseCodec(codec)
	if err != nil {
		return err
	}
	return p.Reader(ctx, os.Stdin, c, func(r probe.Report) error {
		_, err := fmt.Printf("%v iframes=%d pframes=%d\n", r.Result, r.IFrames, r.PFrames)
		return err
	})
}
