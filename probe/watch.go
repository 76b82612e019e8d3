/*
NAME
  watch.go

DESCRIPTION
  watch.go provides directory watching, probing video files as they are
  written.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package probe

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/ausocean/spsprobe/codec/codecutil"
	"github.com/ausocean/spsprobe/codec/h26x"
	"github.com/ausocean/spsprobe/container/mts"
)

// Watch probes files created or written in dir until ctx is done. Files are
// recognised by extension (see codecutil.FromExt); the configured codec is
// assumed for MPEG-TS clips without PSI. fn is called once per file, when
// its SPS has been decoded or probing has failed for a reason other than the
// SPS not having been written yet. A file that is removed or renamed and then
// written again is probed again.
//
// Watch returns the context's error once ctx is done, or an error if dir
// cannot be watched.
func (p *Prober) Watch(ctx context.Context, dir string, fn func(path string, res h26x.Result, err error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create watcher: %w", err)
	}
	defer w.Close()

	err = w.Add(dir)
	if err != nil {
		return fmt.Errorf("could not watch %s: %w", dir, err)
	}
	p.log.Info(pkg+"watching directory", "dir", dir)

	done := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			p.log.Error(pkg+"watcher error", "error", err.Error())

		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				delete(done, ev.Name)
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) || done[ev.Name] {
				continue
			}
			codec, container, ok := codecutil.FromExt(filepath.Ext(ev.Name))
			if !ok {
				continue
			}
			if codec == "" {
				codec = p.cfg.Codec
			}

			res, err := p.ProbeFile(ev.Name, codec, container)
			if incomplete(err) {
				p.log.Debug(pkg+"SPS not yet available", "file", ev.Name, "error", err.Error())
				continue
			}
			done[ev.Name] = true
			fn(ev.Name, res, err)
		}
	}
}

// incomplete returns true if err may be due to a file that is still being
// written.
func incomplete(err error) bool {
	return errors.Is(err, h26x.ErrNotFound) ||
		errors.Is(err, h26x.ErrOutOfBounds) ||
		errors.Is(err, mts.ErrNoData) ||
		errors.Is(err, mts.ErrNoPES) ||
		errors.Is(err, mts.ErrInvalidLen)
}
