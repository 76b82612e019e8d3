/*
NAME
  probe.go

DESCRIPTION
  probe.go provides the Prober, which finds and decodes the sequence parameter
  set of H.264 and H.265 elementary streams held in files, MPEG-TS clips and
  live byte streams.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package probe reports the picture geometry and frame rate of H.264 and
// H.265 video by decoding its sequence parameter sets.
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/spsprobe/codec/codecutil"
	"github.com/ausocean/spsprobe/codec/h26x"
	"github.com/ausocean/spsprobe/container/mts"
	"github.com/ausocean/spsprobe/probe/config"
)

// Log prefix.
const pkg = "probe: "

var errNoLogger = errors.New("no logger in config")

// errFound stops lexing once the first SPS has been decoded.
var errFound = errors.New("SPS found")

// Report describes one coded video sequence of a stream: the result decoded
// from its SPS, and the number of intra and inter coded pictures that
// followed it before the next SPS or the end of the stream.
type Report struct {
	h26x.Result
	IFrames int
	PFrames int
}

// Prober probes video for the geometry held in its SPS.
type Prober struct {
	cfg config.Config
	log logging.Logger
}

// New returns a new Prober using the provided config. The config is
// validated, with bad or unset fields replaced by defaults.
func New(cfg config.Config) (*Prober, error) {
	if cfg.Logger == nil {
		return nil, errNoLogger
	}
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("config struct is bad: %w", err)
	}
	return &Prober{cfg: cfg, log: cfg.Logger}, nil
}

// Config returns a copy of the prober's validated config.
func (p *Prober) Config() config.Config { return p.cfg }

// File probes the file at path using the configured codec and container.
func (p *Prober) File(path string) (h26x.Result, error) {
	return p.ProbeFile(path, p.cfg.Codec, p.cfg.Container)
}

// ProbeFile probes the file at path holding video of the named codec in the
// named container. Raw elementary streams have their SPS searched for in the
// first Window bytes of the file. MPEG-TS clips are read whole, and the codec
// in their PMT, if any, takes precedence over codec.
func (p *Prober) ProbeFile(path, codec, container string) (h26x.Result, error) {
	switch container {
	case codecutil.Raw:
		c, err := h26x.ParseCodec(codec)
		if err != nil {
			return h26x.Result{}, err
		}
		return p.raw(path, c)
	case codecutil.MPEG:
		return p.clip(path, codec)
	default:
		return h26x.Result{}, fmt.Errorf("unknown container: %s", container)
	}
}

// raw reads the leading window of the elementary stream file at path and
// decodes the SPS found in it.
func (p *Prober) raw(path string, c h26x.Codec) (h26x.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return h26x.Result{}, fmt.Errorf("could not open input file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, p.cfg.Window)
	n, err := io.ReadFull(f, buf)
	switch {
	case err == nil, errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
	default:
		return h26x.Result{}, fmt.Errorf("could not read input file: %w", err)
	}
	p.log.Debug(pkg+"read window", "file", path, "bytes", n)
	return Window(buf[:n], c)
}

// Window decodes the first SPS NAL unit for codec c found in buf, which is
// left unmodified.
func Window(buf []byte, c h26x.Codec) (h26x.Result, error) {
	nal, err := h26x.FindNAL(buf, c)
	if err != nil {
		return h26x.Result{}, err
	}
	sps := make([]byte, nal.Len())
	copy(sps, nal.Bytes(buf))
	return h26x.DecodeSPS(c, sps)
}

// clip recovers the video elementary stream from the MPEG-TS clip at path and
// decodes its first SPS.
func (p *Prober) clip(path, codec string) (h26x.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return h26x.Result{}, fmt.Errorf("could not read clip: %w", err)
	}
	if rem := len(data) % mts.PacketSize; rem != 0 {
		p.log.Warning(pkg+"clip has partial packet", "file", path, "bytes", rem)
		data = data[:len(data)-rem]
	}
	return p.Clip(data, codec)
}

// Clip decodes the first SPS of the video carried in the MPEG-TS clip. The
// video PID and codec are taken from the clip's PSI. If the clip has no
// usable PSI the first video PES stream is used, assumed to be of the named
// codec.
func (p *Prober) Clip(clip []byte, codec string) (h26x.Result, error) {
	pid, name, err := mts.VideoStream(clip)
	if err != nil {
		p.log.Warning(pkg+"could not get video stream from PSI, searching PES", "error", err.Error())
		pid, err = mts.FindVideoPID(clip)
		if err != nil {
			return h26x.Result{}, fmt.Errorf("could not find video PID: %w", err)
		}
		name = codec
	}
	c, err := h26x.ParseCodec(name)
	if err != nil {
		return h26x.Result{}, err
	}
	p.log.Debug(pkg+"found video stream", "PID", pid, "codec", c)

	es, err := mts.ElementaryStream(clip, pid)
	if err != nil {
		return h26x.Result{}, fmt.Errorf("could not get elementary stream: %w", err)
	}
	return p.First(bytes.NewReader(es), c)
}

// First decodes the first SPS for codec c that can be decoded from the Annex
// B byte stream r. SPS that fail to decode are logged and skipped.
func (p *Prober) First(r io.Reader, c h26x.Codec) (h26x.Result, error) {
	l, err := codecutil.NewNALLexer(int(p.cfg.MaxNALSize))
	if err != nil {
		return h26x.Result{}, err
	}

	var res h26x.Result
	err = l.Lex(r, func(nal []byte) error {
		if h26x.NALType(nal[0], c) != h26x.SPSType(c) {
			return nil
		}
		var err error
		res, err = h26x.DecodeSPS(c, nal)
		if err != nil {
			p.log.Warning(pkg+"could not decode SPS", "error", err.Error())
			return nil
		}
		return errFound
	})
	switch {
	case errors.Is(err, errFound):
		return res, nil
	case errors.Is(err, io.EOF):
		return h26x.Result{}, h26x.ErrNotFound
	default:
		return h26x.Result{}, err
	}
}

// Reader probes the Annex B byte stream r of codec c, such as live capture
// piped to the process. Every SPS found is decoded and a Report for the
// sequence it begins is passed to fn once the next SPS or the end of the
// stream is reached. SPS that fail to decode are logged and skipped, with
// their pictures counted against the preceding sequence. Pictures before the
// first SPS are not reported.
//
// Both picture counts restart at every SPS, so each Report covers one
// sequence only. The I count is not carried across sequences, and the P count
// is not reset by an IDR picture within a sequence.
//
// Reader returns nil at the end of r, the context's error if ctx is done
// (checked between NAL units) or the first error returned by fn.
func (p *Prober) Reader(ctx context.Context, r io.Reader, c h26x.Codec, fn func(Report) error) error {
	l, err := codecutil.NewNALLexer(int(p.cfg.MaxNALSize))
	if err != nil {
		return err
	}

	var (
		rep     Report
		started bool
		skipped int
	)
	err = l.Lex(r, func(nal []byte) error {
		err := ctx.Err()
		if err != nil {
			return err
		}

		typ := h26x.NALType(nal[0], c)
		switch {
		case typ == h26x.SPSType(c):
			res, err := h26x.DecodeSPS(c, nal)
			if err != nil {
				p.log.Warning(pkg+"could not decode SPS", "error", err.Error())
				return nil
			}
			p.log.Debug(pkg+"decoded SPS", "result", res.String(), "offset", l.Consumed())
			if started {
				err = fn(rep)
				if err != nil {
					return err
				}
			}
			rep = Report{Result: res}
			started = true
		case !started:
			skipped++
		case isIntra(typ, c):
			rep.IFrames++
		case isInter(typ, c):
			rep.PFrames++
		}
		return nil
	})
	if skipped != 0 {
		p.log.Debug(pkg+"NAL units before first SPS", "count", skipped)
	}
	if !errors.Is(err, io.EOF) {
		return err
	}
	if started {
		return fn(rep)
	}
	p.log.Info(pkg+"no SPS in stream")
	return nil
}

// H.265 NAL unit type ranges, see table 7-1 of ITU-T H.265.
const (
	h265FirstIRAP   = 16 // BLA_W_LP
	h265LastIRAP    = 21 // CRA_NUT
	h265LastNonIRAP = 9  // RASL_R
)

// isIntra returns true for NAL units of type typ that carry a random access
// (I) picture slice.
func isIntra(typ int, c h26x.Codec) bool {
	if c == h26x.H265 {
		return typ >= h265FirstIRAP && typ <= h265LastIRAP
	}
	return typ == h26x.H264TypeIDR
}

// isInter returns true for NAL units of type typ that carry a non random
// access picture slice.
func isInter(typ int, c h26x.Codec) bool {
	if c == h26x.H265 {
		return typ <= h265LastNonIRAP
	}
	return typ == h26x.H264TypeNonIDR
}
