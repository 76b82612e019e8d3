/*
DESCRIPTION
  mux.go provides packetisation of a raw H.264 or H.265 elementary stream
  into an MPEG-TS clip.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/spsprobe/codec/codecutil"
	"github.com/ausocean/spsprobe/codec/h26x"
	"github.com/ausocean/spsprobe/container/mts"
)

// muxFile writes the elementary stream file at in to the file at out as an
// MPEG-TS clip.
func muxFile(out, in, codec string, log logging.Logger) error {
	src, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("could not open input file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}

	err = mux(dst, src, codec, log)
	if err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// mux packetises the Annex B byte stream src into MPEG-TS written to dst,
// one PES packet per access unit. An access unit is taken to end with its
// first coded slice. Timestamps follow the frame rate of the first SPS that
// signals one, or the encoder's default rate otherwise.
func mux(dst io.Writer, src io.Reader, codec string, log logging.Logger) error {
	c, err := h26x.ParseCodec(codec)
	if err != nil {
		return err
	}
	l, err := codecutil.NewNALLexer(codecutil.Unbounded)
	if err != nil {
		return err
	}

	var (
		e   *mts.Encoder
		fps uint
		au  []byte
		aus int
	)
	flush := func() error {
		if len(au) == 0 {
			return nil
		}
		var err error
		if e == nil {
			opts := []func(*mts.Encoder) error{mts.MediaType(codec)}
			if fps != 0 {
				opts = append(opts, mts.Rate(float64(fps)))
			}
			e, err = mts.NewEncoder(dst, log, opts...)
			if err != nil {
				return fmt.Errorf("could not create encoder: %w", err)
			}
			log.Debug("created encoder", "fps", fps)
		}
		_, err = e.Write(au)
		au = au[:0]
		aus++
		return err
	}
	err = l.Lex(src, func(nal []byte) error {
		au = append(au, 0x00, 0x00, 0x00, 0x01)
		au = append(au, nal...)
		typ := h26x.NALType(nal[0], c)
		if e == nil && fps == 0 && typ == h26x.SPSType(c) {
			fps = frameRate(nal, c, log)
		}
		if isSlice(typ, c) {
			return flush()
		}
		return nil
	})
	if !errors.Is(err, io.EOF) {
		return err
	}
	err = flush()
	if err != nil {
		return err
	}
	log.Info("muxed elementary stream", "access units", aus)
	return nil
}

// maxRate is the highest frame rate the encoder accepts.
const maxRate = 240

// frameRate returns the frame rate signalled by the SPS NAL unit sps, or zero
// if it cannot be decoded or is out of the encoder's range.
func frameRate(sps []byte, c h26x.Codec, log logging.Logger) uint {
	res, err := h26x.DecodeSPS(c, append([]byte(nil), sps...))
	if err != nil {
		log.Warning("could not decode SPS, using default rate", "error", err)
		return 0
	}
	if res.FPS > maxRate {
		log.Warning("frame rate out of range, using default rate", "fps", res.FPS)
		return 0
	}
	return res.FPS
}

// isSlice returns true for NAL units of type typ that carry coded slice data.
func isSlice(typ int, c h26x.Codec) bool {
	if c == h26x.H265 {
		const lastVCL = 31
		return typ <= lastVCL
	}
	return typ >= h26x.H264TypeNonIDR && typ <= h26x.H264TypeIDR
}
