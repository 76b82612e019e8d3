/*
NAME
  options.go

DESCRIPTION
  options.go provides options for the MPEG-TS Encoder.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mts

import (
	"errors"
	"time"

	"github.com/ausocean/spsprobe/codec/h26x"
	"github.com/ausocean/spsprobe/container/mts/pes"
)

var (
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrInvalidRate      = errors.New("invalid access unit rate")
	ErrInvalidSendCount = errors.New("invalid PSI send count")
)

// PacketBasedPSI is an option that can be passed to NewEncoder to select
// packet based PSI writing, i.e. PSI are written to the destination every
// sendCount packets.
func PacketBasedPSI(sendCount int) func(*Encoder) error {
	return func(e *Encoder) error {
		if sendCount < 1 {
			return ErrInvalidSendCount
		}
		e.psiMethod = psiMethodPacket
		e.psiSendCount = sendCount
		e.pktCount = e.psiSendCount
		e.log.Debug("configured for packet based PSI insertion", "count", sendCount)
		return nil
	}
}

// MediaType is an option that can be passed to NewEncoder. It is used to
// specifiy the codec of the data we are packetising using the encoder, by
// codecutil name, i.e. codecutil.H264 or codecutil.H265.
func MediaType(codec string) func(*Encoder) error {
	return func(e *Encoder) error {
		st, err := pes.CodecToStreamType(codec)
		if err != nil {
			return ErrUnsupportedMedia
		}
		c, err := h26x.ParseCodec(codec)
		if err != nil {
			return ErrUnsupportedMedia
		}
		e.codec = c
		e.streamType = st
		e.log.Debug("configured for packetisation", "codec", e.codec)
		return nil
	}
}

// Rate is an option that can be passed to NewEncoder. It is used to specifiy
// the rate at which the access units should be played in playback. This will
// be used to create timestamps and counts such as PTS and PCR.
func Rate(r float64) func(*Encoder) error {
	return func(e *Encoder) error {
		if r < 1 || r > 240 {
			return ErrInvalidRate
		}
		e.writePeriod = time.Duration(float64(time.Second) / r)
		return nil
	}
}
