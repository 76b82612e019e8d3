/*
DESCRIPTION
  decode.go provides the entry points for decoding picture geometry and frame
  rate from H.264 and H.265 sequence parameter sets.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package h26x provides a header only parser for H.264 and H.265 sequence
// parameter sets. It locates the SPS NAL unit in an Annex B byte stream,
// removes emulation prevention bytes and walks the SPS syntax to recover the
// coded picture size and, for H.264, the frame rate signalled in the VUI.
package h26x

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/ausocean/spsprobe/codec/codecutil"
	"github.com/ausocean/spsprobe/codec/h26x/bits"
)

// Errors returned by the decoders and the NAL scanner.
var (
	// ErrNotSPS indicates the NAL unit given to a decoder is not an SPS. Callers
	// should move on to the next NAL unit.
	ErrNotSPS = errors.New("NAL unit is not a sequence parameter set")

	// ErrOutOfBounds indicates a read needed bits beyond the end of the
	// normalised NAL unit, i.e. the SPS is truncated or malformed.
	ErrOutOfBounds = bits.ErrOutOfBounds

	// ErrUnsupportedMultiLayer indicates an H.265 SPS with more than one
	// sub-layer, which is not supported.
	ErrUnsupportedMultiLayer = errors.New("multiple sub-layers not supported")

	// ErrInvalidTiming indicates VUI timing info with num_units_in_tick of zero.
	ErrInvalidTiming = errors.New("num_units_in_tick is zero")

	// ErrInvalidGeometry indicates cropping larger than the coded picture, or a
	// coded size too large to be real.
	ErrInvalidGeometry = errors.New("invalid picture geometry")

	// ErrGolombOverflow indicates an Exp-Golomb code too long for 64 bits.
	ErrGolombOverflow = errors.New("exp-golomb code exceeds 64 bits")

	// ErrNotFound indicates no complete SPS NAL unit was found in a buffer.
	ErrNotFound = errors.New("SPS NAL unit not found")

	// ErrUnknownCodec is returned by ParseCodec for anything but h264 or h265.
	ErrUnknownCodec = errors.New("unknown codec")
)

// Codec selects the SPS syntax used by DecodeSPS and FindNAL.
type Codec int

// Supported codecs.
const (
	H264 Codec = iota + 1
	H265
)

// String returns the codec name as used by codecutil.
func (c Codec) String() string {
	switch c {
	case H264:
		return codecutil.H264
	case H265:
		return codecutil.H265
	default:
		return fmt.Sprintf("Codec(%d)", int(c))
	}
}

// ParseCodec returns the Codec for the name s, e.g. "h264" or "H265".
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(s) {
	case codecutil.H264:
		return H264, nil
	case codecutil.H265:
		return H265, nil
	default:
		return 0, errors.Wrapf(ErrUnknownCodec, "%q", s)
	}
}

// Result holds the geometry and frame rate decoded from an SPS. FPS is zero
// when the stream does not signal timing.
type Result struct {
	Width  uint
	Height uint
	FPS    uint
	Codec  Codec
}

// String returns the result in the form used by the spsprobe tool.
func (r Result) String() string {
	return fmt.Sprintf("codec=%v width=%d height=%d fps=%d", r.Codec, r.Width, r.Height, r.FPS)
}

// DecodeSPS decodes the SPS NAL unit in buf using the syntax for codec c.
// buf must start at the NAL header byte, i.e. with the start code already
// stripped, and is normalised in place.
func DecodeSPS(c Codec, buf []byte) (Result, error) {
	switch c {
	case H264:
		return DecodeH264SPS(buf)
	case H265:
		return DecodeH265SPS(buf)
	default:
		return Result{}, errors.Wrapf(ErrUnknownCodec, "%v", c)
	}
}

// maxCodedSize bounds coded picture dimensions in luma samples.
const maxCodedSize = 1 << 16

// cropped returns coded-unit*(a+b), where a and b are the crop offsets at
// either edge of dimension dim, checking the result is a real picture size.
func cropped(coded, unit, a, b uint64, dim string) (uint, error) {
	if coded == 0 || coded > maxCodedSize {
		return 0, errors.Wrapf(ErrInvalidGeometry, "coded %s of %d", dim, coded)
	}
	if a > maxCodedSize || b > maxCodedSize {
		return 0, errors.Wrapf(ErrInvalidGeometry, "%s crop offsets %d and %d", dim, a, b)
	}
	crop := unit * (a + b)
	if crop >= coded {
		return 0, errors.Wrapf(ErrInvalidGeometry, "%s crop of %d for coded %s of %d", dim, crop, dim, coded)
	}
	return uint(coded - crop), nil
}
